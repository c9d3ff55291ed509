package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	oracleReqs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "decomposer",
			Name:      "oracle_requests_total",
			Help:      "Total oracle requests by provider, model and result",
		},
		[]string{"provider", "model", "result"},
	)

	oracleLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "decomposer",
			Name:      "oracle_request_duration_seconds",
			Help:      "Duration of oracle requests by provider and model",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"provider", "model"},
	)

	bundlesProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "decomposer",
			Name:      "bundles_processed_total",
			Help:      "Total bundles processed by result and mode (detect, split)",
		},
		[]string{"result", "mode"},
	)

	boundariesDetected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "decomposer",
			Name:      "boundaries_detected_total",
			Help:      "Boundaries detected by document type",
		},
		[]string{"document_type"},
	)

	artifactsProduced = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "decomposer",
			Name:      "artifacts_total",
			Help:      "Split artifacts by result (produced, skipped)",
		},
		[]string{"result"},
	)

	validationFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "decomposer",
			Name:      "validation_failures_total",
			Help:      "Boundary validation failures by kind (range, gap, overlap)",
		},
		[]string{"kind"},
	)

	retriesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "decomposer",
			Name:      "job_retries_total",
			Help:      "Total number of bundle job retries",
		},
	)

	breakerEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "decomposer",
			Name:      "breaker_events_total",
			Help:      "Circuit breaker events by provider, model and action",
		},
		[]string{"provider", "model", "action"},
	)

	queueDepth = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "decomposer",
			Name:      "queue_depth",
			Help:      "Queue depth gauges for stream, delayed and dlq",
		},
		[]string{"type"},
	)
)

// Init registers collectors.
func Init() {
	prometheus.MustRegister(oracleReqs, oracleLatency, bundlesProcessed, boundariesDetected,
		artifactsProduced, validationFailures, retriesTotal, breakerEvents, queueDepth)
}

// Handler returns the http.Handler for /metrics
func Handler() http.Handler { return promhttp.Handler() }

func ObserveOracle(provider, model, result string, dur time.Duration) {
	oracleReqs.WithLabelValues(provider, model, result).Inc()
	oracleLatency.WithLabelValues(provider, model).Observe(dur.Seconds())
}

func IncBundle(result, mode string) { bundlesProcessed.WithLabelValues(result, mode).Inc() }

func IncBoundary(documentType string) { boundariesDetected.WithLabelValues(documentType).Inc() }

func IncArtifact(result string) { artifactsProduced.WithLabelValues(result).Inc() }

func IncValidationFailure(kind string) { validationFailures.WithLabelValues(kind).Inc() }

func IncRetry() { retriesTotal.Inc() }

func BreakerOpened(provider, model string) {
	breakerEvents.WithLabelValues(provider, model, "opened").Inc()
}

func BreakerClosed(provider, model string) {
	breakerEvents.WithLabelValues(provider, model, "closed").Inc()
}

func SetQueueDepth(kind string, v int64) { queueDepth.WithLabelValues(kind).Set(float64(v)) }
