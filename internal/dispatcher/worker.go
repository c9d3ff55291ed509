// Package dispatcher pulls decomposition jobs off the queue, runs them
// through the engine, persists the results, and handles retry, DLQ,
// and provider failover policy. The engine itself never retries the
// oracle; re-running a failed detection is this package's call.
package dispatcher

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Jobikinobi/HOLE-Legal-Intelligence-alpha/internal/ai"
	"github.com/Jobikinobi/HOLE-Legal-Intelligence-alpha/internal/classifier"
	"github.com/Jobikinobi/HOLE-Legal-Intelligence-alpha/internal/config"
	"github.com/Jobikinobi/HOLE-Legal-Intelligence-alpha/internal/decomposer"
	"github.com/Jobikinobi/HOLE-Legal-Intelligence-alpha/internal/extract"
	"github.com/Jobikinobi/HOLE-Legal-Intelligence-alpha/internal/filetype"
	"github.com/Jobikinobi/HOLE-Legal-Intelligence-alpha/internal/limiter"
	"github.com/Jobikinobi/HOLE-Legal-Intelligence-alpha/internal/metrics"
	"github.com/Jobikinobi/HOLE-Legal-Intelligence-alpha/internal/queue"
	"github.com/Jobikinobi/HOLE-Legal-Intelligence-alpha/internal/storage"
	"github.com/Jobikinobi/HOLE-Legal-Intelligence-alpha/internal/store"
)

// Stores groups the persistence collaborators of a Worker.
type Stores struct {
	Status    *store.RedisStatus
	Manifests *store.RedisManifest
	S3        *storage.S3Store // nil when S3 is not configured
	Local     *storage.Local
}

type Worker struct {
	cfg       config.Config
	q         *queue.RedisQueue
	stores    Stores
	lim       *limiter.Adaptive
	openai    ai.Client
	anthropic ai.Client
	stop      chan struct{}
}

func New(cfg config.Config, q *queue.RedisQueue, stores Stores, lim *limiter.Adaptive) *Worker {
	return &Worker{
		cfg:       cfg,
		q:         q,
		stores:    stores,
		lim:       lim,
		openai:    ai.NewOpenAIClient(),
		anthropic: ai.NewAnthropicClient(),
		stop:      make(chan struct{}),
	}
}

func (w *Worker) Start() {
	n := w.cfg.Worker.Concurrency
	if n <= 0 {
		n = 2
	}
	for i := 0; i < n; i++ {
		go w.loop(i)
	}
	go w.depthLoop()
}

func (w *Worker) Stop() { close(w.stop) }

func (w *Worker) loop(id int) {
	consumer := fmt.Sprintf("worker-%d", id)
	log.Info().Int("worker", id).Msg("dispatcher worker started")
	for {
		select {
		case <-w.stop:
			log.Info().Int("worker", id).Msg("dispatcher worker stopped")
			return
		default:
		}

		msgID, data, err := w.q.Dequeue(context.Background(), consumer, 2*time.Second)
		if err != nil {
			log.Error().Err(err).Msg("queue dequeue error")
			time.Sleep(500 * time.Millisecond)
			continue
		}
		if data == nil {
			continue
		}
		w.handle(msgID, data)
	}
}

func (w *Worker) handle(msgID string, data []byte) {
	ctx := context.Background()
	defer func() { _ = w.q.Ack(ctx, msgID) }()

	job, err := ParseJob(data)
	if err != nil || job.JobID == "" {
		log.Error().Err(err).Msg("unparseable job payload, sending to DLQ")
		_ = w.q.AddDLQ(ctx, data, "unparseable payload")
		return
	}

	if cancelled, _ := w.q.IsCancelled(ctx, job.JobID); cancelled {
		log.Warn().Str("job_id", job.JobID).Msg("job cancelled before processing")
		w.setStatus(ctx, job.JobID, store.StateCancelled, 100, "cancelled before processing")
		return
	}

	now := time.Now()
	_ = w.stores.Status.Set(ctx, job.JobID, store.Status{
		Status: store.StateProcessing, Progress: 10, Message: "decomposing", Start: &now,
	})

	jctx, cancel := context.WithTimeout(ctx, w.cfg.Worker.JobTimeout)
	err = w.process(jctx, job)
	cancel()
	if err == nil {
		return
	}

	switch {
	case isFatalError(err):
		log.Error().Err(err).Str("job_id", job.JobID).Msg("fatal job error, sending to DLQ")
		_ = w.q.AddDLQ(ctx, data, err.Error())
		w.setStatus(ctx, job.JobID, store.StateFailed, 100, err.Error())
	case isTransientError(err) && job.Attempt+1 < w.cfg.Worker.JobMaxAttempts:
		job.Attempt++
		delay := w.cfg.Worker.RetryBaseDelay * (1 << (job.Attempt - 1))
		log.Warn().Err(err).Str("job_id", job.JobID).
			Int("attempt", job.Attempt).Dur("delay", delay).
			Msg("transient job error, re-enqueueing")
		metrics.IncRetry()
		_ = w.q.EnqueueDelayed(ctx, job.Marshal(), time.Now().Add(delay))
	default:
		log.Error().Err(err).Str("job_id", job.JobID).
			Int("attempt", job.Attempt+1).Msg("job exhausted attempts, sending to DLQ")
		_ = w.q.AddDLQ(ctx, data, err.Error())
		w.setStatus(ctx, job.JobID, store.StateFailed, 100, err.Error())
	}
}

func (w *Worker) process(ctx context.Context, job Job) error {
	src, err := w.resolveSource(ctx, job)
	if err != nil {
		return err
	}
	if !filetype.IsPDF(src) {
		return &ValidationError{Message: "not a PDF bundle"}
	}
	ok, probe, err := extract.HasExtractableText(src, 0)
	if err != nil {
		return &ValidationError{Message: err.Error()}
	}
	if !ok {
		log.Warn().Str("job_id", job.JobID).
			Int("sampled_chars", probe.TotalCharsInSample).
			Msg("bundle has no extractable text; OCR required upstream")
		return &ValidationError{Message: "no extractable text in bundle; run OCR first"}
	}

	els, err := extract.Elements(src)
	if err != nil {
		return &ValidationError{Message: err.Error()}
	}
	if len(els) == 0 {
		return &ValidationError{Message: "no extractable elements in bundle"}
	}
	w.setStatus(ctx, job.JobID, store.StateProcessing, 40, "elements extracted")

	client, model, release, err := w.pickOracle(ctx, job.Engine)
	if err != nil {
		return err
	}
	defer release()

	det := classifier.New(client, classifier.Options{
		Model:     model,
		MaxTokens: w.cfg.Oracle.MaxTokens,
		Timeout:   w.cfg.Oracle.Timeout,
	})
	engine := decomposer.New(det)

	mode := decomposer.ModeSplit
	if job.Mode == string(decomposer.ModeDetectOnly) {
		mode = decomposer.ModeDetectOnly
	}
	res, err := engine.Decompose(ctx, decomposer.Request{
		SourceID:          job.JobID,
		SourceBytes:       src,
		Elements:          els,
		SourceDescription: job.SourceDescription,
		Mode:              mode,
		SplitInvalid:      job.SplitInvalid,
	})
	if err != nil {
		return err
	}

	lastAttempt := job.Attempt+1 >= w.cfg.Worker.JobMaxAttempts
	if res.Diagnostics.Fallback {
		w.lim.Open(ctx, client.Name(), model)
		if !lastAttempt {
			// Re-run the whole detection step on a fresh attempt rather
			// than persisting a degraded manifest early.
			return errOracleUnavailable
		}
	} else {
		w.lim.Close(ctx, client.Name(), model)
	}
	w.setStatus(ctx, job.JobID, store.StateProcessing, 70, "boundaries detected")

	records, err := w.persistArtifacts(ctx, job.JobID, res)
	if err != nil {
		return err
	}

	manifest := buildManifest(job.JobID, string(mode), res, records)
	if err := w.stores.Manifests.Put(ctx, job.JobID, manifest); err != nil {
		return fmt.Errorf("store manifest: %w", err)
	}

	if job.SourcePath != "" {
		w.stores.Local.RemoveUpload(job.SourcePath)
	}
	w.setStatus(ctx, job.JobID, store.StateDone, 100, fmt.Sprintf("%d artifacts", len(records)))
	return nil
}

func (w *Worker) resolveSource(ctx context.Context, job Job) ([]byte, error) {
	switch {
	case job.SourceKey != "" && w.stores.S3 != nil:
		data, err := w.stores.S3.GetSource(ctx, job.SourceKey)
		if err != nil {
			return nil, &SourceError{Ref: job.SourceKey, Reason: err}
		}
		return data, nil
	case job.SourcePath != "":
		data, err := w.stores.Local.ReadUpload(job.SourcePath)
		if err != nil {
			return nil, &SourceError{Ref: job.SourcePath, Reason: err}
		}
		return data, nil
	default:
		return nil, &ValidationError{Message: "job has no source reference"}
	}
}

// pickOracle chooses provider and model honoring the job's preference,
// the shared breaker, and the per-model inflight cap.
func (w *Worker) pickOracle(ctx context.Context, prefer string) (ai.Client, string, func(), error) {
	primary, secondary := w.cfg.Oracle.PrimaryEngine, w.cfg.Oracle.SecondaryEngine
	if prefer != "" {
		primary = prefer
		if primary == w.cfg.Oracle.SecondaryEngine {
			secondary = w.cfg.Oracle.PrimaryEngine
		}
	}

	for _, provider := range []string{primary, secondary} {
		client, model := w.clientFor(provider)
		if client == nil {
			continue
		}
		if w.lim.IsOpen(ctx, provider, model) {
			log.Debug().Str("provider", provider).Str("model", model).Msg("breaker open, skipping provider")
			continue
		}
		release, ok := w.lim.Allow(provider, model)
		if !ok {
			continue
		}
		return client, model, release, nil
	}
	return nil, "", nil, errNoCapacity
}

func (w *Worker) clientFor(provider string) (ai.Client, string) {
	switch provider {
	case "openai":
		return w.openai, w.cfg.Oracle.OpenAIModel
	case "anthropic":
		return w.anthropic, w.cfg.Oracle.AnthropicModel
	default:
		return nil, ""
	}
}

func (w *Worker) persistArtifacts(ctx context.Context, jobID string, res decomposer.Result) ([]ArtifactRecord, error) {
	records := make([]ArtifactRecord, 0, len(res.Artifacts))
	for _, art := range res.Artifacts {
		var location string
		var err error
		if w.stores.S3 != nil {
			location, err = w.stores.S3.PutArtifact(ctx, jobID, art.SuggestedName, art.Bytes)
		} else {
			location, err = w.stores.Local.SaveArtifact(jobID, art.SuggestedName, art.Bytes)
		}
		if err != nil {
			return nil, fmt.Errorf("persist artifact %s: %w", art.SuggestedName, err)
		}
		records = append(records, ArtifactRecord{
			Name:         art.SuggestedName,
			Location:     location,
			DocumentType: string(art.Boundary.DocumentType),
			Title:        art.Boundary.Title,
			StartPage:    art.Boundary.StartPage,
			EndPage:      art.Boundary.EndPage,
			PageCount:    art.PageCount,
		})
	}
	return records, nil
}

func (w *Worker) setStatus(ctx context.Context, jobID, state string, progress int, msg string) {
	st := store.Status{Status: state, Progress: progress, Message: msg}
	if state == store.StateDone || state == store.StateFailed || state == store.StateCancelled {
		now := time.Now()
		st.End = &now
	}
	if err := w.stores.Status.Set(ctx, jobID, st); err != nil {
		log.Error().Err(err).Str("job_id", jobID).Msg("status update failed")
	}
}

// depthLoop exports queue depths for scraping.
func (w *Worker) depthLoop() {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-w.stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			if stream, delayed, dlq, err := w.q.Depths(ctx); err == nil {
				metrics.SetQueueDepth("stream", stream)
				metrics.SetQueueDepth("delayed", delayed)
				metrics.SetQueueDepth("dlq", dlq)
			}
			cancel()
		}
	}
}
