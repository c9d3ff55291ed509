// Package decomposer sequences one bundle decomposition run:
// index -> detect -> validate -> split. Each stage consumes the prior
// stage's full output; there is no streaming mode and no internal
// retry. The engine holds no state across runs and is safe to invoke
// concurrently for independent bundles.
package decomposer

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Jobikinobi/HOLE-Legal-Intelligence-alpha/internal/boundary"
	"github.com/Jobikinobi/HOLE-Legal-Intelligence-alpha/internal/classifier"
	"github.com/Jobikinobi/HOLE-Legal-Intelligence-alpha/internal/elements"
	"github.com/Jobikinobi/HOLE-Legal-Intelligence-alpha/internal/metrics"
	"github.com/Jobikinobi/HOLE-Legal-Intelligence-alpha/internal/splitter"
)

// Mode selects the terminal stage of a run.
type Mode string

const (
	// ModeDetectOnly stops after validation; the manifest carries the
	// boundary list and report but no artifacts, for human review.
	ModeDetectOnly Mode = "detect"
	// ModeSplit additionally materializes artifacts when the validation
	// report allows it.
	ModeSplit Mode = "split"
)

// Request is one decomposition invocation.
type Request struct {
	SourceID          string
	SourceBytes       []byte
	Elements          []elements.PageElement
	SourceDescription string
	Mode              Mode
	// SplitInvalid lets the caller split anyway on an invalid
	// validation report. Off by default: gaps and overlaps then
	// surface in the manifest with artifacts omitted.
	SplitInvalid bool
}

// Diagnostics carries timing and accounting for audit.
type Diagnostics struct {
	Duration       time.Duration      `json:"duration"`
	ElementCount   int                `json:"element_count"`
	TokensIn       int                `json:"tokens_in"`
	TokensOut      int                `json:"tokens_out"`
	Fallback       bool               `json:"fallback"`
	SkippedDetails []splitter.Skipped `json:"skipped,omitempty"`
}

// Result is the manifest returned to the caller.
type Result struct {
	SourceID    string                    `json:"source_id"`
	TotalPages  int                       `json:"total_pages"`
	Boundaries  []boundary.Boundary       `json:"boundaries"`
	Validation  boundary.ValidationReport `json:"validation"`
	Artifacts   []splitter.Artifact       `json:"artifacts,omitempty"`
	Diagnostics Diagnostics               `json:"diagnostics"`
}

// Engine wires the pipeline stages together.
type Engine struct {
	detector *classifier.Detector
}

// New builds an Engine around a boundary detector.
func New(detector *classifier.Detector) *Engine {
	return &Engine{detector: detector}
}

// Decompose runs one bundle through the pipeline. Only empty element
// input and an unreadable source PDF are fatal; everything else
// degrades into the manifest. The context is checked between stages so
// cancellation never leaves partially-built artifacts in the result.
func (e *Engine) Decompose(ctx context.Context, req Request) (Result, error) {
	start := time.Now()

	// Indexed
	idx, err := elements.IndexByPage(req.Elements)
	if err != nil {
		return Result{}, err
	}
	totalPages := idx.TotalPages
	if req.Mode == ModeSplit && len(req.SourceBytes) > 0 {
		// The PDF itself is authoritative for the page count when we
		// are going to split; trailing pages may carry no elements.
		if n, perr := splitter.PageCount(req.SourceBytes); perr != nil {
			return Result{}, perr
		} else if n > totalPages {
			totalPages = n
		}
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	// Detected (always succeeds; oracle failures fall back)
	idx.TotalPages = totalPages
	det := e.detector.Detect(ctx, idx, req.SourceDescription)
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	// Validated
	report := boundary.Validate(det.Boundaries, totalPages)

	res := Result{
		SourceID:   req.SourceID,
		TotalPages: totalPages,
		Boundaries: det.Boundaries,
		Validation: report,
		Diagnostics: Diagnostics{
			ElementCount: idx.Count,
			TokensIn:     det.TokensIn,
			TokensOut:    det.TokensOut,
			Fallback:     det.Fallback,
		},
	}

	if req.Mode != ModeSplit {
		res.Diagnostics.Duration = time.Since(start)
		metrics.IncBundle("success", string(ModeDetectOnly))
		return res, nil
	}

	if !report.Valid && !req.SplitInvalid {
		log.Warn().Str("source", req.SourceID).Strs("errors", report.Errors).
			Msg("boundary report invalid; returning manifest without artifacts")
		res.Diagnostics.Duration = time.Since(start)
		metrics.IncBundle("invalid_report", string(ModeSplit))
		return res, nil
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	// Split
	split, err := splitter.Split(req.SourceBytes, det.Boundaries)
	if err != nil {
		return Result{}, fmt.Errorf("split %s: %w", req.SourceID, err)
	}
	res.Artifacts = split.Artifacts
	res.Diagnostics.SkippedDetails = split.Skipped
	res.Diagnostics.Duration = time.Since(start)

	log.Info().Str("source", req.SourceID).
		Int("total_pages", totalPages).
		Int("boundaries", len(det.Boundaries)).
		Int("artifacts", len(split.Artifacts)).
		Int("skipped", len(split.Skipped)).
		Dur("duration", res.Diagnostics.Duration).
		Msg("bundle decomposed")
	metrics.IncBundle("success", string(ModeSplit))
	return res, nil
}
