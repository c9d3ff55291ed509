// Package classifier consults an external text-understanding oracle to
// turn a page element index into candidate document boundaries. The
// oracle is a fallible dependency: any call or parse failure degrades
// to a single low-confidence boundary spanning the whole bundle so the
// pipeline always terminates with a usable boundary list.
package classifier

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/Jobikinobi/HOLE-Legal-Intelligence-alpha/internal/ai"
	"github.com/Jobikinobi/HOLE-Legal-Intelligence-alpha/internal/boundary"
	"github.com/Jobikinobi/HOLE-Legal-Intelligence-alpha/internal/elements"
	"github.com/Jobikinobi/HOLE-Legal-Intelligence-alpha/internal/metrics"
)

// fallbackConfidence marks a degraded-mode result. Callers treat any
// confidence at or below this value as "do not auto-split".
const fallbackConfidence = 0.1

// FallbackTitle names the single whole-bundle boundary produced when
// the oracle fails or its response cannot be parsed.
const FallbackTitle = "Unprocessed Document Bundle"

// Options configures a Detector.
type Options struct {
	Model     string
	MaxTokens int
	Timeout   time.Duration
}

// Detector is the boundary classifier adapter.
type Detector struct {
	client ai.Client
	opts   Options
}

// Result is a detection outcome. Fallback marks the degraded path;
// token counts are zero when the oracle never answered.
type Result struct {
	Boundaries []boundary.Boundary
	Fallback   bool
	TokensIn   int
	TokensOut  int
}

// New builds a Detector over the given oracle client.
func New(client ai.Client, opts Options) *Detector {
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 4096
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 90 * time.Second
	}
	return &Detector{client: client, opts: opts}
}

// Detect builds per-page synopses, consults the oracle once, and
// returns the candidate boundaries sorted ascending by start page.
// It never returns an error and never retries: a failed or unparseable
// consultation yields the whole-bundle fallback boundary, and a caller
// wanting a retry re-invokes detection (idempotent given identical
// input).
func (d *Detector) Detect(ctx context.Context, idx elements.PageIndex, sourceDescription string) Result {
	synopses := BuildSynopses(idx)

	req := ai.Request{
		SystemPrompt: systemPrompt,
		UserPrompt:   buildUserPrompt(synopses, idx.TotalPages, sourceDescription),
		Model:        d.opts.Model,
		MaxTokens:    d.opts.MaxTokens,
		Timeout:      d.opts.Timeout,
	}

	cctx, cancel := context.WithTimeout(ctx, d.opts.Timeout)
	defer cancel()

	start := time.Now()
	resp, err := d.client.Do(cctx, req)
	dur := time.Since(start)

	if err != nil {
		metrics.ObserveOracle(d.client.Name(), d.opts.Model, "error", dur)
		log.Warn().Err(err).
			Str("provider", d.client.Name()).
			Str("model", d.opts.Model).
			Int("total_pages", idx.TotalPages).
			Msg("oracle call failed; falling back to whole-bundle boundary")
		return d.fallback(idx.TotalPages)
	}

	bounds, perr := parseBoundaries(resp.Text)
	if perr != nil {
		metrics.ObserveOracle(d.client.Name(), d.opts.Model, "parse_error", dur)
		log.Warn().Err(perr).
			Str("provider", d.client.Name()).
			Int("response_len", len(resp.Text)).
			Msg("oracle response unparseable; falling back to whole-bundle boundary")
		r := d.fallback(idx.TotalPages)
		r.TokensIn = resp.TokensIn
		r.TokensOut = resp.TokensOut
		return r
	}

	metrics.ObserveOracle(d.client.Name(), d.opts.Model, "success", dur)
	boundary.SortByStartPage(bounds)
	for _, b := range bounds {
		metrics.IncBoundary(string(b.DocumentType))
	}

	return Result{Boundaries: bounds, TokensIn: resp.TokensIn, TokensOut: resp.TokensOut}
}

func (d *Detector) fallback(totalPages int) Result {
	if totalPages < 1 {
		totalPages = 1
	}
	return Result{
		Fallback: true,
		Boundaries: []boundary.Boundary{{
			StartPage:    1,
			EndPage:      totalPages,
			DocumentType: boundary.TypeOther,
			Title:        FallbackTitle,
			Description:  "Boundary detection failed; the bundle was kept whole for manual review.",
			Confidence:   fallbackConfidence,
		}},
	}
}
