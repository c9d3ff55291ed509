// Package splitter materializes validated document boundaries as
// standalone PDF artifacts by copying page ranges out of the source
// bundle.
package splitter

import (
	"bytes"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/rs/zerolog/log"

	"github.com/Jobikinobi/HOLE-Legal-Intelligence-alpha/internal/boundary"
	"github.com/Jobikinobi/HOLE-Legal-Intelligence-alpha/internal/metrics"
)

// Artifact is one materialized boundary: a standalone, structurally
// valid PDF holding exactly the boundary's page range.
type Artifact struct {
	Boundary      boundary.Boundary `json:"boundary"`
	Bytes         []byte            `json:"-"`
	SuggestedName string            `json:"suggested_name"`
	PageCount     int               `json:"page_count"`
}

// Skipped records a boundary that produced no artifact and why. One
// malformed boundary must not prevent extraction of the others.
type Skipped struct {
	Boundary boundary.Boundary `json:"boundary"`
	Reason   string            `json:"reason"`
}

// Result is a possibly-partial split outcome; len(Artifacts) may be
// smaller than the boundary list when ranges were skipped.
type Result struct {
	Artifacts []Artifact
	Skipped   []Skipped
}

// PageCount reads the total page count of a PDF held in memory.
func PageCount(src []byte) (int, error) {
	n, err := api.PageCount(bytes.NewReader(src), nil)
	if err != nil {
		return 0, fmt.Errorf("pdf page count: %w", err)
	}
	return n, nil
}

// Split copies each boundary's page range out of src into its own PDF.
// Ranges are clamped to [1, totalPages] as a defensive measure against
// a bypassed validator; boundaries whose clamped range is empty, or
// whose pages fail to serialize, are skipped with a recorded reason
// rather than aborting the batch. Only an unreadable source PDF is
// fatal.
func Split(src []byte, bounds []boundary.Boundary) (Result, error) {
	total, err := PageCount(src)
	if err != nil {
		return Result{}, err
	}

	var res Result
	for _, b := range bounds {
		start, end := b.StartPage, b.EndPage
		if start < 1 {
			start = 1
		}
		if end > total {
			end = total
		}
		if start > end {
			reason := fmt.Sprintf("empty page range after clamping to 1-%d", total)
			log.Warn().Int("start", b.StartPage).Int("end", b.EndPage).Str("title", b.Title).Msg("skipping boundary: " + reason)
			metrics.IncArtifact("skipped")
			res.Skipped = append(res.Skipped, Skipped{Boundary: b, Reason: reason})
			continue
		}

		var buf bytes.Buffer
		sel := []string{fmt.Sprintf("%d-%d", start, end)}
		if err := api.Trim(bytes.NewReader(src), &buf, sel, nil); err != nil {
			log.Warn().Err(err).Int("start", start).Int("end", end).Str("title", b.Title).Msg("skipping boundary: page copy failed")
			metrics.IncArtifact("skipped")
			res.Skipped = append(res.Skipped, Skipped{Boundary: b, Reason: fmt.Sprintf("page copy failed: %v", err)})
			continue
		}

		clamped := b
		clamped.StartPage, clamped.EndPage = start, end
		metrics.IncArtifact("produced")
		res.Artifacts = append(res.Artifacts, Artifact{
			Boundary:      clamped,
			Bytes:         buf.Bytes(),
			SuggestedName: Name(clamped),
			PageCount:     end - start + 1,
		})
	}
	return res, nil
}
