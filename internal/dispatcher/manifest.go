package dispatcher

import (
	"time"

	"github.com/Jobikinobi/HOLE-Legal-Intelligence-alpha/internal/boundary"
	"github.com/Jobikinobi/HOLE-Legal-Intelligence-alpha/internal/decomposer"
	"github.com/Jobikinobi/HOLE-Legal-Intelligence-alpha/internal/splitter"
)

// ArtifactRecord is one persisted artifact in the stored manifest.
// Location is an S3 key or a local path depending on deployment.
type ArtifactRecord struct {
	Name         string `json:"name"`
	Location     string `json:"location"`
	DocumentType string `json:"document_type"`
	Title        string `json:"title"`
	StartPage    int    `json:"start_page"`
	EndPage      int    `json:"end_page"`
	PageCount    int    `json:"page_count"`
}

// Manifest is the durable record of a finished job. Artifact bytes are
// never stored here; records point at storage instead.
type Manifest struct {
	JobID      string                    `json:"job_id"`
	SourceID   string                    `json:"source_id"`
	TotalPages int                       `json:"total_pages"`
	Mode       string                    `json:"mode"`
	Boundaries []boundary.Boundary       `json:"boundaries"`
	Validation boundary.ValidationReport `json:"validation"`
	Artifacts  []ArtifactRecord          `json:"artifacts,omitempty"`
	Skipped    []splitter.Skipped        `json:"skipped,omitempty"`
	Fallback   bool                      `json:"fallback"`
	TokensIn   int                       `json:"tokens_in"`
	TokensOut  int                       `json:"tokens_out"`
	Duration   time.Duration             `json:"duration"`
	FinishedAt time.Time                 `json:"finished_at"`
}

func buildManifest(jobID, mode string, res decomposer.Result, records []ArtifactRecord) Manifest {
	return Manifest{
		JobID:      jobID,
		SourceID:   res.SourceID,
		TotalPages: res.TotalPages,
		Mode:       mode,
		Boundaries: res.Boundaries,
		Validation: res.Validation,
		Artifacts:  records,
		Skipped:    res.Diagnostics.SkippedDetails,
		Fallback:   res.Diagnostics.Fallback,
		TokensIn:   res.Diagnostics.TokensIn,
		TokensOut:  res.Diagnostics.TokensOut,
		Duration:   res.Diagnostics.Duration,
		FinishedAt: time.Now().UTC(),
	}
}
