package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/Jobikinobi/HOLE-Legal-Intelligence-alpha/internal/ai"
)

func TestIsTransientError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"rate limited", ai.ErrRateLimited, true},
		{"content refused", ai.ErrContentRefused, true},
		{"deadline", context.DeadlineExceeded, true},
		{"no capacity", errNoCapacity, true},
		{"oracle unavailable", errOracleUnavailable, true},
		{"wrapped oracle unavailable", fmt.Errorf("job: %w", errOracleUnavailable), true},
		{"source error", &SourceError{Ref: "decomposed/x.pdf", Reason: errors.New("503")}, true},
		{"connection refused", errors.New("dial tcp: connection refused"), true},
		{"validation", &ValidationError{Message: "not a PDF bundle"}, false},
		{"plain error", errors.New("something else"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isTransientError(tt.err); got != tt.want {
				t.Errorf("isTransientError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestIsFatalError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"validation", &ValidationError{Message: "no source"}, true},
		{"wrapped validation", fmt.Errorf("job: %w", &ValidationError{Message: "x"}), true},
		{"not a pdf", errors.New("upload is not a pdf"), true},
		{"rate limited", ai.ErrRateLimited, false},
		{"plain error", errors.New("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isFatalError(tt.err); got != tt.want {
				t.Errorf("isFatalError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestJobRoundTrip(t *testing.T) {
	in := Job{
		JobID:        "j-1",
		SourceKey:    "decomposed/bundle.pdf",
		Mode:         "split",
		SplitInvalid: true,
		Engine:       "anthropic",
		Attempt:      2,
	}
	out, err := ParseJob(in.Marshal())
	if err != nil {
		t.Fatalf("ParseJob: %v", err)
	}
	if out != in {
		t.Errorf("round trip mismatch: %+v != %+v", out, in)
	}
}
