package dispatcher

import (
	"errors"
	"fmt"
)

var (
	// errNoCapacity means every allowed oracle slot is busy; the job
	// should come back later.
	errNoCapacity = errors.New("oracle at capacity")
	// errOracleUnavailable means detection fell back and attempts
	// remain, so the whole detection step is re-run.
	errOracleUnavailable = errors.New("oracle unavailable")
)

// SourceError represents a failure to resolve the bundle bytes.
type SourceError struct {
	Ref    string
	Reason error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("source %s: %v", e.Ref, e.Reason)
}

func (e *SourceError) Unwrap() error { return e.Reason }

// ValidationError represents a fatal input problem that retrying
// cannot fix.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s", e.Message)
}
