package dispatcher

import (
	"context"
	"errors"
	"strings"

	"github.com/Jobikinobi/HOLE-Legal-Intelligence-alpha/internal/ai"
)

// isTransientError reports whether a failed job should be re-enqueued.
func isTransientError(err error) bool {
	if err == nil {
		return false
	}

	if ai.IsRateLimited(err) || ai.IsContentRefused(err) {
		return true
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	if errors.Is(err, errNoCapacity) || errors.Is(err, errOracleUnavailable) {
		return true
	}

	var srcErr *SourceError
	if errors.As(err, &srcErr) {
		// Storage hiccups recover; a corrupt object does not, but the
		// attempt cap bounds the damage either way.
		return true
	}

	errStr := strings.ToLower(err.Error())
	if strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "network") ||
		strings.Contains(errStr, "eof") {
		return true
	}

	return false
}

// isFatalError reports whether a failed job must go straight to the DLQ.
func isFatalError(err error) bool {
	if err == nil {
		return false
	}

	var valErr *ValidationError
	if errors.As(err, &valErr) {
		return true
	}

	errStr := strings.ToLower(err.Error())
	if strings.Contains(errStr, "no extractable elements") ||
		strings.Contains(errStr, "not a pdf") ||
		strings.Contains(errStr, "malformed") ||
		strings.Contains(errStr, "bad request") {
		return true
	}

	return false
}
