package ai

import (
	"context"
	"errors"
	"time"
)

// Request represents a single oracle consultation. The prompt pair is
// fully rendered by the caller; clients only transport it.
type Request struct {
	SystemPrompt string
	UserPrompt   string
	Model        string
	MaxTokens    int
	Timeout      time.Duration
}

// Response carries the oracle's raw text plus token accounting.
type Response struct {
	Text      string
	TokensIn  int
	TokensOut int
}

// Client is the narrow interface for text-understanding providers like
// OpenAI and Anthropic. It can be swapped for a deterministic client in
// tests; its response format never leaks past the classifier.
type Client interface {
	Name() string
	Do(ctx context.Context, req Request) (Response, error)
}

var (
	ErrRateLimited    = errors.New("rate_limited")
	ErrContentRefused = errors.New("content_refused")
)

func IsRateLimited(err error) bool    { return errors.Is(err, ErrRateLimited) }
func IsContentRefused(err error) bool { return errors.Is(err, ErrContentRefused) }
