// Package provider adapts LM backends to model.LMProvider.
package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/toolscout-core/server/internal/agent/model"
)

const (
	NameGemini = "gemini"
	NameOpenAI = "openai"
)

// ErrEmptyCompletion is returned when the backend answers without any candidate.
var ErrEmptyCompletion = errors.New("provider returned no completion")

// New builds the provider selected by cfg.Name.
func New(ctx context.Context, cfg model.ProviderConfig) (model.LMProvider, error) {
	switch strings.ToLower(cfg.Name) {
	case "", NameGemini:
		return NewGemini(ctx, cfg)
	case NameOpenAI:
		return NewOpenAI(cfg)
	default:
		return nil, fmt.Errorf("unknown LM provider %q", cfg.Name)
	}
}

// IsRateLimit reports whether err is a provider quota or rate-limit failure.
func IsRateLimit(err error) bool {
	if err == nil {
		return false
	}
	var rl *RateLimitError
	if errors.As(err, &rl) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"error 429", "status 429", "too many requests", "resource_exhausted", "quota", "rate limit", "rate_limit"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// IsTruncated reports whether a finish reason means the token budget ran out.
func IsTruncated(finishReason string) bool {
	switch strings.ToLower(finishReason) {
	case "max_tokens", "length", "finish_reason_max_tokens":
		return true
	}
	return false
}

// RateLimitError marks a failure the backend reported as HTTP 429.
type RateLimitError struct {
	Provider string
	Err      error
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s rate limited: %v", e.Provider, e.Err)
}

func (e *RateLimitError) Unwrap() error { return e.Err }

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}
