package model

import (
	"context"

	"github.com/cloudwego/eino/schema"
)

// RateLimiter decides whether the caller identified by key may proceed.
type RateLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

type ModerationResult struct {
	Allowed bool
	Reason  string
}

// Moderator checks text against content policy.
type Moderator interface {
	Check(ctx context.Context, text string) (ModerationResult, error)
}

// SessionResolver looks up authentication and payment state.
type SessionResolver interface {
	Resolve(ctx context.Context, sessionID string) (Session, error)
}

// Catalog is the read-only tool catalog.
type Catalog interface {
	Search(ctx context.Context, filter CatalogFilter) ([]CandidateItem, error)
}

// RotationStore keeps per-key cursors for "show me other ones" follow-ups.
type RotationStore interface {
	// Next returns the current cursor for key and advances it by window modulo pool.
	Next(ctx context.Context, key string, pool, window int) (int, error)
}

type Completion struct {
	Model       string
	Messages    []*schema.Message
	MaxTokens   int
	Temperature float32
}

type CompletionResult struct {
	Text         string
	FinishReason string
	Usage        *schema.TokenUsage
}

// LMProvider issues one text-completion call.
type LMProvider interface {
	Complete(ctx context.Context, req Completion) (CompletionResult, error)
}

// Alerter delivers an operational alert.
type Alerter interface {
	Notify(ctx context.Context, event string, fields map[string]any) error
}
