package model

import (
	errx "github.com/toolscout-core/server/internal/core/error"
)

// AppState stores per-invocation state for the Eino Graph.
// It is registered via compose.WithGenLocalState and only touched inside
// compose.ProcessState, which serializes access.
type AppState struct {
	TraceID       string
	LMCalls       int
	Continuations int
	TotalCostUSD  float64
}

// Turn flows through every graph node for one request.
type Turn struct {
	TraceID string
	Request ChatRequest
	Session Session
	Tier    Tier
	// Downgraded is true when the breaker forced the tier to GUEST.
	Downgraded bool

	Intent   IntentResult
	Decision RoutingDecision

	Candidates []CandidateItem
	// NoResults marks an explicit empty catalog result; the text is final.
	NoResults bool
	Text      string
	// Final skips post-processing.
	Final bool
	// Code is set for HTTP 200 outcomes that still carry a code.
	Code errx.Code
	// Err holds the failure of a node; nodes never return errors to the graph for expected failures.
	Err *errx.AppError

	LMCalls int
	CostUSD float64
}
