package model

import (
	"encoding/json"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvelopeToolsEncoding(t *testing.T) {
	b, err := json.Marshal(Envelope{Response: "hi", TraceID: "t1"})
	require.NoError(t, err)
	assert.NotContains(t, string(b), `"tools"`)

	b, err = json.Marshal(Envelope{Response: "none", TraceID: "t1", Tools: []CandidateItem{}})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"tools":[]`)
	assert.Contains(t, string(b), `"traceId":"t1"`)
}

func TestTierBudgets(t *testing.T) {
	tier := Tier{ShortTokens: 400, LongTokens: 1200}
	assert.Equal(t, 1200, tier.Budget(true))
	assert.Equal(t, 400, tier.Budget(false))
	assert.Equal(t, 600, tier.ContinuationBudget())
	assert.Equal(t, 1, Tier{}.ContinuationBudget())
}

func TestComputeCost(t *testing.T) {
	in, out, total := ComputeCost(&schema.TokenUsage{PromptTokens: 1_000_000, CompletionTokens: 2_000_000}, ResolvePricing("gemini-2.5-flash"))
	assert.InDelta(t, 0.30, in, 1e-9)
	assert.InDelta(t, 5.00, out, 1e-9)
	assert.InDelta(t, 5.30, total, 1e-9)

	_, _, total = ComputeCost(nil, ResolvePricing("unknown"))
	assert.Zero(t, total)
}
