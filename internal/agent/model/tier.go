package model

// TierName identifies a cost tier.
type TierName string

const (
	TierGuest   TierName = "GUEST"
	TierUser    TierName = "USER"
	TierPremium TierName = "PREMIUM"
)

// Tier is the immutable model/budget bundle resolved once per request.
type Tier struct {
	Name        TierName
	Model       string
	ShortTokens int
	LongTokens  int
	Temperature float32
	DisplayName string
	Description string
}

// Budget returns the token budget for long-form or short-form answers.
func (t Tier) Budget(long bool) int {
	if long {
		return t.LongTokens
	}
	return t.ShortTokens
}

// ContinuationBudget is half the long-form budget, never below one token.
func (t Tier) ContinuationBudget() int {
	if n := t.LongTokens / 2; n > 0 {
		return n
	}
	return 1
}

// Descriptor is the public form of a tier in the response envelope.
func (t Tier) Descriptor() TierDescriptor {
	return TierDescriptor{
		Name:        string(t.Name),
		Description: t.Description,
		Model:       t.Model,
	}
}

// Session is the per-request view of the caller. Never persisted by the engine.
type Session struct {
	ID            string
	Authenticated bool
	PlanActive    bool
	Nickname      string
}
