// Package tier maps a session and the breaker state to the model tier that serves a turn.
package tier

import (
	"github.com/toolscout-core/server/internal/agent/model"
)

// BreakerState is the read side of the circuit breaker.
type BreakerState interface {
	IsOpen() bool
}

// Resolver maps session, payment and breaker state to a Tier.
type Resolver struct {
	tiers   map[model.TierName]model.Tier
	breaker BreakerState
}

func NewResolver(cfg model.TierConfig, breaker BreakerState) *Resolver {
	return &Resolver{tiers: Table(cfg), breaker: breaker}
}

// Table builds the three tiers from configuration.
func Table(cfg model.TierConfig) map[model.TierName]model.Tier {
	return map[model.TierName]model.Tier{
		model.TierGuest: {
			Name:        model.TierGuest,
			Model:       cfg.GuestModel,
			ShortTokens: cfg.GuestShortTokens,
			LongTokens:  cfg.GuestLongTokens,
			Temperature: cfg.GuestTemperature,
			DisplayName: "게스트",
			Description: "로그인 없이 이용하는 기본 모델",
		},
		model.TierUser: {
			Name:        model.TierUser,
			Model:       cfg.UserModel,
			ShortTokens: cfg.UserShortTokens,
			LongTokens:  cfg.UserLongTokens,
			Temperature: cfg.UserTemperature,
			DisplayName: "회원",
			Description: "로그인 회원을 위한 표준 모델",
		},
		model.TierPremium: {
			Name:        model.TierPremium,
			Model:       cfg.PremiumModel,
			ShortTokens: cfg.PremiumShortTokens,
			LongTokens:  cfg.PremiumLongTokens,
			Temperature: cfg.PremiumTemperature,
			DisplayName: "프리미엄",
			Description: "구독 회원을 위한 고성능 모델",
		},
	}
}

// Resolve returns the tier for the session and whether the breaker downgraded it.
// An open breaker forces GUEST regardless of entitlement.
func (r *Resolver) Resolve(s model.Session) (model.Tier, bool) {
	name := model.TierGuest
	if s.Authenticated {
		name = model.TierUser
		if s.PlanActive {
			name = model.TierPremium
		}
	}

	if r.breaker != nil && r.breaker.IsOpen() {
		return r.tiers[model.TierGuest], name != model.TierGuest
	}
	return r.tiers[name], false
}

// Guest is the tier reported on responses rejected before resolution.
func (r *Resolver) Guest() model.Tier {
	return r.tiers[model.TierGuest]
}
