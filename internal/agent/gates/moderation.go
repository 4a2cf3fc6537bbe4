// Package gates holds the pre-graph request gates and their in-process backends.
package gates

import (
	"context"
	"strings"

	"github.com/toolscout-core/server/internal/agent/model"
)

// DefaultBlockedTerms covers prompt-injection phrases and clearly disallowed requests.
var DefaultBlockedTerms = []string{
	"ignore previous instructions",
	"ignore all previous instructions",
	"system prompt",
	"시스템 프롬프트",
	"이전 지시 무시",
	"폭탄 제조",
	"폭탄 만드는 법",
	"마약 구매",
	"마약 판매",
	"how to make a bomb",
	"buy drugs",
	"개인정보 빼내",
	"해킹 툴로 계정",
}

// KeywordModerator blocks text containing any configured term, case-insensitively.
type KeywordModerator struct {
	terms []string
}

func NewKeywordModerator(extra ...string) *KeywordModerator {
	terms := make([]string, 0, len(DefaultBlockedTerms)+len(extra))
	for _, t := range append(append([]string{}, DefaultBlockedTerms...), extra...) {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			terms = append(terms, t)
		}
	}
	return &KeywordModerator{terms: terms}
}

func (m *KeywordModerator) Check(ctx context.Context, text string) (model.ModerationResult, error) {
	if err := ctx.Err(); err != nil {
		return model.ModerationResult{}, err
	}
	lower := strings.ToLower(text)
	for _, t := range m.terms {
		if strings.Contains(lower, t) {
			return model.ModerationResult{Allowed: false, Reason: "blocked_term:" + t}, nil
		}
	}
	return model.ModerationResult{Allowed: true}, nil
}

var _ model.Moderator = (*KeywordModerator)(nil)
