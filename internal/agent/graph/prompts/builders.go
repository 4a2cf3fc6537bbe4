// Package prompts renders the synthesis prompts through eino prompt templates.
package prompts

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"github.com/toolscout-core/server/internal/agent/model"
)

var (
	//go:embed template/system.tmpl
	systemTemplate string
	//go:embed template/user.tmpl
	userTemplate string
	//go:embed template/chat.tmpl
	chatTemplate string
	//go:embed template/continue.tmpl
	continueTemplate string
)

// Prompt is a rendered system/user pair.
type Prompt struct {
	System string
	User   string
}

func (p Prompt) Messages() []*schema.Message {
	return []*schema.Message{schema.SystemMessage(p.System), schema.UserMessage(p.User)}
}

// Input is everything a builder may reference.
type Input struct {
	ServiceName string
	Message     string
	Target      string
	Candidates  []model.CandidateItem
	// Count is the exact number of items to present; zero leaves it open.
	Count     int
	BodyLines int
	Strategy  model.Strategy
}

type builder func(ctx context.Context, in Input) (Prompt, error)

var builders = map[Variant]builder{
	VariantCompare:    recommendation("후보 툴들을 가격, 주요 기능, 추천 대상 기준으로 비교하고 마지막에 어떤 사용자에게 무엇이 맞는지 한 문장으로 정리하세요."),
	VariantProsCons:   recommendation("툴마다 장점 2개와 단점 1개를 '장점:'과 '단점:'으로 나눠 적으세요."),
	VariantChecklist:  recommendation("툴마다 도입 전에 확인할 항목을 '- [ ]' 체크리스트 형식으로 정리하세요."),
	VariantQuickstart: recommendation("툴마다 처음 시작하는 3단계를 번호 목록으로 안내하세요."),
	VariantSummary:    recommendation("툴마다 한 줄 요약만 작성하세요. 불필요한 서론은 생략하세요."),
	VariantGuide:      recommendation("툴마다 어떤 작업에 좋은지와 핵심 기능을 자연스러운 문장으로 소개하세요."),
}

// Build renders the recommendation prompt for variant.
func Build(ctx context.Context, v Variant, in Input) (Prompt, error) {
	b, ok := builders[v]
	if !ok {
		return Prompt{}, fmt.Errorf("unknown prompt variant %q", v)
	}
	return b(ctx, in)
}

func recommendation(instruction string) builder {
	return func(ctx context.Context, in Input) (Prompt, error) {
		if in.BodyLines <= 0 {
			in.BodyLines = 4
		}
		return render(ctx, systemTemplate, userTemplate, map[string]any{
			"ServiceName": in.ServiceName,
			"Message":     in.Message,
			"Target":      in.Target,
			"Candidates":  numbered(in.Candidates),
			"Count":       in.Count,
			"BodyLines":   in.BodyLines,
			"Instruction": instruction,
		})
	}
}

// BuildChat renders the prompt for small talk and long-form authoring.
func BuildChat(ctx context.Context, in Input, longForm bool) (Prompt, error) {
	return render(ctx, chatTemplate, "{{.Message}}", map[string]any{
		"ServiceName": in.ServiceName,
		"Message":     in.Message,
		"LongForm":    longForm,
	})
}

// Continuation extends a truncated exchange with the partial answer and a continue request.
func Continuation(p Prompt, partial string) []*schema.Message {
	return append(p.Messages(),
		schema.AssistantMessage(partial, nil),
		schema.UserMessage(continueTemplate),
	)
}

type candidateLine struct {
	N int
	model.CandidateItem
}

func numbered(items []model.CandidateItem) []candidateLine {
	out := make([]candidateLine, len(items))
	for i, it := range items {
		out[i] = candidateLine{N: i + 1, CandidateItem: it}
	}
	return out
}

// render formats through the eino prompt component so prompt callbacks fire.
func render(ctx context.Context, sys, user string, vars map[string]any) (Prompt, error) {
	tpl := prompt.FromMessages(
		schema.GoTemplate,
		schema.SystemMessage(sys),
		schema.UserMessage(user),
	)
	msgs, err := tpl.Format(ctx, vars)
	if err != nil {
		return Prompt{}, fmt.Errorf("prompt render: %w", err)
	}
	if len(msgs) != 2 || msgs[0] == nil || msgs[1] == nil {
		return Prompt{}, fmt.Errorf("prompt render: unexpected result")
	}
	return Prompt{System: msgs[0].Content, User: msgs[1].Content}, nil
}
