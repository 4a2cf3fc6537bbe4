package intent

import (
	"fmt"

	"github.com/toolscout-core/server/internal/agent/model"
)

var categoryLabels = map[string]string{
	"text":         "글쓰기",
	"image":        "이미지",
	"video":        "영상",
	"audio":        "음성·음악",
	"code":         "코딩",
	"productivity": "업무 생산성",
	"website":      "웹사이트",
	"automation":   "업무 자동화",
}

// SlotPromptFor builds the clarifying question and suggestion chips for a search strategy.
func SlotPromptFor(s model.Strategy, lex *Lexicon) *model.SlotPrompt {
	message := "어떤 작업에 쓸 AI 툴을 찾고 계신가요? 분야를 골라 주시면 딱 맞는 툴을 추천해 드릴게요."
	suffix := "AI 툴 추천해줘"
	if s == model.StrategyBeginner {
		message = "처음 써 보시는군요! 어떤 작업부터 시작해 보고 싶으신가요?"
		suffix = "초보자도 쓰기 쉬운 AI 툴 추천해줘"
	}

	sp := &model.SlotPrompt{Intent: string(s), Message: message}
	for _, c := range lex.Categories() {
		label, ok := categoryLabels[c.Key]
		if !ok {
			continue
		}
		sp.Options = append(sp.Options, model.SlotOption{
			Label: label,
			Send:  fmt.Sprintf("%s %s", label, suffix),
		})
	}
	return sp
}
