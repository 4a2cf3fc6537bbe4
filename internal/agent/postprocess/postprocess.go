// Package postprocess makes generated answers consistent with the recommendation set.
package postprocess

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"unicode"

	"github.com/toolscout-core/server/internal/agent/model"
	errx "github.com/toolscout-core/server/internal/core/error"
	logx "github.com/toolscout-core/server/pkg/logger"
)

const DefaultBodyLines = 4

const (
	// BlockedOutputMessage replaces generated text that fails output moderation.
	BlockedOutputMessage = "생성된 답변을 표시할 수 없어요. 질문을 조금 바꿔서 다시 시도해 주세요."
	// EmptyMessage is used when neither text nor candidates are available.
	EmptyMessage = "죄송해요, 지금은 알맞은 답변을 만들지 못했어요. 찾으시는 작업을 조금 더 알려 주시겠어요?"
)

var loginFooters = []string{
	"💡 로그인하면 더 좋은 모델로 자세한 추천을 받을 수 있어요.",
	"🔖 로그인하고 마음에 드는 툴을 저장해 두세요.",
	"✨ 회원이 되시면 더 길고 꼼꼼한 비교 답변을 드려요.",
}

var catchAllPrefixes = []string{"기타", "추가", "참고", "그 외", "그외", "other", "additional", "more "}

// Input is one answer to clean up.
type Input struct {
	TraceID    string
	Text       string
	Candidates []model.CandidateItem
	// RequestedCount is zero when the user did not ask for a number of items.
	RequestedCount int
	Session        model.Session
	// Fence enables name fencing against Candidates.
	Fence bool
}

type Output struct {
	Text string
	// Code is CodeOutputPolicyViolation when the text was replaced.
	Code errx.Code
}

type Processor struct {
	bodyLines int
	moderator model.Moderator
	footerSeq atomic.Uint64
}

// New builds a Processor; moderator may be nil to skip output moderation.
func New(bodyLines int, moderator model.Moderator) *Processor {
	if bodyLines <= 0 {
		bodyLines = DefaultBodyLines
	}
	return &Processor{bodyLines: bodyLines, moderator: moderator}
}

// Process applies fencing, count enforcement, compaction, moderation and
// personalization in that order. The result text is never empty.
func (p *Processor) Process(ctx context.Context, in Input) Output {
	var names []string
	if in.Fence {
		names = candidateNames(in.Candidates)
	}
	doc := parse(strings.TrimSpace(in.Text), names)

	if len(names) > 0 && len(doc.sections) > 0 {
		doc.sections = fence(doc.sections, names)
	}
	if in.RequestedCount > 0 {
		doc.sections = enforceCount(doc.sections, in.RequestedCount)
		doc.outro = dropCatchAllLines(doc.outro)
	}
	for i := range doc.sections {
		doc.sections[i].body = compact(doc.sections[i].body, p.bodyLines)
	}

	text := doc.render()
	if len(doc.sections) == 0 && len(names) > 0 && hadSections(in.Text) {
		// Every section was fenced out; the intro alone would reference nothing.
		text = ""
	}
	if text == "" {
		text = Intro(in.Candidates)
	}

	out := Output{Text: text}
	if p.moderator != nil {
		res, err := p.moderator.Check(ctx, text)
		switch {
		case err != nil:
			logx.Warn().Err(err).Str("trace_id", in.TraceID).Msg("Output moderation failed; passing text through")
		case !res.Allowed:
			logx.Warn().Str("trace_id", in.TraceID).Str("reason", res.Reason).Msg("Generated text blocked by output moderation")
			return Output{Text: BlockedOutputMessage, Code: errx.CodeOutputPolicyViolation}
		}
	}

	out.Text = p.personalize(out.Text, in.Session)
	return out
}

func hadSections(text string) bool {
	return detectStyle(strings.Split(text, "\n"), nil).kind != kindNone
}

// candidateNames returns the squashed candidate names used for fencing.
func candidateNames(items []model.CandidateItem) []string {
	names := make([]string, 0, len(items))
	for _, it := range items {
		if n := squash(it.Name); n != "" {
			names = append(names, n)
		}
	}
	return names
}

func namesCandidate(title string, names []string) bool {
	t := squash(title)
	for _, n := range names {
		if strings.Contains(t, n) {
			return true
		}
	}
	return false
}

// fence keeps only sections whose title names a candidate.
func fence(sections []section, names []string) []section {
	kept := sections[:0:0]
	for _, s := range sections {
		if namesCandidate(s.title, names) {
			kept = append(kept, s)
		}
	}
	return kept
}

func enforceCount(sections []section, n int) []section {
	kept := sections[:0:0]
	for _, s := range sections {
		if !isCatchAll(s.title) {
			kept = append(kept, s)
		}
	}
	if len(kept) > n {
		kept = kept[:n]
	}
	return kept
}

func dropCatchAllLines(lines []string) []string {
	out := lines[:0:0]
	for _, l := range lines {
		if !isCatchAll(l) {
			out = append(out, l)
		}
	}
	return out
}

func isCatchAll(title string) bool {
	t := strings.ToLower(strings.TrimLeft(title, "*_ #[("))
	for _, p := range catchAllPrefixes {
		if strings.HasPrefix(t, p) {
			return true
		}
	}
	return false
}

// compact keeps at most max non-blank body lines.
func compact(body []string, max int) []string {
	out := make([]string, 0, max)
	for _, l := range body {
		if strings.TrimSpace(l) == "" {
			continue
		}
		if len(out) == max {
			break
		}
		out = append(out, l)
	}
	return out
}

// squash lowercases and drops spaces and punctuation so "DALL·E 3" matches "**DALL-E 3**".
func squash(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func (p *Processor) personalize(text string, s model.Session) string {
	if s.Authenticated {
		if s.Nickname == "" {
			return text
		}
		return fmt.Sprintf("%s님, 요청하신 내용을 정리해 드릴게요.\n\n%s", s.Nickname, text)
	}
	i := p.footerSeq.Add(1) - 1
	return text + "\n\n" + loginFooters[i%uint64(len(loginFooters))]
}

// Intro builds a minimal answer from the top one to three candidates.
func Intro(items []model.CandidateItem) string {
	if len(items) == 0 {
		return EmptyMessage
	}
	var b strings.Builder
	b.WriteString("요청하신 조건에 맞는 AI 툴을 골라 봤어요.\n")
	for i, it := range items[:min(len(items), 3)] {
		fmt.Fprintf(&b, "\n%d. **%s**", i+1, it.Name)
		if it.Description != "" {
			fmt.Fprintf(&b, " - %s", it.Description)
		}
	}
	return b.String()
}
