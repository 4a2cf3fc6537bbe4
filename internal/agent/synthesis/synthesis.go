// Package synthesis issues the tier-budgeted LM call and its continuation loop.
package synthesis

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/cloudwego/eino/schema"

	"github.com/toolscout-core/server/internal/agent/gates"
	"github.com/toolscout-core/server/internal/agent/graph/prompts"
	"github.com/toolscout-core/server/internal/agent/model"
	"github.com/toolscout-core/server/internal/agent/provider"
	errx "github.com/toolscout-core/server/internal/core/error"
	logx "github.com/toolscout-core/server/pkg/logger"
	"github.com/toolscout-core/server/pkg/metrics"
)

const DefaultMaxContinuations = 2

// Breaker is the part of the circuit breaker synthesis reports into.
type Breaker interface {
	RecordSuccess()
	RecordFailure()
	IsOpen() bool
}

// Request is one synthesis job.
type Request struct {
	TraceID string
	Tier    model.Tier
	Prompt  prompts.Prompt
	// LongForm selects the long budget (recommendations, detail, documents).
	LongForm bool
}

// Result is the stitched answer plus accounting.
type Result struct {
	Text          string
	Calls         int
	Continuations int
	CostUSD       float64
	// Partial is set when a continuation failed and the text was kept as is.
	Partial bool
}

type Synthesizer struct {
	lm               model.LMProvider
	breaker          Breaker
	alerter          model.Alerter
	alertTimeout     time.Duration
	maxContinuations int
}

type Option func(*Synthesizer)

func WithAlerter(a model.Alerter, timeout time.Duration) Option {
	return func(s *Synthesizer) {
		s.alerter = a
		s.alertTimeout = timeout
	}
}

func New(lm model.LMProvider, breaker Breaker, maxContinuations int, opts ...Option) *Synthesizer {
	if maxContinuations < 0 {
		maxContinuations = DefaultMaxContinuations
	}
	s := &Synthesizer{lm: lm, breaker: breaker, maxContinuations: maxContinuations}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Generate runs the primary call and up to maxContinuations sequential continuations.
// The returned error is always an *errx.AppError.
func (s *Synthesizer) Generate(ctx context.Context, req Request) (Result, error) {
	log := logx.With(req.TraceID)
	var res Result

	first, err := s.call(ctx, req, req.Prompt.Messages(), req.Tier.Budget(req.LongForm), &res)
	if err != nil {
		return res, s.fail(ctx, req, err)
	}
	res.Text = strings.TrimSpace(first.Text)
	last := first

	for res.Continuations < s.maxContinuations && needsContinuation(last.FinishReason, res.Text) {
		next, err := s.call(ctx, req, prompts.Continuation(req.Prompt, res.Text), req.Tier.ContinuationBudget(), &res)
		res.Continuations++
		metrics.LMContinuations.Inc()
		if err != nil {
			s.breaker.RecordFailure()
			log.Warn().Err(err).Int("continuation", res.Continuations).Msg("Continuation failed; keeping partial answer")
			res.Partial = true
			break
		}
		added := AppendNew(res.Text, next.Text)
		if added == res.Text {
			break
		}
		res.Text = added
		last = next
	}

	log.Debug().
		Int("calls", res.Calls).
		Int("continuations", res.Continuations).
		Float64("total_cost_usd", res.CostUSD).
		Msg("Synthesis complete")
	return res, nil
}

func (s *Synthesizer) call(ctx context.Context, req Request, msgs []*schema.Message, budget int, res *Result) (model.CompletionResult, error) {
	res.Calls++
	out, err := s.lm.Complete(ctx, model.Completion{
		Model:       req.Tier.Model,
		Messages:    msgs,
		MaxTokens:   budget,
		Temperature: req.Tier.Temperature,
	})
	if err != nil {
		outcome := "error"
		if provider.IsRateLimit(err) {
			outcome = "rate_limited"
		}
		metrics.LMCalls.WithLabelValues(req.Tier.Model, outcome).Inc()
		return out, err
	}
	metrics.LMCalls.WithLabelValues(req.Tier.Model, "ok").Inc()
	s.breaker.RecordSuccess()

	if out.Usage != nil {
		inC, outC, total := model.ComputeCost(out.Usage, model.ResolvePricing(req.Tier.Model))
		res.CostUSD += total
		metrics.LMCostUSD.WithLabelValues(req.Tier.Model).Add(total)
		logx.Debug().
			Str("trace_id", req.TraceID).
			Str("model", req.Tier.Model).
			Int("prompt_tokens", out.Usage.PromptTokens).
			Int("completion_tokens", out.Usage.CompletionTokens).
			Int("total_tokens", out.Usage.TotalTokens).
			Float64("input_cost_usd", inC).
			Float64("output_cost_usd", outC).
			Float64("total_cost_usd", total).
			Str("finish_reason", out.FinishReason).
			Msg("LLM usage")
	}
	return out, nil
}

// fail records the failure and maps it to the user-facing error.
func (s *Synthesizer) fail(ctx context.Context, req Request, err error) error {
	log := logx.With(req.TraceID)
	s.breaker.RecordFailure()
	if cancelled(ctx, err) {
		log.Info().Err(err).Msg("Request cancelled during synthesis")
		return errx.Internal(err)
	}

	fields := map[string]any{"trace_id": req.TraceID, "model": req.Tier.Model, "error": err.Error()}

	if provider.IsRateLimit(err) {
		log.Warn().Err(err).Str("model", req.Tier.Model).Msg("Provider rate limited")
		gates.Fire(ctx, s.alerter, s.alertTimeout, gates.EventProviderRateLimited, fields)
		return errx.RateLimited(err)
	}

	log.Error().Err(err).Str("model", req.Tier.Model).Msg("Provider call failed")
	gates.Fire(ctx, s.alerter, s.alertTimeout, gates.EventProviderFailure, fields)
	if s.breaker.IsOpen() {
		return errx.CircuitOpen(err)
	}
	return errx.ProviderFailure(err)
}

func cancelled(ctx context.Context, err error) bool {
	return ctx.Err() != nil && errors.Is(err, context.Canceled)
}

func needsContinuation(finishReason, text string) bool {
	if text == "" {
		return false
	}
	return provider.IsTruncated(finishReason) || !EndsTerminal(text)
}

// EndsTerminal reports whether text ends like a finished sentence.
func EndsTerminal(text string) bool {
	text = strings.TrimRightFunc(text, func(r rune) bool {
		return unicode.IsSpace(r) || strings.ContainsRune("*_`\"'”’」』", r)
	})
	if text == "" {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(text)
	if strings.ContainsRune(".!?。！？…)]）~", r) {
		return true
	}
	switch r {
	case '다', '요', '죠', '까', '네':
		return true
	}
	// Emoji and other symbols close a sentence in chat replies.
	return unicode.Is(unicode.So, r)
}

const minOverlap = 6

// AppendNew appends only the part of next that prev does not already end with.
func AppendNew(prev, next string) string {
	next = strings.TrimRightFunc(next, unicode.IsSpace)
	trimmed := strings.TrimLeftFunc(next, unicode.IsSpace)
	if trimmed == "" {
		return prev
	}
	if strings.HasPrefix(trimmed, prev) {
		trimmed = trimmed[len(prev):]
		if strings.TrimSpace(trimmed) == "" {
			return prev
		}
		return prev + trimmed
	}
	for k := min(len(prev), len(trimmed)); k >= minOverlap; k-- {
		if k < len(trimmed) && !utf8.RuneStart(trimmed[k]) {
			continue
		}
		if strings.HasSuffix(prev, trimmed[:k]) {
			return prev + trimmed[k:]
		}
	}
	if startsMidSentence(prev) {
		return prev + next
	}
	return prev + "\n" + trimmed
}

// startsMidSentence is true when prev was cut inside a sentence, so the
// continuation is glued on without a line break.
func startsMidSentence(prev string) bool {
	return !EndsTerminal(prev) && !strings.HasSuffix(prev, "\n")
}
