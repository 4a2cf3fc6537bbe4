// Package engine runs one chat turn end to end: gates, tier resolution, the routing graph
// and the response envelope.
package engine

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/toolscout-core/server/internal/agent/gates"
	"github.com/toolscout-core/server/internal/agent/graph"
	"github.com/toolscout-core/server/internal/agent/model"
	"github.com/toolscout-core/server/internal/agent/tier"
	errx "github.com/toolscout-core/server/internal/core/error"
	logx "github.com/toolscout-core/server/pkg/logger"
	"github.com/toolscout-core/server/pkg/metrics"
)

// MaxMessageRunes bounds the inbound message.
const MaxMessageRunes = 2000

// Gate names used in rejection metrics.
const (
	gateInput      = "input"
	gateRateLimit  = "rate_limit"
	gateModeration = "moderation"
)

var (
	errEmptyMessage = errors.New("message is empty")
	errLongMessage  = errors.New("message too long")
	errRateLimited  = errors.New("client rate limit exceeded")
)

// Deps wires the engine. Limiter, Moderator, Sessions and Alerter may be nil.
type Deps struct {
	Limiter      model.RateLimiter
	Moderator    model.Moderator
	Sessions     model.SessionResolver
	Tiers        *tier.Resolver
	Runner       graph.Runner
	Alerter      model.Alerter
	AlertTimeout time.Duration
}

type Engine struct {
	deps Deps
}

func New(deps Deps) (*Engine, error) {
	if deps.Tiers == nil || deps.Runner == nil {
		return nil, errors.New("engine: tier resolver and graph runner are required")
	}
	return &Engine{deps: deps}, nil
}

// Handle produces exactly one envelope and its HTTP status for the request.
func (e *Engine) Handle(ctx context.Context, req model.ChatRequest, meta model.RequestMeta) (model.Envelope, int) {
	start := time.Now()
	log := logx.With(meta.TraceID)

	req.Message = strings.TrimSpace(req.Message)
	if err := validate(req); err != nil {
		metrics.GateRejections.WithLabelValues(gateInput).Inc()
		return e.reject(meta, errx.InputInvalid(err))
	}

	if e.deps.Limiter != nil {
		allowed, err := e.deps.Limiter.Allow(ctx, meta.ClientKey)
		if err != nil {
			log.Warn().Err(err).Msg("Rate limiter unavailable; allowing request")
		} else if !allowed {
			metrics.GateRejections.WithLabelValues(gateRateLimit).Inc()
			return e.reject(meta, errx.RateLimited(errRateLimited))
		}
	}

	if e.deps.Moderator != nil {
		res, err := e.deps.Moderator.Check(ctx, req.Message)
		switch {
		case err != nil:
			log.Warn().Err(err).Msg("Moderation check failed; allowing request")
			gates.Fire(ctx, e.deps.Alerter, e.deps.AlertTimeout, gates.EventModerationError, map[string]any{
				"trace_id": meta.TraceID,
				"error":    err.Error(),
			})
		case !res.Allowed:
			log.Info().Str("reason", res.Reason).Msg("Message blocked by moderation")
			metrics.GateRejections.WithLabelValues(gateModeration).Inc()
			return e.reject(meta, errx.ContentBlocked(errors.New(res.Reason)))
		}
	}

	session := model.Session{ID: meta.SessionID}
	if e.deps.Sessions != nil && meta.SessionID != "" {
		s, err := e.deps.Sessions.Resolve(ctx, meta.SessionID)
		if err != nil {
			log.Warn().Err(err).Msg("Session lookup failed; continuing as guest")
		} else {
			session = s
		}
	}

	t, downgraded := e.deps.Tiers.Resolve(session)
	if downgraded {
		metrics.TierDowngrades.Inc()
		log.Info().Str("tier", string(t.Name)).Msg("Breaker open; tier downgraded")
	}

	turn, err := e.deps.Runner.Invoke(ctx, model.Turn{
		TraceID:    meta.TraceID,
		Request:    req,
		Session:    session,
		Tier:       t,
		Downgraded: downgraded,
	})
	if err != nil {
		log.Error().Err(err).Msg("Routing graph failed")
		turn.Err = errx.Internal(err)
	}

	env := model.Envelope{
		Tier:          t.Descriptor(),
		Premium:       t.Name == model.TierPremium,
		Authenticated: session.Authenticated,
		TraceID:       meta.TraceID,
		Act:           string(turn.Intent.Act),
		Strategy:      string(turn.Decision.Strategy),
	}
	status := http.StatusOK
	code := turn.Code

	if turn.Err != nil {
		code = turn.Err.Code
		status = errx.StatusOf(code)
		env.Response = turn.Err.Message
		log.Warn().Err(turn.Err).Str("code", string(code)).Int("status", status).Msg("Chat turn failed")
	} else {
		env.Response = turn.Text
		env.Tools = turn.Candidates
		env.SlotPrompt = turn.Decision.SlotPrompt
	}
	env.Code = string(code)

	metrics.ChatRequests.WithLabelValues(env.Strategy, codeLabel(code)).Inc()
	metrics.ChatLatency.WithLabelValues(string(t.Name)).Observe(time.Since(start).Seconds())
	log.Info().
		Str("strategy", env.Strategy).
		Str("tier", string(t.Name)).
		Int("status", status).
		Int("tools", len(env.Tools)).
		Int("lm_calls", turn.LMCalls).
		Float64("cost_usd", turn.CostUSD).
		Dur("latency", time.Since(start)).
		Msg("Chat turn complete")
	return env, status
}

// Reject builds the envelope for a request refused before the engine ran, such as an unreadable body.
func (e *Engine) Reject(meta model.RequestMeta, appErr *errx.AppError) (model.Envelope, int) {
	return e.reject(meta, appErr)
}

func (e *Engine) reject(meta model.RequestMeta, appErr *errx.AppError) (model.Envelope, int) {
	status := errx.StatusOf(appErr.Code)
	metrics.ChatRequests.WithLabelValues("", codeLabel(appErr.Code)).Inc()
	log := logx.With(meta.TraceID)
	log.Info().Err(appErr).Str("code", string(appErr.Code)).Int("status", status).Msg("Chat request rejected")
	return model.Envelope{
		Response: appErr.Message,
		Tier:     e.deps.Tiers.Guest().Descriptor(),
		TraceID:  meta.TraceID,
		Code:     string(appErr.Code),
	}, status
}

func validate(req model.ChatRequest) error {
	if req.Message == "" {
		return errEmptyMessage
	}
	if utf8.RuneCountInString(req.Message) > MaxMessageRunes {
		return errLongMessage
	}
	return nil
}

func codeLabel(c errx.Code) string {
	if c == "" {
		return "OK"
	}
	return string(c)
}

// BreakerObserver mirrors breaker transitions into metrics and alerts when it opens.
func BreakerObserver(a model.Alerter, timeout time.Duration) func(open bool) {
	return func(open bool) {
		metrics.SetBreaker(open)
		if open {
			gates.Fire(context.Background(), a, timeout, gates.EventBreakerOpened, map[string]any{"open": true})
		}
	}
}
