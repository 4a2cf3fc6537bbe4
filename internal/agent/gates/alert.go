package gates

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/toolscout-core/server/internal/agent/model"
	logx "github.com/toolscout-core/server/pkg/logger"
)

// Alert events.
const (
	EventProviderRateLimited = "provider_rate_limited"
	EventProviderFailure     = "provider_failure"
	EventBreakerOpened       = "breaker_opened"
	EventModerationError     = "moderation_error"
)

// LogAlerter writes alerts to the structured log only.
type LogAlerter struct{}

func (LogAlerter) Notify(_ context.Context, event string, fields map[string]any) error {
	logx.Warn().Str("alert", event).Fields(fields).Msg("Operational alert")
	return nil
}

// WebhookAlerter posts alerts as JSON to a chat-ops webhook.
type WebhookAlerter struct {
	url    string
	client *http.Client
}

func NewWebhookAlerter(url string, timeout time.Duration) *WebhookAlerter {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &WebhookAlerter{url: url, client: &http.Client{Timeout: timeout}}
}

type webhookPayload struct {
	Event  string         `json:"event"`
	Fields map[string]any `json:"fields,omitempty"`
	At     time.Time      `json:"at"`
}

func (w *WebhookAlerter) Notify(ctx context.Context, event string, fields map[string]any) error {
	body, err := json.Marshal(webhookPayload{Event: event, Fields: fields, At: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("marshal alert: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build alert request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("post alert: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("alert webhook returned %d", resp.StatusCode)
	}
	return nil
}

// Multi fans an alert out to every alerter and returns the first error.
type Multi []model.Alerter

func (m Multi) Notify(ctx context.Context, event string, fields map[string]any) error {
	var first error
	for _, a := range m {
		if err := a.Notify(ctx, event, fields); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Delivery is the outcome of a best-effort alert. A failed delivery is
// reported here and logged, never returned to the request path.
type Delivery struct {
	Event string
	Err   error
}

func (d Delivery) Ignored() bool { return d.Err != nil }

// Fire sends an alert synchronously under timeout and swallows any failure.
func Fire(ctx context.Context, a model.Alerter, timeout time.Duration, event string, fields map[string]any) Delivery {
	if a == nil {
		return Delivery{Event: event}
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()
	}
	err := a.Notify(ctx, event, fields)
	if err != nil {
		logx.Warn().Err(err).Str("alert", event).Msg("Alert delivery failed; ignoring")
	}
	return Delivery{Event: event, Err: err}
}

var (
	_ model.Alerter = LogAlerter{}
	_ model.Alerter = (*WebhookAlerter)(nil)
	_ model.Alerter = Multi(nil)
)
