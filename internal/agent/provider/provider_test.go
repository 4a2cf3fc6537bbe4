package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toolscout-core/server/internal/agent/model"
)

func TestIsRateLimit(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("Error 429, Message: Resource has been exhausted"), true},
		{errors.New("rpc error: RESOURCE_EXHAUSTED"), true},
		{errors.New("You exceeded your current quota"), true},
		{errors.New("rate limit reached for requests"), true},
		{fmt.Errorf("wrapped: %w", &RateLimitError{Provider: "x", Err: errors.New("slow down")}), true},
		{errors.New("503 service unavailable"), false},
		{context.DeadlineExceeded, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, IsRateLimit(tc.err), "%v", tc.err)
	}
}

func TestIsTruncated(t *testing.T) {
	assert.True(t, IsTruncated("MAX_TOKENS"))
	assert.True(t, IsTruncated("length"))
	assert.False(t, IsTruncated("STOP"))
	assert.False(t, IsTruncated("stop"))
	assert.False(t, IsTruncated(""))
}

func TestNewRejectsUnknownProvider(t *testing.T) {
	_, err := New(context.Background(), model.ProviderConfig{Name: "bard"})
	assert.Error(t, err)

	_, err = New(context.Background(), model.ProviderConfig{Name: "openai"})
	assert.Error(t, err, "openai requires a key")
}

func openAIServer(t *testing.T, status int, body string, seen *map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"), r.URL.Path)
		if seen != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(seen))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestOpenAIComplete(t *testing.T) {
	var seen map[string]any
	srv := openAIServer(t, http.StatusOK, `{
		"id": "chatcmpl-1", "object": "chat.completion", "created": 1, "model": "gpt-4o-mini",
		"choices": [{"index": 0, "finish_reason": "length", "logprobs": null,
			"message": {"role": "assistant", "content": "첫 번째 추천은"}}],
		"usage": {"prompt_tokens": 12, "completion_tokens": 7, "total_tokens": 19}
	}`, &seen)

	p, err := NewOpenAI(model.ProviderConfig{OpenAIAPIKey: "k", OpenAIBaseURL: srv.URL, Timeout: time.Second})
	require.NoError(t, err)

	res, err := p.Complete(context.Background(), model.Completion{
		Model:       "gpt-4o-mini",
		Messages:    []*schema.Message{schema.SystemMessage("sys"), schema.UserMessage("hi")},
		MaxTokens:   600,
		Temperature: 0.5,
	})
	require.NoError(t, err)
	assert.Equal(t, "첫 번째 추천은", res.Text)
	assert.True(t, IsTruncated(res.FinishReason))
	require.NotNil(t, res.Usage)
	assert.Equal(t, 19, res.Usage.TotalTokens)

	assert.Equal(t, "gpt-4o-mini", seen["model"])
	assert.EqualValues(t, 600, seen["max_completion_tokens"])
	msgs := seen["messages"].([]any)
	require.Len(t, msgs, 2)
	assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
	assert.Equal(t, "user", msgs[1].(map[string]any)["role"])
}

func TestOpenAIRateLimited(t *testing.T) {
	srv := openAIServer(t, http.StatusTooManyRequests,
		`{"error": {"message": "Rate limit exceeded", "type": "requests", "code": "rate_limit_exceeded"}}`, nil)

	p, err := NewOpenAI(model.ProviderConfig{OpenAIAPIKey: "k", OpenAIBaseURL: srv.URL})
	require.NoError(t, err)

	_, err = p.Complete(context.Background(), model.Completion{Model: "gpt-4o", Messages: []*schema.Message{schema.UserMessage("hi")}})
	require.Error(t, err)
	var rl *RateLimitError
	assert.ErrorAs(t, err, &rl)
	assert.True(t, IsRateLimit(err))
}

func TestOpenAIServerError(t *testing.T) {
	srv := openAIServer(t, http.StatusInternalServerError, `{"error": {"message": "boom"}}`, nil)

	p, err := NewOpenAI(model.ProviderConfig{OpenAIAPIKey: "k", OpenAIBaseURL: srv.URL})
	require.NoError(t, err)

	_, err = p.Complete(context.Background(), model.Completion{Model: "gpt-4o", Messages: []*schema.Message{schema.UserMessage("hi")}})
	require.Error(t, err)
	assert.False(t, IsRateLimit(err))
}

func TestToOpenAIMessagesSkipsNil(t *testing.T) {
	out := toOpenAIMessages([]*schema.Message{nil, schema.AssistantMessage("a", nil), schema.UserMessage("u")})
	assert.Len(t, out, 2)
}
