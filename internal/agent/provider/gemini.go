package provider

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components"
	einomodel "github.com/cloudwego/eino/components/model"
	"google.golang.org/genai"

	"github.com/toolscout-core/server/internal/agent/model"
	logx "github.com/toolscout-core/server/pkg/logger"
)

// Gemini calls Google Gemini through the eino-ext chat model.
// One ChatModel is kept per model name since tiers switch models per request.
type Gemini struct {
	client  *genai.Client
	timeout time.Duration

	mu     sync.Mutex
	models map[string]*gemini.ChatModel
}

func NewGemini(ctx context.Context, cfg model.ProviderConfig) (*Gemini, error) {
	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.GeminiBaseURL != "" {
		clientCfg.HTTPOptions.BaseURL = cfg.GeminiBaseURL
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		logx.Error().Err(err).Msg("Error creating Gemini client")
		return nil, fmt.Errorf("error creating Gemini client: %w", err)
	}
	return &Gemini{
		client:  client,
		timeout: cfg.Timeout,
		models:  make(map[string]*gemini.ChatModel),
	}, nil
}

func (g *Gemini) chatModel(ctx context.Context, name string) (*gemini.ChatModel, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if cm, ok := g.models[name]; ok {
		return cm, nil
	}
	cm, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client: g.client,
		Model:  name,
	})
	if err != nil {
		logx.Error().Err(err).Str("model", name).Msg("Error creating Gemini chat model")
		return nil, fmt.Errorf("error creating chat model %s: %w", name, err)
	}
	g.models[name] = cm
	return cm, nil
}

func (g *Gemini) Complete(ctx context.Context, req model.Completion) (model.CompletionResult, error) {
	cm, err := g.chatModel(ctx, req.Model)
	if err != nil {
		return model.CompletionResult{}, err
	}

	ctx, cancel := withTimeout(ctx, g.timeout)
	defer cancel()

	// Surface the call to graph callbacks as a chat model component.
	ctx = callbacks.ReuseHandlers(ctx, &callbacks.RunInfo{
		Name:      req.Model,
		Type:      "Gemini",
		Component: components.ComponentOfChatModel,
	})

	out, err := cm.Generate(ctx, req.Messages,
		einomodel.WithMaxTokens(req.MaxTokens),
		einomodel.WithTemperature(req.Temperature),
	)
	if err != nil {
		if IsRateLimit(err) {
			return model.CompletionResult{}, &RateLimitError{Provider: NameGemini, Err: err}
		}
		return model.CompletionResult{}, fmt.Errorf("gemini generate: %w", err)
	}
	if out == nil {
		return model.CompletionResult{}, ErrEmptyCompletion
	}

	res := model.CompletionResult{Text: out.Content}
	if out.ResponseMeta != nil {
		res.FinishReason = out.ResponseMeta.FinishReason
		res.Usage = out.ResponseMeta.Usage
	}
	return res, nil
}

var _ model.LMProvider = (*Gemini)(nil)
