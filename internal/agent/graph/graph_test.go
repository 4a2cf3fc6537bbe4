package graph

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toolscout-core/server/internal/agent/breaker"
	"github.com/toolscout-core/server/internal/agent/catalog"
	"github.com/toolscout-core/server/internal/agent/graph/nodes"
	"github.com/toolscout-core/server/internal/agent/intent"
	"github.com/toolscout-core/server/internal/agent/model"
	"github.com/toolscout-core/server/internal/agent/postprocess"
	"github.com/toolscout-core/server/internal/agent/retrieval"
	"github.com/toolscout-core/server/internal/agent/synthesis"
	errx "github.com/toolscout-core/server/internal/core/error"
)

type scriptedLM struct {
	mu    sync.Mutex
	text  string
	err   error
	calls []model.Completion
}

func (s *scriptedLM) Complete(_ context.Context, req model.Completion) (model.CompletionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, req)
	if s.err != nil {
		return model.CompletionResult{}, s.err
	}
	return model.CompletionResult{Text: s.text, FinishReason: "STOP"}, nil
}

var testTier = model.Tier{Name: model.TierGuest, Model: "test-model", ShortTokens: 100, LongTokens: 400}

var testItems = []model.CandidateItem{
	{ID: "img-1", Name: "Alpha Image", Description: "이미지 생성", Category: "image", PriceTier: "free"},
	{ID: "img-2", Name: "Beta Image", Description: "이미지 편집", Category: "image", PriceTier: "freemium"},
	{ID: "img-3", Name: "Gamma Image", Description: "로고 디자인", Category: "design", PriceTier: "paid"},
	{ID: "prd-1", Name: "Notion AI", Description: "문서 정리", Category: "productivity", PriceTier: "freemium"},
}

func newRunner(t *testing.T, lm model.LMProvider, items []model.CandidateItem) Runner {
	t.Helper()
	lex := intent.DefaultLexicon()
	cat := catalog.NewMemory(items)
	b := breaker.New(5, time.Minute)
	t.Cleanup(b.Stop)

	r, err := BuildRunner(context.Background(), &GraphConfig{Deps: &nodes.Deps{
		Classifier:  intent.NewClassifier(lex),
		Router:      intent.NewRouter(lex, 0.7),
		Ranker:      retrieval.NewRanker(cat, retrieval.NewRotationTable(), lex.CatalogCategories, model.RetrievalConfig{DefaultCount: 5, MaxCount: 10}),
		Catalog:     cat,
		Synthesizer: synthesis.New(lm, b, 2),
		Processor:   postprocess.New(4, nil),
		Synthesis:   model.SynthesisConfig{ServiceName: "툴스카우트", SectionBodyLines: 4},
	}})
	require.NoError(t, err)
	return r
}

func invoke(t *testing.T, r Runner, message string, req ...model.ChatRequest) model.Turn {
	t.Helper()
	in := model.ChatRequest{Message: message}
	if len(req) > 0 {
		in = req[0]
		in.Message = message
	}
	out, err := r.Invoke(context.Background(), model.Turn{TraceID: "trace-1", Request: in, Tier: testTier})
	require.NoError(t, err)
	return out
}

func TestBuildGraphRequiresDeps(t *testing.T) {
	_, err := BuildGraph(context.Background(), nil)
	assert.Error(t, err)

	_, err = BuildGraph(context.Background(), &GraphConfig{Deps: &nodes.Deps{}})
	assert.Error(t, err)
}

func TestRecommendFencesUnlistedTools(t *testing.T) {
	lm := &scriptedLM{text: "### Alpha Image\n무료로 쓰기 좋아요.\n\n### Beta Image\n편집이 쉬워요.\n\n### Gamma Image\n로고에 강해요.\n\n### Omega Draw\n목록에 없는 툴이에요."}
	out := invoke(t, newRunner(t, lm, testItems), "이미지 생성 툴 3개 추천해줘")

	require.Nil(t, out.Err)
	assert.Equal(t, model.StrategyToolSearch, out.Decision.Strategy)
	assert.Len(t, out.Candidates, 3)
	assert.Contains(t, out.Text, "Alpha Image")
	assert.NotContains(t, out.Text, "Omega Draw")
	assert.Equal(t, 1, out.LMCalls)
	require.Len(t, lm.calls, 1)
	assert.Equal(t, testTier.LongTokens, lm.calls[0].MaxTokens)
}

func TestRecommendNoResults(t *testing.T) {
	lm := &scriptedLM{text: "쓰이면 안 돼요."}
	items := []model.CandidateItem{{ID: "txt-1", Name: "Writer", Category: "text", PriceTier: "free"}}
	out := invoke(t, newRunner(t, lm, items), "이미지 생성 툴 3개 추천해줘")

	assert.True(t, out.NoResults)
	assert.Equal(t, nodes.NoResultsMessage, out.Text)
	require.NotNil(t, out.Candidates)
	assert.Empty(t, out.Candidates)
	assert.Empty(t, lm.calls)
}

func TestToolsOnlySkipsSynthesis(t *testing.T) {
	lm := &scriptedLM{text: "unused."}
	out := invoke(t, newRunner(t, lm, testItems), "이미지 생성 툴 추천해줘", model.ChatRequest{ToolsOnly: true})

	require.Nil(t, out.Err)
	assert.Empty(t, lm.calls)
	assert.NotEmpty(t, out.Candidates)
	assert.Contains(t, out.Text, out.Candidates[0].Name)
}

func TestDetailUsesNamedTool(t *testing.T) {
	lm := &scriptedLM{text: "### Notion AI\n문서를 정리해 주는 도구예요."}
	out := invoke(t, newRunner(t, lm, testItems), "Notion AI에 대해 자세히 알려줘")

	require.Nil(t, out.Err)
	assert.Equal(t, model.StrategyDetail, out.Decision.Strategy)
	require.Len(t, out.Candidates, 1)
	assert.Equal(t, "prd-1", out.Candidates[0].ID)
	assert.Contains(t, out.Text, "Notion AI")
}

func TestDetailFallsBackToRecommendation(t *testing.T) {
	lm := &scriptedLM{text: "### Alpha Image\n좋아요."}
	out := invoke(t, newRunner(t, lm, testItems), "Zorblax에 대해 자세히 알려줘")

	require.Nil(t, out.Err)
	assert.Equal(t, model.StrategyToolSearch, out.Decision.Strategy)
	assert.NotEmpty(t, out.Candidates)
}

func TestSlotFillAndRedirectSkipLM(t *testing.T) {
	lm := &scriptedLM{text: "unused."}
	r := newRunner(t, lm, testItems)

	out := invoke(t, r, "툴 추천해줘")
	assert.Equal(t, model.StrategySlotFill, out.Decision.Strategy)
	require.NotNil(t, out.Decision.SlotPrompt)
	assert.Equal(t, out.Decision.SlotPrompt.Message, out.Text)

	out = invoke(t, r, "슬라이드 만들어줘")
	assert.Equal(t, model.StrategyFeatureRedirect, out.Decision.Strategy)
	assert.Contains(t, out.Text, "/create/slides")

	assert.Empty(t, lm.calls)
}

func TestChatBudgets(t *testing.T) {
	lm := &scriptedLM{text: "안녕하세요! 무엇을 도와드릴까요?"}
	r := newRunner(t, lm, testItems)

	out := invoke(t, r, "안녕하세요")
	require.Nil(t, out.Err)
	assert.Nil(t, out.Candidates)
	assert.Contains(t, out.Text, "무엇을 도와드릴까요")

	invoke(t, r, "이메일 작성 팁이 궁금해")

	require.Len(t, lm.calls, 2)
	assert.Equal(t, testTier.ShortTokens, lm.calls[0].MaxTokens)
	assert.Equal(t, testTier.LongTokens, lm.calls[1].MaxTokens)
}

func TestProviderFailureIsCarriedOnTurn(t *testing.T) {
	lm := &scriptedLM{err: errors.New("upstream exploded")}
	out := invoke(t, newRunner(t, lm, testItems), "이미지 생성 툴 3개 추천해줘")

	require.NotNil(t, out.Err)
	assert.Equal(t, errx.CodeProviderFailure, out.Err.Code)
	assert.Equal(t, 1, out.LMCalls)
}

func TestRedirectMessageWithoutPage(t *testing.T) {
	assert.Contains(t, nodes.RedirectMessage("툴스카우트", nil), "툴스카우트")
	assert.Contains(t, nodes.RedirectMessage("툴스카우트", &model.FeaturePage{Label: "AI 이미지 만들기", Path: "/create/image"}), "/create/image")
}
