package prompts

import (
	"context"
	"strings"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toolscout-core/server/internal/agent/model"
)

func TestEveryVariantHasBuilder(t *testing.T) {
	require.Len(t, builders, len(Variants()))
	for _, v := range Variants() {
		_, ok := builders[v]
		assert.True(t, ok, v)
	}
}

func TestSelectVariant(t *testing.T) {
	cases := []struct {
		msg    string
		forced []string
		want   Variant
	}{
		{"노션이랑 에버노트 비교해줘", nil, VariantCompare},
		{"Cursor 장단점 알려줘", nil, VariantProsCons},
		{"도입 체크리스트 만들어줘", nil, VariantChecklist},
		{"Zapier 사용법 알려줘", nil, VariantQuickstart},
		{"간단히 요약해서 추천해줘", nil, VariantSummary},
		{"글쓰기 AI 추천해줘", nil, VariantGuide},
		{"비교해줘", []string{"summary"}, VariantSummary},
		{"비교해줘", []string{"", "nonsense"}, VariantCompare},
		{"anything", []string{" Pros_Cons "}, VariantProsCons},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, SelectVariant(tc.msg, tc.forced...), tc.msg)
	}
}

func sampleInput() Input {
	return Input{
		ServiceName: "툴스카우트",
		Message:     "웹사이트 만드는 AI 3개 추천해줘",
		Count:       3,
		BodyLines:   4,
		Candidates: []model.CandidateItem{
			{ID: "a", Name: "Framer", Category: "website", PriceTier: "freemium", Description: "랜딩 페이지", URL: "https://framer.com"},
			{ID: "b", Name: "Wix ADI", Category: "website", PriceTier: "freemium", Description: "맞춤 사이트"},
		},
	}
}

func TestBuildRendersCandidatesAndCount(t *testing.T) {
	for _, v := range Variants() {
		t.Run(string(v), func(t *testing.T) {
			p, err := Build(context.Background(), v, sampleInput())
			require.NoError(t, err)
			assert.Contains(t, p.System, "툴스카우트")
			assert.Contains(t, p.System, "정확히 3개")
			assert.Contains(t, p.System, "4줄")
			assert.Contains(t, p.User, "1. Framer (website, freemium) - 랜딩 페이지 [https://framer.com]")
			assert.Contains(t, p.User, "2. Wix ADI (website, freemium) - 맞춤 사이트")
			assert.NotContains(t, p.User, "<no value>")
			assert.NotContains(t, p.System, "<no value>")
		})
	}
}

func TestBuildWithoutCountOrCandidates(t *testing.T) {
	in := sampleInput()
	in.Count = 0
	in.Candidates = nil
	p, err := Build(context.Background(), VariantGuide, in)
	require.NoError(t, err)
	assert.NotContains(t, p.System, "정확히")
	assert.Contains(t, p.User, "(후보 없음)")
}

func TestBuildUnknownVariant(t *testing.T) {
	_, err := Build(context.Background(), Variant("poem"), sampleInput())
	assert.Error(t, err)
}

func TestBuildChat(t *testing.T) {
	short, err := BuildChat(context.Background(), Input{ServiceName: "툴스카우트", Message: "안녕하세요 {{.Secret}}"}, false)
	require.NoError(t, err)
	assert.Contains(t, short.System, "3~4문장")
	assert.Equal(t, "안녕하세요 {{.Secret}}", short.User)

	long, err := BuildChat(context.Background(), Input{ServiceName: "툴스카우트", Message: "보도자료 써줘"}, true)
	require.NoError(t, err)
	assert.Contains(t, long.System, "완성된 형태")
}

func TestContinuation(t *testing.T) {
	p := Prompt{System: "sys", User: "user"}
	msgs := Continuation(p, "부분 답변")
	require.Len(t, msgs, 4)
	assert.Equal(t, schema.Assistant, msgs[2].Role)
	assert.Equal(t, "부분 답변", msgs[2].Content)
	assert.True(t, strings.Contains(msgs[3].Content, "이어서"))
	assert.Len(t, p.Messages(), 2, "original prompt is not mutated")
}
