package nodes

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/compose"

	"github.com/toolscout-core/server/internal/agent/graph/prompts"
	"github.com/toolscout-core/server/internal/agent/intent"
	"github.com/toolscout-core/server/internal/agent/model"
	"github.com/toolscout-core/server/internal/agent/postprocess"
	"github.com/toolscout-core/server/internal/agent/retrieval"
	"github.com/toolscout-core/server/internal/agent/synthesis"
	errx "github.com/toolscout-core/server/internal/core/error"
	logx "github.com/toolscout-core/server/pkg/logger"
)

// Node keys. Handler nodes reuse the routing handler names so the branch can return them as is.
const (
	NodeClassify    = "classify"
	NodeRecommend   = model.HandlerRecommend
	NodeDetail      = model.HandlerDetail
	NodeChat        = model.HandlerChat
	NodeSlotFill    = model.HandlerSlotFill
	NodeRedirect    = model.HandlerRedirect
	NodePostProcess = "post_process"
)

const (
	// NoResultsMessage is the fixed reply for an empty recommendation set.
	NoResultsMessage = "조건에 맞는 AI 툴을 찾지 못했어요. 분야나 가격 조건을 바꿔서 다시 물어봐 주세요."
	// detailLimit bounds the catalog lookup for a named tool.
	detailLimit = 3
)

// Deps are the collaborators the handler nodes call into.
type Deps struct {
	Classifier  *intent.Classifier
	Router      *intent.Router
	Ranker      *retrieval.Ranker
	Catalog     model.Catalog
	Synthesizer *synthesis.Synthesizer
	Processor   *postprocess.Processor
	Synthesis   model.SynthesisConfig
}

// NewClassifyPreHandler resets the per-invocation accounting.
func NewClassifyPreHandler() func(context.Context, model.Turn, *model.AppState) (model.Turn, error) {
	return func(ctx context.Context, in model.Turn, s *model.AppState) (model.Turn, error) {
		s.TraceID = in.TraceID
		s.LMCalls = 0
		s.Continuations = 0
		s.TotalCostUSD = 0
		return in, nil
	}
}

// NewClassifyNode runs the intent classifier and the routing selector.
func NewClassifyNode(d *Deps) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, t model.Turn) (model.Turn, error) {
		t.Intent = d.Classifier.Classify(t.Request.Message)
		t.Decision = d.Router.Route(t.Intent, t.Request)

		logx.Debug().
			Str("trace_id", t.TraceID).
			Str("act", string(t.Intent.Act)).
			Str("intent", string(t.Intent.Intent)).
			Float64("ambiguity", t.Intent.Ambiguity).
			Str("strategy", string(t.Decision.Strategy)).
			Str("handler", t.Decision.Handler).
			Msg("Routing decision")
		return t, nil
	})
}

// NewStrategyCondition sends each turn to the node named by its routing decision.
func NewStrategyCondition() func(context.Context, model.Turn) (string, error) {
	return func(ctx context.Context, t model.Turn) (string, error) {
		switch t.Decision.Handler {
		case NodeRecommend, NodeDetail, NodeChat, NodeSlotFill, NodeRedirect:
			return t.Decision.Handler, nil
		}
		return "", fmt.Errorf("unknown handler %q for strategy %q", t.Decision.Handler, t.Decision.Strategy)
	}
}

// NewRecommendNode retrieves candidates and synthesizes the recommendation answer.
func NewRecommendNode(d *Deps) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, t model.Turn) (model.Turn, error) {
		return d.recommend(ctx, t), nil
	})
}

func (d *Deps) recommend(ctx context.Context, t model.Turn) model.Turn {
	items, err := d.Ranker.Recommend(ctx, retrieval.Query{
		Strategy: t.Decision.Strategy,
		Slots:    t.Intent.Slots,
		FollowUp: t.Intent.FollowUp,
	})
	if err != nil {
		logx.Error().Err(err).Str("trace_id", t.TraceID).Msg("Candidate retrieval failed")
		t.Err = errx.From(err)
		return t
	}
	if len(items) == 0 {
		t.NoResults = true
		t.Candidates = []model.CandidateItem{}
		t.Text = NoResultsMessage
		t.Final = true
		return t
	}
	t.Candidates = items

	if t.Request.ToolsOnly {
		t.Text = postprocess.Intro(items)
		return t
	}

	variant := prompts.SelectVariant(t.Request.Message, d.Synthesis.ExperimentVariant, t.Request.Template)
	return d.synthesize(ctx, t, variant, prompts.Input{
		Count: min(t.Intent.Slots.Count(), len(items)),
	})
}

// NewDetailNode answers about one named tool, falling back to a recommendation when the catalog lacks it.
func NewDetailNode(d *Deps) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, t model.Turn) (model.Turn, error) {
		target := t.Intent.Slots.Target
		items, err := d.Catalog.Search(ctx, model.CatalogFilter{Query: target, Limit: detailLimit})
		if err != nil {
			logx.Error().Err(err).Str("trace_id", t.TraceID).Msg("Detail lookup failed")
			t.Err = errx.From(err)
			return t, nil
		}
		if len(items) == 0 {
			logx.Debug().Str("trace_id", t.TraceID).Str("target", target).Msg("Detail target not in catalog; recommending instead")
			t.Decision.Strategy = model.StrategyToolSearch
			t.Decision.Handler = model.HandlerRecommend
			return d.recommend(ctx, t), nil
		}

		t.Candidates = []model.CandidateItem{bestMatch(items, target)}
		if t.Request.ToolsOnly {
			t.Text = postprocess.Intro(t.Candidates)
			return t, nil
		}
		variant := prompts.SelectVariant(t.Request.Message, d.Synthesis.ExperimentVariant, t.Request.Template)
		return d.synthesize(ctx, t, variant, prompts.Input{Target: t.Candidates[0].Name}), nil
	})
}

// bestMatch prefers an exact name match over description hits.
func bestMatch(items []model.CandidateItem, target string) model.CandidateItem {
	for _, it := range items {
		if strings.EqualFold(it.Name, target) {
			return it
		}
	}
	return items[0]
}

// NewChatNode handles small talk and long-form authoring without catalog grounding.
func NewChatNode(d *Deps) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, t model.Turn) (model.Turn, error) {
		longForm := t.Decision.Strategy == model.StrategyDocument
		p, err := prompts.BuildChat(ctx, d.promptInput(t, prompts.Input{}), longForm)
		if err != nil {
			t.Err = errx.Internal(err)
			return t, nil
		}
		return d.generate(ctx, t, p, longForm), nil
	})
}

// NewSlotFillNode replies with the clarifying question picked by the router.
func NewSlotFillNode() *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, t model.Turn) (model.Turn, error) {
		if t.Decision.SlotPrompt != nil {
			t.Text = t.Decision.SlotPrompt.Message
		}
		t.Final = true
		return t, nil
	})
}

// NewRedirectNode points the user at the internal page that performs the task.
func NewRedirectNode(serviceName string) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, t model.Turn) (model.Turn, error) {
		t.Text = RedirectMessage(serviceName, t.Decision.Page)
		t.Final = true
		return t, nil
	})
}

// RedirectMessage is the reply for a task an internal page handles directly.
func RedirectMessage(serviceName string, page *model.FeaturePage) string {
	if page == nil {
		return fmt.Sprintf("이 작업은 %s의 전용 기능에서 바로 할 수 있어요. 메뉴에서 원하는 기능을 선택해 주세요.", serviceName)
	}
	return fmt.Sprintf("'%s' 기능은 %s에서 바로 이용할 수 있어요.\n👉 %s", page.Label, serviceName, page.Path)
}

// NewPostProcessNode cleans synthesized text. Final and failed turns pass through untouched.
func NewPostProcessNode(d *Deps) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, t model.Turn) (model.Turn, error) {
		if t.Final || t.Err != nil {
			return t, nil
		}
		out := d.Processor.Process(ctx, postprocess.Input{
			TraceID:        t.TraceID,
			Text:           t.Text,
			Candidates:     t.Candidates,
			RequestedCount: t.Intent.Slots.Count(),
			Session:        t.Session,
			Fence:          len(t.Candidates) > 0,
		})
		t.Text = out.Text
		t.Code = out.Code
		return t, nil
	})
}

// NewPostProcessPostHandler copies the accumulated LM accounting onto the turn.
func NewPostProcessPostHandler() func(context.Context, model.Turn, *model.AppState) (model.Turn, error) {
	return func(ctx context.Context, out model.Turn, s *model.AppState) (model.Turn, error) {
		out.LMCalls = s.LMCalls
		out.CostUSD = s.TotalCostUSD
		if s.LMCalls > 0 {
			logx.Debug().
				Str("trace_id", s.TraceID).
				Int("lm_calls", s.LMCalls).
				Int("continuations", s.Continuations).
				Float64("total_cost_usd", s.TotalCostUSD).
				Msg("Turn accounting")
		}
		return out, nil
	}
}

func (d *Deps) promptInput(t model.Turn, in prompts.Input) prompts.Input {
	in.ServiceName = d.Synthesis.ServiceName
	in.Message = t.Request.Message
	in.Candidates = t.Candidates
	in.BodyLines = d.Synthesis.SectionBodyLines
	in.Strategy = t.Decision.Strategy
	return in
}

func (d *Deps) synthesize(ctx context.Context, t model.Turn, v prompts.Variant, in prompts.Input) model.Turn {
	p, err := prompts.Build(ctx, v, d.promptInput(t, in))
	if err != nil {
		t.Err = errx.Internal(err)
		return t
	}
	return d.generate(ctx, t, p, true)
}

func (d *Deps) generate(ctx context.Context, t model.Turn, p prompts.Prompt, longForm bool) model.Turn {
	res, err := d.Synthesizer.Generate(ctx, synthesis.Request{
		TraceID:  t.TraceID,
		Tier:     t.Tier,
		Prompt:   p,
		LongForm: longForm,
	})
	_ = compose.ProcessState(ctx, func(_ context.Context, s *model.AppState) error {
		s.LMCalls += res.Calls
		s.Continuations += res.Continuations
		s.TotalCostUSD += res.CostUSD
		return nil
	})
	if err != nil {
		t.Err = errx.From(err)
		return t
	}
	t.Text = res.Text
	return t
}
