package intent

import (
	"github.com/toolscout-core/server/internal/agent/model"
)

const DefaultAmbiguityThreshold = 0.7

// Rule is one entry of the routing precedence table.
type Rule struct {
	Name  string
	Route func(res model.IntentResult) (model.RoutingDecision, bool)
}

// Router applies the precedence table so exactly one strategy is selected.
type Router struct {
	lex       *Lexicon
	rules     []Rule
	threshold float64
}

func NewRouter(lex *Lexicon, ambiguityThreshold float64) *Router {
	if lex == nil {
		lex = DefaultLexicon()
	}
	if ambiguityThreshold <= 0 {
		ambiguityThreshold = DefaultAmbiguityThreshold
	}
	r := &Router{lex: lex, threshold: ambiguityThreshold}
	r.rules = r.precedence()
	return r
}

func (r *Router) precedence() []Rule {
	return []Rule{
		{Name: "detail", Route: func(res model.IntentResult) (model.RoutingDecision, bool) {
			_, ok := res.Signal(model.IntentDetailRequest)
			return decision(model.StrategyDetail, model.HandlerDetail, nil), ok && res.Slots.Target != ""
		}},
		r.onSignal(model.IntentWebsiteBuild, model.StrategyWebsiteBuild),
		r.onSignal(model.IntentWebsiteAssist, model.StrategyWebsiteAssist),
		r.onSignal(model.IntentWorkflowAutomation, model.StrategyWorkflow),
		r.onSignal(model.IntentBeginnerFriendly, model.StrategyBeginner),
		r.onSignal(model.IntentToolSearch, model.StrategyToolSearch),
		{Name: "imperative_redirect", Route: func(res model.IntentResult) (model.RoutingDecision, bool) {
			_, ok := res.Signal(model.IntentImperativeTask)
			if !ok || res.FeaturePage == nil {
				return model.RoutingDecision{}, false
			}
			return decision(model.StrategyFeatureRedirect, model.HandlerRedirect, res.FeaturePage), true
		}},
		r.generator(model.IntentSlideGeneration, model.StrategySlideGenerator, "slides"),
		r.generator(model.IntentImageGeneration, model.StrategyImageGenerator, "image"),
		{Name: "imperative_search", Route: func(res model.IntentResult) (model.RoutingDecision, bool) {
			_, ok := res.Signal(model.IntentImperativeTask)
			return decision(model.StrategyToolSearch, model.HandlerRecommend, nil), ok
		}},
		{Name: string(model.StrategyDocument), Route: func(res model.IntentResult) (model.RoutingDecision, bool) {
			_, ok := res.Signal(model.IntentDocumentAuthoring)
			return decision(model.StrategyDocument, model.HandlerChat, nil), ok
		}},
		{Name: string(model.StrategyChat), Route: func(model.IntentResult) (model.RoutingDecision, bool) {
			return decision(model.StrategyChat, model.HandlerChat, nil), true
		}},
	}
}

func (r *Router) onSignal(intent model.Intent, strategy model.Strategy) Rule {
	return Rule{Name: string(strategy), Route: func(res model.IntentResult) (model.RoutingDecision, bool) {
		_, ok := res.Signal(intent)
		return decision(strategy, model.HandlerRecommend, nil), ok
	}}
}

func (r *Router) generator(intent model.Intent, strategy model.Strategy, pageID string) Rule {
	return Rule{Name: string(strategy), Route: func(res model.IntentResult) (model.RoutingDecision, bool) {
		if _, ok := res.Signal(intent); !ok {
			return model.RoutingDecision{}, false
		}
		page, _ := r.lex.Page(pageID)
		return decision(strategy, model.HandlerRedirect, page), true
	}}
}

func decision(s model.Strategy, handler string, page *model.FeaturePage) model.RoutingDecision {
	return model.RoutingDecision{Strategy: s, Handler: handler, Page: page}
}

// Precedence lists rule names in evaluation order.
func (r *Router) Precedence() []string {
	names := make([]string, len(r.rules))
	for i, rule := range r.rules {
		names[i] = rule.Name
	}
	return names
}

// Route picks the strategy for a classified message and the request flags.
func (r *Router) Route(res model.IntentResult, req model.ChatRequest) model.RoutingDecision {
	if req.KBMode == model.KBModeDB {
		if _, ok := res.Signal(model.IntentDetailRequest); ok && res.Slots.Target != "" {
			return decision(model.StrategyDetail, model.HandlerDetail, nil)
		}
		return decision(model.StrategyToolSearch, model.HandlerRecommend, nil)
	}

	var d model.RoutingDecision
	for _, rule := range r.rules {
		if routed, ok := rule.Route(res); ok {
			d = routed
			break
		}
	}

	if r.needsClarification(d.Strategy, res, req) {
		return model.RoutingDecision{
			Strategy:   model.StrategySlotFill,
			Handler:    model.HandlerSlotFill,
			SlotPrompt: SlotPromptFor(d.Strategy, r.lex),
		}
	}
	return d
}

func (r *Router) needsClarification(s model.Strategy, res model.IntentResult, req model.ChatRequest) bool {
	if req.ToolsOnly {
		return false
	}
	if s != model.StrategyToolSearch && s != model.StrategyBeginner {
		return false
	}
	return res.Ambiguity >= r.threshold
}
