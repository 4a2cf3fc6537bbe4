package model

// DialogAct is the coarse speech act of a message.
type DialogAct string

const (
	ActQuestion  DialogAct = "question"
	ActCommand   DialogAct = "command"
	ActGreeting  DialogAct = "greeting"
	ActStatement DialogAct = "statement"
)

// Intent is a specialized intent label produced by one detector.
type Intent string

const (
	IntentNone               Intent = ""
	IntentDetailRequest      Intent = "detail_request"
	IntentWebsiteBuild       Intent = "website_build"
	IntentWebsiteAssist      Intent = "website_assist"
	IntentWorkflowAutomation Intent = "workflow_automation"
	IntentBeginnerFriendly   Intent = "beginner_friendly"
	IntentToolSearch         Intent = "tool_search"
	IntentImperativeTask     Intent = "imperative_task"
	IntentSlideGeneration    Intent = "slide_generation"
	IntentImageGeneration    Intent = "image_generation"
	IntentDocumentAuthoring  Intent = "document_authoring"
)

// Strategy is the routing strategy taken for a request.
type Strategy string

const (
	StrategyDetail          Strategy = "detail"
	StrategyWebsiteBuild    Strategy = "website_build"
	StrategyWebsiteAssist   Strategy = "website_assist"
	StrategyWorkflow        Strategy = "workflow_automation"
	StrategyBeginner        Strategy = "beginner_friendly"
	StrategyToolSearch      Strategy = "tool_search"
	StrategyFeatureRedirect Strategy = "feature_redirect"
	StrategySlideGenerator  Strategy = "slide_generator"
	StrategyImageGenerator  Strategy = "image_generator"
	StrategyDocument        Strategy = "document_authoring"
	StrategyChat            Strategy = "chat"
	StrategySlotFill        Strategy = "slot_fill"
)

// IsSearch reports whether the strategy retrieves catalog candidates.
func (s Strategy) IsSearch() bool {
	switch s {
	case StrategyWebsiteBuild, StrategyWebsiteAssist, StrategyWorkflow, StrategyBeginner, StrategyToolSearch:
		return true
	}
	return false
}

// Handler names double as graph node keys.
const (
	HandlerRecommend = "recommend"
	HandlerDetail    = "detail"
	HandlerChat      = "chat"
	HandlerSlotFill  = "slot_fill"
	HandlerRedirect  = "redirect"
)

type PricePreference string

const (
	PriceAny      PricePreference = ""
	PriceFree     PricePreference = "free"
	PriceFreemium PricePreference = "freemium"
	PricePaid     PricePreference = "paid"
)

// Slots are structured values extracted from the message.
type Slots struct {
	Category string
	// RequestedCount is meaningful only when HasCount is set.
	RequestedCount int
	HasCount       bool
	Price          PricePreference
	Features       []string
	// Secondary holds ranking signals such as "automation", "ide" or "api".
	Secondary []string
	Target    string
}

// Count is the number of items asked for, at least one, or zero when none was asked for.
func (s Slots) Count() int {
	if !s.HasCount {
		return 0
	}
	return max(s.RequestedCount, 1)
}

// Signal is the output of one intent detector.
type Signal struct {
	Intent     Intent
	Hits       int
	Confidence float64
	Triggers   []string
}

// IntentResult is immutable once produced by the classifier.
type IntentResult struct {
	Act         DialogAct
	Intent      Intent
	Confidence  float64
	Ambiguity   float64
	Slots       Slots
	Signals     []Signal
	FollowUp    bool
	// FeaturePage is the internal page an imperative task maps to, if any.
	FeaturePage *FeaturePage
}

// Signal returns the detector output for intent, if it matched.
func (r IntentResult) Signal(intent Intent) (Signal, bool) {
	for _, s := range r.Signals {
		if s.Intent == intent {
			return s, true
		}
	}
	return Signal{}, false
}

// FeaturePage is an internal product page that handles a task directly.
type FeaturePage struct {
	ID    string `yaml:"id"`
	Label string `yaml:"label"`
	Path  string `yaml:"path"`
}

// RoutingDecision selects exactly one strategy per request.
type RoutingDecision struct {
	Strategy Strategy
	Handler  string
	Page     *FeaturePage
	// SlotPrompt is set when the ambiguity gate asks a clarifying question.
	SlotPrompt *SlotPrompt
}
