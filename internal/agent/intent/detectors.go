package intent

import (
	"strings"

	"github.com/toolscout-core/server/internal/agent/model"
)

// Probe is the pre-processed view of one message shared by all detectors.
type Probe struct {
	Raw   string
	Lower string
	Act   model.DialogAct
}

func (l *Lexicon) probe(text string) Probe {
	raw := strings.TrimSpace(text)
	return Probe{Raw: raw, Lower: normalize(raw), Act: l.DialogAct(raw)}
}

// Detector is a pure predicate over a probe.
type Detector struct {
	Intent model.Intent
	Detect func(p Probe) (model.Signal, bool)
}

// Detectors returns the detector battery in evaluation order.
func (l *Lexicon) Detectors() []Detector {
	return []Detector{
		l.detailDetector(),
		l.triggerDetector(model.IntentWebsiteBuild),
		l.triggerDetector(model.IntentWebsiteAssist),
		l.triggerDetector(model.IntentWorkflowAutomation),
		l.triggerDetector(model.IntentBeginnerFriendly),
		l.triggerDetector(model.IntentToolSearch),
		l.imperativeDetector(),
		l.triggerDetector(model.IntentSlideGeneration),
		l.triggerDetector(model.IntentImageGeneration),
		l.triggerDetector(model.IntentDocumentAuthoring),
	}
}

func (l *Lexicon) triggerDetector(intent model.Intent) Detector {
	triggers := l.Triggers(intent)
	return Detector{
		Intent: intent,
		Detect: func(p Probe) (model.Signal, bool) {
			matched := matchTriggers(p.Lower, triggers)
			if len(matched) == 0 {
				return model.Signal{}, false
			}
			return model.Signal{Intent: intent, Hits: len(matched), Triggers: matched}, true
		},
	}
}

// detailDetector fires only when a tool name remains after removing filler.
func (l *Lexicon) detailDetector() Detector {
	base := l.triggerDetector(model.IntentDetailRequest)
	return Detector{
		Intent: model.IntentDetailRequest,
		Detect: func(p Probe) (model.Signal, bool) {
			sig, ok := base.Detect(p)
			if !ok || l.DetailTarget(p.Raw) == "" {
				return model.Signal{}, false
			}
			return sig, true
		},
	}
}

// imperativeDetector matches "make me a ..." style commands that are not
// questions and do not ask for recommendations.
func (l *Lexicon) imperativeDetector() Detector {
	base := l.triggerDetector(model.IntentImperativeTask)
	return Detector{
		Intent: model.IntentImperativeTask,
		Detect: func(p Probe) (model.Signal, bool) {
			if p.Act != model.ActCommand || strings.ContainsAny(p.Raw, "?？") {
				return model.Signal{}, false
			}
			if len(matchTriggers(p.Lower, l.recommendTerms)) > 0 {
				return model.Signal{}, false
			}
			return base.Detect(p)
		},
	}
}
