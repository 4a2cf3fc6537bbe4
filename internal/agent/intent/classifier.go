// Package intent turns raw chat text into an IntentResult and a RoutingDecision.
package intent

import (
	"math"

	"github.com/toolscout-core/server/internal/agent/model"
)

// Classifier runs the dialog-act classifier, the detector battery, slot
// extraction and ambiguity scoring.
type Classifier struct {
	lex       *Lexicon
	detectors []Detector
}

func NewClassifier(lex *Lexicon) *Classifier {
	if lex == nil {
		lex = DefaultLexicon()
	}
	return &Classifier{lex: lex, detectors: lex.Detectors()}
}

// Lexicon exposes the trigger tables the classifier was built from.
func (c *Classifier) Lexicon() *Lexicon {
	return c.lex
}

// Classify is a pure function of text.
func (c *Classifier) Classify(text string) model.IntentResult {
	p := c.lex.probe(text)

	var signals []model.Signal
	for _, d := range c.detectors {
		if sig, ok := d.Detect(p); ok {
			signals = append(signals, sig)
		}
	}
	scoreSignals(signals)

	slots := c.lex.ExtractSlots(p.Raw)
	res := model.IntentResult{
		Act:      p.Act,
		Signals:  signals,
		Slots:    slots,
		FollowUp: len(matchTriggers(p.Lower, c.lex.followUp)) > 0,
	}
	if len(signals) > 0 {
		res.Intent = signals[0].Intent
		res.Confidence = signals[0].Confidence
	}
	if _, ok := res.Signal(model.IntentDetailRequest); ok {
		res.Slots.Target = c.lex.DetailTarget(p.Raw)
	}
	if _, ok := res.Signal(model.IntentImperativeTask); ok {
		res.FeaturePage, _ = c.lex.FeaturePage(p.Raw)
	}
	res.Ambiguity = Ambiguity(p.Act, res.Slots, tokenCount(p.Raw))
	return res
}

// scoreSignals sets each signal's confidence from its hit count and its
// margin over the strongest competing signal.
func scoreSignals(signals []model.Signal) {
	for i := range signals {
		other := 0
		for j := range signals {
			if j != i && signals[j].Hits > other {
				other = signals[j].Hits
			}
		}
		signals[i].Confidence = confidence(signals[i].Hits, other)
	}
}

func confidence(top, second int) float64 {
	if top <= 0 {
		return 0
	}
	margin := math.Max(0, float64(top-second)/float64(top))
	strength := float64(min(top, 5)) / 5.0
	conf := 0.75*margin + 0.25*strength
	if top >= 2 && second == 0 {
		conf = math.Max(conf, 0.9)
	}
	if top >= 3 {
		conf = math.Min(conf+0.15, 1.0)
	}
	return round2(conf)
}

// Ambiguity scores how underspecified a search request is, in [0,1].
func Ambiguity(act model.DialogAct, slots model.Slots, tokens int) float64 {
	score := 0.0
	if slots.Category == "" {
		score += 0.4
	}
	if len(slots.Features) == 0 {
		score += 0.2
	}
	if tokens <= 3 {
		score += 0.2
	}
	if act == model.ActStatement {
		score += 0.1
	}
	if slots.HasCount {
		score -= 0.3
	}
	return round2(math.Min(1, math.Max(0, score)))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
