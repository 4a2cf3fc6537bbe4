package intent

import "github.com/toolscout-core/server/internal/agent/model"

// actOrder is the evaluation order of dialog-act patterns; statement is the fallback.
var actOrder = []model.DialogAct{model.ActQuestion, model.ActCommand, model.ActGreeting}

// DialogAct classifies the coarse speech act of text.
func (l *Lexicon) DialogAct(text string) model.DialogAct {
	for _, act := range actOrder {
		for _, re := range l.acts[act] {
			if re.MatchString(text) {
				return act
			}
		}
	}
	return model.ActStatement
}
