package intent

import (
	"strings"
	"unicode"
)

func normalize(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

// containsTrigger reports whether trigger occurs in text on an ASCII word boundary.
// Hangul neighbours never count as word characters so particles can follow a trigger.
func containsTrigger(text, trigger string) bool {
	if trigger == "" {
		return false
	}
	from := 0
	for {
		idx := strings.Index(text[from:], trigger)
		if idx == -1 {
			return false
		}
		idx += from
		end := idx + len(trigger)

		before := idx == 0 || !isWordChar(text[idx-1])
		after := end >= len(text) || !isWordChar(text[end])
		if before && after {
			return true
		}
		from = idx + 1
	}
}

func isWordChar(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_'
}

// matchTriggers returns the triggers found in the already normalized text.
func matchTriggers(text string, triggers []string) []string {
	var matched []string
	for _, trig := range triggers {
		if containsTrigger(text, strings.ToLower(trig)) {
			matched = append(matched, trig)
		}
	}
	return matched
}

func tokenCount(text string) int {
	return len(strings.FieldsFunc(text, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r)
	}))
}
