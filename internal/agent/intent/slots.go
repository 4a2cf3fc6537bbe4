package intent

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/toolscout-core/server/internal/agent/model"
)

var (
	digitCountRe = regexp.MustCompile(`(?i)(\d{1,3})\s*(?:개|가지|종류|곳|items?|tools?|options?|apps?|services?|picks?)`)
	topCountRe   = regexp.MustCompile(`(?i)\btop\s*(\d{1,3})\b`)
	quotedRe     = regexp.MustCompile(`["'“‘「]([^"'”’」]+)["'”’」]`)
	trimTargetRe = regexp.MustCompile(`^[\s\p{P}]+|[\s\p{P}]+$`)
	spacesRe     = regexp.MustCompile(`\s+`)
)

const maxRequestedCount = 99

// ExtractSlots pulls category, count, price, features and ranking signals from text.
func (l *Lexicon) ExtractSlots(text string) model.Slots {
	lower := normalize(text)
	count, ok := l.requestedCount(lower)
	return model.Slots{
		Category:       l.category(lower),
		RequestedCount: count,
		HasCount:       ok,
		Price:          l.pricePreference(lower),
		Features:       matchedKeys(lower, l.features),
		Secondary:      matchedKeys(lower, l.secondary),
	}
}

func (l *Lexicon) category(lower string) string {
	for _, c := range l.categories {
		if len(matchTriggers(lower, c.Aliases)) > 0 {
			return c.Key
		}
	}
	return ""
}

// requestedCount reports false when no count was asked for. An explicit zero is kept as zero.
func (l *Lexicon) requestedCount(lower string) (int, bool) {
	for _, re := range []*regexp.Regexp{digitCountRe, topCountRe} {
		if m := re.FindStringSubmatch(lower); m != nil {
			n, err := strconv.Atoi(m[1])
			if err == nil {
				return min(n, maxRequestedCount), true
			}
		}
	}
	if re := l.countWordRe(); re != nil {
		if m := re.FindStringSubmatch(lower); m != nil {
			return l.countWords[m[1]], true
		}
	}
	return 0, false
}

func (l *Lexicon) countWordRe() *regexp.Regexp {
	l.countOnce.Do(func() {
		if len(l.countWords) == 0 {
			return
		}
		words := make([]string, 0, len(l.countWords))
		for w := range l.countWords {
			words = append(words, regexp.QuoteMeta(w))
		}
		sort.Slice(words, func(i, j int) bool {
			if len(words[i]) != len(words[j]) {
				return len(words[i]) > len(words[j])
			}
			return words[i] < words[j]
		})
		l.countRe = regexp.MustCompile(`(?:^|[^\p{L}])(` + strings.Join(words, "|") +
			`)\s*(?:개|가지|종류|tools?|apps?|options?|items?|services?)`)
	})
	return l.countRe
}

var priceOrder = []model.PricePreference{model.PriceFreemium, model.PricePaid, model.PriceFree}

func (l *Lexicon) pricePreference(lower string) model.PricePreference {
	for _, p := range priceOrder {
		if len(matchTriggers(lower, l.price[p])) > 0 {
			return p
		}
	}
	return model.PriceAny
}

func matchedKeys(lower string, table map[string][]string) []string {
	var keys []string
	for key, triggers := range table {
		if len(matchTriggers(lower, triggers)) > 0 {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}

// DetailTarget returns the tool name a detail request refers to, or "".
func (l *Lexicon) DetailTarget(text string) string {
	if m := quotedRe.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	target := text
	if l.fillerRe != nil {
		target = l.fillerRe.ReplaceAllLiteralString(target, " ")
	}
	target = spacesRe.ReplaceAllString(target, " ")
	return trimTargetRe.ReplaceAllString(target, "")
}
