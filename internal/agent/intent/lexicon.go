package intent

import (
	_ "embed"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/toolscout-core/server/internal/agent/model"
)

//go:embed lexicon.yaml
var defaultLexiconYAML []byte

// CategoryAlias maps user vocabulary onto catalog categories.
type CategoryAlias struct {
	Key     string   `yaml:"key"`
	Aliases []string `yaml:"aliases"`
	Catalog []string `yaml:"catalog"`
}

type featurePageEntry struct {
	model.FeaturePage `yaml:",inline"`
	Triggers          []string `yaml:"triggers"`
}

type lexiconFile struct {
	DialogActs     map[string][]string `yaml:"dialog_acts"`
	Detectors      map[string][]string `yaml:"detectors"`
	RecommendTerms []string            `yaml:"recommend_terms"`
	FollowUp       []string            `yaml:"follow_up"`
	Categories     []CategoryAlias     `yaml:"categories"`
	Secondary      map[string][]string `yaml:"secondary"`
	Features       map[string][]string `yaml:"features"`
	Price          map[string][]string `yaml:"price"`
	CountWords     map[string]int      `yaml:"count_words"`
	DetailFiller   []string            `yaml:"detail_filler"`
	FeaturePages   []featurePageEntry  `yaml:"feature_pages"`
}

// Lexicon is the compiled, read-only trigger table set.
type Lexicon struct {
	acts           map[model.DialogAct][]*regexp.Regexp
	triggers       map[model.Intent][]string
	recommendTerms []string
	followUp       []string
	categories     []CategoryAlias
	secondary      map[string][]string
	features       map[string][]string
	price          map[model.PricePreference][]string
	countWords     map[string]int
	detailFiller   []string
	fillerRe       *regexp.Regexp
	pages          []featurePageEntry

	countOnce sync.Once
	countRe   *regexp.Regexp
}

var defaultLexicon = sync.OnceValues(func() (*Lexicon, error) {
	return ParseLexicon(defaultLexiconYAML)
})

// DefaultLexicon returns the embedded lexicon. It panics if the embedded file is invalid.
func DefaultLexicon() *Lexicon {
	lex, err := defaultLexicon()
	if err != nil {
		panic(fmt.Sprintf("intent: embedded lexicon: %v", err))
	}
	return lex
}

// ParseLexicon decodes and compiles a lexicon document.
func ParseLexicon(data []byte) (*Lexicon, error) {
	var f lexiconFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode lexicon: %w", err)
	}

	lex := &Lexicon{
		acts:           make(map[model.DialogAct][]*regexp.Regexp, len(f.DialogActs)),
		triggers:       make(map[model.Intent][]string, len(f.Detectors)),
		recommendTerms: f.RecommendTerms,
		followUp:       f.FollowUp,
		categories:     f.Categories,
		secondary:      f.Secondary,
		features:       f.Features,
		price:          make(map[model.PricePreference][]string, len(f.Price)),
		countWords:     f.CountWords,
		detailFiller:   f.DetailFiller,
		pages:          f.FeaturePages,
	}

	for act, patterns := range f.DialogActs {
		for _, p := range patterns {
			re, err := regexp.Compile(p)
			if err != nil {
				return nil, fmt.Errorf("dialog act %s: compile %q: %w", act, p, err)
			}
			lex.acts[model.DialogAct(act)] = append(lex.acts[model.DialogAct(act)], re)
		}
	}
	for name, triggers := range f.Detectors {
		lex.triggers[model.Intent(name)] = triggers
	}
	for name, triggers := range f.Price {
		lex.price[model.PricePreference(name)] = triggers
	}

	// Longest filler first so "에 대해서" is removed before "대해".
	sort.SliceStable(lex.detailFiller, func(i, j int) bool {
		return len(lex.detailFiller[i]) > len(lex.detailFiller[j])
	})
	fillers := make([]string, 0, len(lex.detailFiller))
	for _, w := range lex.detailFiller {
		if w != "" {
			fillers = append(fillers, regexp.QuoteMeta(w))
		}
	}
	if len(fillers) > 0 {
		lex.fillerRe = regexp.MustCompile(`(?i)(?:` + strings.Join(fillers, "|") + `)`)
	}

	return lex, nil
}

// Triggers returns the trigger table for a detector.
func (l *Lexicon) Triggers(intent model.Intent) []string {
	return l.triggers[intent]
}

// Categories returns the category alias table in priority order.
func (l *Lexicon) Categories() []CategoryAlias {
	return l.categories
}

// CatalogCategories returns the catalog categories a category key matches.
func (l *Lexicon) CatalogCategories(key string) []string {
	for _, c := range l.categories {
		if c.Key == key {
			return c.Catalog
		}
	}
	if key == "" {
		return nil
	}
	return []string{key}
}

// FeaturePage returns the first internal page whose triggers match text.
func (l *Lexicon) FeaturePage(text string) (*model.FeaturePage, bool) {
	lower := normalize(text)
	for i := range l.pages {
		if len(matchTriggers(lower, l.pages[i].Triggers)) > 0 {
			page := l.pages[i].FeaturePage
			return &page, true
		}
	}
	return nil, false
}

// Page returns the internal page with the given id.
func (l *Lexicon) Page(id string) (*model.FeaturePage, bool) {
	for i := range l.pages {
		if l.pages[i].ID == id {
			page := l.pages[i].FeaturePage
			return &page, true
		}
	}
	return nil, false
}
