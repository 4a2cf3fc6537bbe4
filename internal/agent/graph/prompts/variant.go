package prompts

import "strings"

// Variant selects how a recommendation answer is laid out.
type Variant string

const (
	VariantCompare    Variant = "compare"
	VariantProsCons   Variant = "pros_cons"
	VariantChecklist  Variant = "checklist"
	VariantQuickstart Variant = "quickstart"
	VariantSummary    Variant = "summary"
	VariantGuide      Variant = "guide"
)

// Variants lists every variant in selection order; guide is the fallback.
func Variants() []Variant {
	return []Variant{VariantCompare, VariantProsCons, VariantChecklist, VariantQuickstart, VariantSummary, VariantGuide}
}

// ParseVariant accepts a variant name case-insensitively.
func ParseVariant(s string) (Variant, bool) {
	v := Variant(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Variants() {
		if v == known {
			return v, true
		}
	}
	return "", false
}

var variantKeywords = map[Variant][]string{
	VariantCompare:    {"비교", "차이", "뭐가 나아", "뭐가 더", "vs", "versus", "compare", "difference"},
	VariantProsCons:   {"장단점", "장점", "단점", "pros", "cons"},
	VariantChecklist:  {"체크리스트", "준비물", "확인할", "checklist"},
	VariantQuickstart: {"시작하는 법", "시작하려면", "처음 써", "사용법", "quickstart", "getting started", "how to start"},
	VariantSummary:    {"요약", "간단히", "짧게", "한줄", "summary", "tl;dr", "briefly"},
}

// SelectVariant picks the forced variant when valid, else the first keyword match.
func SelectVariant(message string, forced ...string) Variant {
	for _, f := range forced {
		if v, ok := ParseVariant(f); ok {
			return v
		}
	}
	lower := strings.ToLower(message)
	for _, v := range Variants() {
		for _, kw := range variantKeywords[v] {
			if strings.Contains(lower, kw) {
				return v
			}
		}
	}
	return VariantGuide
}
