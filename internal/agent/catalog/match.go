package catalog

import (
	"slices"
	"strings"

	"github.com/toolscout-core/server/internal/agent/model"
)

// priceTiers lists the catalog price tiers that satisfy a preference.
func priceTiers(p model.PricePreference) []string {
	switch p {
	case model.PriceFree:
		return []string{"free", "freemium"}
	case model.PriceFreemium:
		return []string{"freemium"}
	case model.PricePaid:
		return []string{"paid"}
	}
	return nil
}

// matches applies a CatalogFilter to one item.
func matches(item model.CandidateItem, f model.CatalogFilter) bool {
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		name := strings.ToLower(item.Name)
		if !strings.Contains(name, q) && !strings.Contains(q, name) &&
			!strings.Contains(strings.ToLower(item.Description), q) {
			return false
		}
	}

	categories := f.Categories
	if f.Category != "" {
		categories = append([]string{f.Category}, categories...)
	}
	if len(categories) > 0 {
		cat := strings.ToLower(item.Category)
		if !slices.ContainsFunc(categories, func(c string) bool {
			return strings.Contains(cat, strings.ToLower(c))
		}) {
			return false
		}
	}

	if tiers := priceTiers(f.Price); tiers != nil && !slices.Contains(tiers, item.PriceTier) {
		return false
	}

	if len(f.Features) > 0 && !slices.ContainsFunc(f.Features, func(feat string) bool {
		return (feat == "api" && item.HasAPI) || slices.Contains(item.Tags, feat)
	}) {
		return false
	}
	return true
}
