// Package retrieval turns extracted slots into a ranked, deduplicated recommendation set.
package retrieval

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"
	"sort"
	"strings"

	"github.com/toolscout-core/server/internal/agent/model"
	logx "github.com/toolscout-core/server/pkg/logger"
)

const (
	DefaultCount = 5
	MaxCount     = 10
)

// CategoryResolver maps a category slot to the catalog categories it covers.
type CategoryResolver func(key string) []string

// Query is the retrieval input for one request.
type Query struct {
	Strategy model.Strategy
	Slots    model.Slots
	FollowUp bool
}

// Ranker queries the catalog and shapes the recommendation set.
type Ranker struct {
	catalog    model.Catalog
	rotation   model.RotationStore
	categories CategoryResolver
	cfg        model.RetrievalConfig
	shuffle    func(n int, swap func(i, j int))
}

type Option func(*Ranker)

// WithShuffle replaces the diversity shuffle, mainly for deterministic tests.
func WithShuffle(fn func(n int, swap func(i, j int))) Option {
	return func(r *Ranker) { r.shuffle = fn }
}

func NewRanker(catalog model.Catalog, rotation model.RotationStore, categories CategoryResolver, cfg model.RetrievalConfig, opts ...Option) *Ranker {
	if cfg.DefaultCount <= 0 {
		cfg.DefaultCount = DefaultCount
	}
	if cfg.MaxCount <= 0 || cfg.MaxCount > MaxCount {
		cfg.MaxCount = MaxCount
	}
	if categories == nil {
		categories = func(key string) []string {
			if key == "" {
				return nil
			}
			return []string{key}
		}
	}
	r := &Ranker{
		catalog:    catalog,
		rotation:   rotation,
		categories: categories,
		cfg:        cfg,
		shuffle:    rand.Shuffle,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Limit is min(max(requested,1),max) or the default when nothing was requested.
func (r *Ranker) Limit(requested int) int {
	if requested <= 0 {
		return min(r.cfg.DefaultCount, r.cfg.MaxCount)
	}
	return min(max(requested, 1), r.cfg.MaxCount)
}

// windowSize is the rotation page size: an explicit count wins over ROTATION_WINDOW.
func (r *Ranker) windowSize(slots model.Slots) int {
	if slots.HasCount || r.cfg.RotationWindow <= 0 {
		return r.Limit(slots.Count())
	}
	return min(r.cfg.RotationWindow, r.cfg.MaxCount)
}

// Recommend returns at most Limit items with unique ids. An empty slice is a valid result.
func (r *Ranker) Recommend(ctx context.Context, q Query) ([]model.CandidateItem, error) {
	slots := q.Slots
	if slots.Category == "" {
		slots.Category = defaultCategory(q.Strategy)
	}

	items, err := r.search(ctx, slots, q)
	if err != nil {
		return nil, err
	}
	if len(items) > 0 || !r.cfg.FallbackEscalation {
		return items, nil
	}

	// Broaden: drop price and feature filters, then the category.
	broad := slots
	broad.Price = model.PriceAny
	broad.Features = nil
	if items, err = r.search(ctx, broad, q); err != nil || len(items) > 0 {
		logx.Debug().Str("strategy", string(q.Strategy)).Int("items", len(items)).Msg("fallback escalation: relaxed filters")
		return items, err
	}
	broad.Category = ""
	items, err = r.search(ctx, broad, q)
	logx.Debug().Str("strategy", string(q.Strategy)).Int("items", len(items)).Msg("fallback escalation: ignored category")
	return items, err
}

func (r *Ranker) search(ctx context.Context, slots model.Slots, q Query) ([]model.CandidateItem, error) {
	categories := r.categories(slots.Category)
	limit := r.Limit(slots.Count())

	if r.cfg.CatalogTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.CatalogTimeout)
		defer cancel()
	}
	pool, err := r.catalog.Search(ctx, model.CatalogFilter{
		Categories: categories,
		Price:      slots.Price,
		Features:   slots.Features,
	})
	if err != nil {
		return nil, fmt.Errorf("catalog search: %w", err)
	}

	if q.FollowUp && isRotating(q.Strategy) && r.rotation != nil {
		pool = dedupe(filterCategory(pool, categories))
		return r.window(ctx, string(q.Strategy), pool, r.windowSize(slots))
	}

	r.shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	promote(pool, slots.Secondary)
	pool = dedupe(filterCategory(pool, categories))
	if len(pool) > limit {
		pool = pool[:limit]
	}
	return pool, nil
}

// window returns a contiguous slice of the id-ordered pool starting at the stored cursor.
func (r *Ranker) window(ctx context.Context, key string, pool []model.CandidateItem, size int) ([]model.CandidateItem, error) {
	if len(pool) == 0 {
		return pool, nil
	}
	sort.SliceStable(pool, func(i, j int) bool { return pool[i].ID < pool[j].ID })
	start, err := r.rotation.Next(ctx, key, len(pool), size)
	if err != nil {
		return nil, fmt.Errorf("rotation cursor: %w", err)
	}
	n := min(size, len(pool))
	out := make([]model.CandidateItem, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, pool[(start+i)%len(pool)])
	}
	return out, nil
}

func isRotating(s model.Strategy) bool {
	return s == model.StrategyWebsiteBuild || s == model.StrategyWebsiteAssist
}

func defaultCategory(s model.Strategy) string {
	switch s {
	case model.StrategyWebsiteBuild, model.StrategyWebsiteAssist:
		return "website"
	case model.StrategyWorkflow:
		return "automation"
	}
	return ""
}

// promote moves items matching a secondary signal to the front, keeping relative order.
func promote(items []model.CandidateItem, signals []string) {
	if len(signals) == 0 {
		return
	}
	sort.SliceStable(items, func(i, j int) bool {
		return matchesSignal(items[i], signals) && !matchesSignal(items[j], signals)
	})
}

var signalTags = map[string][]string{
	"automation": {"automation", "integration", "workflow"},
	"ide":        {"ide", "editor"},
	"api":        {"api"},
}

func matchesSignal(item model.CandidateItem, signals []string) bool {
	for _, s := range signals {
		if s == "api" && item.HasAPI {
			return true
		}
		for _, tag := range item.Tags {
			if slices.Contains(signalTags[s], strings.ToLower(tag)) {
				return true
			}
		}
	}
	return false
}

// filterCategory keeps items whose category contains one of the catalog aliases.
func filterCategory(items []model.CandidateItem, categories []string) []model.CandidateItem {
	if len(categories) == 0 {
		return items
	}
	out := items[:0:0]
	for _, item := range items {
		cat := strings.ToLower(item.Category)
		for _, c := range categories {
			if strings.Contains(cat, strings.ToLower(c)) {
				out = append(out, item)
				break
			}
		}
	}
	return out
}

func dedupe(items []model.CandidateItem) []model.CandidateItem {
	seen := make(map[string]struct{}, len(items))
	out := make([]model.CandidateItem, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item.ID]; ok {
			continue
		}
		seen[item.ID] = struct{}{}
		out = append(out, item)
	}
	return out
}
