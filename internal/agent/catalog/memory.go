// Package catalog provides the read-only tool catalog backends.
package catalog

import (
	"context"
	"slices"

	"github.com/toolscout-core/server/internal/agent/model"
)

// Memory is an in-process catalog over a fixed item list.
type Memory struct {
	items []model.CandidateItem
}

func NewMemory(items []model.CandidateItem) *Memory {
	return &Memory{items: slices.Clone(items)}
}

// NewSeeded returns a Memory catalog over SeedTools.
func NewSeeded() *Memory {
	return NewMemory(SeedTools)
}

// Search returns a fresh slice callers may reorder.
func (m *Memory) Search(ctx context.Context, f model.CatalogFilter) ([]model.CandidateItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]model.CandidateItem, 0, len(m.items))
	for _, item := range m.items {
		if matches(item, f) {
			out = append(out, item)
		}
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

var _ model.Catalog = (*Memory)(nil)
