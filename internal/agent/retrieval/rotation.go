package retrieval

import (
	"context"
	"sync"

	"github.com/toolscout-core/server/internal/agent/model"
)

// RotationTable is the in-process RotationStore.
type RotationTable struct {
	mu      sync.Mutex
	cursors map[string]int
}

func NewRotationTable() *RotationTable {
	return &RotationTable{cursors: make(map[string]int)}
}

// Next returns the current cursor for key and advances it by window, wrapping at pool.
func (t *RotationTable) Next(_ context.Context, key string, pool, window int) (int, error) {
	if pool <= 0 {
		return 0, nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	cur := t.cursors[key] % pool
	t.cursors[key] = (cur + window) % pool
	return cur, nil
}

var _ model.RotationStore = (*RotationTable)(nil)
