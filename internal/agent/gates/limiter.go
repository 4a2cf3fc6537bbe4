package gates

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/toolscout-core/server/internal/agent/model"
)

const limiterIdleTTL = 10 * time.Minute

type limiterEntry struct {
	lim  *rate.Limiter
	seen time.Time
}

// LocalLimiter is a per-key token bucket for single-instance deployments.
type LocalLimiter struct {
	mu      sync.Mutex
	every   rate.Limit
	burst   int
	entries map[string]*limiterEntry
	now     func() time.Time
}

// NewLocalLimiter allows perMinute requests per key with the given burst.
// perMinute <= 0 disables limiting.
func NewLocalLimiter(perMinute, burst int) *LocalLimiter {
	every := rate.Inf
	if perMinute > 0 {
		every = rate.Limit(float64(perMinute) / 60)
	}
	if burst <= 0 {
		burst = 1
	}
	return &LocalLimiter{
		every:   every,
		burst:   burst,
		entries: make(map[string]*limiterEntry),
		now:     time.Now,
	}
}

func (l *LocalLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	e, ok := l.entries[key]
	if !ok {
		l.prune(now)
		e = &limiterEntry{lim: rate.NewLimiter(l.every, l.burst)}
		l.entries[key] = e
	}
	e.seen = now
	return e.lim.AllowN(now, 1), nil
}

// prune drops buckets idle long enough to have refilled.
func (l *LocalLimiter) prune(now time.Time) {
	for k, e := range l.entries {
		if now.Sub(e.seen) > limiterIdleTTL {
			delete(l.entries, k)
		}
	}
}

var _ model.RateLimiter = (*LocalLimiter)(nil)
