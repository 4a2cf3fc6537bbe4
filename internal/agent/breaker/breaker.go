// Package breaker guards the LM provider with a consecutive-failure circuit breaker.
//
// There is no half-open state: once the cool-down timer fires the breaker closes
// unconditionally and the failure count returns to zero.
package breaker

import (
	"sync"
	"time"

	logx "github.com/toolscout-core/server/pkg/logger"
)

const (
	DefaultThreshold = 5
	DefaultCooldown  = 60 * time.Second
)

// Snapshot is a point-in-time copy of the breaker state.
type Snapshot struct {
	Failures    int
	Open        bool
	LastFailure time.Time
}

// Breaker is safe for concurrent use.
type Breaker struct {
	threshold int
	cooldown  time.Duration
	now       func() time.Time

	mu          sync.Mutex
	failures    int
	open        bool
	lastFailure time.Time
	timer       *time.Timer
	onChange    func(open bool)
}

type Option func(*Breaker)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(b *Breaker) { b.now = now }
}

// WithOnChange registers a callback invoked on every OPEN/CLOSED transition.
func WithOnChange(fn func(open bool)) Option {
	return func(b *Breaker) { b.onChange = fn }
}

func New(threshold int, cooldown time.Duration, opts ...Option) *Breaker {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	b := &Breaker{threshold: threshold, cooldown: cooldown, now: time.Now}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// RecordFailure counts one upstream failure and opens the breaker at the threshold.
func (b *Breaker) RecordFailure() {
	b.mu.Lock()
	b.failures++
	b.lastFailure = b.now()
	opened := false
	if !b.open && b.failures >= b.threshold {
		b.open = true
		opened = true
		b.timer = time.AfterFunc(b.cooldown, b.reset)
	}
	failures := b.failures
	onChange := b.onChange
	b.mu.Unlock()

	if opened {
		logx.Warn().Int("failures", failures).Dur("cooldown", b.cooldown).Msg("circuit breaker opened")
		if onChange != nil {
			onChange(true)
		}
	}
}

// RecordSuccess zeroes the failure count. An open breaker stays open until its cool-down fires.
func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	b.failures = 0
	b.mu.Unlock()
}

func (b *Breaker) IsOpen() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.open
}

func (b *Breaker) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return Snapshot{Failures: b.failures, Open: b.open, LastFailure: b.lastFailure}
}

// Stop cancels a pending cool-down timer without changing state.
func (b *Breaker) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
}

func (b *Breaker) reset() {
	b.mu.Lock()
	wasOpen := b.open
	b.open = false
	b.failures = 0
	b.timer = nil
	onChange := b.onChange
	b.mu.Unlock()

	if wasOpen {
		logx.Info().Msg("circuit breaker closed after cool-down")
		if onChange != nil {
			onChange(false)
		}
	}
}
