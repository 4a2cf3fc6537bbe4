package breaker

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestOpensAtThreshold(t *testing.T) {
	b := New(5, time.Hour)
	defer b.Stop()

	for i := 0; i < 4; i++ {
		b.RecordFailure()
		assert.False(t, b.IsOpen(), "open after %d failures", i+1)
	}
	b.RecordFailure()
	assert.True(t, b.IsOpen())
	assert.Equal(t, 5, b.Snapshot().Failures)
}

func TestSuccessDoesNotCloseBeforeCooldown(t *testing.T) {
	b := New(5, time.Hour)
	defer b.Stop()

	for i := 0; i < 5; i++ {
		b.RecordFailure()
	}
	b.RecordSuccess()
	assert.True(t, b.IsOpen())
	assert.Zero(t, b.Snapshot().Failures)
}

func TestSuccessResetsConsecutiveCount(t *testing.T) {
	b := New(3, time.Hour)
	defer b.Stop()

	b.RecordFailure()
	b.RecordFailure()
	b.RecordSuccess()
	b.RecordFailure()
	b.RecordFailure()
	assert.False(t, b.IsOpen())
}

func TestClosesAfterCooldown(t *testing.T) {
	var transitions []bool
	var mu sync.Mutex
	b := New(5, 20*time.Millisecond, WithOnChange(func(open bool) {
		mu.Lock()
		transitions = append(transitions, open)
		mu.Unlock()
	}))
	defer b.Stop()

	for i := 0; i < 5; i++ {
		b.RecordFailure()
	}
	require.True(t, b.IsOpen())

	require.Eventually(t, func() bool { return !b.IsOpen() }, time.Second, 5*time.Millisecond)
	assert.Zero(t, b.Snapshot().Failures)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []bool{true, false}, transitions)
}

func TestExtraFailuresWhileOpenDoNotRearm(t *testing.T) {
	var opened atomic.Int32
	b := New(2, time.Hour, WithOnChange(func(open bool) {
		if open {
			opened.Add(1)
		}
	}))
	defer b.Stop()

	for i := 0; i < 6; i++ {
		b.RecordFailure()
	}
	assert.True(t, b.IsOpen())
	assert.Equal(t, int32(1), opened.Load())
}

func TestConcurrentFailures(t *testing.T) {
	b := New(50, time.Hour)
	defer b.Stop()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.RecordFailure()
		}()
	}
	wg.Wait()
	assert.True(t, b.IsOpen())
	assert.Equal(t, 100, b.Snapshot().Failures)
}

func TestLastFailureUsesClock(t *testing.T) {
	fixed := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	b := New(5, time.Hour, WithClock(func() time.Time { return fixed }))
	defer b.Stop()

	b.RecordFailure()
	assert.Equal(t, fixed, b.Snapshot().LastFailure)
}
