package ratelimit

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang.org/x/time/rate"
)

func TestLimiter_UnlimitedWhenZero(t *testing.T) {
	l := New(Config{CallsPerMinute: 0})

	ctx := context.Background()
	for i := 0; i < 100; i++ {
		require.NoError(t, l.Acquire(ctx))
	}
}

func TestLimiter_AllowBoundsBurst(t *testing.T) {
	// 60/min with burst 1: exactly one immediate admission
	l := New(Config{CallsPerMinute: 60})

	assert.True(t, l.Allow())
	assert.False(t, l.Allow())
}

func TestLimiter_BurstGrantsMultiple(t *testing.T) {
	l := New(Config{CallsPerMinute: 60, Burst: 3})

	assert.True(t, l.Allow())
	assert.True(t, l.Allow())
	assert.True(t, l.Allow())
	assert.False(t, l.Allow())
}

func TestLimiter_BurstFoldsIntoBudget(t *testing.T) {
	// With burst 4 of a 10/min budget the bucket alone could hold 4
	// admissions, so the refill must drop to 7/min to keep any rolling
	// minute at 10
	l := New(Config{CallsPerMinute: 10, Burst: 4})
	assert.Equal(t, rate.Limit(7.0/60.0), l.limiter.Limit())
	assert.Equal(t, 4, l.limiter.Burst())

	// Burst 1 keeps the full refill rate
	l = New(Config{CallsPerMinute: 10})
	assert.Equal(t, rate.Limit(10.0/60.0), l.limiter.Limit())

	// Burst beyond the budget is capped at the budget
	l = New(Config{CallsPerMinute: 5, Burst: 50})
	assert.Equal(t, 5, l.limiter.Burst())
	assert.Equal(t, rate.Limit(1.0/60.0), l.limiter.Limit())
}

func TestLimiter_ConcurrentAcquiresStaySpaced(t *testing.T) {
	// 1200/min refills one token every 50ms; far more goroutines
	// contend than the bucket can admit at once
	l := New(Config{CallsPerMinute: 1200})

	const n = 12
	var (
		mu         sync.Mutex
		admissions []time.Time
		wg         sync.WaitGroup
	)

	start := time.Now()
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if !assert.NoError(t, l.Acquire(context.Background())) {
				return
			}
			now := time.Now()
			mu.Lock()
			admissions = append(admissions, now)
			mu.Unlock()
		}()
	}
	wg.Wait()

	require.Len(t, admissions, n)
	sort.Slice(admissions, func(i, j int) bool { return admissions[i].Before(admissions[j]) })

	// With burst 1 no two admissions may share a refill interval, so
	// no 50ms sliding window ever sees more than one call. Allow some
	// scheduler jitter below the exact spacing.
	for i := 1; i < n; i++ {
		gap := admissions[i].Sub(admissions[i-1])
		assert.GreaterOrEqual(t, gap, 35*time.Millisecond,
			"admissions %d and %d only %s apart", i-1, i, gap)
	}

	// n admissions cost n-1 refills of 50ms each
	assert.GreaterOrEqual(t, time.Since(start), 400*time.Millisecond)
}

func TestLimiter_AcquireWaitsForRefill(t *testing.T) {
	// 1200/min refills a token every 50ms
	l := New(Config{CallsPerMinute: 1200})
	ctx := context.Background()

	require.NoError(t, l.Acquire(ctx))

	start := time.Now()
	require.NoError(t, l.Acquire(ctx))
	elapsed := time.Since(start)

	assert.GreaterOrEqual(t, elapsed, 35*time.Millisecond, "second acquire should wait for refill")
}

func TestLimiter_AcquireTimeout(t *testing.T) {
	// 1/min: the second acquire would wait ~60s, far past the timeout
	l := New(Config{CallsPerMinute: 1, AcquireTimeout: 50 * time.Millisecond})
	ctx := context.Background()

	require.NoError(t, l.Acquire(ctx))

	err := l.Acquire(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAcquireTimeout)
}

func TestLimiter_AcquireHonorsContextCancel(t *testing.T) {
	l := New(Config{CallsPerMinute: 1})
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, l.Acquire(ctx))

	done := make(chan error, 1)
	go func() { done <- l.Acquire(ctx) }()
	cancel()

	select {
	case err := <-done:
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrAcquireTimeout)
	case <-time.After(time.Second):
		t.Fatal("acquire did not return after cancel")
	}
}
