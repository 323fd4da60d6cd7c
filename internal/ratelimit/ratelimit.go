// Package ratelimit bounds admissions to the external generation
// service. One limiter instance is shared by every worker in the
// process; there are no per-worker quotas.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// ErrAcquireTimeout is returned when an acquire exceeds its wait
// budget. Callers treat it like a generation failure: the symbol gets a
// placeholder description and the run continues.
var ErrAcquireTimeout = errors.New("rate limit acquire timed out")

// Limiter admits at most CallsPerMinute external calls per rolling
// 60-second window. Tokens refill continuously rather than in discrete
// window resets, so there is no burst at window boundaries.
type Limiter struct {
	limiter        *rate.Limiter
	acquireTimeout time.Duration
}

// Config configures a Limiter
type Config struct {
	// CallsPerMinute caps admissions per rolling minute. Zero or
	// negative disables limiting.
	CallsPerMinute int

	// Burst is the number of admissions available instantaneously.
	// Defaults to 1, which spaces calls evenly at 60/CallsPerMinute
	// seconds apart. Larger bursts slow the refill so the rolling
	// bound still holds; capped at CallsPerMinute.
	Burst int

	// AcquireTimeout bounds how long a single Acquire may block.
	// Zero means wait indefinitely (until context cancellation).
	AcquireTimeout time.Duration
}

// New creates a Limiter from config
func New(cfg Config) *Limiter {
	if cfg.CallsPerMinute <= 0 {
		return &Limiter{limiter: rate.NewLimiter(rate.Inf, 1), acquireTimeout: cfg.AcquireTimeout}
	}

	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	if burst > cfg.CallsPerMinute {
		burst = cfg.CallsPerMinute
	}

	// A rolling minute can see a full bucket plus a minute of refill,
	// so the refill gives up burst-1 slots to keep the window at
	// CallsPerMinute
	perMinute := cfg.CallsPerMinute - burst + 1

	return &Limiter{
		limiter:        rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), burst),
		acquireTimeout: cfg.AcquireTimeout,
	}
}

// Acquire blocks until an admission slot is available, the configured
// timeout elapses, or ctx is canceled. It never blocks on anything
// other than time.
func (l *Limiter) Acquire(ctx context.Context) error {
	wctx := ctx
	if l.acquireTimeout > 0 {
		var cancel context.CancelFunc
		wctx, cancel = context.WithTimeout(ctx, l.acquireTimeout)
		defer cancel()
	}

	if err := l.limiter.Wait(wctx); err != nil {
		// Wait fails up front when the needed delay would exceed the
		// deadline, so the caller's context may still be live here
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if l.acquireTimeout > 0 {
			return fmt.Errorf("%w after %s", ErrAcquireTimeout, l.acquireTimeout)
		}
		return fmt.Errorf("%w: %v", ErrAcquireTimeout, err)
	}
	return nil
}

// Allow reports whether a slot is available right now, consuming it if
// so. Used by callers that prefer skipping over waiting.
func (l *Limiter) Allow() bool {
	return l.limiter.Allow()
}
