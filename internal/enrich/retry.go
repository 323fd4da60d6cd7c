package enrich

import (
	"context"
	"time"
)

// Retry configuration defaults
const (
	DefaultMaxAttempts      = 3
	DefaultInitialBackoffMs = 200
	DefaultMaxBackoffMs     = 5000
	DefaultBackoffMultiple  = 2.0
)

// RetryConfig configures exponential backoff around the external call
type RetryConfig struct {
	MaxAttempts int           // Hard attempt cap, including the first try
	BaseDelay   time.Duration // Initial delay between attempts
	MaxDelay    time.Duration // Ceiling for the backoff delay
	Multiplier  float64       // Exponential growth factor
}

// DefaultRetryConfig returns sensible defaults for API retry
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: DefaultMaxAttempts,
		BaseDelay:   DefaultInitialBackoffMs * time.Millisecond,
		MaxDelay:    DefaultMaxBackoffMs * time.Millisecond,
		Multiplier:  DefaultBackoffMultiple,
	}
}

// retryWithBackoff executes fn with exponential backoff. retryable
// decides per error whether another attempt is worthwhile; retry stops
// immediately on context cancellation.
func retryWithBackoff[T any](ctx context.Context, config RetryConfig, fn func() (T, error), retryable func(error) bool) (T, error) {
	var lastErr error
	var zero T
	backoff := config.BaseDelay

	for attempt := 0; attempt < config.MaxAttempts; attempt++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}

		lastErr = err

		if ctx.Err() != nil {
			return zero, ctx.Err()
		}
		if !retryable(err) {
			return zero, err
		}

		if attempt < config.MaxAttempts-1 {
			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(backoff):
				backoff = time.Duration(float64(backoff) * config.Multiplier)
				if backoff > config.MaxDelay {
					backoff = config.MaxDelay
				}
			}
		}
	}

	return zero, lastErr
}
