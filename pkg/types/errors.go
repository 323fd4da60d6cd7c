package types

import "errors"

// Error taxonomy for the pipeline. Only ErrInvalidConfig aborts a run;
// everything else is recorded in the model or statistics and the run
// continues.
var (
	// ErrInvalidConfig indicates missing or invalid configuration at
	// startup. This is the only fatal error class.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrAnalysis indicates a single file could not be read or parsed
	ErrAnalysis = errors.New("analysis failed")

	// ErrGeneration indicates the external generation call failed after
	// retries were exhausted
	ErrGeneration = errors.New("generation failed")

	// ErrRateLimitTimeout indicates a rate-limiter acquire exceeded its
	// wait budget
	ErrRateLimitTimeout = errors.New("rate limit acquire timed out")

	// ErrCacheIO indicates a cache storage read or write failed; callers
	// treat this as a cache miss
	ErrCacheIO = errors.New("cache storage error")
)
