package httputil

import (
	"context"
	"errors"
	"time"
)

// Fetch retry defaults. Planning documents are small and served by a
// single origin, so a short initial delay with few attempts recovers from
// blips without stalling an interactive layout run.
const (
	defaultAttempts = 3
	defaultDelay    = 500 * time.Millisecond
)

// RetryableError marks an error as transient. Fetch wraps network failures
// and 5xx responses in it; anything unwrapped aborts the retry loop on the
// first attempt.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retry runs fn until it succeeds, returns a non-retryable error, the
// attempts are exhausted, or ctx is cancelled. The delay doubles between
// attempts. The last error seen is returned on exhaustion.
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; ; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		if !errors.As(err, new(*RetryableError)) {
			return err
		}
		lastErr = err

		if attempt == attempts {
			return lastErr
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
}

// RetryFetch applies the package's fetch defaults to Retry.
func RetryFetch(ctx context.Context, fn func() error) error {
	return Retry(ctx, defaultAttempts, defaultDelay, fn)
}
