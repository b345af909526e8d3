package httputil

import (
	"context"
	"errors"
	"time"
)

// DefaultAttempts and DefaultDelay are the settings used by [RetryWithBackoff].
const (
	DefaultAttempts = 3
	DefaultDelay    = time.Second
)

// RetryableError marks an error as transient. [Retry] repeats only
// failures wrapped in this type.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retry executes fn up to attempts times with exponential backoff.
// Only errors wrapped with [RetryableError] trigger another attempt; other
// errors are returned immediately. The delay doubles after each failure.
// Returns the last error if all attempts fail, or ctx.Err() if cancelled.
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	return RetryNotify(ctx, attempts, delay, fn, nil)
}

// RetryNotify is [Retry] with a callback invoked before each backoff wait,
// receiving the failed attempt number (starting at 1), its error and the wait.
func RetryNotify(ctx context.Context, attempts int, delay time.Duration, fn func() error, notify func(attempt int, err error, wait time.Duration)) error {
	attempts = max(attempts, 1)
	var lastErr error

	for i := range attempts {
		if err := fn(); err == nil {
			return nil
		} else if lastErr = err; !isRetryable(err) {
			return err
		}

		if i < attempts-1 {
			if notify != nil {
				notify(i+1, lastErr, delay)
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay *= 2
			}
		}
	}
	return lastErr
}

// RetryWithBackoff calls [Retry] with [DefaultAttempts] and [DefaultDelay].
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	return Retry(ctx, DefaultAttempts, DefaultDelay, fn)
}

func isRetryable(err error) bool {
	return errors.As(err, new(*RetryableError))
}
