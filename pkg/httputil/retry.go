package httputil

import (
	"context"
	"errors"
	"time"
)

// RetryableError marks an error as transient. The PyPI API and the RSS
// feeds fail intermittently under load; wrapping those failures (network
// timeouts, 5xx responses) lets [Retry] distinguish them from permanent
// ones like a missing project.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retry runs fn up to attempts times, doubling the delay between tries.
// Only errors wrapped in [RetryableError] trigger another attempt; any
// other error is returned as-is on the first failure. If the context is
// cancelled while waiting, ctx.Err() is returned instead.
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	attempts = max(attempts, 1)
	var lastErr error

	for i := 0; i < attempts; i++ {
		if err := fn(); err == nil {
			return nil
		} else if lastErr = err; !isRetryable(err) {
			return err
		}

		if i < attempts-1 {
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

// RetryWithBackoff applies the defaults used for index requests: three
// attempts starting at one second, doubling each retry.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	return Retry(ctx, 3, time.Second, fn)
}

func isRetryable(err error) bool {
	return errors.As(err, new(*RetryableError))
}
