package httputil

import (
	"context"
	"errors"
	"time"
)

// RetryableError marks a failure worth another attempt. Fetchers wrap
// transient conditions (network errors, 5xx statuses) with it; anything
// unmarked stops a retry loop at its first failure.
type RetryableError struct{ Err error }

// Error returns the wrapped error's message.
func (e *RetryableError) Error() string { return e.Err.Error() }

// Unwrap returns the wrapped error.
func (e *RetryableError) Unwrap() error { return e.Err }

// Retry runs fn until it succeeds, returns an unmarked error, or uses up
// attempts. The wait between attempts starts at delay and doubles; a
// cancelled ctx ends the wait early with ctx.Err().
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	attempts = max(attempts, 1)

	var err error
	for attempt := 1; ; attempt++ {
		if err = fn(); err == nil || !isRetryable(err) {
			return err
		}
		if attempt == attempts {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
			delay *= 2
		}
	}
}

// RetryWithBackoff is Retry with the client defaults: three attempts
// starting from a one second delay.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	return Retry(ctx, 3, time.Second, fn)
}

func isRetryable(err error) bool {
	return errors.As(err, new(*RetryableError))
}
