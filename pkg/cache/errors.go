package cache

import (
	"context"
	"errors"
	"time"
)

// ErrNetwork marks transport failures talking to a remote cache.
var ErrNetwork = errors.New("network error")

// RetryableError marks an error where a retry may succeed, such as a
// transient Redis connection drop.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }

func (e *RetryableError) Unwrap() error { return e.Err }

// Retryable wraps err as retryable. A nil err stays nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

// IsRetryable reports whether err carries a RetryableError anywhere in
// its chain.
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// retry policy for remote cache calls: three attempts, doubling delay.
const (
	retryAttempts     = 3
	retryInitialDelay = time.Second
)

// RetryWithBackoff runs fn, retrying on retryable errors with exponential
// backoff and honoring ctx between attempts. Non-retryable errors return
// immediately.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	var lastErr error
	for attempt, delay := 0, retryInitialDelay; attempt < retryAttempts; attempt, delay = attempt+1, delay*2 {
		lastErr = fn()
		if lastErr == nil || !IsRetryable(lastErr) {
			return lastErr
		}
		if attempt == retryAttempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return lastErr
}
