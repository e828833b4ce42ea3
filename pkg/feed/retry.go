package feed

import (
	"context"
	"errors"
	"time"
)

// RetryableError marks a sink error as transient.
type RetryableError struct{ Err error }

// Retryable wraps err as a RetryableError.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

func (e *RetryableError) Error() string { return e.Err.Error() }

func (e *RetryableError) Unwrap() error { return e.Err }

// IsRetryable reports whether err is wrapped with RetryableError.
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// retryWithBackoff calls fn up to retries+1 times, doubling delay between
// attempts. Only retryable errors trigger another attempt.
func retryWithBackoff(ctx context.Context, retries int, delay time.Duration, fn func() error) error {
	var lastErr error
	for i := 0; i <= retries; i++ {
		if err := fn(); err == nil {
			return nil
		} else if lastErr = err; !IsRetryable(err) {
			return err
		}

		if i < retries {
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
