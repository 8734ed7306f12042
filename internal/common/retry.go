package common

import (
	"context"
	"errors"
	"time"

	"github.com/ternarybob/arbor"
)

// RetryPolicy defines bounded retry behavior with a linear backoff:
// the wait before attempt n+1 is n * Delay.
type RetryPolicy struct {
	MaxAttempts int
	Delay       time.Duration
}

// NewRetryPolicy creates a retry policy, clamping attempts to at least one
func NewRetryPolicy(maxAttempts int, delay time.Duration) *RetryPolicy {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if delay < 0 {
		delay = 0
	}
	return &RetryPolicy{
		MaxAttempts: maxAttempts,
		Delay:       delay,
	}
}

// permanentError marks an error that must not be retried
type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent wraps err so ExecuteWithRetry returns it without further attempts
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err was wrapped with Permanent
func IsPermanent(err error) bool {
	var pe *permanentError
	return errors.As(err, &pe)
}

// Backoff returns the wait after the given zero-based attempt
func (p *RetryPolicy) Backoff(attempt int) time.Duration {
	return time.Duration(attempt+1) * p.Delay
}

// ExecuteWithRetry runs fn until it succeeds, returns a permanent error,
// the context is done or MaxAttempts is reached. The last error is returned.
func (p *RetryPolicy) ExecuteWithRetry(ctx context.Context, logger arbor.ILogger, operation string, fn func(attempt int) error) error {
	var lastErr error

	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn(attempt)
		if lastErr == nil {
			return nil
		}

		if IsPermanent(lastErr) || errors.Is(lastErr, context.Canceled) {
			logger.Debug().
				Str("operation", operation).
				Int("attempt", attempt+1).
				Err(lastErr).
				Msg("Non-retryable error, failing immediately")
			return lastErr
		}

		if attempt < p.MaxAttempts-1 {
			backoff := p.Backoff(attempt)
			logger.Debug().
				Str("operation", operation).
				Int("attempt", attempt+1).
				Int("max_attempts", p.MaxAttempts).
				Err(lastErr).
				Dur("backoff", backoff).
				Msg("Retrying after backoff")

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}
	}

	logger.Warn().
		Str("operation", operation).
		Int("max_attempts", p.MaxAttempts).
		Err(lastErr).
		Msg("All retry attempts exhausted")

	return lastErr
}
