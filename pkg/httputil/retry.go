package httputil

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// RetryableError wraps an error to indicate it should trigger a retry.
// Wrap transient failures (network timeouts, 5xx responses, rate limits)
// with this type so that [Retry] knows to attempt the operation again.
// Other errors are treated as terminal and returned after a single attempt.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retryable wraps an error as a RetryableError. Wrapping nil returns nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

// IsRetryable checks if an error is wrapped with RetryableError.
func IsRetryable(err error) bool {
	return errors.As(err, new(*RetryableError))
}

// ExhaustedError is returned by [Retry] when a retryable failure persisted
// through the whole retry budget. It carries the attempt count so callers
// can report "failed after N attempts" instead of "failed once".
type ExhaustedError struct {
	Op       string // operation name, for diagnostics
	Attempts int    // total tries made, including the first
	Err      error  // the last underlying failure
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("%s failed after %d attempts: %v", e.Op, e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error { return e.Err }

// Strategy controls retry behavior for a logical call.
// The zero value is not useful; use [DefaultStrategy] or construct explicitly.
type Strategy struct {
	MaxRetries int           // retries after the first attempt (0 = single try)
	BaseDelay  time.Duration // delay before the first retry
	MaxDelay   time.Duration // ceiling on the backoff delay

	// Logf, when non-nil, receives one line per failed attempt.
	Logf func(format string, args ...any)
}

// DefaultStrategy is a sensible default for registry requests:
// up to 3 retries with 500ms initial delay, doubling, capped at 8s.
func DefaultStrategy() Strategy {
	return Strategy{
		MaxRetries: 3,
		BaseDelay:  500 * time.Millisecond,
		MaxDelay:   8 * time.Second,
	}
}

// Delay returns the backoff delay before retrying after the given
// zero-based attempt: min(BaseDelay * 2^attempt, MaxDelay).
func (s Strategy) Delay(attempt int) time.Duration {
	d := s.BaseDelay
	for i := 0; i < attempt; i++ {
		d *= 2
		if d >= s.MaxDelay {
			return s.MaxDelay
		}
	}
	if s.MaxDelay > 0 && d > s.MaxDelay {
		return s.MaxDelay
	}
	return d
}

func (s Strategy) logf(format string, args ...any) {
	if s.Logf != nil {
		s.Logf(format, args...)
	}
}

// Retry executes fn until it succeeds, fails terminally, or the retry
// budget is spent. Only errors wrapped with [RetryableError] trigger
// retries; any other error is returned unchanged after a single attempt.
//
// Attempts are strictly sequential: the next attempt starts only after the
// previous failure and its backoff sleep complete. The sleep is abortable;
// if ctx is cancelled during backoff, ctx.Err() is returned promptly.
//
// When the budget is spent on retryable failures, Retry returns an
// [*ExhaustedError] wrapping the most recent failure. It never swallows a
// failure: exactly one error (the latest) crosses back to the caller.
func Retry(ctx context.Context, strategy Strategy, op string, fn func() error) error {
	tries := strategy.MaxRetries + 1
	if tries < 1 {
		tries = 1
	}

	var lastErr error
	for attempt := 0; attempt < tries; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		if !IsRetryable(err) {
			strategy.logf("%s: attempt %d/%d failed, not retrying: %v", op, attempt+1, tries, err)
			return err
		}
		lastErr = err

		if attempt == tries-1 {
			strategy.logf("%s: attempt %d/%d failed: %v", op, attempt+1, tries, err)
			break
		}

		delay := strategy.Delay(attempt)
		strategy.logf("%s: attempt %d/%d failed, retrying in %s: %v", op, attempt+1, tries, delay, err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	return &ExhaustedError{Op: op, Attempts: tries, Err: lastErr}
}
