package llm

import (
	"context"
	"errors"
	"time"
)

// RetryPolicy describes how a model call is retried. Waits are a fixed
// Delay between attempts; there is no backoff.
type RetryPolicy struct {
	// MaxAttempts is the total number of attempts, including the first.
	// Values below 1 are treated as 1.
	MaxAttempts int

	// Delay is the wait between a failed attempt and the next one.
	Delay time.Duration

	// Retryable reports whether err should consume another attempt.
	// When nil every error is retried, schema validation failures included.
	Retryable func(err error) bool

	// OnRetry, when set, is called before each wait with the 1-based
	// number of the attempt that just failed.
	OnRetry func(attempt int, err error)
}

// DefaultRetryPolicy returns the policy used for quiz generation and
// evaluation: three attempts, 1.5s apart.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		Delay:       1500 * time.Millisecond,
	}
}

func (p RetryPolicy) attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

// shouldRetry determines if an error is worth another attempt.
func (p RetryPolicy) shouldRetry(err error) bool {
	// Context errors are never retried.
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if p.Retryable == nil {
		return true
	}
	return p.Retryable(err)
}

// Do runs op until it succeeds or the policy's attempts are exhausted, and
// returns the last error unchanged. The ctx handed to op carries the attempt
// number, see AttemptFrom. The wait between attempts only blocks
// the calling goroutine and ends early if ctx is cancelled.
func Do[T any](ctx context.Context, policy RetryPolicy, op func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error

	n := policy.attempts()
	for attempt := range n {
		v, err := op(withAttempt(ctx, attempt+1))
		if err == nil {
			return v, nil
		}
		lastErr = err

		if !policy.shouldRetry(err) {
			return zero, err
		}

		// Last attempt: don't sleep, just return the error.
		if attempt == n-1 {
			break
		}

		if policy.OnRetry != nil {
			policy.OnRetry(attempt+1, err)
		}

		if err := sleep(ctx, policy.Delay); err != nil {
			return zero, err
		}
	}

	return zero, lastErr
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
