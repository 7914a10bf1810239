package llm

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrRateLimit is a 429 from the provider. RetryAfter is zero when the
// provider did not say.
type ErrRateLimit struct {
	RetryAfter time.Duration
	Err        error
}

func (e *ErrRateLimit) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited, retry after %s: %v", e.RetryAfter, e.Err)
	}
	return fmt.Sprintf("rate limited: %v", e.Err)
}

func (e *ErrRateLimit) Unwrap() error { return e.Err }

// ErrInvalidResponse means the model text could not be turned into the
// expected JSON: no object found, malformed, or schema mismatch. Content
// keeps the offending text for the event log.
type ErrInvalidResponse struct {
	Content string
	Err     error
}

func (e *ErrInvalidResponse) Error() string {
	return fmt.Sprintf("schema validation failed: %v", e.Err)
}

func (e *ErrInvalidResponse) Unwrap() error { return e.Err }

// ErrProviderUnavailable covers transport failures, 5xx answers and a
// provider that was never configured.
type ErrProviderUnavailable struct {
	Err error
}

func (e *ErrProviderUnavailable) Error() string {
	if e.Err == nil {
		return "LLM provider unavailable"
	}
	return "LLM provider unavailable: " + e.Err.Error()
}

func (e *ErrProviderUnavailable) Unwrap() error { return e.Err }

// ErrEmptyResponse means the provider answered without any text.
type ErrEmptyResponse struct {
	Provider string
}

func (e *ErrEmptyResponse) Error() string {
	return e.Provider + ": model returned empty response"
}

// ErrMaxTokensExceeded means the model stopped at the output token limit.
// Content holds the truncated text.
type ErrMaxTokensExceeded struct {
	Provider string
	Content  string
}

func (e *ErrMaxTokensExceeded) Error() string {
	if e.Provider == "" {
		return "LLM response truncated: max tokens exceeded"
	}
	return e.Provider + ": LLM response truncated: max tokens exceeded"
}

// IsModelFailure reports whether err means the model could not produce an
// answer at all, as opposed to producing one that failed to parse.
func IsModelFailure(err error) bool {
	var (
		unavail   *ErrProviderUnavailable
		rateLimit *ErrRateLimit
		empty     *ErrEmptyResponse
		truncated *ErrMaxTokensExceeded
	)
	switch {
	case errors.As(err, &unavail), errors.As(err, &rateLimit),
		errors.As(err, &empty), errors.As(err, &truncated):
		return true
	case errors.Is(err, context.DeadlineExceeded):
		return true
	}
	return false
}
