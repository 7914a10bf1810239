package llm

import "context"

type ctxKey int

const (
	purposeCtxKey ctxKey = iota
	attemptCtxKey
)

// WithPurpose labels model calls made with ctx, e.g. "quiz-gen". The label
// ends up in the llm_request_events table and the request log.
func WithPurpose(ctx context.Context, purpose string) context.Context {
	return context.WithValue(ctx, purposeCtxKey, purpose)
}

// PurposeFrom returns the label set by WithPurpose, or "unknown".
func PurposeFrom(ctx context.Context) string {
	if v, ok := ctx.Value(purposeCtxKey).(string); ok && v != "" {
		return v
	}
	return "unknown"
}

// withAttempt records the 1-based retry attempt that issued a call.
func withAttempt(ctx context.Context, attempt int) context.Context {
	return context.WithValue(ctx, attemptCtxKey, attempt)
}

// AttemptFrom returns the attempt number Do attached to ctx. Calls made
// outside Do report 1.
func AttemptFrom(ctx context.Context) int {
	if n, ok := ctx.Value(attemptCtxKey).(int); ok && n > 0 {
		return n
	}
	return 1
}
