package llm

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/abhisek/practiced/internal/store"
)

// LoggingProvider records each call in the event log and the slog logger.
type LoggingProvider struct {
	inner    Provider
	provider string
	events   store.EventRepo
	logger   *slog.Logger
	now      func() time.Time
}

// WithLogging wraps p. A nil repo only logs; a nil logger uses
// slog.Default.
func WithLogging(p Provider, providerName string, repo store.EventRepo, logger *slog.Logger) Provider {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingProvider{
		inner:    p,
		provider: providerName,
		events:   repo,
		logger:   logger,
		now:      time.Now,
	}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := l.now()
	resp, err := l.inner.Generate(ctx, req)
	ev := l.event(ctx, req, resp, err, l.now().Sub(start))

	attrs := []slog.Attr{
		slog.String("provider", ev.Provider),
		slog.String("model", ev.Model),
		slog.String("purpose", ev.Purpose),
		slog.Int("attempt", AttemptFrom(ctx)),
		slog.Int64("latency_ms", ev.LatencyMs),
		slog.Int("input_tokens", ev.InputTokens),
		slog.Int("output_tokens", ev.OutputTokens),
	}
	if err != nil {
		l.logger.LogAttrs(ctx, slog.LevelWarn, "llm request failed", append(attrs, slog.Any("error", err))...)
	} else {
		l.logger.LogAttrs(ctx, slog.LevelDebug, "llm request", attrs...)
	}

	// Recorded even when the caller gave up; a failed write never fails
	// the call.
	if l.events != nil {
		if werr := l.events.AppendLLMRequest(context.WithoutCancel(ctx), ev); werr != nil {
			l.logger.WarnContext(ctx, "failed to record llm request event", slog.Any("error", werr))
		}
	}
	return resp, err
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}

func (l *LoggingProvider) event(ctx context.Context, req Request, resp *Response, err error, took time.Duration) store.LLMRequestEventData {
	ev := store.LLMRequestEventData{
		Provider:    l.provider,
		Model:       l.inner.ModelID(),
		Purpose:     PurposeFrom(ctx),
		LatencyMs:   took.Milliseconds(),
		Success:     err == nil,
		RequestBody: req.String(),
	}
	if resp != nil {
		ev.InputTokens = resp.Usage.InputTokens
		ev.OutputTokens = resp.Usage.OutputTokens
		if resp.Model != "" {
			ev.Model = resp.Model
		}
		ev.ResponseBody = resp.Text
	}
	if err != nil {
		ev.ErrorMessage = err.Error()
		if body := failedContent(err); body != "" {
			ev.ResponseBody = body
		}
	}
	return ev
}

// failedContent returns the model text carried by a parse or truncation
// error, so the event log shows what the model actually said.
func failedContent(err error) string {
	var (
		invalid   *ErrInvalidResponse
		truncated *ErrMaxTokensExceeded
	)
	switch {
	case errors.As(err, &invalid):
		return invalid.Content
	case errors.As(err, &truncated):
		return truncated.Content
	}
	return ""
}
