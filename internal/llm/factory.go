package llm

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/abhisek/practiced/internal/store"
)

// NewProvider creates a Provider from configuration.
// The returned provider records every call through the logging middleware;
// retries are applied by callers with a RetryPolicy.
func NewProvider(ctx context.Context, cfg Config, eventRepo store.EventRepo, logger *slog.Logger) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var base Provider
	var err error

	switch cfg.Provider {
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "openrouter":
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case "mock":
		base = NewMockProvider()
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	// caller → logging → base
	return WithLogging(base, cfg.Provider, eventRepo, logger), nil
}

// unconfiguredProvider fails every call with the configuration error, so a
// server without model credentials still starts and serves lesson listings.
type unconfiguredProvider struct {
	err error
}

// Unconfigured returns a Provider whose Generate always reports err as
// ErrProviderUnavailable.
func Unconfigured(err error) Provider {
	return &unconfiguredProvider{err: err}
}

func (u *unconfiguredProvider) Generate(context.Context, Request) (*Response, error) {
	return nil, &ErrProviderUnavailable{Err: u.err}
}

func (u *unconfiguredProvider) ModelID() string {
	return "unconfigured"
}
