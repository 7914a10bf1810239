package llm

import (
	"fmt"
	"os"
	"time"
)

// Config selects and configures the model provider.
type Config struct {
	// Provider is one of "gemini", "anthropic", "openai", "openrouter"
	// or "mock".
	Provider string

	Gemini     GeminiConfig
	Anthropic  AnthropicConfig
	OpenAI     OpenAIConfig
	OpenRouter OpenRouterConfig

	// Timeout bounds one practice operation, retries and waits included.
	Timeout time.Duration
}

type GeminiConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type AnthropicConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// OpenAIConfig also serves OpenAI-compatible endpoints through BaseURL.
type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type OpenRouterConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// DefaultConfig uses gemini-2.5-flash with a 60s operation timeout.
func DefaultConfig() Config {
	return Config{
		Provider:   "gemini",
		Gemini:     GeminiConfig{Model: "gemini-2.5-flash"},
		Anthropic:  AnthropicConfig{Model: "claude-haiku"},
		OpenAI:     OpenAIConfig{Model: "gpt-4o-mini"},
		OpenRouter: OpenRouterConfig{Model: "google/gemini-2.5-flash"},
		Timeout:    60 * time.Second,
	}
}

// providerKeys lists, per provider, the env vars holding its API key in
// lookup order. The order of the slice is the discovery priority.
var providerKeys = []struct {
	provider string
	vars     []string
}{
	{"gemini", []string{"PRACTICED_GEMINI_API_KEY", "GEMINI_API_KEY"}},
	{"openai", []string{"PRACTICED_OPENAI_API_KEY", "OPENAI_API_KEY"}},
	{"anthropic", []string{"PRACTICED_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY"}},
	{"openrouter", []string{"PRACTICED_OPENROUTER_API_KEY", "OPENROUTER_API_KEY"}},
}

// ConfigFromEnv reads the provider configuration from the environment.
// PRACTICED_LLM_PROVIDER picks the provider; when unset, the first
// provider with an API key wins (gemini, openai, anthropic, openrouter).
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	keys := map[string]string{}
	for _, pk := range providerKeys {
		keys[pk.provider] = firstEnv(pk.vars...)
	}
	cfg.Gemini.APIKey = keys["gemini"]
	cfg.OpenAI.APIKey = keys["openai"]
	cfg.Anthropic.APIKey = keys["anthropic"]
	cfg.OpenRouter.APIKey = keys["openrouter"]

	setFromEnv(&cfg.Gemini.Model, "PRACTICED_GEMINI_MODEL", "GEMINI_MODEL")
	setFromEnv(&cfg.Gemini.BaseURL, "PRACTICED_GEMINI_BASE_URL")
	setFromEnv(&cfg.Anthropic.Model, "PRACTICED_ANTHROPIC_MODEL")
	setFromEnv(&cfg.Anthropic.BaseURL, "PRACTICED_ANTHROPIC_BASE_URL")
	setFromEnv(&cfg.OpenAI.Model, "PRACTICED_OPENAI_MODEL")
	setFromEnv(&cfg.OpenAI.BaseURL, "PRACTICED_OPENAI_BASE_URL")
	setFromEnv(&cfg.OpenRouter.Model, "PRACTICED_OPENROUTER_MODEL")
	setFromEnv(&cfg.OpenRouter.BaseURL, "PRACTICED_OPENROUTER_BASE_URL")

	if p := os.Getenv("PRACTICED_LLM_PROVIDER"); p != "" {
		cfg.Provider = p
	} else {
		for _, pk := range providerKeys {
			if keys[pk.provider] != "" {
				cfg.Provider = pk.provider
				break
			}
		}
	}

	if t := os.Getenv("PRACTICED_LLM_TIMEOUT"); t != "" {
		if d, err := time.ParseDuration(t); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}
	return cfg
}

func firstEnv(names ...string) string {
	for _, n := range names {
		if v := os.Getenv(n); v != "" {
			return v
		}
	}
	return ""
}

func setFromEnv(dst *string, names ...string) {
	if v := firstEnv(names...); v != "" {
		*dst = v
	}
}

// Validate checks the selected provider has an API key.
func (c Config) Validate() error {
	var key string
	switch c.Provider {
	case "mock":
		return nil
	case "gemini":
		key = c.Gemini.APIKey
	case "anthropic":
		key = c.Anthropic.APIKey
	case "openai":
		key = c.OpenAI.APIKey
	case "openrouter":
		key = c.OpenRouter.APIKey
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	if key == "" {
		for _, pk := range providerKeys {
			if pk.provider == c.Provider {
				return fmt.Errorf("%s provider needs an API key: set %s", c.Provider, pk.vars[len(pk.vars)-1])
			}
		}
	}
	return nil
}
