package practice

import (
	"os"
	"strconv"
	"time"

	"github.com/abhisek/practiced/internal/llm"
)

// Config holds quiz generation and evaluation settings.
type Config struct {
	// CacheTTL is how long a generated quiz is reused for the same
	// (user, lesson). Default: 30m.
	CacheTTL time.Duration

	// Retry wraps each model call together with response parsing.
	Retry llm.RetryPolicy

	// MinQuestions is the smallest acceptable quiz.
	MinQuestions int

	// Timeout bounds one Generate or Evaluate model operation, retries
	// included. Zero means no bound beyond the caller's context.
	Timeout time.Duration

	GenerateMaxTokens   int
	GenerateTemperature float64
	EvaluateMaxTokens   int
	EvaluateTemperature float64

	// NativeSchema forwards the response schema to the provider so that
	// providers with structured output constrain the model directly.
	NativeSchema bool
}

// DefaultConfig returns sensible defaults for the practice service.
func DefaultConfig() Config {
	return Config{
		CacheTTL:            1800 * time.Second,
		Retry:               llm.DefaultRetryPolicy(),
		MinQuestions:        QuizSize,
		Timeout:             60 * time.Second,
		GenerateMaxTokens:   8192,
		GenerateTemperature: 0.7,
		EvaluateMaxTokens:   2048,
		EvaluateTemperature: 0.2,
	}
}

// ConfigFromEnv overlays PRACTICED_* environment variables on the defaults.
// Unparseable values are ignored.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	if v := os.Getenv("PRACTICED_CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.CacheTTL = d
		}
	}
	if v := os.Getenv("PRACTICED_RETRY_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Retry.MaxAttempts = n
		}
	}
	if v := os.Getenv("PRACTICED_RETRY_DELAY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d >= 0 {
			cfg.Retry.Delay = d
		}
	}
	if v := os.Getenv("PRACTICED_NATIVE_SCHEMA"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.NativeSchema = b
		}
	}

	return cfg
}
