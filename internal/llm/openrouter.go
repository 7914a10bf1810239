package llm

import (
	"fmt"
	"net/http"
	"time"
)

const (
	defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"
	openRouterAppTitle       = "practiced"
)

// OpenRouterProvider is the OpenAI-compatible client pointed at OpenRouter,
// with the attribution headers OpenRouter asks callers to send.
type OpenRouterProvider struct {
	*OpenAIProvider
}

// NewOpenRouterProvider creates a provider targeting the OpenRouter API.
func NewOpenRouterProvider(cfg OpenRouterConfig) (*OpenRouterProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openrouter API key is required")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultOpenRouterBaseURL
	}

	client := &http.Client{
		Timeout:   2 * time.Minute,
		Transport: &openRouterTransport{base: http.DefaultTransport, title: openRouterAppTitle},
	}
	inner := newOpenAICompatible("openrouter", OpenAIConfig{
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
		BaseURL: baseURL,
	}, client)
	return &OpenRouterProvider{OpenAIProvider: inner}, nil
}

type openRouterTransport struct {
	base  http.RoundTripper
	title string
}

func (t *openRouterTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	r = r.Clone(r.Context())
	r.Header.Set("X-Title", t.title)
	return t.base.RoundTrip(r)
}
