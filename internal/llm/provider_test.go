package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/abhisek/practiced/internal/store"
)

func TestMockProvider_ReturnsCannedResponses(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Text: `{"a":1}`, Usage: Usage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}},
		MockResponse{Text: `{"b":2}`},
	)

	resp1, err := mock.Generate(context.Background(), UserPrompt("", "first"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp1.Text != `{"a":1}` {
		t.Fatalf("expected {\"a\":1}, got %s", resp1.Text)
	}
	if resp1.Usage.InputTokens != 10 {
		t.Fatalf("expected 10 input tokens, got %d", resp1.Usage.InputTokens)
	}
	if resp1.StopReason != "end" {
		t.Fatalf("expected stop reason 'end', got %q", resp1.StopReason)
	}

	resp2, err := mock.Generate(context.Background(), UserPrompt("", "second"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp2.Text != `{"b":2}` {
		t.Fatalf("expected {\"b\":2}, got %s", resp2.Text)
	}
}

func TestMockProvider_EmptyQueueReturnsError(t *testing.T) {
	mock := NewMockProvider()
	_, err := mock.Generate(context.Background(), Request{})
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected ErrProviderUnavailable, got: %T", err)
	}
}

func TestMockProvider_EmptyTextIsEmptyResponse(t *testing.T) {
	mock := NewMockProvider(MockResponse{})
	_, err := mock.Generate(context.Background(), Request{})
	var empty *ErrEmptyResponse
	if !errors.As(err, &empty) {
		t.Fatalf("expected ErrEmptyResponse, got: %T", err)
	}
}

func TestMockProvider_RecordsCalls(t *testing.T) {
	mock := NewMockProvider(MockResponse{Text: `{}`})

	_, _ = mock.Generate(context.Background(), UserPrompt("sys", "hello"))

	if mock.CallCount() != 1 {
		t.Fatalf("expected 1 call, got %d", mock.CallCount())
	}
	if mock.Calls[0].System != "sys" {
		t.Fatalf("expected system 'sys', got %q", mock.Calls[0].System)
	}
	if mock.Calls[0].Messages[0].Role != RoleUser {
		t.Fatalf("expected user role, got %q", mock.Calls[0].Messages[0].Role)
	}
}

func TestMockProvider_DelayHonoursContext(t *testing.T) {
	mock := NewMockProvider(MockResponse{Text: "late", Delay: time.Second})
	mock.AddResponse(MockResponse{Text: "next"})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := mock.Generate(ctx, Request{}); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got: %v", err)
	}
	if mock.Remaining() != 1 {
		t.Fatalf("expected 1 remaining answer, got %d", mock.Remaining())
	}

	resp, err := mock.Generate(context.Background(), Request{})
	if err != nil || resp.Text != "next" {
		t.Fatalf("unexpected answer: %v %v", resp, err)
	}
	if mock.Remaining() != 0 {
		t.Fatalf("expected script exhausted, got %d", mock.Remaining())
	}
}

func TestPurposeContext(t *testing.T) {
	ctx := context.Background()
	if p := PurposeFrom(ctx); p != "unknown" {
		t.Fatalf("expected 'unknown', got %q", p)
	}

	ctx = WithPurpose(ctx, "quiz-gen")
	if p := PurposeFrom(ctx); p != "quiz-gen" {
		t.Fatalf("expected 'quiz-gen', got %q", p)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"gemini without key", Config{Provider: "gemini"}, true},
		{"gemini with key", Config{Provider: "gemini", Gemini: GeminiConfig{APIKey: "g-test"}}, false},
		{"anthropic without key", Config{Provider: "anthropic"}, true},
		{"anthropic with key", Config{Provider: "anthropic", Anthropic: AnthropicConfig{APIKey: "sk-test"}}, false},
		{"openai without key", Config{Provider: "openai"}, true},
		{"openai with key", Config{Provider: "openai", OpenAI: OpenAIConfig{APIKey: "sk-test"}}, false},
		{"openrouter without key", Config{Provider: "openrouter"}, true},
		{"mock needs no key", Config{Provider: "mock"}, false},
		{"unknown provider", Config{Provider: "unknown"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("PRACTICED_LLM_PROVIDER", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "")
	t.Setenv("OPENROUTER_API_KEY", "")
	t.Setenv("PRACTICED_GEMINI_API_KEY", "")
	t.Setenv("PRACTICED_GEMINI_MODEL", "")
	t.Setenv("GEMINI_API_KEY", "g-key")
	t.Setenv("GEMINI_MODEL", "gemini-2.0-flash")
	t.Setenv("PRACTICED_LLM_TIMEOUT", "5s")

	cfg := ConfigFromEnv()
	if cfg.Provider != "gemini" {
		t.Fatalf("expected gemini, got %q", cfg.Provider)
	}
	if cfg.Gemini.APIKey != "g-key" || cfg.Gemini.Model != "gemini-2.0-flash" {
		t.Fatalf("unexpected gemini config: %+v", cfg.Gemini)
	}
	if cfg.Timeout.String() != "5s" {
		t.Fatalf("expected 5s timeout, got %s", cfg.Timeout)
	}
}

func TestConfigFromEnv_DiscoversFirstKey(t *testing.T) {
	for _, k := range []string{
		"PRACTICED_LLM_PROVIDER", "PRACTICED_GEMINI_API_KEY", "GEMINI_API_KEY",
		"PRACTICED_OPENAI_API_KEY", "OPENAI_API_KEY", "PRACTICED_OPENROUTER_API_KEY",
		"PRACTICED_ANTHROPIC_API_KEY", "PRACTICED_LLM_TIMEOUT",
	} {
		t.Setenv(k, "")
	}
	t.Setenv("ANTHROPIC_API_KEY", "a-key")
	t.Setenv("OPENROUTER_API_KEY", "or-key")

	cfg := ConfigFromEnv()
	if cfg.Provider != "anthropic" || cfg.Anthropic.APIKey != "a-key" {
		t.Fatalf("expected anthropic discovered, got %q %+v", cfg.Provider, cfg.Anthropic)
	}
	if cfg.OpenRouter.APIKey != "or-key" {
		t.Fatalf("expected openrouter key kept, got %q", cfg.OpenRouter.APIKey)
	}
	if cfg.Timeout != 60*time.Second {
		t.Fatalf("expected default timeout, got %s", cfg.Timeout)
	}

	t.Setenv("PRACTICED_LLM_PROVIDER", "openrouter")
	if cfg := ConfigFromEnv(); cfg.Provider != "openrouter" {
		t.Fatalf("expected explicit provider, got %q", cfg.Provider)
	}
}

type recordingRepo struct {
	mu     sync.Mutex
	events []store.LLMRequestEventData
	err    error
}

func (r *recordingRepo) AppendLLMRequest(_ context.Context, data store.LLMRequestEventData) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, data)
	return r.err
}

func TestLoggingProvider_RecordsSuccessAndFailure(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Text: `{"ok":true}`, Usage: Usage{InputTokens: 3, OutputTokens: 4}},
		MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("down")}},
	)
	repo := &recordingRepo{}
	p := WithLogging(mock, "mock", repo, nil)

	ctx := WithPurpose(context.Background(), "quiz-eval")
	if _, err := p.Generate(ctx, UserPrompt("sys", "score it")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := p.Generate(ctx, UserPrompt("sys", "again")); err == nil {
		t.Fatal("expected error")
	}

	if len(repo.events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(repo.events))
	}
	ok, failed := repo.events[0], repo.events[1]
	if !ok.Success || ok.Purpose != "quiz-eval" || ok.InputTokens != 3 || ok.ResponseBody != `{"ok":true}` {
		t.Errorf("unexpected success event: %+v", ok)
	}
	if !strings.Contains(ok.RequestBody, "[system]\nsys") || !strings.Contains(ok.RequestBody, "score it") {
		t.Errorf("request body not captured: %q", ok.RequestBody)
	}
	if failed.Success || failed.ErrorMessage == "" {
		t.Errorf("unexpected failure event: %+v", failed)
	}
}

func TestLoggingProvider_RepoFailureDoesNotFailRequest(t *testing.T) {
	mock := NewMockProvider(MockResponse{Text: "hi"})
	p := WithLogging(mock, "mock", &recordingRepo{err: errors.New("disk full")}, nil)

	if _, err := p.Generate(context.Background(), Request{}); err != nil {
		t.Fatalf("expected request to succeed, got: %v", err)
	}
	if p.ModelID() != "mock" {
		t.Fatalf("expected 'mock', got %q", p.ModelID())
	}
}

func TestNewProvider_Mock(t *testing.T) {
	p, err := NewProvider(context.Background(), Config{Provider: "mock"}, nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ModelID() != "mock" {
		t.Fatalf("expected 'mock', got %q", p.ModelID())
	}
}

func TestNewProvider_MissingKey(t *testing.T) {
	if _, err := NewProvider(context.Background(), Config{Provider: "gemini"}, nil, nil); err == nil {
		t.Fatal("expected error for missing key")
	}
}

func TestUnconfigured(t *testing.T) {
	p := Unconfigured(errors.New("no key"))
	_, err := p.Generate(context.Background(), Request{})
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) || !strings.Contains(err.Error(), "no key") {
		t.Fatalf("expected ErrProviderUnavailable wrapping cause, got: %v", err)
	}
}

func TestIsModelFailure(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"unavailable", &ErrProviderUnavailable{}, true},
		{"rate limit", fmt.Errorf("call: %w", &ErrRateLimit{Err: errors.New("429")}), true},
		{"empty", &ErrEmptyResponse{Provider: "gemini"}, true},
		{"truncated", &ErrMaxTokensExceeded{Provider: "openai"}, true},
		{"deadline", fmt.Errorf("quiz: %w", context.DeadlineExceeded), true},
		{"invalid", &ErrInvalidResponse{Err: errors.New("bad")}, false},
		{"canceled", context.Canceled, false},
		{"plain", errors.New("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsModelFailure(tt.err); got != tt.want {
				t.Fatalf("IsModelFailure(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestLoggingProvider_KeepsFailedContent(t *testing.T) {
	mock := NewMockProvider(MockResponse{Err: &ErrMaxTokensExceeded{Provider: "mock", Content: `{"questions":[`}})
	repo := &recordingRepo{}
	p := WithLogging(mock, "mock", repo, nil)

	ctx := withAttempt(WithPurpose(context.Background(), "quiz-gen"), 2)
	if _, err := p.Generate(ctx, UserPrompt("", "quiz")); err == nil {
		t.Fatal("expected error")
	}
	if len(repo.events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(repo.events))
	}
	if got := repo.events[0].ResponseBody; got != `{"questions":[` {
		t.Fatalf("expected truncated text in event, got %q", got)
	}
}
