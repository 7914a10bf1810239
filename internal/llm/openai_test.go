package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func openAIAt(url string) *OpenAIProvider {
	return newOpenAICompatible("openai", OpenAIConfig{
		APIKey:  "test-key",
		Model:   "gpt-4o-mini",
		BaseURL: url + "/v1",
	}, nil)
}

func chatCompletion(content, finish string) map[string]any {
	return map[string]any{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": 1234567890,
		"model":   "gpt-4o-mini-2024-07-18",
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]any{"role": "assistant", "content": content},
			"finish_reason": finish,
		}},
		"usage": map[string]any{"prompt_tokens": 40, "completion_tokens": 25, "total_tokens": 65},
	}
}

func TestOpenAIProvider_Generate(t *testing.T) {
	srv := serveJSON(t, http.StatusOK, chatCompletion(`Here you go: {"questions":[]}`, "stop"))

	resp, err := openAIAt(srv.URL).Generate(context.Background(), Request{
		System:    "You are a finance tutor.",
		Messages:  []Message{{Role: RoleUser, Content: "Generate a quiz."}},
		MaxTokens: 256,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text != `Here you go: {"questions":[]}` {
		t.Fatalf("unexpected text: %q", resp.Text)
	}
	if resp.Usage != (Usage{InputTokens: 40, OutputTokens: 25, TotalTokens: 65}) {
		t.Fatalf("unexpected usage: %+v", resp.Usage)
	}
	if resp.Model != "gpt-4o-mini-2024-07-18" || resp.StopReason != StopEnd {
		t.Fatalf("unexpected model/stop: %q %q", resp.Model, resp.StopReason)
	}
}

func TestOpenAIProvider_Errors(t *testing.T) {
	apiError := func(typ, msg string) map[string]any {
		return map[string]any{"error": map[string]any{"type": typ, "message": msg}}
	}
	noChoices := map[string]any{"id": "chatcmpl-test", "model": "gpt-4o-mini", "choices": []any{}}

	tests := []struct {
		name   string
		status int
		body   any
		check  func(t *testing.T, err error)
	}{
		{"no choices", http.StatusOK, noChoices, func(t *testing.T, err error) {
			if e := assertErrorAs[*ErrEmptyResponse](t, err); e.Provider != "openai" {
				t.Errorf("provider = %q", e.Provider)
			}
		}},
		{"empty content", http.StatusOK, chatCompletion("", "stop"), func(t *testing.T, err error) {
			assertErrorAs[*ErrEmptyResponse](t, err)
		}},
		{"length finish", http.StatusOK, chatCompletion(`{"questions":[{"scen`, "length"), func(t *testing.T, err error) {
			if e := assertErrorAs[*ErrMaxTokensExceeded](t, err); e.Content != `{"questions":[{"scen` {
				t.Errorf("content = %q", e.Content)
			}
		}},
		{"rate limited", http.StatusTooManyRequests, apiError("tokens", "Rate limit exceeded"), func(t *testing.T, err error) {
			assertErrorAs[*ErrRateLimit](t, err)
		}},
		{"server error", http.StatusInternalServerError, apiError("server_error", "boom"), func(t *testing.T, err error) {
			assertErrorAs[*ErrProviderUnavailable](t, err)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := serveJSON(t, tt.status, tt.body)
			_, err := openAIAt(srv.URL).Generate(context.Background(), UserPrompt("", "quiz"))
			tt.check(t, err)
		})
	}
}

func TestOpenAIProvider_SchemaSentAsResponseFormat(t *testing.T) {
	var got struct {
		Messages []struct {
			Role string `json:"role"`
		} `json:"messages"`
		ResponseFormat *struct {
			Type       string `json:"type"`
			JSONSchema struct {
				Name string `json:"name"`
			} `json:"json_schema"`
		} `json:"response_format"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(chatCompletion(`{"label":"x","correct":1}`, "stop"))
	}))
	t.Cleanup(srv.Close)

	req := UserPrompt("sys", "go")
	req.Schema = optionSchema()
	if _, err := openAIAt(srv.URL).Generate(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Messages) != 2 || got.Messages[0].Role != "system" {
		t.Fatalf("unexpected messages: %+v", got.Messages)
	}
	if got.ResponseFormat == nil || got.ResponseFormat.Type != "json_schema" || got.ResponseFormat.JSONSchema.Name != "test-option-set" {
		t.Fatalf("expected json_schema response format, got %+v", got.ResponseFormat)
	}
}

func TestOpenAIProvider_SchemaMismatch(t *testing.T) {
	srv := serveJSON(t, http.StatusOK, chatCompletion(`{"label":"x"}`, "stop"))
	req := UserPrompt("", "go")
	req.Schema = optionSchema()

	_, err := openAIAt(srv.URL).Generate(context.Background(), req)
	if e := assertErrorAs[*ErrInvalidResponse](t, err); e.Content != `{"label":"x"}` {
		t.Fatalf("content = %q", e.Content)
	}
}

func TestNewOpenAIProvider(t *testing.T) {
	if _, err := NewOpenAIProvider(OpenAIConfig{Model: "gpt-4o"}); err == nil {
		t.Fatal("expected error for missing key")
	}
	p, err := NewOpenAIProvider(OpenAIConfig{APIKey: "k", Model: "gpt-4.1-mini", BaseURL: "https://llm.example/v1"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ModelID() != "gpt-4.1-mini" {
		t.Fatalf("model = %q", p.ModelID())
	}
}
