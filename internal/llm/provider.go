package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Provider sends one prompt to a model and returns its text.
//
// Implementations map vendor failures onto the error types in errors.go
// and never retry on their own; callers wrap calls in Do.
type Provider interface {
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID is the configured model, e.g. "gemini-2.5-flash".
	ModelID() string
}

// Request is a single-turn prompt.
type Request struct {
	System   string
	Messages []Message

	// Schema, when set, asks the provider for native structured output and
	// validates the answer against it before returning.
	Schema *Schema

	MaxTokens   int
	Temperature float64
}

// UserPrompt builds a request with one user message.
func UserPrompt(system, user string) Request {
	return Request{
		System:   system,
		Messages: []Message{{Role: RoleUser, Content: user}},
	}
}

// String renders the request as a readable transcript for the event log.
func (r Request) String() string {
	var b strings.Builder
	if r.System != "" {
		fmt.Fprintf(&b, "[system]\n%s\n\n", r.System)
	}
	for _, m := range r.Messages {
		fmt.Fprintf(&b, "[%s]\n%s\n\n", m.Role, m.Content)
	}
	if r.Schema != nil {
		if def, err := json.Marshal(r.Schema.Definition); err == nil {
			fmt.Fprintf(&b, "[schema: %s]\n%s\n", r.Schema.Name, def)
		}
	}
	return b.String()
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role
	Content string
}

// Schema is a named JSON Schema. Definition uses plain Go maps and slices
// so it can be handed to every vendor SDK as well as the validator.
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any
}

// StopReason is a vendor-neutral finish reason.
type StopReason string

const (
	StopEnd       StopReason = "end"
	StopMaxTokens StopReason = "max_tokens"
)

// Response is a successful model answer. Text is never empty and is never
// truncated: those cases surface as ErrEmptyResponse and
// ErrMaxTokensExceeded instead.
type Response struct {
	Text       string
	Usage      Usage
	Model      string
	StopReason StopReason
}

type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
