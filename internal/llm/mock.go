package llm

import (
	"context"
	"sync"
	"time"
)

// MockResponse is one scripted answer of a MockProvider.
type MockResponse struct {
	Text  string
	Usage Usage
	Err   error

	// Delay holds the answer back, as a slow model would. The wait ends
	// early with the context error when ctx is done.
	Delay time.Duration
}

// MockProvider replays scripted answers in order and records every
// request it sees. It is safe for concurrent use.
type MockProvider struct {
	mu        sync.Mutex
	responses []MockResponse
	Calls     []Request
}

// NewMockProvider creates a MockProvider that answers with responses.
func NewMockProvider(responses ...MockResponse) *MockProvider {
	return &MockProvider{responses: responses}
}

// Generate pops the next scripted answer. An exhausted script is reported
// as ErrProviderUnavailable and an answer with neither text nor error as
// ErrEmptyResponse.
func (m *MockProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	next, ok := m.next(req)
	if !ok {
		return nil, &ErrProviderUnavailable{}
	}

	if next.Delay > 0 {
		t := time.NewTimer(next.Delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-t.C:
		}
	}

	switch {
	case next.Err != nil:
		return nil, next.Err
	case next.Text == "":
		return nil, &ErrEmptyResponse{Provider: "mock"}
	}
	return &Response{
		Text:       next.Text,
		Usage:      next.Usage,
		Model:      "mock",
		StopReason: StopEnd,
	}, nil
}

func (m *MockProvider) next(req Request) (MockResponse, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, req)
	if len(m.responses) == 0 {
		return MockResponse{}, false
	}
	resp := m.responses[0]
	m.responses = m.responses[1:]
	return resp, true
}

func (m *MockProvider) ModelID() string {
	return "mock"
}

// AddResponse appends answers to the script.
func (m *MockProvider) AddResponse(resp ...MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, resp...)
}

// CallCount returns how many times Generate ran.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// Remaining returns how many scripted answers are left.
func (m *MockProvider) Remaining() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.responses)
}
