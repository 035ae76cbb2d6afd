package llm

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// MockResponse is one scripted reply of a MockProvider.
type MockResponse struct {
	Content json.RawMessage
	Usage   Usage
	Err     error

	// Delay holds the reply back; a cancelled context wins over it.
	Delay time.Duration
}

// MockProvider replays scripted replies in order and records every request.
// Once the script runs out it answers with Fallback, or with
// ErrProviderUnavailable when no fallback is set.
type MockProvider struct {
	mu       sync.Mutex
	script   []MockResponse
	calls    []Request
	Fallback *MockResponse
}

func NewMockProvider(script ...MockResponse) *MockProvider {
	return &MockProvider{script: script}
}

func (m *MockProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	reply, ok := m.next(req)
	if !ok {
		return nil, &ErrProviderUnavailable{}
	}

	if reply.Delay > 0 {
		t := time.NewTimer(reply.Delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-t.C:
		}
	}
	if reply.Err != nil {
		return nil, reply.Err
	}
	if err := validateResponse(req.Schema, reply.Content); err != nil {
		return nil, err
	}
	return &Response{Content: reply.Content, Usage: reply.Usage, Model: "mock", StopReason: "end"}, nil
}

func (m *MockProvider) next(req Request) (MockResponse, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, req)
	if len(m.script) > 0 {
		r := m.script[0]
		m.script = m.script[1:]
		return r, true
	}
	if m.Fallback != nil {
		return *m.Fallback, true
	}
	return MockResponse{}, false
}

func (m *MockProvider) ModelID() string { return "mock" }

// Queue appends replies to the script.
func (m *MockProvider) Queue(replies ...MockResponse) {
	m.mu.Lock()
	m.script = append(m.script, replies...)
	m.mu.Unlock()
}

// Calls returns a copy of the requests seen so far.
func (m *MockProvider) Calls() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Request(nil), m.calls...)
}

func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}
