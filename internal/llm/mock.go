package llm

import (
	"context"
	"sync"
)

// MockProvider is a configurable in-memory Provider for tests.
type MockProvider struct {
	mu sync.Mutex

	// Response is returned by Complete when Err is nil.
	Response string
	// Err, when set, is returned by every Complete call.
	Err error

	calls []MockCall
}

// MockCall records one Complete invocation.
type MockCall struct {
	System string
	User   string
}

// NewMockProvider creates a mock provider with no canned response.
func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

func (m *MockProvider) Complete(ctx context.Context, system string, user string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, MockCall{System: system, User: user})
	if m.Err != nil {
		return "", m.Err
	}
	return m.Response, nil
}

func (m *MockProvider) ModelID() string {
	return "mock"
}

// Calls returns a copy of all recorded invocations.
func (m *MockProvider) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]MockCall, len(m.calls))
	copy(out, m.calls)
	return out
}
