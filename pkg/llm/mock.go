package llm

import (
	"context"
	"sync"
)

// MockClient is a test double that returns canned responses and records the
// requests it receives.
type MockClient struct {
	mu        sync.Mutex
	Response  CompletionResponse
	Err       error
	Requests  []CompletionRequest
	CallCount int
}

// NewMockClient creates a mock client returning the given content.
func NewMockClient(content string) *MockClient {
	return &MockClient{Response: CompletionResponse{Content: content, StopReason: "end_turn"}}
}

// Complete records the request and returns the canned response.
func (m *MockClient) Complete(_ context.Context, in CompletionRequest) (CompletionResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CallCount++
	m.Requests = append(m.Requests, in)
	if m.Err != nil {
		return CompletionResponse{}, m.Err
	}
	return m.Response, nil
}

// GetModelName returns a fixed mock model name.
func (m *MockClient) GetModelName() string {
	return "mock-model"
}

// Calls returns how many times Complete was invoked.
func (m *MockClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.CallCount
}
