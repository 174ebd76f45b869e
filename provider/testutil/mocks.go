package testutil

import (
	"context"

	"linguatui/assistant"
)

// MockClient implements assistant.Client for testing
type MockClient struct {
	// Configurable behavior
	PromptFunc func(ctx context.Context, input string, cb assistant.StreamCallback) error

	// Fixed identity reported by the mock
	ID assistant.Identity

	// Deltas streamed by the default PromptFunc before Err is returned
	Deltas []string
	Err    error

	// Recorded inputs, in call order
	Inputs []string
}

// NewMockClient creates a mock client that streams the given deltas.
func NewMockClient(id assistant.Identity, deltas ...string) *MockClient {
	m := &MockClient{ID: id, Deltas: deltas}
	m.PromptFunc = m.defaultPrompt
	return m
}

func (m *MockClient) defaultPrompt(ctx context.Context, input string, cb assistant.StreamCallback) error {
	for _, d := range m.Deltas {
		if err := cb(assistant.Delta{Text: d, Model: m.ID}); err != nil {
			return err
		}
	}
	return m.Err
}

func (m *MockClient) Identity() assistant.Identity {
	return m.ID
}

func (m *MockClient) Prompt(ctx context.Context, input string, cb assistant.StreamCallback) error {
	m.Inputs = append(m.Inputs, input)
	return m.PromptFunc(ctx, input, cb)
}
