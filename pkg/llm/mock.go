package llm

import (
	"context"
)

// MockStreamingClient is a configurable mock for testing chat functionality.
// Set the function fields to control behavior in tests.
type MockStreamingClient struct {
	// StreamWithToolsFunc is called when StreamWithTools is invoked.
	// If nil, a single done event is emitted.
	StreamWithToolsFunc func(ctx context.Context, req *StreamingRequest, executor ToolExecutor, eventChan chan<- StreamEvent) error

	// GenerateWithToolsFunc is called when GenerateWithTools is invoked.
	// If nil, returns empty string and nil error.
	GenerateWithToolsFunc func(ctx context.Context, req *StreamingRequest, executor ToolExecutor) (string, error)

	// Model is returned by GetModel. Defaults to "mock-model".
	Model string

	// Call tracking for verification
	StreamWithToolsCalls   int
	GenerateWithToolsCalls int
}

// NewMockStreamingClient creates a new mock with sensible defaults.
func NewMockStreamingClient() *MockStreamingClient {
	return &MockStreamingClient{Model: "mock-model"}
}

// Ensure MockStreamingClient implements StreamingCompleter.
var _ StreamingCompleter = (*MockStreamingClient)(nil)

// StreamWithTools implements StreamingCompleter.
func (m *MockStreamingClient) StreamWithTools(ctx context.Context, req *StreamingRequest, executor ToolExecutor, eventChan chan<- StreamEvent) error {
	m.StreamWithToolsCalls++
	if m.StreamWithToolsFunc != nil {
		return m.StreamWithToolsFunc(ctx, req, executor, eventChan)
	}
	eventChan <- StreamEvent{Type: StreamEventDone}
	return nil
}

// GenerateWithTools implements StreamingCompleter.
func (m *MockStreamingClient) GenerateWithTools(ctx context.Context, req *StreamingRequest, executor ToolExecutor) (string, error) {
	m.GenerateWithToolsCalls++
	if m.GenerateWithToolsFunc != nil {
		return m.GenerateWithToolsFunc(ctx, req, executor)
	}
	return "", nil
}

// GetModel implements StreamingCompleter.
func (m *MockStreamingClient) GetModel() string {
	if m.Model == "" {
		return "mock-model"
	}
	return m.Model
}
