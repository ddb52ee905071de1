package llm

import (
	"context"
)

// StreamingCompleter defines the chat completion operations the engine
// depends on. Use this interface for dependency injection to enable
// mocking in tests.
type StreamingCompleter interface {
	// StreamWithTools performs streaming chat completion with tool support,
	// emitting events on eventChan as they occur.
	StreamWithTools(ctx context.Context, req *StreamingRequest, executor ToolExecutor, eventChan chan<- StreamEvent) error

	// GenerateWithTools performs a non-streaming chat completion with tool
	// support and returns the final assistant text.
	GenerateWithTools(ctx context.Context, req *StreamingRequest, executor ToolExecutor) (string, error)

	// GetModel returns the configured model name.
	GetModel() string
}

// Ensure StreamingClient implements StreamingCompleter at compile time.
var _ StreamingCompleter = (*StreamingClient)(nil)
