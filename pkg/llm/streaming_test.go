package llm

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestStreamingClient(t *testing.T) *StreamingClient {
	t.Helper()
	client, err := NewStreamingClient(&Config{
		Endpoint: "http://localhost:8000/v1",
		Model:    "test-model",
	}, 10, zap.NewNop())
	require.NoError(t, err)
	return client
}

func TestNewStreamingClient_Validation(t *testing.T) {
	_, err := NewStreamingClient(&Config{Model: "m"}, 10, zap.NewNop())
	assert.Error(t, err)

	_, err = NewStreamingClient(&Config{Endpoint: "http://x"}, 10, zap.NewNop())
	assert.Error(t, err)
}

func TestParseTextToolCalls(t *testing.T) {
	client := newTestStreamingClient(t)

	content := `Let me check that schema.
<tool_call>
{"name": "check_and_optimize_schema", "arguments": {"sql_commands": "CREATE TABLE a (id INT);", "workload_type": "OLTP"}}
</tool_call>`

	toolCalls := client.parseTextToolCalls(content)
	require.Len(t, toolCalls, 1)
	assert.Equal(t, "check_and_optimize_schema", toolCalls[0].Function.Name)
	assert.Equal(t, "function", toolCalls[0].Type)

	var args map[string]any
	require.NoError(t, json.Unmarshal([]byte(toolCalls[0].Function.Arguments), &args))
	assert.Equal(t, "OLTP", args["workload_type"])
}

func TestParseTextToolCalls_MultipleAndMalformed(t *testing.T) {
	client := newTestStreamingClient(t)

	content := `<tool_call>{"name": "a", "arguments": {}}</tool_call>
<tool_call>{not json}</tool_call>
<tool_call>{"name": "b", "arguments": {"x": 1}}</tool_call>`

	toolCalls := client.parseTextToolCalls(content)
	require.Len(t, toolCalls, 2)
	assert.Equal(t, "a", toolCalls[0].Function.Name)
	assert.Equal(t, "b", toolCalls[1].Function.Name)
}

func TestParseTextToolCalls_NoMarkup(t *testing.T) {
	client := newTestStreamingClient(t)
	assert.Empty(t, client.parseTextToolCalls("just a plain answer"))
}

func TestCleanModelOutput(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "strips think blocks",
			input:    "<think>pondering</think>Here is the schema.",
			expected: "Here is the schema.",
		},
		{
			name:     "strips tool call markup",
			input:    "Before.<tool_call>{\"name\":\"x\"}</tool_call>After.",
			expected: "Before.After.",
		},
		{
			name:     "strips sign-off lines",
			input:    "The schema looks good.\nBest regards,\nYour assistant",
			expected: "The schema looks good.\n\nYour assistant",
		},
		{
			name:     "collapses newline runs",
			input:    "a\n\n\n\n\nb",
			expected: "a\n\nb",
		},
		{
			name:     "plain content untouched",
			input:    "CREATE TABLE a (id INT);",
			expected: "CREATE TABLE a (id INT);",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanModelOutput(tt.input))
		})
	}
}
