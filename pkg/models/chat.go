package models

import (
	"time"

	"github.com/google/uuid"
)

// ============================================================================
// Chat Roles
// ============================================================================

// ChatRole represents the role of a chat message sender.
type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
	ChatRoleSystem    ChatRole = "system"
	ChatRoleTool      ChatRole = "tool"
)

// ValidChatRoles contains all valid chat role values.
var ValidChatRoles = []ChatRole{
	ChatRoleUser,
	ChatRoleAssistant,
	ChatRoleSystem,
	ChatRoleTool,
}

// IsValidChatRole checks if the given role is valid.
func IsValidChatRole(r ChatRole) bool {
	for _, v := range ValidChatRoles {
		if v == r {
			return true
		}
	}
	return false
}

// ============================================================================
// Tool Calls
// ============================================================================

// ToolCall represents an LLM tool call request.
type ToolCall struct {
	ID       string           `json:"id"`
	Type     string           `json:"type"`
	Function ToolCallFunction `json:"function"`
}

// ToolCallFunction contains the function name and arguments for a tool call.
type ToolCallFunction struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"` // JSON string
}

// ============================================================================
// Chat Message
// ============================================================================

// ChatMessage represents a message in a schema design chat session.
type ChatMessage struct {
	ID         uuid.UUID  `json:"id"`
	SessionID  uuid.UUID  `json:"session_id"`
	Role       ChatRole   `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// IsFromUser returns true if the message is from a user.
func (m *ChatMessage) IsFromUser() bool {
	return m.Role == ChatRoleUser
}

// IsFromAssistant returns true if the message is from the assistant.
func (m *ChatMessage) IsFromAssistant() bool {
	return m.Role == ChatRoleAssistant
}

// IsToolResponse returns true if the message is a tool response.
func (m *ChatMessage) IsToolResponse() bool {
	return m.Role == ChatRoleTool
}

// HasToolCalls returns true if the message contains tool calls.
func (m *ChatMessage) HasToolCalls() bool {
	return len(m.ToolCalls) > 0
}

// ============================================================================
// Chat Events (for SSE streaming)
// ============================================================================

// ChatEventType represents the type of a streaming chat event.
type ChatEventType string

const (
	ChatEventText       ChatEventType = "text"
	ChatEventToolCall   ChatEventType = "tool_call"
	ChatEventToolResult ChatEventType = "tool_result"
	ChatEventSQLBlock   ChatEventType = "sql_block"
	ChatEventDone       ChatEventType = "done"
	ChatEventError      ChatEventType = "error"
)

// ChatEvent represents a streaming event from the chat service.
type ChatEvent struct {
	Type    ChatEventType `json:"type"`
	Content string        `json:"content,omitempty"`
	Data    any           `json:"data,omitempty"`
}

// NewTextEvent creates a text streaming event.
func NewTextEvent(content string) ChatEvent {
	return ChatEvent{Type: ChatEventText, Content: content}
}

// NewToolCallEvent creates a tool call event.
func NewToolCallEvent(toolCall ToolCall) ChatEvent {
	return ChatEvent{Type: ChatEventToolCall, Data: toolCall}
}

// NewToolResultEvent creates a tool result event.
func NewToolResultEvent(toolID string, result any) ChatEvent {
	return ChatEvent{
		Type:    ChatEventToolResult,
		Content: toolID,
		Data:    result,
	}
}

// NewSQLBlockEvent creates an event carrying a dependency-ordered SQL block.
// The client renders these as code blocks instead of prose.
func NewSQLBlockEvent(sql string) ChatEvent {
	return ChatEvent{Type: ChatEventSQLBlock, Content: sql}
}

// NewDoneEvent creates a completion event.
func NewDoneEvent() ChatEvent {
	return ChatEvent{Type: ChatEventDone}
}

// NewErrorEvent creates an error event.
func NewErrorEvent(err string) ChatEvent {
	return ChatEvent{Type: ChatEventError, Content: err}
}

// ============================================================================
// Chat Initialization Response
// ============================================================================

// ChatInitResponse contains the response for chat initialization.
type ChatInitResponse struct {
	SessionID          uuid.UUID `json:"session_id"`
	OpeningMessage     string    `json:"opening_message"`
	HasExistingHistory bool      `json:"has_existing_history"`
}
