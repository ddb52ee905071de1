package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ai-dope/schema-engine/pkg/apperrors"
	"github.com/ai-dope/schema-engine/pkg/models"
	"github.com/ai-dope/schema-engine/pkg/services"
)

// SendMessageRequest for POST /api/sessions/{sid}/messages
type SendMessageRequest struct {
	Message string `json:"message"`
}

// ChatMessageResponse for the chat history endpoint.
type ChatMessageResponse struct {
	ID         string            `json:"id"`
	SessionID  string            `json:"session_id"`
	Role       string            `json:"role"`
	Content    string            `json:"content"`
	ToolCalls  []models.ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string            `json:"tool_call_id,omitempty"`
	CreatedAt  string            `json:"created_at"`
}

// ChatHistoryResponse for GET /api/sessions/{sid}/history
type ChatHistoryResponse struct {
	Messages []ChatMessageResponse `json:"messages"`
	Total    int                   `json:"total"`
}

// SessionListResponse for GET /api/sessions
type SessionListResponse struct {
	Sessions []string `json:"sessions"`
	Total    int      `json:"total"`
}

// ChatHandler handles schema design chat HTTP requests with SSE support.
type ChatHandler struct {
	chatService *services.SchemaChatService
	logger      *zap.Logger
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(chatService *services.SchemaChatService, logger *zap.Logger) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
		logger:      logger,
	}
}

// RegisterRoutes registers the chat handler's routes on the given mux.
func (h *ChatHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/sessions", h.ListSessions)
	mux.HandleFunc("POST /api/sessions", h.Initialize)
	mux.HandleFunc("POST /api/sessions/{sid}/messages", h.SendMessage)
	mux.HandleFunc("GET /api/sessions/{sid}/history", h.GetHistory)
	mux.HandleFunc("DELETE /api/sessions/{sid}/history", h.ClearHistory)
}

// Initialize handles POST /api/sessions
func (h *ChatHandler) Initialize(w http.ResponseWriter, r *http.Request) {
	result, err := h.chatService.Initialize(r.Context(), uuid.Nil)
	if err != nil {
		h.logger.Error("Failed to initialize chat session", zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "init_failed", "Failed to initialize chat session"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	response := ApiResponse{Success: true, Data: result}
	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// ListSessions handles GET /api/sessions
func (h *ChatHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := h.chatService.ListSessions(r.Context())
	if err != nil {
		h.logger.Error("Failed to list sessions", zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "internal_error", "Failed to list sessions"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	data := SessionListResponse{
		Sessions: make([]string, len(ids)),
		Total:    len(ids),
	}
	for i, id := range ids {
		data.Sessions[i] = id.String()
	}

	response := ApiResponse{Success: true, Data: data}
	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// SendMessage handles POST /api/sessions/{sid}/messages
// This endpoint uses Server-Sent Events (SSE) to stream the response.
func (h *ChatHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := ParseSessionID(w, r, h.logger)
	if !ok {
		return
	}

	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	eventChan, err := h.chatService.SendMessage(r.Context(), sessionID, req.Message)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrSessionNotFound):
			err = ErrorResponse(w, http.StatusNotFound, "session_not_found", "Session not found")
		case errors.Is(err, apperrors.ErrEmptyMessage):
			err = ErrorResponse(w, http.StatusBadRequest, "missing_message", "Message is required")
		default:
			h.logger.Error("Chat send message error",
				zap.String("session_id", sessionID.String()),
				zap.Error(err))
			err = ErrorResponse(w, http.StatusInternalServerError, "internal_error", "Failed to send message")
		}
		if err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	flusher, ok := w.(http.Flusher)
	if !ok {
		h.logger.Error("SSE not supported")
		if err := ErrorResponse(w, http.StatusInternalServerError, "sse_unsupported", "SSE not supported"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	// Stream events to client
	for event := range eventChan {
		data, err := json.Marshal(event)
		if err != nil {
			h.logger.Error("Failed to marshal event", zap.Error(err))
			continue
		}

		fmt.Fprintf(w, "data: %s\n\n", data)
		flusher.Flush()

		// Stop on done or error
		if event.Type == models.ChatEventDone || event.Type == models.ChatEventError {
			break
		}
	}
}

// GetHistory handles GET /api/sessions/{sid}/history
func (h *ChatHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := ParseSessionID(w, r, h.logger)
	if !ok {
		return
	}

	messages, err := h.chatService.GetHistory(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, apperrors.ErrSessionNotFound) {
			if err := ErrorResponse(w, http.StatusNotFound, "session_not_found", "Session not found"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}
		h.logger.Error("Failed to get chat history",
			zap.String("session_id", sessionID.String()),
			zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "internal_error", "Failed to get chat history"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	data := ChatHistoryResponse{
		Messages: make([]ChatMessageResponse, len(messages)),
		Total:    len(messages),
	}
	for i, m := range messages {
		data.Messages[i] = ChatMessageResponse{
			ID:         m.ID.String(),
			SessionID:  m.SessionID.String(),
			Role:       string(m.Role),
			Content:    m.Content,
			ToolCalls:  m.ToolCalls,
			ToolCallID: m.ToolCallID,
			CreatedAt:  m.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		}
	}

	response := ApiResponse{Success: true, Data: data}
	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// ClearHistory handles DELETE /api/sessions/{sid}/history
func (h *ChatHandler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := ParseSessionID(w, r, h.logger)
	if !ok {
		return
	}

	if err := h.chatService.ClearHistory(r.Context(), sessionID); err != nil {
		if errors.Is(err, apperrors.ErrSessionNotFound) {
			if err := ErrorResponse(w, http.StatusNotFound, "session_not_found", "Session not found"); err != nil {
				h.logger.Error("Failed to write error response", zap.Error(err))
			}
			return
		}
		h.logger.Error("Failed to clear chat history",
			zap.String("session_id", sessionID.String()),
			zap.Error(err))
		if err := ErrorResponse(w, http.StatusInternalServerError, "internal_error", "Failed to clear chat history"); err != nil {
			h.logger.Error("Failed to write error response", zap.Error(err))
		}
		return
	}

	response := ApiResponse{Success: true, Data: map[string]string{"message": "Chat history cleared"}}
	if err := WriteJSON(w, http.StatusOK, response); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
