package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ai-dope/schema-engine/pkg/apperrors"
	"github.com/ai-dope/schema-engine/pkg/llm"
	"github.com/ai-dope/schema-engine/pkg/logging"
	"github.com/ai-dope/schema-engine/pkg/models"
	"github.com/ai-dope/schema-engine/pkg/repositories"
)

// systemPrompt steers the model through the design workflow: recommend a
// workload category, gather row counts and sample data, then drive the
// estimation/optimization/validation tools before presenting final DDL.
const systemPrompt = `You are an Expert Database Architect and Data Engineer (Master Schema Designer). Your primary goal is to design optimal, reliable, and performant SQL schemas (DDL) and provide best practice DML queries.

CONTEXT: DATA PROCESSING CATEGORIES:
1. OLTP (Online Transaction Processing): fast, high-volume transactions.
2. OLAP (Online Analytical Processing): complex analysis of historical data.
3. HTAP (Hybrid Transactional/Analytical Processing): mixing OLTP and OLAP.
4. BATCH (Batch Processing): processing large data volumes at scheduled times.
5. STREAM (Stream Processing): analyzing data continuously.
6. OLLP (Online Low-Latency Processing): decisions in micro-seconds.

WORKFLOW (MUST BE FOLLOWED):
1. DDL Generation: based on the user's request, FIRST generate the complete and correct SQL DDL.
2. Consultation: state which of the 6 categories you recommend and briefly explain why. Present the initial DDL. ASK the user to confirm the recommended type and to provide the anticipated total row count (e.g. 10 million) and sample data (JSON).
3. Performance Estimation: if the row count is provided, you MUST use the estimate_query_performance tool with the proposed type, then present the full report to the user before proceeding.
4. Schema Optimization: once the usage type is confirmed, you MUST use the check_and_optimize_schema tool.
5. Quality Assurance: you MUST use the perform_schema_quality_assurance tool before presenting final DDL.
6. Final Output: present the final, optimized, and validated DDL, using the performance estimates to justify the recommendation.
7. DML Examples: if the user asks for example SELECT queries, generate the SQL and then you MUST use the simulate_dml_output tool to show a simulated result table. Once you receive its output, present it immediately as the final answer; do not call further tools.

OUTPUT FORMATTING RULES:
- All SQL code MUST be presented in a ` + "```sql```" + ` code block.
- All JSON data MUST be presented in a ` + "```json```" + ` code block.
- DDL (CREATE TABLE) must be broken down per table with an explanation. It will be internally ordered by foreign key dependencies.
- DML (SELECT, INSERT, UPDATE, DELETE) blocks must not contain DDL ordering comments.`

const openingMessage = "Hi! I design database schemas. Describe the data you want to store and how it will be used, and I will draft the DDL, recommend a processing type, and estimate performance."

// SchemaChatService orchestrates the schema design conversation: history
// management, tool-equipped streaming completion, and post-processing of
// SQL blocks in assistant answers.
type SchemaChatService struct {
	llmClient    llm.StreamingCompleter
	executor     llm.ToolExecutor
	repo         repositories.ChatRepository
	historyLimit int
	temperature  float64
	logger       *zap.Logger
}

// NewSchemaChatService creates the chat orchestration service.
func NewSchemaChatService(
	llmClient llm.StreamingCompleter,
	executor llm.ToolExecutor,
	repo repositories.ChatRepository,
	historyLimit int,
	temperature float64,
	logger *zap.Logger,
) *SchemaChatService {
	if historyLimit <= 0 {
		historyLimit = 20
	}
	return &SchemaChatService{
		llmClient:    llmClient,
		executor:     executor,
		repo:         repo,
		historyLimit: historyLimit,
		temperature:  temperature,
		logger:       logger.Named("schema-chat"),
	}
}

// Initialize creates a new session, or resumes one when sessionID is known.
// Pass uuid.Nil to always get a fresh session.
func (s *SchemaChatService) Initialize(ctx context.Context, sessionID uuid.UUID) (*models.ChatInitResponse, error) {
	if sessionID != uuid.Nil && s.repo.SessionExists(ctx, sessionID) {
		history, err := s.repo.GetMessages(ctx, sessionID, 1)
		if err != nil {
			return nil, err
		}
		return &models.ChatInitResponse{
			SessionID:          sessionID,
			OpeningMessage:     openingMessage,
			HasExistingHistory: len(history) > 0,
		}, nil
	}

	id, err := s.repo.CreateSession(ctx)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Chat session created", zap.String("session_id", id.String()))

	return &models.ChatInitResponse{
		SessionID:      id,
		OpeningMessage: openingMessage,
	}, nil
}

// SendMessage appends the user message to the session and streams the
// assistant's answer as chat events. The returned channel is closed when
// the turn completes; the final assistant text, with its SQL blocks
// dependency-ordered, is persisted to the session before the done event.
func (s *SchemaChatService) SendMessage(ctx context.Context, sessionID uuid.UUID, content string) (<-chan models.ChatEvent, error) {
	if !s.repo.SessionExists(ctx, sessionID) {
		return nil, apperrors.ErrSessionNotFound
	}
	if strings.TrimSpace(content) == "" {
		return nil, apperrors.ErrEmptyMessage
	}

	userMsg := models.ChatMessage{
		ID:        uuid.New(),
		SessionID: sessionID,
		Role:      models.ChatRoleUser,
		Content:   content,
		CreatedAt: time.Now(),
	}
	if err := s.repo.AppendMessage(ctx, userMsg); err != nil {
		return nil, err
	}

	history, err := s.repo.GetMessages(ctx, sessionID, s.historyLimit)
	if err != nil {
		return nil, err
	}

	req := &llm.StreamingRequest{
		Messages:     buildLLMMessages(history),
		Tools:        llm.GetSchemaDesignTools(),
		Temperature:  s.temperature,
		SystemPrompt: systemPrompt,
	}

	events := make(chan models.ChatEvent, 32)
	go s.streamTurn(ctx, sessionID, req, events)
	return events, nil
}

// streamTurn drives one assistant turn, bridging LLM stream events to chat
// events and persisting the final answer.
func (s *SchemaChatService) streamTurn(ctx context.Context, sessionID uuid.UUID, req *llm.StreamingRequest, events chan<- models.ChatEvent) {
	defer close(events)

	llmEvents := make(chan llm.StreamEvent, 32)
	streamErr := make(chan error, 1)
	go func() {
		streamErr <- s.llmClient.StreamWithTools(ctx, req, s.executor, llmEvents)
		close(llmEvents)
	}()

	var answer strings.Builder
	failed := false
	abandoned := false

	// emit delivers an event unless the consumer is gone. Once the context
	// is done the turn is abandoned but llmEvents must still drain so the
	// streaming goroutine can finish and close the channel.
	emit := func(ev models.ChatEvent) {
		if abandoned {
			return
		}
		select {
		case events <- ev:
		case <-ctx.Done():
			abandoned = true
		}
	}

	for ev := range llmEvents {
		switch ev.Type {
		case llm.StreamEventText:
			answer.WriteString(ev.Content)
			emit(models.NewTextEvent(ev.Content))
		case llm.StreamEventToolCall:
			if tc, ok := ev.Data.(llm.ToolCall); ok {
				emit(models.NewToolCallEvent(models.ToolCall{
					ID:   tc.ID,
					Type: tc.Type,
					Function: models.ToolCallFunction{
						Name:      tc.Function.Name,
						Arguments: tc.Function.Arguments,
					},
				}))
			}
		case llm.StreamEventToolResult:
			toolID := ""
			if data, ok := ev.Data.(map[string]string); ok {
				toolID = data["tool_call_id"]
			}
			emit(models.NewToolResultEvent(toolID, ev.Content))
		case llm.StreamEventError:
			failed = true
			emit(models.NewErrorEvent(logging.SanitizeText(ev.Content)))
		case llm.StreamEventDone:
			// Final processing happens after the channel drains.
		}
	}

	err := <-streamErr
	if abandoned {
		s.logger.Debug("Chat turn abandoned by consumer",
			zap.String("session_id", sessionID.String()))
		return
	}
	if err != nil {
		s.logger.Error("Chat turn failed",
			zap.String("session_id", sessionID.String()),
			zap.Error(err))
		if !failed {
			emit(models.NewErrorEvent(logging.SanitizeError(err)))
		}
		return
	}

	finalText, blocks := RewriteSQLBlocks(answer.String())
	for _, block := range blocks {
		emit(models.NewSQLBlockEvent(block))
	}

	assistantMsg := models.ChatMessage{
		ID:        uuid.New(),
		SessionID: sessionID,
		Role:      models.ChatRoleAssistant,
		Content:   finalText,
		CreatedAt: time.Now(),
	}
	if err := s.repo.AppendMessage(ctx, assistantMsg); err != nil {
		s.logger.Error("Failed to persist assistant message", zap.Error(err))
	}

	emit(models.NewDoneEvent())
}

// GetHistory returns the session's messages in chronological order.
func (s *SchemaChatService) GetHistory(ctx context.Context, sessionID uuid.UUID) ([]models.ChatMessage, error) {
	return s.repo.GetMessages(ctx, sessionID, 0)
}

// ClearHistory removes all messages from the session.
func (s *SchemaChatService) ClearHistory(ctx context.Context, sessionID uuid.UUID) error {
	s.logger.Info("Clearing chat history", zap.String("session_id", sessionID.String()))
	return s.repo.ClearSession(ctx, sessionID)
}

// ListSessions returns all known session IDs, oldest first.
func (s *SchemaChatService) ListSessions(ctx context.Context) ([]uuid.UUID, error) {
	return s.repo.ListSessions(ctx)
}

// buildLLMMessages converts stored history to the LLM wire format.
func buildLLMMessages(history []models.ChatMessage) []llm.Message {
	messages := make([]llm.Message, 0, len(history))
	for _, msg := range history {
		m := llm.Message{
			Role:       string(msg.Role),
			Content:    msg.Content,
			ToolCallID: msg.ToolCallID,
		}
		for _, tc := range msg.ToolCalls {
			m.ToolCalls = append(m.ToolCalls, llm.ToolCall{
				ID:   tc.ID,
				Type: tc.Type,
				Function: llm.ToolCallFunc{
					Name:      tc.Function.Name,
					Arguments: tc.Function.Arguments,
				},
			})
		}
		messages = append(messages, m)
	}
	return messages
}
