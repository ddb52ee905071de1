// Package repositories provides storage for chat sessions and messages.
package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ai-dope/schema-engine/pkg/apperrors"
	"github.com/ai-dope/schema-engine/pkg/models"
)

// ChatRepository defines storage operations for chat sessions.
type ChatRepository interface {
	// CreateSession creates a new empty session and returns its ID.
	CreateSession(ctx context.Context) (uuid.UUID, error)

	// SessionExists reports whether the session is known.
	SessionExists(ctx context.Context, sessionID uuid.UUID) bool

	// AppendMessage adds a message to its session's history.
	AppendMessage(ctx context.Context, msg models.ChatMessage) error

	// GetMessages returns the most recent messages of a session in
	// chronological order, capped at limit (0 means no cap).
	GetMessages(ctx context.Context, sessionID uuid.UUID, limit int) ([]models.ChatMessage, error)

	// ClearSession removes all messages from a session but keeps it alive.
	ClearSession(ctx context.Context, sessionID uuid.UUID) error

	// ListSessions returns the IDs of all sessions, oldest first.
	ListSessions(ctx context.Context) ([]uuid.UUID, error)
}

type session struct {
	createdAt time.Time
	messages  []models.ChatMessage
}

// MemoryChatRepository is an in-memory ChatRepository. Sessions live for the
// lifetime of the process; a restart starts everyone fresh, which matches
// the conversational design workflow this serves.
type MemoryChatRepository struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*session
}

// NewMemoryChatRepository creates an empty in-memory chat repository.
func NewMemoryChatRepository() *MemoryChatRepository {
	return &MemoryChatRepository{
		sessions: make(map[uuid.UUID]*session),
	}
}

// Ensure MemoryChatRepository implements ChatRepository.
var _ ChatRepository = (*MemoryChatRepository)(nil)

// CreateSession implements ChatRepository.
func (r *MemoryChatRepository) CreateSession(_ context.Context) (uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := uuid.New()
	r.sessions[id] = &session{createdAt: time.Now()}
	return id, nil
}

// SessionExists implements ChatRepository.
func (r *MemoryChatRepository) SessionExists(_ context.Context, sessionID uuid.UUID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.sessions[sessionID]
	return ok
}

// AppendMessage implements ChatRepository.
func (r *MemoryChatRepository) AppendMessage(_ context.Context, msg models.ChatMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[msg.SessionID]
	if !ok {
		return apperrors.ErrSessionNotFound
	}

	s.messages = append(s.messages, msg)
	return nil
}

// GetMessages implements ChatRepository.
func (r *MemoryChatRepository) GetMessages(_ context.Context, sessionID uuid.UUID, limit int) ([]models.ChatMessage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[sessionID]
	if !ok {
		return nil, apperrors.ErrSessionNotFound
	}

	messages := s.messages
	if limit > 0 && len(messages) > limit {
		messages = messages[len(messages)-limit:]
	}

	// Copy so callers cannot mutate stored history.
	out := make([]models.ChatMessage, len(messages))
	copy(out, messages)
	return out, nil
}

// ClearSession implements ChatRepository.
func (r *MemoryChatRepository) ClearSession(_ context.Context, sessionID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[sessionID]
	if !ok {
		return apperrors.ErrSessionNotFound
	}

	s.messages = nil
	return nil
}

// ListSessions implements ChatRepository.
func (r *MemoryChatRepository) ListSessions(_ context.Context) ([]uuid.UUID, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]uuid.UUID, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return r.sessions[ids[i]].createdAt.Before(r.sessions[ids[j]].createdAt)
	})
	return ids, nil
}
