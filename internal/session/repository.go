// Package session keeps one conversation per user and persists its history.
package session

import (
	"context"
	"slices"
	"sync"

	"github.com/socialchef/gramz/internal/llm"
)

// Repository persists conversation history by user id.
type Repository interface {
	// Save replaces any stored history for userID.
	Save(ctx context.Context, userID string, history []llm.Message) error
	// Load returns nil, nil when nothing is stored.
	Load(ctx context.Context, userID string) ([]llm.Message, error)
	// Delete is a no-op when nothing is stored.
	Delete(ctx context.Context, userID string) error
}

// MemoryRepository keeps history in process memory.
type MemoryRepository struct {
	mu       sync.RWMutex
	sessions map[string][]llm.Message
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{sessions: make(map[string][]llm.Message)}
}

func (r *MemoryRepository) Save(_ context.Context, userID string, history []llm.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[userID] = slices.Clone(history)
	return nil
}

func (r *MemoryRepository) Load(_ context.Context, userID string) ([]llm.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	history, ok := r.sessions[userID]
	if !ok {
		return nil, nil
	}
	return slices.Clone(history), nil
}

func (r *MemoryRepository) Delete(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, userID)
	return nil
}
