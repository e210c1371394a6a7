package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/socialchef/gramz/internal/agent"
	"github.com/socialchef/gramz/internal/preferences"
	"github.com/socialchef/gramz/internal/prompts"
)

// ProfileSource provides what the system prompt is rendered from.
type ProfileSource interface {
	Load(ctx context.Context, userID string) (preferences.Preferences, error)
	LoadProfile(ctx context.Context, userID string) (*preferences.Profile, error)
}

// Registry hands out one Conversation per user. The system prompt is
// rendered from the user's profile when the conversation is first built.
type Registry struct {
	repo     Repository
	profiles ProfileSource

	mu    sync.Mutex
	convs map[string]*agent.Conversation

	// locks serializes load, save and reset per user.
	locks sync.Map
}

// NewRegistry returns a registry backed by repo. A nil repo keeps history
// in memory only; profiles may be nil.
func NewRegistry(repo Repository, profiles ProfileSource) *Registry {
	if repo == nil {
		repo = NewMemoryRepository()
	}
	return &Registry{
		repo:     repo,
		profiles: profiles,
		convs:    make(map[string]*agent.Conversation),
	}
}

func (r *Registry) lock(userID string) func() {
	v, _ := r.locks.LoadOrStore(userID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func (r *Registry) current(userID string) (*agent.Conversation, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	conv, ok := r.convs[userID]
	return conv, ok
}

// Get returns the user's conversation, restoring stored history on first use.
func (r *Registry) Get(ctx context.Context, userID string) (*agent.Conversation, error) {
	if conv, ok := r.current(userID); ok {
		return conv, nil
	}

	defer r.lock(userID)()
	if conv, ok := r.current(userID); ok {
		return conv, nil
	}

	conv := agent.NewConversation(r.systemPrompt(ctx, userID))

	history, err := r.repo.Load(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if history != nil {
		if err := conv.Restore(history); err != nil {
			slog.WarnContext(ctx, "Discarding stored session", "user_id", userID, "error", err)
		}
	}

	r.mu.Lock()
	r.convs[userID] = conv
	r.mu.Unlock()
	return conv, nil
}

// Save persists the current history of conv for userID. A conversation that
// has been reset in the meantime is no longer the user's and is not written.
func (r *Registry) Save(ctx context.Context, userID string, conv *agent.Conversation) error {
	defer r.lock(userID)()
	if current, ok := r.current(userID); !ok || current != conv {
		slog.DebugContext(ctx, "Skipping save of replaced conversation", "user_id", userID)
		return nil
	}

	if err := r.repo.Save(ctx, userID, conv.Messages()); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Reset forgets the user's conversation in memory and in storage. The next
// Get renders a fresh system prompt.
func (r *Registry) Reset(ctx context.Context, userID string) error {
	defer r.lock(userID)()

	r.mu.Lock()
	if conv, ok := r.convs[userID]; ok {
		if err := conv.Reset(); err != nil {
			r.mu.Unlock()
			return err
		}
		delete(r.convs, userID)
	}
	r.mu.Unlock()

	if err := r.repo.Delete(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (r *Registry) systemPrompt(ctx context.Context, userID string) string {
	if r.profiles == nil {
		return prompts.System(nil, preferences.Preferences{})
	}

	prefs, err := r.profiles.Load(ctx, userID)
	if err != nil {
		slog.WarnContext(ctx, "Rendering system prompt without preferences", "user_id", userID, "error", err)
		prefs = preferences.Preferences{}
	}
	profile, err := r.profiles.LoadProfile(ctx, userID)
	if err != nil {
		slog.WarnContext(ctx, "Rendering system prompt without profile", "user_id", userID, "error", err)
		profile = nil
	}
	return prompts.System(profile, prefs)
}
