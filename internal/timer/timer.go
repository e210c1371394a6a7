package timer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	apperrors "github.com/socialchef/gramz/internal/errors"
	"github.com/socialchef/gramz/internal/supabase"
)

const event = "timer"

// State is the cooking timer of one user.
type State struct {
	DurationSeconds int       `json:"duration_seconds"`
	StartedAt       time.Time `json:"started_at"`
	Visible         bool      `json:"visible"`
}

// Remaining is the time left at now, never negative.
func (s State) Remaining(now time.Time) time.Duration {
	left := s.StartedAt.Add(time.Duration(s.DurationSeconds)*time.Second).Sub(now)
	if left < 0 {
		return 0
	}
	return left
}

// Store keeps timer state until it expires.
type Store interface {
	Save(ctx context.Context, userID string, state State, ttl time.Duration) error
	Load(ctx context.Context, userID string) (*State, error)
}

// Broadcaster pushes timer changes to the user's clients.
type Broadcaster interface {
	Broadcast(ctx context.Context, channel, event string, payload any) error
}

type Service struct {
	store       Store
	broadcaster Broadcaster
	now         func() time.Time
}

// NewService returns a timer service. broadcaster may be nil.
func NewService(store Store, broadcaster Broadcaster) *Service {
	return &Service{store: store, broadcaster: broadcaster, now: time.Now}
}

// Start replaces the user's timer with a visible one of seconds.
func (s *Service) Start(ctx context.Context, userID string, seconds int) (State, error) {
	if seconds < 0 {
		return State{}, apperrors.NewValidationError("timer duration must not be negative", "INVALID_TIMER_DURATION", "")
	}

	state := State{
		DurationSeconds: seconds,
		StartedAt:       s.now().UTC(),
		Visible:         true,
	}
	if err := s.store.Save(ctx, userID, state, ttlFor(state, s.now())); err != nil {
		return State{}, fmt.Errorf("failed to save timer: %w", err)
	}

	slog.InfoContext(ctx, "Timer started", "user_id", userID, "duration_seconds", seconds)
	s.broadcast(ctx, userID, state)
	return state, nil
}

// Get returns the running timer, or nil when there is none.
func (s *Service) Get(ctx context.Context, userID string) (*State, error) {
	state, err := s.store.Load(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load timer: %w", err)
	}
	return state, nil
}

// Hide keeps the timer running but hides it from the UI.
func (s *Service) Hide(ctx context.Context, userID string) error {
	state, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}
	if state == nil {
		return nil
	}

	state.Visible = false
	if err := s.store.Save(ctx, userID, *state, ttlFor(*state, s.now())); err != nil {
		return fmt.Errorf("failed to save timer: %w", err)
	}
	s.broadcast(ctx, userID, *state)
	return nil
}

func (s *Service) broadcast(ctx context.Context, userID string, state State) {
	if s.broadcaster == nil {
		return
	}
	if err := s.broadcaster.Broadcast(ctx, supabase.UserChannel(userID, event), event, state); err != nil {
		slog.WarnContext(ctx, "Timer broadcast failed", "user_id", userID, "error", err)
	}
}

// ttlFor keeps state until the timer runs out. A zero-length timer still
// lives for one second so the client can observe it.
func ttlFor(state State, now time.Time) time.Duration {
	ttl := state.Remaining(now)
	if ttl < time.Second {
		ttl = time.Second
	}
	return ttl
}
