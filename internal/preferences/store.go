package preferences

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	apperrors "github.com/socialchef/gramz/internal/errors"
	"github.com/socialchef/gramz/internal/supabase"
)

const (
	preferencesTable = "user_preferences_v2"
	profilesTable    = "user_profiles"
	summariesTable   = "user_summaries"
)

// Backend is the PostgREST surface the store needs. *supabase.Client
// satisfies it.
type Backend interface {
	Select(ctx context.Context, table string, query url.Values, out any) error
	Insert(ctx context.Context, table string, row any) error
	Upsert(ctx context.Context, table, onConflict string, row any) error
	Delete(ctx context.Context, table string, query url.Values) error
}

type preferencesRow struct {
	UserID string `json:"user_id"`
	Preferences
	UpdatedAt time.Time `json:"updated_at"`
}

type profileRow struct {
	UserID string `json:"user_id"`
	Profile
}

type summaryRow struct {
	UserID    string    `json:"user_id"`
	Summary   string    `json:"summary"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store keeps user preferences, onboarding profiles and summaries in Supabase.
type Store struct {
	backend Backend
	now     func() time.Time

	// merges are read-modify-write; serialize them per user.
	locks sync.Map
}

func NewStore(backend Backend) *Store {
	return &Store{backend: backend, now: time.Now}
}

func (s *Store) lock(userID string) func() {
	v, _ := s.locks.LoadOrStore(userID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// Load returns the stored preferences, or empty preferences when the user
// has none.
func (s *Store) Load(ctx context.Context, userID string) (Preferences, error) {
	var rows []preferencesRow
	if err := s.backend.Select(ctx, preferencesTable, supabase.Eq("user_id", userID), &rows); err != nil {
		return Preferences{}, apperrors.NewPersistenceError("failed to load preferences", "PREFERENCES_LOAD_FAILED", err)
	}
	if len(rows) == 0 {
		return Preferences{}.normalized(), nil
	}
	return rows[0].Preferences.normalized(), nil
}

// Merge applies u on top of the stored preferences and writes the result back.
func (s *Store) Merge(ctx context.Context, userID string, u Update) (Preferences, error) {
	defer s.lock(userID)()

	current, err := s.Load(ctx, userID)
	if err != nil {
		return Preferences{}, err
	}
	merged := current.Merge(u)

	row := preferencesRow{UserID: userID, Preferences: merged, UpdatedAt: s.now().UTC()}
	if err := s.backend.Upsert(ctx, preferencesTable, "user_id", row); err != nil {
		return Preferences{}, apperrors.NewPersistenceError("failed to store preferences", "PREFERENCES_STORE_FAILED", err)
	}

	slog.DebugContext(ctx, "Preferences merged", "user_id", userID)
	return merged, nil
}

func (s *Store) Clear(ctx context.Context, userID string) error {
	defer s.lock(userID)()

	if err := s.backend.Delete(ctx, preferencesTable, supabase.Eq("user_id", userID)); err != nil {
		return apperrors.NewPersistenceError("failed to clear preferences", "PREFERENCES_CLEAR_FAILED", err)
	}
	return nil
}

// LoadProfile returns the latest onboarding profile, or nil when the user has
// not onboarded.
func (s *Store) LoadProfile(ctx context.Context, userID string) (*Profile, error) {
	query := supabase.Eq("user_id", userID)
	query.Set("order", "created_at.desc")
	query.Set("limit", "1")

	var rows []profileRow
	if err := s.backend.Select(ctx, profilesTable, query, &rows); err != nil {
		return nil, apperrors.NewPersistenceError("failed to load profile", "PROFILE_LOAD_FAILED", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	p := rows[0].Profile
	return &p, nil
}

// SaveProfile merges u into the latest profile and appends the result as a
// new history row.
func (s *Store) SaveProfile(ctx context.Context, userID string, u ProfileUpdate) (Profile, error) {
	if u.CookingExperience != nil && !u.CookingExperience.Valid() {
		return Profile{}, apperrors.NewValidationError(
			fmt.Sprintf("unknown cooking experience %q", *u.CookingExperience),
			"INVALID_COOKING_EXPERIENCE",
			"Use one of Dålig, Medel, Avancerad or Professionell",
		)
	}

	defer s.lock(userID)()

	var current Profile
	latest, err := s.LoadProfile(ctx, userID)
	if err != nil {
		return Profile{}, err
	}
	if latest != nil {
		current = *latest
	}

	merged := current.Apply(u, s.now())
	if err := s.backend.Insert(ctx, profilesTable, profileRow{UserID: userID, Profile: merged}); err != nil {
		return Profile{}, apperrors.NewPersistenceError("failed to store profile", "PROFILE_STORE_FAILED", err)
	}
	return merged, nil
}

// SaveSummary replaces the free-text summary of what the user has said about
// themselves.
func (s *Store) SaveSummary(ctx context.Context, userID, summary string) error {
	row := summaryRow{UserID: userID, Summary: summary, UpdatedAt: s.now().UTC()}
	if err := s.backend.Upsert(ctx, summariesTable, "user_id", row); err != nil {
		return apperrors.NewPersistenceError("failed to store summary", "SUMMARY_STORE_FAILED", err)
	}
	return nil
}
