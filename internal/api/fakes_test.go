package api

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/socialchef/gramz/internal/agent"
	apperrors "github.com/socialchef/gramz/internal/errors"
	"github.com/socialchef/gramz/internal/middleware"
	"github.com/socialchef/gramz/internal/preferences"
	"github.com/socialchef/gramz/internal/recipes"
	"github.com/socialchef/gramz/internal/timer"
)

const testUser = "6b1f3c1e-8a53-4a43-9b8e-2f7c1d2a9e10"

// newRouter mounts s behind a stand-in for the auth middleware that trusts
// the X-Test-User header.
func newRouter(s *Server) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			if id := req.Header.Get("X-Test-User"); id != "" {
				req = req.WithContext(middleware.WithUserID(req.Context(), id))
			}
			next.ServeHTTP(w, req)
		})
	})
	s.Mount(r)
	return r
}

type fakeChatter struct {
	resp  agent.Response
	err   error
	calls []string
}

func (f *fakeChatter) Turn(_ context.Context, _ string, _ *agent.Conversation, message string) (agent.Response, error) {
	f.calls = append(f.calls, message)
	return f.resp, f.err
}

type fakeSessions struct {
	convs    map[string]*agent.Conversation
	saved    []string
	resetErr error
	resets   int
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{convs: map[string]*agent.Conversation{}}
}

func (f *fakeSessions) Get(_ context.Context, userID string) (*agent.Conversation, error) {
	if c, ok := f.convs[userID]; ok {
		return c, nil
	}
	c := agent.NewConversation("sys")
	f.convs[userID] = c
	return c, nil
}

func (f *fakeSessions) Save(_ context.Context, userID string, _ *agent.Conversation) error {
	f.saved = append(f.saved, userID)
	return nil
}

func (f *fakeSessions) Reset(context.Context, string) error {
	f.resets++
	return f.resetErr
}

type fakeSearcher struct {
	threshold float64
	count     int
	gotQuery  string
	gotLimit  int
	matches   []recipes.Match
	named     []recipes.Recipe
}

func (f *fakeSearcher) Defaults() (float64, int) { return 0.4, 7 }

func (f *fakeSearcher) SearchWith(_ context.Context, query string, threshold float64, count int) []recipes.Match {
	f.gotQuery, f.threshold, f.count = query, threshold, count
	if f.matches == nil {
		return []recipes.Match{}
	}
	return f.matches
}

func (f *fakeSearcher) SearchByName(_ context.Context, query string, limit int) ([]recipes.Recipe, error) {
	f.gotQuery, f.gotLimit = query, limit
	return f.named, nil
}

type fakeCatalog struct {
	recipes []recipes.Recipe
}

func (f *fakeCatalog) List(context.Context) ([]recipes.Recipe, error) {
	return f.recipes, nil
}

func (f *fakeCatalog) Get(_ context.Context, id string) (recipes.Recipe, error) {
	for _, r := range f.recipes {
		if r.ID == id {
			return r, nil
		}
	}
	return recipes.Recipe{}, apperrors.NewNotFoundError("recipe not found", "RECIPE_NOT_FOUND", "")
}

type fakeDrafter struct{}

func (fakeDrafter) Draft(_ context.Context, _ string, requirements string) (string, error) {
	if strings.TrimSpace(requirements) == "" {
		return "", apperrors.NewValidationError("requirements are empty", "INVALID_DRAFT_REQUEST", "")
	}
	return "Recept: " + requirements, nil
}

type fakePreferences struct {
	prefs   preferences.Preferences
	profile *preferences.Profile
	cleared bool
}

func (f *fakePreferences) Load(context.Context, string) (preferences.Preferences, error) {
	return f.prefs, nil
}

func (f *fakePreferences) Merge(_ context.Context, _ string, u preferences.Update) (preferences.Preferences, error) {
	f.prefs = f.prefs.Merge(u)
	return f.prefs, nil
}

func (f *fakePreferences) Clear(context.Context, string) error {
	f.cleared = true
	return nil
}

func (f *fakePreferences) LoadProfile(context.Context, string) (*preferences.Profile, error) {
	return f.profile, nil
}

func (f *fakePreferences) SaveProfile(_ context.Context, _ string, u preferences.ProfileUpdate) (preferences.Profile, error) {
	var base preferences.Profile
	if f.profile != nil {
		base = *f.profile
	}
	p := base.Apply(u, base.CreatedAt)
	f.profile = &p
	return p, nil
}

type fakeTimers struct {
	state  *timer.State
	hidden bool
}

func (f *fakeTimers) Get(context.Context, string) (*timer.State, error) {
	return f.state, nil
}

func (f *fakeTimers) Hide(context.Context, string) error {
	f.hidden = true
	return nil
}

type fakeQueue struct {
	mu    sync.Mutex
	tasks []*asynq.Task
	err   error
}

func (f *fakeQueue) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.tasks = append(f.tasks, task)
	return &asynq.TaskInfo{Type: task.Type()}, nil
}
