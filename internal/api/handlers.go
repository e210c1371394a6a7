package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/socialchef/gramz/internal/agent"
	apperrors "github.com/socialchef/gramz/internal/errors"
	"github.com/socialchef/gramz/internal/middleware"
	"github.com/socialchef/gramz/internal/preferences"
	"github.com/socialchef/gramz/internal/recipes"
	"github.com/socialchef/gramz/internal/sentry"
	"github.com/socialchef/gramz/internal/timer"
	"github.com/socialchef/gramz/internal/worker"
)

type Chatter interface {
	Turn(ctx context.Context, userID string, conv *agent.Conversation, message string) (agent.Response, error)
}

type Sessions interface {
	Get(ctx context.Context, userID string) (*agent.Conversation, error)
	Save(ctx context.Context, userID string, conv *agent.Conversation) error
	Reset(ctx context.Context, userID string) error
}

type Searcher interface {
	Defaults() (threshold float64, count int)
	SearchWith(ctx context.Context, query string, threshold float64, count int) []recipes.Match
	SearchByName(ctx context.Context, query string, limit int) ([]recipes.Recipe, error)
}

type Catalog interface {
	List(ctx context.Context) ([]recipes.Recipe, error)
	Get(ctx context.Context, id string) (recipes.Recipe, error)
}

type Drafter interface {
	Draft(ctx context.Context, userID, requirements string) (string, error)
}

type PreferenceStore interface {
	Load(ctx context.Context, userID string) (preferences.Preferences, error)
	Merge(ctx context.Context, userID string, u preferences.Update) (preferences.Preferences, error)
	Clear(ctx context.Context, userID string) error
	LoadProfile(ctx context.Context, userID string) (*preferences.Profile, error)
	SaveProfile(ctx context.Context, userID string, u preferences.ProfileUpdate) (preferences.Profile, error)
}

type Timers interface {
	Get(ctx context.Context, userID string) (*timer.State, error)
	Hide(ctx context.Context, userID string) error
}

// Enqueuer is satisfied by *asynq.Client.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

type Deps struct {
	Agent       Chatter
	Sessions    Sessions
	Searcher    Searcher
	Catalog     Catalog
	Drafter     Drafter
	Preferences PreferenceStore
	Timers      Timers
	Queue       Enqueuer
}

type Server struct {
	Deps
}

func NewServer(deps Deps) *Server {
	return &Server{Deps: deps}
}

// Mount registers every /api route on r. Authentication is the caller's
// concern.
func (s *Server) Mount(r chi.Router) {
	r.Post("/api/chat", s.HandleChat)
	r.Delete("/api/chat", s.HandleResetChat)

	r.Post("/api/recipes/search", s.HandleSearch)
	r.Post("/api/recipes/search/name", s.HandleSearchByName)
	r.Post("/api/recipes/draft", s.HandleDraft)
	r.Get("/api/recipes", s.HandleListRecipes)
	r.Get("/api/recipes/{id}", s.HandleGetRecipe)
	r.Post("/api/recipes/{id}/embedding", s.HandleGenerateEmbedding)

	r.Get("/api/preferences", s.HandleGetPreferences)
	r.Patch("/api/preferences", s.HandleMergePreferences)
	r.Delete("/api/preferences", s.HandleClearPreferences)
	r.Get("/api/profile", s.HandleGetProfile)
	r.Put("/api/profile", s.HandleSaveProfile)

	r.Get("/api/timer", s.HandleGetTimer)
	r.Delete("/api/timer", s.HandleHideTimer)
}

type ErrorResponse struct {
	Error      string `json:"error"`
	Code       string `json:"code,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperrors.StatusCode(err)
	resp := ErrorResponse{Error: http.StatusText(status)}
	if appErr, ok := apperrors.As(err); ok {
		resp = ErrorResponse{Error: appErr.Message, Code: appErr.Code(), Suggestion: appErr.RecoverySuggestion()}
	}
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), "Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		sentry.CaptureError(r.Context(), err, map[string]string{"path": r.URL.Path})
	}
	writeJSON(w, status, resp)
}

func badRequest(w http.ResponseWriter, r *http.Request, message string) {
	writeError(w, r, apperrors.NewValidationError(message, "INVALID_REQUEST", ""))
}

func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok || userID == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return "", false
	}
	return userID, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		badRequest(w, r, "Invalid request body")
		return false
	}
	return true
}

type ChatRequest struct {
	Message string `json:"message"`
}

func (s *Server) HandleChat(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req ChatRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		badRequest(w, r, "message is required")
		return
	}

	ctx := r.Context()
	conv, err := s.Sessions.Get(ctx, userID)
	if err != nil {
		writeError(w, r, apperrors.NewPersistenceError("failed to load conversation", "SESSION_LOAD_FAILED", err))
		return
	}

	resp, err := s.Agent.Turn(ctx, userID, conv, req.Message)
	switch {
	case errors.Is(err, agent.ErrTurnInProgress):
		writeError(w, r, apperrors.NewConflictError("a reply is already being generated", "TURN_IN_PROGRESS", "Wait for the current reply"))
		return
	case errors.Is(err, agent.ErrTurnFailed):
		writeJSON(w, http.StatusBadGateway, resp)
		return
	case err != nil:
		writeError(w, r, err)
		return
	}

	if err := s.Sessions.Save(ctx, userID, conv); err != nil {
		slog.WarnContext(ctx, "Failed to persist conversation", "user_id", userID, "error", err)
	}
	s.enqueueRelevanceCheck(ctx, userID, req.Message)

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) enqueueRelevanceCheck(ctx context.Context, userID, message string) {
	if s.Queue == nil {
		return
	}
	task, err := worker.NewRelevanceCheckTask(worker.RelevanceCheckPayload{UserID: userID, Message: message})
	if err == nil {
		_, err = s.Queue.EnqueueContext(ctx, task)
	}
	if err != nil {
		slog.WarnContext(ctx, "Failed to enqueue relevance check", "user_id", userID, "error", err)
	}
}

func (s *Server) HandleResetChat(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	err := s.Sessions.Reset(r.Context(), userID)
	switch {
	case errors.Is(err, agent.ErrTurnInProgress):
		writeError(w, r, apperrors.NewConflictError("a reply is already being generated", "TURN_IN_PROGRESS", "Wait for the current reply"))
		return
	case err != nil:
		writeError(w, r, apperrors.NewPersistenceError("failed to reset conversation", "SESSION_RESET_FAILED", err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
