package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	apperrors "github.com/socialchef/gramz/internal/errors"
	"github.com/socialchef/gramz/internal/worker"
)

const maxNameResults = 50

// SearchRequest represents a similarity search. Threshold and Count fall
// back to the configured defaults when absent.
type SearchRequest struct {
	Query     string   `json:"query"`
	Threshold *float64 `json:"threshold,omitempty"`
	Count     int      `json:"count,omitempty"`
}

type NameSearchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
}

type DraftRequest struct {
	Requirements string `json:"requirements"`
}

type DraftResponse struct {
	Recipe string `json:"recipe"`
}

// HandleSearch performs semantic (vector) search
func (s *Server) HandleSearch(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		badRequest(w, r, "query is required")
		return
	}

	threshold, count := s.Searcher.Defaults()
	if req.Threshold != nil {
		threshold = *req.Threshold
	}
	if req.Count > 0 {
		count = req.Count
	}
	writeJSON(w, http.StatusOK, s.Searcher.SearchWith(r.Context(), req.Query, threshold, count))
}

// HandleSearchByName performs text-based search on recipe names
func (s *Server) HandleSearchByName(w http.ResponseWriter, r *http.Request) {
	var req NameSearchRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		badRequest(w, r, "query is required")
		return
	}

	limit := req.Limit
	if limit > maxNameResults {
		limit = maxNameResults
	}

	results, err := s.Searcher.SearchByName(r.Context(), req.Query, limit)
	if err != nil {
		writeError(w, r, apperrors.NewPersistenceError("failed to search recipes", "SEARCH_FAILED", err))
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *Server) HandleListRecipes(w http.ResponseWriter, r *http.Request) {
	list, err := s.Catalog.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) HandleGetRecipe(w http.ResponseWriter, r *http.Request) {
	recipe, err := s.Catalog.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, recipe)
}

func (s *Server) HandleDraft(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req DraftRequest
	if !decodeBody(w, r, &req) {
		return
	}

	draft, err := s.Drafter.Draft(r.Context(), userID, req.Requirements)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, DraftResponse{Recipe: draft})
}

func (s *Server) HandleGenerateEmbedding(w http.ResponseWriter, r *http.Request) {
	recipeID := chi.URLParam(r, "id")
	if _, err := uuid.Parse(recipeID); err != nil {
		writeError(w, r, apperrors.NewValidationError("invalid recipe id", "INVALID_RECIPE_ID", "Use the recipe's UUID"))
		return
	}
	if s.Queue == nil {
		writeError(w, r, apperrors.NewInternalError("background queue is not configured", nil))
		return
	}

	task, err := worker.NewGenerateEmbeddingTask(worker.GenerateEmbeddingPayload{RecipeID: recipeID})
	if err == nil {
		_, err = s.Queue.EnqueueContext(r.Context(), task)
	}
	if err != nil {
		writeError(w, r, apperrors.NewInternalError("failed to enqueue task", err))
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}
