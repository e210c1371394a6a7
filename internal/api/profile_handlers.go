package api

import (
	"net/http"

	apperrors "github.com/socialchef/gramz/internal/errors"
	"github.com/socialchef/gramz/internal/preferences"
)

func (s *Server) HandleGetPreferences(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	prefs, err := s.Preferences.Load(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}

func (s *Server) HandleMergePreferences(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var update preferences.Update
	if !decodeBody(w, r, &update) {
		return
	}
	if update.IsEmpty() {
		badRequest(w, r, "at least one preference field is required")
		return
	}

	prefs, err := s.Preferences.Merge(r.Context(), userID, update)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, prefs)
}

func (s *Server) HandleClearPreferences(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := s.Preferences.Clear(r.Context(), userID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	profile, err := s.Preferences.LoadProfile(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if profile == nil {
		writeError(w, r, apperrors.NewNotFoundError("no profile yet", "PROFILE_NOT_FOUND", "Complete the onboarding first"))
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) HandleSaveProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	var update preferences.ProfileUpdate
	if !decodeBody(w, r, &update) {
		return
	}

	profile, err := s.Preferences.SaveProfile(r.Context(), userID, update)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) HandleGetTimer(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	state, err := s.Timers.Get(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if state == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (s *Server) HandleHideTimer(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := s.Timers.Hide(r.Context(), userID); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
