package recipes

import (
	"context"
	"log/slog"

	apperrors "github.com/socialchef/gramz/internal/errors"
	"github.com/socialchef/gramz/internal/preferences"
	"github.com/socialchef/gramz/internal/prompts"
	"github.com/socialchef/gramz/internal/validation"
)

// ProfileSource provides what a draft is personalised with.
type ProfileSource interface {
	Load(ctx context.Context, userID string) (preferences.Preferences, error)
	LoadProfile(ctx context.Context, userID string) (*preferences.Profile, error)
}

// Drafter writes recipe drafts with the text-only model.
type Drafter struct {
	model    TextCompleter
	profiles ProfileSource
	config   validation.ContentValidationConfig
}

func NewDrafter(model TextCompleter, profiles ProfileSource, config validation.ContentValidationConfig) *Drafter {
	return &Drafter{model: model, profiles: profiles, config: config}
}

// Draft returns a recipe written for requirements and adapted to the user's
// profile and preferences.
func (d *Drafter) Draft(ctx context.Context, userID, requirements string) (string, error) {
	check, err := validation.ValidateContent(ctx, requirements, d.config, d.model)
	if err != nil {
		slog.WarnContext(ctx, "Draft request validation failed", "error", err)
	}
	if !check.IsValid {
		return "", apperrors.NewValidationError(check.Reason, "INVALID_DRAFT_REQUEST", "Describe the dish you want to cook")
	}

	profile, err := d.profiles.LoadProfile(ctx, userID)
	if err != nil {
		slog.WarnContext(ctx, "Drafting without profile", "user_id", userID, "error", err)
	}
	prefs, err := d.profiles.Load(ctx, userID)
	if err != nil {
		slog.WarnContext(ctx, "Drafting without preferences", "user_id", userID, "error", err)
		prefs = preferences.Preferences{}
	}

	draft, err := d.model.Complete(ctx, prompts.Draft(profile, prefs), requirements, false)
	if err != nil {
		return "", apperrors.NewProviderError("failed to create recipe", "DRAFT_FAILED", err)
	}
	return draft, nil
}
