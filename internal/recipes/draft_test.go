package recipes

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/socialchef/gramz/internal/errors"
	"github.com/socialchef/gramz/internal/preferences"
	"github.com/socialchef/gramz/internal/validation"
)

type stubProfiles struct {
	profile *preferences.Profile
	prefs   preferences.Preferences
	err     error
}

func (s stubProfiles) Load(ctx context.Context, userID string) (preferences.Preferences, error) {
	return s.prefs, s.err
}

func (s stubProfiles) LoadProfile(ctx context.Context, userID string) (*preferences.Profile, error) {
	return s.profile, s.err
}

func TestDraftUsesProfile(t *testing.T) {
	model := new(MockCompleter)
	model.On("Complete", mock.Anything,
		mock.MatchedBy(func(system string) bool {
			return strings.Contains(system, "Help the user create a recipe") &&
				strings.Contains(system, "- Cooking Experience: Dålig") &&
				strings.Contains(system, "- Likes: pasta")
		}),
		"En vegetarisk pastarätt", false,
	).Return("Pasta med tomatsås ...", nil)

	d := NewDrafter(model, stubProfiles{
		profile: &preferences.Profile{CookingExperience: preferences.ExperiencePoor, CanReadRecipes: true},
		prefs:   preferences.Preferences{Likes: []string{"pasta"}},
	}, validation.DefaultContentValidationConfig())

	draft, err := d.Draft(context.Background(), "user-1", "En vegetarisk pastarätt")
	require.NoError(t, err)
	assert.Equal(t, "Pasta med tomatsås ...", draft)
	model.AssertExpectations(t)
}

func TestDraftContinuesWithoutProfile(t *testing.T) {
	model := new(MockCompleter)
	model.On("Complete", mock.Anything, mock.Anything, mock.Anything, false).Return("Soppa", nil)

	d := NewDrafter(model, stubProfiles{err: errors.New("supabase down")}, validation.DefaultContentValidationConfig())
	draft, err := d.Draft(context.Background(), "user-1", "En enkel soppa")
	require.NoError(t, err)
	assert.Equal(t, "Soppa", draft)
}

func TestDraftRejectsEmptyRequest(t *testing.T) {
	model := new(MockCompleter)
	d := NewDrafter(model, stubProfiles{}, validation.DefaultContentValidationConfig())

	_, err := d.Draft(context.Background(), "user-1", " ")
	require.Error(t, err)
	assert.Equal(t, 400, apperrors.StatusCode(err))
	model.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDraftProviderFailure(t *testing.T) {
	model := new(MockCompleter)
	model.On("Complete", mock.Anything, mock.Anything, mock.Anything, false).Return("", errors.New("503"))

	d := NewDrafter(model, stubProfiles{}, validation.DefaultContentValidationConfig())
	_, err := d.Draft(context.Background(), "user-1", "En kycklinggryta")
	require.Error(t, err)

	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, "DRAFT_FAILED", appErr.Code())
}
