package agent

import (
	"context"
	"fmt"
	"log/slog"

	apperrors "github.com/socialchef/gramz/internal/errors"
	"github.com/socialchef/gramz/internal/llm"
	"github.com/socialchef/gramz/internal/metrics"
	"github.com/socialchef/gramz/internal/preferences"
	"github.com/socialchef/gramz/internal/recipes"
	"github.com/socialchef/gramz/internal/timer"
)

const invalidArgumentsMessage = "Invalid function arguments"

// Result is the outcome of one function call, fed back to the model as JSON.
type Result struct {
	Success *bool           `json:"success,omitempty"`
	Message string          `json:"message,omitempty"`
	Recipes []recipes.Match `json:"recipes,omitzero"`
}

// OK reports whether the call did not fail.
func (r Result) OK() bool {
	return r.Success == nil || *r.Success
}

func succeeded(message string) Result {
	ok := true
	return Result{Success: &ok, Message: message}
}

func failed(message string) Result {
	ok := false
	return Result{Success: &ok, Message: message}
}

type TimerStarter interface {
	Start(ctx context.Context, userID string, seconds int) (timer.State, error)
}

type RecipeSearcher interface {
	Search(ctx context.Context, query string) []recipes.Match
}

type RecipeStorer interface {
	Store(ctx context.Context, r recipes.Recipe) (recipes.Recipe, error)
}

type RecipeCategorizer interface {
	Categorize(ctx context.Context, r recipes.Recipe) []string
}

// StoreListener is told about every recipe stored through the chat.
type StoreListener interface {
	OnRecipeStored(ctx context.Context, r recipes.Recipe)
}

type PreferenceMerger interface {
	Merge(ctx context.Context, userID string, u preferences.Update) (preferences.Preferences, error)
}

// Handlers are the collaborators behind the registered functions. A nil
// collaborator makes its function fail with a message; Categorizer and
// OnStored are optional.
type Handlers struct {
	Timer       TimerStarter
	Searcher    RecipeSearcher
	Persister   RecipeStorer
	Categorizer RecipeCategorizer
	OnStored    StoreListener
	Preferences PreferenceMerger
}

type Dispatcher struct {
	h Handlers
}

func NewDispatcher(h Handlers) *Dispatcher {
	return &Dispatcher{h: h}
}

// Dispatch runs one function call for userID. It never returns an error:
// bad arguments, handler errors and panics all become a failed Result.
func (d *Dispatcher) Dispatch(ctx context.Context, userID string, fc llm.FunctionCall) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "Function handler panicked", "function", fc.Name, "panic", r)
			result = failed(fmt.Sprintf("%s failed unexpectedly", fc.Name))
		}
		metrics.RecordFunctionCall(ctx, fc.Name, result.OK())
	}()

	call, err := Decode(fc.Name, fc.Arguments)
	if err != nil {
		slog.WarnContext(ctx, "Rejected function call", "function", fc.Name, "error", err)
		return failed(invalidArgumentsMessage)
	}

	switch c := call.(type) {
	case SetTimer:
		return d.setTimer(ctx, userID, c)
	case SearchRecipe:
		return d.searchRecipe(ctx, c)
	case StoreRecipe:
		return d.storeRecipe(ctx, c)
	case StoreUserInfo:
		return d.storeUserInfo(ctx, userID, c)
	default:
		return failed(invalidArgumentsMessage)
	}
}

func (d *Dispatcher) setTimer(ctx context.Context, userID string, c SetTimer) Result {
	if d.h.Timer == nil {
		return unavailable(FuncSetTimer)
	}
	if _, err := d.h.Timer.Start(ctx, userID, c.Duration); err != nil {
		slog.ErrorContext(ctx, "Failed to set timer", "user_id", userID, "duration", c.Duration, "error", err)
		return failed("Failed to set timer: " + describe(err))
	}
	return succeeded(fmt.Sprintf("Timer set for %d seconds", c.Duration))
}

func (d *Dispatcher) searchRecipe(ctx context.Context, c SearchRecipe) Result {
	if d.h.Searcher == nil {
		return unavailable(FuncSearchRecipe)
	}
	matches := d.h.Searcher.Search(ctx, c.Recipe)
	if matches == nil {
		matches = []recipes.Match{}
	}
	return Result{Recipes: matches}
}

func (d *Dispatcher) storeRecipe(ctx context.Context, c StoreRecipe) Result {
	if d.h.Persister == nil {
		return unavailable(FuncStoreRecipe)
	}

	r := c.Recipe
	if d.h.Categorizer != nil && len(r.Category) == 0 {
		r.Category = d.h.Categorizer.Categorize(ctx, r)
	}

	stored, err := d.h.Persister.Store(ctx, r)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to store recipe", "name", r.Name, "error", err)
		return failed("Failed to store recipe: " + describe(err))
	}

	if d.h.OnStored != nil {
		d.h.OnStored.OnRecipeStored(ctx, stored)
	}
	return succeeded("Recipe stored successfully")
}

func (d *Dispatcher) storeUserInfo(ctx context.Context, userID string, c StoreUserInfo) Result {
	if d.h.Preferences == nil {
		return unavailable(FuncStoreUserInfo)
	}
	if _, err := d.h.Preferences.Merge(ctx, userID, c.Preferences); err != nil {
		slog.ErrorContext(ctx, "Failed to store user info", "user_id", userID, "error", err)
		return failed("Failed to store user info: " + describe(err))
	}
	return succeeded("User info stored successfully")
}

func unavailable(name string) Result {
	return failed(fmt.Sprintf("%s is not available", name))
}

// describe keeps the model-facing message to the application error text.
func describe(err error) string {
	if appErr, ok := apperrors.As(err); ok {
		return appErr.Message
	}
	return err.Error()
}
