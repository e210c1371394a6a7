package agent

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	apperrors "github.com/socialchef/gramz/internal/errors"
	"github.com/socialchef/gramz/internal/llm"
	"github.com/socialchef/gramz/internal/recipes"
	"github.com/socialchef/gramz/internal/timer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const pancakeArgs = `{"recipeData":{"name":"Pannkakor","servings":4,
	"recipe_ingredients":[{"ingredient":"mjöl","amount":"2,5","unit":"dl"}],
	"recipe_instructions":[{"step_number":5,"instruction":"Vispa"},{"step_number":5,"instruction":"Vila"},{"step_number":1,"instruction":"Stek"}]}}`

func TestDispatch_SetTimer(t *testing.T) {
	tm := new(MockTimer)
	tm.On("Start", mock.Anything, "user-1", 300).Return(timer.State{DurationSeconds: 300, Visible: true}, nil).Once()

	d := NewDispatcher(Handlers{Timer: tm})
	res := d.Dispatch(context.Background(), "user-1", llm.FunctionCall{Name: FuncSetTimer, Arguments: `{"duration":300}`})

	require.NotNil(t, res.Success)
	assert.True(t, *res.Success)
	assert.Equal(t, "Timer set for 300 seconds", res.Message)
	tm.AssertExpectations(t)
}

func TestDispatch_UnknownFunctionInvokesNoHandler(t *testing.T) {
	tm := new(MockTimer)
	s := new(MockSearcher)
	p := &fakePersister{}
	m := &fakeMerger{}
	d := NewDispatcher(Handlers{Timer: tm, Searcher: s, Persister: p, Preferences: m})

	for _, name := range []string{"deleteRecipe", "", "SETTIMER"} {
		res := d.Dispatch(context.Background(), "user-1", llm.FunctionCall{Name: name, Arguments: `{"duration":10}`})
		require.NotNil(t, res.Success)
		assert.False(t, *res.Success)
		assert.Equal(t, "Invalid function arguments", res.Message)
	}

	tm.AssertNotCalled(t, "Start", mock.Anything, mock.Anything, mock.Anything)
	s.AssertNotCalled(t, "Search", mock.Anything, mock.Anything)
	assert.Empty(t, p.stored)
	assert.Empty(t, m.updates)
}

func TestDispatch_WrongTypedArgumentsInvokeNoHandler(t *testing.T) {
	tm := new(MockTimer)
	d := NewDispatcher(Handlers{Timer: tm})

	res := d.Dispatch(context.Background(), "user-1", llm.FunctionCall{Name: FuncSetTimer, Arguments: `{"duration":"five"}`})
	assert.False(t, *res.Success)
	assert.Equal(t, "Invalid function arguments", res.Message)
	tm.AssertNotCalled(t, "Start", mock.Anything, mock.Anything, mock.Anything)
}

func TestDispatch_SearchRecipe(t *testing.T) {
	s := new(MockSearcher)
	matches := []recipes.Match{{Recipe: recipes.Recipe{ID: "r1", Name: "Köttbullar"}, Similarity: 0.82}}
	s.On("Search", mock.Anything, "köttbullar").Return(matches).Once()

	d := NewDispatcher(Handlers{Searcher: s})
	res := d.Dispatch(context.Background(), "user-1", llm.FunctionCall{Name: FuncSearchRecipe, Arguments: `{"recipe":"köttbullar"}`})

	assert.Nil(t, res.Success)
	assert.Equal(t, matches, res.Recipes)
	s.AssertExpectations(t)
}

func TestDispatch_SearchWithNoMatchesStillReportsRecipes(t *testing.T) {
	s := new(MockSearcher)
	s.On("Search", mock.Anything, "drakfrukt").Return(nil).Once()

	d := NewDispatcher(Handlers{Searcher: s})
	res := d.Dispatch(context.Background(), "user-1", llm.FunctionCall{Name: FuncSearchRecipe, Arguments: `{"recipe":"drakfrukt"}`})

	payload, err := json.Marshal(res)
	require.NoError(t, err)
	assert.JSONEq(t, `{"recipes":[]}`, string(payload))
}

func TestDispatch_StoreRecipe(t *testing.T) {
	p := &fakePersister{}
	l := &fakeListener{}
	d := NewDispatcher(Handlers{
		Persister:   p,
		Categorizer: fakeCategorizer{labels: []string{"Efterrätt"}},
		OnStored:    l,
	})

	res := d.Dispatch(context.Background(), "user-1", llm.FunctionCall{Name: FuncStoreRecipe, Arguments: pancakeArgs})
	require.NotNil(t, res.Success)
	assert.True(t, *res.Success)
	assert.Equal(t, "Recipe stored successfully", res.Message)

	require.Len(t, p.stored, 1)
	assert.Equal(t, []string{"Efterrätt"}, p.stored[0].Category)
	steps := []int{}
	for _, in := range p.stored[0].Instructions {
		steps = append(steps, in.StepNumber)
	}
	assert.Equal(t, []int{1, 2, 3}, steps)

	require.Len(t, l.got, 1)
	assert.Equal(t, "Pannkakor", l.got[0].Name)
}

func TestDispatch_StoreRecipeFailure(t *testing.T) {
	p := &fakePersister{err: apperrors.NewPersistenceError("failed to store recipe", "RECIPE_STORE_FAILED", errors.New("connection reset"))}
	l := &fakeListener{}
	d := NewDispatcher(Handlers{Persister: p, OnStored: l})

	res := d.Dispatch(context.Background(), "user-1", llm.FunctionCall{Name: FuncStoreRecipe, Arguments: pancakeArgs})
	require.NotNil(t, res.Success)
	assert.False(t, *res.Success)
	assert.Equal(t, "Failed to store recipe: failed to store recipe", res.Message)
	assert.Empty(t, l.got)
}

func TestDispatch_PanicBecomesFailedResult(t *testing.T) {
	d := NewDispatcher(Handlers{Persister: &fakePersister{panic: true}})

	var res Result
	assert.NotPanics(t, func() {
		res = d.Dispatch(context.Background(), "user-1", llm.FunctionCall{Name: FuncStoreRecipe, Arguments: pancakeArgs})
	})
	require.NotNil(t, res.Success)
	assert.False(t, *res.Success)
	assert.Contains(t, res.Message, "storeRecipe")
}

func TestDispatch_StoreUserInfo(t *testing.T) {
	m := &fakeMerger{}
	d := NewDispatcher(Handlers{Preferences: m})

	res := d.Dispatch(context.Background(), "user-1", llm.FunctionCall{
		Name:      FuncStoreUserInfo,
		Arguments: `{"preferences":{"equipment":["ingen ugn"]}}`,
	})
	assert.True(t, *res.Success)
	assert.Equal(t, "User info stored successfully", res.Message)
	require.Len(t, m.updates, 1)
	assert.Equal(t, []string{"ingen ugn"}, *m.updates[0].Equipment)
}

func TestDispatch_StoreUserInfoFailure(t *testing.T) {
	d := NewDispatcher(Handlers{Preferences: &fakeMerger{err: errors.New("supabase down")}})

	res := d.Dispatch(context.Background(), "user-1", llm.FunctionCall{
		Name:      FuncStoreUserInfo,
		Arguments: `{"preferences":{"likes":["pasta"]}}`,
	})
	assert.False(t, *res.Success)
	assert.Equal(t, "Failed to store user info: supabase down", res.Message)
}

func TestDispatch_MissingCollaborator(t *testing.T) {
	d := NewDispatcher(Handlers{})
	res := d.Dispatch(context.Background(), "user-1", llm.FunctionCall{Name: FuncSetTimer, Arguments: `{"duration":10}`})
	assert.False(t, *res.Success)
	assert.Equal(t, "setTimer is not available", res.Message)
}

func TestResultJSON(t *testing.T) {
	payload, err := json.Marshal(succeeded("Timer set for 300 seconds"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"message":"Timer set for 300 seconds"}`, string(payload))
}
