package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeclarationsMatchRegistry(t *testing.T) {
	decls := Declarations()
	require.Len(t, decls, 4)

	names := make([]string, len(decls))
	for i, d := range decls {
		names[i] = d.Name
		assert.NotEmpty(t, d.Description)
		assert.Equal(t, "object", d.Parameters["type"])
	}
	assert.Equal(t, []string{FuncSetTimer, FuncSearchRecipe, FuncStoreRecipe, FuncStoreUserInfo}, names)
}

func TestDecode_SetTimer(t *testing.T) {
	call, err := Decode(FuncSetTimer, `{"duration":300}`)
	require.NoError(t, err)
	assert.Equal(t, SetTimer{Duration: 300}, call)

	call, err = Decode(FuncSetTimer, `{"duration":60.0}`)
	require.NoError(t, err)
	assert.Equal(t, SetTimer{Duration: 60}, call)

	call, err = Decode(FuncSetTimer, `{"duration":0}`)
	require.NoError(t, err)
	assert.Equal(t, SetTimer{Duration: 0}, call)
}

func TestDecode_SearchRecipe(t *testing.T) {
	call, err := Decode(FuncSearchRecipe, `{"recipe":"  köttbullar "}`)
	require.NoError(t, err)
	assert.Equal(t, SearchRecipe{Recipe: "köttbullar"}, call)
}

func TestDecode_StoreRecipe(t *testing.T) {
	call, err := Decode(FuncStoreRecipe, `{"recipeData":{
		"name":"Pannkakor","servings":4,
		"ingredients":[{"ingredient":"mjöl","amount":"2,5","unit":"dl"}],
		"instructions":[{"step_number":5,"instruction":"Vispa"},{"step_number":1,"instruction":"Stek"}]}}`)
	require.NoError(t, err)

	sr, ok := call.(StoreRecipe)
	require.True(t, ok)
	assert.Equal(t, "Pannkakor", sr.Recipe.Name)
	assert.Equal(t, 4, sr.Recipe.Servings)
	require.Len(t, sr.Recipe.Ingredients, 1)
	assert.Equal(t, "mjöl", sr.Recipe.Ingredients[0].Ingredient)
	require.Len(t, sr.Recipe.Instructions, 2)
	assert.Equal(t, "Vispa", sr.Recipe.Instructions[0].Instruction)
}

func TestDecode_StoreUserInfo(t *testing.T) {
	call, err := Decode(FuncStoreUserInfo, `{"preferences":{"dislikes":["koriander"],"equipment":[]}}`)
	require.NoError(t, err)

	su, ok := call.(StoreUserInfo)
	require.True(t, ok)
	require.NotNil(t, su.Preferences.Dislikes)
	assert.Equal(t, []string{"koriander"}, *su.Preferences.Dislikes)
	require.NotNil(t, su.Preferences.Equipment)
	assert.Empty(t, *su.Preferences.Equipment)
	assert.Nil(t, su.Preferences.Likes)
}

func TestDecode_InvalidArguments(t *testing.T) {
	tests := []struct {
		name     string
		function string
		args     string
	}{
		{"unknown function", "deleteEverything", `{}`},
		{"malformed json", FuncSetTimer, `{"duration":`},
		{"missing duration", FuncSetTimer, `{}`},
		{"string duration", FuncSetTimer, `{"duration":"300"}`},
		{"negative duration", FuncSetTimer, `{"duration":-5}`},
		{"fractional duration", FuncSetTimer, `{"duration":1.5}`},
		{"missing recipe", FuncSearchRecipe, `{}`},
		{"blank recipe", FuncSearchRecipe, `{"recipe":"  "}`},
		{"numeric recipe", FuncSearchRecipe, `{"recipe":42}`},
		{"missing recipeData", FuncStoreRecipe, `{}`},
		{"recipeData not object", FuncStoreRecipe, `{"recipeData":"pasta"}`},
		{"recipe without ingredients", FuncStoreRecipe, `{"recipeData":{"name":"x","servings":2,"recipe_instructions":[]}}`},
		{"recipe without servings", FuncStoreRecipe, `{"recipeData":{"name":"x","recipe_ingredients":[],"recipe_instructions":[]}}`},
		{"servings as string", FuncStoreRecipe, `{"recipeData":{"name":"x","servings":"4","recipe_ingredients":[],"recipe_instructions":[]}}`},
		{"missing preferences", FuncStoreUserInfo, `{}`},
		{"empty preferences", FuncStoreUserInfo, `{"preferences":{}}`},
		{"preferences wrong type", FuncStoreUserInfo, `{"preferences":{"likes":"pasta"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			call, err := Decode(tt.function, tt.args)
			assert.ErrorIs(t, err, ErrInvalidArguments)
			assert.Nil(t, call)
		})
	}
}
