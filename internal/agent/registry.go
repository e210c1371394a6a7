package agent

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/socialchef/gramz/internal/llm"
	"github.com/socialchef/gramz/internal/preferences"
	"github.com/socialchef/gramz/internal/recipes"
)

const (
	FuncSetTimer      = "setTimer"
	FuncSearchRecipe  = "searchRecipe"
	FuncStoreRecipe   = "storeRecipe"
	FuncStoreUserInfo = "storeUserInfo"
)

var ErrInvalidArguments = errors.New("invalid function arguments")

// Call is a decoded function-call request. Exactly one variant exists per
// registered function.
type Call interface {
	FunctionName() string
}

type SetTimer struct {
	Duration int
}

type SearchRecipe struct {
	Recipe string
}

type StoreRecipe struct {
	Recipe recipes.Recipe
}

type StoreUserInfo struct {
	Preferences preferences.Update
}

func (SetTimer) FunctionName() string      { return FuncSetTimer }
func (SearchRecipe) FunctionName() string  { return FuncSearchRecipe }
func (StoreRecipe) FunctionName() string   { return FuncStoreRecipe }
func (StoreUserInfo) FunctionName() string { return FuncStoreUserInfo }

// Function is one entry of the registry. Parameters is what the model sees;
// decode is what dispatch runs. Both live here so they cannot drift.
type Function struct {
	Name        string
	Description string
	Parameters  map[string]any
	decode      func(args []byte) (Call, error)
}

var stringList = map[string]any{"type": "array", "items": map[string]any{"type": "string"}}

var registry = []Function{
	{
		Name:        FuncSetTimer,
		Description: "Sets a cooking timer for a requested amount of time",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"duration": map[string]any{
					"type":        "integer",
					"minimum":     0,
					"description": "Duration in seconds",
				},
			},
			"required": []string{"duration"},
		},
		decode: decodeSetTimer,
	},
	{
		Name:        FuncSearchRecipe,
		Description: "Searches the saved recipes for dishes matching a free-text query",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"recipe": map[string]any{
					"type":        "string",
					"description": "The name or a description of the recipe",
				},
			},
			"required": []string{"recipe"},
		},
		decode: decodeSearchRecipe,
	},
	{
		Name:        FuncStoreRecipe,
		Description: "Stores a new recipe in the database",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"recipeData": map[string]any{
					"type":        "object",
					"description": "The recipe to store",
					"properties": map[string]any{
						"name":        map[string]any{"type": "string"},
						"description": map[string]any{"type": "string"},
						"servings":    map[string]any{"type": "integer", "minimum": 1},
						"recipe_ingredients": map[string]any{
							"type": "array",
							"items": map[string]any{
								"type": "object",
								"properties": map[string]any{
									"ingredient": map[string]any{"type": "string"},
									"amount":     map[string]any{"type": "string"},
									"unit":       map[string]any{"type": "string"},
								},
								"required": []string{"ingredient"},
							},
						},
						"recipe_instructions": map[string]any{
							"type": "array",
							"items": map[string]any{
								"type": "object",
								"properties": map[string]any{
									"step_number": map[string]any{"type": "integer"},
									"instruction": map[string]any{"type": "string"},
								},
								"required": []string{"step_number", "instruction"},
							},
						},
					},
					"required": []string{"name", "servings", "recipe_ingredients", "recipe_instructions"},
				},
			},
			"required": []string{"recipeData"},
		},
		decode: decodeStoreRecipe,
	},
	{
		Name:        FuncStoreUserInfo,
		Description: "Stores the user's cooking preferences, dislikes and restrictions",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"preferences": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"equipment":            stringList,
						"dislikes":             stringList,
						"likes":                stringList,
						"dietary_restrictions": stringList,
						"other_preferences":    stringList,
					},
				},
			},
			"required": []string{"preferences"},
		},
		decode: decodeStoreUserInfo,
	},
}

// Declarations returns the registry in the form sent to the model.
func Declarations() []llm.FunctionDeclaration {
	decls := make([]llm.FunctionDeclaration, len(registry))
	for i, fn := range registry {
		decls[i] = llm.FunctionDeclaration{
			Name:        fn.Name,
			Description: fn.Description,
			Parameters:  fn.Parameters,
		}
	}
	return decls
}

// Decode validates raw model arguments for name. Any failure wraps
// ErrInvalidArguments.
func Decode(name, arguments string) (Call, error) {
	for _, fn := range registry {
		if fn.Name != name {
			continue
		}
		args := []byte(strings.TrimSpace(arguments))
		if len(args) == 0 {
			args = []byte("{}")
		}
		call, err := fn.decode(args)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidArguments, name, err)
		}
		return call, nil
	}
	return nil, fmt.Errorf("%w: unknown function %q", ErrInvalidArguments, name)
}

func decodeSetTimer(args []byte) (Call, error) {
	var raw struct {
		Duration *float64 `json:"duration"`
	}
	if err := json.Unmarshal(args, &raw); err != nil {
		return nil, err
	}
	if raw.Duration == nil {
		return nil, errors.New("duration is required")
	}
	d := *raw.Duration
	if d < 0 || d != math.Trunc(d) || d > math.MaxInt32 {
		return nil, fmt.Errorf("duration must be a non-negative whole number of seconds, got %v", d)
	}
	return SetTimer{Duration: int(d)}, nil
}

func decodeSearchRecipe(args []byte) (Call, error) {
	var raw struct {
		Recipe *string `json:"recipe"`
	}
	if err := json.Unmarshal(args, &raw); err != nil {
		return nil, err
	}
	if raw.Recipe == nil || strings.TrimSpace(*raw.Recipe) == "" {
		return nil, errors.New("recipe is required")
	}
	return SearchRecipe{Recipe: strings.TrimSpace(*raw.Recipe)}, nil
}

func decodeStoreRecipe(args []byte) (Call, error) {
	var raw struct {
		RecipeData json.RawMessage `json:"recipeData"`
	}
	if err := json.Unmarshal(args, &raw); err != nil {
		return nil, err
	}
	if isNull(raw.RecipeData) {
		return nil, errors.New("recipeData is required")
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw.RecipeData, &fields); err != nil {
		return nil, fmt.Errorf("recipeData: %w", err)
	}
	for _, keys := range [][]string{
		{"name"},
		{"servings"},
		{"recipe_ingredients", "ingredients"},
		{"recipe_instructions", "instructions"},
	} {
		if !hasAny(fields, keys...) {
			return nil, fmt.Errorf("recipeData.%s is required", keys[0])
		}
	}

	var r recipes.Recipe
	if err := json.Unmarshal(raw.RecipeData, &r); err != nil {
		return nil, fmt.Errorf("recipeData: %w", err)
	}
	r.ID = ""
	return StoreRecipe{Recipe: r}, nil
}

func decodeStoreUserInfo(args []byte) (Call, error) {
	var raw struct {
		Preferences *preferences.Update `json:"preferences"`
	}
	if err := json.Unmarshal(args, &raw); err != nil {
		return nil, err
	}
	if raw.Preferences == nil || raw.Preferences.IsEmpty() {
		return nil, errors.New("preferences is required")
	}
	return StoreUserInfo{Preferences: *raw.Preferences}, nil
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

func hasAny(fields map[string]json.RawMessage, keys ...string) bool {
	for _, k := range keys {
		if v, ok := fields[k]; ok && !isNull(v) {
			return true
		}
	}
	return false
}
