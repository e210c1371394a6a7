package recipes

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/socialchef/gramz/internal/db"
	apperrors "github.com/socialchef/gramz/internal/errors"
	"github.com/socialchef/gramz/internal/validation"
)

type Ingredient struct {
	Ingredient string `json:"ingredient"`
	Amount     string `json:"amount,omitempty"`
	Unit       string `json:"unit,omitempty"`
}

type Instruction struct {
	StepNumber  int    `json:"step_number"`
	Instruction string `json:"instruction"`
}

// Recipe is a recipe as exchanged with the chat model and the HTTP API.
type Recipe struct {
	ID           string        `json:"id,omitempty"`
	Name         string        `json:"name"`
	Description  string        `json:"description,omitempty"`
	Servings     int           `json:"servings"`
	Ingredients  []Ingredient  `json:"recipe_ingredients"`
	Instructions []Instruction `json:"recipe_instructions"`
	Category     []string      `json:"category,omitempty"`
	CreatedAt    time.Time     `json:"created_at,omitzero"`
	UpdatedAt    time.Time     `json:"updated_at,omitzero"`
}

// UnmarshalJSON accepts both the recipe_ingredients/recipe_instructions keys
// and the shorter ingredients/instructions keys models sometimes emit.
func (r *Recipe) UnmarshalJSON(data []byte) error {
	type plain Recipe
	var aux struct {
		plain
		AltIngredients  []Ingredient  `json:"ingredients"`
		AltInstructions []Instruction `json:"instructions"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*r = Recipe(aux.plain)
	if r.Ingredients == nil {
		r.Ingredients = aux.AltIngredients
	}
	if r.Instructions == nil {
		r.Instructions = aux.AltInstructions
	}
	return nil
}

// Match is a search hit.
type Match struct {
	Recipe
	Similarity float64 `json:"similarity"`
}

// Validate rejects recipes that cannot be stored.
func (r Recipe) Validate() error {
	v := validation.Recipe{
		Name:        r.Name,
		Description: r.Description,
		Servings:    r.Servings,
	}
	for _, ing := range r.Ingredients {
		v.Ingredients = append(v.Ingredients, validation.Ingredient{Name: ing.Ingredient, Amount: ing.Amount, Unit: ing.Unit})
	}
	for _, inst := range r.Instructions {
		v.Instructions = append(v.Instructions, inst.Instruction)
	}

	result := validation.ValidateRecipe(v, validation.DefaultRecipeValidationConfig())
	if !result.IsValid {
		return apperrors.NewValidationError(
			fmt.Sprintf("invalid recipe: %s", strings.Join(result.Issues, "; ")),
			"INVALID_RECIPE",
			"Provide a name, a positive number of servings, at least one ingredient and at least one instruction",
		)
	}
	return nil
}

// Renumbered returns a copy of r with instruction steps numbered 1..N in
// their current order.
func (r Recipe) Renumbered() Recipe {
	out := r
	out.Instructions = make([]Instruction, len(r.Instructions))
	for i, inst := range r.Instructions {
		out.Instructions[i] = Instruction{StepNumber: i + 1, Instruction: inst.Instruction}
	}
	return out
}

func fromRow(row db.Recipe) Recipe {
	return Recipe{
		ID:          db.UUIDString(row.ID),
		Name:        row.Name,
		Description: row.Description.String,
		Servings:    int(row.Servings),
		Category:    row.Category,
		CreatedAt:   row.CreatedAt.Time,
		UpdatedAt:   row.UpdatedAt.Time,
	}
}

func fromMatchRow(row db.MatchRecipesRow) Match {
	return Match{
		Recipe: fromRow(db.Recipe{
			ID:          row.ID,
			Name:        row.Name,
			Description: row.Description,
			Servings:    row.Servings,
			Category:    row.Category,
			CreatedAt:   row.CreatedAt,
			UpdatedAt:   row.UpdatedAt,
		}),
		Similarity: row.Similarity,
	}
}
