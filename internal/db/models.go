package db

import (
	"github.com/jackc/pgx/v5/pgtype"
)

type Recipe struct {
	ID          pgtype.UUID        `json:"id"`
	Name        string             `json:"name"`
	Description pgtype.Text        `json:"description"`
	Servings    int32              `json:"servings"`
	Category    []string           `json:"category"`
	CreatedAt   pgtype.Timestamptz `json:"created_at"`
	UpdatedAt   pgtype.Timestamptz `json:"updated_at"`
}

type RecipeIngredient struct {
	ID         int64       `json:"id"`
	RecipeID   pgtype.UUID `json:"recipe_id"`
	Ingredient string      `json:"ingredient"`
	Amount     pgtype.Text `json:"amount"`
	Unit       pgtype.Text `json:"unit"`
}

type RecipeInstruction struct {
	ID          int64       `json:"id"`
	RecipeID    pgtype.UUID `json:"recipe_id"`
	StepNumber  int32       `json:"step_number"`
	Instruction string      `json:"instruction"`
}
