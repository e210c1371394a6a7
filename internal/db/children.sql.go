package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type InsertRecipeIngredientsParams struct {
	RecipeID   pgtype.UUID `json:"recipe_id"`
	Ingredient string      `json:"ingredient"`
	Amount     pgtype.Text `json:"amount"`
	Unit       pgtype.Text `json:"unit"`
}

// iteratorForInsertRecipeIngredients implements pgx.CopyFromSource.
type iteratorForInsertRecipeIngredients struct {
	rows                 []InsertRecipeIngredientsParams
	skippedFirstNextCall bool
}

func (r *iteratorForInsertRecipeIngredients) Next() bool {
	if len(r.rows) == 0 {
		return false
	}
	if !r.skippedFirstNextCall {
		r.skippedFirstNextCall = true
		return true
	}
	r.rows = r.rows[1:]
	return len(r.rows) > 0
}

func (r iteratorForInsertRecipeIngredients) Values() ([]interface{}, error) {
	return []interface{}{
		r.rows[0].RecipeID,
		r.rows[0].Ingredient,
		r.rows[0].Amount,
		r.rows[0].Unit,
	}, nil
}

func (r iteratorForInsertRecipeIngredients) Err() error {
	return nil
}

func (q *Queries) InsertRecipeIngredients(ctx context.Context, arg []InsertRecipeIngredientsParams) (int64, error) {
	return q.db.CopyFrom(ctx, []string{"recipe_ingredients"}, []string{"recipe_id", "ingredient", "amount", "unit"}, &iteratorForInsertRecipeIngredients{rows: arg})
}

type InsertRecipeInstructionsParams struct {
	RecipeID    pgtype.UUID `json:"recipe_id"`
	StepNumber  int32       `json:"step_number"`
	Instruction string      `json:"instruction"`
}

// iteratorForInsertRecipeInstructions implements pgx.CopyFromSource.
type iteratorForInsertRecipeInstructions struct {
	rows                 []InsertRecipeInstructionsParams
	skippedFirstNextCall bool
}

func (r *iteratorForInsertRecipeInstructions) Next() bool {
	if len(r.rows) == 0 {
		return false
	}
	if !r.skippedFirstNextCall {
		r.skippedFirstNextCall = true
		return true
	}
	r.rows = r.rows[1:]
	return len(r.rows) > 0
}

func (r iteratorForInsertRecipeInstructions) Values() ([]interface{}, error) {
	return []interface{}{
		r.rows[0].RecipeID,
		r.rows[0].StepNumber,
		r.rows[0].Instruction,
	}, nil
}

func (r iteratorForInsertRecipeInstructions) Err() error {
	return nil
}

func (q *Queries) InsertRecipeInstructions(ctx context.Context, arg []InsertRecipeInstructionsParams) (int64, error) {
	return q.db.CopyFrom(ctx, []string{"recipe_instructions"}, []string{"recipe_id", "step_number", "instruction"}, &iteratorForInsertRecipeInstructions{rows: arg})
}

const listRecipeIngredients = `-- name: ListRecipeIngredients :many
SELECT id, recipe_id, ingredient, amount, unit
FROM recipe_ingredients
WHERE recipe_id = $1
ORDER BY id
`

func (q *Queries) ListRecipeIngredients(ctx context.Context, recipeID pgtype.UUID) ([]RecipeIngredient, error) {
	rows, err := q.db.Query(ctx, listRecipeIngredients, recipeID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (RecipeIngredient, error) {
		var i RecipeIngredient
		err := row.Scan(&i.ID, &i.RecipeID, &i.Ingredient, &i.Amount, &i.Unit)
		return i, err
	})
}

const listRecipeInstructions = `-- name: ListRecipeInstructions :many
SELECT id, recipe_id, step_number, instruction
FROM recipe_instructions
WHERE recipe_id = $1
ORDER BY step_number
`

func (q *Queries) ListRecipeInstructions(ctx context.Context, recipeID pgtype.UUID) ([]RecipeInstruction, error) {
	rows, err := q.db.Query(ctx, listRecipeInstructions, recipeID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (RecipeInstruction, error) {
		var i RecipeInstruction
		err := row.Scan(&i.ID, &i.RecipeID, &i.StepNumber, &i.Instruction)
		return i, err
	})
}
