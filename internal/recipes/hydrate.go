package recipes

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
	"golang.org/x/sync/errgroup"

	"github.com/socialchef/gramz/internal/db"
)

const hydrateConcurrency = 4

// ChildReader loads the child rows of a recipe.
type ChildReader interface {
	ListRecipeIngredients(ctx context.Context, recipeID pgtype.UUID) ([]db.RecipeIngredient, error)
	ListRecipeInstructions(ctx context.Context, recipeID pgtype.UUID) ([]db.RecipeInstruction, error)
}

// hydrate fills in ingredients and instructions of every recipe in place.
func hydrate(ctx context.Context, q ChildReader, recipes []*Recipe) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(hydrateConcurrency)

	for _, r := range recipes {
		g.Go(func() error {
			id, err := db.ParseUUID(r.ID)
			if err != nil {
				return err
			}

			ingredients, err := q.ListRecipeIngredients(ctx, id)
			if err != nil {
				return fmt.Errorf("failed to load ingredients of %s: %w", r.ID, err)
			}
			instructions, err := q.ListRecipeInstructions(ctx, id)
			if err != nil {
				return fmt.Errorf("failed to load instructions of %s: %w", r.ID, err)
			}

			r.Ingredients = make([]Ingredient, len(ingredients))
			for i, ing := range ingredients {
				r.Ingredients[i] = Ingredient{
					Ingredient: ing.Ingredient,
					Amount:     ing.Amount.String,
					Unit:       ing.Unit.String,
				}
			}
			r.Instructions = make([]Instruction, len(instructions))
			for i, inst := range instructions {
				r.Instructions[i] = Instruction{
					StepNumber:  int(inst.StepNumber),
					Instruction: inst.Instruction,
				}
			}
			return nil
		})
	}
	return g.Wait()
}
