package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

type Querier interface {
	DeleteRecipe(ctx context.Context, id pgtype.UUID) error
	GetRecipe(ctx context.Context, id pgtype.UUID) (Recipe, error)
	InsertRecipe(ctx context.Context, arg InsertRecipeParams) (Recipe, error)
	InsertRecipeIngredients(ctx context.Context, arg []InsertRecipeIngredientsParams) (int64, error)
	InsertRecipeInstructions(ctx context.Context, arg []InsertRecipeInstructionsParams) (int64, error)
	ListRecipeIngredients(ctx context.Context, recipeID pgtype.UUID) ([]RecipeIngredient, error)
	ListRecipeInstructions(ctx context.Context, recipeID pgtype.UUID) ([]RecipeInstruction, error)
	ListRecipes(ctx context.Context) ([]Recipe, error)
	MatchRecipes(ctx context.Context, arg MatchRecipesParams) ([]MatchRecipesRow, error)
	SearchRecipesByName(ctx context.Context, arg SearchRecipesByNameParams) ([]Recipe, error)
	UpdateRecipeEmbedding(ctx context.Context, arg UpdateRecipeEmbeddingParams) error
}

var _ Querier = (*Queries)(nil)
