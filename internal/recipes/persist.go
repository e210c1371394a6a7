package recipes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pgvector/pgvector-go"

	"github.com/socialchef/gramz/internal/db"
	apperrors "github.com/socialchef/gramz/internal/errors"
	"github.com/socialchef/gramz/internal/metrics"
)

// WriteMode selects how the three inserts of a recipe store relate.
type WriteMode string

const (
	// Transactional runs every insert in one transaction.
	Transactional WriteMode = "transactional"
	// Compensating deletes the recipe row when a child insert fails.
	Compensating WriteMode = "compensating"
	// BestEffort leaves the recipe row behind when a child insert fails.
	BestEffort WriteMode = "best_effort"
)

func ParseWriteMode(s string) (WriteMode, error) {
	switch m := WriteMode(s); m {
	case Transactional, Compensating, BestEffort:
		return m, nil
	case "":
		return Transactional, nil
	default:
		return "", fmt.Errorf("unknown write mode %q", s)
	}
}

// Store is the database surface persistence needs. *db.Store satisfies it.
type Store interface {
	db.Querier
	ExecTx(ctx context.Context, fn func(db.Querier) error) error
}

// Persister stores recipes and makes them searchable.
type Persister struct {
	store    Store
	embedder Embedder
	mode     WriteMode
}

func NewPersister(store Store, embedder Embedder, mode WriteMode) *Persister {
	if mode == "" {
		mode = Transactional
	}
	return &Persister{store: store, embedder: embedder, mode: mode}
}

func (p *Persister) Mode() WriteMode {
	return p.mode
}

// Store validates, embeds and inserts r. Instruction steps are renumbered
// 1..N. The stored recipe is returned with its id.
func (p *Persister) Store(ctx context.Context, r Recipe) (stored Recipe, err error) {
	defer func() {
		metrics.RecordRecipeStore(ctx, string(p.mode), err)
	}()

	if err := r.Validate(); err != nil {
		return Recipe{}, err
	}
	r = r.Renumbered()

	embedding, err := p.embedder.GenerateEmbedding(ctx, CompositeText(r))
	if err != nil {
		return Recipe{}, apperrors.NewProviderError("failed to generate recipe embedding", "EMBEDDING_FAILED", err)
	}
	if len(embedding) == 0 {
		return Recipe{}, apperrors.NewProviderError("failed to generate recipe embedding", "EMBEDDING_FAILED", errors.New("empty embedding"))
	}
	vec := pgvector.NewVector(embedding)

	var row db.Recipe
	switch p.mode {
	case Transactional:
		err = p.store.ExecTx(ctx, func(q db.Querier) error {
			var txErr error
			row, txErr = insertRecipe(ctx, q, r, vec)
			return txErr
		})
	case Compensating:
		row, err = insertRecipe(ctx, p.store, r, vec)
		if err != nil && row.ID.Valid {
			if delErr := p.store.DeleteRecipe(ctx, row.ID); delErr != nil {
				slog.ErrorContext(ctx, "Failed to remove partially stored recipe",
					"recipe_id", db.UUIDString(row.ID), "error", delErr)
				err = errors.Join(err, delErr)
			}
		}
	default:
		row, err = insertRecipe(ctx, p.store, r, vec)
		if err != nil && row.ID.Valid {
			slog.WarnContext(ctx, "Recipe row left without children",
				"recipe_id", db.UUIDString(row.ID), "error", err)
		}
	}
	if err != nil {
		return Recipe{}, apperrors.NewPersistenceError("failed to store recipe", "RECIPE_STORE_FAILED", err)
	}

	stored = r
	stored.ID = db.UUIDString(row.ID)
	stored.CreatedAt = row.CreatedAt.Time
	stored.UpdatedAt = row.UpdatedAt.Time

	slog.InfoContext(ctx, "Recipe stored",
		"recipe_id", stored.ID,
		"name", stored.Name,
		"ingredients", len(stored.Ingredients),
		"instructions", len(stored.Instructions),
		"write_mode", string(p.mode),
	)
	return stored, nil
}

// insertRecipe inserts the recipe row and its children. When the recipe row
// was written but a child insert failed, the returned row still carries the
// new id.
func insertRecipe(ctx context.Context, q db.Querier, r Recipe, embedding pgvector.Vector) (db.Recipe, error) {
	category := r.Category
	if category == nil {
		category = []string{}
	}

	row, err := q.InsertRecipe(ctx, db.InsertRecipeParams{
		Name:        r.Name,
		Description: db.Text(r.Description),
		Servings:    int32(r.Servings),
		Embedding:   embedding,
		Category:    category,
	})
	if err != nil {
		return db.Recipe{}, fmt.Errorf("insert recipe: %w", err)
	}

	ingredients := make([]db.InsertRecipeIngredientsParams, len(r.Ingredients))
	for i, ing := range r.Ingredients {
		ingredients[i] = db.InsertRecipeIngredientsParams{
			RecipeID:   row.ID,
			Ingredient: ing.Ingredient,
			Amount:     db.Text(ing.Amount),
			Unit:       db.Text(ing.Unit),
		}
	}
	if _, err := q.InsertRecipeIngredients(ctx, ingredients); err != nil {
		return row, fmt.Errorf("insert ingredients: %w", err)
	}

	instructions := make([]db.InsertRecipeInstructionsParams, len(r.Instructions))
	for i, inst := range r.Instructions {
		instructions[i] = db.InsertRecipeInstructionsParams{
			RecipeID:    row.ID,
			StepNumber:  int32(inst.StepNumber),
			Instruction: inst.Instruction,
		}
	}
	if _, err := q.InsertRecipeInstructions(ctx, instructions); err != nil {
		return row, fmt.Errorf("insert instructions: %w", err)
	}
	return row, nil
}

// Reembed recomputes the embedding of a stored recipe from its current rows.
func (p *Persister) Reembed(ctx context.Context, id string) error {
	pgID, err := db.ParseUUID(id)
	if err != nil {
		return apperrors.NewValidationError(err.Error(), "INVALID_RECIPE_ID", "Use the recipe's UUID")
	}

	row, err := p.store.GetRecipe(ctx, pgID)
	if err != nil {
		return notFoundOr(err, id)
	}
	r := fromRow(row)
	if err := hydrate(ctx, p.store, []*Recipe{&r}); err != nil {
		return err
	}

	embedding, err := p.embedder.GenerateEmbedding(ctx, CompositeText(r))
	if err != nil {
		return apperrors.NewProviderError("failed to generate recipe embedding", "EMBEDDING_FAILED", err)
	}
	if len(embedding) == 0 {
		return apperrors.NewProviderError("failed to generate recipe embedding", "EMBEDDING_FAILED", errors.New("empty embedding"))
	}
	return p.store.UpdateRecipeEmbedding(ctx, db.UpdateRecipeEmbeddingParams{
		ID:        pgID,
		Embedding: pgvector.NewVector(embedding),
	})
}
