package recipes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/socialchef/gramz/internal/cache"
	"github.com/socialchef/gramz/internal/db"
	apperrors "github.com/socialchef/gramz/internal/errors"
	"github.com/socialchef/gramz/internal/metrics"
)

const listCacheKey = "recipes:list"

// CatalogQueries is the query surface the catalog needs.
type CatalogQueries interface {
	ChildReader
	ListRecipes(ctx context.Context) ([]db.Recipe, error)
	GetRecipe(ctx context.Context, id pgtype.UUID) (db.Recipe, error)
}

// Catalog lists stored recipes with their children, newest first, behind a
// cache that is cleared whenever a recipe is stored.
type Catalog struct {
	queries CatalogQueries
	cache   cache.Cache
	ttl     time.Duration
}

func NewCatalog(queries CatalogQueries, c cache.Cache, ttl time.Duration) *Catalog {
	if c == nil {
		c = cache.NewMemoryCache()
	}
	return &Catalog{queries: queries, cache: c, ttl: ttl}
}

func (c *Catalog) List(ctx context.Context) ([]Recipe, error) {
	var cached []Recipe
	hit, err := c.cache.Get(ctx, listCacheKey, &cached)
	if err != nil {
		slog.WarnContext(ctx, "Failed to read cached recipe list", "error", err)
	}
	if hit {
		metrics.RecordCacheLookup(ctx, true)
		return cached, nil
	}
	metrics.RecordCacheLookup(ctx, false)

	rows, err := c.queries.ListRecipes(ctx)
	if err != nil {
		return nil, apperrors.NewPersistenceError("failed to list recipes", "RECIPE_LIST_FAILED", err)
	}

	out := make([]Recipe, len(rows))
	ptrs := make([]*Recipe, len(rows))
	for i, row := range rows {
		out[i] = fromRow(row)
		ptrs[i] = &out[i]
	}
	if err := hydrate(ctx, c.queries, ptrs); err != nil {
		return nil, apperrors.NewPersistenceError("failed to load recipe details", "RECIPE_LIST_FAILED", err)
	}

	if err := c.cache.Set(ctx, listCacheKey, out, c.ttl); err != nil {
		slog.WarnContext(ctx, "Failed to cache recipe list", "error", err)
	}
	return out, nil
}

func (c *Catalog) Get(ctx context.Context, id string) (Recipe, error) {
	pgID, err := db.ParseUUID(id)
	if err != nil {
		return Recipe{}, apperrors.NewValidationError(err.Error(), "INVALID_RECIPE_ID", "Use the recipe's UUID")
	}

	row, err := c.queries.GetRecipe(ctx, pgID)
	if err != nil {
		return Recipe{}, notFoundOr(err, id)
	}

	r := fromRow(row)
	if err := hydrate(ctx, c.queries, []*Recipe{&r}); err != nil {
		return Recipe{}, apperrors.NewPersistenceError("failed to load recipe details", "RECIPE_GET_FAILED", err)
	}
	return r, nil
}

// Invalidate drops the cached recipe list.
func (c *Catalog) Invalidate(ctx context.Context) {
	if err := c.cache.Delete(ctx, listCacheKey); err != nil {
		slog.WarnContext(ctx, "Failed to invalidate recipe list", "error", err)
	}
}

// OnRecipeStored satisfies the agent's store hook.
func (c *Catalog) OnRecipeStored(ctx context.Context, _ Recipe) {
	c.Invalidate(ctx)
}

func notFoundOr(err error, id string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFoundError(fmt.Sprintf("recipe %s not found", id), "RECIPE_NOT_FOUND", "")
	}
	return apperrors.NewPersistenceError("failed to load recipe", "RECIPE_GET_FAILED", err)
}
