package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/pgvector/pgvector-go"
)

const insertRecipe = `-- name: InsertRecipe :one
INSERT INTO recipes (name, description, servings, embedding, category)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, name, description, servings, category, created_at, updated_at
`

type InsertRecipeParams struct {
	Name        string          `json:"name"`
	Description pgtype.Text     `json:"description"`
	Servings    int32           `json:"servings"`
	Embedding   pgvector.Vector `json:"embedding"`
	Category    []string        `json:"category"`
}

func (q *Queries) InsertRecipe(ctx context.Context, arg InsertRecipeParams) (Recipe, error) {
	row := q.db.QueryRow(ctx, insertRecipe,
		arg.Name,
		arg.Description,
		arg.Servings,
		arg.Embedding,
		arg.Category,
	)
	var i Recipe
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Description,
		&i.Servings,
		&i.Category,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const deleteRecipe = `-- name: DeleteRecipe :exec
DELETE FROM recipes WHERE id = $1
`

func (q *Queries) DeleteRecipe(ctx context.Context, id pgtype.UUID) error {
	_, err := q.db.Exec(ctx, deleteRecipe, id)
	return err
}

const getRecipe = `-- name: GetRecipe :one
SELECT id, name, description, servings, category, created_at, updated_at
FROM recipes
WHERE id = $1
`

func (q *Queries) GetRecipe(ctx context.Context, id pgtype.UUID) (Recipe, error) {
	row := q.db.QueryRow(ctx, getRecipe, id)
	var i Recipe
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Description,
		&i.Servings,
		&i.Category,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const listRecipes = `-- name: ListRecipes :many
SELECT id, name, description, servings, category, created_at, updated_at
FROM recipes
ORDER BY created_at DESC
`

func (q *Queries) ListRecipes(ctx context.Context) ([]Recipe, error) {
	rows, err := q.db.Query(ctx, listRecipes)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Recipe
	for rows.Next() {
		var i Recipe
		if err := rows.Scan(
			&i.ID,
			&i.Name,
			&i.Description,
			&i.Servings,
			&i.Category,
			&i.CreatedAt,
			&i.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const searchRecipesByName = `-- name: SearchRecipesByName :many
SELECT id, name, description, servings, category, created_at, updated_at
FROM recipes
WHERE name ILIKE '%' || $1 || '%'
ORDER BY created_at DESC
LIMIT $2
`

type SearchRecipesByNameParams struct {
	Query string `json:"query"`
	Limit int32  `json:"limit"`
}

func (q *Queries) SearchRecipesByName(ctx context.Context, arg SearchRecipesByNameParams) ([]Recipe, error) {
	rows, err := q.db.Query(ctx, searchRecipesByName, arg.Query, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Recipe
	for rows.Next() {
		var i Recipe
		if err := rows.Scan(
			&i.ID,
			&i.Name,
			&i.Description,
			&i.Servings,
			&i.Category,
			&i.CreatedAt,
			&i.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const matchRecipes = `-- name: MatchRecipes :many
SELECT id, name, description, servings, category, created_at, updated_at, similarity
FROM match_recipes($1::vector, $2::float8, $3::int)
`

type MatchRecipesParams struct {
	QueryEmbedding pgvector.Vector `json:"query_embedding"`
	MatchThreshold float64         `json:"match_threshold"`
	MatchCount     int32           `json:"match_count"`
}

type MatchRecipesRow struct {
	ID          pgtype.UUID        `json:"id"`
	Name        string             `json:"name"`
	Description pgtype.Text        `json:"description"`
	Servings    int32              `json:"servings"`
	Category    []string           `json:"category"`
	CreatedAt   pgtype.Timestamptz `json:"created_at"`
	UpdatedAt   pgtype.Timestamptz `json:"updated_at"`
	Similarity  float64            `json:"similarity"`
}

func (q *Queries) MatchRecipes(ctx context.Context, arg MatchRecipesParams) ([]MatchRecipesRow, error) {
	rows, err := q.db.Query(ctx, matchRecipes, arg.QueryEmbedding, arg.MatchThreshold, arg.MatchCount)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []MatchRecipesRow
	for rows.Next() {
		var i MatchRecipesRow
		if err := rows.Scan(
			&i.ID,
			&i.Name,
			&i.Description,
			&i.Servings,
			&i.Category,
			&i.CreatedAt,
			&i.UpdatedAt,
			&i.Similarity,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const updateRecipeEmbedding = `-- name: UpdateRecipeEmbedding :exec
UPDATE recipes SET embedding = $2, updated_at = now() WHERE id = $1
`

type UpdateRecipeEmbeddingParams struct {
	ID        pgtype.UUID     `json:"id"`
	Embedding pgvector.Vector `json:"embedding"`
}

func (q *Queries) UpdateRecipeEmbedding(ctx context.Context, arg UpdateRecipeEmbeddingParams) error {
	_, err := q.db.Exec(ctx, updateRecipeEmbedding, arg.ID, arg.Embedding)
	return err
}
