package recipes

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/pgvector/pgvector-go"

	"github.com/socialchef/gramz/internal/db"
	"github.com/socialchef/gramz/internal/metrics"
)

const (
	DefaultMatchThreshold = 0.4
	DefaultMatchCount     = 7
	DefaultNameLimit      = 20
)

// Embedder turns text into a vector.
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// SearchQueries is the query surface similarity and name search need.
type SearchQueries interface {
	ChildReader
	MatchRecipes(ctx context.Context, arg db.MatchRecipesParams) ([]db.MatchRecipesRow, error)
	SearchRecipesByName(ctx context.Context, arg db.SearchRecipesByNameParams) ([]db.Recipe, error)
}

// Searcher runs similarity search over stored recipe embeddings.
type Searcher struct {
	queries   SearchQueries
	embedder  Embedder
	expander  QueryExpander
	threshold float64
	count     int
}

func NewSearcher(queries SearchQueries, embedder Embedder, expander QueryExpander, threshold float64, count int) *Searcher {
	if expander == nil {
		expander = NoExpansion{}
	}
	s := &Searcher{
		queries:  queries,
		embedder: embedder,
		expander: expander,
	}
	s.threshold, s.count = s.normalize(threshold, count)
	return s
}

func (s *Searcher) normalize(threshold float64, count int) (float64, int) {
	switch {
	case threshold < 0:
		threshold = 0
	case threshold > 1:
		threshold = 1
	}
	if count <= 0 {
		count = DefaultMatchCount
	}
	return threshold, count
}

// Defaults returns the configured threshold and count.
func (s *Searcher) Defaults() (float64, int) {
	return s.threshold, s.count
}

// Search uses the configured threshold and count.
func (s *Searcher) Search(ctx context.Context, query string) []Match {
	return s.SearchWith(ctx, query, s.threshold, s.count)
}

// SearchWith returns the recipes whose similarity to query clears threshold,
// best first. Failures are logged and yield an empty list.
func (s *Searcher) SearchWith(ctx context.Context, query string, threshold float64, count int) []Match {
	matches := []Match{}

	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return matches
	}
	threshold, count = s.normalize(threshold, count)

	expanded := s.expander.Expand(query)
	embedding, err := s.embedder.GenerateEmbedding(ctx, searchText(expanded))
	if err != nil {
		slog.ErrorContext(ctx, "Failed to embed search query", "query", query, "error", err)
		return matches
	}
	if len(embedding) == 0 {
		slog.WarnContext(ctx, "Empty embedding for search query", "query", query)
		return matches
	}

	start := time.Now()
	rows, err := s.queries.MatchRecipes(ctx, db.MatchRecipesParams{
		QueryEmbedding: pgvector.NewVector(embedding),
		MatchThreshold: threshold,
		MatchCount:     int32(count),
	})
	if err != nil {
		slog.ErrorContext(ctx, "Failed to match recipes", "query", query, "error", err)
		return matches
	}

	for _, row := range rows {
		matches = append(matches, fromMatchRow(row))
	}

	ptrs := make([]*Recipe, len(matches))
	for i := range matches {
		ptrs[i] = &matches[i].Recipe
	}
	if err := hydrate(ctx, s.queries, ptrs); err != nil {
		slog.ErrorContext(ctx, "Failed to load recipe details", "query", query, "error", err)
		return []Match{}
	}

	metrics.RecordSearch(ctx, len(matches))
	attrs := []any{"query", query, "threshold", threshold, "count", count, "results", len(matches), "duration_ms", time.Since(start).Milliseconds()}
	if len(matches) > 0 {
		attrs = append(attrs, "top_similarity", matches[0].Similarity)
	}
	slog.InfoContext(ctx, "Recipe search completed", attrs...)
	return matches
}

// SearchByName matches recipe names case-insensitively.
func (s *Searcher) SearchByName(ctx context.Context, query string, limit int) ([]Recipe, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []Recipe{}, nil
	}
	if limit <= 0 {
		limit = DefaultNameLimit
	}

	rows, err := s.queries.SearchRecipesByName(ctx, db.SearchRecipesByNameParams{
		Query: query,
		Limit: int32(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search recipes by name: %w", err)
	}

	out := make([]Recipe, len(rows))
	ptrs := make([]*Recipe, len(rows))
	for i, row := range rows {
		out[i] = fromRow(row)
		ptrs[i] = &out[i]
	}
	if err := hydrate(ctx, s.queries, ptrs); err != nil {
		return nil, err
	}
	return out, nil
}
