package recipes

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/socialchef/gramz/internal/db"
)

// seedMatch stores r and registers it as a match with the given similarity.
func seedMatch(t *testing.T, store *fakeStore, r Recipe, similarity float64) string {
	t.Helper()
	stored, err := NewPersister(store, &fakeEmbedder{}, Transactional).Store(context.Background(), r)
	require.NoError(t, err)

	id, err := db.ParseUUID(stored.ID)
	require.NoError(t, err)
	row, err := store.GetRecipe(context.Background(), id)
	require.NoError(t, err)

	store.matchRows = append(store.matchRows, db.MatchRecipesRow{
		ID:          row.ID,
		Name:        row.Name,
		Description: row.Description,
		Servings:    row.Servings,
		Category:    row.Category,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
		Similarity:  similarity,
	})
	return stored.ID
}

func TestSearchReturnsHydratedMatches(t *testing.T) {
	store := newFakeStore()
	id := seedMatch(t, store, testRecipe(), 0.82)

	embedder := &fakeEmbedder{}
	s := NewSearcher(store, embedder, SwedishSuffix{}, DefaultMatchThreshold, DefaultMatchCount)

	matches := s.Search(context.Background(), "  Köttbullar ")
	require.Len(t, matches, 1)
	assert.Equal(t, id, matches[0].ID)
	assert.InDelta(t, 0.82, matches[0].Similarity, 1e-9)
	assert.Len(t, matches[0].Ingredients, 3)
	require.Len(t, matches[0].Instructions, 3)
	assert.Equal(t, 3, matches[0].Instructions[2].StepNumber)

	require.Equal(t, 1, embedder.calls())
	assert.Equal(t, searchText(SwedishSuffix{}.Expand("köttbullar")), embedder.texts[0])
	assert.Equal(t, 0.4, store.lastMatch.MatchThreshold)
	assert.Equal(t, int32(7), store.lastMatch.MatchCount)
}

func TestSearchThresholdOneWithoutExactMatch(t *testing.T) {
	store := newFakeStore()
	seedMatch(t, store, testRecipe(), 0.93)

	s := NewSearcher(store, &fakeEmbedder{}, NoExpansion{}, DefaultMatchThreshold, DefaultMatchCount)
	matches := s.SearchWith(context.Background(), "köttbullar", 1.0, 7)

	assert.NotNil(t, matches)
	assert.Empty(t, matches)
}

func TestSearchClampsArguments(t *testing.T) {
	store := newFakeStore()
	s := NewSearcher(store, &fakeEmbedder{}, NoExpansion{}, DefaultMatchThreshold, DefaultMatchCount)

	s.SearchWith(context.Background(), "soppa", 3.5, -1)
	assert.Equal(t, 1.0, store.lastMatch.MatchThreshold)
	assert.Equal(t, int32(DefaultMatchCount), store.lastMatch.MatchCount)

	s.SearchWith(context.Background(), "soppa", -0.2, 2)
	assert.Equal(t, 0.0, store.lastMatch.MatchThreshold)
	assert.Equal(t, int32(2), store.lastMatch.MatchCount)
}

func TestSearchEmbeddingFailureYieldsEmptyList(t *testing.T) {
	store := newFakeStore()
	seedMatch(t, store, testRecipe(), 0.9)

	s := NewSearcher(store, &fakeEmbedder{err: errors.New("embedding endpoint unavailable")}, SwedishSuffix{}, DefaultMatchThreshold, DefaultMatchCount)

	var logs bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&logs, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	var matches []Match
	assert.NotPanics(t, func() {
		matches = s.Search(context.Background(), "köttbullar")
	})
	assert.NotNil(t, matches)
	assert.Empty(t, matches)
	assert.Equal(t, db.MatchRecipesParams{}, store.lastMatch)
	assert.Contains(t, logs.String(), "Failed to embed search query")
	assert.Contains(t, logs.String(), "embedding endpoint unavailable")
}

func TestSearchBackendFailureYieldsEmptyList(t *testing.T) {
	store := newFakeStore()
	store.failMatch = errInjected

	s := NewSearcher(store, &fakeEmbedder{}, SwedishSuffix{}, DefaultMatchThreshold, DefaultMatchCount)
	matches := s.Search(context.Background(), "köttbullar")
	assert.Empty(t, matches)
}

func TestSearchEmptyQuery(t *testing.T) {
	embedder := &fakeEmbedder{}
	s := NewSearcher(newFakeStore(), embedder, SwedishSuffix{}, DefaultMatchThreshold, DefaultMatchCount)

	assert.Empty(t, s.Search(context.Background(), "   "))
	assert.Equal(t, 0, embedder.calls())
}

func TestSearchRespectsCount(t *testing.T) {
	store := newFakeStore()
	for i := 0; i < 5; i++ {
		seedMatch(t, store, testRecipe(), 0.9-float64(i)*0.01)
	}

	s := NewSearcher(store, &fakeEmbedder{}, NoExpansion{}, DefaultMatchThreshold, 3)
	assert.Len(t, s.Search(context.Background(), "köttbullar"), 3)
}

func TestSearchByName(t *testing.T) {
	store := newFakeStore()
	seedMatch(t, store, testRecipe(), 0.5)

	s := NewSearcher(store, &fakeEmbedder{}, NoExpansion{}, DefaultMatchThreshold, DefaultMatchCount)

	found, err := s.SearchByName(context.Background(), "KÖTT", 0)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Len(t, found[0].Ingredients, 3)

	none, err := s.SearchByName(context.Background(), "", 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}
