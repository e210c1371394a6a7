package recipes

import (
	"context"
	"errors"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/pgvector/pgvector-go"

	"github.com/socialchef/gramz/internal/db"
)

var errInjected = errors.New("injected failure")

// fakeStore is an in-memory db.Querier with rollback support in ExecTx.
type fakeStore struct {
	mu           sync.Mutex
	recipes      map[[16]byte]db.Recipe
	order        [][16]byte
	embeddings   map[[16]byte]pgvector.Vector
	ingredients  map[[16]byte][]db.RecipeIngredient
	instructions map[[16]byte][]db.RecipeInstruction

	failIngredients  error
	failInstructions error
	failDelete       error
	failMatch        error
	failList         error

	matchRows []db.MatchRecipesRow
	lastMatch db.MatchRecipesParams

	txCalls    int
	listCalls  int
	deleteCall int
}

var _ Store = (*fakeStore)(nil)

func newFakeStore() *fakeStore {
	return &fakeStore{
		recipes:      map[[16]byte]db.Recipe{},
		embeddings:   map[[16]byte]pgvector.Vector{},
		ingredients:  map[[16]byte][]db.RecipeIngredient{},
		instructions: map[[16]byte][]db.RecipeInstruction{},
	}
}

func (f *fakeStore) ExecTx(ctx context.Context, fn func(db.Querier) error) error {
	f.mu.Lock()
	f.txCalls++
	recipes := maps.Clone(f.recipes)
	order := slices.Clone(f.order)
	embeddings := maps.Clone(f.embeddings)
	ingredients := maps.Clone(f.ingredients)
	instructions := maps.Clone(f.instructions)
	f.mu.Unlock()

	if err := fn(f); err != nil {
		f.mu.Lock()
		f.recipes, f.order, f.embeddings = recipes, order, embeddings
		f.ingredients, f.instructions = ingredients, instructions
		f.mu.Unlock()
		return err
	}
	return nil
}

func (f *fakeStore) InsertRecipe(ctx context.Context, arg db.InsertRecipeParams) (db.Recipe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := pgtype.Timestamptz{Time: time.Now().UTC(), Valid: true}
	row := db.Recipe{
		ID:          pgtype.UUID{Bytes: uuid.New(), Valid: true},
		Name:        arg.Name,
		Description: arg.Description,
		Servings:    arg.Servings,
		Category:    arg.Category,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	f.recipes[row.ID.Bytes] = row
	f.order = append(f.order, row.ID.Bytes)
	f.embeddings[row.ID.Bytes] = arg.Embedding
	return row, nil
}

func (f *fakeStore) InsertRecipeIngredients(ctx context.Context, arg []db.InsertRecipeIngredientsParams) (int64, error) {
	if f.failIngredients != nil {
		return 0, f.failIngredients
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, p := range arg {
		f.ingredients[p.RecipeID.Bytes] = append(f.ingredients[p.RecipeID.Bytes], db.RecipeIngredient{
			ID:         int64(i + 1),
			RecipeID:   p.RecipeID,
			Ingredient: p.Ingredient,
			Amount:     p.Amount,
			Unit:       p.Unit,
		})
	}
	return int64(len(arg)), nil
}

func (f *fakeStore) InsertRecipeInstructions(ctx context.Context, arg []db.InsertRecipeInstructionsParams) (int64, error) {
	if f.failInstructions != nil {
		return 0, f.failInstructions
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, p := range arg {
		f.instructions[p.RecipeID.Bytes] = append(f.instructions[p.RecipeID.Bytes], db.RecipeInstruction{
			ID:          int64(i + 1),
			RecipeID:    p.RecipeID,
			StepNumber:  p.StepNumber,
			Instruction: p.Instruction,
		})
	}
	return int64(len(arg)), nil
}

func (f *fakeStore) DeleteRecipe(ctx context.Context, id pgtype.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleteCall++
	if f.failDelete != nil {
		return f.failDelete
	}
	delete(f.recipes, id.Bytes)
	delete(f.embeddings, id.Bytes)
	delete(f.ingredients, id.Bytes)
	delete(f.instructions, id.Bytes)
	f.order = slices.DeleteFunc(f.order, func(b [16]byte) bool { return b == id.Bytes })
	return nil
}

func (f *fakeStore) GetRecipe(ctx context.Context, id pgtype.UUID) (db.Recipe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.recipes[id.Bytes]
	if !ok {
		return db.Recipe{}, pgx.ErrNoRows
	}
	return row, nil
}

func (f *fakeStore) ListRecipes(ctx context.Context) ([]db.Recipe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.failList != nil {
		return nil, f.failList
	}
	out := make([]db.Recipe, 0, len(f.order))
	for i := len(f.order) - 1; i >= 0; i-- {
		out = append(out, f.recipes[f.order[i]])
	}
	return out, nil
}

func (f *fakeStore) ListRecipeIngredients(ctx context.Context, recipeID pgtype.UUID) ([]db.RecipeIngredient, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.ingredients[recipeID.Bytes]), nil
}

func (f *fakeStore) ListRecipeInstructions(ctx context.Context, recipeID pgtype.UUID) ([]db.RecipeInstruction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.instructions[recipeID.Bytes]), nil
}

// MatchRecipes returns the canned rows that clear the threshold, capped at
// the count, like the match_recipes function does.
func (f *fakeStore) MatchRecipes(ctx context.Context, arg db.MatchRecipesParams) ([]db.MatchRecipesRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastMatch = arg
	if f.failMatch != nil {
		return nil, f.failMatch
	}
	var out []db.MatchRecipesRow
	for _, row := range f.matchRows {
		if row.Similarity > arg.MatchThreshold && len(out) < int(arg.MatchCount) {
			out = append(out, row)
		}
	}
	return out, nil
}

func (f *fakeStore) SearchRecipesByName(ctx context.Context, arg db.SearchRecipesByNameParams) ([]db.Recipe, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []db.Recipe
	for _, id := range f.order {
		if r := f.recipes[id]; strings.Contains(strings.ToLower(r.Name), strings.ToLower(arg.Query)) && len(out) < int(arg.Limit) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateRecipeEmbedding(ctx context.Context, arg db.UpdateRecipeEmbeddingParams) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.recipes[arg.ID.Bytes]; !ok {
		return pgx.ErrNoRows
	}
	f.embeddings[arg.ID.Bytes] = arg.Embedding
	return nil
}

func (f *fakeStore) recipeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.recipes)
}

// fakeEmbedder records the texts it embeds.
type fakeEmbedder struct {
	mu     sync.Mutex
	texts  []string
	err    error
	vector []float32
}

func (e *fakeEmbedder) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.texts = append(e.texts, text)
	if e.err != nil {
		return nil, e.err
	}
	if e.vector != nil {
		return e.vector, nil
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

func (e *fakeEmbedder) calls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.texts)
}

func testRecipe() Recipe {
	return Recipe{
		Name:        "Köttbullar",
		Description: "Klassiska köttbullar",
		Servings:    4,
		Ingredients: []Ingredient{
			{Ingredient: "blandfärs", Amount: "500", Unit: "g"},
			{Ingredient: "ägg", Amount: "1"},
			{Ingredient: "salt"},
		},
		Instructions: []Instruction{
			{StepNumber: 5, Instruction: "Blanda färs och ägg."},
			{StepNumber: 5, Instruction: "Rulla bullar."},
			{StepNumber: 1, Instruction: "Stek i smör."},
		},
	}
}
