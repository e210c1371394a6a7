package validation

import (
	"fmt"
	"regexp"
	"strings"
)

// Recipe is the shape validated before a recipe is persisted.
type Recipe struct {
	Name         string
	Description  string
	Servings     int
	Ingredients  []Ingredient
	Instructions []string
}

type Ingredient struct {
	Name   string
	Amount string
	Unit   string
}

// RecipeValidationResult contains the outcome of recipe validation
type RecipeValidationResult struct {
	IsValid         bool     `json:"is_valid"`
	Issues          []string `json:"issues"`
	HasPlaceholders bool     `json:"has_placeholders"`
	QualityScore    int      `json:"quality_score"`
}

// RecipeValidationConfig defines the minimum a recipe must carry
type RecipeValidationConfig struct {
	MinIngredients  int
	MinInstructions int
	MaxServings     int
}

func DefaultRecipeValidationConfig() RecipeValidationConfig {
	return RecipeValidationConfig{
		MinIngredients:  1,
		MinInstructions: 1,
		MaxServings:     100,
	}
}

var placeholderPattern = regexp.MustCompile(`^(\[.*\]|<.*>|x{2,}|\?+|-+)$`)

var placeholderWords = map[string]bool{
	"n/a":           true,
	"na":            true,
	"tbd":           true,
	"todo":          true,
	"unknown":       true,
	"not specified": true,
	"okänd":         true,
	"saknas":        true,
}

// DetectPlaceholders reports whether text is empty or a stand-in value
// rather than real content.
func DetectPlaceholders(text string) bool {
	t := strings.ToLower(strings.TrimSpace(text))
	if t == "" {
		return true
	}
	return placeholderWords[t] || placeholderPattern.MatchString(t)
}

// ValidateRecipe checks a recipe against config and scores it 0-100.
func ValidateRecipe(recipe Recipe, config RecipeValidationConfig) RecipeValidationResult {
	result := RecipeValidationResult{Issues: []string{}}

	if DetectPlaceholders(recipe.Name) {
		result.HasPlaceholders = true
		result.Issues = append(result.Issues, "Recipe name is missing or a placeholder")
	}

	if recipe.Servings <= 0 {
		result.Issues = append(result.Issues, "Servings must be a positive number")
	} else if config.MaxServings > 0 && recipe.Servings > config.MaxServings {
		result.Issues = append(result.Issues, fmt.Sprintf("Servings exceeds %d", config.MaxServings))
	}

	named := 0
	for i, ing := range recipe.Ingredients {
		if DetectPlaceholders(ing.Name) {
			result.HasPlaceholders = true
			result.Issues = append(result.Issues, fmt.Sprintf("Ingredient %d has no name", i+1))
			continue
		}
		named++
	}
	if named < config.MinIngredients {
		result.Issues = append(result.Issues, fmt.Sprintf("Too few ingredients (%d, need %d)", named, config.MinIngredients))
	}

	steps := 0
	for i, inst := range recipe.Instructions {
		if strings.TrimSpace(inst) == "" {
			result.Issues = append(result.Issues, fmt.Sprintf("Instruction %d is empty", i+1))
			continue
		}
		steps++
	}
	if steps < config.MinInstructions {
		result.Issues = append(result.Issues, fmt.Sprintf("Too few instructions (%d, need %d)", steps, config.MinInstructions))
	}

	result.IsValid = len(result.Issues) == 0
	result.QualityScore = qualityScore(recipe, named, steps)
	return result
}

func qualityScore(recipe Recipe, ingredients, steps int) int {
	if DetectPlaceholders(recipe.Name) && ingredients == 0 && steps == 0 {
		return 0
	}

	score := 0
	if !DetectPlaceholders(recipe.Name) {
		score += 20
	}
	if strings.TrimSpace(recipe.Description) != "" && !DetectPlaceholders(recipe.Description) {
		score += 10
	}
	if recipe.Servings > 0 {
		score += 10
	}
	score += min(ingredients*6, 30)
	score += min(steps*10, 30)
	return score
}
