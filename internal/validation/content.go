package validation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Confidence represents certainty in the validation result
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// ContentValidationResult contains the outcome of validation
type ContentValidationResult struct {
	IsValid    bool       `json:"is_valid"`
	Confidence Confidence `json:"confidence"`
	Reason     string     `json:"reason"`
	Missing    []string   `json:"missing"`
}

// ContentValidationConfig defines settings for draft request validation
type ContentValidationConfig struct {
	EnableAIValidation bool
	MinLength          int
	MaxLength          int
}

func DefaultContentValidationConfig() ContentValidationConfig {
	return ContentValidationConfig{
		MinLength: 3,
		MaxLength: 4000,
	}
}

// Completer is a text-only model used for AI validation.
type Completer interface {
	Complete(ctx context.Context, system, user string, jsonMode bool) (string, error)
}

// foodKeywords for quick heuristic validation, Swedish first.
var foodKeywords = []string{
	"recept", "rätt", "middag", "lunch", "frukost", "fika", "efterrätt", "förrätt", "soppa", "sallad",
	"laga", "baka", "koka", "steka", "grilla", "ugn", "kastrull", "stekpanna",
	"kött", "kyckling", "fisk", "lax", "pasta", "ris", "potatis", "grönsak", "vegetarisk", "vegansk",
	"mjöl", "socker", "smör", "ägg", "mjölk", "grädde", "ost", "lök", "vitlök", "tomat",
	"portion", "personer",
	"recipe", "dish", "dinner", "cook", "bake", "meal", "chicken", "soup", "salad", "dessert",
}

// QuickValidate performs a fast heuristic check of a recipe draft request
// without API calls.
func QuickValidate(requirements string, config ContentValidationConfig) ContentValidationResult {
	content := strings.TrimSpace(requirements)

	if len(content) < config.MinLength {
		reason := fmt.Sprintf("Request too short (%d chars). Need at least %d chars.", len(content), config.MinLength)
		if len(content) == 0 {
			reason = "No content provided"
		}
		return ContentValidationResult{
			IsValid:    false,
			Confidence: ConfidenceHigh,
			Reason:     reason,
			Missing:    []string{"sufficient content length"},
		}
	}

	if config.MaxLength > 0 && len(content) > config.MaxLength {
		return ContentValidationResult{
			IsValid:    false,
			Confidence: ConfidenceHigh,
			Reason:     fmt.Sprintf("Request too long (%d chars). Max %d chars.", len(content), config.MaxLength),
			Missing:    []string{},
		}
	}

	lowerContent := strings.ToLower(content)
	for _, kw := range foodKeywords {
		if strings.Contains(lowerContent, kw) {
			return ContentValidationResult{
				IsValid:    true,
				Confidence: ConfidenceHigh,
				Reason:     "Request passed quick validation",
				Missing:    []string{},
			}
		}
	}

	return ContentValidationResult{
		IsValid:    true,
		Confidence: ConfidenceMedium,
		Reason:     "Request has sufficient length but no common food keywords found",
		Missing:    []string{"food keywords"},
	}
}

// AIValidate asks a model whether the request describes a dish to cook.
func AIValidate(ctx context.Context, requirements string, completer Completer) (ContentValidationResult, error) {
	if completer == nil {
		return ContentValidationResult{}, fmt.Errorf("completer is required for AI validation")
	}

	prompt := fmt.Sprintf(`Analyze if this request asks for a recipe or describes a dish that can be cooked.

Request:
%s

Respond with ONLY a JSON object (no additional text):
{
  "is_recipe_request": true or false,
  "confidence": "high", "medium", or "low",
  "reason": "brief explanation",
  "missing": ["list", "of", "missing", "elements"]
}`, requirements)

	resp, err := completer.Complete(ctx, "You are a recipe request validator. Analyze content and respond with JSON only.", prompt, true)
	if err != nil {
		return ContentValidationResult{
			IsValid:    false,
			Confidence: ConfidenceLow,
			Reason:     fmt.Sprintf("AI validation failed: %v", err),
			Missing:    []string{"ai validation"},
		}, err
	}

	var parsed struct {
		IsRecipeRequest bool     `json:"is_recipe_request"`
		Confidence      string   `json:"confidence"`
		Reason          string   `json:"reason"`
		Missing         []string `json:"missing"`
	}

	if err := json.Unmarshal([]byte(resp), &parsed); err != nil {
		return ContentValidationResult{
			IsValid:    false,
			Confidence: ConfidenceLow,
			Reason:     fmt.Sprintf("Failed to parse AI response: %v", err),
			Missing:    []string{"ai validation parsing"},
		}, err
	}

	return ContentValidationResult{
		IsValid:    parsed.IsRecipeRequest,
		Confidence: Confidence(parsed.Confidence),
		Reason:     parsed.Reason,
		Missing:    parsed.Missing,
	}, nil
}

// ValidateContent decides which validation strategy to use
func ValidateContent(ctx context.Context, requirements string, config ContentValidationConfig, completer Completer) (ContentValidationResult, error) {
	quickResult := QuickValidate(requirements, config)

	if quickResult.Confidence == ConfidenceHigh {
		return quickResult, nil
	}

	if !config.EnableAIValidation || completer == nil {
		return quickResult, nil
	}

	aiResult, err := AIValidate(ctx, requirements, completer)
	if err != nil {
		if quickResult.IsValid {
			return quickResult, nil
		}
		return aiResult, err
	}

	if aiResult.Confidence == ConfidenceHigh {
		return aiResult, nil
	}
	return quickResult, nil
}
