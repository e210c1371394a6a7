package recipes

import (
	"context"
	"encoding/json"
	"log/slog"
	"slices"

	"github.com/socialchef/gramz/internal/prompts"
)

// TextCompleter is a text-only model.
type TextCompleter interface {
	Complete(ctx context.Context, system, user string, jsonMode bool) (string, error)
}

// Categorizer tags recipes with labels from prompts.Categories.
type Categorizer struct {
	model TextCompleter
}

func NewCategorizer(model TextCompleter) *Categorizer {
	return &Categorizer{model: model}
}

// Categorize never fails: any error is logged and yields no categories.
func (c *Categorizer) Categorize(ctx context.Context, r Recipe) []string {
	if c == nil || c.model == nil {
		return []string{}
	}

	system, user := prompts.Categorize(CompositeText(r))
	answer, err := c.model.Complete(ctx, system, user, true)
	if err != nil {
		slog.WarnContext(ctx, "Recipe categorization failed", "recipe", r.Name, "error", err)
		return []string{}
	}

	var parsed struct {
		Category []string `json:"category"`
	}
	if err := json.Unmarshal([]byte(prompts.StripCodeFence(answer)), &parsed); err != nil {
		slog.WarnContext(ctx, "Unparseable categorization answer", "recipe", r.Name, "error", err)
		return []string{}
	}

	out := []string{}
	for _, label := range parsed.Category {
		if slices.Contains(prompts.Categories, label) && !slices.Contains(out, label) {
			out = append(out, label)
		}
	}
	return out
}
