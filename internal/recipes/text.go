package recipes

import (
	"strconv"
	"strings"
)

// CompositeText renders the text a recipe is embedded from.
func CompositeText(r Recipe) string {
	var sb strings.Builder
	sb.WriteString("Recipe: ")
	sb.WriteString(r.Name)
	sb.WriteString("\n\nDescription: ")
	sb.WriteString(r.Description)
	sb.WriteString("\n\nServings: ")
	sb.WriteString(strconv.Itoa(r.Servings))
	sb.WriteString("\n\nIngredients:\n")

	lines := make([]string, 0, len(r.Ingredients))
	for _, ing := range r.Ingredients {
		lines = append(lines, ingredientLine(ing))
	}
	sb.WriteString(strings.Join(lines, "\n"))

	sb.WriteString("\n\nInstructions:\n")
	lines = lines[:0]
	for _, inst := range r.Instructions {
		lines = append(lines, inst.Instruction)
	}
	sb.WriteString(strings.Join(lines, "\n"))
	return sb.String()
}

func ingredientLine(ing Ingredient) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{ing.Amount, ing.Unit, ing.Ingredient} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// searchText lays the expanded query out like a stored recipe so the query
// embedding lands near recipe embeddings.
func searchText(expanded string) string {
	return strings.Join([]string{
		"Recipe: " + expanded,
		"",
		"Description: " + expanded,
		"",
		"Servings: 4",
		"",
		"Ingredients:",
		expanded,
		"",
		"Instructions:",
		expanded,
	}, "\n")
}
