package prompts

import (
	"fmt"
	"strings"
)

// Categories is the fixed list a recipe may be tagged with.
var Categories = []string{
	"Vegansk",
	"Vegetarisk",
	"Glutenfri",
	"Laktosfri",
	"Lågt kaloritag",
	"Högt protein",
	"Fika",
	"Förrätt",
	"Huvudrätt",
	"Efterrätt",
	"Soppa",
	"Sallad",
	"Snack",
	"Drink",
}

const categorizeSystem = `Du är en AI som kategoriserar recept. Givet ett recepts titel, ingredienser och instruktioner, returnera kategorin som bäst beskriver receptet.

Möjliga kategorier:
- Vegansk
- Vegetarisk
- Glutenfri (endast recept som inte innehåller produkter som innehåller gluten)
- Laktosfri (endast recept som inte innehåller produkter som innehåller laktos)
- Lågt kaloritag
- Högt protein
- Fika
- Förrätt (recept som kan serveras som förrätt)
- Huvudrätt (recept som kan serveras som huvudrätt)
- Efterrätt (recept som kan serveras som efterrätt)
- Soppa
- Sallad
- Snack
- Drink

Returnera ett JSON objekt med följande struktur:
{"category": ["kategori", "..."]}`

// Categorize returns the system and user prompts for tagging a recipe.
func Categorize(recipeText string) (system, user string) {
	return categorizeSystem, "Recept:\n" + recipeText
}

const relevanceSystem = `Du avgör om ett meddelande säger något personligt om användaren.`

// Relevance asks whether input is a personal statement. The answer is
// "true" or "false".
func Relevance(input string) (system, user string) {
	return relevanceSystem, fmt.Sprintf(`Är detta ett personligt påstående? "%s"
svara endast med "true" eller "false" i små bokstäver.`, input)
}

const summarizeSystem = `Du sammanfattar information som användaren berättar om sig själv.`

// Summarize asks for a short JSON summary of input: {"summary": "..."}.
func Summarize(input string) (system, user string) {
	return summarizeSystem, fmt.Sprintf(`Summera informationen i JSON format: "%s"
Returnera ett JSON objekt med följande struktur:
  "summary": "kort sammanfattning av informationen"`, input)
}

// IsAffirmative reports whether a relevance answer means true.
func IsAffirmative(answer string) bool {
	a := strings.ToLower(strings.TrimSpace(answer))
	a = strings.Trim(a, `".`)
	return a == "true"
}

// StripCodeFence removes a surrounding markdown code fence from a model
// answer.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
