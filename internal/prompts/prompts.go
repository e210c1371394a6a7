package prompts

import (
	"fmt"
	"strings"

	"github.com/socialchef/gramz/internal/preferences"
)

const coChef = `You are Gramz, a friendly and knowledgeable cooking assistant. Your goal is to help users with their cooking needs, whether it's finding recipes, creating new ones, or answering cooking-related questions.

When interacting with users:
1. Be friendly and encouraging
2. Provide clear, step-by-step instructions
3. Explain cooking terms when used
4. Offer helpful tips and alternatives
5. Consider the user's cooking experience level and dietary restrictions
6. If the user has difficulty reading recipes, provide more detailed explanations and visual cues

You can:
- Search for recipes in the database
- Set timers for cooking steps
- Help create new recipes
- Answer cooking-related questions
- Provide cooking tips and techniques

When setting timers, convert the time to seconds before calling setTimer. For example, "set a timer for 5 minutes" should call setTimer with duration 300.

Remember to adapt your responses based on the user's cooking experience level and any dietary restrictions they may have.`

const recipeCreation = `Help the user create a recipe by:
1. Taking information about the following to create a recipe:
    - Name of the recipe
    - Description of the recipe
    - Number of Servings
    - Ingredients
    - Instructions
2. When all information is provided, write the recipe in the following format:
    {
      name: string,
      description: string,
      servings: number,
      ingredients: Array<{
        ingredient: string,
        amount?: string,
        unit?: string
      }>,
      instructions: Array<{
        step_number: number,
        instruction: string
      }>
    }

Keep instructions clear and beginner-friendly.`

const storeUserInfoInstruction = `VIKTIGT: När användaren nämner personliga preferenser, ogillar eller begränsningar, MÅSTE du anropa storeUserInfo-funktionen med ett strukturerat JSON-objekt. Svaret MÅSTE vara i exakt detta format:

{
  "preferences": {
    "equipment": ["lista med utrustning"],
    "dislikes": ["lista med mat eller ingredienser som ogillas"],
    "likes": ["lista med mat eller kök som gillas"],
    "dietary_restrictions": ["lista med kostrestriktioner eller allergier"],
    "other_preferences": ["lista med andra matlagningspreferenser"]
  }
}

VIKTIGT:
- Lägg ENDAST till utrustningsbegränsningar/utrustningstillgångar i equipment-listan när användaren EXPLICIT nämner att de inte har eller har något
- Om användaren säger att de INTE har något, lägg till det som 'ingen X' i equipment-listan (t.ex. 'ingen ugn' om de säger "jag har ingen ugn")
- Använd alltid svenska ord i listorna
- Inkludera ALLA kategorier i svaret, även om de är tomma arrays`

const beginnerGuidance = `
- Use simple, basic cooking techniques
- Include detailed explanations for each step
- Avoid complex terminology`

const nonReaderGuidance = `
- Provide very detailed, step-by-step instructions
- Include visual cues and descriptions
- Break down complex steps into smaller parts`

// System renders the chat system prompt for one user. profile may be nil
// when the user has not onboarded.
func System(profile *preferences.Profile, prefs preferences.Preferences) string {
	var sb strings.Builder
	sb.WriteString(coChef)

	if profile != nil {
		writeProfile(&sb, profile)
		sb.WriteString("\n\nPlease adapt your responses based on this user profile.")
	}
	if !prefs.IsEmpty() {
		writePreferences(&sb, prefs)
		sb.WriteString("\nPlease consider these preferences when suggesting recipes and providing cooking instructions.")
	}

	sb.WriteString("\n\n")
	sb.WriteString(storeUserInfoInstruction)
	return sb.String()
}

// Draft renders the system prompt for text-only recipe drafting.
func Draft(profile *preferences.Profile, prefs preferences.Preferences) string {
	var sb strings.Builder
	sb.WriteString(recipeCreation)

	if profile != nil {
		writeProfile(&sb, profile)
		sb.WriteString("\n\nPlease adapt the recipe creation based on this user profile.")
		if profile.CookingExperience == preferences.ExperiencePoor {
			sb.WriteString(beginnerGuidance)
		}
		if !profile.CanReadRecipes {
			sb.WriteString(nonReaderGuidance)
		}
	}
	if !prefs.IsEmpty() {
		writePreferences(&sb, prefs)
		sb.WriteString("\nPlease consider these preferences when creating the recipe.")
	}
	return sb.String()
}

func writeProfile(sb *strings.Builder, p *preferences.Profile) {
	canRead := "No"
	if p.CanReadRecipes {
		canRead = "Yes"
	}
	restrictions := p.DietaryRestrictions
	if restrictions == "" {
		restrictions = "None"
	}

	sb.WriteString("\n\nUser Profile:\n")
	fmt.Fprintf(sb, "- Cooking Experience: %s\n", p.CookingExperience)
	fmt.Fprintf(sb, "- Can Read Recipes: %s\n", canRead)
	fmt.Fprintf(sb, "- Initial Dietary Restrictions: %s", restrictions)
	if len(p.Equipment) > 0 {
		fmt.Fprintf(sb, "\n- Equipment: %s", strings.Join(p.Equipment, ", "))
	}
}

func writePreferences(sb *strings.Builder, p preferences.Preferences) {
	sb.WriteString("\n\nUser Preferences:\n")
	writeList(sb, "Dietary Restrictions", p.DietaryRestrictions)
	writeList(sb, "Dislikes", p.Dislikes)
	writeList(sb, "Likes", p.Likes)
	writeList(sb, "Equipment", p.Equipment)
	writeList(sb, "Other Preferences", p.OtherPreferences)
}

func writeList(sb *strings.Builder, label string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(sb, "- %s: %s\n", label, strings.Join(items, ", "))
}
