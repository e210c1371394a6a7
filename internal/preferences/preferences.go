package preferences

import (
	"time"
)

// Preferences are the cooking preferences collected from chat.
type Preferences struct {
	Equipment           []string `json:"equipment"`
	Dislikes            []string `json:"dislikes"`
	Likes               []string `json:"likes"`
	DietaryRestrictions []string `json:"dietary_restrictions"`
	OtherPreferences    []string `json:"other_preferences"`
}

func (p Preferences) IsEmpty() bool {
	return len(p.Equipment) == 0 &&
		len(p.Dislikes) == 0 &&
		len(p.Likes) == 0 &&
		len(p.DietaryRestrictions) == 0 &&
		len(p.OtherPreferences) == 0
}

func (p Preferences) normalized() Preferences {
	return Preferences{
		Equipment:           nonNil(p.Equipment),
		Dislikes:            nonNil(p.Dislikes),
		Likes:               nonNil(p.Likes),
		DietaryRestrictions: nonNil(p.DietaryRestrictions),
		OtherPreferences:    nonNil(p.OtherPreferences),
	}
}

// Update is a partial preferences change. A nil field is absent and keeps
// the stored value; a non-nil field replaces it, even when empty.
type Update struct {
	Equipment           *[]string `json:"equipment,omitempty"`
	Dislikes            *[]string `json:"dislikes,omitempty"`
	Likes               *[]string `json:"likes,omitempty"`
	DietaryRestrictions *[]string `json:"dietary_restrictions,omitempty"`
	OtherPreferences    *[]string `json:"other_preferences,omitempty"`
}

func (u Update) IsEmpty() bool {
	return u.Equipment == nil &&
		u.Dislikes == nil &&
		u.Likes == nil &&
		u.DietaryRestrictions == nil &&
		u.OtherPreferences == nil
}

// Merge returns p with every field present in u replaced.
func (p Preferences) Merge(u Update) Preferences {
	merged := p
	if u.Equipment != nil {
		merged.Equipment = clone(*u.Equipment)
	}
	if u.Dislikes != nil {
		merged.Dislikes = clone(*u.Dislikes)
	}
	if u.Likes != nil {
		merged.Likes = clone(*u.Likes)
	}
	if u.DietaryRestrictions != nil {
		merged.DietaryRestrictions = clone(*u.DietaryRestrictions)
	}
	if u.OtherPreferences != nil {
		merged.OtherPreferences = clone(*u.OtherPreferences)
	}
	return merged.normalized()
}

// CookingExperience is the self-reported skill level from onboarding.
type CookingExperience string

const (
	ExperiencePoor         CookingExperience = "Dålig"
	ExperienceMedium       CookingExperience = "Medel"
	ExperienceAdvanced     CookingExperience = "Avancerad"
	ExperienceProfessional CookingExperience = "Professionell"
)

func (c CookingExperience) Valid() bool {
	switch c {
	case ExperiencePoor, ExperienceMedium, ExperienceAdvanced, ExperienceProfessional:
		return true
	}
	return false
}

// Profile is the onboarding profile. Every save appends a history row.
type Profile struct {
	CookingExperience   CookingExperience `json:"cooking_experience,omitempty"`
	CanReadRecipes      bool              `json:"can_read_recipes"`
	DietaryRestrictions string            `json:"dietary_restrictions,omitempty"`
	Equipment           []string          `json:"equipment,omitempty"`
	CreatedAt           time.Time         `json:"created_at"`
}

type ProfileUpdate struct {
	CookingExperience   *CookingExperience `json:"cooking_experience,omitempty"`
	CanReadRecipes      *bool              `json:"can_read_recipes,omitempty"`
	DietaryRestrictions *string            `json:"dietary_restrictions,omitempty"`
	Equipment           *[]string          `json:"equipment,omitempty"`
}

// Apply merges u into p and stamps the result with now.
func (p Profile) Apply(u ProfileUpdate, now time.Time) Profile {
	merged := p
	if u.CookingExperience != nil {
		merged.CookingExperience = *u.CookingExperience
	}
	if u.CanReadRecipes != nil {
		merged.CanReadRecipes = *u.CanReadRecipes
	}
	if u.DietaryRestrictions != nil {
		merged.DietaryRestrictions = *u.DietaryRestrictions
	}
	if u.Equipment != nil {
		merged.Equipment = clone(*u.Equipment)
	}
	merged.CreatedAt = now.UTC()
	return merged
}

func clone(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
