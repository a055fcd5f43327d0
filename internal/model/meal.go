package model

import (
	"time"

	"github.com/google/uuid"
)

// MealType classifies when a meal was eaten.
type MealType string

const (
	MealTypeBreakfast MealType = "breakfast"
	MealTypeLunch     MealType = "lunch"
	MealTypeDinner    MealType = "dinner"
	MealTypeSnack     MealType = "snack"
	MealTypeOther     MealType = "other"
)

// MealTypes lists every accepted meal type, in the order clients
// present them.
var MealTypes = []MealType{
	MealTypeBreakfast,
	MealTypeSnack,
	MealTypeLunch,
	MealTypeDinner,
	MealTypeOther,
}

// Valid reports whether the meal type is one of the accepted values.
func (t MealType) Valid() bool {
	switch t {
	case MealTypeBreakfast, MealTypeLunch, MealTypeDinner, MealTypeSnack, MealTypeOther:
		return true
	}
	return false
}

// Food is a single item identified in a meal photo, with the calorie
// estimate the analysis service attached to it.
type Food struct {
	Name     string  `json:"name"`
	Calories float64 `json:"calories"`
}

// Analysis is the structured result of one vision-analysis call.
// TotalCalories is taken from the service verbatim; it is not
// recomputed from Foods.
type Analysis struct {
	Foods         []Food  `json:"foods"`
	TotalCalories float64 `json:"totalCalories"`
}

// Meal is one ingested-and-analysed food record. Meals are created
// exactly once and never updated or deleted.
type Meal struct {
	ID            uuid.UUID `json:"id" db:"id"`
	ImageURL      string    `json:"imageUrl" db:"image_url"`
	MealType      MealType  `json:"mealType" db:"meal_type"`
	Foods         []Food    `json:"foods" db:"foods"`
	TotalCalories float64   `json:"totalCalories" db:"total_calories"`
	AnalyzedAt    time.Time `json:"analyzedAt" db:"analyzed_at"`
}

// MealListSummary is the response payload for a ranged meal query.
// TotalCalories and Count are aggregates over Meals.
type MealListSummary struct {
	Meals         []Meal  `json:"meals"`
	TotalCalories float64 `json:"totalCalories"`
	Count         int     `json:"count"`
}
