package repository

import (
	"context"
	"time"

	"mealsnap/internal/model"
)

// MealRepository defines the interface for meal data access operations.
type MealRepository interface {
	// Insert persists a fully-formed meal. A colliding ID yields
	// model.ErrDuplicateMeal.
	Insert(ctx context.Context, meal *model.Meal) error

	// FindByRange retrieves meals whose analyzedAt falls within the
	// inclusive [start, end] interval, most recent first. A nil bound
	// leaves that side unconstrained; both nil returns every meal.
	FindByRange(ctx context.Context, start, end *time.Time) ([]model.Meal, error)

	// EnsureSchema creates the meals table and indexes if they do not
	// exist. Safe to call on every startup.
	EnsureSchema(ctx context.Context) error
}
