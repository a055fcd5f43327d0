package service

import (
	"context"
	"time"

	"mealsnap/internal/model"
)

// IngestRequest carries one uploaded meal photo through the ingestion
// pipeline.
type IngestRequest struct {
	Image    []byte
	Filename string
	MealType string
}

// MealService defines the meal ingestion and retrieval operations.
type MealService interface {
	// Ingest validates the request, stores the image, has the external
	// service analyse it, and persists the resulting meal.
	Ingest(ctx context.Context, req IngestRequest) (*model.Meal, error)

	// ListMeals retrieves meals within the inclusive [start, end]
	// interval (nil bounds are unconstrained) together with the
	// calorie total and count over the result set.
	ListMeals(ctx context.Context, start, end *time.Time) (*model.MealListSummary, error)
}
