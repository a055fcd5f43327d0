package service

import (
	"context"
	"fmt"
	"time"

	"mealsnap/internal/analysis"
	"mealsnap/internal/cache"
	"mealsnap/internal/model"
	"mealsnap/internal/repository"
	"mealsnap/internal/storage"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// mealService implements MealService.
type mealService struct {
	repo     repository.MealRepository
	store    storage.ImageStore
	analyzer analysis.Analyzer
	cache    *cache.MealListCache
	logger   zerolog.Logger
}

// NewMealService creates a new meal service.
func NewMealService(
	repo repository.MealRepository,
	store storage.ImageStore,
	analyzer analysis.Analyzer,
	listCache *cache.MealListCache,
	logger zerolog.Logger,
) MealService {
	return &mealService{
		repo:     repo,
		store:    store,
		analyzer: analyzer,
		cache:    listCache,
		logger:   logger.With().Str("service", "meal").Logger(),
	}
}

// Ingest runs the pipeline: validate, store image, analyse the
// original bytes, persist the meal. The three I/O steps happen in that
// order with no compensation; a stored image whose analysis or insert
// later fails is left behind as an orphan.
func (s *mealService) Ingest(ctx context.Context, req IngestRequest) (*model.Meal, error) {
	// Fail fast before any side effect.
	if len(req.Image) == 0 {
		return nil, model.ErrNoImage
	}

	mealType := model.MealType(req.MealType)
	if !mealType.Valid() {
		s.logger.Warn().Str("meal_type", req.MealType).Msg("invalid meal type")
		return nil, model.ErrInvalidMealType
	}

	imageURL, err := s.store.Save(ctx, req.Image, req.Filename)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to store meal image")
		return nil, fmt.Errorf("failed to store meal image: %w", err)
	}

	result, err := s.analyzer.Analyze(ctx, req.Image)
	if err != nil {
		s.logger.Error().
			Err(err).
			Str("image_url", imageURL).
			Msg("image analysis failed")
		return nil, fmt.Errorf("image analysis failed: %w", err)
	}

	meal := &model.Meal{
		ID:            uuid.New(),
		ImageURL:      imageURL,
		MealType:      mealType,
		Foods:         result.Foods,
		TotalCalories: result.TotalCalories,
		AnalyzedAt:    time.Now().UTC(),
	}

	if err := s.repo.Insert(ctx, meal); err != nil {
		s.logger.Error().
			Err(err).
			Str("meal_id", meal.ID.String()).
			Msg("failed to persist meal")
		return nil, fmt.Errorf("failed to persist meal: %w", err)
	}

	s.cache.Invalidate()

	s.logger.Info().
		Str("meal_id", meal.ID.String()).
		Str("meal_type", string(meal.MealType)).
		Int("food_count", len(meal.Foods)).
		Float64("total_calories", meal.TotalCalories).
		Msg("meal ingested successfully")

	return meal, nil
}

// ListMeals retrieves meals in the range and aggregates their calorie
// totals. Results are served from the list cache when a previous
// identical query is still valid.
func (s *mealService) ListMeals(ctx context.Context, start, end *time.Time) (*model.MealListSummary, error) {
	start, end = widenSameDayRange(start, end)

	key := cache.Key(start, end)
	if summary, ok := s.cache.Get(key); ok {
		s.logger.Debug().Str("key", key).Msg("meal list served from cache")
		return &summary, nil
	}

	meals, err := s.repo.FindByRange(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to list meals: %w", err)
	}

	if meals == nil {
		meals = []model.Meal{}
	}

	var total float64
	for _, meal := range meals {
		total += meal.TotalCalories
	}

	summary := model.MealListSummary{
		Meals:         meals,
		TotalCalories: total,
		Count:         len(meals),
	}

	s.cache.Set(key, summary)

	return &summary, nil
}

// widenSameDayRange widens the upper bound by one day when both bounds
// are equal. Clients query a single calendar day as (d, d); without
// widening, date-only boundaries would make that a point interval that
// misses everything after midnight.
func widenSameDayRange(start, end *time.Time) (*time.Time, *time.Time) {
	if start != nil && end != nil && start.Equal(*end) {
		widened := end.Add(24 * time.Hour)
		return start, &widened
	}
	return start, end
}
