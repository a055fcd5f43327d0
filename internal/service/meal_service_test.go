package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"mealsnap/internal/analysis"
	"mealsnap/internal/cache"
	"mealsnap/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockMealRepository is a mock implementation of repository.MealRepository.
type MockMealRepository struct {
	mock.Mock
}

func (m *MockMealRepository) Insert(ctx context.Context, meal *model.Meal) error {
	args := m.Called(ctx, meal)
	return args.Error(0)
}

func (m *MockMealRepository) FindByRange(ctx context.Context, start, end *time.Time) ([]model.Meal, error) {
	args := m.Called(ctx, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Meal), args.Error(1)
}

func (m *MockMealRepository) EnsureSchema(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockImageStore is a mock implementation of storage.ImageStore.
type MockImageStore struct {
	mock.Mock
}

func (m *MockImageStore) Save(ctx context.Context, data []byte, originalName string) (string, error) {
	args := m.Called(ctx, data, originalName)
	return args.String(0), args.Error(1)
}

// MockAnalyzer is a mock implementation of analysis.Analyzer.
type MockAnalyzer struct {
	mock.Mock
}

func (m *MockAnalyzer) Analyze(ctx context.Context, image []byte) (*model.Analysis, error) {
	args := m.Called(ctx, image)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Analysis), args.Error(1)
}

func newTestService(repo *MockMealRepository, store *MockImageStore, analyzer *MockAnalyzer) MealService {
	return NewMealService(repo, store, analyzer, cache.NewMealListCache(zerolog.Nop()), zerolog.Nop())
}

func TestMealService_Ingest_Success(t *testing.T) {
	ctx := context.Background()

	repo := new(MockMealRepository)
	store := new(MockImageStore)
	analyzer := new(MockAnalyzer)

	image := []byte("fake-jpeg-bytes")
	result := &model.Analysis{
		Foods:         []model.Food{{Name: "toast", Calories: 120}},
		TotalCalories: 120,
	}

	store.On("Save", ctx, image, "meal.jpg").Return("/uploads/abc-meal.jpg", nil)
	analyzer.On("Analyze", ctx, image).Return(result, nil)
	repo.On("Insert", ctx, mock.AnythingOfType("*model.Meal")).Return(nil)

	svc := newTestService(repo, store, analyzer)

	before := time.Now().UTC()
	meal, err := svc.Ingest(ctx, IngestRequest{Image: image, Filename: "meal.jpg", MealType: "breakfast"})
	after := time.Now().UTC()

	require.NoError(t, err)
	require.NotNil(t, meal)

	assert.NotEqual(t, meal.ID.String(), "00000000-0000-0000-0000-000000000000")
	assert.Equal(t, "/uploads/abc-meal.jpg", meal.ImageURL)
	assert.Equal(t, model.MealTypeBreakfast, meal.MealType)
	assert.Equal(t, result.Foods, meal.Foods)
	assert.Equal(t, 120.0, meal.TotalCalories)
	assert.False(t, meal.AnalyzedAt.Before(before))
	assert.False(t, meal.AnalyzedAt.After(after))

	store.AssertExpectations(t)
	analyzer.AssertExpectations(t)
	repo.AssertExpectations(t)
}

func TestMealService_Ingest_EmptyImage(t *testing.T) {
	ctx := context.Background()

	repo := new(MockMealRepository)
	store := new(MockImageStore)
	analyzer := new(MockAnalyzer)

	svc := newTestService(repo, store, analyzer)

	meal, err := svc.Ingest(ctx, IngestRequest{Image: nil, Filename: "meal.jpg", MealType: "breakfast"})

	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrNoImage)
	assert.Nil(t, meal)

	// Validation failures must produce zero side effects.
	store.AssertNotCalled(t, "Save")
	analyzer.AssertNotCalled(t, "Analyze")
	repo.AssertNotCalled(t, "Insert")
}

func TestMealService_Ingest_InvalidMealType(t *testing.T) {
	ctx := context.Background()

	repo := new(MockMealRepository)
	store := new(MockImageStore)
	analyzer := new(MockAnalyzer)

	svc := newTestService(repo, store, analyzer)

	meal, err := svc.Ingest(ctx, IngestRequest{Image: []byte("bytes"), Filename: "meal.jpg", MealType: "invalid"})

	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrInvalidMealType)
	assert.Nil(t, meal)

	store.AssertNotCalled(t, "Save")
	analyzer.AssertNotCalled(t, "Analyze")
	repo.AssertNotCalled(t, "Insert")
}

func TestMealService_Ingest_StorageFailure(t *testing.T) {
	ctx := context.Background()

	repo := new(MockMealRepository)
	store := new(MockImageStore)
	analyzer := new(MockAnalyzer)

	image := []byte("bytes")
	store.On("Save", ctx, image, "meal.jpg").Return("", errors.New("disk full"))

	svc := newTestService(repo, store, analyzer)

	meal, err := svc.Ingest(ctx, IngestRequest{Image: image, Filename: "meal.jpg", MealType: "lunch"})

	require.Error(t, err)
	assert.Nil(t, meal)

	// No meal may reference an image that failed to store.
	analyzer.AssertNotCalled(t, "Analyze")
	repo.AssertNotCalled(t, "Insert")
}

func TestMealService_Ingest_MalformedAnalysis(t *testing.T) {
	ctx := context.Background()

	repo := new(MockMealRepository)
	store := new(MockImageStore)
	analyzer := new(MockAnalyzer)

	image := []byte("bytes")
	store.On("Save", ctx, image, "meal.jpg").Return("/uploads/abc-meal.jpg", nil)
	analyzer.On("Analyze", ctx, image).Return(nil, analysis.ErrMalformedReply)

	svc := newTestService(repo, store, analyzer)

	meal, err := svc.Ingest(ctx, IngestRequest{Image: image, Filename: "meal.jpg", MealType: "dinner"})

	require.Error(t, err)
	assert.ErrorIs(t, err, analysis.ErrMalformedReply)
	assert.Nil(t, meal)

	// A failed analysis must not persist a meal. The stored image is
	// left behind; there is no compensation step.
	repo.AssertNotCalled(t, "Insert")
}

func TestMealService_Ingest_InsertFailure(t *testing.T) {
	ctx := context.Background()

	repo := new(MockMealRepository)
	store := new(MockImageStore)
	analyzer := new(MockAnalyzer)

	image := []byte("bytes")
	store.On("Save", ctx, image, "meal.jpg").Return("/uploads/abc-meal.jpg", nil)
	analyzer.On("Analyze", ctx, image).Return(&model.Analysis{Foods: []model.Food{}}, nil)
	repo.On("Insert", ctx, mock.AnythingOfType("*model.Meal")).Return(errors.New("connection reset"))

	svc := newTestService(repo, store, analyzer)

	meal, err := svc.Ingest(ctx, IngestRequest{Image: image, Filename: "meal.jpg", MealType: "snack"})

	require.Error(t, err)
	assert.Nil(t, meal)
}

func TestMealService_ListMeals_Aggregates(t *testing.T) {
	ctx := context.Background()

	repo := new(MockMealRepository)
	store := new(MockImageStore)
	analyzer := new(MockAnalyzer)

	meals := []model.Meal{
		{MealType: model.MealTypeDinner, TotalCalories: 650, AnalyzedAt: time.Now()},
		{MealType: model.MealTypeLunch, TotalCalories: 480, AnalyzedAt: time.Now().Add(-3 * time.Hour)},
		{MealType: model.MealTypeBreakfast, TotalCalories: 120, AnalyzedAt: time.Now().Add(-8 * time.Hour)},
	}
	repo.On("FindByRange", ctx, (*time.Time)(nil), (*time.Time)(nil)).Return(meals, nil)

	svc := newTestService(repo, store, analyzer)

	summary, err := svc.ListMeals(ctx, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, meals, summary.Meals)
	assert.Equal(t, 1250.0, summary.TotalCalories)
	assert.Equal(t, 3, summary.Count)
}

func TestMealService_ListMeals_EmptyResult(t *testing.T) {
	ctx := context.Background()

	repo := new(MockMealRepository)
	repo.On("FindByRange", ctx, (*time.Time)(nil), (*time.Time)(nil)).Return([]model.Meal(nil), nil)

	svc := newTestService(repo, new(MockImageStore), new(MockAnalyzer))

	summary, err := svc.ListMeals(ctx, nil, nil)
	require.NoError(t, err)

	// meals must render as [], not null.
	assert.NotNil(t, summary.Meals)
	assert.Empty(t, summary.Meals)
	assert.Equal(t, 0.0, summary.TotalCalories)
	assert.Equal(t, 0, summary.Count)
}

func TestMealService_ListMeals_WidensSameDayRange(t *testing.T) {
	ctx := context.Background()

	repo := new(MockMealRepository)

	day := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	widened := day.Add(24 * time.Hour)

	repo.On("FindByRange", ctx, &day, &widened).Return([]model.Meal{}, nil)

	svc := newTestService(repo, new(MockImageStore), new(MockAnalyzer))

	_, err := svc.ListMeals(ctx, &day, &day)
	require.NoError(t, err)

	// The repository must see the widened upper bound, not the point
	// interval the client supplied.
	repo.AssertExpectations(t)
}

func TestMealService_ListMeals_DistinctBoundsNotWidened(t *testing.T) {
	ctx := context.Background()

	repo := new(MockMealRepository)

	start := time.Date(2026, 8, 27, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)

	repo.On("FindByRange", ctx, &start, &end).Return([]model.Meal{}, nil)

	svc := newTestService(repo, new(MockImageStore), new(MockAnalyzer))

	_, err := svc.ListMeals(ctx, &start, &end)
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestMealService_ListMeals_CacheHit(t *testing.T) {
	ctx := context.Background()

	repo := new(MockMealRepository)
	meals := []model.Meal{{MealType: model.MealTypeSnack, TotalCalories: 90}}
	repo.On("FindByRange", ctx, (*time.Time)(nil), (*time.Time)(nil)).Return(meals, nil).Once()

	svc := newTestService(repo, new(MockImageStore), new(MockAnalyzer))

	first, err := svc.ListMeals(ctx, nil, nil)
	require.NoError(t, err)

	// Second identical query is served from cache; the mock allows
	// only one repository call.
	second, err := svc.ListMeals(ctx, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	repo.AssertExpectations(t)
}

func TestMealService_Ingest_InvalidatesListCache(t *testing.T) {
	ctx := context.Background()

	repo := new(MockMealRepository)
	store := new(MockImageStore)
	analyzer := new(MockAnalyzer)

	repo.On("FindByRange", ctx, (*time.Time)(nil), (*time.Time)(nil)).
		Return([]model.Meal{}, nil).Twice()

	image := []byte("bytes")
	store.On("Save", ctx, image, "meal.jpg").Return("/uploads/abc-meal.jpg", nil)
	analyzer.On("Analyze", ctx, image).Return(&model.Analysis{Foods: []model.Food{}}, nil)
	repo.On("Insert", ctx, mock.AnythingOfType("*model.Meal")).Return(nil)

	svc := newTestService(repo, store, analyzer)

	_, err := svc.ListMeals(ctx, nil, nil)
	require.NoError(t, err)

	_, err = svc.Ingest(ctx, IngestRequest{Image: image, Filename: "meal.jpg", MealType: "other"})
	require.NoError(t, err)

	// The write invalidated the cache, so this query hits the
	// repository again.
	_, err = svc.ListMeals(ctx, nil, nil)
	require.NoError(t, err)

	repo.AssertExpectations(t)
}
