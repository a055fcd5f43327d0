package integration

import (
	"context"
	"testing"
	"time"

	"mealsnap/internal/model"
	"mealsnap/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB creates a PostgreSQL test container and connection pool.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	// Create PostgreSQL container
	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	// Get connection string
	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	// Create connection pool
	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		t.Fatalf("failed to parse connection string: %v", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("failed to ping database: %v", err)
	}

	// Create schema through the repository's own bootstrap
	repo := repository.NewMealRepository(pool, zerolog.Nop())
	if err := repo.EnsureSchema(ctx); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// CleanupDB removes all meal rows between test cases.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()
	if _, err := pool.Exec(ctx, "DELETE FROM meals"); err != nil {
		t.Fatalf("failed to clean up meals table: %v", err)
	}
}

// SeedMeals inserts test meals spread over several days and returns
// them, most recent first.
func SeedMeals(t *testing.T, pool *pgxpool.Pool) []model.Meal {
	t.Helper()

	ctx := context.Background()
	repo := repository.NewMealRepository(pool, zerolog.Nop())

	base := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	meals := []model.Meal{
		{
			ID:       uuid.New(),
			ImageURL: "/uploads/a-dinner.jpg",
			MealType: model.MealTypeDinner,
			Foods: []model.Food{
				{Name: "grilled salmon", Calories: 420},
				{Name: "rice", Calories: 230},
			},
			TotalCalories: 650,
			AnalyzedAt:    base,
		},
		{
			ID:            uuid.New(),
			ImageURL:      "/uploads/b-lunch.jpg",
			MealType:      model.MealTypeLunch,
			Foods:         []model.Food{{Name: "sandwich", Calories: 480}},
			TotalCalories: 480,
			AnalyzedAt:    base.Add(-26 * time.Hour),
		},
		{
			ID:            uuid.New(),
			ImageURL:      "/uploads/c-breakfast.jpg",
			MealType:      model.MealTypeBreakfast,
			Foods:         []model.Food{{Name: "toast", Calories: 120}},
			TotalCalories: 120,
			AnalyzedAt:    base.Add(-50 * time.Hour),
		},
	}

	for _, m := range meals {
		meal := m
		if err := repo.Insert(ctx, &meal); err != nil {
			t.Fatalf("failed to seed meal %s: %v", meal.ID, err)
		}
	}

	return meals
}
