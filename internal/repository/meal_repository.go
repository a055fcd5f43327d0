package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"mealsnap/internal/model"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// uniqueViolation is the PostgreSQL error code for a unique constraint
// violation.
const uniqueViolation = "23505"

const schema = `
	CREATE TABLE IF NOT EXISTS meals (
		id UUID PRIMARY KEY,
		image_url TEXT NOT NULL,
		meal_type TEXT NOT NULL,
		foods JSONB NOT NULL DEFAULT '[]',
		total_calories DOUBLE PRECISION NOT NULL,
		analyzed_at TIMESTAMPTZ NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_meals_analyzed_at ON meals(analyzed_at DESC);
`

// mealRepository implements the MealRepository interface using PostgreSQL.
type mealRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewMealRepository creates a new PostgreSQL-backed meal repository.
func NewMealRepository(pool *pgxpool.Pool, logger zerolog.Logger) MealRepository {
	return &mealRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "meal").Logger(),
	}
}

// EnsureSchema creates the meals table and indexes if they do not exist.
func (r *mealRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schema); err != nil {
		r.logger.Error().Err(err).Msg("failed to ensure meals schema")
		return fmt.Errorf("failed to ensure meals schema: %w", err)
	}
	return nil
}

// Insert persists a fully-formed meal.
func (r *mealRepository) Insert(ctx context.Context, meal *model.Meal) error {
	foods, err := json.Marshal(meal.Foods)
	if err != nil {
		return fmt.Errorf("failed to marshal foods: %w", err)
	}

	query := `
		INSERT INTO meals (id, image_url, meal_type, foods, total_calories, analyzed_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err = r.pool.Exec(ctx, query,
		meal.ID,
		meal.ImageURL,
		string(meal.MealType),
		foods,
		meal.TotalCalories,
		meal.AnalyzedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			r.logger.Warn().
				Str("meal_id", meal.ID.String()).
				Msg("duplicate meal ID")
			return model.ErrDuplicateMeal
		}
		r.logger.Error().
			Err(err).
			Str("meal_id", meal.ID.String()).
			Msg("failed to insert meal")
		return fmt.Errorf("failed to insert meal: %w", err)
	}

	r.logger.Debug().
		Str("meal_id", meal.ID.String()).
		Str("meal_type", string(meal.MealType)).
		Msg("meal inserted successfully")

	return nil
}

// FindByRange retrieves meals within the inclusive [start, end]
// interval, ordered by analyzed_at descending.
func (r *mealRepository) FindByRange(ctx context.Context, start, end *time.Time) ([]model.Meal, error) {
	query := `
		SELECT id, image_url, meal_type, foods, total_calories, analyzed_at
		FROM meals
	`

	var args []any
	var conditions []string

	if start != nil {
		args = append(args, *start)
		conditions = append(conditions, fmt.Sprintf("analyzed_at >= $%d", len(args)))
	}
	if end != nil {
		args = append(args, *end)
		conditions = append(conditions, fmt.Sprintf("analyzed_at <= $%d", len(args)))
	}

	for i, cond := range conditions {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}
	query += " ORDER BY analyzed_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query meals")
		return nil, fmt.Errorf("failed to query meals: %w", err)
	}
	defer rows.Close()

	var meals []model.Meal
	for rows.Next() {
		var m model.Meal
		var foods []byte
		err := rows.Scan(&m.ID, &m.ImageURL, &m.MealType, &foods, &m.TotalCalories, &m.AnalyzedAt)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan meal row")
			return nil, fmt.Errorf("failed to scan meal: %w", err)
		}
		if err := json.Unmarshal(foods, &m.Foods); err != nil {
			r.logger.Error().
				Err(err).
				Str("meal_id", m.ID.String()).
				Msg("failed to unmarshal foods column")
			return nil, fmt.Errorf("failed to unmarshal foods for meal %s: %w", m.ID, err)
		}
		if m.Foods == nil {
			m.Foods = []model.Food{}
		}
		meals = append(meals, m)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating meal rows")
		return nil, fmt.Errorf("error iterating meals: %w", err)
	}

	return meals, nil
}
