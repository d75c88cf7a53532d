package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/coursemate/coursemate-api/internal/models"
)

// RateLimitRepository tracks per-professor daily action counters.
type RateLimitRepository struct {
	db *sqlx.DB
}

// NewRateLimitRepository constructs a RateLimitRepository.
func NewRateLimitRepository(db *sqlx.DB) *RateLimitRepository {
	return &RateLimitRepository{db: db}
}

// Find loads the counter row for the professor, action and day.
func (r *RateLimitRepository) Find(ctx context.Context, professorID, action, day string) (*models.RateLimit, error) {
	const query = `SELECT id, professor_id, action, day, count FROM rate_limits WHERE professor_id = $1 AND action = $2 AND day = $3`
	var limit models.RateLimit
	if err := r.db.GetContext(ctx, &limit, query, professorID, action, day); err != nil {
		return nil, err
	}
	return &limit, nil
}

// Count returns today's usage for the professor and action.
func (r *RateLimitRepository) Count(ctx context.Context, professorID, action, day string) (int, error) {
	limit, err := r.Find(ctx, professorID, action, day)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, nil
		}
		return 0, fmt.Errorf("read rate limit: %w", err)
	}
	return limit.Count, nil
}

// Increment bumps the counter, creating the row on first use of the day.
func (r *RateLimitRepository) Increment(ctx context.Context, professorID, action, day string) error {
	const query = `INSERT INTO rate_limits (id, professor_id, action, day, count)
        VALUES ($1, $2, $3, $4, 1)
        ON CONFLICT (professor_id, action, day) DO UPDATE SET count = rate_limits.count + 1`
	if _, err := r.db.ExecContext(ctx, query, uuid.NewString(), professorID, action, day); err != nil {
		return fmt.Errorf("increment rate limit: %w", err)
	}
	return nil
}
