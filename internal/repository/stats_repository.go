package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/coursemate/coursemate-api/internal/models"
)

// StatsRepository aggregates global counters for admin reporting.
type StatsRepository struct {
	db *sqlx.DB
}

// NewStatsRepository constructs a StatsRepository.
func NewStatsRepository(db *sqlx.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// Totals returns global entity counts in a single round trip.
func (r *StatsRepository) Totals(ctx context.Context) (*models.Totals, error) {
	const query = `SELECT
        (SELECT COUNT(*) FROM universities) AS universities,
        (SELECT COUNT(*) FROM majors) AS majors,
        (SELECT COUNT(*) FROM courses) AS courses,
        (SELECT COUNT(*) FROM professors) AS professors,
        (SELECT COUNT(*) FROM students WHERE approved = true) AS approved_students,
        (SELECT COUNT(*) FROM students WHERE approved = false) AS pending_students,
        (SELECT COUNT(*) FROM materials) AS materials,
        (SELECT COUNT(*) FROM quiz_attempts) AS quiz_attempts`
	var totals models.Totals
	if err := r.db.GetContext(ctx, &totals, query); err != nil {
		return nil, fmt.Errorf("load totals: %w", err)
	}
	return &totals, nil
}
