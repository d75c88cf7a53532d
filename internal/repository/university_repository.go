package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/coursemate/coursemate-api/internal/models"
)

// UniversityRepository manages persistence for universities.
type UniversityRepository struct {
	db *sqlx.DB
}

// NewUniversityRepository constructs a UniversityRepository.
func NewUniversityRepository(db *sqlx.DB) *UniversityRepository {
	return &UniversityRepository{db: db}
}

// List returns all universities ordered by name.
func (r *UniversityRepository) List(ctx context.Context) ([]models.University, error) {
	const query = `SELECT id, name, created_at FROM universities ORDER BY name`
	var universities []models.University
	if err := r.db.SelectContext(ctx, &universities, query); err != nil {
		return nil, fmt.Errorf("list universities: %w", err)
	}
	return universities, nil
}

// FindByID fetches a university by ID.
func (r *UniversityRepository) FindByID(ctx context.Context, id string) (*models.University, error) {
	const query = `SELECT id, name, created_at FROM universities WHERE id = $1`
	var university models.University
	if err := r.db.GetContext(ctx, &university, query, id); err != nil {
		return nil, err
	}
	return &university, nil
}

// FindByName fetches a university by exact name.
func (r *UniversityRepository) FindByName(ctx context.Context, name string) (*models.University, error) {
	const query = `SELECT id, name, created_at FROM universities WHERE name = $1`
	var university models.University
	if err := r.db.GetContext(ctx, &university, query, name); err != nil {
		return nil, err
	}
	return &university, nil
}

// ExistsByName checks name uniqueness.
func (r *UniversityRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	const query = `SELECT 1 FROM universities WHERE name = $1 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, name); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check university name: %w", err)
	}
	return true, nil
}

// Create inserts a new university.
func (r *UniversityRepository) Create(ctx context.Context, university *models.University) error {
	if university.ID == "" {
		university.ID = uuid.NewString()
	}
	if university.CreatedAt.IsZero() {
		university.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO universities (id, name, created_at) VALUES (:id, :name, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, university); err != nil {
		return fmt.Errorf("create university: %w", err)
	}
	return nil
}

// Rename updates a university's name.
func (r *UniversityRepository) Rename(ctx context.Context, id, name string) error {
	const query = `UPDATE universities SET name = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, name); err != nil {
		return fmt.Errorf("rename university: %w", err)
	}
	return nil
}

// Delete removes a university.
func (r *UniversityRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM universities WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete university: %w", err)
	}
	return nil
}
