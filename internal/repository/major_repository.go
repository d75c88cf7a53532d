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

// MajorRepository manages persistence for majors.
type MajorRepository struct {
	db *sqlx.DB
}

// NewMajorRepository constructs a MajorRepository.
func NewMajorRepository(db *sqlx.DB) *MajorRepository {
	return &MajorRepository{db: db}
}

// ListByUniversity returns the majors of one university ordered by name.
func (r *MajorRepository) ListByUniversity(ctx context.Context, universityID string) ([]models.Major, error) {
	const query = `SELECT id, university_id, name, created_at FROM majors WHERE university_id = $1 ORDER BY name`
	var majors []models.Major
	if err := r.db.SelectContext(ctx, &majors, query, universityID); err != nil {
		return nil, fmt.Errorf("list majors: %w", err)
	}
	return majors, nil
}

// FindByID fetches a major by ID.
func (r *MajorRepository) FindByID(ctx context.Context, id string) (*models.Major, error) {
	const query = `SELECT id, university_id, name, created_at FROM majors WHERE id = $1`
	var major models.Major
	if err := r.db.GetContext(ctx, &major, query, id); err != nil {
		return nil, err
	}
	return &major, nil
}

// FindByName fetches a major by name within a university.
func (r *MajorRepository) FindByName(ctx context.Context, universityID, name string) (*models.Major, error) {
	const query = `SELECT id, university_id, name, created_at FROM majors WHERE university_id = $1 AND name = $2`
	var major models.Major
	if err := r.db.GetContext(ctx, &major, query, universityID, name); err != nil {
		return nil, err
	}
	return &major, nil
}

// ExistsByName checks name uniqueness within a university.
func (r *MajorRepository) ExistsByName(ctx context.Context, universityID, name string) (bool, error) {
	const query = `SELECT 1 FROM majors WHERE university_id = $1 AND name = $2 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, universityID, name); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check major name: %w", err)
	}
	return true, nil
}

// Create inserts a new major.
func (r *MajorRepository) Create(ctx context.Context, major *models.Major) error {
	if major.ID == "" {
		major.ID = uuid.NewString()
	}
	if major.CreatedAt.IsZero() {
		major.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO majors (id, university_id, name, created_at) VALUES (:id, :university_id, :name, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, major); err != nil {
		return fmt.Errorf("create major: %w", err)
	}
	return nil
}

// Rename updates a major's name.
func (r *MajorRepository) Rename(ctx context.Context, id, name string) error {
	const query = `UPDATE majors SET name = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, name); err != nil {
		return fmt.Errorf("rename major: %w", err)
	}
	return nil
}

// Delete removes a major.
func (r *MajorRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM majors WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete major: %w", err)
	}
	return nil
}
