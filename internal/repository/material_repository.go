package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/coursemate/coursemate-api/internal/models"
)

// MaterialRepository manages persistence for uploaded materials.
type MaterialRepository struct {
	db *sqlx.DB
}

// NewMaterialRepository constructs a MaterialRepository.
func NewMaterialRepository(db *sqlx.DB) *MaterialRepository {
	return &MaterialRepository{db: db}
}

const materialColumns = `id, course_id, uploader_id, filename, filepath, week, description, uploaded_at`

// ListByCourseWeek returns all materials for one course and week, newest first.
func (r *MaterialRepository) ListByCourseWeek(ctx context.Context, courseID string, week int) ([]models.Material, error) {
	query := fmt.Sprintf(`SELECT %s FROM materials WHERE course_id = $1 AND week = $2 ORDER BY uploaded_at DESC`, materialColumns)
	var materials []models.Material
	if err := r.db.SelectContext(ctx, &materials, query, courseID, week); err != nil {
		return nil, fmt.Errorf("list materials: %w", err)
	}
	return materials, nil
}

// ListByCourse returns all materials for one course ordered by week.
func (r *MaterialRepository) ListByCourse(ctx context.Context, courseID string) ([]models.Material, error) {
	query := fmt.Sprintf(`SELECT %s FROM materials WHERE course_id = $1 ORDER BY week, uploaded_at DESC`, materialColumns)
	var materials []models.Material
	if err := r.db.SelectContext(ctx, &materials, query, courseID); err != nil {
		return nil, fmt.Errorf("list course materials: %w", err)
	}
	return materials, nil
}

// ListByUploader returns materials uploaded by one professor.
func (r *MaterialRepository) ListByUploader(ctx context.Context, uploaderID string) ([]models.Material, error) {
	query := fmt.Sprintf(`SELECT %s FROM materials WHERE uploader_id = $1 ORDER BY week, uploaded_at DESC`, materialColumns)
	var materials []models.Material
	if err := r.db.SelectContext(ctx, &materials, query, uploaderID); err != nil {
		return nil, fmt.Errorf("list uploader materials: %w", err)
	}
	return materials, nil
}

// FindByID fetches a material by ID.
func (r *MaterialRepository) FindByID(ctx context.Context, id string) (*models.Material, error) {
	query := fmt.Sprintf(`SELECT %s FROM materials WHERE id = $1`, materialColumns)
	var material models.Material
	if err := r.db.GetContext(ctx, &material, query, id); err != nil {
		return nil, err
	}
	return &material, nil
}

// DistinctWeeks returns the weeks that have at least one material for the course.
func (r *MaterialRepository) DistinctWeeks(ctx context.Context, courseID string) ([]int, error) {
	const query = `SELECT DISTINCT week FROM materials WHERE course_id = $1 ORDER BY week`
	var weeks []int
	if err := r.db.SelectContext(ctx, &weeks, query, courseID); err != nil {
		return nil, fmt.Errorf("list material weeks: %w", err)
	}
	return weeks, nil
}

// Create inserts a new material row. Callers must have persisted the file
// first; the row references an already stored path.
func (r *MaterialRepository) Create(ctx context.Context, material *models.Material) error {
	if material.ID == "" {
		material.ID = uuid.NewString()
	}
	if material.UploadedAt.IsZero() {
		material.UploadedAt = time.Now().UTC()
	}
	const query = `INSERT INTO materials (id, course_id, uploader_id, filename, filepath, week, description, uploaded_at)
        VALUES (:id, :course_id, :uploader_id, :filename, :filepath, :week, :description, :uploaded_at)`
	if _, err := r.db.NamedExecContext(ctx, query, material); err != nil {
		return fmt.Errorf("create material: %w", err)
	}
	return nil
}

// Delete removes a material row.
func (r *MaterialRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM materials WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete material: %w", err)
	}
	return nil
}

// CountByUploader returns how many materials a professor has uploaded.
func (r *MaterialRepository) CountByUploader(ctx context.Context, uploaderID string) (int, error) {
	const query = `SELECT COUNT(*) FROM materials WHERE uploader_id = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, uploaderID); err != nil {
		return 0, fmt.Errorf("count uploader materials: %w", err)
	}
	return count, nil
}
