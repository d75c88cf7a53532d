package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/coursemate/coursemate-api/internal/models"
)

// ProfessorRepository manages persistence for professors.
type ProfessorRepository struct {
	db *sqlx.DB
}

// NewProfessorRepository constructs a ProfessorRepository.
func NewProfessorRepository(db *sqlx.DB) *ProfessorRepository {
	return &ProfessorRepository{db: db}
}

const professorColumns = `id, full_name, code, telegram_id, course_id, active, created_at`

// List returns all professors ordered by name.
func (r *ProfessorRepository) List(ctx context.Context) ([]models.Professor, error) {
	query := fmt.Sprintf(`SELECT %s FROM professors ORDER BY full_name`, professorColumns)
	var professors []models.Professor
	if err := r.db.SelectContext(ctx, &professors, query); err != nil {
		return nil, fmt.Errorf("list professors: %w", err)
	}
	return professors, nil
}

// FindByID fetches a professor by ID.
func (r *ProfessorRepository) FindByID(ctx context.Context, id string) (*models.Professor, error) {
	query := fmt.Sprintf(`SELECT %s FROM professors WHERE id = $1`, professorColumns)
	var professor models.Professor
	if err := r.db.GetContext(ctx, &professor, query, id); err != nil {
		return nil, err
	}
	return &professor, nil
}

// FindByCode fetches a professor by access code.
func (r *ProfessorRepository) FindByCode(ctx context.Context, code string) (*models.Professor, error) {
	query := fmt.Sprintf(`SELECT %s FROM professors WHERE code = $1`, professorColumns)
	var professor models.Professor
	if err := r.db.GetContext(ctx, &professor, query, code); err != nil {
		return nil, err
	}
	return &professor, nil
}

// FindByTelegramID fetches a professor by linked Telegram identity.
func (r *ProfessorRepository) FindByTelegramID(ctx context.Context, telegramID string) (*models.Professor, error) {
	query := fmt.Sprintf(`SELECT %s FROM professors WHERE telegram_id = $1`, professorColumns)
	var professor models.Professor
	if err := r.db.GetContext(ctx, &professor, query, telegramID); err != nil {
		return nil, err
	}
	return &professor, nil
}

// Create inserts a new professor.
func (r *ProfessorRepository) Create(ctx context.Context, professor *models.Professor) error {
	if professor.ID == "" {
		professor.ID = uuid.NewString()
	}
	if professor.CreatedAt.IsZero() {
		professor.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO professors (id, full_name, code, telegram_id, course_id, active, created_at)
        VALUES (:id, :full_name, :code, :telegram_id, :course_id, :active, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, professor); err != nil {
		return fmt.Errorf("create professor: %w", err)
	}
	return nil
}

// AssignCourse rebinds the professor to a course. Passing an empty course ID
// clears the assignment.
func (r *ProfessorRepository) AssignCourse(ctx context.Context, id string, courseID *string) error {
	const query = `UPDATE professors SET course_id = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, courseID); err != nil {
		return fmt.Errorf("assign professor course: %w", err)
	}
	return nil
}

// UnassignByCourse clears assignments referencing the given course.
func (r *ProfessorRepository) UnassignByCourse(ctx context.Context, courseID string) error {
	const query = `UPDATE professors SET course_id = NULL WHERE course_id = $1`
	if _, err := r.db.ExecContext(ctx, query, courseID); err != nil {
		return fmt.Errorf("unassign professors: %w", err)
	}
	return nil
}

// LinkTelegram records the professor's Telegram identity after first login.
func (r *ProfessorRepository) LinkTelegram(ctx context.Context, id, telegramID string) error {
	const query = `UPDATE professors SET telegram_id = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, telegramID); err != nil {
		return fmt.Errorf("link professor telegram: %w", err)
	}
	return nil
}

// SetActive toggles the professor's active flag.
func (r *ProfessorRepository) SetActive(ctx context.Context, id string, active bool) error {
	const query = `UPDATE professors SET active = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, active); err != nil {
		return fmt.Errorf("set professor active: %w", err)
	}
	return nil
}

// Delete removes a professor.
func (r *ProfessorRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM professors WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete professor: %w", err)
	}
	return nil
}
