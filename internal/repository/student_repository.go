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

// StudentRepository manages persistence for student records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

const studentColumns = `id, telegram_id, student_no, full_name, university_id, major_id, year, approved, created_at, approved_at`

// FindByID fetches a student by ID.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	query := fmt.Sprintf(`SELECT %s FROM students WHERE id = $1`, studentColumns)
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, err
	}
	return &student, nil
}

// FindByTelegramID fetches a student by Telegram identity.
func (r *StudentRepository) FindByTelegramID(ctx context.Context, telegramID string) (*models.Student, error) {
	query := fmt.Sprintf(`SELECT %s FROM students WHERE telegram_id = $1`, studentColumns)
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, telegramID); err != nil {
		return nil, err
	}
	return &student, nil
}

// ExistsByStudentNo checks university-ID-string uniqueness.
func (r *StudentRepository) ExistsByStudentNo(ctx context.Context, studentNo string) (bool, error) {
	const query = `SELECT 1 FROM students WHERE student_no = $1 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, studentNo); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check student no: %w", err)
	}
	return true, nil
}

// ListPending returns unapproved students oldest first.
func (r *StudentRepository) ListPending(ctx context.Context) ([]models.Student, error) {
	query := fmt.Sprintf(`SELECT %s FROM students WHERE approved = false ORDER BY created_at`, studentColumns)
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query); err != nil {
		return nil, fmt.Errorf("list pending students: %w", err)
	}
	return students, nil
}

// Create inserts a new student in pending state.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	if student.CreatedAt.IsZero() {
		student.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO students (id, telegram_id, student_no, full_name, university_id, major_id, year, approved, created_at, approved_at)
        VALUES (:id, :telegram_id, :student_no, :full_name, :university_id, :major_id, :year, :approved, :created_at, :approved_at)`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// Approve marks a student approved.
func (r *StudentRepository) Approve(ctx context.Context, id string, at time.Time) error {
	const query = `UPDATE students SET approved = true, approved_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, at); err != nil {
		return fmt.Errorf("approve student: %w", err)
	}
	return nil
}

// Delete removes a student record (used to reject pending registrations).
func (r *StudentRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM students WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	return nil
}

// ListTelegramIDsForCourse returns Telegram IDs of approved students enrolled
// in the course's university/major/year, for upload notifications.
func (r *StudentRepository) ListTelegramIDsForCourse(ctx context.Context, courseID string) ([]string, error) {
	const query = `SELECT s.telegram_id FROM students s
        JOIN courses c ON c.id = $1
        WHERE s.university_id = c.university_id
          AND s.major_id = c.major_id
          AND s.year = c.year
          AND s.approved = true
          AND s.telegram_id IS NOT NULL`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, courseID); err != nil {
		return nil, fmt.Errorf("list course students: %w", err)
	}
	return ids, nil
}
