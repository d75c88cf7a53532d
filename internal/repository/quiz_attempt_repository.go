package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/coursemate/coursemate-api/internal/models"
)

// QuizAttemptRepository manages persistence for generated quiz attempts.
type QuizAttemptRepository struct {
	db *sqlx.DB
}

// NewQuizAttemptRepository constructs a QuizAttemptRepository.
func NewQuizAttemptRepository(db *sqlx.DB) *QuizAttemptRepository {
	return &QuizAttemptRepository{db: db}
}

const attemptColumns = `id, student_id, course_id, week, difficulty, questions, answers, score, scored, created_at, scored_at`

// FindByID fetches an attempt by ID.
func (r *QuizAttemptRepository) FindByID(ctx context.Context, id string) (*models.QuizAttempt, error) {
	query := fmt.Sprintf(`SELECT %s FROM quiz_attempts WHERE id = $1`, attemptColumns)
	var attempt models.QuizAttempt
	if err := r.db.GetContext(ctx, &attempt, query, id); err != nil {
		return nil, err
	}
	return &attempt, nil
}

// ListByStudent returns a student's attempts, newest first.
func (r *QuizAttemptRepository) ListByStudent(ctx context.Context, studentID string) ([]models.QuizAttempt, error) {
	query := fmt.Sprintf(`SELECT %s FROM quiz_attempts WHERE student_id = $1 ORDER BY created_at DESC`, attemptColumns)
	var attempts []models.QuizAttempt
	if err := r.db.SelectContext(ctx, &attempts, query, studentID); err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}
	return attempts, nil
}

// ListScored returns all scored attempts for reporting, newest first.
func (r *QuizAttemptRepository) ListScored(ctx context.Context) ([]models.QuizAttempt, error) {
	query := fmt.Sprintf(`SELECT %s FROM quiz_attempts WHERE scored = true ORDER BY created_at DESC`, attemptColumns)
	var attempts []models.QuizAttempt
	if err := r.db.SelectContext(ctx, &attempts, query); err != nil {
		return nil, fmt.Errorf("list scored attempts: %w", err)
	}
	return attempts, nil
}

// Create inserts a new, unscored attempt.
func (r *QuizAttemptRepository) Create(ctx context.Context, attempt *models.QuizAttempt) error {
	if attempt.ID == "" {
		attempt.ID = uuid.NewString()
	}
	if attempt.CreatedAt.IsZero() {
		attempt.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO quiz_attempts (id, student_id, course_id, week, difficulty, questions, answers, score, scored, created_at, scored_at)
        VALUES (:id, :student_id, :course_id, :week, :difficulty, :questions, :answers, :score, :scored, :created_at, :scored_at)`
	if _, err := r.db.NamedExecContext(ctx, query, attempt); err != nil {
		return fmt.Errorf("create attempt: %w", err)
	}
	return nil
}

// Score stores the submitted answers and final score exactly once.
func (r *QuizAttemptRepository) Score(ctx context.Context, id string, answers models.AnswerList, score float64, at time.Time) error {
	const query = `UPDATE quiz_attempts SET answers = $2, score = $3, scored = true, scored_at = $4 WHERE id = $1 AND scored = false`
	res, err := r.db.ExecContext(ctx, query, id, answers, score, at)
	if err != nil {
		return fmt.Errorf("score attempt: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("attempt %s already scored", id)
	}
	return nil
}

// DeleteByCourse removes all attempts for a course (taxonomy cascade).
func (r *QuizAttemptRepository) DeleteByCourse(ctx context.Context, courseID string) error {
	const query = `DELETE FROM quiz_attempts WHERE course_id = $1`
	if _, err := r.db.ExecContext(ctx, query, courseID); err != nil {
		return fmt.Errorf("delete course attempts: %w", err)
	}
	return nil
}
