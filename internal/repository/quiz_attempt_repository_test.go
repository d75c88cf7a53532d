package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coursemate/coursemate-api/internal/models"
)

func newAttemptMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

const questionsJSON = `[{"prompt":"What is a variable?","choices":["A","B","C","D"],"answer":2}]`

func TestQuizAttemptRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newAttemptMock(t)
	defer cleanup()
	repo := NewQuizAttemptRepository(db)

	rows := sqlmock.NewRows([]string{"id", "student_id", "course_id", "week", "difficulty", "questions", "answers", "score", "scored", "created_at", "scored_at"}).
		AddRow("a1", "student-1", "course-1", 1, "medium", []byte(questionsJSON), nil, nil, false, time.Now(), nil)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, student_id, course_id, week, difficulty, questions, answers, score, scored, created_at, scored_at FROM quiz_attempts WHERE id = $1`)).
		WithArgs("a1").
		WillReturnRows(rows)

	attempt, err := repo.FindByID(context.Background(), "a1")
	require.NoError(t, err)
	require.Len(t, attempt.Questions, 1)
	assert.Equal(t, "What is a variable?", attempt.Questions[0].Prompt)
	assert.Equal(t, 2, attempt.Questions[0].Answer)
	assert.False(t, attempt.Scored)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuizAttemptRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newAttemptMock(t)
	defer cleanup()
	repo := NewQuizAttemptRepository(db)

	mock.ExpectExec("INSERT INTO quiz_attempts").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	attempt := &models.QuizAttempt{
		StudentID:  "student-1",
		CourseID:   "course-1",
		Week:       1,
		Difficulty: models.DifficultyMedium,
		Questions:  models.QuestionList{{Prompt: "q", Choices: []string{"A", "B", "C", "D"}, Answer: 0}},
	}
	err := repo.Create(context.Background(), attempt)
	require.NoError(t, err)
	assert.NotEmpty(t, attempt.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuizAttemptRepositoryScore(t *testing.T) {
	db, mock, cleanup := newAttemptMock(t)
	defer cleanup()
	repo := NewQuizAttemptRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE quiz_attempts SET answers = $2, score = $3, scored = true, scored_at = $4 WHERE id = $1 AND scored = false`)).
		WithArgs("a1", sqlmock.AnyArg(), 80.0, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Score(context.Background(), "a1", models.AnswerList{0, 1, 2, 3, 0}, 80.0, time.Now().UTC())
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuizAttemptRepositoryScoreAlreadyScored(t *testing.T) {
	db, mock, cleanup := newAttemptMock(t)
	defer cleanup()
	repo := NewQuizAttemptRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE quiz_attempts SET answers = $2, score = $3, scored = true, scored_at = $4 WHERE id = $1 AND scored = false`)).
		WithArgs("a1", sqlmock.AnyArg(), 80.0, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Score(context.Background(), "a1", models.AnswerList{0}, 80.0, time.Now().UTC())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already scored")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuizAttemptRepositoryListScored(t *testing.T) {
	db, mock, cleanup := newAttemptMock(t)
	defer cleanup()
	repo := NewQuizAttemptRepository(db)

	score := 60.0
	rows := sqlmock.NewRows([]string{"id", "student_id", "course_id", "week", "difficulty", "questions", "answers", "score", "scored", "created_at", "scored_at"}).
		AddRow("a1", "student-1", "course-1", 1, "hard", []byte(questionsJSON), []byte(`[1]`), score, true, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, student_id, course_id, week, difficulty, questions, answers, score, scored, created_at, scored_at FROM quiz_attempts WHERE scored = true ORDER BY created_at DESC`)).
		WillReturnRows(rows)

	attempts, err := repo.ListScored(context.Background())
	require.NoError(t, err)
	require.Len(t, attempts, 1)
	require.NotNil(t, attempts[0].Score)
	assert.InDelta(t, 60.0, *attempts[0].Score, 0.01)
	assert.Equal(t, models.AnswerList{1}, attempts[0].Answers)
	assert.NoError(t, mock.ExpectationsWereMet())
}
