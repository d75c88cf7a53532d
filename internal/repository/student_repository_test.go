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

func newStudentMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestStudentRepositoryFindByTelegramID(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	rows := sqlmock.NewRows([]string{"id", "telegram_id", "student_no", "full_name", "university_id", "major_id", "year", "approved", "created_at", "approved_at"}).
		AddRow("s1", "555001", "U123456", "Jordan Smith", "uni-1", "major-1", 1, true, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, telegram_id, student_no, full_name, university_id, major_id, year, approved, created_at, approved_at FROM students WHERE telegram_id = $1`)).
		WithArgs("555001").
		WillReturnRows(rows)

	student, err := repo.FindByTelegramID(context.Background(), "555001")
	require.NoError(t, err)
	assert.Equal(t, "U123456", student.StudentNo)
	assert.True(t, student.Approved)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryExistsByStudentNo(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT 1 FROM students WHERE student_no = $1 LIMIT 1`)).
		WithArgs("U123456").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	exists, err := repo.ExistsByStudentNo(context.Background(), "U123456")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryExistsByStudentNoMissing(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT 1 FROM students WHERE student_no = $1 LIMIT 1`)).
		WithArgs("U999999").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}))

	exists, err := repo.ExistsByStudentNo(context.Background(), "U999999")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec("INSERT INTO students").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	telegramID := "555001"
	student := &models.Student{
		TelegramID:   &telegramID,
		StudentNo:    "U123456",
		FullName:     "Jordan Smith",
		UniversityID: "uni-1",
		MajorID:      "major-1",
		Year:         1,
	}
	err := repo.Create(context.Background(), student)
	require.NoError(t, err)
	assert.NotEmpty(t, student.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryApprove(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE students SET approved = true, approved_at = $2 WHERE id = $1`)).
		WithArgs("s1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Approve(context.Background(), "s1", time.Now().UTC()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryListTelegramIDsForCourse(t *testing.T) {
	db, mock, cleanup := newStudentMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery("SELECT s.telegram_id FROM students s").
		WithArgs("course-1").
		WillReturnRows(sqlmock.NewRows([]string{"telegram_id"}).AddRow("555001").AddRow("555002"))

	ids, err := repo.ListTelegramIDsForCourse(context.Background(), "course-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"555001", "555002"}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}
