package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRateLimitMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestRateLimitRepositoryCount(t *testing.T) {
	db, mock, cleanup := newRateLimitMock(t)
	defer cleanup()
	repo := NewRateLimitRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, professor_id, action, day, count FROM rate_limits WHERE professor_id = $1 AND action = $2 AND day = $3`)).
		WithArgs("prof-1", "upload", "2026-08-25").
		WillReturnRows(sqlmock.NewRows([]string{"id", "professor_id", "action", "day", "count"}).
			AddRow("rl-1", "prof-1", "upload", "2026-08-25", 7))

	count, err := repo.Count(context.Background(), "prof-1", "upload", "2026-08-25")
	require.NoError(t, err)
	assert.Equal(t, 7, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRateLimitRepositoryFind(t *testing.T) {
	db, mock, cleanup := newRateLimitMock(t)
	defer cleanup()
	repo := NewRateLimitRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, professor_id, action, day, count FROM rate_limits WHERE professor_id = $1 AND action = $2 AND day = $3`)).
		WithArgs("prof-1", "upload", "2026-08-25").
		WillReturnRows(sqlmock.NewRows([]string{"id", "professor_id", "action", "day", "count"}).
			AddRow("rl-1", "prof-1", "upload", "2026-08-25", 7))

	limit, err := repo.Find(context.Background(), "prof-1", "upload", "2026-08-25")
	require.NoError(t, err)
	assert.Equal(t, "rl-1", limit.ID)
	assert.Equal(t, "prof-1", limit.ProfessorID)
	assert.Equal(t, "upload", limit.Action)
	assert.Equal(t, "2026-08-25", limit.Day)
	assert.Equal(t, 7, limit.Count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRateLimitRepositoryCountFirstUse(t *testing.T) {
	db, mock, cleanup := newRateLimitMock(t)
	defer cleanup()
	repo := NewRateLimitRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, professor_id, action, day, count FROM rate_limits WHERE professor_id = $1 AND action = $2 AND day = $3`)).
		WithArgs("prof-1", "upload", "2026-08-25").
		WillReturnRows(sqlmock.NewRows([]string{"id", "professor_id", "action", "day", "count"}))

	count, err := repo.Count(context.Background(), "prof-1", "upload", "2026-08-25")
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRateLimitRepositoryIncrement(t *testing.T) {
	db, mock, cleanup := newRateLimitMock(t)
	defer cleanup()
	repo := NewRateLimitRepository(db)

	mock.ExpectExec("INSERT INTO rate_limits").
		WithArgs(sqlmock.AnyArg(), "prof-1", "upload", "2026-08-25").
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.Increment(context.Background(), "prof-1", "upload", "2026-08-25"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
