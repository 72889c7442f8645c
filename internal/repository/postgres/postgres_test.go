package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/study-buddy/internal/apperror"
	"github.com/sakif/study-buddy/internal/model"
)

func newRepoWithMock(t *testing.T) (*DB, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return newDB(conn), mock
}

var userCols = []string{"id", "name", "email", "password_hash", "created_at", "updated_at"}

func TestUserCreate_Success(t *testing.T) {
	db, mock := newRepoWithMock(t)

	mock.ExpectExec(`(?s)^INSERT\s+INTO\s+users\s*\(.*\)\s*VALUES\s*\(\$1, \$2, \$3, \$4, \$5, \$6\)$`).
		WithArgs(sqlmock.AnyArg(), "Ada", "ada@example.com", "hash", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	user := &model.User{Name: "Ada", Email: "ada@example.com", PasswordHash: "hash"}
	require.NoError(t, db.Users().Create(context.Background(), user))

	assert.NotEmpty(t, user.ID)
	assert.False(t, user.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserCreate_UniqueViolation(t *testing.T) {
	db, mock := newRepoWithMock(t)

	mock.ExpectExec(`INSERT INTO users`).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	err := db.Users().Create(context.Background(), &model.User{Name: "Ada", Email: "ada@example.com", PasswordHash: "h"})
	assert.ErrorIs(t, err, apperror.ErrDuplicateAccount)
}

func TestUserCreate_OtherPgErrorIsNotDuplicate(t *testing.T) {
	db, mock := newRepoWithMock(t)

	mock.ExpectExec(`INSERT INTO users`).
		WillReturnError(&pgconn.PgError{Code: "23502"})

	err := db.Users().Create(context.Background(), &model.User{Name: "Ada", Email: "ada@example.com"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, apperror.ErrDuplicateAccount)
}

func TestUserGetByEmail_Found(t *testing.T) {
	db, mock := newRepoWithMock(t)
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE email = $1`)).
		WithArgs("ada@example.com").
		WillReturnRows(sqlmock.NewRows(userCols).AddRow("u1", "Ada", "ada@example.com", "hash", now, now))

	user, err := db.Users().GetByEmail(context.Background(), "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, "hash", user.PasswordHash)
}

func TestUserGetByEmail_NotFound(t *testing.T) {
	db, mock := newRepoWithMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE email = $1`)).
		WithArgs("nobody@example.com").
		WillReturnRows(sqlmock.NewRows(userCols))

	_, err := db.Users().GetByEmail(context.Background(), "nobody@example.com")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestUserGetByID_DBError(t *testing.T) {
	db, mock := newRepoWithMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE id = $1`)).
		WithArgs("u1").
		WillReturnError(errors.New("db down"))

	_, err := db.Users().GetByID(context.Background(), "u1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
	assert.NotErrorIs(t, err, apperror.ErrNotFound)
}

func TestNoteGetByUserID_NotFound(t *testing.T) {
	db, mock := newRepoWithMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM notes WHERE user_id = $1`)).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "content", "created_at", "updated_at"}))

	_, err := db.Notes().GetByUserID(context.Background(), "u1")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestNoteUpsert_ReturnsCanonicalRow(t *testing.T) {
	db, mock := newRepoWithMock(t)
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	updated := created.Add(time.Hour)

	mock.ExpectQuery(`(?s)INSERT INTO notes .* ON CONFLICT \(user_id\) DO UPDATE .* RETURNING id, created_at, updated_at`).
		WithArgs(sqlmock.AnyArg(), "u1", "hi", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow("n-existing", created, updated))

	note := &model.Note{UserID: "u1", Content: "hi"}
	require.NoError(t, db.Notes().Upsert(context.Background(), note))

	assert.Equal(t, "n-existing", note.ID)
	assert.True(t, note.CreatedAt.Equal(created))
	assert.True(t, note.UpdatedAt.Equal(updated))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPing_Failure(t *testing.T) {
	conn, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	mock.ExpectPing().WillReturnError(errors.New("connection refused"))

	assert.Error(t, newDB(conn).Ping(context.Background()))
}
