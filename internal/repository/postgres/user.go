package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/study-buddy/internal/apperror"
	"github.com/sakif/study-buddy/internal/model"
	"github.com/sakif/study-buddy/internal/repository"
)

var _ repository.UserRepository = (*UserDB)(nil)

// UserDB is the PostgreSQL Credential Store.
type UserDB struct {
	conn *sql.DB
}

const userColumns = `id, name, email, password_hash, created_at, updated_at`

// Create inserts a new user. A users_email_key violation is DuplicateAccount.
func (u *UserDB) Create(ctx context.Context, user *model.User) error {
	now := time.Now().UTC()
	user.ID = xid.New().String()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := u.conn.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES ($1, $2, $3, $4, $5, $6)`,
		user.ID, user.Name, user.Email, user.PasswordHash, user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.DuplicateAccount()
		}
		return fmt.Errorf("postgres: inserting user: %w", err)
	}
	return nil
}

func (u *UserDB) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	user, err := u.get(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", email)
		}
		return nil, fmt.Errorf("postgres: getting user by email: %w", err)
	}
	return user, nil
}

func (u *UserDB) GetByID(ctx context.Context, id string) (*model.User, error) {
	user, err := u.get(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", id)
		}
		return nil, fmt.Errorf("postgres: getting user %s: %w", id, err)
	}
	return user, nil
}

func (u *UserDB) get(ctx context.Context, query string, arg string) (*model.User, error) {
	var user model.User
	err := u.conn.QueryRowContext(ctx, query, arg).Scan(
		&user.ID, &user.Name, &user.Email, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}
