// Package postgres implements the repository interfaces on PostgreSQL through
// pgx's database/sql driver.
//
// It is selected when DATABASE_URL starts with postgres:// or postgresql://.
// Queries mirror the sqlite package with $n placeholders.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/sakif/study-buddy/internal/repository"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// uniqueViolation is SQLSTATE 23505.
const uniqueViolation = "23505"

var _ repository.Store = (*DB)(nil)

// DB wraps a pgx-backed connection pool.
type DB struct {
	conn  *sql.DB
	users *UserDB
	notes *NoteDB
}

// New connects to PostgreSQL and applies pending migrations.
func New(ctx context.Context, url string) (*DB, error) {
	conn, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("postgres: opening database: %w", err)
	}
	conn.SetMaxOpenConns(10)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxIdleTime(5 * time.Minute)

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("postgres: pinging database: %w", err)
	}

	db := newDB(conn)
	if _, err := db.Migrate(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

func newDB(conn *sql.DB) *DB {
	return &DB{
		conn:  conn,
		users: &UserDB{conn: conn},
		notes: &NoteDB{conn: conn},
	}
}

// Migrate applies pending schema migrations and returns their versions.
func (db *DB) Migrate(ctx context.Context) ([]int64, error) {
	fsys, err := fs.Sub(migrationFiles, "migrations")
	if err != nil {
		return nil, fmt.Errorf("postgres: locating migrations: %w", err)
	}
	applied, err := repository.Migrate(ctx, db.conn, goose.DialectPostgres, fsys)
	if err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}
	return applied, nil
}

func (db *DB) Users() repository.UserRepository { return db.users }

func (db *DB) Notes() repository.NoteRepository { return db.notes }

func (db *DB) Ping(ctx context.Context) error {
	if err := db.conn.PingContext(ctx); err != nil {
		return fmt.Errorf("postgres: ping: %w", err)
	}
	return nil
}

func (db *DB) Close() error {
	return db.conn.Close()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
