// Package sqlite implements the repository interfaces using SQLite as the storage backend.
//
// WHY SQLITE?
// SQLite is an embedded database. It lives inside the Go binary as a single file.
// No separate database server to install, configure, or manage. It is the
// default backend; set DATABASE_URL to a postgres:// URL for PostgreSQL.
//
// WHY modernc.org/sqlite INSTEAD OF github.com/mattn/go-sqlite3?
// mattn/go-sqlite3 uses CGo, which means you need a C compiler installed and
// cross-compilation becomes painful. modernc.org/sqlite is a pure Go
// translation of the SQLite C code.
//
// DATABASE/SQL OVERVIEW:
// Key types:
//   - sql.DB:   a connection pool (NOT a single connection!)
//   - sql.Row:  a single result row
//   - sql.Rows: multiple result rows (must be closed!)
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/sakif/study-buddy/internal/repository"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// compile-time check that *DB is a complete backend
var _ repository.Store = (*DB)(nil)

// DB wraps a sql.DB connection pool and vends the repositories.
type DB struct {
	conn  *sql.DB
	users *UserDB
	notes *NoteDB
}

// New opens a SQLite database, applies pragmas and runs migrations.
//
// dsn examples:
//   - "data/study-buddy.db"      → file-based database (persistent)
//   - "file:data/study-buddy.db" → same, URI form
//   - ":memory:"                 → in-memory database (tests, lost on close)
//
// CONNECTION POOL:
// The pool is capped at one connection. SQLite serialises writers anyway,
// pragmas such as foreign_keys are per connection, and an in-memory
// database exists only inside the connection that created it.
func New(ctx context.Context, dsn string) (*DB, error) {
	// "sqlite" is the driver name registered by modernc.org/sqlite.
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}
	conn.SetMaxOpenConns(1)

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL mode allows concurrent readers while a write is in progress.
	// In-memory databases answer "memory" and carry on.
	if _, err := conn.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are OFF by default in SQLite (for backwards compatibility).
	if _, err := conn.ExecContext(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := newDB(conn)

	if _, err := db.Migrate(ctx); err != nil {
		conn.Close()
		return nil, err
	}

	return db, nil
}

// newDB wraps an already-open pool. Tests hand it a sqlmock connection.
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
		return nil, fmt.Errorf("sqlite: locating migrations: %w", err)
	}
	applied, err := repository.Migrate(ctx, db.conn, goose.DialectSQLite3, fsys)
	if err != nil {
		return nil, fmt.Errorf("sqlite: %w", err)
	}
	return applied, nil
}

// Users returns the Credential Store.
func (db *DB) Users() repository.UserRepository { return db.users }

// Notes returns the Note Store.
func (db *DB) Notes() repository.NoteRepository { return db.notes }

// Ping checks the database is reachable. Used by GET /healthz.
func (db *DB) Ping(ctx context.Context) error {
	if err := db.conn.PingContext(ctx); err != nil {
		return fmt.Errorf("sqlite: ping: %w", err)
	}
	return nil
}

// Close closes the database connection pool.
//
// ALWAYS DEFER CLOSE:
//
//	db, err := sqlite.New(ctx, "data/study-buddy.db")
//	if err != nil { ... }
//	defer db.Close()
func (db *DB) Close() error {
	return db.conn.Close()
}

// isUniqueViolation reports whether err is SQLite's UNIQUE constraint failure.
func isUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE
	}
	return false
}
