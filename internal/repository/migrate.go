package repository

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
)

// Migrate applies every pending migration in fsys to db and returns the
// versions it applied, oldest first.
//
// Each backend embeds its own SQL files because the dialects differ in
// types and placeholders. A goose Provider is used instead of the package
// level goose functions so no global dialect or base FS is shared between
// backends.
func Migrate(ctx context.Context, db *sql.DB, dialect goose.Dialect, fsys fs.FS) ([]int64, error) {
	provider, err := goose.NewProvider(dialect, db, fsys)
	if err != nil {
		return nil, fmt.Errorf("repository: preparing migrations: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return nil, fmt.Errorf("repository: applying migrations: %w", err)
	}

	applied := make([]int64, 0, len(results))
	for _, r := range results {
		applied = append(applied, r.Source.Version)
	}
	return applied, nil
}
