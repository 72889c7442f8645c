package sqlite

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

var _ repository.NoteRepository = (*NoteDB)(nil)

// NoteDB is the SQLite Note Store.
type NoteDB struct {
	conn *sql.DB
}

// GetByUserID returns the user's note, or apperror.ErrNotFound.
func (n *NoteDB) GetByUserID(ctx context.Context, userID string) (*model.Note, error) {
	var note model.Note
	err := n.conn.QueryRowContext(ctx,
		`SELECT id, user_id, content, created_at, updated_at FROM notes WHERE user_id = ?`,
		userID,
	).Scan(
		&note.ID,
		&note.UserID,
		&note.Content,
		&note.CreatedAt,
		&note.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("note", userID)
		}
		return nil, fmt.Errorf("sqlite: getting note for user %s: %w", userID, err)
	}
	return &note, nil
}

// Upsert writes the note keyed by user_id.
//
// INSERT ... ON CONFLICT(user_id) DO UPDATE keeps the existing row ID and
// created_at, and replaces content. RETURNING hands back the canonical row
// so the caller's struct matches what is stored.
func (n *NoteDB) Upsert(ctx context.Context, note *model.Note) error {
	now := time.Now().UTC()

	err := n.conn.QueryRowContext(ctx,
		`INSERT INTO notes (id, user_id, content, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
		     content = excluded.content,
		     updated_at = excluded.updated_at
		 RETURNING id, created_at, updated_at`,
		xid.New().String(),
		note.UserID,
		note.Content,
		now,
		now,
	).Scan(&note.ID, &note.CreatedAt, &note.UpdatedAt)
	if err != nil {
		return fmt.Errorf("sqlite: upserting note for user %s: %w", note.UserID, err)
	}
	return nil
}
