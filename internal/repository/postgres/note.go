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

var _ repository.NoteRepository = (*NoteDB)(nil)

// NoteDB is the PostgreSQL Note Store.
type NoteDB struct {
	conn *sql.DB
}

func (n *NoteDB) GetByUserID(ctx context.Context, userID string) (*model.Note, error) {
	var note model.Note
	err := n.conn.QueryRowContext(ctx,
		`SELECT id, user_id, content, created_at, updated_at FROM notes WHERE user_id = $1`,
		userID,
	).Scan(&note.ID, &note.UserID, &note.Content, &note.CreatedAt, &note.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("note", userID)
		}
		return nil, fmt.Errorf("postgres: getting note for user %s: %w", userID, err)
	}
	return &note, nil
}

// Upsert relies on the notes_user_id_key constraint for the conflict target.
func (n *NoteDB) Upsert(ctx context.Context, note *model.Note) error {
	now := time.Now().UTC()
	err := n.conn.QueryRowContext(ctx,
		`INSERT INTO notes (id, user_id, content, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $4)
		 ON CONFLICT (user_id) DO UPDATE SET
		     content = EXCLUDED.content,
		     updated_at = EXCLUDED.updated_at
		 RETURNING id, created_at, updated_at`,
		xid.New().String(), note.UserID, note.Content, now,
	).Scan(&note.ID, &note.CreatedAt, &note.UpdatedAt)
	if err != nil {
		return fmt.Errorf("postgres: upserting note for user %s: %w", note.UserID, err)
	}
	return nil
}
