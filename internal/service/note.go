package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sakif/study-buddy/internal/apperror"
	"github.com/sakif/study-buddy/internal/model"
	"github.com/sakif/study-buddy/internal/repository"
)

// NoteService reads and writes each user's single note.
type NoteService struct {
	notes  repository.NoteRepository
	logger *slog.Logger
}

// NewNoteService creates a NoteService.
func NewNoteService(notes repository.NoteRepository, logger *slog.Logger) *NoteService {
	return &NoteService{notes: notes, logger: logger}
}

// Get returns the user's note content, or "" if they have none yet.
func (s *NoteService) Get(ctx context.Context, userID string) (string, error) {
	note, err := s.notes.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("service/note: getting note: %w", err)
	}
	return note.Content, nil
}

// Set stores content as the user's note, replacing any previous one.
func (s *NoteService) Set(ctx context.Context, userID, content string) error {
	note := &model.Note{UserID: userID, Content: content}
	if err := s.notes.Upsert(ctx, note); err != nil {
		return fmt.Errorf("service/note: saving note: %w", err)
	}

	s.logger.DebugContext(ctx, "note saved",
		slog.String("userID", userID),
		slog.Int("bytes", len(content)),
	)
	return nil
}
