package handler

import (
	"context"
	"log/slog"
	"net/http"
)

// NoteService is what NotesHandler needs from service.NoteService.
type NoteService interface {
	Get(ctx context.Context, userID string) (string, error)
	Set(ctx context.Context, userID, content string) error
}

// NotesHandler serves the caller's single note. Both routes are protected.
type NotesHandler struct {
	notes  NoteService
	logger *slog.Logger
}

func NewNotesHandler(notes NoteService, logger *slog.Logger) *NotesHandler {
	return &NotesHandler{notes: notes, logger: logger}
}

type noteBody struct {
	Content string `json:"content"`
}

// HandleGet answers GET /notes with {"content": "..."}, "" when none is saved.
func (h *NotesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	content, err := h.notes.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, noteBody{Content: content})
}

// HandleSave answers POST /notes {content} by replacing the caller's note.
func (h *NotesHandler) HandleSave(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	var req noteBody
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	if err := h.notes.Set(r.Context(), id, req.Content); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
