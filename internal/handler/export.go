package handler

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/sakif/study-buddy/internal/apperror"
	"github.com/sakif/study-buddy/internal/pdf"
)

// Renderer writes a document for topic and content.
type Renderer interface {
	Render(w io.Writer, topic, content string) error
}

// ExportHandler turns an answer into a PDF download.
type ExportHandler struct {
	renderer Renderer
	logger   *slog.Logger
}

func NewExportHandler(renderer Renderer, logger *slog.Logger) *ExportHandler {
	return &ExportHandler{renderer: renderer, logger: logger}
}

type exportRequest struct {
	Topic   string `json:"topic"`
	Content string `json:"content"`
}

// HandleDownloadPDF answers POST /download-pdf {topic, content}.
//
// The document is rendered into memory first so a render failure can still
// be reported as a JSON 500 instead of a truncated download.
func (h *ExportHandler) HandleDownloadPDF(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	topic := strings.TrimSpace(req.Topic)
	if topic == "" || strings.TrimSpace(req.Content) == "" {
		writeError(w, r, h.logger, apperror.ValidationFailed("topic", "Topic and content required"))
		return
	}

	var buf bytes.Buffer
	if err := h.renderer.Render(&buf, topic, req.Content); err != nil {
		writeError(w, r, h.logger, fmt.Errorf("handler/export: %w", err))
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", pdf.Filename(topic)))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.WarnContext(r.Context(), "pdf download interrupted", slog.String("error", err.Error()))
	}
}
