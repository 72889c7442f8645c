package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/sakif/study-buddy/internal/model"
)

// StudyService is what StudyHandler needs from service.StudyService.
type StudyService interface {
	Ask(ctx context.Context, question string) (string, error)
	Chat(ctx context.Context, history []model.ChatMessage) (string, error)
	GenerateQuiz(ctx context.Context, topic string) ([]model.QuizQuestion, error)
}

// StudyHandler exposes the LLM-backed study tools.
type StudyHandler struct {
	study  StudyService
	logger *slog.Logger
}

func NewStudyHandler(study StudyService, logger *slog.Logger) *StudyHandler {
	return &StudyHandler{study: study, logger: logger}
}

type askRequest struct {
	Question string `json:"question"`
}

type chatRequest struct {
	Messages []model.ChatMessage `json:"messages"`
}

type quizRequest struct {
	Topic string `json:"topic"`
}

// HandleAsk answers POST /ask-ai {question} with {answer}. Public.
func (h *StudyHandler) HandleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	answer, err := h.study.Ask(r.Context(), req.Question)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"answer": answer})
}

// HandleChat answers POST /chat {messages} with {reply}.
func (h *StudyHandler) HandleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	reply, err := h.study.Chat(r.Context(), req.Messages)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"reply": reply})
}

// HandleQuiz answers POST /generate-quiz {topic} with {quiz: [...]}.
func (h *StudyHandler) HandleQuiz(w http.ResponseWriter, r *http.Request) {
	var req quizRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	quiz, err := h.study.GenerateQuiz(r.Context(), req.Topic)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string][]model.QuizQuestion{"quiz": quiz})
}
