package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/study-buddy/internal/apperror"
	"github.com/sakif/study-buddy/internal/model"
)

// Completer is the LLM client as seen by StudyService.
type Completer interface {
	Complete(ctx context.Context, messages []model.ChatMessage, temperature float64) (string, error)
}

const (
	tutorPrompt = `You are an expert teacher.
Explain the topic in detail with:
1. Clear definition
2. Step-by-step explanation
3. Real-life examples
4. Diagram explanation in text form with labels
5. Short summary
Use simple student-friendly language.`

	assistantPrompt = "You are a helpful AI study assistant. Remember previous context."

	quizPromptFormat = `Generate a 5-question MCQ quiz on %q.

Return ONLY valid JSON in this EXACT format:

[
  {
    "question": "string",
    "options": [
      { "key": "A", "text": "option text" },
      { "key": "B", "text": "option text" },
      { "key": "C", "text": "option text" },
      { "key": "D", "text": "option text" }
    ],
    "correct": "A",
    "concept": "weak topic name"
  }
]

STRICT RULES:
- No explanation
- No markdown
- No text outside JSON`
)

// Sampling temperatures per tool. Quizzes run cold so the JSON stays parseable.
const (
	askTemperature  = 0.7
	chatTemperature = 0.6
	quizTemperature = 0.3
)

// StudyService wraps the LLM with the three study tools.
//
// A nil Completer means no API key is configured; every method then returns
// apperror.ErrUnavailable instead of failing at the network.
type StudyService struct {
	llm    Completer
	logger *slog.Logger
}

// NewStudyService creates a StudyService. llm may be nil.
func NewStudyService(llm Completer, logger *slog.Logger) *StudyService {
	return &StudyService{llm: llm, logger: logger}
}

// Ask answers a single question in the expert-teacher style.
func (s *StudyService) Ask(ctx context.Context, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", apperror.ValidationFailed("question", "question is required")
	}

	return s.complete(ctx, "ask", []model.ChatMessage{
		{Role: model.RoleSystem, Content: tutorPrompt},
		{Role: model.RoleUser, Content: question},
	}, askTemperature)
}

// Chat continues a conversation. The client owns the history and sends all
// of it; only user and assistant turns are accepted.
func (s *StudyService) Chat(ctx context.Context, history []model.ChatMessage) (string, error) {
	if len(history) == 0 {
		return "", apperror.ValidationFailed("messages", "messages must be a non-empty array")
	}

	messages := make([]model.ChatMessage, 0, len(history)+1)
	messages = append(messages, model.ChatMessage{Role: model.RoleSystem, Content: assistantPrompt})
	for i, m := range history {
		if m.Role != model.RoleUser && m.Role != model.RoleAssistant {
			return "", apperror.ValidationFailed("messages",
				fmt.Sprintf("messages[%d].role must be %q or %q", i, model.RoleUser, model.RoleAssistant))
		}
		messages = append(messages, m)
	}

	return s.complete(ctx, "chat", messages, chatTemperature)
}

// GenerateQuiz asks for a five-question multiple-choice quiz on topic.
func (s *StudyService) GenerateQuiz(ctx context.Context, topic string) ([]model.QuizQuestion, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, apperror.ValidationFailed("topic", "topic is required")
	}

	raw, err := s.complete(ctx, "quiz", []model.ChatMessage{
		{Role: model.RoleUser, Content: fmt.Sprintf(quizPromptFormat, topic)},
	}, quizTemperature)
	if err != nil {
		return nil, err
	}

	quiz, err := parseQuiz(raw)
	if err != nil {
		s.logger.WarnContext(ctx, "llm returned an unusable quiz",
			slog.String("error", err.Error()),
			slog.Int("bytes", len(raw)),
		)
		return nil, apperror.Upstream("The AI service returned an invalid quiz", err)
	}
	return quiz, nil
}

// parseQuiz decodes the model output as []QuizQuestion. Models often wrap
// JSON in a markdown fence despite being told not to, so a surrounding
// ```json ... ``` block is removed first.
func parseQuiz(raw string) ([]model.QuizQuestion, error) {
	body := stripCodeFence(strings.TrimSpace(raw))

	var quiz []model.QuizQuestion
	if err := json.Unmarshal([]byte(body), &quiz); err != nil {
		return nil, fmt.Errorf("decoding quiz: %w", err)
	}
	if len(quiz) == 0 {
		return nil, errors.New("decoding quiz: no questions")
	}
	return quiz, nil
}

func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	// Drop the opening fence line, which may carry a language tag.
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func (s *StudyService) complete(ctx context.Context, tool string, messages []model.ChatMessage, temperature float64) (string, error) {
	if s.llm == nil {
		return "", apperror.Unavailable("The AI service is not configured")
	}

	reply, err := s.llm.Complete(ctx, messages, temperature)
	if err != nil {
		s.logger.ErrorContext(ctx, "llm request failed",
			slog.String("tool", tool),
			slog.String("error", err.Error()),
		)
		return "", apperror.Upstream("The AI service failed to respond", err)
	}
	return reply, nil
}
