package model

// Chat roles accepted from clients. The system prompt is always added by the
// server, so clients may not send "system" themselves.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is one turn of a conversation, in the wire format of
// OpenAI-compatible chat completion APIs.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// QuizOption is one answer choice, keyed "A".."D".
type QuizOption struct {
	Key  string `json:"key"`
	Text string `json:"text"`
}

// QuizQuestion is one multiple-choice question generated by the LLM.
// Concept names the topic a wrong answer points the student to.
type QuizQuestion struct {
	Question string       `json:"question"`
	Options  []QuizOption `json:"options"`
	Correct  string       `json:"correct"`
	Concept  string       `json:"concept"`
}
