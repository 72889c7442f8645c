// Package llm is a minimal client for OpenAI-compatible chat-completions APIs
// (Groq by default).
//
// Only the one endpoint the study tools need is implemented:
//
//	POST {baseURL}/chat/completions
//
// The API key travels as an OAuth2-style bearer token. oauth2.StaticTokenSource
// wraps it so the transport sets the Authorization header on every request.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/sakif/study-buddy/internal/model"
)

// ErrEmptyReply is returned when the API answers 2xx but without any content.
var ErrEmptyReply = errors.New("llm: empty reply")

// maxErrorBody caps how much of a failed response is read for the error message.
const maxErrorBody = 4 << 10

// APIError is a non-2xx answer from the upstream API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("llm: upstream returned %d", e.StatusCode)
	}
	return fmt.Sprintf("llm: upstream returned %d: %s", e.StatusCode, e.Message)
}

// Client calls the chat-completions endpoint. Safe for concurrent use.
type Client struct {
	http    *http.Client
	baseURL string
	model   string
}

// New builds a Client. timeout bounds each whole request including the body.
func New(apiKey, baseURL, model string, timeout time.Duration) *Client {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: apiKey, TokenType: "Bearer"})
	httpClient := oauth2.NewClient(context.Background(), ts)
	httpClient.Timeout = timeout

	return &Client{
		http:    httpClient,
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
	}
}

type completionRequest struct {
	Model       string              `json:"model"`
	Messages    []model.ChatMessage `json:"messages"`
	Temperature float64             `json:"temperature"`
}

type completionResponse struct {
	Choices []struct {
		Message model.ChatMessage `json:"message"`
	} `json:"choices"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends messages and returns the first choice's content.
func (c *Client) Complete(ctx context.Context, messages []model.ChatMessage, temperature float64) (string, error) {
	body, err := json.Marshal(completionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: temperature,
	})
	if err != nil {
		return "", fmt.Errorf("llm: encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("llm: building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("llm: sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", readAPIError(resp)
	}

	var out completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("llm: decoding response: %w", err)
	}

	if len(out.Choices) == 0 || strings.TrimSpace(out.Choices[0].Message.Content) == "" {
		return "", ErrEmptyReply
	}
	return out.Choices[0].Message.Content, nil
}

func readAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var parsed errorResponse
	if json.Unmarshal(raw, &parsed) == nil && parsed.Error.Message != "" {
		apiErr.Message = parsed.Error.Message
	} else {
		apiErr.Message = strings.TrimSpace(string(raw))
	}
	return apiErr
}
