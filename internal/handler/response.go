package handler

// RESPONSE HELPERS:
// These functions standardise how we send JSON responses and errors.
//
//	writeJSON(w, http.StatusOK, data)
//	writeError(w, r, logger, err)
//
// CONSISTENT ERROR FORMAT:
// Every error response from our API has the same shape:
//
//	{"error": "invalid_credentials", "message": "Invalid credentials"}
//
// The frontend always knows what fields to expect, whatever the status.

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/study-buddy/internal/apperror"
)

// ErrorResponse is the standard error format returned by all API endpoints.
type ErrorResponse struct {
	Error   string `json:"error"`   // Machine-readable error type (e.g., "not_found")
	Message string `json:"message"` // Human-readable description
}

// writeJSON sends a JSON response with the given status code.
//
// HEADER ORDER MATTERS:
// Headers and status code must be set BEFORE writing the body.
//  1. w.Header().Set(...)     ← set headers
//  2. w.WriteHeader(status)   ← send status + headers
//  3. json.Encode(data)       ← send body
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent, so all we can do is log.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// errorMapping pairs a sentinel with its HTTP status and machine-readable type.
type errorMapping struct {
	target error
	status int
	kind   string
}

// errorMappings is checked in order with errors.Is.
var errorMappings = []errorMapping{
	{apperror.ErrValidation, http.StatusBadRequest, "validation_error"},
	{apperror.ErrDuplicateAccount, http.StatusBadRequest, "duplicate_account"},
	{apperror.ErrInvalidCredentials, http.StatusBadRequest, "invalid_credentials"},
	{apperror.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
	{apperror.ErrNotFound, http.StatusNotFound, "not_found"},
	{apperror.ErrUpstream, http.StatusBadGateway, "upstream_error"},
	{apperror.ErrUnavailable, http.StatusServiceUnavailable, "unavailable"},
}

// writeError maps a domain error to the appropriate HTTP status code and sends it.
//
// ERROR MAPPING:
// This is where domain errors (from the service layer) get translated to HTTP.
// The service layer should not know about HTTP status codes.
//
// errors.Is() walks the whole chain, so this works:
//
//	service returns: fmt.Errorf("service/auth: ...: %w", apperror.DuplicateAccount())
//	which wraps:     AppError{Err: ErrDuplicateAccount, Message: "User already exists"}
//	errors.Is walks: outer error → AppError → ErrDuplicateAccount ✓ match!
//
// Every 5xx is logged with the request id. The client only ever sees the
// AppError message, or a generic one for unknown errors.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	status := http.StatusInternalServerError
	kind := "internal_error"
	message := "An internal error occurred"

	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		for _, m := range errorMappings {
			if errors.Is(err, m.target) {
				status, kind, message = m.status, m.kind, appErr.Message
				break
			}
		}
	}

	if status >= http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", status),
			slog.String("request_id", chimiddleware.GetReqID(r.Context())),
			slog.String("error", err.Error()),
		)
	}

	writeJSON(w, status, ErrorResponse{
		Error:   kind,
		Message: message,
	})
}
