// Package apperror defines the domain error taxonomy shared by every layer.
//
// Services return these errors; only the HTTP layer (handler.writeError)
// turns them into status codes. Callers test for a category with errors.Is
// against the sentinel values below.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrValidation         = errors.New("validation error")
	ErrDuplicateAccount   = errors.New("duplicate account")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrUpstream           = errors.New("upstream error")
	ErrUnavailable        = errors.New("unavailable")
)

type AppError struct {
	Err     error  // actual error
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

// DuplicateAccount is returned by signup when the email is already taken.
// The message is shown to the client as-is.
func DuplicateAccount() *AppError {
	return &AppError{
		Err:     ErrDuplicateAccount,
		Message: "User already exists",
		Field:   "email",
	}
}

// InvalidCredentials is the single login failure. It must look the same
// whether the email is unknown or the password is wrong.
func InvalidCredentials() *AppError {
	return &AppError{
		Err:     ErrInvalidCredentials,
		Message: "Invalid credentials",
	}
}

// Unauthorized is returned for every token problem on a protected route.
// The underlying reason never reaches the client.
func Unauthorized() *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: "Unauthorized",
	}
}

// Upstream wraps a failure of an external API. cause is kept for logging
// through errors.Unwrap chains but the message stays generic.
func Upstream(message string, cause error) *AppError {
	return &AppError{
		Err:     fmt.Errorf("%w: %w", ErrUpstream, cause),
		Message: message,
	}
}

func Unavailable(message string) *AppError {
	return &AppError{
		Err:     ErrUnavailable,
		Message: message,
	}
}
