// Package handler contains the HTTP request handlers for the study-buddy API.
//
// WHAT IS A HANDLER?
// In Go, an HTTP handler is anything that implements the http.Handler interface:
//
//	type Handler interface {
//	    ServeHTTP(ResponseWriter, *Request)
//	}
//
// Or more commonly, we use http.HandlerFunc, a function with the right signature
// that automatically satisfies the Handler interface. Chi's router accepts these directly.
//
// HANDLER RESPONSIBILITIES:
// 1. Parse the incoming HTTP request (JSON body, identity from the context)
// 2. Call the service layer
// 3. Write the HTTP response (status code, headers, body)
//
// Handlers should NOT contain business logic. They are the glue between HTTP and the services.
package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/sakif/study-buddy/internal/apperror"
	"github.com/sakif/study-buddy/internal/auth"
)

// MaxBodyBytes caps every JSON request body.
const MaxBodyBytes = 1 << 20

// decodeJSON reads a JSON object from the request body into dst.
//
// Unknown fields are ignored. Anything that is not a single JSON value,
// including an empty body or one over MaxBodyBytes, is a validation error.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)

	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return apperror.ValidationFailed("body",
				fmt.Sprintf("request body must be %d bytes or fewer", MaxBodyBytes))
		case errors.Is(err, io.EOF):
			return apperror.ValidationFailed("body", "request body is required")
		default:
			return apperror.ValidationFailed("body", "request body must be valid JSON")
		}
	}

	// One value only. Trailing garbage means the client sent something odd.
	if dec.More() {
		return apperror.ValidationFailed("body", "request body must contain a single JSON object")
	}
	return nil
}

// userID returns the identity RequireAuth stored. The routes using it are
// always mounted behind the gate, so a miss is treated as unauthenticated.
func userID(r *http.Request) (string, error) {
	id, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		return "", apperror.Unauthorized()
	}
	return id, nil
}
