package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
)

// contextKey is an unexported type used for context keys in this package.
//
// WHY A CUSTOM TYPE FOR CONTEXT KEYS?
// context.WithValue uses any as the key type. A plain string key could be
// read or shadowed by any package that knows the string. Only this package
// can create a key of type contextKey.
type contextKey string

const identityKey contextKey = "identity"

const bearerPrefix = "Bearer "

// Identity is what the gate attaches to an authenticated request.
type Identity struct {
	UserID string
}

// TokenVerifier is the part of TokenService the gate needs.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

type unauthorizedBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// RequireAuth is a middleware that enforces authentication on protected routes.
//
// It reads "Authorization: Bearer <token>", verifies the token and stores the
// caller's Identity in the request context. Every failure gets the same 401
// body; the reason is only logged at debug level.
//
// MIDDLEWARE PATTERN IN GO:
// A middleware takes an http.Handler and returns a new one that wraps it.
// Chi applies middlewares in a chain: req → M1 → M2 → Handler → M2 → M1 → resp
//
// The gate does not look the user up. A token for a deleted account still
// passes here; handlers that need the account (GET /me) check themselves.
func RequireAuth(tokens TokenVerifier, logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := authenticate(r, tokens)
			if err != nil {
				logger.DebugContext(r.Context(), "authentication rejected",
					slog.String("path", r.URL.Path),
					slog.String("reason", err.Error()),
				)
				writeUnauthorized(w)
				return
			}

			ctx := WithIdentity(r.Context(), Identity{UserID: userID})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

var (
	errMissingHeader = errors.New("missing Authorization header")
	errNotBearer     = errors.New("Authorization header is not a Bearer credential")
	errEmptyToken    = errors.New("empty bearer token")
)

// authenticate extracts the bearer token and verifies it. The scheme match is
// exact: "bearer x" and "Bearer" with no space are both rejected.
func authenticate(r *http.Request, tokens TokenVerifier) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", errMissingHeader
	}

	token, ok := strings.CutPrefix(header, bearerPrefix)
	if !ok {
		return "", errNotBearer
	}
	if token == "" {
		return "", errEmptyToken
	}

	return tokens.Verify(token)
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(unauthorizedBody{
		Error:   "unauthorized",
		Message: "Unauthorized",
	})
}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFromContext returns the Identity set by RequireAuth.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok && id.UserID != ""
}

// UserIDFromContext retrieves the authenticated user's ID from the request context.
//
// Returns ("", false) if the request did not pass through RequireAuth.
//
//	userID, ok := auth.UserIDFromContext(r.Context())
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := IdentityFromContext(ctx)
	return id.UserID, ok
}
