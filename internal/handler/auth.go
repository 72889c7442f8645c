package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/sakif/study-buddy/internal/model"
	"github.com/sakif/study-buddy/internal/service"
)

// AuthService is what AuthHandler needs from service.AuthService.
type AuthService interface {
	Signup(ctx context.Context, in service.SignupInput) error
	Login(ctx context.Context, email, password string) (*service.LoginResult, error)
	CurrentUser(ctx context.Context, userID string) (*model.User, error)
}

// AuthHandler serves signup, login and the current-user profile.
//
// HANDLER RESPONSIBILITIES:
//   - HandleSignup → create an account (no token is issued)
//   - HandleLogin  → check credentials and return a 7-day bearer token
//   - HandleMe     → return the authenticated user's profile
type AuthHandler struct {
	auth   AuthService
	logger *slog.Logger
}

// NewAuthHandler creates an AuthHandler. All dependencies are injected here;
// the handler has no knowledge of how they're constructed.
func NewAuthHandler(auth AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger}
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string           `json:"token"`
	User  model.PublicUser `json:"user"`
}

type meResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// HandleSignup creates an account.
//
// HTTP: POST /signup {name, email, password}
func (h *AuthHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	err := h.auth.Signup(r.Context(), service.SignupInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Signup successful"})
}

// HandleLogin exchanges credentials for a session token.
//
// HTTP: POST /login {email, password}
//
// Unknown email and wrong password produce the same 400 body. The client
// keeps the token and sends it as "Authorization: Bearer <token>".
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	result, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		Token: result.Token,
		User:  result.User.Public(),
	})
}

// HandleMe returns the currently authenticated user's profile.
//
// HTTP: GET /me
// Auth: Required. A token for an account that no longer exists gets 401.
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	user, err := h.auth.CurrentUser(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, meResponse{ID: user.ID, Name: user.Name, Email: user.Email})
}
