// Package service holds the business rules. Handlers call services with plain
// values; services talk to repositories and the auth utilities.
//
//	AuthHandler (HTTP) → AuthService (business rules) → UserRepository (DB)
//	                   ↘ TokenService (JWT), PasswordService (bcrypt)
//
// Services never see HTTP. Failures come back as apperror values that the
// handler layer maps to status codes.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/study-buddy/internal/apperror"
	"github.com/sakif/study-buddy/internal/auth"
	"github.com/sakif/study-buddy/internal/model"
	"github.com/sakif/study-buddy/internal/repository"
)

// AuthService handles signup, login and identity lookup.
//
// DEPENDENCIES (injected via NewAuthService):
//   - users      repository.UserRepository  → read/write user records
//   - tokens     *auth.TokenService         → issue JWTs
//   - passwords  *auth.PasswordService      → bcrypt hashing
//   - logger     *slog.Logger               → structured logging
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

// NewAuthService creates an AuthService with all required dependencies.
func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// SignupInput is the data needed to create an account.
type SignupInput struct {
	Name     string
	Email    string
	Password string
}

// LoginResult bundles the issued JWT with the user it belongs to.
type LoginResult struct {
	User  *model.User
	Token string
}

// NormalizeEmail trims surrounding space and lower-cases the address. Every
// lookup and insert goes through it, so "Ada@Example.com" and
// "ada@example.com" are one account.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Signup creates a new account.
//
// The explicit lookup gives the friendly error in the common case; the
// store's UNIQUE constraint catches the concurrent case and reports the same
// DuplicateAccount error.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) error {
	name := strings.TrimSpace(in.Name)
	email := NormalizeEmail(in.Email)

	if err := validateSignup(name, email, in.Password); err != nil {
		return err
	}

	_, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		return apperror.DuplicateAccount()
	case !errors.Is(err, apperror.ErrNotFound):
		return fmt.Errorf("service/auth: checking existing account: %w", err)
	}

	hash, err := s.passwords.Hash(in.Password)
	if err != nil {
		return err
	}

	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrDuplicateAccount) {
			return err
		}
		return fmt.Errorf("service/auth: creating user: %w", err)
	}

	s.logger.InfoContext(ctx, "user signed up", slog.String("userID", user.ID))
	return nil
}

func validateSignup(name, email, password string) error {
	switch {
	case name == "":
		return apperror.ValidationFailed("name", "name is required")
	case email == "":
		return apperror.ValidationFailed("email", "email is required")
	case !looksLikeEmail(email):
		return apperror.ValidationFailed("email", "email must be a valid address")
	case password == "":
		return apperror.ValidationFailed("password", "password is required")
	case len(password) > auth.MaxPasswordBytes:
		return apperror.ValidationFailed("password",
			fmt.Sprintf("password must be %d bytes or fewer", auth.MaxPasswordBytes))
	}
	return nil
}

// looksLikeEmail only checks for a local part and a domain around one '@'.
func looksLikeEmail(email string) bool {
	local, domain, ok := strings.Cut(email, "@")
	return ok && local != "" && domain != "" && !strings.ContainsAny(email, " \t\r\n")
}

// Login checks credentials and issues a session token.
//
// Unknown email and wrong password return the same InvalidCredentials error.
// For an unknown email a throwaway bcrypt comparison still runs, so response
// time does not reveal which accounts exist.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = NormalizeEmail(email)

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			s.passwords.BurnCompare(password)
			return nil, apperror.InvalidCredentials()
		}
		return nil, fmt.Errorf("service/auth: looking up user: %w", err)
	}

	if !s.passwords.Matches(user.PasswordHash, password) {
		s.logger.InfoContext(ctx, "login rejected", slog.String("userID", user.ID))
		return nil, apperror.InvalidCredentials()
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("service/auth: issuing token for user %s: %w", user.ID, err)
	}

	s.logger.InfoContext(ctx, "user logged in", slog.String("userID", user.ID))
	return &LoginResult{User: user, Token: token}, nil
}

// CurrentUser loads the account behind an authenticated request. A valid
// token whose user no longer exists is Unauthorized.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthorized()
		}
		return nil, fmt.Errorf("service/auth: getting user %s: %w", userID, err)
	}
	return user, nil
}
