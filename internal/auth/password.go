package auth

import (
	"crypto/rand"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/sakif/study-buddy/internal/apperror"
)

// DefaultCost is the bcrypt work factor used for stored credentials
// (2^10 rounds). Hashes embed their own cost and salt, so raising it later
// does not break existing rows.
const DefaultCost = 10

// MaxPasswordBytes is bcrypt's input limit. Longer inputs are silently
// truncated by the algorithm, so Hash refuses them instead.
const MaxPasswordBytes = 72

// ErrPasswordMismatch is returned by Verify when the hash is well formed but
// belongs to a different password.
var ErrPasswordMismatch = errors.New("auth: password does not match")

// PasswordService hashes and checks passwords with bcrypt.
//
// The zero value is not usable; build one with NewPasswordService.
type PasswordService struct {
	cost int

	// dummy is compared against when a login names an unknown email, so the
	// "no such user" branch costs one bcrypt comparison like the real one.
	dummyOnce sync.Once
	dummy     []byte
}

// PasswordOption configures a PasswordService.
type PasswordOption func(*PasswordService)

// WithCost overrides the bcrypt cost. Tests use bcrypt.MinCost (4).
func WithCost(cost int) PasswordOption {
	return func(p *PasswordService) { p.cost = cost }
}

// NewPasswordService creates a PasswordService, by default at DefaultCost.
func NewPasswordService(opts ...PasswordOption) *PasswordService {
	p := &PasswordService{cost: DefaultCost}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Hash returns the bcrypt encoding of plaintext, e.g.
//
//	$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy
//
// The string carries version, cost and salt and is stored as-is.
func (p *PasswordService) Hash(plaintext string) (string, error) {
	if len(plaintext) > MaxPasswordBytes {
		return "", apperror.ValidationFailed("password",
			fmt.Sprintf("password must be %d bytes or fewer", MaxPasswordBytes))
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), p.cost)
	if err != nil {
		return "", fmt.Errorf("auth: hashing password: %w", err)
	}
	return string(hashed), nil
}

// Verify checks plaintext against a stored hash. It returns
// ErrPasswordMismatch for a wrong password and a wrapped bcrypt error for a
// hash that cannot be parsed.
func (p *PasswordService) Verify(hash, plaintext string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return ErrPasswordMismatch
	default:
		return fmt.Errorf("auth: comparing password hash: %w", err)
	}
}

// Matches is the boolean form of Verify. A corrupt hash is simply false.
func (p *PasswordService) Matches(hash, plaintext string) bool {
	return p.Verify(hash, plaintext) == nil
}

// BurnCompare performs a comparison against a fixed hash and discards the
// result. Login calls it when the email is unknown.
func (p *PasswordService) BurnCompare(plaintext string) {
	p.dummyOnce.Do(func() {
		p.dummy, _ = bcrypt.GenerateFromPassword([]byte(rand.Text()), p.cost)
	})
	_ = bcrypt.CompareHashAndPassword(p.dummy, []byte(plaintext))
}
