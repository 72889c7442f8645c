// Package repository defines the persistence contracts the services depend on.
//
// Implementations live in subpackages (sqlite, postgres). Services only see
// these interfaces, which keeps them testable with in-memory fakes.
package repository

import (
	"context"

	"github.com/sakif/study-buddy/internal/model"
)

// UserRepository is the Credential Store.
//
// Emails are stored exactly as given; callers normalise them first. Create
// reports a unique-constraint hit on email as apperror.ErrDuplicateAccount so
// two concurrent signups for the same address cannot both succeed.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
}

// NoteRepository stores at most one note per user.
type NoteRepository interface {
	// GetByUserID returns apperror.ErrNotFound when the user has no note yet.
	GetByUserID(ctx context.Context, userID string) (*model.Note, error)
	// Upsert creates the user's note or replaces its content.
	Upsert(ctx context.Context, note *model.Note) error
}

// Store is a database backend: both repositories plus lifecycle.
type Store interface {
	Users() UserRepository
	Notes() NoteRepository
	Ping(ctx context.Context) error
	Close() error
}
