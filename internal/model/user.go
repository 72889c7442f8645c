// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data, similar to classes in other
// languages but without inheritance.
package model

import "time"

// User represents a registered account.
//
// The ID is an xid generated by the repository at creation time. Email is
// stored already normalised (trimmed, lower-cased) so equality in SQL is
// equality of accounts; the UNIQUE constraint on users.email is the final
// word on duplicates.
//
// WHY json:"-" ON PasswordHash?
// The struct is returned from handlers in a few places (e.g. /me). Hiding the
// hash at the type level means no handler can leak it by accident.
type User struct {
	ID           string    `json:"id"        db:"id"`
	Name         string    `json:"name"      db:"name"`
	Email        string    `json:"email"     db:"email"`
	PasswordHash string    `json:"-"         db:"password_hash"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// PublicUser is the profile subset returned alongside a login token.
type PublicUser struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Public strips everything except the display fields.
func (u *User) Public() PublicUser {
	return PublicUser{Name: u.Name, Email: u.Email}
}
