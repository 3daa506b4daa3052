// Package user provides the account model and repositories backing
// registration and login.
package user

import (
	"context"
	"errors"
)

// Common errors for user operations.
var (
	// ErrNotFound is returned when no user matches the lookup.
	ErrNotFound = errors.New("user not found")

	// ErrDuplicateUsername is returned when the username is already taken.
	// Usernames are case-sensitive: "Tony" and "tony" are distinct accounts.
	ErrDuplicateUsername = errors.New("username is taken")
)

// User represents a registered account.
// PasswordHash is opaque to everything except the credential service.
type User struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
}

// Repository defines the data operations needed for accounts.
type Repository interface {
	// GetByUsername retrieves the unique user with the given username.
	// Returns ErrNotFound if no such user exists.
	GetByUsername(ctx context.Context, username string) (*User, error)

	// Create inserts a new user and returns it with the generated ID.
	// Returns ErrDuplicateUsername if the username is already taken.
	Create(ctx context.Context, username, passwordHash string) (*User, error)
}
