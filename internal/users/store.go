// Package users stores registered applicants and verifies their credentials.
package users

import (
	"context"
	"errors"

	"visaserbia/internal/core"
)

// Sentinel errors returned by all store implementations.
var (
	// ErrNotFound is returned when no user matches the lookup.
	ErrNotFound = errors.New("user not found")

	// ErrDuplicateEmail is returned when the email is already registered.
	ErrDuplicateEmail = errors.New("email already registered")
)

// Store persists users. Implementations must be safe for concurrent use.
type Store interface {
	// Create inserts a new user. Returns ErrDuplicateEmail when the email
	// is taken.
	Create(ctx context.Context, u *core.User) error

	// GetByEmail returns the user with the given email or ErrNotFound.
	GetByEmail(ctx context.Context, email string) (*core.User, error)

	// GetByID returns the user with the given id or ErrNotFound.
	GetByID(ctx context.Context, id string) (*core.User, error)

	// List returns all users, oldest first.
	List(ctx context.Context) ([]core.User, error)

	// Close releases store resources. The shared database connection is
	// owned by the storage layer and stays open.
	Close() error
}
