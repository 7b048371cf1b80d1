// Package testimonials stores the success stories shown on the landing
// screen and serves the public listing through a snapshot cache.
package testimonials

import (
	"context"
	"errors"

	"visaserbia/internal/core"
)

// Listing caps, matching the API contract.
const (
	maxPublic = 50
	maxAdmin  = 100
)

// ErrNotFound is returned when no testimonial matches the lookup.
var ErrNotFound = errors.New("testimonial not found")

// Store persists testimonials. Implementations must be safe for
// concurrent use.
type Store interface {
	// Create inserts a new testimonial.
	Create(ctx context.Context, t *core.Testimonial) error

	// ListActive returns active testimonials, newest first, capped at 50.
	ListActive(ctx context.Context) ([]core.Testimonial, error)

	// ListAll returns all testimonials, newest first, capped at 100.
	ListAll(ctx context.Context) ([]core.Testimonial, error)

	// Delete removes the testimonial. Returns ErrNotFound when missing.
	Delete(ctx context.Context, id string) error

	// Toggle flips is_active and returns the new state. Returns
	// ErrNotFound when missing.
	Toggle(ctx context.Context, id string) (bool, error)

	// Close releases store resources. The shared database connection is
	// owned by the storage layer and stays open.
	Close() error
}
