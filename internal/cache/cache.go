// Package cache stores the public testimonial snapshot so the landing
// endpoint doesn't hit the database on every request. Supports a local file
// backend and Redis for multi-instance deployments.
package cache

import (
	"context"
	"time"

	"visaserbia/internal/core"
)

// Snapshot is the cached payload of GET /api/testimonials.
type Snapshot struct {
	UpdatedAt    time.Time          `json:"updated_at"`
	Testimonials []core.Testimonial `json:"testimonials"`
}

// Expired reports whether the snapshot is older than ttl.
// A zero ttl never expires.
func (s *Snapshot) Expired(ttl time.Duration) bool {
	if ttl <= 0 {
		return false
	}
	return time.Since(s.UpdatedAt) > ttl
}

// Cache defines the interface for snapshot storage.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get retrieves the snapshot. Returns nil, nil if no snapshot exists yet.
	Get(ctx context.Context) (*Snapshot, error)

	// Set stores the snapshot.
	Set(ctx context.Context, snap *Snapshot) error

	// Invalidate drops the stored snapshot, if any.
	Invalidate(ctx context.Context) error

	// Close releases any resources held by the cache.
	Close() error
}
