package testimonials

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/cespare/xxhash/v2"

	"visaserbia/internal/cache"
	"visaserbia/internal/core"
)

// CachedReader serves the public testimonial listing from a snapshot
// cache, falling back to the store when the snapshot is missing or
// stale. Admin mutations go straight to the store and invalidate the
// snapshot.
type CachedReader struct {
	store Store
	cache cache.Cache
	ttl   time.Duration
}

// NewCachedReader wraps a store with a snapshot cache. A zero ttl
// means snapshots never expire and only invalidation refreshes them.
func NewCachedReader(store Store, c cache.Cache, ttl time.Duration) *CachedReader {
	return &CachedReader{store: store, cache: c, ttl: ttl}
}

// ListActive returns the public listing, preferring a fresh snapshot.
// A cache failure is logged and falls through to the store.
func (r *CachedReader) ListActive(ctx context.Context) ([]core.Testimonial, error) {
	snap, err := r.cache.Get(ctx)
	if err != nil {
		slog.Warn("testimonial snapshot read failed", "error", err)
	} else if snap != nil && !snap.Expired(r.ttl) {
		return snap.Testimonials, nil
	}

	list, err := r.store.ListActive(ctx)
	if err != nil {
		// Serve a stale snapshot rather than failing the landing screen.
		if snap != nil {
			slog.Warn("testimonial listing failed, serving stale snapshot", "error", err)
			return snap.Testimonials, nil
		}
		return nil, err
	}

	fresh := &cache.Snapshot{UpdatedAt: time.Now().UTC(), Testimonials: list}
	if err := r.cache.Set(ctx, fresh); err != nil {
		slog.Warn("testimonial snapshot write failed", "error", err)
	}
	return list, nil
}

// Invalidate drops the snapshot after an admin mutation.
func (r *CachedReader) Invalidate(ctx context.Context) {
	if err := r.cache.Invalidate(ctx); err != nil {
		slog.Warn("testimonial snapshot invalidation failed", "error", err)
	}
}

// ETag computes a strong validator for the public listing payload.
// Identical listings always hash to the same tag, so clients holding a
// matching If-None-Match get a 304.
func ETag(list []core.Testimonial) string {
	data, err := json.Marshal(list)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%q", fmt.Sprintf("%016x", xxhash.Sum64(data)))
}
