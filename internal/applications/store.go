// Package applications stores visa applications and their uploaded documents.
package applications

import (
	"context"
	"errors"

	"visaserbia/internal/core"
)

// Listing caps, matching the API contract.
const (
	maxPerUser = 100
	maxAdmin   = 1000
)

// ErrNotFound is returned when no application matches the lookup.
var ErrNotFound = errors.New("application not found")

// Store persists visa applications. Implementations must be safe for
// concurrent use.
type Store interface {
	// Create inserts a new application.
	Create(ctx context.Context, app *core.VisaApplication) error

	// GetByID returns the application or ErrNotFound.
	GetByID(ctx context.Context, id string) (*core.VisaApplication, error)

	// ListByUser returns the user's applications, newest first, capped at 100.
	ListByUser(ctx context.Context, userID string) ([]core.VisaApplication, error)

	// ListAll returns all applications, newest first, capped at 1000.
	ListAll(ctx context.Context) ([]core.VisaApplication, error)

	// Update applies the non-nil fields of upd, refreshes updated_at and
	// returns the updated application. Returns ErrNotFound when missing.
	Update(ctx context.Context, id string, upd core.ApplicationUpdate) (*core.VisaApplication, error)

	// Delete removes the application. Returns ErrNotFound when missing.
	Delete(ctx context.Context, id string) error

	// AddDocument appends a document to the application and refreshes
	// updated_at. Returns ErrNotFound when missing.
	AddDocument(ctx context.Context, id string, doc core.DocumentInfo) error

	// Stats aggregates counts per status and revenue totals.
	Stats(ctx context.Context) (*core.ApplicationStats, error)

	// Close releases store resources. The shared database connection is
	// owned by the storage layer and stays open.
	Close() error
}

func buildStats(apps []core.VisaApplication) *core.ApplicationStats {
	stats := &core.ApplicationStats{TotalApplications: len(apps)}
	for _, app := range apps {
		switch app.Status {
		case core.StatusPendiente:
			stats.Pending++
		case core.StatusRevision:
			stats.InReview++
		case core.StatusAprobado:
			stats.Approved++
		case core.StatusRechazado:
			stats.Rejected++
		case core.StatusCompletado:
			stats.Completed++
		}
		stats.TotalRevenue += app.TotalPaid
		if app.Status != core.StatusRechazado {
			stats.PendingRevenue += app.Price - app.TotalPaid
		}
	}
	return stats
}
