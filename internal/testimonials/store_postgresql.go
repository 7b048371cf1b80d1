package testimonials

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"visaserbia/internal/core"
)

// PostgreSQLStore implements Store for PostgreSQL databases.
type PostgreSQLStore struct {
	pool *pgxpool.Pool
}

// NewPostgreSQLStore creates the testimonials table and indexes if needed.
func NewPostgreSQLStore(ctx context.Context, pool *pgxpool.Pool) (*PostgreSQLStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("connection pool is required")
	}

	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS testimonials (
			id TEXT PRIMARY KEY,
			client_name TEXT NOT NULL,
			visa_type TEXT NOT NULL,
			description TEXT NOT NULL,
			image_data TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT TRUE
		)
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create testimonials table: %w", err)
	}

	_, err = pool.Exec(ctx, `
		CREATE INDEX IF NOT EXISTS idx_testimonials_active_created
			ON testimonials(is_active, created_at DESC)
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create testimonials index: %w", err)
	}

	return &PostgreSQLStore{pool: pool}, nil
}

// Create inserts a new testimonial.
func (s *PostgreSQLStore) Create(ctx context.Context, t *core.Testimonial) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO testimonials (id, client_name, visa_type, description, image_data, created_at, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		t.ID, t.ClientName, t.VisaType, t.Description, t.ImageData, t.CreatedAt, t.IsActive,
	)
	if err != nil {
		return fmt.Errorf("failed to insert testimonial: %w", err)
	}
	return nil
}

// ListActive returns active testimonials, newest first.
func (s *PostgreSQLStore) ListActive(ctx context.Context) ([]core.Testimonial, error) {
	return s.list(ctx, `SELECT id, client_name, visa_type, description, image_data, created_at, is_active
		FROM testimonials WHERE is_active ORDER BY created_at DESC LIMIT $1`, maxPublic)
}

// ListAll returns all testimonials, newest first.
func (s *PostgreSQLStore) ListAll(ctx context.Context) ([]core.Testimonial, error) {
	return s.list(ctx, `SELECT id, client_name, visa_type, description, image_data, created_at, is_active
		FROM testimonials ORDER BY created_at DESC LIMIT $1`, maxAdmin)
}

func (s *PostgreSQLStore) list(ctx context.Context, query string, args ...any) ([]core.Testimonial, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list testimonials: %w", err)
	}
	defer rows.Close()

	var out []core.Testimonial
	for rows.Next() {
		var t core.Testimonial
		if err := rows.Scan(&t.ID, &t.ClientName, &t.VisaType, &t.Description, &t.ImageData, &t.CreatedAt, &t.IsActive); err != nil {
			return nil, fmt.Errorf("failed to scan testimonial: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Delete removes the testimonial.
func (s *PostgreSQLStore) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM testimonials WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete testimonial: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Toggle flips is_active and returns the new state.
func (s *PostgreSQLStore) Toggle(ctx context.Context, id string) (bool, error) {
	var isActive bool
	err := s.pool.QueryRow(ctx, `
		UPDATE testimonials SET is_active = NOT is_active
		WHERE id = $1 RETURNING is_active`, id,
	).Scan(&isActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, ErrNotFound
		}
		return false, fmt.Errorf("failed to toggle testimonial: %w", err)
	}
	return isActive, nil
}

// Close is a no-op; the pool is owned by the storage layer.
func (s *PostgreSQLStore) Close() error {
	return nil
}
