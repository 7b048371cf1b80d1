package testimonials

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"visaserbia/internal/core"
)

// SQLiteStore implements Store for SQLite databases.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates the testimonials table and indexes if needed.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS testimonials (
			id TEXT PRIMARY KEY,
			client_name TEXT NOT NULL,
			visa_type TEXT NOT NULL,
			description TEXT NOT NULL,
			image_data TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			is_active INTEGER NOT NULL DEFAULT 1
		)
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create testimonials table: %w", err)
	}

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_testimonials_created_at ON testimonials(created_at)",
		"CREATE INDEX IF NOT EXISTS idx_testimonials_is_active ON testimonials(is_active)",
	}
	for _, idx := range indexes {
		if _, err := db.Exec(idx); err != nil {
			slog.Warn("failed to create index", "error", err)
		}
	}

	return &SQLiteStore{db: db}, nil
}

// Create inserts a new testimonial.
func (s *SQLiteStore) Create(ctx context.Context, t *core.Testimonial) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO testimonials (id, client_name, visa_type, description, image_data, created_at, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.ClientName, t.VisaType, t.Description, t.ImageData,
		t.CreatedAt.UTC().Format(time.RFC3339Nano), boolToInt(t.IsActive),
	)
	if err != nil {
		return fmt.Errorf("failed to insert testimonial: %w", err)
	}
	return nil
}

// ListActive returns active testimonials, newest first.
func (s *SQLiteStore) ListActive(ctx context.Context) ([]core.Testimonial, error) {
	return s.list(ctx, `SELECT id, client_name, visa_type, description, image_data, created_at, is_active
		FROM testimonials WHERE is_active = 1 ORDER BY created_at DESC LIMIT ?`, maxPublic)
}

// ListAll returns all testimonials, newest first.
func (s *SQLiteStore) ListAll(ctx context.Context) ([]core.Testimonial, error) {
	return s.list(ctx, `SELECT id, client_name, visa_type, description, image_data, created_at, is_active
		FROM testimonials ORDER BY created_at DESC LIMIT ?`, maxAdmin)
}

func (s *SQLiteStore) list(ctx context.Context, query string, args ...any) ([]core.Testimonial, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list testimonials: %w", err)
	}
	defer rows.Close()

	var out []core.Testimonial
	for rows.Next() {
		var t core.Testimonial
		var createdAt string
		var isActive int
		if err := rows.Scan(&t.ID, &t.ClientName, &t.VisaType, &t.Description, &t.ImageData, &createdAt, &isActive); err != nil {
			return nil, fmt.Errorf("failed to scan testimonial: %w", err)
		}
		if parsed, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			t.CreatedAt = parsed
		}
		t.IsActive = isActive != 0
		out = append(out, t)
	}
	return out, rows.Err()
}

// Delete removes the testimonial.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM testimonials WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete testimonial: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// Toggle flips is_active and returns the new state.
func (s *SQLiteStore) Toggle(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE testimonials SET is_active = 1 - is_active WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to toggle testimonial: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return false, ErrNotFound
	}

	var isActive int
	err = s.db.QueryRowContext(ctx, `SELECT is_active FROM testimonials WHERE id = ?`, id).Scan(&isActive)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, ErrNotFound
		}
		return false, fmt.Errorf("failed to read testimonial state: %w", err)
	}
	return isActive != 0, nil
}

// Close is a no-op; the DB is owned by the storage layer.
func (s *SQLiteStore) Close() error {
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
