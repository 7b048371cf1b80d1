package applications

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"visaserbia/internal/core"
)

// SQLiteStore implements Store for SQLite databases.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates the applications table and indexes if needed.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS applications (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			user_email TEXT NOT NULL,
			user_name TEXT NOT NULL,
			user_phone TEXT NOT NULL,
			passport_number TEXT NOT NULL,
			visa_type TEXT NOT NULL,
			visa_name TEXT NOT NULL,
			price INTEGER NOT NULL,
			deposit_paid INTEGER NOT NULL DEFAULT 0,
			total_paid INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL,
			documents BLOB,
			notes TEXT NOT NULL DEFAULT '',
			admin_notes TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create applications table: %w", err)
	}

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_applications_user_id ON applications(user_id)",
		"CREATE INDEX IF NOT EXISTS idx_applications_status ON applications(status)",
		"CREATE INDEX IF NOT EXISTS idx_applications_created_at ON applications(created_at)",
	}
	for _, idx := range indexes {
		if _, err := db.Exec(idx); err != nil {
			slog.Warn("failed to create index", "error", err)
		}
	}

	return &SQLiteStore{db: db}, nil
}

const sqliteColumns = `id, user_id, user_email, user_name, user_phone, passport_number,
	visa_type, visa_name, price, deposit_paid, total_paid, status, documents,
	notes, admin_notes, created_at, updated_at`

// Create inserts a new application.
func (s *SQLiteStore) Create(ctx context.Context, app *core.VisaApplication) error {
	docs, err := encodeDocuments(app.Documents)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO applications (`+sqliteColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		app.ID, app.UserID, app.UserEmail, app.UserName, app.UserPhone, app.PassportNumber,
		app.VisaType, app.VisaName, app.Price, app.DepositPaid, app.TotalPaid, app.Status, docs,
		app.Notes, app.AdminNotes,
		app.CreatedAt.UTC().Format(time.RFC3339Nano), app.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to insert application: %w", err)
	}
	return nil
}

// GetByID returns the application with the given id.
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (*core.VisaApplication, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+sqliteColumns+` FROM applications WHERE id = ?`, id)
	app, err := scanApplication(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return app, nil
}

// ListByUser returns the user's applications, newest first.
func (s *SQLiteStore) ListByUser(ctx context.Context, userID string) ([]core.VisaApplication, error) {
	return s.list(ctx, `SELECT `+sqliteColumns+` FROM applications
		WHERE user_id = ? ORDER BY created_at DESC LIMIT ?`, userID, maxPerUser)
}

// ListAll returns all applications, newest first.
func (s *SQLiteStore) ListAll(ctx context.Context) ([]core.VisaApplication, error) {
	return s.list(ctx, `SELECT `+sqliteColumns+` FROM applications
		ORDER BY created_at DESC LIMIT ?`, maxAdmin)
}

func (s *SQLiteStore) list(ctx context.Context, query string, args ...any) ([]core.VisaApplication, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	defer rows.Close()

	var out []core.VisaApplication
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *app)
	}
	return out, rows.Err()
}

// Update applies the non-nil fields, refreshes updated_at and returns the
// updated application.
func (s *SQLiteStore) Update(ctx context.Context, id string, upd core.ApplicationUpdate) (*core.VisaApplication, error) {
	sets := []string{"updated_at = ?"}
	args := []any{time.Now().UTC().Format(time.RFC3339Nano)}

	if upd.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, *upd.Status)
	}
	if upd.AdminNotes != nil {
		sets = append(sets, "admin_notes = ?")
		args = append(args, *upd.AdminNotes)
	}
	if upd.DepositPaid != nil {
		sets = append(sets, "deposit_paid = ?")
		args = append(args, *upd.DepositPaid)
	}
	if upd.TotalPaid != nil {
		sets = append(sets, "total_paid = ?")
		args = append(args, *upd.TotalPaid)
	}
	args = append(args, id)

	res, err := s.db.ExecContext(ctx,
		"UPDATE applications SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update application: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, ErrNotFound
	}

	return s.GetByID(ctx, id)
}

// Delete removes the application.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM applications WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete application: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// AddDocument appends a document to the application's compressed blob.
func (s *SQLiteStore) AddDocument(ctx context.Context, id string, doc core.DocumentInfo) error {
	app, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	docs, err := encodeDocuments(append(app.Documents, doc))
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `UPDATE applications SET documents = ?, updated_at = ? WHERE id = ?`,
		docs, time.Now().UTC().Format(time.RFC3339Nano), id)
	if err != nil {
		return fmt.Errorf("failed to store document: %w", err)
	}
	return nil
}

// Stats aggregates counts per status and revenue totals.
func (s *SQLiteStore) Stats(ctx context.Context) (*core.ApplicationStats, error) {
	apps, err := s.list(ctx, `SELECT `+sqliteColumns+` FROM applications`)
	if err != nil {
		return nil, err
	}
	return buildStats(apps), nil
}

// Close is a no-op; the DB is owned by the storage layer.
func (s *SQLiteStore) Close() error {
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanApplication(row rowScanner) (*core.VisaApplication, error) {
	var app core.VisaApplication
	var docs []byte
	var createdAt, updatedAt string

	err := row.Scan(
		&app.ID, &app.UserID, &app.UserEmail, &app.UserName, &app.UserPhone, &app.PassportNumber,
		&app.VisaType, &app.VisaName, &app.Price, &app.DepositPaid, &app.TotalPaid, &app.Status, &docs,
		&app.Notes, &app.AdminNotes, &createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan application: %w", err)
	}

	app.Documents, err = decodeDocuments(docs)
	if err != nil {
		return nil, err
	}
	app.CreatedAt = parseTime(createdAt)
	app.UpdatedAt = parseTime(updatedAt)
	return &app, nil
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
