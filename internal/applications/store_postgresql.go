package applications

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"visaserbia/internal/core"
)

// PostgreSQLStore implements Store for PostgreSQL databases.
type PostgreSQLStore struct {
	pool *pgxpool.Pool
}

// NewPostgreSQLStore creates the applications table and indexes if needed.
func NewPostgreSQLStore(ctx context.Context, pool *pgxpool.Pool) (*PostgreSQLStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("connection pool is required")
	}

	_, err := pool.Exec(ctx, `
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
			documents BYTEA,
			notes TEXT NOT NULL DEFAULT '',
			admin_notes TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_applications_user_id ON applications(user_id);
		CREATE INDEX IF NOT EXISTS idx_applications_status ON applications(status);
		CREATE INDEX IF NOT EXISTS idx_applications_created_at ON applications(created_at);
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create applications table: %w", err)
	}

	return &PostgreSQLStore{pool: pool}, nil
}

const pgColumns = `id, user_id, user_email, user_name, user_phone, passport_number,
	visa_type, visa_name, price, deposit_paid, total_paid, status, documents,
	notes, admin_notes, created_at, updated_at`

// Create inserts a new application.
func (s *PostgreSQLStore) Create(ctx context.Context, app *core.VisaApplication) error {
	docs, err := encodeDocuments(app.Documents)
	if err != nil {
		return err
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO applications (`+pgColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		app.ID, app.UserID, app.UserEmail, app.UserName, app.UserPhone, app.PassportNumber,
		app.VisaType, app.VisaName, app.Price, app.DepositPaid, app.TotalPaid, app.Status, docs,
		app.Notes, app.AdminNotes, app.CreatedAt, app.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert application: %w", err)
	}
	return nil
}

// GetByID returns the application with the given id.
func (s *PostgreSQLStore) GetByID(ctx context.Context, id string) (*core.VisaApplication, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+pgColumns+` FROM applications WHERE id = $1`, id)
	app, err := s.scan(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return app, nil
}

// ListByUser returns the user's applications, newest first.
func (s *PostgreSQLStore) ListByUser(ctx context.Context, userID string) ([]core.VisaApplication, error) {
	return s.list(ctx, `SELECT `+pgColumns+` FROM applications
		WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`, userID, maxPerUser)
}

// ListAll returns all applications, newest first.
func (s *PostgreSQLStore) ListAll(ctx context.Context) ([]core.VisaApplication, error) {
	return s.list(ctx, `SELECT `+pgColumns+` FROM applications
		ORDER BY created_at DESC LIMIT $1`, maxAdmin)
}

func (s *PostgreSQLStore) list(ctx context.Context, query string, args ...any) ([]core.VisaApplication, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	defer rows.Close()

	var out []core.VisaApplication
	for rows.Next() {
		app, err := s.scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *app)
	}
	return out, rows.Err()
}

// Update applies the non-nil fields, refreshes updated_at and returns the
// updated application.
func (s *PostgreSQLStore) Update(ctx context.Context, id string, upd core.ApplicationUpdate) (*core.VisaApplication, error) {
	sets := []string{"updated_at = $1"}
	args := []any{time.Now().UTC()}

	add := func(col string, val any) {
		args = append(args, val)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if upd.Status != nil {
		add("status", *upd.Status)
	}
	if upd.AdminNotes != nil {
		add("admin_notes", *upd.AdminNotes)
	}
	if upd.DepositPaid != nil {
		add("deposit_paid", *upd.DepositPaid)
	}
	if upd.TotalPaid != nil {
		add("total_paid", *upd.TotalPaid)
	}
	args = append(args, id)

	tag, err := s.pool.Exec(ctx,
		fmt.Sprintf("UPDATE applications SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args)),
		args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update application: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}

	return s.GetByID(ctx, id)
}

// Delete removes the application.
func (s *PostgreSQLStore) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM applications WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete application: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AddDocument appends a document to the application's compressed blob.
func (s *PostgreSQLStore) AddDocument(ctx context.Context, id string, doc core.DocumentInfo) error {
	app, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	docs, err := encodeDocuments(append(app.Documents, doc))
	if err != nil {
		return err
	}

	_, err = s.pool.Exec(ctx, `UPDATE applications SET documents = $1, updated_at = $2 WHERE id = $3`,
		docs, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to store document: %w", err)
	}
	return nil
}

// Stats aggregates counts per status and revenue totals.
func (s *PostgreSQLStore) Stats(ctx context.Context) (*core.ApplicationStats, error) {
	apps, err := s.list(ctx, `SELECT `+pgColumns+` FROM applications`)
	if err != nil {
		return nil, err
	}
	return buildStats(apps), nil
}

// Close is a no-op; the pool is owned by the storage layer.
func (s *PostgreSQLStore) Close() error {
	return nil
}

func (s *PostgreSQLStore) scan(row pgx.Row) (*core.VisaApplication, error) {
	var app core.VisaApplication
	var docs []byte

	err := row.Scan(
		&app.ID, &app.UserID, &app.UserEmail, &app.UserName, &app.UserPhone, &app.PassportNumber,
		&app.VisaType, &app.VisaName, &app.Price, &app.DepositPaid, &app.TotalPaid, &app.Status, &docs,
		&app.Notes, &app.AdminNotes, &app.CreatedAt, &app.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan application: %w", err)
	}

	app.Documents, err = decodeDocuments(docs)
	if err != nil {
		return nil, err
	}
	return &app, nil
}
