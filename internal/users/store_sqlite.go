package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"visaserbia/internal/core"
)

// SQLiteStore implements Store for SQLite databases.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates the users table if needed and returns the store.
func NewSQLiteStore(db *sql.DB) (*SQLiteStore, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			full_name TEXT NOT NULL,
			phone TEXT NOT NULL,
			passport_number TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			is_active INTEGER NOT NULL DEFAULT 1
		)
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create users table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Create inserts a new user.
func (s *SQLiteStore) Create(ctx context.Context, u *core.User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, full_name, phone, passport_number, created_at, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.PasswordHash, u.FullName, u.Phone, u.PassportNumber,
		u.CreatedAt.UTC().Format(time.RFC3339Nano), boolToInt(u.IsActive),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// GetByEmail returns the user with the given email.
func (s *SQLiteStore) GetByEmail(ctx context.Context, email string) (*core.User, error) {
	return s.getOne(ctx, `SELECT id, email, password_hash, full_name, phone, passport_number, created_at, is_active
		FROM users WHERE email = ?`, email)
}

// GetByID returns the user with the given id.
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (*core.User, error) {
	return s.getOne(ctx, `SELECT id, email, password_hash, full_name, phone, passport_number, created_at, is_active
		FROM users WHERE id = ?`, id)
}

func (s *SQLiteStore) getOne(ctx context.Context, query string, arg any) (*core.User, error) {
	var u core.User
	var createdAt string
	var isActive int

	err := s.db.QueryRowContext(ctx, query, arg).Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.Phone, &u.PassportNumber,
		&createdAt, &isActive,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query user: %w", err)
	}

	u.CreatedAt = parseSQLiteTime(createdAt)
	u.IsActive = isActive != 0
	return &u, nil
}

// List returns all users, oldest first.
func (s *SQLiteStore) List(ctx context.Context) ([]core.User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, email, password_hash, full_name, phone, passport_number, created_at, is_active
		FROM users ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var out []core.User
	for rows.Next() {
		var u core.User
		var createdAt string
		var isActive int
		if err := rows.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.Phone, &u.PassportNumber, &createdAt, &isActive); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		u.CreatedAt = parseSQLiteTime(createdAt)
		u.IsActive = isActive != 0
		out = append(out, u)
	}
	return out, rows.Err()
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

func parseSQLiteTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
