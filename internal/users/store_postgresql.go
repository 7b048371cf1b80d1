package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"visaserbia/internal/core"
)

// PostgreSQLStore implements Store for PostgreSQL databases.
type PostgreSQLStore struct {
	pool *pgxpool.Pool
}

// NewPostgreSQLStore creates the users table if needed and returns the store.
func NewPostgreSQLStore(ctx context.Context, pool *pgxpool.Pool) (*PostgreSQLStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("connection pool is required")
	}

	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			full_name TEXT NOT NULL,
			phone TEXT NOT NULL,
			passport_number TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT TRUE
		)
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to create users table: %w", err)
	}

	return &PostgreSQLStore{pool: pool}, nil
}

// Create inserts a new user.
func (s *PostgreSQLStore) Create(ctx context.Context, u *core.User) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO users (id, email, password_hash, full_name, phone, passport_number, created_at, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		u.ID, u.Email, u.PasswordHash, u.FullName, u.Phone, u.PassportNumber, u.CreatedAt, u.IsActive,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		// 23505: unique_violation
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// GetByEmail returns the user with the given email.
func (s *PostgreSQLStore) GetByEmail(ctx context.Context, email string) (*core.User, error) {
	return s.getOne(ctx, `SELECT id, email, password_hash, full_name, phone, passport_number, created_at, is_active
		FROM users WHERE email = $1`, email)
}

// GetByID returns the user with the given id.
func (s *PostgreSQLStore) GetByID(ctx context.Context, id string) (*core.User, error) {
	return s.getOne(ctx, `SELECT id, email, password_hash, full_name, phone, passport_number, created_at, is_active
		FROM users WHERE id = $1`, id)
}

func (s *PostgreSQLStore) getOne(ctx context.Context, query string, arg any) (*core.User, error) {
	var u core.User
	err := s.pool.QueryRow(ctx, query, arg).Scan(
		&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.Phone, &u.PassportNumber,
		&u.CreatedAt, &u.IsActive,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return &u, nil
}

// List returns all users, oldest first.
func (s *PostgreSQLStore) List(ctx context.Context) ([]core.User, error) {
	rows, err := s.pool.Query(ctx, `SELECT id, email, password_hash, full_name, phone, passport_number, created_at, is_active
		FROM users ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var out []core.User
	for rows.Next() {
		var u core.User
		if err := rows.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.Phone, &u.PassportNumber, &u.CreatedAt, &u.IsActive); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// Close is a no-op; the pool is owned by the storage layer.
func (s *PostgreSQLStore) Close() error {
	return nil
}
