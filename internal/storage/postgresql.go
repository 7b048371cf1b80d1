package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// pgStorage implements Storage for PostgreSQL
type pgStorage struct {
	pool *pgxpool.Pool
}

// NewPostgreSQL creates a pgx connection pool and verifies connectivity.
func NewPostgreSQL(ctx context.Context, url string, maxConns int) (Storage, error) {
	if url == "" {
		return nil, fmt.Errorf("PostgreSQL URL is required")
	}

	poolCfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("invalid PostgreSQL URL: %w", err)
	}
	if maxConns > 0 {
		poolCfg.MaxConns = int32(maxConns)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create PostgreSQL pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}

	return &pgStorage{pool: pool}, nil
}

func (s *pgStorage) Type() string { return TypePostgreSQL }

func (s *pgStorage) SQLiteDB() *sql.DB { return nil }

func (s *pgStorage) PostgreSQLPool() *pgxpool.Pool { return s.pool }

func (s *pgStorage) MongoDatabase() *mongo.Database { return nil }

func (s *pgStorage) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *pgStorage) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}
