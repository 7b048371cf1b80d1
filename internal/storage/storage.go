// Package storage provides the shared database connection used by the
// users, applications and testimonials stores.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"visaserbia/config"
)

// Type constants for storage backends
const (
	TypeSQLite     = "sqlite"
	TypePostgreSQL = "postgresql"
	TypeMongoDB    = "mongodb"
)

// Storage is a single database connection shared by all feature stores.
// Implementations must be safe for concurrent use. Exactly one of the
// backend accessors returns a non-nil value.
type Storage interface {
	// Type returns the storage type ("sqlite", "postgresql" or "mongodb")
	Type() string

	// SQLiteDB returns the *sql.DB connection, or nil when not SQLite.
	SQLiteDB() *sql.DB

	// PostgreSQLPool returns the pgx pool, or nil when not PostgreSQL.
	PostgreSQLPool() *pgxpool.Pool

	// MongoDatabase returns the Mongo database, or nil when not MongoDB.
	MongoDatabase() *mongo.Database

	// Ping verifies the connection is still alive.
	Ping(ctx context.Context) error

	// Close releases all resources held by the storage.
	Close() error
}

// New creates a Storage from the loaded configuration.
func New(ctx context.Context, cfg config.StorageConfig) (Storage, error) {
	switch cfg.Type {
	case TypeSQLite:
		return NewSQLite(cfg.SQLitePath)
	case TypePostgreSQL:
		return NewPostgreSQL(ctx, cfg.PostgresURL, cfg.PostgresMaxConns)
	case TypeMongoDB:
		return NewMongoDB(ctx, cfg.MongoURL, cfg.MongoDatabase)
	default:
		return nil, fmt.Errorf("unknown storage type: %s (valid: sqlite, postgresql, mongodb)", cfg.Type)
	}
}
