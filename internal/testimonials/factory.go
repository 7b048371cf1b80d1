package testimonials

import (
	"context"
	"fmt"

	"visaserbia/internal/storage"
)

// NewStore creates a testimonial store on top of the shared storage
// connection.
func NewStore(ctx context.Context, store storage.Storage) (Store, error) {
	switch store.Type() {
	case storage.TypeSQLite:
		return NewSQLiteStore(store.SQLiteDB())
	case storage.TypePostgreSQL:
		return NewPostgreSQLStore(ctx, store.PostgreSQLPool())
	case storage.TypeMongoDB:
		return NewMongoDBStore(store.MongoDatabase())
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", store.Type())
	}
}
