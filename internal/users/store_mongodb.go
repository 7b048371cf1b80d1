package users

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"visaserbia/internal/core"
)

// MongoDBStore implements Store for MongoDB.
type MongoDBStore struct {
	collection *mongo.Collection
}

// NewMongoDBStore ensures the unique email index and returns the store.
func NewMongoDBStore(database *mongo.Database) (*MongoDBStore, error) {
	if database == nil {
		return nil, fmt.Errorf("database is required")
	}

	collection := database.Collection("users")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "id", Value: 1}},
		},
	}
	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		// indexes may already exist
		slog.Warn("failed to create some user indexes", "error", err)
	}

	return &MongoDBStore{collection: collection}, nil
}

// Create inserts a new user.
func (s *MongoDBStore) Create(ctx context.Context, u *core.User) error {
	_, err := s.collection.InsertOne(ctx, u)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

// GetByEmail returns the user with the given email.
func (s *MongoDBStore) GetByEmail(ctx context.Context, email string) (*core.User, error) {
	return s.getOne(ctx, bson.M{"email": email})
}

// GetByID returns the user with the given id.
func (s *MongoDBStore) GetByID(ctx context.Context, id string) (*core.User, error) {
	return s.getOne(ctx, bson.M{"id": id})
}

func (s *MongoDBStore) getOne(ctx context.Context, filter bson.M) (*core.User, error) {
	var u core.User
	err := s.collection.FindOne(ctx, filter).Decode(&u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return &u, nil
}

// List returns all users, oldest first.
func (s *MongoDBStore) List(ctx context.Context) ([]core.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := s.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer cursor.Close(ctx)

	var out []core.User
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	return out, nil
}

// Close is a no-op; the client is owned by the storage layer.
func (s *MongoDBStore) Close() error {
	return nil
}
