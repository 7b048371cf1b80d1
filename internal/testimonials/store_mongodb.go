package testimonials

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"visaserbia/internal/core"
)

// MongoDBStore implements Store for MongoDB databases.
type MongoDBStore struct {
	coll *mongo.Collection
}

// NewMongoDBStore creates the indexes used by the public listing.
func NewMongoDBStore(db *mongo.Database) (*MongoDBStore, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle is required")
	}

	coll := db.Collection("testimonials")
	_, err := coll.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "is_active", Value: 1}, {Key: "created_at", Value: -1}}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create testimonial indexes: %w", err)
	}

	return &MongoDBStore{coll: coll}, nil
}

// Create inserts a new testimonial.
func (s *MongoDBStore) Create(ctx context.Context, t *core.Testimonial) error {
	if _, err := s.coll.InsertOne(ctx, t); err != nil {
		return fmt.Errorf("failed to insert testimonial: %w", err)
	}
	return nil
}

// ListActive returns active testimonials, newest first.
func (s *MongoDBStore) ListActive(ctx context.Context) ([]core.Testimonial, error) {
	return s.list(ctx, bson.M{"is_active": true}, maxPublic)
}

// ListAll returns all testimonials, newest first.
func (s *MongoDBStore) ListAll(ctx context.Context) ([]core.Testimonial, error) {
	return s.list(ctx, bson.M{}, maxAdmin)
}

func (s *MongoDBStore) list(ctx context.Context, filter bson.M, limit int) ([]core.Testimonial, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list testimonials: %w", err)
	}
	defer cursor.Close(ctx)

	var out []core.Testimonial
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode testimonials: %w", err)
	}
	return out, nil
}

// Delete removes the testimonial.
func (s *MongoDBStore) Delete(ctx context.Context, id string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("failed to delete testimonial: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Toggle flips is_active and returns the new state.
func (s *MongoDBStore) Toggle(ctx context.Context, id string) (bool, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated core.Testimonial
	err := s.coll.FindOneAndUpdate(ctx, bson.M{"id": id},
		bson.A{bson.M{"$set": bson.M{"is_active": bson.M{"$not": "$is_active"}}}},
		opts,
	).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, ErrNotFound
		}
		return false, fmt.Errorf("failed to toggle testimonial: %w", err)
	}
	return updated.IsActive, nil
}

// Close is a no-op; the client is owned by the storage layer.
func (s *MongoDBStore) Close() error {
	return nil
}
