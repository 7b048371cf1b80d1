package applications

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

// MongoDBStore implements Store for MongoDB. Documents are stored inline
// in the application document, matching the original data layout.
type MongoDBStore struct {
	collection *mongo.Collection
}

// NewMongoDBStore ensures indexes and returns the store.
func NewMongoDBStore(database *mongo.Database) (*MongoDBStore, error) {
	if database == nil {
		return nil, fmt.Errorf("database is required")
	}

	collection := database.Collection("applications")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	}
	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		slog.Warn("failed to create some application indexes", "error", err)
	}

	return &MongoDBStore{collection: collection}, nil
}

// Create inserts a new application.
func (s *MongoDBStore) Create(ctx context.Context, app *core.VisaApplication) error {
	if app.Documents == nil {
		app.Documents = []core.DocumentInfo{}
	}
	if _, err := s.collection.InsertOne(ctx, app); err != nil {
		return fmt.Errorf("failed to insert application: %w", err)
	}
	return nil
}

// GetByID returns the application with the given id.
func (s *MongoDBStore) GetByID(ctx context.Context, id string) (*core.VisaApplication, error) {
	var app core.VisaApplication
	err := s.collection.FindOne(ctx, bson.M{"id": id}).Decode(&app)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query application: %w", err)
	}
	if app.Documents == nil {
		app.Documents = []core.DocumentInfo{}
	}
	return &app, nil
}

// ListByUser returns the user's applications, newest first.
func (s *MongoDBStore) ListByUser(ctx context.Context, userID string) ([]core.VisaApplication, error) {
	return s.list(ctx, bson.M{"user_id": userID}, maxPerUser)
}

// ListAll returns all applications, newest first.
func (s *MongoDBStore) ListAll(ctx context.Context) ([]core.VisaApplication, error) {
	return s.list(ctx, bson.M{}, maxAdmin)
}

func (s *MongoDBStore) list(ctx context.Context, filter bson.M, limit int) ([]core.VisaApplication, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := s.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	defer cursor.Close(ctx)

	var out []core.VisaApplication
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode applications: %w", err)
	}
	for i := range out {
		if out[i].Documents == nil {
			out[i].Documents = []core.DocumentInfo{}
		}
	}
	return out, nil
}

// Update applies the non-nil fields, refreshes updated_at and returns the
// updated application.
func (s *MongoDBStore) Update(ctx context.Context, id string, upd core.ApplicationUpdate) (*core.VisaApplication, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if upd.Status != nil {
		set["status"] = *upd.Status
	}
	if upd.AdminNotes != nil {
		set["admin_notes"] = *upd.AdminNotes
	}
	if upd.DepositPaid != nil {
		set["deposit_paid"] = *upd.DepositPaid
	}
	if upd.TotalPaid != nil {
		set["total_paid"] = *upd.TotalPaid
	}

	res, err := s.collection.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": set})
	if err != nil {
		return nil, fmt.Errorf("failed to update application: %w", err)
	}
	if res.MatchedCount == 0 {
		return nil, ErrNotFound
	}

	return s.GetByID(ctx, id)
}

// Delete removes the application.
func (s *MongoDBStore) Delete(ctx context.Context, id string) error {
	res, err := s.collection.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("failed to delete application: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// AddDocument pushes a document onto the application and refreshes
// updated_at.
func (s *MongoDBStore) AddDocument(ctx context.Context, id string, doc core.DocumentInfo) error {
	res, err := s.collection.UpdateOne(ctx, bson.M{"id": id}, bson.M{
		"$push": bson.M{"documents": doc},
		"$set":  bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return fmt.Errorf("failed to store document: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Stats aggregates counts per status and revenue totals.
func (s *MongoDBStore) Stats(ctx context.Context) (*core.ApplicationStats, error) {
	cursor, err := s.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to read applications: %w", err)
	}
	defer cursor.Close(ctx)

	var apps []core.VisaApplication
	if err := cursor.All(ctx, &apps); err != nil {
		return nil, fmt.Errorf("failed to decode applications: %w", err)
	}
	return buildStats(apps), nil
}

// Close is a no-op; the client is owned by the storage layer.
func (s *MongoDBStore) Close() error {
	return nil
}
