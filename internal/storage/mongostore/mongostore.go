// Package mongostore provides a MongoDB-backed implementation of the
// storage.Store interface.
package mongostore

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/waylog/waylog/internal/storage"
)

// Ensure MongoStore implements storage.Store
var _ storage.Store = (*MongoStore)(nil)

// MongoStore implements storage.Store using MongoDB.
type MongoStore struct {
	client *mongo.Client
	logs   *mongo.Collection
	trips  *mongo.Collection
}

// New connects to MongoDB and returns a store over the named database.
// Indexes are created on startup.
func New(ctx context.Context, uri, dbName string) (*MongoStore, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	db := client.Database(dbName)
	s := &MongoStore{
		client: client,
		logs:   db.Collection("logs"),
		trips:  db.Collection("trips"),
	}

	if err := s.ensureIndexes(ctx); err != nil {
		client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to create indexes: %w", err)
	}

	return s, nil
}

// ensureIndexes creates the indexes the reconciliation queries depend on.
func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	logIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "trip_id", Value: 1}, {Key: "day_key", Value: 1}},
			Options: options.Index().SetName("idx_logs_trip_day"),
		},
		{
			Keys:    bson.D{{Key: "trip_id", Value: 1}, {Key: "category", Value: 1}},
			Options: options.Index().SetName("idx_logs_trip_category"),
		},
		{
			Keys:    bson.D{{Key: "id", Value: 1}},
			Options: options.Index().SetName("idx_logs_id").SetUnique(true),
		},
	}
	if _, err := s.logs.Indexes().CreateMany(ctx, logIndexes); err != nil {
		return err
	}

	tripIndexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "owner_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_trips_owner"),
		},
		{
			Keys:    bson.D{{Key: "member_ids", Value: 1}},
			Options: options.Index().SetName("idx_trips_members"),
		},
	}
	_, err := s.trips.Indexes().CreateMany(ctx, tripIndexes)
	return err
}

// Close disconnects from MongoDB.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
