package mongostore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/waylog/waylog/internal/models"
	"github.com/waylog/waylog/internal/storage"
)

type tripDoc struct {
	ID          string    `bson:"_id"`
	Name        string    `bson:"name"`
	Destination string    `bson:"destination,omitempty"`
	StartDate   time.Time `bson:"start_date"`
	EndDate     time.Time `bson:"end_date"`
	OwnerID     string    `bson:"owner_id"`
	MemberIDs   []string  `bson:"member_ids,omitempty"`
	CreatedAt   int64     `bson:"created_at"`
}

func toTripDoc(trip *models.Trip) tripDoc {
	return tripDoc{
		ID:          trip.ID,
		Name:        trip.Name,
		Destination: trip.Destination,
		StartDate:   trip.StartDate.UTC(),
		EndDate:     trip.EndDate.UTC(),
		OwnerID:     trip.OwnerID,
		MemberIDs:   trip.MemberIDs,
		CreatedAt:   trip.CreatedAt,
	}
}

func (d *tripDoc) toModel() models.Trip {
	return models.Trip{
		ID:          d.ID,
		Name:        d.Name,
		Destination: d.Destination,
		StartDate:   d.StartDate.UTC(),
		EndDate:     d.EndDate.UTC(),
		OwnerID:     d.OwnerID,
		MemberIDs:   d.MemberIDs,
		CreatedAt:   d.CreatedAt,
	}
}

// CreateTrip persists a new trip.
func (s *MongoStore) CreateTrip(ctx context.Context, trip *models.Trip) error {
	if trip.ID == "" {
		trip.ID = uuid.New().String()
	}
	if trip.CreatedAt == 0 {
		trip.CreatedAt = time.Now().Unix()
	}

	if _, err := s.trips.InsertOne(ctx, toTripDoc(trip)); err != nil {
		return fmt.Errorf("failed to insert trip: %w", err)
	}
	return nil
}

// GetTrip retrieves a trip by ID.
func (s *MongoStore) GetTrip(ctx context.Context, tripID string) (*models.Trip, error) {
	var doc tripDoc
	err := s.trips.FindOne(ctx, bson.M{"_id": tripID}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, fmt.Errorf("trip %s: %w", tripID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get trip: %w", err)
	}
	trip := doc.toModel()
	return &trip, nil
}

// UpdateTrip overwrites an existing trip.
func (s *MongoStore) UpdateTrip(ctx context.Context, trip *models.Trip) error {
	res, err := s.trips.ReplaceOne(ctx, bson.M{"_id": trip.ID}, toTripDoc(trip))
	if err != nil {
		return fmt.Errorf("failed to update trip: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("trip %s: %w", trip.ID, storage.ErrNotFound)
	}
	return nil
}

// DeleteTrip removes a trip and all of its log records.
func (s *MongoStore) DeleteTrip(ctx context.Context, tripID string) error {
	res, err := s.trips.DeleteOne(ctx, bson.M{"_id": tripID})
	if err != nil {
		return fmt.Errorf("failed to delete trip: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("trip %s: %w", tripID, storage.ErrNotFound)
	}

	// No foreign keys here; cascade by hand.
	if _, err := s.logs.DeleteMany(ctx, bson.M{"trip_id": tripID}); err != nil {
		return fmt.Errorf("failed to delete trip logs: %w", err)
	}
	return nil
}

// ListTripsByUser returns trips the user owns or is a member of, newest first.
func (s *MongoStore) ListTripsByUser(ctx context.Context, userID string) ([]models.Trip, error) {
	query := bson.M{"$or": []bson.M{
		{"owner_id": userID},
		{"member_ids": userID},
	}}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}})

	cur, err := s.trips.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list trips: %w", err)
	}
	defer cur.Close(ctx)

	var docs []tripDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode trips: %w", err)
	}

	trips := make([]models.Trip, 0, len(docs))
	for i := range docs {
		trips = append(trips, docs[i].toModel())
	}
	return trips, nil
}
