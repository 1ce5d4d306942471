package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/waylog/waylog/internal/models"
	"github.com/waylog/waylog/internal/storage"
)

// TripService owns trip CRUD and membership management.
type TripService struct {
	store storage.Store
}

// NewTripService creates a new TripService with the given storage backend.
func NewTripService(store storage.Store) *TripService {
	return &TripService{store: store}
}

// CreateTrip validates and persists a new trip.
func (s *TripService) CreateTrip(ctx context.Context, trip *models.Trip) error {
	if trip.Name == "" {
		return fmt.Errorf("trip name is required")
	}
	if trip.OwnerID == "" {
		return fmt.Errorf("trip owner is required")
	}
	if !trip.EndDate.IsZero() && trip.EndDate.Before(trip.StartDate) {
		return fmt.Errorf("trip end date is before its start date")
	}

	if err := s.store.CreateTrip(ctx, trip); err != nil {
		return err
	}
	slog.Info("trip created", "trip_id", trip.ID, "owner_id", trip.OwnerID)
	return nil
}

// GetTrip retrieves a trip by ID.
func (s *TripService) GetTrip(ctx context.Context, tripID string) (*models.Trip, error) {
	return s.store.GetTrip(ctx, tripID)
}

// ListTrips returns the trips the user owns or was invited to.
func (s *TripService) ListTrips(ctx context.Context, userID string) ([]models.Trip, error) {
	return s.store.ListTripsByUser(ctx, userID)
}

// UpdateTrip overwrites a trip's details.
func (s *TripService) UpdateTrip(ctx context.Context, trip *models.Trip) error {
	if trip.Name == "" {
		return fmt.Errorf("trip name is required")
	}
	return s.store.UpdateTrip(ctx, trip)
}

// DeleteTrip removes a trip and its log records.
func (s *TripService) DeleteTrip(ctx context.Context, tripID string) error {
	if err := s.store.DeleteTrip(ctx, tripID); err != nil {
		return err
	}
	slog.Info("trip deleted", "trip_id", tripID)
	return nil
}

// AddMember invites a colleague to the trip. Adding an existing member is
// a no-op.
func (s *TripService) AddMember(ctx context.Context, tripID, userID string) error {
	trip, err := s.store.GetTrip(ctx, tripID)
	if err != nil {
		return err
	}
	if trip.HasMember(userID) {
		return nil
	}
	trip.MemberIDs = append(trip.MemberIDs, userID)
	if err := s.store.UpdateTrip(ctx, trip); err != nil {
		return err
	}
	slog.Info("trip member added", "trip_id", tripID, "user_id", userID)
	return nil
}

// RemoveMember drops a colleague from the trip. Their existing log records
// are left alone; cleanup happens through the normal entry edit flow.
func (s *TripService) RemoveMember(ctx context.Context, tripID, userID string) error {
	trip, err := s.store.GetTrip(ctx, tripID)
	if err != nil {
		return err
	}
	if userID == trip.OwnerID {
		return fmt.Errorf("cannot remove the trip owner")
	}

	kept := trip.MemberIDs[:0]
	removed := false
	for _, id := range trip.MemberIDs {
		if id == userID {
			removed = true
			continue
		}
		kept = append(kept, id)
	}
	if !removed {
		return fmt.Errorf("user %s: %w", userID, storage.ErrNotFound)
	}

	trip.MemberIDs = kept
	if err := s.store.UpdateTrip(ctx, trip); err != nil {
		return err
	}
	slog.Info("trip member removed", "trip_id", tripID, "user_id", userID)
	return nil
}
