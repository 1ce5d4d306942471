package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/waylog/waylog/internal/models"
	"github.com/waylog/waylog/internal/storage"
)

func TestTripService_CreateValidation(t *testing.T) {
	_, store := newTestService(t)
	svc := NewTripService(store)
	ctx := context.Background()

	tests := []struct {
		name    string
		trip    models.Trip
		wantErr bool
	}{
		{
			name:    "missing name",
			trip:    models.Trip{OwnerID: "u1"},
			wantErr: true,
		},
		{
			name:    "missing owner",
			trip:    models.Trip{Name: "Trip"},
			wantErr: true,
		},
		{
			name: "end before start",
			trip: models.Trip{
				Name:      "Trip",
				OwnerID:   "u1",
				StartDate: time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC),
				EndDate:   time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
			},
			wantErr: true,
		},
		{
			name: "valid",
			trip: models.Trip{
				Name:      "Trip",
				OwnerID:   "u1",
				StartDate: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
				EndDate:   time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC),
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.CreateTrip(ctx, &tt.trip)
			if (err != nil) != tt.wantErr {
				t.Errorf("CreateTrip() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestTripService_Membership(t *testing.T) {
	_, store := newTestService(t)
	svc := NewTripService(store)
	ctx := context.Background()

	trip := &models.Trip{
		Name:      "Munich Audit",
		OwnerID:   "u1",
		StartDate: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC),
	}
	if err := svc.CreateTrip(ctx, trip); err != nil {
		t.Fatalf("CreateTrip failed: %v", err)
	}

	if err := svc.AddMember(ctx, trip.ID, "u2"); err != nil {
		t.Fatalf("AddMember failed: %v", err)
	}
	// Adding again is a no-op, not an error.
	if err := svc.AddMember(ctx, trip.ID, "u2"); err != nil {
		t.Fatalf("AddMember (repeat) failed: %v", err)
	}

	got, err := svc.GetTrip(ctx, trip.ID)
	if err != nil {
		t.Fatalf("GetTrip failed: %v", err)
	}
	if len(got.MemberIDs) != 1 || !got.HasMember("u2") {
		t.Errorf("Expected members [u2], got %v", got.MemberIDs)
	}

	if err := svc.RemoveMember(ctx, trip.ID, "u1"); err == nil {
		t.Error("Removing the owner should be rejected")
	}
	if err := svc.RemoveMember(ctx, trip.ID, "u2"); err != nil {
		t.Fatalf("RemoveMember failed: %v", err)
	}
	if err := svc.RemoveMember(ctx, trip.ID, "u2"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound removing an absent member, got %v", err)
	}

	got, err = svc.GetTrip(ctx, trip.ID)
	if err != nil {
		t.Fatalf("GetTrip failed: %v", err)
	}
	if len(got.MemberIDs) != 0 || got.HasMember("u2") {
		t.Errorf("Expected no members left, got %v", got.MemberIDs)
	}
}
