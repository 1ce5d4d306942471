package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/waylog/waylog/internal/models"
	"github.com/waylog/waylog/internal/storage"
)

func TestSQLiteStore(t *testing.T) {
	// Create temp directory for test database
	tempDir, err := os.MkdirTemp("", "waylog-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	dbPath := filepath.Join(tempDir, "test.db")
	store, err := New(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	day := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	trip := &models.Trip{
		Name:        "Berlin Conference",
		Destination: "Berlin",
		StartDate:   day,
		EndDate:     day.AddDate(0, 0, 4),
		OwnerID:     "u1",
		MemberIDs:   []string{"u2"},
	}

	t.Run("CreateTrip generates ID and timestamps", func(t *testing.T) {
		if err := store.CreateTrip(ctx, trip); err != nil {
			t.Fatalf("CreateTrip failed: %v", err)
		}
		if trip.ID == "" {
			t.Error("Expected trip ID to be generated")
		}
		if trip.CreatedAt == 0 {
			t.Error("Expected CreatedAt to be set")
		}
	})

	t.Run("GetTrip retrieves complete trip", func(t *testing.T) {
		got, err := store.GetTrip(ctx, trip.ID)
		if err != nil {
			t.Fatalf("GetTrip failed: %v", err)
		}
		if got.Name != trip.Name || got.Destination != trip.Destination {
			t.Errorf("Trip mismatch: got %+v, want %+v", got, trip)
		}
		if !reflect.DeepEqual(got.MemberIDs, trip.MemberIDs) {
			t.Errorf("MemberIDs mismatch: got %v, want %v", got.MemberIDs, trip.MemberIDs)
		}
	})

	t.Run("InsertLog generates identifiers and round-trips side rows", func(t *testing.T) {
		rec := &models.LogRecord{
			TripID:   trip.ID,
			UserID:   "u1",
			DateTime: day,
			Category: models.CategoryWorktime,
			Worktime: &models.WorktimeFields{
				StartTime:   "09:00",
				EndTime:     "17:00",
				Description: "Workshop",
			},
			IsGroupSource: true,
			AppliedTo:     []string{"u2"},
			RelatedLogs:   []string{"rel-1", "rel-2"},
			Attachments: []models.Attachment{
				{URL: "https://files.example/receipt.pdf", Name: "receipt.pdf", MIMEType: "application/pdf", SizeBytes: 2048},
			},
		}

		if err := store.InsertLog(ctx, rec); err != nil {
			t.Fatalf("InsertLog failed: %v", err)
		}
		if rec.StorageKey == "" || rec.ID == "" {
			t.Error("Expected storage key and ID to be generated")
		}

		got, err := store.GetLog(ctx, rec.StorageKey)
		if err != nil {
			t.Fatalf("GetLog failed: %v", err)
		}
		if got.Category != models.CategoryWorktime || got.Worktime == nil {
			t.Fatalf("Expected worktime payload, got %+v", got)
		}
		if got.Worktime.Description != "Workshop" {
			t.Errorf("Description mismatch: got %s", got.Worktime.Description)
		}
		if got.Accommodation != nil || got.Additional != nil {
			t.Error("Other category payloads must stay nil")
		}
		if !got.IsGroupSource {
			t.Error("IsGroupSource lost in round trip")
		}
		if !reflect.DeepEqual(got.AppliedTo, []string{"u2"}) {
			t.Errorf("AppliedTo mismatch: got %v", got.AppliedTo)
		}
		if !reflect.DeepEqual(got.RelatedLogs, []string{"rel-1", "rel-2"}) {
			t.Errorf("RelatedLogs mismatch: got %v", got.RelatedLogs)
		}
		if len(got.Attachments) != 1 || got.Attachments[0].SizeBytes != 2048 {
			t.Errorf("Attachments mismatch: got %+v", got.Attachments)
		}
		if !got.DateTime.Equal(day) {
			t.Errorf("DateTime mismatch: got %v, want %v", got.DateTime, day)
		}
	})

	t.Run("UpdateLog replaces side rows wholesale", func(t *testing.T) {
		rec := &models.LogRecord{
			TripID:        trip.ID,
			UserID:        "u1",
			DateTime:      day,
			Category:      models.CategoryAccommodation,
			Accommodation: &models.AccommodationFields{Lodging: "Hotel Mitte", Breakfast: true},
			AppliedTo:     []string{"u2", "u3"},
		}
		if err := store.InsertLog(ctx, rec); err != nil {
			t.Fatalf("InsertLog failed: %v", err)
		}

		rec.Accommodation.Dinner = true
		rec.AppliedTo = []string{"u3"}
		rec.RelatedLogs = []string{"rel-9"}
		if err := store.UpdateLog(ctx, rec); err != nil {
			t.Fatalf("UpdateLog failed: %v", err)
		}

		got, err := store.GetLog(ctx, rec.StorageKey)
		if err != nil {
			t.Fatalf("GetLog failed: %v", err)
		}
		if !got.Accommodation.Dinner || !got.Accommodation.Breakfast {
			t.Errorf("Accommodation mismatch: got %+v", got.Accommodation)
		}
		if !reflect.DeepEqual(got.AppliedTo, []string{"u3"}) {
			t.Errorf("AppliedTo not replaced: got %v", got.AppliedTo)
		}
		if !reflect.DeepEqual(got.RelatedLogs, []string{"rel-9"}) {
			t.Errorf("RelatedLogs not replaced: got %v", got.RelatedLogs)
		}
	})

	t.Run("QueryLogs filters by day range and category", func(t *testing.T) {
		later := day.AddDate(0, 0, 2)
		extra := &models.LogRecord{
			TripID:     trip.ID,
			UserID:     "u2",
			DateTime:   later,
			Category:   models.CategoryAdditional,
			Additional: &models.AdditionalFields{Notes: "Taxi from airport"},
		}
		if err := store.InsertLog(ctx, extra); err != nil {
			t.Fatalf("InsertLog failed: %v", err)
		}

		records, err := store.QueryLogs(ctx, storage.LogFilter{
			TripID: trip.ID,
			From:   later,
			To:     later,
		})
		if err != nil {
			t.Fatalf("QueryLogs failed: %v", err)
		}
		if len(records) != 1 || records[0].ID != extra.ID {
			t.Fatalf("Expected only the later record, got %d records", len(records))
		}
		if records[0].Additional == nil || records[0].Additional.Notes != "Taxi from airport" {
			t.Errorf("Notes mismatch: got %+v", records[0].Additional)
		}

		records, err = store.QueryLogs(ctx, storage.LogFilter{
			TripID:   trip.ID,
			Category: models.CategoryWorktime,
		})
		if err != nil {
			t.Fatalf("QueryLogs failed: %v", err)
		}
		for _, rec := range records {
			if rec.Category != models.CategoryWorktime {
				t.Errorf("Category filter leaked %s record", rec.Category)
			}
		}
	})

	t.Run("QueryLogs orders by day descending", func(t *testing.T) {
		records, err := store.QueryLogs(ctx, storage.LogFilter{TripID: trip.ID})
		if err != nil {
			t.Fatalf("QueryLogs failed: %v", err)
		}
		for i := 1; i < len(records); i++ {
			prev := models.DayKey(records[i-1].DateTime)
			cur := models.DayKey(records[i].DateTime)
			if prev < cur {
				t.Fatalf("Records out of order: %s before %s", prev, cur)
			}
		}
	})

	t.Run("GetLog returns ErrNotFound for missing key", func(t *testing.T) {
		_, err := store.GetLog(ctx, "nonexistent-key")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("UpdateLog returns ErrNotFound for missing key", func(t *testing.T) {
		err := store.UpdateLog(ctx, &models.LogRecord{
			StorageKey: "nonexistent-key",
			Category:   models.CategoryWorktime,
		})
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("DeleteLog removes record and side rows", func(t *testing.T) {
		rec := &models.LogRecord{
			TripID:    trip.ID,
			UserID:    "u1",
			DateTime:  day,
			Category:  models.CategoryWorktime,
			Worktime:  &models.WorktimeFields{Description: "Short day"},
			AppliedTo: []string{"u2"},
		}
		if err := store.InsertLog(ctx, rec); err != nil {
			t.Fatalf("InsertLog failed: %v", err)
		}
		if err := store.DeleteLog(ctx, rec.StorageKey); err != nil {
			t.Fatalf("DeleteLog failed: %v", err)
		}
		if _, err := store.GetLog(ctx, rec.StorageKey); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound after delete, got %v", err)
		}
		if err := store.DeleteLog(ctx, rec.StorageKey); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound on double delete, got %v", err)
		}
	})

	t.Run("ListTripsByUser includes member and owner trips", func(t *testing.T) {
		other := &models.Trip{
			Name:      "Solo trip",
			OwnerID:   "u9",
			StartDate: day,
			EndDate:   day,
		}
		if err := store.CreateTrip(ctx, other); err != nil {
			t.Fatalf("CreateTrip failed: %v", err)
		}

		trips, err := store.ListTripsByUser(ctx, "u2")
		if err != nil {
			t.Fatalf("ListTripsByUser failed: %v", err)
		}
		if len(trips) != 1 || trips[0].ID != trip.ID {
			t.Fatalf("Expected only the membership trip, got %d trips", len(trips))
		}

		// Owners are listed even without a membership row.
		trips, err = store.ListTripsByUser(ctx, "u9")
		if err != nil {
			t.Fatalf("ListTripsByUser failed: %v", err)
		}
		if len(trips) != 1 || trips[0].ID != other.ID {
			t.Fatalf("Expected the owned trip, got %d trips", len(trips))
		}
	})

	t.Run("DeleteTrip cascades logs", func(t *testing.T) {
		doomed := &models.Trip{Name: "Doomed", OwnerID: "u1", StartDate: day, EndDate: day}
		if err := store.CreateTrip(ctx, doomed); err != nil {
			t.Fatalf("CreateTrip failed: %v", err)
		}
		rec := &models.LogRecord{
			TripID:   doomed.ID,
			UserID:   "u1",
			DateTime: day,
			Category: models.CategoryWorktime,
			Worktime: &models.WorktimeFields{Description: "Gone soon"},
		}
		if err := store.InsertLog(ctx, rec); err != nil {
			t.Fatalf("InsertLog failed: %v", err)
		}

		if err := store.DeleteTrip(ctx, doomed.ID); err != nil {
			t.Fatalf("DeleteTrip failed: %v", err)
		}
		if _, err := store.GetTrip(ctx, doomed.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound for deleted trip, got %v", err)
		}
		records, err := store.QueryLogs(ctx, storage.LogFilter{TripID: doomed.ID})
		if err != nil {
			t.Fatalf("QueryLogs failed: %v", err)
		}
		if len(records) != 0 {
			t.Errorf("Expected logs to cascade, got %d records", len(records))
		}
	})
}
