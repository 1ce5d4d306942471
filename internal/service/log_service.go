package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/waylog/waylog/internal/models"
	"github.com/waylog/waylog/internal/reconcile"
	"github.com/waylog/waylog/internal/storage"
)

// LogService owns the daily-log reconciliation flows: creating entries,
// editing them through plan/execute/relink, and projecting them into
// grouped form. The store is the single source of truth; the service never
// caches records across reconciliation phases.
type LogService struct {
	store storage.Store
}

// NewLogService creates a new LogService with the given storage backend.
func NewLogService(store storage.Store) *LogService {
	return &LogService{store: store}
}

// EntryInput is one entry's desired state as submitted by the owner: the
// per-category drafts plus the sharing configuration.
type EntryInput struct {
	TripID  string
	OwnerID string
	Date    time.Time

	Drafts reconcile.CategoryDrafts

	AppliedTo        []string
	SharedCategories []models.Category

	// OverridesByUser carries per-colleague worktime overrides.
	OverridesByUser map[string]*models.WorktimeFields
}

// Entries returns the grouped entries for a trip, optionally bounded to a
// day range.
func (s *LogService) Entries(ctx context.Context, tripID string, from, to time.Time) ([]reconcile.GroupedEntry, error) {
	records, err := s.store.QueryLogs(ctx, storage.LogFilter{
		TripID: tripID,
		From:   from,
		To:     to,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch trip logs: %w", err)
	}

	entries := reconcile.Group(records)
	for _, entry := range entries {
		for _, category := range entry.DuplicateCategories {
			slog.Warn("duplicate records in entry",
				"trip_id", tripID, "user_id", entry.UserID,
				"day", entry.DayKey, "category", category)
		}
	}
	return entries, nil
}

// CreateEntry persists a brand-new entry: the owner's records for each
// drafted category, colleague copies for the shared ones, and the
// relatedLogs wiring via LinkOnCreate. Conflicts are validated before
// anything is written.
func (s *LogService) CreateEntry(ctx context.Context, in EntryInput) error {
	if _, err := s.store.GetTrip(ctx, in.TripID); err != nil {
		return err
	}
	if err := s.ValidateNoConflicts(ctx, in.TripID, in.Date, in.OwnerID, in.AppliedTo); err != nil {
		return err
	}

	day := models.NoonUTC(in.Date)
	plan := reconcile.Plan(reconcile.PlanInput{
		TripID:           in.TripID,
		OwnerID:          in.OwnerID,
		Date:             day,
		Drafts:           in.Drafts,
		AppliedTo:        in.AppliedTo,
		SharedCategories: in.SharedCategories,
		OverridesByUser:  in.OverridesByUser,
		// No originals: everything in the plan is a create. The plan's
		// missing-owner-record warnings are expected here and dropped.
	})

	for i := range plan.ToCreate {
		rec := &plan.ToCreate[i]
		rec.ID = uuid.New().String()
		if err := s.store.InsertLog(ctx, rec); err != nil {
			return fmt.Errorf("failed to create entry record: %w", err)
		}
	}

	// Group sources last so every colleague copy is in place when their
	// RelatedLogs gets computed.
	for i := range plan.ToCreate {
		rec := &plan.ToCreate[i]
		if rec.IsGroupSource {
			s.LinkOnCreate(ctx, rec)
		}
	}

	return nil
}

// SaveEntry runs the full edit flow for an existing entry: conflict
// validation, plan, execute, then the authoritative batch relink over
// everything the edit touched plus the entry's pre-existing group sources.
func (s *LogService) SaveEntry(ctx context.Context, in EntryInput) error {
	day := models.NoonUTC(in.Date)

	if err := s.ValidateNoConflicts(ctx, in.TripID, day, in.OwnerID, in.AppliedTo); err != nil {
		return err
	}

	originals, err := s.store.QueryLogs(ctx, storage.LogFilter{
		TripID: in.TripID,
		From:   day,
		To:     day,
	})
	if err != nil {
		return fmt.Errorf("failed to fetch entry records: %w", err)
	}

	plan := reconcile.Plan(reconcile.PlanInput{
		TripID:           in.TripID,
		OwnerID:          in.OwnerID,
		Date:             day,
		Drafts:           in.Drafts,
		AppliedTo:        in.AppliedTo,
		SharedCategories: in.SharedCategories,
		OverridesByUser:  in.OverridesByUser,
		OriginalRecords:  ownedByEntry(originals, in.OwnerID),
	})
	for _, warning := range plan.Warnings {
		slog.Warn("plan warning", "trip_id", in.TripID, "owner_id", in.OwnerID, "warning", warning)
	}

	if err := s.Execute(ctx, &plan); err != nil {
		return err
	}

	touched := make([]models.LogRecord, 0, len(plan.ToUpdate)+len(plan.ToCreate)+len(originals))
	touched = append(touched, plan.ToUpdate...)
	touched = append(touched, plan.ToCreate...)
	for _, rec := range originals {
		if rec.IsGroupSource {
			touched = append(touched, rec)
		}
	}

	return s.BatchRelink(ctx, touched)
}

// DeleteEntry removes one owner's whole entry for a day, cascading to the
// colleague copies the owner's group sources still reference.
func (s *LogService) DeleteEntry(ctx context.Context, tripID, ownerID string, date time.Time) error {
	day := models.NoonUTC(date)

	records, err := s.store.QueryLogs(ctx, storage.LogFilter{
		TripID: tripID,
		From:   day,
		To:     day,
	})
	if err != nil {
		return fmt.Errorf("failed to fetch entry records: %w", err)
	}

	byID := make(map[string]*models.LogRecord, len(records))
	for i := range records {
		byID[records[i].ID] = &records[i]
	}

	seen := make(map[string]bool)
	var toDelete []*models.LogRecord
	add := func(rec *models.LogRecord) {
		if !seen[rec.StorageKey] {
			seen[rec.StorageKey] = true
			toDelete = append(toDelete, rec)
		}
	}

	for i := range records {
		rec := &records[i]
		if rec.UserID != ownerID {
			continue
		}
		add(rec)
		if rec.IsGroupSource {
			for _, relatedID := range rec.RelatedLogs {
				if linked, ok := byID[relatedID]; ok {
					add(linked)
				}
			}
		}
	}

	for _, rec := range toDelete {
		if rec.Sealed {
			return &SealedRecordError{StorageKey: rec.StorageKey}
		}
	}

	for _, rec := range toDelete {
		if err := s.store.DeleteLog(ctx, rec.StorageKey); err != nil {
			return fmt.Errorf("failed to delete entry record: %w", err)
		}
	}

	return nil
}

// ownedByEntry narrows the day's records to the ones belonging to this
// entry: the owner's records and the colleague copies its group sources
// reference. Records of unrelated entries on the same day stay out of the
// plan.
func ownedByEntry(records []models.LogRecord, ownerID string) []models.LogRecord {
	related := make(map[string]bool)
	for _, rec := range records {
		if rec.UserID == ownerID && rec.IsGroupSource {
			for _, id := range rec.RelatedLogs {
				related[id] = true
			}
		}
	}

	var out []models.LogRecord
	for _, rec := range records {
		if rec.UserID == ownerID || related[rec.ID] {
			out = append(out, rec)
		}
	}
	return out
}
