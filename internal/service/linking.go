package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/waylog/waylog/internal/models"
	"github.com/waylog/waylog/internal/storage"
)

// LinkOnCreate wires a freshly created record into its group. Two cases:
//
//   - The record is a group source: its RelatedLogs is set to the IDs of
//     the colleague copies already stored for the same (trip, day,
//     category).
//   - The record is a colleague copy: it is appended (idempotently) to the
//     RelatedLogs of whichever group source lists its owner in AppliedTo.
//
// The primary create has already succeeded when this runs, so a failed
// secondary update leaves a valid record with stale bookkeeping. That is
// logged as a warning and swallowed; the next BatchRelink pass heals it.
func (s *LogService) LinkOnCreate(ctx context.Context, rec *models.LogRecord) {
	if rec.IsGroupSource {
		if len(rec.AppliedTo) == 0 {
			return
		}
		records, err := s.queryDay(ctx, rec.TripID, rec.DateTime, rec.Category)
		if err != nil {
			slog.Warn("linking skipped: fetching group records failed",
				"log_id", rec.ID, "trip_id", rec.TripID, "error", err)
			return
		}

		rec.RelatedLogs = relatedIDsFor(rec, records)
		if err := s.store.UpdateLog(ctx, rec); err != nil {
			slog.Warn("linking incomplete: updating group source failed",
				"log_id", rec.ID, "error", err)
		}
		return
	}

	// Colleague copy: find the group source claiming this user.
	groupSource := true
	sources, err := s.store.QueryLogs(ctx, storage.LogFilter{
		TripID:        rec.TripID,
		From:          rec.DateTime,
		To:            rec.DateTime,
		Category:      rec.Category,
		IsGroupSource: &groupSource,
	})
	if err != nil {
		slog.Warn("linking skipped: fetching group sources failed",
			"log_id", rec.ID, "trip_id", rec.TripID, "error", err)
		return
	}

	for i := range sources {
		src := &sources[i]
		if !src.AppliedToContains(rec.UserID) {
			continue
		}
		if src.RelatedContains(rec.ID) {
			return
		}
		src.RelatedLogs = append(src.RelatedLogs, rec.ID)
		if err := s.store.UpdateLog(ctx, src); err != nil {
			slog.Warn("linking incomplete: appending to group source failed",
				"log_id", rec.ID, "group_source_id", src.ID, "error", err)
		}
		return
	}
}

// BatchRelink authoritatively recomputes RelatedLogs for every group-source
// record in touched. Records are re-fetched per (trip, day) from the store
// rather than trusted from memory, so records untouched by the edit still
// count toward the groups. Must run only after the edit's creates, updates,
// and deletes are durably committed, else it computes against a stale read.
func (s *LogService) BatchRelink(ctx context.Context, touched []models.LogRecord) error {
	type dayKey struct {
		tripID string
		day    string
	}

	fetched := make(map[dayKey][]models.LogRecord)
	for _, rec := range touched {
		key := dayKey{rec.TripID, models.DayKey(rec.DateTime)}
		if _, ok := fetched[key]; ok {
			continue
		}
		records, err := s.store.QueryLogs(ctx, storage.LogFilter{
			TripID: rec.TripID,
			From:   rec.DateTime,
			To:     rec.DateTime,
		})
		if err != nil {
			return fmt.Errorf("relink fetch failed for trip %s day %s: %w", key.tripID, key.day, err)
		}
		fetched[key] = records
	}

	relinked := make(map[string]bool)
	for _, rec := range touched {
		if !rec.IsGroupSource || relinked[rec.ID] {
			continue
		}
		relinked[rec.ID] = true

		key := dayKey{rec.TripID, models.DayKey(rec.DateTime)}
		current := findByID(fetched[key], rec.ID)
		if current == nil {
			// Deleted by this edit; nothing to relink.
			continue
		}

		current.RelatedLogs = relatedIDsFor(current, fetched[key])
		if err := s.store.UpdateLog(ctx, current); err != nil {
			return fmt.Errorf("relink update failed for log %s: %w", current.ID, err)
		}
	}

	return nil
}

// relatedIDsFor computes the authoritative RelatedLogs value for a group
// source: IDs of records with the same category, an owner in the source's
// AppliedTo, and not themselves group sources.
func relatedIDsFor(src *models.LogRecord, records []models.LogRecord) []string {
	var ids []string
	for i := range records {
		rec := &records[i]
		if rec.ID == src.ID || rec.IsGroupSource {
			continue
		}
		if rec.Category != src.Category {
			continue
		}
		if !src.AppliedToContains(rec.UserID) {
			continue
		}
		ids = append(ids, rec.ID)
	}
	return ids
}

func findByID(records []models.LogRecord, id string) *models.LogRecord {
	for i := range records {
		if records[i].ID == id {
			return &records[i]
		}
	}
	return nil
}

// queryDay fetches all records for one (trip, day, category).
func (s *LogService) queryDay(ctx context.Context, tripID string, day time.Time, category models.Category) ([]models.LogRecord, error) {
	return s.store.QueryLogs(ctx, storage.LogFilter{
		TripID:   tripID,
		From:     day,
		To:       day,
		Category: category,
	})
}
