package service

import (
	"context"
	"fmt"
	"time"

	"github.com/waylog/waylog/internal/reconcile"
	"github.com/waylog/waylog/internal/storage"
)

// ValidateNoConflicts checks that none of the users in appliedTo already
// has an independent record for the day: one not reachable through any
// group source's RelatedLogs. Sharing with such a user would silently
// overwrite their own entry, so the whole edit is rejected up front with a
// ConflictError naming the offending users. Runs before any plan is
// computed.
func (s *LogService) ValidateNoConflicts(ctx context.Context, tripID string, date time.Time, ownerID string, appliedTo []string) error {
	if len(appliedTo) == 0 {
		return nil
	}

	records, err := s.store.QueryLogs(ctx, storage.LogFilter{
		TripID: tripID,
		From:   date,
		To:     date,
	})
	if err != nil {
		return fmt.Errorf("conflict validation fetch failed: %w", err)
	}

	unrelated := reconcile.UnrelatedByUser(records)

	var conflicting []string
	for _, userID := range appliedTo {
		if userID == ownerID {
			continue
		}
		if len(unrelated[userID]) > 0 {
			conflicting = append(conflicting, userID)
		}
	}

	if len(conflicting) > 0 {
		return &ConflictError{UserIDs: conflicting}
	}
	return nil
}
