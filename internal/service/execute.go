package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/waylog/waylog/internal/reconcile"
)

// Execute applies a reconciliation plan: deletes first, then updates, then
// creates, each as sequential store calls. The order is load-bearing:
// deletes free colleague slots before updates and creates claim them, and
// updates must not race creates for the same logical slot.
//
// Any store failure aborts the remaining steps and surfaces immediately; a
// partially applied plan is the caller's problem to report. Mutating a
// sealed record is refused with SealedRecordError before the store is
// touched.
//
// Created records get their ID and storage key assigned here, written back
// into the plan so the caller can feed them to BatchRelink. Execute itself
// never links; that keeps it testable in isolation.
func (s *LogService) Execute(ctx context.Context, plan *reconcile.ReconciliationPlan) error {
	for _, rec := range plan.ToDelete {
		if rec.Sealed {
			return &SealedRecordError{StorageKey: rec.StorageKey}
		}
		if err := s.store.DeleteLog(ctx, rec.StorageKey); err != nil {
			return fmt.Errorf("reconciliation delete failed: %w", err)
		}
	}

	for i := range plan.ToUpdate {
		if plan.ToUpdate[i].Sealed {
			return &SealedRecordError{StorageKey: plan.ToUpdate[i].StorageKey}
		}
		if err := s.store.UpdateLog(ctx, &plan.ToUpdate[i]); err != nil {
			return fmt.Errorf("reconciliation update failed: %w", err)
		}
	}

	for i := range plan.ToCreate {
		if plan.ToCreate[i].ID == "" {
			plan.ToCreate[i].ID = uuid.New().String()
		}
		if err := s.store.InsertLog(ctx, &plan.ToCreate[i]); err != nil {
			return fmt.Errorf("reconciliation create failed: %w", err)
		}
	}

	return nil
}
