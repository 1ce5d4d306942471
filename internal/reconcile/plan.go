package reconcile

import (
	"fmt"
	"time"

	"github.com/waylog/waylog/internal/models"
)

// CategoryDrafts holds the owner's intended data for one entry, up to one
// draft per category. A nil draft means the category was left blank.
type CategoryDrafts struct {
	Worktime      *models.WorktimeFields
	Accommodation *models.AccommodationFields
	Additional    *models.AdditionalFields
}

// PlanInput is everything Plan needs to diff desired state against the
// records that existed before the edit.
type PlanInput struct {
	TripID  string
	OwnerID string

	// Date is the calendar day being edited.
	Date time.Time

	Drafts CategoryDrafts

	// AppliedTo is the desired final colleague set for this entry.
	AppliedTo []string

	// SharedCategories marks which categories fan out to colleagues. A
	// category absent here must end the edit with zero colleague copies,
	// even for colleagues listed in AppliedTo.
	SharedCategories []models.Category

	// OverridesByUser carries per-colleague worktime overrides. Colleagues
	// without an override receive the owner's worktime draft.
	OverridesByUser map[string]*models.WorktimeFields

	// OriginalRecords is the full pre-edit record set for this entry's
	// (trip, day), owner and colleague copies alike.
	OriginalRecords []models.LogRecord
}

// ReconciliationPlan is the computed diff for one edit: records to create,
// update, and delete. It is consumed exactly once by the execute step.
// Created records have no ID or StorageKey yet; both are assigned at
// execution time. Deletes carry full records so execution can honor the
// sealed flag and report storage keys.
type ReconciliationPlan struct {
	ToCreate []models.LogRecord
	ToUpdate []models.LogRecord
	ToDelete []models.LogRecord

	// Warnings flags non-fatal conditions discovered while planning, such
	// as an edit arriving with no pre-existing owner record to target.
	Warnings []string
}

// Empty reports whether the plan carries no work.
func (p *ReconciliationPlan) Empty() bool {
	return len(p.ToCreate) == 0 && len(p.ToUpdate) == 0 && len(p.ToDelete) == 0
}

// Plan computes the three-way create/update/delete diff for one edit. It is
// total and deterministic: the same input always yields the same plan, and
// it never touches the store. Each category is reconciled independently:
//
//  1. The owner's record is always updated in place when it exists. An edit
//     that has to create an owner record is flagged as a warning, since
//     edit flows are expected to target a pre-existing record.
//  2. A category no longer shared loses every colleague copy.
//  3. A shared category with data gets one copy per applied-to colleague:
//     existing copies are updated (keeping storage key, attachments, and
//     creation timestamp), missing ones are created. Worktime overrides
//     replace the owner draft per colleague.
//  4. Colleague copies whose owner left AppliedTo are deleted.
//  5. An all-empty draft updates the owner record but fans nothing out.
func Plan(in PlanInput) ReconciliationPlan {
	var plan ReconciliationPlan
	day := models.NoonUTC(in.Date)

	for _, category := range models.Categories {
		planCategory(&plan, in, category, day)
	}

	return plan
}

func planCategory(plan *ReconciliationPlan, in PlanInput, category models.Category, day time.Time) {
	shared := containsCategory(in.SharedCategories, category)

	owner := findRecord(in.OriginalRecords, in.OwnerID, category)
	draft := draftRecord(in, category, day)

	if draft != nil {
		if owner != nil {
			updated := *owner
			applyDraft(&updated, draft)
			updated.DateTime = day
			updated.AppliedTo = appliedToFor(in, shared)
			updated.IsGroupSource = shared && len(in.AppliedTo) > 0
			plan.ToUpdate = append(plan.ToUpdate, updated)
		} else {
			// Edit flows should always have an owner record to target;
			// creating one here means the caller lost track of it.
			plan.Warnings = append(plan.Warnings,
				fmt.Sprintf("no existing owner record for category %q, creating one during an edit", category))
			created := *draft
			created.AppliedTo = appliedToFor(in, shared)
			created.IsGroupSource = shared && len(in.AppliedTo) > 0
			plan.ToCreate = append(plan.ToCreate, created)
		}
	}

	copies := colleagueCopies(in.OriginalRecords, in.OwnerID, category)

	if !shared {
		// Rule 2: unshared category keeps zero colleague copies.
		plan.ToDelete = append(plan.ToDelete, copies...)
		return
	}

	fanOut := draft != nil && draft.HasData()

	for _, copy := range copies {
		if !containsString(in.AppliedTo, copy.UserID) {
			// Rule 4: colleague set shrank.
			plan.ToDelete = append(plan.ToDelete, copy)
		}
	}

	if !fanOut {
		// Rule 5: nothing to push onto colleagues.
		return
	}

	for _, userID := range in.AppliedTo {
		if userID == in.OwnerID {
			// The owner's record is handled above, never fanned out.
			continue
		}
		desired := colleagueRecord(in, category, day, userID, draft)

		if existing := findRecord(copies, userID, category); existing != nil {
			// Rule 3, update branch: keep the copy's identity, storage
			// key, attachments, and creation timestamp; replace only the
			// data fields and date.
			updated := *existing
			applyDraft(&updated, desired)
			updated.DateTime = day
			plan.ToUpdate = append(plan.ToUpdate, updated)
		} else {
			plan.ToCreate = append(plan.ToCreate, *desired)
		}
	}
}

// draftRecord builds the owner-shaped record for the category, or nil when
// the category has no draft at all.
func draftRecord(in PlanInput, category models.Category, day time.Time) *models.LogRecord {
	rec := models.LogRecord{
		TripID:   in.TripID,
		UserID:   in.OwnerID,
		DateTime: day,
		Category: category,
	}
	switch category {
	case models.CategoryWorktime:
		if in.Drafts.Worktime == nil {
			return nil
		}
		c := *in.Drafts.Worktime
		rec.Worktime = &c
	case models.CategoryAccommodation:
		if in.Drafts.Accommodation == nil {
			return nil
		}
		c := *in.Drafts.Accommodation
		rec.Accommodation = &c
	case models.CategoryAdditional:
		if in.Drafts.Additional == nil {
			return nil
		}
		c := *in.Drafts.Additional
		rec.Additional = &c
	}
	return &rec
}

// colleagueRecord is the desired state of one colleague's copy: the owner
// draft (or the colleague's worktime override) on a non-group-source record
// owned by the colleague.
func colleagueRecord(in PlanInput, category models.Category, day time.Time, userID string, draft *models.LogRecord) *models.LogRecord {
	rec := models.LogRecord{
		TripID:        in.TripID,
		UserID:        userID,
		DateTime:      day,
		Category:      category,
		IsGroupSource: false,
	}

	w, a, n := draft.ClonePayload()
	rec.Worktime, rec.Accommodation, rec.Additional = w, a, n

	if category == models.CategoryWorktime {
		if override, ok := in.OverridesByUser[userID]; ok && override != nil {
			c := *override
			rec.Worktime = &c
		}
	}
	return &rec
}

// applyDraft copies the category payload from src onto dst, leaving
// identity, bookkeeping, and attachment fields untouched.
func applyDraft(dst, src *models.LogRecord) {
	w, a, n := src.ClonePayload()
	switch dst.Category {
	case models.CategoryWorktime:
		dst.Worktime = w
	case models.CategoryAccommodation:
		dst.Accommodation = a
	case models.CategoryAdditional:
		dst.Additional = n
	}
}

func appliedToFor(in PlanInput, shared bool) []string {
	if !shared {
		return nil
	}
	out := make([]string, len(in.AppliedTo))
	copy(out, in.AppliedTo)
	return out
}

// findRecord returns the first record owned by userID with the category.
func findRecord(records []models.LogRecord, userID string, category models.Category) *models.LogRecord {
	for i := range records {
		if records[i].UserID == userID && records[i].Category == category {
			return &records[i]
		}
	}
	return nil
}

// colleagueCopies filters records to non-owner copies of the category.
func colleagueCopies(records []models.LogRecord, ownerID string, category models.Category) []models.LogRecord {
	var out []models.LogRecord
	for _, rec := range records {
		if rec.UserID != ownerID && rec.Category == category && !rec.IsGroupSource {
			out = append(out, rec)
		}
	}
	return out
}

func containsCategory(list []models.Category, c models.Category) bool {
	for _, v := range list {
		if v == c {
			return true
		}
	}
	return false
}
