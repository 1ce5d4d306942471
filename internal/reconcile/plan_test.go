package reconcile

import (
	"reflect"
	"testing"

	"github.com/waylog/waylog/internal/models"
)

func ownerWorktime(appliedTo ...string) models.LogRecord {
	return models.LogRecord{
		ID:            "owner-w",
		StorageKey:    "sk-owner-w",
		TripID:        "trip-1",
		UserID:        "owner",
		DateTime:      day("2024-06-01"),
		Category:      models.CategoryWorktime,
		Worktime:      &models.WorktimeFields{StartTime: "09:00", EndTime: "17:00", Description: "Coding"},
		AppliedTo:     appliedTo,
		IsGroupSource: len(appliedTo) > 0,
	}
}

func colleagueWorktime(id, userID string) models.LogRecord {
	return models.LogRecord{
		ID:         id,
		StorageKey: "sk-" + id,
		TripID:     "trip-1",
		UserID:     userID,
		DateTime:   day("2024-06-01"),
		Category:   models.CategoryWorktime,
		Worktime:   &models.WorktimeFields{StartTime: "09:00", EndTime: "17:00", Description: "Coding"},
		CreatedAt:  1717200000,
	}
}

func worktimeDraft() CategoryDrafts {
	return CategoryDrafts{
		Worktime: &models.WorktimeFields{StartTime: "09:00", EndTime: "17:00", Description: "Coding"},
	}
}

func planInput(drafts CategoryDrafts, appliedTo []string, shared []models.Category, originals []models.LogRecord) PlanInput {
	return PlanInput{
		TripID:           "trip-1",
		OwnerID:          "owner",
		Date:             day("2024-06-01"),
		Drafts:           drafts,
		AppliedTo:        appliedTo,
		SharedCategories: shared,
		OriginalRecords:  originals,
	}
}

func deletedIDs(plan ReconciliationPlan) []string {
	var ids []string
	for _, rec := range plan.ToDelete {
		ids = append(ids, rec.ID)
	}
	return ids
}

func TestPlan_UnsharedCategoryDeletesAllCopies(t *testing.T) {
	originals := []models.LogRecord{
		ownerWorktime("userA", "userB"),
		colleagueWorktime("copy-a", "userA"),
		colleagueWorktime("copy-b", "userB"),
	}

	// Worktime is no longer shared; colleagues stay applied for other
	// categories.
	plan := Plan(planInput(worktimeDraft(), []string{"userA", "userB"}, nil, originals))

	want := []string{"copy-a", "copy-b"}
	if got := deletedIDs(plan); !reflect.DeepEqual(got, want) {
		t.Errorf("ToDelete = %v, want %v", got, want)
	}
	if len(plan.ToCreate) != 0 {
		t.Errorf("expected no creates, got %d", len(plan.ToCreate))
	}
	if len(plan.ToUpdate) != 1 {
		t.Fatalf("expected only the owner update, got %d updates", len(plan.ToUpdate))
	}

	owner := plan.ToUpdate[0]
	if owner.ID != "owner-w" {
		t.Errorf("expected owner record update, got %s", owner.ID)
	}
	if owner.IsGroupSource {
		t.Error("owner record should lose group-source status when unshared")
	}
	if len(owner.AppliedTo) != 0 {
		t.Errorf("owner AppliedTo should be cleared, got %v", owner.AppliedTo)
	}
}

func TestPlan_ShrinkThenGrow(t *testing.T) {
	originals := []models.LogRecord{
		ownerWorktime("userA", "userB"),
		colleagueWorktime("copy-a", "userA"),
		colleagueWorktime("copy-b", "userB"),
	}

	plan := Plan(planInput(
		worktimeDraft(),
		[]string{"userB", "userC"},
		[]models.Category{models.CategoryWorktime},
		originals,
	))

	if got := deletedIDs(plan); !reflect.DeepEqual(got, []string{"copy-a"}) {
		t.Errorf("ToDelete = %v, want [copy-a]", got)
	}

	var updatedB *models.LogRecord
	for i := range plan.ToUpdate {
		if plan.ToUpdate[i].UserID == "userB" {
			updatedB = &plan.ToUpdate[i]
		}
	}
	if updatedB == nil {
		t.Fatal("expected userB's copy to be updated, not recreated")
	}
	if updatedB.StorageKey != "sk-copy-b" {
		t.Errorf("update must keep the original storage key, got %s", updatedB.StorageKey)
	}
	if updatedB.CreatedAt != 1717200000 {
		t.Errorf("update must keep the original creation timestamp, got %d", updatedB.CreatedAt)
	}

	if len(plan.ToCreate) != 1 {
		t.Fatalf("expected one create for userC, got %d", len(plan.ToCreate))
	}
	created := plan.ToCreate[0]
	if created.UserID != "userC" || created.IsGroupSource {
		t.Errorf("expected non-group-source copy for userC, got %+v", created)
	}
	if created.ID != "" || created.StorageKey != "" {
		t.Error("created records must not have identifiers before execution")
	}
}

func TestPlan_WorktimeOverrides(t *testing.T) {
	originals := []models.LogRecord{
		ownerWorktime("userA"),
		colleagueWorktime("copy-a", "userA"),
	}

	in := planInput(
		worktimeDraft(),
		[]string{"userA", "userB"},
		[]models.Category{models.CategoryWorktime},
		originals,
	)
	in.OverridesByUser = map[string]*models.WorktimeFields{
		"userA": {StartTime: "10:00", EndTime: "18:00", Description: "Late shift"},
	}

	plan := Plan(in)

	var updatedA *models.LogRecord
	for i := range plan.ToUpdate {
		if plan.ToUpdate[i].UserID == "userA" {
			updatedA = &plan.ToUpdate[i]
		}
	}
	if updatedA == nil {
		t.Fatal("expected userA's copy to be updated")
	}
	if updatedA.Worktime.StartTime != "10:00" || updatedA.Worktime.Description != "Late shift" {
		t.Errorf("override not applied: %+v", updatedA.Worktime)
	}

	if len(plan.ToCreate) != 1 {
		t.Fatalf("expected one create for userB, got %d", len(plan.ToCreate))
	}
	if plan.ToCreate[0].Worktime.StartTime != "09:00" {
		t.Errorf("userB should get the owner draft, got %+v", plan.ToCreate[0].Worktime)
	}
}

func TestPlan_EmptyDraftNoFanOut(t *testing.T) {
	originals := []models.LogRecord{ownerWorktime()}

	plan := Plan(planInput(
		CategoryDrafts{Worktime: &models.WorktimeFields{}},
		[]string{"userA"},
		[]models.Category{models.CategoryWorktime},
		originals,
	))

	if len(plan.ToCreate) != 0 {
		t.Errorf("empty draft must not fan out, got %d creates", len(plan.ToCreate))
	}
	if len(plan.ToUpdate) != 1 || plan.ToUpdate[0].ID != "owner-w" {
		t.Errorf("owner record should still be updated, got %+v", plan.ToUpdate)
	}
}

func TestPlan_MissingOwnerRecordWarns(t *testing.T) {
	plan := Plan(planInput(worktimeDraft(), nil, nil, nil))

	if len(plan.Warnings) == 0 {
		t.Error("expected a warning when no owner record exists to update")
	}
	if len(plan.ToCreate) != 1 || plan.ToCreate[0].UserID != "owner" {
		t.Errorf("expected the owner record to be created, got %+v", plan.ToCreate)
	}
}

func TestPlan_Deterministic(t *testing.T) {
	originals := []models.LogRecord{
		ownerWorktime("userA", "userB"),
		colleagueWorktime("copy-a", "userA"),
	}
	in := planInput(
		worktimeDraft(),
		[]string{"userA", "userB"},
		[]models.Category{models.CategoryWorktime},
		originals,
	)

	first := Plan(in)
	for i := 0; i < 5; i++ {
		if got := Plan(in); !reflect.DeepEqual(got, first) {
			t.Fatalf("plan is not deterministic:\ngot  %+v\nwant %+v", got, first)
		}
	}
}
