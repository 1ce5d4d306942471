package reconcile

import (
	"testing"

	"github.com/waylog/waylog/internal/models"
)

func TestRelatedIDs(t *testing.T) {
	records := []models.LogRecord{
		{ID: "src-1", UserID: "u1", IsGroupSource: true, RelatedLogs: []string{"copy-a", "copy-b"}},
		{ID: "src-2", UserID: "u1", IsGroupSource: true, RelatedLogs: []string{"copy-b", "copy-c"}},
		{ID: "lone", UserID: "u2", RelatedLogs: []string{"ignored"}},
	}

	related := RelatedIDs(records)

	for _, id := range []string{"copy-a", "copy-b", "copy-c"} {
		if !related[id] {
			t.Errorf("expected %s in related set", id)
		}
	}
	if related["ignored"] {
		t.Error("RelatedLogs on a non-group-source record must not count")
	}
	if related["src-1"] {
		t.Error("group-source records are not their own copies")
	}
}

func TestUnrelatedByUser(t *testing.T) {
	records := []models.LogRecord{
		{ID: "src-1", UserID: "owner", IsGroupSource: true, RelatedLogs: []string{"copy-a"}},
		{ID: "copy-a", UserID: "userA"},
		{ID: "own-b", UserID: "userB"},
	}

	unrelated := UnrelatedByUser(records)

	if _, ok := unrelated["userA"]; ok {
		t.Error("userA's only record is a fanned-out copy, should not appear")
	}
	if got := len(unrelated["userB"]); got != 1 {
		t.Errorf("userB has %d unrelated records, want 1", got)
	}
	// The owner's group source is an entry they control, not a copy.
	if got := len(unrelated["owner"]); got != 1 {
		t.Errorf("owner has %d unrelated records, want 1", got)
	}
}
