package reconcile

import "github.com/waylog/waylog/internal/models"

// RelatedIDs returns the union of RelatedLogs across all group-source
// records in the set: every record ID that some group source claims as a
// colleague copy. Records outside this union are independent entries of
// their owners.
func RelatedIDs(records []models.LogRecord) map[string]bool {
	related := make(map[string]bool)
	for _, rec := range records {
		if !rec.IsGroupSource {
			continue
		}
		for _, id := range rec.RelatedLogs {
			related[id] = true
		}
	}
	return related
}

// UnrelatedByUser partitions the independent records by owning user: for
// each user, the records not reachable via any group-source's RelatedLogs.
// A user's own group-source record counts as independent too; it is an
// entry the user controls, not a copy somebody fanned out to them.
// Conflict validation rejects sharing with a user who already holds such a
// record for the target day.
func UnrelatedByUser(records []models.LogRecord) map[string][]models.LogRecord {
	related := RelatedIDs(records)

	out := make(map[string][]models.LogRecord)
	for _, rec := range records {
		if related[rec.ID] {
			continue
		}
		out[rec.UserID] = append(out[rec.UserID], rec)
	}
	return out
}
