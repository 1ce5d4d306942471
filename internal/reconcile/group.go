// Package reconcile implements the pure parts of the daily-log group
// reconciliation engine: grouping records into display entries, computing
// the create/update/delete plan for an edit, and the related-record set
// algebra behind conflict validation. Nothing in this package performs I/O;
// all functions are deterministic over their inputs.
package reconcile

import (
	"sort"
	"time"

	"github.com/waylog/waylog/internal/models"
)

// GroupedEntry is the display/edit unit: all records one user logged on one
// calendar day. It is a derived projection, re-derivable at any time from
// the flat record set, and never persisted.
type GroupedEntry struct {
	DayKey string
	Date   time.Time
	UserID string

	// Per-category record lists. At most one record per category is
	// expected; duplicates are appended in input order and the first is
	// treated as canonical.
	Worktime      []models.LogRecord
	Accommodation []models.LogRecord
	Additional    []models.LogRecord

	// SharedWith is the union of AppliedTo across the bucket's records.
	SharedWith []string

	// DuplicateCategories flags categories that unexpectedly hold more
	// than one record. A data-integrity warning for the caller to log,
	// never a failure.
	DuplicateCategories []models.Category
}

// Canonical returns the canonical (first) record for the category, or nil.
func (e *GroupedEntry) Canonical(c models.Category) *models.LogRecord {
	var list []models.LogRecord
	switch c {
	case models.CategoryWorktime:
		list = e.Worktime
	case models.CategoryAccommodation:
		list = e.Accommodation
	case models.CategoryAdditional:
		list = e.Additional
	}
	if len(list) == 0 {
		return nil
	}
	return &list[0]
}

// Group partitions records into one GroupedEntry per (day, user). Records
// are bucketed by the date portion of DateTime, falling back to CreatedAt
// and then to the current time for records missing both. Output is sorted
// by day key descending (most recent first), with same-day entries ordered
// by user ID so the projection does not depend on input order.
//
// Group is pure: repeated calls with the same input (in any order) yield
// structurally equal entries.
func Group(records []models.LogRecord) []GroupedEntry {
	buckets := make(map[string]*GroupedEntry)
	var order []string

	for _, rec := range records {
		date := bucketDate(rec)
		key := models.DayKey(date) + "_" + rec.UserID

		entry, ok := buckets[key]
		if !ok {
			entry = &GroupedEntry{
				DayKey: models.DayKey(date),
				Date:   models.NoonUTC(date),
				UserID: rec.UserID,
			}
			buckets[key] = entry
			order = append(order, key)
		}

		switch rec.Category {
		case models.CategoryWorktime:
			entry.Worktime = append(entry.Worktime, rec)
			if len(entry.Worktime) == 2 {
				entry.DuplicateCategories = append(entry.DuplicateCategories, models.CategoryWorktime)
			}
		case models.CategoryAccommodation:
			entry.Accommodation = append(entry.Accommodation, rec)
			if len(entry.Accommodation) == 2 {
				entry.DuplicateCategories = append(entry.DuplicateCategories, models.CategoryAccommodation)
			}
		case models.CategoryAdditional:
			entry.Additional = append(entry.Additional, rec)
			if len(entry.Additional) == 2 {
				entry.DuplicateCategories = append(entry.DuplicateCategories, models.CategoryAdditional)
			}
		}

		for _, userID := range rec.AppliedTo {
			if !containsString(entry.SharedWith, userID) {
				entry.SharedWith = append(entry.SharedWith, userID)
			}
		}
	}

	entries := make([]GroupedEntry, 0, len(buckets))
	for _, key := range order {
		entries = append(entries, *buckets[key])
	}

	// Most recent day first; user ID breaks same-day ties.
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].DayKey != entries[j].DayKey {
			return entries[i].DayKey > entries[j].DayKey
		}
		return entries[i].UserID < entries[j].UserID
	})

	// SharedWith union must not depend on record order.
	for i := range entries {
		sort.Strings(entries[i].SharedWith)
	}

	return entries
}

func bucketDate(rec models.LogRecord) time.Time {
	if !rec.DateTime.IsZero() {
		return rec.DateTime
	}
	if rec.CreatedAt != 0 {
		return time.Unix(rec.CreatedAt, 0)
	}
	return time.Now()
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
