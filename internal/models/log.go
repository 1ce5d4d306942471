package models

import "time"

// Category discriminates the three daily-log sub-types.
type Category string

const (
	CategoryWorktime      Category = "worktime"
	CategoryAccommodation Category = "accommodation"
	CategoryAdditional    Category = "additional"
)

// Categories lists all valid categories in display order.
var Categories = []Category{CategoryWorktime, CategoryAccommodation, CategoryAdditional}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryWorktime, CategoryAccommodation, CategoryAdditional:
		return true
	}
	return false
}

// WorktimeFields is the payload for worktime records.
type WorktimeFields struct {
	// StartTime and EndTime are clock times in "HH:MM" form.
	StartTime   string
	EndTime     string
	Description string
}

// AccommodationFields is the payload for accommodation records.
type AccommodationFields struct {
	Lodging   string
	Breakfast bool
	Lunch     bool
	Dinner    bool
}

// AdditionalFields is the payload for free-text note records.
type AdditionalFields struct {
	Notes string
}

// Attachment is a file reference stored alongside a record.
// File contents live elsewhere; only the pointer is kept here.
type Attachment struct {
	URL       string
	Name      string
	MIMEType  string
	SizeBytes int64
}

// LogRecord is one daily-log observation for one (owner, date, category).
//
// Exactly one of Worktime, Accommodation, Additional is non-nil, matching
// Category.
type LogRecord struct {
	// ID is the stable cross-reference token (UUID format) used inside
	// RelatedLogs. Set once at creation, never reassigned.
	ID string

	// StorageKey is the persistence-layer primary key, assigned by the
	// store on insert.
	StorageKey string

	TripID string

	// UserID is the owning user.
	UserID string

	// DateTime is the calendar date this entry logs. The time-of-day
	// component is normalized to noon UTC so the day never shifts across
	// timezones.
	DateTime time.Time

	Category Category

	Worktime      *WorktimeFields
	Accommodation *AccommodationFields
	Additional    *AdditionalFields

	// AppliedTo is the set of colleague user IDs this entry is shared
	// with. Only meaningful on the owner's own record.
	AppliedTo []string

	// IsGroupSource marks the canonical shared copy whose AppliedTo and
	// RelatedLogs govern the group. False means a solo record or a
	// colleague's personal copy.
	IsGroupSource bool

	// RelatedLogs holds the IDs of the colleague copies belonging to the
	// same logical entry. Populated only on group-source records and
	// maintained exclusively by the linking step.
	RelatedLogs []string

	// Sealed records refuse any further mutation.
	Sealed bool

	Attachments []Attachment

	// CreatedAt and UpdatedAt are Unix timestamps maintained by the store.
	CreatedAt int64
	UpdatedAt int64
}

// HasData reports whether the record's category payload carries at least
// one non-zero field. An all-empty payload triggers no colleague fan-out.
func (r *LogRecord) HasData() bool {
	switch r.Category {
	case CategoryWorktime:
		return r.Worktime != nil &&
			(r.Worktime.StartTime != "" || r.Worktime.EndTime != "" || r.Worktime.Description != "")
	case CategoryAccommodation:
		return r.Accommodation != nil &&
			(r.Accommodation.Lodging != "" || r.Accommodation.Breakfast ||
				r.Accommodation.Lunch || r.Accommodation.Dinner)
	case CategoryAdditional:
		return r.Additional != nil && r.Additional.Notes != ""
	}
	return false
}

// ClonePayload returns deep copies of the record's category payloads.
// Used when carrying owner data onto a colleague copy so the two records
// never alias the same payload struct.
func (r *LogRecord) ClonePayload() (w *WorktimeFields, a *AccommodationFields, n *AdditionalFields) {
	if r.Worktime != nil {
		c := *r.Worktime
		w = &c
	}
	if r.Accommodation != nil {
		c := *r.Accommodation
		a = &c
	}
	if r.Additional != nil {
		c := *r.Additional
		n = &c
	}
	return
}

// AppliedToContains reports whether userID is in the record's AppliedTo set.
func (r *LogRecord) AppliedToContains(userID string) bool {
	for _, id := range r.AppliedTo {
		if id == userID {
			return true
		}
	}
	return false
}

// RelatedContains reports whether id is already in RelatedLogs.
func (r *LogRecord) RelatedContains(id string) bool {
	for _, rid := range r.RelatedLogs {
		if rid == id {
			return true
		}
	}
	return false
}
