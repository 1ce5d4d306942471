// Package api exposes the HTTP surface: JSON request/response shapes and
// chi handlers over the trip and log services. Serialization lives here;
// the services and the reconciliation engine never see JSON.
package api

import (
	"time"

	"github.com/waylog/waylog/internal/models"
	"github.com/waylog/waylog/internal/reconcile"
)

type tripJSON struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Destination string   `json:"destination,omitempty"`
	StartDate   string   `json:"startDate"`
	EndDate     string   `json:"endDate"`
	OwnerID     string   `json:"ownerId"`
	MemberIDs   []string `json:"memberIds"`
	CreatedAt   int64    `json:"createdAt"`
}

func toTripJSON(t *models.Trip) tripJSON {
	return tripJSON{
		ID:          t.ID,
		Name:        t.Name,
		Destination: t.Destination,
		StartDate:   t.StartDate.UTC().Format(models.DayKeyLayout),
		EndDate:     t.EndDate.UTC().Format(models.DayKeyLayout),
		OwnerID:     t.OwnerID,
		MemberIDs:   t.MemberIDs,
		CreatedAt:   t.CreatedAt,
	}
}

type tripRequest struct {
	Name        string   `json:"name"`
	Destination string   `json:"destination"`
	StartDate   string   `json:"startDate"`
	EndDate     string   `json:"endDate"`
	MemberIDs   []string `json:"memberIds"`
}

type worktimeJSON struct {
	StartTime   string `json:"startTime"`
	EndTime     string `json:"endTime"`
	Description string `json:"description"`
}

type accommodationJSON struct {
	Lodging   string `json:"lodging"`
	Breakfast bool   `json:"breakfast"`
	Lunch     bool   `json:"lunch"`
	Dinner    bool   `json:"dinner"`
}

type additionalJSON struct {
	Notes string `json:"notes"`
}

// entryRequest is the payload for both the create and edit entry flows.
type entryRequest struct {
	Date string `json:"date"`

	Worktime      *worktimeJSON      `json:"worktime,omitempty"`
	Accommodation *accommodationJSON `json:"accommodation,omitempty"`
	Additional    *additionalJSON    `json:"additional,omitempty"`

	AppliedTo        []string `json:"appliedTo"`
	SharedCategories []string `json:"sharedCategories"`

	OverridesByUser map[string]*worktimeJSON `json:"overridesByUser,omitempty"`
}

type attachmentJSON struct {
	URL       string `json:"url"`
	Name      string `json:"name"`
	MIMEType  string `json:"mimeType,omitempty"`
	SizeBytes int64  `json:"sizeBytes,omitempty"`
}

type recordJSON struct {
	ID            string             `json:"id"`
	UserID        string             `json:"userId"`
	Category      string             `json:"category"`
	Worktime      *worktimeJSON      `json:"worktime,omitempty"`
	Accommodation *accommodationJSON `json:"accommodation,omitempty"`
	Additional    *additionalJSON    `json:"additional,omitempty"`
	AppliedTo     []string           `json:"appliedTo,omitempty"`
	IsGroupSource bool               `json:"isGroupSource"`
	RelatedLogs   []string           `json:"relatedLogs,omitempty"`
	Sealed        bool               `json:"sealed,omitempty"`
	Attachments   []attachmentJSON   `json:"attachments,omitempty"`
}

type entryJSON struct {
	Date          string      `json:"date"`
	UserID        string      `json:"userId"`
	Worktime      *recordJSON `json:"worktime,omitempty"`
	Accommodation *recordJSON `json:"accommodation,omitempty"`
	Additional    *recordJSON `json:"additional,omitempty"`
	SharedWith    []string    `json:"sharedWith,omitempty"`
	Duplicates    []string    `json:"duplicates,omitempty"`
}

func toRecordJSON(rec *models.LogRecord) *recordJSON {
	if rec == nil {
		return nil
	}
	out := &recordJSON{
		ID:            rec.ID,
		UserID:        rec.UserID,
		Category:      string(rec.Category),
		AppliedTo:     rec.AppliedTo,
		IsGroupSource: rec.IsGroupSource,
		RelatedLogs:   rec.RelatedLogs,
		Sealed:        rec.Sealed,
	}
	if rec.Worktime != nil {
		out.Worktime = &worktimeJSON{
			StartTime:   rec.Worktime.StartTime,
			EndTime:     rec.Worktime.EndTime,
			Description: rec.Worktime.Description,
		}
	}
	if rec.Accommodation != nil {
		out.Accommodation = &accommodationJSON{
			Lodging:   rec.Accommodation.Lodging,
			Breakfast: rec.Accommodation.Breakfast,
			Lunch:     rec.Accommodation.Lunch,
			Dinner:    rec.Accommodation.Dinner,
		}
	}
	if rec.Additional != nil {
		out.Additional = &additionalJSON{Notes: rec.Additional.Notes}
	}
	for _, att := range rec.Attachments {
		out.Attachments = append(out.Attachments, attachmentJSON{
			URL:       att.URL,
			Name:      att.Name,
			MIMEType:  att.MIMEType,
			SizeBytes: att.SizeBytes,
		})
	}
	return out
}

func toEntryJSON(entry *reconcile.GroupedEntry) entryJSON {
	out := entryJSON{
		Date:          entry.DayKey,
		UserID:        entry.UserID,
		Worktime:      toRecordJSON(entry.Canonical(models.CategoryWorktime)),
		Accommodation: toRecordJSON(entry.Canonical(models.CategoryAccommodation)),
		Additional:    toRecordJSON(entry.Canonical(models.CategoryAdditional)),
		SharedWith:    entry.SharedWith,
	}
	for _, c := range entry.DuplicateCategories {
		out.Duplicates = append(out.Duplicates, string(c))
	}
	return out
}

func parseDay(s string) (time.Time, error) {
	return time.Parse(models.DayKeyLayout, s)
}
