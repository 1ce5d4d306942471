package models

import "time"

// Trip represents a business trip owned by one user, with invited members
// who can receive shared daily-log copies.
type Trip struct {
	// ID is the unique identifier for the trip (UUID format).
	ID string

	Name        string
	Destination string

	StartDate time.Time
	EndDate   time.Time

	// OwnerID is the user who created the trip.
	OwnerID string

	// MemberIDs are the invited colleagues. The owner is not repeated here.
	MemberIDs []string

	// CreatedAt is the Unix timestamp when the trip was created.
	CreatedAt int64
}

// HasMember reports whether userID is the owner or an invited member.
func (t *Trip) HasMember(userID string) bool {
	if userID == t.OwnerID {
		return true
	}
	for _, id := range t.MemberIDs {
		if id == userID {
			return true
		}
	}
	return false
}
