package service

import (
	"fmt"
	"sort"
	"strings"
)

// ConflictError rejects an edit that would share an entry with users who
// already have independent records for the target day. It names the
// offending users and is always surfaced to the caller, never auto-resolved.
type ConflictError struct {
	UserIDs []string
}

func (e *ConflictError) Error() string {
	ids := make([]string, len(e.UserIDs))
	copy(ids, e.UserIDs)
	sort.Strings(ids)
	return fmt.Sprintf("users already have entries for this date: %s", strings.Join(ids, ", "))
}

// SealedRecordError rejects a mutation of a sealed record. A precondition
// failure, never a silent skip.
type SealedRecordError struct {
	StorageKey string
}

func (e *SealedRecordError) Error() string {
	return fmt.Sprintf("record %s is sealed and cannot be modified", e.StorageKey)
}
