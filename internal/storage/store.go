// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/waylog/waylog/internal/models"
)

// ErrNotFound is returned when a referenced storage key does not exist,
// for example when a record was deleted by a concurrent edit.
var ErrNotFound = errors.New("record not found")

// LogFilter selects log records. Zero-valued fields are ignored.
type LogFilter struct {
	TripID string

	// From and To bound the record day, inclusive on both ends. A zero
	// time leaves that end unbounded.
	From time.Time
	To   time.Time

	Category models.Category

	// IsGroupSource filters on the group-source flag when non-nil.
	IsGroupSource *bool
}

// Store defines the interface for daily-log and trip storage operations.
// This abstraction allows swapping storage backends (SQLite, MongoDB)
// without changing the service layer.
//
// The reconciliation engine treats the store as the single source of truth
// and re-fetches rather than caching across phases.
type Store interface {
	// InsertLog persists a new record, assigning StorageKey and filling
	// CreatedAt/UpdatedAt. The caller supplies ID; a blank ID gets a fresh
	// UUID.
	InsertLog(ctx context.Context, rec *models.LogRecord) error

	// GetLog retrieves a record by storage key.
	// Returns ErrNotFound if no such record exists.
	GetLog(ctx context.Context, storageKey string) (*models.LogRecord, error)

	// UpdateLog overwrites an existing record, keyed by StorageKey, and
	// bumps UpdatedAt. Returns ErrNotFound if the record is gone.
	UpdateLog(ctx context.Context, rec *models.LogRecord) error

	// DeleteLog removes a record by storage key.
	// Returns ErrNotFound if no such record exists.
	DeleteLog(ctx context.Context, storageKey string) error

	// QueryLogs returns all records matching the filter.
	QueryLogs(ctx context.Context, filter LogFilter) ([]models.LogRecord, error)

	// CreateTrip persists a new trip, assigning ID and CreatedAt.
	CreateTrip(ctx context.Context, trip *models.Trip) error

	// GetTrip retrieves a trip by ID. Returns ErrNotFound if missing.
	GetTrip(ctx context.Context, tripID string) (*models.Trip, error)

	// UpdateTrip overwrites an existing trip. Returns ErrNotFound if missing.
	UpdateTrip(ctx context.Context, trip *models.Trip) error

	// DeleteTrip removes a trip by ID. Returns ErrNotFound if missing.
	DeleteTrip(ctx context.Context, tripID string) error

	// ListTripsByUser returns trips the user owns or is a member of,
	// newest first.
	ListTripsByUser(ctx context.Context, userID string) ([]models.Trip, error)

	// Close releases any resources held by the store.
	Close() error
}
