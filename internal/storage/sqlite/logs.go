package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/waylog/waylog/internal/models"
	"github.com/waylog/waylog/internal/storage"
)

// InsertLog persists a new log record to the database.
func (s *SQLiteStore) InsertLog(ctx context.Context, rec *models.LogRecord) error {
	// Assign identifiers if not set
	if rec.StorageKey == "" {
		rec.StorageKey = uuid.New().String()
	}
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	now := time.Now().Unix()
	if rec.CreatedAt == 0 {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	w, a, n := payloadColumns(rec)
	_, err = tx.ExecContext(ctx,
		`INSERT INTO logs (storage_key, id, trip_id, user_id, date_time, day_key, category,
		                   is_group_source, sealed,
		                   worktime_start, worktime_end, worktime_description,
		                   lodging, breakfast, lunch, dinner, notes,
		                   created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.StorageKey, rec.ID, rec.TripID, rec.UserID,
		rec.DateTime.Unix(), models.DayKey(rec.DateTime), string(rec.Category),
		boolToInt(rec.IsGroupSource), boolToInt(rec.Sealed),
		w.start, w.end, w.description,
		a.lodging, a.breakfast, a.lunch, a.dinner, n,
		rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert log: %w", err)
	}

	if err := insertSideRows(ctx, tx, rec); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetLog retrieves a log record by storage key, including applied-to,
// related-log, and attachment rows.
func (s *SQLiteStore) GetLog(ctx context.Context, storageKey string) (*models.LogRecord, error) {
	row := s.db.QueryRowContext(ctx,
		selectLogColumns+" FROM logs WHERE storage_key = ?", storageKey)

	rec, err := scanLog(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("log %s: %w", storageKey, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get log: %w", err)
	}

	if err := s.loadSideRows(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// UpdateLog overwrites an existing log record and its side rows.
func (s *SQLiteStore) UpdateLog(ctx context.Context, rec *models.LogRecord) error {
	rec.UpdatedAt = time.Now().Unix()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	w, a, n := payloadColumns(rec)
	res, err := tx.ExecContext(ctx,
		`UPDATE logs SET trip_id = ?, user_id = ?, date_time = ?, day_key = ?, category = ?,
		                 is_group_source = ?, sealed = ?,
		                 worktime_start = ?, worktime_end = ?, worktime_description = ?,
		                 lodging = ?, breakfast = ?, lunch = ?, dinner = ?, notes = ?,
		                 updated_at = ?
		 WHERE storage_key = ?`,
		rec.TripID, rec.UserID, rec.DateTime.Unix(), models.DayKey(rec.DateTime), string(rec.Category),
		boolToInt(rec.IsGroupSource), boolToInt(rec.Sealed),
		w.start, w.end, w.description,
		a.lodging, a.breakfast, a.lunch, a.dinner, n,
		rec.UpdatedAt, rec.StorageKey,
	)
	if err != nil {
		return fmt.Errorf("failed to update log: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("log %s: %w", rec.StorageKey, storage.ErrNotFound)
	}

	// Side rows are replaced wholesale; the record is the authority.
	for _, table := range []string{"log_applied_to", "log_related", "log_attachments"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE log_key = ?", rec.StorageKey); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	if err := insertSideRows(ctx, tx, rec); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// DeleteLog removes a log record by storage key. Side rows cascade.
func (s *SQLiteStore) DeleteLog(ctx context.Context, storageKey string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM logs WHERE storage_key = ?", storageKey)
	if err != nil {
		return fmt.Errorf("failed to delete log: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("log %s: %w", storageKey, storage.ErrNotFound)
	}
	return nil
}

// QueryLogs returns all log records matching the filter, ordered by day key
// descending and then user ID for a stable result.
func (s *SQLiteStore) QueryLogs(ctx context.Context, filter storage.LogFilter) ([]models.LogRecord, error) {
	query := selectLogColumns + " FROM logs WHERE 1=1"
	var args []interface{}

	if filter.TripID != "" {
		query += " AND trip_id = ?"
		args = append(args, filter.TripID)
	}
	if !filter.From.IsZero() {
		query += " AND day_key >= ?"
		args = append(args, models.DayKey(filter.From))
	}
	if !filter.To.IsZero() {
		query += " AND day_key <= ?"
		args = append(args, models.DayKey(filter.To))
	}
	if filter.Category != "" {
		query += " AND category = ?"
		args = append(args, string(filter.Category))
	}
	if filter.IsGroupSource != nil {
		query += " AND is_group_source = ?"
		args = append(args, boolToInt(*filter.IsGroupSource))
	}
	query += " ORDER BY day_key DESC, user_id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query logs: %w", err)
	}
	defer rows.Close()

	var records []models.LogRecord
	for rows.Next() {
		rec, err := scanLog(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan log: %w", err)
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate logs: %w", err)
	}

	for i := range records {
		if err := s.loadSideRows(ctx, &records[i]); err != nil {
			return nil, err
		}
	}
	return records, nil
}

const selectLogColumns = `SELECT storage_key, id, trip_id, user_id, date_time, category,
       is_group_source, sealed,
       worktime_start, worktime_end, worktime_description,
       lodging, breakfast, lunch, dinner, notes,
       created_at, updated_at`

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanLog(sc scanner) (*models.LogRecord, error) {
	rec := &models.LogRecord{}
	var (
		dateTime                 int64
		category                 string
		isGroupSource, sealed    int
		wStart, wEnd, wDesc      sql.NullString
		lodging, notes           sql.NullString
		breakfast, lunch, dinner sql.NullInt64
	)

	err := sc.Scan(
		&rec.StorageKey, &rec.ID, &rec.TripID, &rec.UserID, &dateTime, &category,
		&isGroupSource, &sealed,
		&wStart, &wEnd, &wDesc,
		&lodging, &breakfast, &lunch, &dinner, &notes,
		&rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	rec.DateTime = time.Unix(dateTime, 0).UTC()
	rec.Category = models.Category(category)
	rec.IsGroupSource = isGroupSource != 0
	rec.Sealed = sealed != 0

	switch rec.Category {
	case models.CategoryWorktime:
		rec.Worktime = &models.WorktimeFields{
			StartTime:   wStart.String,
			EndTime:     wEnd.String,
			Description: wDesc.String,
		}
	case models.CategoryAccommodation:
		rec.Accommodation = &models.AccommodationFields{
			Lodging:   lodging.String,
			Breakfast: breakfast.Int64 != 0,
			Lunch:     lunch.Int64 != 0,
			Dinner:    dinner.Int64 != 0,
		}
	case models.CategoryAdditional:
		rec.Additional = &models.AdditionalFields{Notes: notes.String}
	}

	return rec, nil
}

func (s *SQLiteStore) loadSideRows(ctx context.Context, rec *models.LogRecord) error {
	rows, err := s.db.QueryContext(ctx,
		"SELECT user_id FROM log_applied_to WHERE log_key = ? ORDER BY user_id", rec.StorageKey)
	if err != nil {
		return fmt.Errorf("failed to get applied-to users: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return fmt.Errorf("failed to scan applied-to user: %w", err)
		}
		rec.AppliedTo = append(rec.AppliedTo, userID)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate applied-to users: %w", err)
	}

	relRows, err := s.db.QueryContext(ctx,
		"SELECT related_id FROM log_related WHERE log_key = ? ORDER BY related_id", rec.StorageKey)
	if err != nil {
		return fmt.Errorf("failed to get related logs: %w", err)
	}
	defer relRows.Close()
	for relRows.Next() {
		var id string
		if err := relRows.Scan(&id); err != nil {
			return fmt.Errorf("failed to scan related log: %w", err)
		}
		rec.RelatedLogs = append(rec.RelatedLogs, id)
	}
	if err := relRows.Err(); err != nil {
		return fmt.Errorf("failed to iterate related logs: %w", err)
	}

	attRows, err := s.db.QueryContext(ctx,
		"SELECT url, name, mime_type, size_bytes FROM log_attachments WHERE log_key = ?", rec.StorageKey)
	if err != nil {
		return fmt.Errorf("failed to get attachments: %w", err)
	}
	defer attRows.Close()
	for attRows.Next() {
		var att models.Attachment
		if err := attRows.Scan(&att.URL, &att.Name, &att.MIMEType, &att.SizeBytes); err != nil {
			return fmt.Errorf("failed to scan attachment: %w", err)
		}
		rec.Attachments = append(rec.Attachments, att)
	}
	if err := attRows.Err(); err != nil {
		return fmt.Errorf("failed to iterate attachments: %w", err)
	}

	return nil
}

func insertSideRows(ctx context.Context, tx *sql.Tx, rec *models.LogRecord) error {
	for _, userID := range rec.AppliedTo {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO log_applied_to (log_key, user_id) VALUES (?, ?)",
			rec.StorageKey, userID); err != nil {
			return fmt.Errorf("failed to insert applied-to user: %w", err)
		}
	}
	for _, id := range rec.RelatedLogs {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO log_related (log_key, related_id) VALUES (?, ?)",
			rec.StorageKey, id); err != nil {
			return fmt.Errorf("failed to insert related log: %w", err)
		}
	}
	for _, att := range rec.Attachments {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO log_attachments (log_key, url, name, mime_type, size_bytes) VALUES (?, ?, ?, ?, ?)",
			rec.StorageKey, att.URL, att.Name, att.MIMEType, att.SizeBytes); err != nil {
			return fmt.Errorf("failed to insert attachment: %w", err)
		}
	}
	return nil
}

type worktimeColumns struct {
	start, end, description interface{}
}

type accommodationColumns struct {
	lodging, breakfast, lunch, dinner interface{}
}

// payloadColumns flattens the category payload into nullable column values.
func payloadColumns(rec *models.LogRecord) (worktimeColumns, accommodationColumns, interface{}) {
	var w worktimeColumns
	var a accommodationColumns
	var notes interface{}

	if rec.Worktime != nil {
		w = worktimeColumns{rec.Worktime.StartTime, rec.Worktime.EndTime, rec.Worktime.Description}
	}
	if rec.Accommodation != nil {
		a = accommodationColumns{
			rec.Accommodation.Lodging,
			boolToInt(rec.Accommodation.Breakfast),
			boolToInt(rec.Accommodation.Lunch),
			boolToInt(rec.Accommodation.Dinner),
		}
	}
	if rec.Additional != nil {
		notes = rec.Additional.Notes
	}
	return w, a, notes
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
