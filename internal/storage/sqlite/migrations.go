package sqlite

import "database/sql"

// migrations contains the SQL statements to set up the database schema.
// These run on startup to ensure tables exist.
// IMPORTANT: trips must be created BEFORE logs due to the foreign key.
const schema = `
CREATE TABLE IF NOT EXISTS trips (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    destination TEXT NOT NULL DEFAULT '',
    start_date INTEGER NOT NULL,
    end_date INTEGER NOT NULL,
    owner_id TEXT NOT NULL,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS trip_members (
    trip_id TEXT NOT NULL,
    user_id TEXT NOT NULL,
    PRIMARY KEY (trip_id, user_id),
    FOREIGN KEY (trip_id) REFERENCES trips(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS logs (
    storage_key TEXT PRIMARY KEY,
    id TEXT NOT NULL UNIQUE,
    trip_id TEXT NOT NULL,
    user_id TEXT NOT NULL,
    date_time INTEGER NOT NULL,
    day_key TEXT NOT NULL,
    category TEXT NOT NULL,
    is_group_source INTEGER NOT NULL DEFAULT 0,
    sealed INTEGER NOT NULL DEFAULT 0,
    worktime_start TEXT,
    worktime_end TEXT,
    worktime_description TEXT,
    lodging TEXT,
    breakfast INTEGER,
    lunch INTEGER,
    dinner INTEGER,
    notes TEXT,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL,
    FOREIGN KEY (trip_id) REFERENCES trips(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS log_applied_to (
    log_key TEXT NOT NULL,
    user_id TEXT NOT NULL,
    PRIMARY KEY (log_key, user_id),
    FOREIGN KEY (log_key) REFERENCES logs(storage_key) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS log_related (
    log_key TEXT NOT NULL,
    related_id TEXT NOT NULL,
    PRIMARY KEY (log_key, related_id),
    FOREIGN KEY (log_key) REFERENCES logs(storage_key) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS log_attachments (
    log_key TEXT NOT NULL,
    url TEXT NOT NULL,
    name TEXT NOT NULL,
    mime_type TEXT NOT NULL DEFAULT '',
    size_bytes INTEGER NOT NULL DEFAULT 0,
    FOREIGN KEY (log_key) REFERENCES logs(storage_key) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_logs_trip_day ON logs(trip_id, day_key);
CREATE INDEX IF NOT EXISTS idx_logs_trip_category ON logs(trip_id, category);
CREATE INDEX IF NOT EXISTS idx_log_applied_to_log ON log_applied_to(log_key);
CREATE INDEX IF NOT EXISTS idx_log_related_log ON log_related(log_key);
CREATE INDEX IF NOT EXISTS idx_trip_members_trip ON trip_members(trip_id);
CREATE INDEX IF NOT EXISTS idx_trip_members_user ON trip_members(user_id);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
