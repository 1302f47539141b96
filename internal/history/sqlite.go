// Package history keeps a local SQLite log of the links found by scans.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// timeLayout is how timestamps are stored; it sorts lexically.
const timeLayout = "2006-01-02 15:04:05.000"

const createTableSQL = `CREATE TABLE IF NOT EXISTS scan_history (
	url TEXT NOT NULL,
	log_time TEXT NOT NULL,
	source_path TEXT,
	expired INT DEFAULT 0,
	scanned_at TEXT NOT NULL
)`

const createIndexSQL = "CREATE INDEX IF NOT EXISTS scanned_at_idx ON scan_history (scanned_at)"

// SQLiteStore implements Store on a single SQLite file.
type SQLiteStore struct {
	path string
	conn *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// OpenSQLite opens the history database at path, creating the file, its
// directory and the schema if needed.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Verify the connection works
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	db := &SQLiteStore{path: path, conn: conn}

	if err := db.createSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return db, nil
}

func (db *SQLiteStore) createSchema() error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(createTableSQL); err != nil {
		return fmt.Errorf("creating scan_history table: %w", err)
	}
	if _, err := tx.Exec(createIndexSQL); err != nil {
		return fmt.Errorf("creating index on scanned_at: %w", err)
	}

	return tx.Commit()
}

// Close closes the database connection.
func (db *SQLiteStore) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}

// Path returns the file path of the database.
func (db *SQLiteStore) Path() string {
	return db.path
}

// Record inserts e and sets its ID. A zero ScannedAt is stamped with now.
func (db *SQLiteStore) Record(e *Entry) error {
	if e.ScannedAt.IsZero() {
		e.ScannedAt = time.Now()
	}

	expired := 0
	if e.Expired {
		expired = 1
	}

	res, err := db.conn.Exec(
		"INSERT INTO scan_history (url, log_time, source_path, expired, scanned_at) VALUES (?, ?, ?, ?, ?)",
		e.URL, e.LogTime.Local().Format(timeLayout), e.SourcePath, expired,
		e.ScannedAt.Local().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("recording history entry: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = id
	return nil
}

// Recent returns up to limit entries, newest scan first.
func (db *SQLiteStore) Recent(limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := db.conn.Query(
		"SELECT rowid, url, log_time, source_path, expired, scanned_at FROM scan_history ORDER BY scanned_at DESC, rowid DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var (
			e                  Entry
			logTime, scannedAt string
			expired            int
			sourcePath         sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.URL, &logTime, &sourcePath, &expired, &scannedAt); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		e.SourcePath = sourcePath.String
		e.Expired = expired == 1
		e.LogTime = parseStoredTime(logTime)
		e.ScannedAt = parseStoredTime(scannedAt)
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// Prune deletes all but the keep most recent entries and returns how many
// rows were removed.
func (db *SQLiteStore) Prune(keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}

	res, err := db.conn.Exec(
		`DELETE FROM scan_history WHERE rowid NOT IN (
			SELECT rowid FROM scan_history ORDER BY scanned_at DESC, rowid DESC LIMIT ?
		)`,
		keep,
	)
	if err != nil {
		return 0, fmt.Errorf("pruning history: %w", err)
	}
	return res.RowsAffected()
}

// parseStoredTime reads a stored timestamp as local time. Rows written by
// hand may lack milliseconds; anything unreadable becomes the zero time.
func parseStoredTime(s string) time.Time {
	for _, layout := range []string{timeLayout, "2006-01-02 15:04:05", time.RFC3339Nano} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t
		}
	}
	return time.Time{}
}
