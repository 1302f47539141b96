package history

import "time"

// Entry is one link found by a scan.
type Entry struct {
	ID         int64     `json:"id"`
	URL        string    `json:"url"`
	LogTime    time.Time `json:"logTime"`
	SourcePath string    `json:"sourcePath"`
	Expired    bool      `json:"expired"`
	ScannedAt  time.Time `json:"scannedAt"`
}

// Store defines the history operations the app needs, so callers depend on
// the interface rather than the SQLite type.
type Store interface {
	Record(e *Entry) error
	Recent(limit int) ([]Entry, error)
	Prune(keep int) (int64, error)

	Close() error
	Path() string
}
