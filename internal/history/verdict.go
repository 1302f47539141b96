package history

import (
	"fmt"

	"github.com/cdtdelta/gachalink/internal/model"
)

// RecordVerdict stores a found link and trims the history to keep entries.
// Verdicts without a URL are ignored.
func RecordVerdict(store Store, v model.Verdict, keep int) error {
	if store == nil || !v.Found() {
		return nil
	}

	e := &Entry{
		URL:        v.URL,
		LogTime:    v.Timestamp,
		SourcePath: v.SourcePath,
		Expired:    v.Status == model.StatusExpired,
	}
	if err := store.Record(e); err != nil {
		return err
	}

	if keep > 0 {
		if _, err := store.Prune(keep); err != nil {
			return fmt.Errorf("trimming history to %d entries: %w", keep, err)
		}
	}
	return nil
}
