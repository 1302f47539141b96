package scanner

import (
	"sort"
	"time"

	"github.com/cdtdelta/gachalink/internal/model"
)

// ExpiryWindow is how long a record URL stays usable after the game wrote it.
const ExpiryWindow = 30 * time.Minute

// Rank picks the newest candidate and judges its freshness against now.
// Ties keep insertion order. An empty slice yields StatusNotFound without
// consulting the clock. The input slice is not modified.
func Rank(candidates []model.Candidate, now func() time.Time) model.Verdict {
	if len(candidates) == 0 {
		return model.Verdict{Status: model.StatusNotFound}
	}

	sorted := make([]model.Candidate, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.After(sorted[j].Timestamp)
	})

	best := sorted[0]
	elapsed := now().Sub(best.Timestamp)

	status := model.StatusFresh
	if elapsed > ExpiryWindow {
		status = model.StatusExpired
	}

	return model.Verdict{
		Status:     status,
		URL:        best.URL,
		Timestamp:  best.Timestamp,
		SourcePath: best.SourcePath,
		Elapsed:    elapsed,
	}
}
