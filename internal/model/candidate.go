package model

import "time"

// EpochSentinel is the timestamp given to a candidate whose log line carried
// no usable timestamp and whose file modification time could not be read.
// It sorts below any real timestamp and is always past the freshness window.
var EpochSentinel = time.Unix(0, 0)

// Candidate is one gacha record URL pulled out of a single log file.
type Candidate struct {
	URL        string    `json:"url"`
	Timestamp  time.Time `json:"timestamp"`
	SourcePath string    `json:"sourcePath"`
}

// Status is the outcome of ranking the candidates of one scan.
type Status int

const (
	StatusNotFound Status = iota
	StatusFresh
	StatusExpired
)

// String returns a human-readable status name.
func (s Status) String() string {
	switch s {
	case StatusNotFound:
		return "not found"
	case StatusFresh:
		return "fresh"
	case StatusExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// Verdict is the final result of a scan. URL, Timestamp and SourcePath are
// only set when Status is not StatusNotFound; an expired verdict still
// carries its URL.
type Verdict struct {
	Status     Status        `json:"status"`
	URL        string        `json:"url"`
	Timestamp  time.Time     `json:"timestamp"`
	SourcePath string        `json:"sourcePath"`
	Elapsed    time.Duration `json:"elapsed"`
}

// Found reports whether the verdict carries a URL.
func (v Verdict) Found() bool {
	return v.Status != StatusNotFound
}
