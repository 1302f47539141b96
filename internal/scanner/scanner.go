// Package scanner runs the discovery, extraction and ranking pipeline that
// turns installation guesses into a single record URL verdict.
package scanner

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/cdtdelta/gachalink/internal/discovery"
	"github.com/cdtdelta/gachalink/internal/logscan"
	"github.com/cdtdelta/gachalink/internal/model"
	"github.com/rs/zerolog"
)

// cloudSyncMarker flags mirrored folders whose logs are stale copies.
const cloudSyncMarker = "onedrive"

// MsgNotFound is reported when no candidate was found anywhere.
const MsgNotFound = "No valid gacha link found. Please make sure that:\n" +
	"1. You have opened the Convene History in game\n" +
	"2. You paged through a few records so the link is written to the log"

// FoundDirMessage reports a directory that looks like a game installation.
func FoundDirMessage(dir string) string {
	return "Found potential game directory: " + dir
}

// ExpiredPrefix starts every ExpiredMessage.
const ExpiredPrefix = "Link expired"

// ExpiredMessage reports a link older than ExpiryWindow.
func ExpiredMessage(ts time.Time) string {
	return fmt.Sprintf(ExpiredPrefix+" (generated at %s, more than %d minutes ago)\n"+
		"Please reopen the Convene History in game",
		ts.Format("2006-01-02 15:04"), int(ExpiryWindow/time.Minute))
}

// Progress receives human-readable status lines in emission order.
type Progress func(msg string)

// Scanner holds the fixed configuration of the pipeline. Each Run starts
// from an empty visited set and candidate list, so a Scanner can be reused,
// but not by two goroutines at once.
type Scanner struct {
	sources []discovery.Source
	specs   []logscan.Spec
	now     func() time.Time
	log     zerolog.Logger
}

// Option customizes a Scanner.
type Option func(*Scanner)

// WithSpecs replaces the log files scanned under each root.
func WithSpecs(specs []logscan.Spec) Option {
	return func(s *Scanner) { s.specs = specs }
}

// WithClock replaces time.Now for freshness checks.
func WithClock(now func() time.Time) Option {
	return func(s *Scanner) { s.now = now }
}

// New creates a Scanner that consults sources in the given order.
func New(sources []discovery.Source, log zerolog.Logger, opts ...Option) *Scanner {
	s := &Scanner{
		sources: sources,
		specs:   logscan.DefaultSpecs,
		now:     time.Now,
		log:     log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// run is the mutable state of one Run.
type run struct {
	*Scanner
	progress   Progress
	visited    visitedSet
	candidates []model.Candidate
}

// Run consults every source, scans each admitted directory and ranks what
// was found. Per-source and per-file failures are logged and skipped; Run
// itself never fails.
func (s *Scanner) Run(progress Progress) model.Verdict {
	if progress == nil {
		progress = func(string) {}
	}
	r := &run{Scanner: s, progress: progress, visited: newVisitedSet()}

	for _, src := range s.sources {
		roots := src.Discover()
		s.log.Debug().Str("source", src.Name()).Int("roots", len(roots)).Msg("discovery finished")
		for _, raw := range roots {
			r.checkRoot(raw)
		}
	}

	verdict := Rank(r.candidates, s.now)

	switch verdict.Status {
	case model.StatusNotFound:
		progress(MsgNotFound)
	case model.StatusExpired:
		progress(ExpiredMessage(verdict.Timestamp))
	}

	s.log.Info().
		Stringer("status", verdict.Status).
		Int("directories", len(r.visited)).
		Int("candidates", len(r.candidates)).
		Str("source_path", verdict.SourcePath).
		Msg("scan finished")

	return verdict
}

// checkRoot admits a raw directory string and extracts candidates from it.
func (r *run) checkRoot(raw string) {
	path := canonicalize(raw)

	if strings.Contains(strings.ToLower(raw), cloudSyncMarker) {
		r.log.Debug().Str("path", raw).Msg("skipping cloud-synced directory")
		return
	}
	if !exists(path) {
		return
	}
	if !r.visited.add(path) {
		return
	}

	announced := false
	for _, spec := range r.specs {
		if !announced && exists(spec.Dir(path)) {
			r.progress(FoundDirMessage(raw))
			announced = true
		}

		c, err := logscan.Extract(path, spec)
		if err != nil {
			r.log.Debug().Err(err).Str("root", path).Str("log", spec.Name).Msg("log scan incomplete")
		}
		if c != nil {
			r.log.Debug().Str("file", c.SourcePath).Time("timestamp", c.Timestamp).Msg("candidate found")
			r.candidates = append(r.candidates, *c)
		}
	}
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
