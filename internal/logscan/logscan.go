package logscan

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"github.com/cdtdelta/gachalink/internal/model"
)

// urlPattern matches the Convene History record URL written by the game
// client and its embedded SDK web view, up to the next whitespace.
var urlPattern = regexp.MustCompile(
	`(https://aki-gm-resources(?:-oversea)?\.aki-game\.(?:net|com)/aki/gacha/index\.html#/record[^\s]*)`)

// timePattern matches the Unreal-style prefix "[2024.05.23-10.15.42:123]".
var timePattern = regexp.MustCompile(
	`^\[(\d{4})\.(\d{2})\.(\d{2})-(\d{2})\.(\d{2})\.(\d{2}):(\d{3})\]`)

// Spec names one log file relative to a game installation root.
type Spec struct {
	Name    string
	RelPath string
}

// Path returns the absolute log file path under root.
func (s Spec) Path(root string) string {
	return filepath.Join(root, s.RelPath)
}

// Dir returns the directory that holds the log file under root.
func (s Spec) Dir(root string) string {
	return filepath.Dir(s.Path(root))
}

// The two log files known to carry the record URL. Both are checked for
// every candidate root.
var (
	ClientLog = Spec{
		Name:    "client",
		RelPath: filepath.Join("Client", "Saved", "Logs", "Client.log"),
	}
	WebViewLog = Spec{
		Name: "webview",
		RelPath: filepath.Join("Client", "Binaries", "Win64", "ThirdParty",
			"KrPcSdk_Global", "KRSDKRes", "KRSDKWebView", "debug.log"),
	}
)

// DefaultSpecs is the ordered list of log files scanned per root.
var DefaultSpecs = []Spec{ClientLog, WebViewLog}

// FileResult is the outcome of scanning one log file.
type FileResult struct {
	// URL is the last record URL in the file, empty if none matched.
	URL string
	// Timestamp is the last valid bracketed timestamp seen on a URL line.
	// Zero when no URL line carried one.
	Timestamp time.Time
	// Lines counts the lines read.
	Lines int
	// Matches counts the URL lines seen.
	Matches int
	// Skipped counts lines dropped for exceeding the line size limit.
	Skipped int
}

// maxLineSize caps a single line. Web view debug lines embed whole request
// payloads; longer lines are dropped and the scan goes on.
const maxLineSize = 1024 * 1024

// ScanFile streams a log file top to bottom and keeps the last URL match.
// Log files are append-only, so the last match is the newest one; each match
// overwrites the previous instead of buffering them all.
//
// A read error part-way through returns the partial result together with
// the error.
func ScanFile(path string) (*FileResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	reader := bufio.NewReaderSize(f, 64*1024)
	result := &FileResult{}

	for {
		line, tooLong, err := readLine(reader, maxLineSize)
		if err != nil && err != io.EOF {
			return result, fmt.Errorf("reading file: %w", err)
		}
		if err == io.EOF && len(line) == 0 && !tooLong {
			break
		}

		result.Lines++
		if tooLong {
			result.Skipped++
		} else {
			result.scanLine(string(line))
		}

		if err == io.EOF {
			break
		}
	}

	return result, nil
}

func (r *FileResult) scanLine(line string) {
	m := urlPattern.FindStringSubmatch(line)
	if m == nil {
		return
	}
	r.URL = m[1]
	r.Matches++

	// A URL line without a timestamp keeps the previous timestamp
	if ts, ok := parseLineTime(line); ok {
		r.Timestamp = ts
	}
}

// readLine returns the next line without its terminator. A line longer than
// limit is consumed to its end and reported as tooLong with no content.
// io.EOF comes back together with a final unterminated line.
func readLine(r *bufio.Reader, limit int) ([]byte, bool, error) {
	var line []byte
	tooLong := false
	for {
		frag, err := r.ReadSlice('\n')
		if !tooLong {
			if len(line)+len(frag) > limit+len("\r\n") {
				tooLong = true
				line = nil
			} else {
				line = append(line, frag...)
			}
		}
		if err == bufio.ErrBufferFull {
			continue
		}

		line = bytes.TrimSuffix(line, []byte("\n"))
		line = bytes.TrimSuffix(line, []byte("\r"))
		return line, tooLong, err
	}
}

// Extract scans the log file named by spec under root and turns its last
// match into a candidate. It returns nil, nil when the file does not exist
// or holds no URL.
func Extract(root string, spec Spec) (*model.Candidate, error) {
	path := spec.Path(root)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("checking %s: %w", spec.Name, err)
	}

	result, err := ScanFile(path)
	if result == nil || result.URL == "" {
		return nil, err
	}

	return &model.Candidate{
		URL:        result.URL,
		Timestamp:  resolveTimestamp(result, path),
		SourcePath: path,
	}, err
}

// resolveTimestamp picks the line timestamp, then the file modification
// time, then the epoch sentinel.
func resolveTimestamp(result *FileResult, path string) time.Time {
	if !result.Timestamp.IsZero() {
		return result.Timestamp
	}
	info, err := os.Stat(path)
	if err != nil {
		return model.EpochSentinel
	}
	mod := info.ModTime()
	if mod.IsZero() {
		return model.EpochSentinel
	}
	return mod.Local()
}

// parseLineTime reads the bracketed timestamp at the start of a line as
// local wall-clock time. Milliseconds are dropped. Unparseable fields fall
// back to 2024-01-01 00:00:00 piecewise; a date or clock that does not exist
// (Feb 30, 25:00) is rejected.
func parseLineTime(line string) (time.Time, bool) {
	m := timePattern.FindStringSubmatch(line)
	if m == nil {
		return time.Time{}, false
	}

	year := atoiOr(m[1], 2024)
	month := atoiOr(m[2], 1)
	day := atoiOr(m[3], 1)
	hour := atoiOr(m[4], 0)
	minute := atoiOr(m[5], 0)
	second := atoiOr(m[6], 0)

	// time.Date normalizes out-of-range fields, so compare them back.
	// Checked in UTC so a local DST gap does not reject a real log line.
	u := time.Date(year, time.Month(month), day, hour, minute, second, 0, time.UTC)
	if u.Year() != year || int(u.Month()) != month || u.Day() != day ||
		u.Hour() != hour || u.Minute() != minute || u.Second() != second {
		return time.Time{}, false
	}

	return time.Date(year, time.Month(month), day, hour, minute, second, 0, time.Local), true
}

func atoiOr(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
