package scanner

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/cdtdelta/gachalink/internal/discovery"
	"github.com/cdtdelta/gachalink/internal/logscan"
	"github.com/cdtdelta/gachalink/internal/model"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testURL1 = "https://aki-gm-resources-oversea.aki-game.net/aki/gacha/index.html#/record?svr_id=1&record_id=one"
	testURL2 = "https://aki-gm-resources.aki-game.com/aki/gacha/index.html#/record?svr_id=2&record_id=two"
)

type staticSource struct {
	name  string
	roots []string
}

func (s staticSource) Name() string       { return s.name }
func (s staticSource) Discover() []string { return s.roots }

// recorder collects progress messages.
type recorder struct{ msgs []string }

func (r *recorder) emit(msg string) { r.msgs = append(r.msgs, msg) }

func (r *recorder) count(prefix string) int {
	n := 0
	for _, m := range r.msgs {
		if strings.HasPrefix(m, prefix) {
			n++
		}
	}
	return n
}

// makeGameDir creates a fake install under parent with one URL line in the
// client log stamped at ts.
func makeGameDir(t *testing.T, parent, name, url string, ts time.Time) string {
	t.Helper()
	root := filepath.Join(parent, name)
	path := logscan.ClientLog.Path(root)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))

	content := ts.Format("[2006.01.02-15.04.05:000]") + "[  1]LogKuroWeb: open " + url + "\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return root
}

func newTestScanner(sources ...discovery.Source) *Scanner {
	return New(sources, zerolog.Nop(), WithClock(fixedClock(baseNow)))
}

func TestRun_NothingDiscovered(t *testing.T) {
	rec := &recorder{}
	s := newTestScanner(staticSource{name: "a"}, staticSource{name: "b"})

	v := s.Run(rec.emit)

	assert.Equal(t, model.StatusNotFound, v.Status)
	assert.Equal(t, []string{MsgNotFound}, rec.msgs)
}

func TestRun_FreshLink(t *testing.T) {
	dir := makeGameDir(t, t.TempDir(), "Wuthering Waves Game", testURL1, baseNow.Add(-5*time.Minute))
	rec := &recorder{}

	v := newTestScanner(staticSource{name: "a", roots: []string{dir}}).Run(rec.emit)

	assert.Equal(t, model.StatusFresh, v.Status)
	assert.Equal(t, testURL1, v.URL)
	assert.Equal(t, 1, rec.count("Found potential game directory"))
	assert.Zero(t, rec.count("Link expired"))
	assert.NotContains(t, rec.msgs, MsgNotFound)
}

func TestRun_ExpiredLink(t *testing.T) {
	ts := baseNow.Add(-45 * time.Minute)
	dir := makeGameDir(t, t.TempDir(), "Wuthering Waves Game", testURL1, ts)
	rec := &recorder{}

	v := newTestScanner(staticSource{name: "a", roots: []string{dir}}).Run(rec.emit)

	assert.Equal(t, model.StatusExpired, v.Status)
	assert.Equal(t, testURL1, v.URL)
	require.Equal(t, 1, rec.count("Link expired"))
	assert.Contains(t, rec.msgs[len(rec.msgs)-1], ts.Format("2006-01-02 15:04"))
}

func TestRun_NewestAcrossDirectories(t *testing.T) {
	parent := t.TempDir()
	older := makeGameDir(t, parent, "old", testURL2, baseNow.Add(-40*time.Minute))
	newer := makeGameDir(t, parent, "new", testURL1, baseNow.Add(-10*time.Minute))
	rec := &recorder{}

	v := newTestScanner(
		staticSource{name: "a", roots: []string{older}},
		staticSource{name: "b", roots: []string{newer}},
	).Run(rec.emit)

	assert.Equal(t, model.StatusFresh, v.Status)
	assert.Equal(t, testURL1, v.URL)
	assert.Zero(t, rec.count("Link expired"))
	for _, m := range rec.msgs {
		assert.NotContains(t, m, testURL2)
	}
}

func TestRun_DirectoryVisitedOnce(t *testing.T) {
	dir := makeGameDir(t, t.TempDir(), "game", testURL1, baseNow.Add(-time.Minute))
	alias := filepath.Join(dir, "Client", "..")
	rec := &recorder{}

	v := newTestScanner(
		staticSource{name: "a", roots: []string{dir}},
		staticSource{name: "b", roots: []string{alias, dir}},
	).Run(rec.emit)

	assert.Equal(t, model.StatusFresh, v.Status)
	assert.Equal(t, 1, rec.count("Found potential game directory"))
}

func TestRun_SymlinkVisitedOnce(t *testing.T) {
	parent := t.TempDir()
	dir := makeGameDir(t, parent, "game", testURL1, baseNow.Add(-time.Minute))
	link := filepath.Join(parent, "link")
	if err := os.Symlink(dir, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	rec := &recorder{}

	newTestScanner(staticSource{name: "a", roots: []string{link, dir}}).Run(rec.emit)

	assert.Equal(t, 1, rec.count("Found potential game directory"))
}

func TestRun_SkipsCloudSyncedDirectories(t *testing.T) {
	synced := filepath.Join(t.TempDir(), "OneDrive - Personal")
	dir := makeGameDir(t, synced, "Wuthering Waves Game", testURL1, baseNow.Add(-time.Minute))
	rec := &recorder{}

	v := newTestScanner(staticSource{name: "a", roots: []string{dir}}).Run(rec.emit)

	assert.Equal(t, model.StatusNotFound, v.Status)
	assert.Zero(t, rec.count("Found potential game directory"))
}

func TestRun_SkipsMissingDirectories(t *testing.T) {
	rec := &recorder{}
	missing := filepath.Join(t.TempDir(), "does-not-exist")

	v := newTestScanner(staticSource{name: "a", roots: []string{missing, ""}}).Run(rec.emit)

	assert.Equal(t, model.StatusNotFound, v.Status)
	assert.Equal(t, []string{MsgNotFound}, rec.msgs)
}

func TestRun_AnnouncesDirectoryWithoutLogs(t *testing.T) {
	root := filepath.Join(t.TempDir(), "game")
	require.NoError(t, os.MkdirAll(logscan.WebViewLog.Dir(root), 0o755))
	rec := &recorder{}

	v := newTestScanner(staticSource{name: "a", roots: []string{root}}).Run(rec.emit)

	assert.Equal(t, model.StatusNotFound, v.Status)
	assert.Equal(t, []string{FoundDirMessage(root), MsgNotFound}, rec.msgs)
}

func TestRun_BothLogFilesCompete(t *testing.T) {
	root := makeGameDir(t, t.TempDir(), "game", testURL2, baseNow.Add(-20*time.Minute))
	webview := logscan.WebViewLog.Path(root)
	require.NoError(t, os.MkdirAll(filepath.Dir(webview), 0o755))
	line := baseNow.Add(-3*time.Minute).Format("[2006.01.02-15.04.05:000]") + " " + testURL1 + "\n"
	require.NoError(t, os.WriteFile(webview, []byte(line), 0o644))

	v := newTestScanner(staticSource{name: "a", roots: []string{root}}).Run(nil)

	assert.Equal(t, testURL1, v.URL)
	assert.Equal(t, "debug.log", filepath.Base(v.SourcePath))
}

func TestVisitedSet(t *testing.T) {
	v := newVisitedSet()
	assert.True(t, v.add("/a"))
	assert.False(t, v.add("/a"))
	assert.True(t, v.add("/b"))
}

func TestCanonicalizeFallsBackToRaw(t *testing.T) {
	raw := filepath.Join(t.TempDir(), "missing", "dir")
	assert.Equal(t, raw, canonicalize(raw))
}
