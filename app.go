package main

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/cdtdelta/gachalink/internal/history"
	"github.com/cdtdelta/gachalink/internal/model"
	"github.com/cdtdelta/gachalink/internal/scanner"
	"github.com/rs/zerolog"
	"github.com/wailsapp/wails/v2/pkg/runtime"
)

// LogEvent is the frontend event carrying one progress line.
const LogEvent = "log-message"

// Messages shown after a successful scan.
const (
	MsgCopied     = "Gacha link found and copied to the clipboard"
	msgCopyFailed = "Copy failed: %v"
)

// ErrClipboardUnavailable is returned when the clipboard cannot be reached
// before a scan starts. It is the only error ScanGachaURL returns.
var ErrClipboardUnavailable = errors.New("clipboard unavailable")

// Clipboard receives the found link.
type Clipboard interface {
	SetText(text string) error
}

// App is the main application struct that Wails binds to the frontend.
// All exported methods become callable from JavaScript.
type App struct {
	ctx        context.Context
	scanner    *scanner.Scanner
	history    history.Store
	maxHistory int
	log        zerolog.Logger

	// scanMu keeps two frontend clicks from running overlapping scans.
	scanMu sync.Mutex

	emit          func(msg string)
	openClipboard func() (Clipboard, error)
}

// NewApp creates a new App instance. store may be nil.
func NewApp(sc *scanner.Scanner, store history.Store, maxHistory int, log zerolog.Logger) *App {
	a := &App{
		scanner:    sc,
		history:    store,
		maxHistory: maxHistory,
		log:        log,
	}
	a.emit = a.emitEvent
	a.openClipboard = a.wailsClipboard
	return a
}

// startup is called when the app starts. The context is saved
// so we can call runtime methods (events, clipboard, etc.)
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx
}

// -- Scan --

// ScanGachaURL looks for the newest record link, copies it to the clipboard
// and returns it. A nil result with a nil error means nothing was found.
// Expired links are still returned; the progress log carries the warning.
func (a *App) ScanGachaURL() (*string, error) {
	a.scanMu.Lock()
	defer a.scanMu.Unlock()

	clip, err := a.openClipboard()
	if err != nil {
		return nil, err
	}

	verdict := a.scanner.Run(a.emit)
	if !verdict.Found() {
		return nil, nil
	}

	if verdict.Status == model.StatusFresh {
		a.emit(MsgCopied)
	}
	if err := clip.SetText(verdict.URL); err != nil {
		a.log.Warn().Err(err).Msg("clipboard write failed")
		a.emit(fmt.Sprintf(msgCopyFailed, err))
	}

	if err := history.RecordVerdict(a.history, verdict, a.maxHistory); err != nil {
		a.log.Warn().Err(err).Msg("recording scan history")
	}

	url := verdict.URL
	return &url, nil
}

// -- History --

// GetHistory returns up to limit previously found links, newest first.
func (a *App) GetHistory(limit int) ([]history.Entry, error) {
	if a.history == nil {
		return []history.Entry{}, nil
	}
	return a.history.Recent(limit)
}

// GetVersion returns the application version string.
func (a *App) GetVersion() string {
	return Version
}

// -- Internal Helpers --

func (a *App) emitEvent(msg string) {
	if a.ctx == nil {
		return
	}
	runtime.EventsEmit(a.ctx, LogEvent, msg)
}

type runtimeClipboard struct {
	ctx context.Context
}

func (c runtimeClipboard) SetText(text string) error {
	return runtime.ClipboardSetText(c.ctx, text)
}

func (a *App) wailsClipboard() (Clipboard, error) {
	if a.ctx == nil {
		return nil, fmt.Errorf("%w: application runtime not started", ErrClipboardUnavailable)
	}
	return runtimeClipboard{ctx: a.ctx}, nil
}
