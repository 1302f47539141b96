package logger

import (
	"github.com/rs/zerolog"
	wailslogger "github.com/wailsapp/wails/v2/pkg/logger"
)

// WailsAdapter routes the Wails runtime's own log output into zerolog.
type WailsAdapter struct {
	log zerolog.Logger
}

var _ wailslogger.Logger = (*WailsAdapter)(nil)

// NewWailsAdapter wraps log, tagging every entry with component=wails.
func NewWailsAdapter(log zerolog.Logger) *WailsAdapter {
	return &WailsAdapter{log: log.With().Str("component", "wails").Logger()}
}

// WailsLevel maps a zerolog level to the closest Wails log level.
func WailsLevel(level zerolog.Level) wailslogger.LogLevel {
	switch {
	case level <= zerolog.TraceLevel:
		return wailslogger.TRACE
	case level == zerolog.DebugLevel:
		return wailslogger.DEBUG
	case level == zerolog.InfoLevel:
		return wailslogger.INFO
	case level == zerolog.WarnLevel:
		return wailslogger.WARNING
	default:
		return wailslogger.ERROR
	}
}

func (w *WailsAdapter) Print(message string)   { w.log.Log().Msg(message) }
func (w *WailsAdapter) Trace(message string)   { w.log.Trace().Msg(message) }
func (w *WailsAdapter) Debug(message string)   { w.log.Debug().Msg(message) }
func (w *WailsAdapter) Info(message string)    { w.log.Info().Msg(message) }
func (w *WailsAdapter) Warning(message string) { w.log.Warn().Msg(message) }
func (w *WailsAdapter) Error(message string)   { w.log.Error().Msg(message) }

// Fatal logs at error level; Wails itself decides whether to exit.
func (w *WailsAdapter) Fatal(message string) { w.log.Error().Str("severity", "fatal").Msg(message) }
