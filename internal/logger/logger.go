// Package logger builds the zerolog diagnostic logger from config.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cdtdelta/gachalink/internal/config"
	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New creates a logger writing to stderr and, if configured, to a rotated
// log file. The returned closer flushes and closes the file writer.
func New(cfg config.LogConfig) (zerolog.Logger, io.Closer, error) {
	level, err := parseLevel(cfg.LogLevel)
	if err != nil {
		return zerolog.Nop(), nopCloser{}, err
	}

	writers := []io.Writer{consoleWriter(os.Stderr, cfg.LogFormat, false)}
	var closer io.Closer = nopCloser{}

	if cfg.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.LogFile), 0o755); err != nil {
			return zerolog.Nop(), nopCloser{}, fmt.Errorf("creating log directory: %w", err)
		}
		rotator := &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    cfg.MaxLogSizeMB,
			MaxBackups: cfg.MaxLogBackups,
			LocalTime:  true,
		}
		writers = append(writers, consoleWriter(rotator, cfg.LogFormat, true))
		closer = rotator
	}

	log := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		With().
		Timestamp().
		Logger()

	return log, closer, nil
}

func consoleWriter(out io.Writer, format string, noColor bool) io.Writer {
	if strings.EqualFold(format, "json") {
		return out
	}
	return zerolog.ConsoleWriter{Out: out, NoColor: noColor, TimeFormat: "15:04:05"}
}

func parseLevel(s string) (zerolog.Level, error) {
	if s == "" {
		return zerolog.InfoLevel, nil
	}
	level, err := zerolog.ParseLevel(strings.ToLower(s))
	if err != nil {
		return zerolog.InfoLevel, fmt.Errorf("parsing log level %q: %w", s, err)
	}
	return level, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
