// Package bootstrap wires config, logging, history and the scanner for both
// the desktop app and the CLI.
package bootstrap

import (
	"errors"
	"io"

	"github.com/cdtdelta/gachalink/internal/config"
	"github.com/cdtdelta/gachalink/internal/discovery"
	"github.com/cdtdelta/gachalink/internal/history"
	"github.com/cdtdelta/gachalink/internal/logger"
	"github.com/cdtdelta/gachalink/internal/model"
	"github.com/cdtdelta/gachalink/internal/scanner"
	"github.com/rs/zerolog"
)

// Env is everything a front end needs to run scans.
type Env struct {
	Config  *config.Config
	Log     zerolog.Logger
	Scanner *scanner.Scanner
	// History is nil when disabled or when the database could not be opened.
	History history.Store

	logCloser io.Closer
}

// Options tweak how the environment is assembled.
type Options struct {
	ConfigPath string
	// Registry overrides the platform registry, mainly for tests.
	Registry discovery.Registry
	// ScannerOptions are passed through to scanner.New.
	ScannerOptions []scanner.Option
}

// Build loads config and assembles the environment. Only config and logger
// errors are fatal; a broken history database is logged and skipped.
func Build(opts Options) (*Env, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	log, closer, err := logger.New(cfg.Log)
	if err != nil {
		return nil, err
	}

	env := &Env{Config: cfg, Log: log, logCloser: closer}

	if cfg.History.Enabled {
		store, err := history.OpenSQLite(cfg.History.Path)
		if err != nil {
			log.Warn().Err(err).Str("path", cfg.History.Path).Msg("scan history disabled")
		} else {
			env.History = store
		}
	}

	reg := opts.Registry
	if reg == nil {
		reg = discovery.NewRegistry()
	}
	sources := discovery.Default(reg, cfg.Scan.ExtraCommonPaths, log)
	env.Scanner = scanner.New(sources, log, opts.ScannerOptions...)

	return env, nil
}

// Record stores a verdict in the history, logging rather than returning
// failures.
func (e *Env) Record(v model.Verdict) {
	if e.History == nil {
		return
	}
	if err := history.RecordVerdict(e.History, v, e.Config.History.MaxEntries); err != nil {
		e.Log.Warn().Err(err).Msg("recording scan history")
	}
}

// Close releases the history database and log file.
func (e *Env) Close() error {
	var errs []error
	if e.History != nil {
		errs = append(errs, e.History.Close())
	}
	if e.logCloser != nil {
		errs = append(errs, e.logCloser.Close())
	}
	return errors.Join(errs...)
}
