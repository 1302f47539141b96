// Package config loads the optional YAML settings file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// EnvConfigPath names the environment variable that points at a config file.
const EnvConfigPath = "GACHALINK_CONFIG"

// AppDirName is the per-user folder holding config, logs and history.
const AppDirName = "gachalink"

// Config is the full settings tree. Every field has a usable default, so
// running without a file is the normal case.
type Config struct {
	Log     LogConfig     `yaml:"log"`
	Scan    ScanConfig    `yaml:"scan"`
	History HistoryConfig `yaml:"history"`
}

// LogConfig controls diagnostic logging (not the user-facing progress log).
type LogConfig struct {
	LogLevel      string `yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`
	LogFormat     string `yaml:"log_format" validate:"omitempty,oneof=console json"`
	LogFile       string `yaml:"log_file"`
	MaxLogSizeMB  int    `yaml:"max_log_size_mb" validate:"gte=1"`
	MaxLogBackups int    `yaml:"max_log_backups" validate:"gte=0"`
}

// ScanConfig extends the discovery heuristics.
type ScanConfig struct {
	// ExtraCommonPaths are drive-relative folders probed on every drive
	// after the built-in launcher layouts, e.g. "SteamLibrary/steamapps/common/Wuthering Waves".
	ExtraCommonPaths []string `yaml:"extra_common_paths" validate:"dive,required,relpath"`
}

// HistoryConfig controls the local record of found links.
type HistoryConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Path       string `yaml:"path"`
	MaxEntries int    `yaml:"max_entries" validate:"gte=1"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			LogLevel:      "info",
			LogFormat:     "console",
			MaxLogSizeMB:  10,
			MaxLogBackups: 3,
		},
		History: HistoryConfig{
			Enabled:    true,
			MaxEntries: 200,
		},
	}
}

// Dir returns the per-user application directory.
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locating user config dir: %w", err)
	}
	return filepath.Join(base, AppDirName), nil
}

// ResolvePath picks the config file to load.
// Priority: explicit path, GACHALINK_CONFIG, config.yaml in Dir().
// Returns "" when none exists.
func ResolvePath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if env := os.Getenv(EnvConfigPath); env != "" {
		return env
	}
	dir, err := Dir()
	if err != nil {
		return ""
	}
	path := filepath.Join(dir, "config.yaml")
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

// Load reads and validates the config file resolved from explicit. A missing
// default file yields Default(); a missing explicit or env-named file is an
// error.
func Load(explicit string) (*Config, error) {
	cfg := Default()

	path := ResolvePath(explicit)
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("config file does not exist: %s", path)
			}
			return nil, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	if err := cfg.fillPaths(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// fillPaths defaults the history database into the app directory.
func (c *Config) fillPaths() error {
	if !c.History.Enabled || c.History.Path != "" {
		return nil
	}
	dir, err := Dir()
	if err != nil {
		return err
	}
	c.History.Path = filepath.Join(dir, "history.db")
	return nil
}

// Validate checks field constraints.
func Validate(cfg *Config) error {
	validate := validator.New()

	_ = validate.RegisterValidation("relpath", func(fl validator.FieldLevel) bool {
		return isDriveRelative(fl.Field().String())
	})

	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed '%s'", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// isDriveRelative reports whether p stays below the drive root it is joined
// to. Both separators are accepted since templates may come from Windows users.
func isDriveRelative(p string) bool {
	if filepath.IsAbs(p) || filepath.VolumeName(p) != "" {
		return false
	}
	slashed := strings.ReplaceAll(p, `\`, "/")
	if strings.HasPrefix(slashed, "/") || len(slashed) >= 2 && slashed[1] == ':' {
		return false
	}
	clean := path.Clean(slashed)
	return clean != ".." && !strings.HasPrefix(clean, "../")
}
