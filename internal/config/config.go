// Package config handles application configuration and command-line argument parsing.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alexflint/go-arg"
	"github.com/bmatcuk/doublestar/v4"

	"github.com/joe/move-files/internal/history"
	"github.com/joe/move-files/internal/logging"
	"github.com/joe/move-files/internal/settings"
	"github.com/joe/move-files/pkg/filesystem"
)

// Mode is what the program does after parsing flags.
type Mode int

const (
	// ModeOnce runs a single move and exits
	ModeOnce Mode = iota
	// ModeMonitor moves on every polling interval until interrupted
	ModeMonitor
	// ModeInteractive shows the dashboard
	ModeInteractive
	// ModeHistory prints recent runs and exits
	ModeHistory
)

// String returns the string representation of Mode
func (m Mode) String() string {
	switch m {
	case ModeOnce:
		return "once"
	case ModeMonitor:
		return "monitor"
	case ModeInteractive:
		return "interactive"
	case ModeHistory:
		return "history"
	default:
		return "unknown"
	}
}

// Exported variables.
var (
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Config holds the application configuration
type Config struct {
	SourcePath      string   `arg:"-s,--source" help:"Source folder (local path or sftp://user@host/path)"`
	DestPath        string   `arg:"-d,--dest" help:"Destination folder (local path or sftp://user@host/path)"`
	Monitor         bool     `arg:"-m,--monitor" help:"Keep moving on every polling interval until interrupted"`
	IntervalSeconds int      `arg:"-n,--interval" help:"Polling interval in seconds, 1-60 (default: saved setting)"`
	ForceRemove     bool     `arg:"--force-remove" help:"Delete source folders left non-empty only by files already moved"`
	Exclude         []string `arg:"-x,--exclude,separate" help:"Glob of source entries to leave in place (repeatable)"`
	InteractiveMode bool     `arg:"-i,--interactive" help:"Run the interactive dashboard"`
	SettingsPath    string   `arg:"--settings" help:"Settings file (default: ~/.config/move-files/settings.yaml)"`
	HistoryDB       string   `arg:"--history-db" help:"Run history database (default: ~/.config/move-files/history.db)"`
	ShowHistory     bool     `arg:"--history" help:"Print recent runs and exit"`
	HistoryLimit    int      `arg:"--history-limit" default:"20" help:"Number of runs printed by --history"`
	LogLevel        string   `arg:"--log-level" default:"info" help:"Log level: debug|info|warn|error"`
	LogFormat       string   `arg:"--log-format" default:"console" help:"Log format: console|json"`
	LogFile         string   `arg:"--log-file" help:"Write logs to this file instead of stderr"`
}

// Description returns the program description for go-arg
func (Config) Description() string {
	return "Moves everything from a source folder into a destination folder, once or on a timer"
}

// Version returns the version string for go-arg
func (Config) Version() string {
	return "move-files 1.0.0"
}

// ParseFlags parses command-line flags and returns configuration
func ParseFlags() (*Config, error) {
	cfg := &Config{
		HistoryLimit: 20,
		LogLevel:     "info",
		LogFormat:    logging.FormatConsole,
	}

	arg.MustParse(cfg)

	return PostProcessConfig(cfg)
}

// PostProcessConfig validates a parsed config and fills in default file locations
func PostProcessConfig(cfg *Config) (*Config, error) {
	if cfg.IntervalSeconds != 0 &&
		(cfg.IntervalSeconds < settings.MinIntervalSeconds || cfg.IntervalSeconds > settings.MaxIntervalSeconds) {
		return nil, fmt.Errorf("%w: interval must be between %d and %d seconds, got %d",
			ErrInvalidConfig, settings.MinIntervalSeconds, settings.MaxIntervalSeconds, cfg.IntervalSeconds)
	}

	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	if cfg.LogFormat != logging.FormatConsole && cfg.LogFormat != logging.FormatJSON {
		return nil, fmt.Errorf("%w: log format must be console or json, got %q", ErrInvalidConfig, cfg.LogFormat)
	}

	if cfg.HistoryLimit < 1 {
		return nil, fmt.Errorf("%w: history limit must be at least 1", ErrInvalidConfig)
	}

	for _, pattern := range cfg.Exclude {
		if !doublestar.ValidatePattern(strings.ToLower(pattern)) {
			return nil, fmt.Errorf("%w: invalid exclude pattern %q", ErrInvalidConfig, pattern)
		}
	}

	err := cfg.ValidatePaths()
	if err != nil {
		return nil, err
	}

	err = cfg.applyDefaultLocations()
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// Mode picks what to do. Without a source, a destination or --monitor the
// dashboard is shown.
func (cfg *Config) Mode() Mode {
	switch {
	case cfg.ShowHistory:
		return ModeHistory
	case cfg.InteractiveMode:
		return ModeInteractive
	case cfg.Monitor:
		return ModeMonitor
	case cfg.SourcePath == "" && cfg.DestPath == "":
		return ModeInteractive
	default:
		return ModeOnce
	}
}

// ValidatePaths checks that any location given is a local path or a well-formed sftp:// URL.
// Existence is checked when the folder is opened.
func (cfg *Config) ValidatePaths() error {
	for _, location := range []struct{ name, value string }{
		{"source", cfg.SourcePath},
		{"destination", cfg.DestPath},
	} {
		if location.value == "" {
			continue
		}

		_, err := filesystem.ParsePath(location.value)
		if err != nil {
			return fmt.Errorf("%w: %s path: %w", ErrInvalidConfig, location.name, err)
		}
	}

	return nil
}

func (cfg *Config) applyDefaultLocations() error {
	if cfg.SettingsPath == "" {
		path, err := settings.DefaultPath()
		if err != nil {
			return err //nolint:wrapcheck // Already describes the failure
		}

		cfg.SettingsPath = path
	}

	if cfg.HistoryDB == "" {
		path, err := history.DefaultPath()
		if err != nil {
			return err //nolint:wrapcheck // Already describes the failure
		}

		cfg.HistoryDB = path
	}

	return nil
}
