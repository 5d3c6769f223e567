// Package settings persists the user's folder choices and run preferences
// to a YAML file.
package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/viper"
)

// Exported constants.
const (
	DefaultIntervalSeconds = 5
	MaxIntervalSeconds     = 60
	MinIntervalSeconds     = 1
)

// Exported variables.
var (
	ErrIntervalOutOfRange = errors.New("polling interval must be between 1 and 60 seconds")
)

const (
	keyDestinationPath = "destination_path"
	keyForceRemove     = "force_remove"
	keyIsMonitoring    = "is_monitoring"
	keyPollingInterval = "polling_interval_seconds"
	keySourcePath      = "source_path"
)

// Settings is the persisted state.
type Settings struct {
	SourcePath             string `mapstructure:"source_path"`
	DestinationPath        string `mapstructure:"destination_path"`
	PollingIntervalSeconds int    `mapstructure:"polling_interval_seconds"`
	IsMonitoring           bool   `mapstructure:"is_monitoring"`
	ForceRemove            bool   `mapstructure:"force_remove"`
}

// Store reads and writes Settings. Every setter saves the file before returning.
type Store struct {
	mu    sync.Mutex
	path  string
	v     *viper.Viper
	state Settings
}

// DefaultPath returns ~/.config/move-files/settings.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home dir: %w", err)
	}

	return filepath.Join(home, ".config", "move-files", "settings.yaml"), nil
}

// Open loads the settings file at path. A missing file yields defaults and
// is not created until something is saved.
func Open(path string) (*Store, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetDefault(keySourcePath, "")
	v.SetDefault(keyDestinationPath, "")
	v.SetDefault(keyPollingInterval, DefaultIntervalSeconds)
	v.SetDefault(keyIsMonitoring, false)
	v.SetDefault(keyForceRemove, false)

	err := v.ReadInConfig()
	if err != nil && !isNotFound(err) {
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	var state Settings

	err = v.Unmarshal(&state)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal settings: %w", err)
	}

	state.PollingIntervalSeconds = min(max(state.PollingIntervalSeconds, MinIntervalSeconds), MaxIntervalSeconds)
	v.Set(keyPollingInterval, state.PollingIntervalSeconds)

	return &Store{path: path, v: v, state: state}, nil
}

// Path returns the settings file location.
func (s *Store) Path() string { return s.path }

// Settings returns the current values.
func (s *Store) Settings() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state
}

// PollingInterval returns the interval between monitored runs.
func (s *Store) PollingInterval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	return time.Duration(s.state.PollingIntervalSeconds) * time.Second
}

// ForceRemove reports whether non-empty source folders may be deleted.
func (s *Store) ForceRemove() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state.ForceRemove
}

// SetSourcePath saves the source folder.
func (s *Store) SetSourcePath(path string) error {
	return s.update(keySourcePath, path, func(st *Settings) { st.SourcePath = path })
}

// SetDestinationPath saves the destination folder.
func (s *Store) SetDestinationPath(path string) error {
	return s.update(keyDestinationPath, path, func(st *Settings) { st.DestinationPath = path })
}

// SetPollingInterval saves the interval in whole seconds.
func (s *Store) SetPollingInterval(seconds int) error {
	if seconds < MinIntervalSeconds || seconds > MaxIntervalSeconds {
		return fmt.Errorf("%w: got %d", ErrIntervalOutOfRange, seconds)
	}

	return s.update(keyPollingInterval, seconds, func(st *Settings) { st.PollingIntervalSeconds = seconds })
}

// SetMonitoring saves whether monitoring was left on.
func (s *Store) SetMonitoring(enabled bool) error {
	return s.update(keyIsMonitoring, enabled, func(st *Settings) { st.IsMonitoring = enabled })
}

// SetForceRemove saves the force-remove preference.
func (s *Store) SetForceRemove(enabled bool) error {
	return s.update(keyForceRemove, enabled, func(st *Settings) { st.ForceRemove = enabled })
}

func (s *Store) update(key string, value any, apply func(*Settings)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	apply(&s.state)
	s.v.Set(key, value)

	return s.saveLocked()
}

func (s *Store) saveLocked() error {
	err := os.MkdirAll(filepath.Dir(s.path), 0o750)
	if err != nil {
		return fmt.Errorf("failed to create settings dir: %w", err)
	}

	err = s.v.WriteConfigAs(s.path)
	if err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}

	return nil
}

func isNotFound(err error) bool {
	var notFound viper.ConfigFileNotFoundError

	return errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist)
}
