package moveengine

import (
	"time"

	"github.com/joe/move-files/pkg/filesystem"
)

// Role identifies which side of a move a folder is for.
type Role int

// Roles.
const (
	RoleSource Role = iota
	RoleDestination
)

func (r Role) String() string {
	switch r {
	case RoleSource:
		return "source"
	case RoleDestination:
		return "destination"
	default:
		return "unknown"
	}
}

// Location is an opened folder: the filesystem it lives on and its root path there.
type Location struct {
	FS     filesystem.FileSystem
	Root   string
	closer func()
}

// NewLocation creates a Location. closer may be nil.
func NewLocation(fs filesystem.FileSystem, root string, closer func()) *Location {
	return &Location{FS: fs, Root: root, closer: closer}
}

// Close releases any connection held by the location.
func (l *Location) Close() {
	if l != nil && l.closer != nil {
		l.closer()
		l.closer = nil
	}
}

// Folder is what a FolderResolver hands back.
type Folder struct {
	DisplayPath string
	Name        string
	Handle      *Location
}

// FolderPath is the part of a Folder that is safe to show to presentation layers.
type FolderPath struct {
	DisplayPath string
	Name        string
}

// FolderResolver turns a role into an opened folder. It fails with
// ErrSelectionCancelled or ErrUnsupportedEnvironment.
type FolderResolver interface {
	Resolve(role Role) (Folder, error)
}

// SettingsProvider is the part of the persisted settings the engine uses.
type SettingsProvider interface {
	PollingInterval() time.Duration
	ForceRemove() bool
	SetMonitoring(enabled bool) error
}

// ActivityLog receives human-readable entries about what the engine did.
type ActivityLog interface {
	Record(kind EventKind, message string, opts ...LogOption)
}

// EventKind classifies an activity log entry.
type EventKind string

// Kinds of activity entries.
const (
	KindError        EventKind = "error"
	KindInfo         EventKind = "info"
	KindMonitorStart EventKind = "monitor_start"
	KindMonitorStop  EventKind = "monitor_stop"
	KindMove         EventKind = "move"
)

// LogDetails carries the optional parts of an activity entry.
type LogDetails struct {
	Path  string
	Err   error
	Stats *SyncStats
}

// LogOption sets an optional part of an activity entry.
type LogOption func(*LogDetails)

// WithError attaches the error that caused the entry.
func WithError(err error) LogOption {
	return func(d *LogDetails) { d.Err = err }
}

// WithPath attaches the relative path the entry is about.
func WithPath(path string) LogOption {
	return func(d *LogDetails) { d.Path = path }
}

// WithStats attaches a copy of a run's stats.
func WithStats(stats SyncStats) LogOption {
	return func(d *LogDetails) {
		snapshot := stats.Clone()
		d.Stats = &snapshot
	}
}

// ApplyLogOptions collects opts into a LogDetails.
func ApplyLogOptions(opts []LogOption) LogDetails {
	var details LogDetails
	for _, opt := range opts {
		opt(&details)
	}

	return details
}

type discardLog struct{}

func (discardLog) Record(EventKind, string, ...LogOption) {}
