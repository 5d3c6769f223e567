// Package activity keeps the human-readable log of what the mover did.
//
// The log is a bounded ring ordered newest first. Errors recorded with
// moveengine.WithError are enriched with a category and suggestions before
// they are stored, so presentation layers can show actionable text.
package activity

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/joe/move-files/internal/moveengine"
	"github.com/joe/move-files/internal/observer"
	moveerrors "github.com/joe/move-files/pkg/errors"
)

// Exported constants.
const (
	DefaultCapacity = 100
)

// Entry is one line of the activity log.
type Entry struct {
	Seq         uint64
	Timestamp   time.Time
	Kind        moveengine.EventKind
	Message     string
	Path        string
	Error       string
	Category    moveerrors.ErrorCategory
	Suggestions []string
	Stats       *moveengine.SyncStats
}

// Option configures a Log.
type Option func(*Log)

// WithCapacity sets how many entries are kept. Values below 1 are ignored.
func WithCapacity(capacity int) Option {
	return func(l *Log) {
		if capacity > 0 {
			l.capacity = capacity
		}
	}
}

// WithClock replaces time.Now for entry timestamps.
func WithClock(now func() time.Time) Option {
	return func(l *Log) { l.now = now }
}

// Log stores entries and notifies subscribers with a snapshot after every change.
type Log struct {
	mu        sync.Mutex
	entries   []Entry // newest first
	capacity  int
	seq       uint64
	now       func() time.Time
	enricher  moveerrors.Enricher
	suggester moveerrors.SuggestionGenerator
	observers observer.Set[[]Entry]
}

// New creates a log holding a single "Activity log started" entry.
func New(opts ...Option) *Log {
	log := &Log{
		capacity:  DefaultCapacity,
		now:       time.Now,
		enricher:  moveerrors.NewEnricher(),
		suggester: moveerrors.NewSuggestionGenerator(),
	}

	for _, opt := range opts {
		opt(log)
	}

	log.Record(moveengine.KindInfo, "Activity log started")

	return log
}

// Record adds an entry. It implements moveengine.ActivityLog.
func (l *Log) Record(kind moveengine.EventKind, message string, opts ...moveengine.LogOption) {
	details := moveengine.ApplyLogOptions(opts)

	entry := Entry{
		Kind:    kind,
		Message: message,
		Path:    details.Path,
		Stats:   details.Stats,
	}

	if details.Err != nil {
		l.describeError(&entry, details.Err)
	}

	l.observers.Publish(func() ([]Entry, bool) {
		l.mu.Lock()
		defer l.mu.Unlock()

		l.appendLocked(entry)

		return l.snapshotLocked(), true
	})
}

// Entries returns a copy of the log, newest first.
func (l *Log) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.snapshotLocked()
}

// Clear empties the log and records that it was cleared.
func (l *Log) Clear() {
	l.observers.Publish(func() ([]Entry, bool) {
		l.mu.Lock()
		defer l.mu.Unlock()

		l.entries = nil
		l.appendLocked(Entry{Kind: moveengine.KindInfo, Message: "Logs cleared"})

		return l.snapshotLocked(), true
	})
}

// Subscribe calls fn with a snapshot of the entries after every change.
// Snapshots arrive in the order the changes were made. fn must not record.
func (l *Log) Subscribe(fn func([]Entry)) observer.Subscription {
	return l.observers.Subscribe(fn)
}

func (l *Log) appendLocked(entry Entry) {
	l.seq++
	entry.Seq = l.seq
	entry.Timestamp = l.now()

	l.entries = append([]Entry{entry}, l.entries...)
	if len(l.entries) > l.capacity {
		l.entries = l.entries[:l.capacity]
	}
}

func (l *Log) snapshotLocked() []Entry {
	return append([]Entry(nil), l.entries...)
}

func (l *Log) describeError(entry *Entry, err error) {
	enriched := l.enricher.Enrich(err, entry.Path)

	entry.Error = err.Error()
	entry.Category = moveerrors.CategoryOf(enriched)

	var actionable moveerrors.ActionableError
	if errors.As(enriched, &actionable) {
		entry.Suggestions = actionable.Suggestions()
	}

	// engine sentinels say more than the message text when nothing else matched
	if entry.Category == moveerrors.CategoryUnknown {
		switch {
		case errors.Is(err, moveengine.ErrDeleteAfterCopy):
			entry.Category = moveerrors.CategoryDelete
		case errors.Is(err, moveengine.ErrEnumeration):
			entry.Category = moveerrors.CategoryEnumeration
		default:
			return
		}

		entry.Suggestions = l.suggester.Generate(entry.Category, entry.Path)
	}
}

// Format renders an entry as "[KIND] message - path - Error: detail",
// leaving out the parts that are empty.
func Format(entry Entry) string {
	var b strings.Builder

	b.WriteString("[")
	b.WriteString(strings.ToUpper(string(entry.Kind)))
	b.WriteString("] ")
	b.WriteString(entry.Message)

	if entry.Path != "" {
		b.WriteString(" - ")
		b.WriteString(entry.Path)
	}

	if entry.Error != "" {
		b.WriteString(" - Error: ")
		b.WriteString(entry.Error)
	}

	return b.String()
}
