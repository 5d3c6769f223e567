package moveengine

import (
	"fmt"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/joe/move-files/internal/observer"
)

// EntryFailure is one file or folder that could not be processed.
type EntryFailure struct {
	Path string
	Err  error
}

// SyncStats describes one run. Counters only grow while the run is active;
// EndTime, Duration and Err are set when it finishes.
type SyncStats struct {
	RunID         string
	FilesCopied   int
	BytesCopied   int64
	FilesSkipped  int
	FilesExcluded int
	DirsRemoved   int
	Failures      []EntryFailure
	StartTime     time.Time
	EndTime       time.Time
	Duration      time.Duration

	// Err is set when the run was aborted.
	Err error
}

// NewSyncStats starts the stats for a run beginning at start.
func NewSyncStats(start time.Time) *SyncStats {
	return &SyncStats{
		RunID:     uuid.NewString(),
		StartTime: start,
	}
}

// Clone returns a copy that shares nothing mutable with s.
func (s SyncStats) Clone() SyncStats {
	s.Failures = append([]EntryFailure(nil), s.Failures...)
	return s
}

// Finalize stamps the end of the run.
func (s *SyncStats) Finalize(end time.Time, err error) {
	s.EndTime = end
	s.Duration = end.Sub(s.StartTime)
	s.Err = err
}

func (s *SyncStats) addFailure(path string, err error) {
	s.Failures = append(s.Failures, EntryFailure{Path: path, Err: err})
}

// FormatSummary renders a one-line description of a finished run.
func FormatSummary(stats SyncStats) string {
	if stats.Err != nil {
		return fmt.Sprintf("Sync failed after moving %s: %v", pluralFiles(stats.FilesCopied), stats.Err)
	}

	var summary string
	if stats.FilesCopied == 0 {
		summary = "No files needed to be moved"
	} else {
		summary = fmt.Sprintf("Moved %s (%s) in %.1fs",
			pluralFiles(stats.FilesCopied),
			humanize.Bytes(uint64(max(stats.BytesCopied, 0))),
			stats.Duration.Seconds())
	}

	if n := len(stats.Failures); n > 0 {
		summary += fmt.Sprintf(", %d failed", n)
	}

	return summary
}

func pluralFiles(n int) string {
	if n == 1 {
		return "1 file"
	}

	return fmt.Sprintf("%d files", n)
}

// StatsAccumulator keeps the stats of the most recent finished run.
type StatsAccumulator struct {
	mu        sync.RWMutex
	latest    *SyncStats
	observers observer.Set[SyncStats]
}

// NewStatsAccumulator creates an empty accumulator.
func NewStatsAccumulator() *StatsAccumulator {
	return &StatsAccumulator{}
}

// Latest returns the last recorded run, if any.
func (a *StatsAccumulator) Latest() (SyncStats, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.latest == nil {
		return SyncStats{}, false
	}

	return a.latest.Clone(), true
}

// Record replaces the latest snapshot with a copy of stats and notifies subscribers.
func (a *StatsAccumulator) Record(stats SyncStats) {
	a.observers.Publish(func() (SyncStats, bool) {
		snapshot := stats.Clone()

		a.mu.Lock()
		a.latest = &snapshot
		a.mu.Unlock()

		return snapshot.Clone(), true
	})
}

// Subscribe calls fn with every recorded run.
func (a *StatsAccumulator) Subscribe(fn func(SyncStats)) observer.Subscription {
	return a.observers.Subscribe(fn)
}
