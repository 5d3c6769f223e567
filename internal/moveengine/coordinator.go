// Package moveengine moves the contents of a source folder into a
// destination folder, once on demand or repeatedly on a timer.
//
// A Coordinator owns the change cache, the status machine, the stats of
// the latest run and the monitor. Runs never overlap: a run requested while
// another is active is dropped.
package moveengine

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/joe/move-files/internal/logging"
	"github.com/joe/move-files/pkg/fileops"
)

// Dependencies are the collaborators a Coordinator is built from.
// Only Settings and Resolver are required.
type Dependencies struct {
	Settings     SettingsProvider
	Resolver     FolderResolver
	Log          ActivityLog
	Logger       *zap.Logger
	Filter       FileFilter
	TimeProvider TimeProvider
}

// PendingSummary describes what is still waiting in the source folder.
type PendingSummary struct {
	Files int
	Bytes int64
}

// Coordinator is the entry point for running moves.
type Coordinator struct {
	settings SettingsProvider
	resolver FolderResolver
	log      ActivityLog
	logger   *zap.Logger
	filter   FileFilter
	clock    TimeProvider

	cache   *ChangeCache
	status  *StatusMachine
	stats   *StatsAccumulator
	monitor *Monitor

	mu          sync.Mutex
	source      *Location
	destination *Location

	// control orders run start and finish against monitor start, stop and
	// restart, so the monitoring flag, the timer and the rest state agree.
	control sync.Mutex
	// retired holds handles replaced while a run was using them. They are
	// closed when that run finishes.
	retired []*Location

	monitoring atomic.Bool
	running    atomic.Bool
	dropped    atomic.Int64
}

// NewCoordinator creates an idle coordinator with no folders selected.
func NewCoordinator(deps Dependencies) *Coordinator {
	logger := logging.OrNop(deps.Logger)

	coordinator := &Coordinator{
		settings: deps.Settings,
		resolver: deps.Resolver,
		log:      deps.Log,
		logger:   logger,
		filter:   deps.Filter,
		clock:    deps.TimeProvider,
		cache:    NewChangeCache(),
		status:   NewStatusMachine(logger),
		stats:    NewStatsAccumulator(),
	}

	if coordinator.log == nil {
		coordinator.log = discardLog{}
	}

	if coordinator.filter == nil {
		coordinator.filter = includeAll{}
	}

	if coordinator.clock == nil {
		coordinator.clock = &RealTimeProvider{}
	}

	coordinator.monitor = NewMonitor(coordinator.clock, logger)

	return coordinator
}

// Cache returns the change cache shared by all runs.
func (c *Coordinator) Cache() *ChangeCache { return c.cache }

// Stats returns the accumulator holding the latest run.
func (c *Coordinator) Stats() *StatsAccumulator { return c.stats }

// Status returns the status machine.
func (c *Coordinator) Status() *StatusMachine { return c.status }

// IsMonitoring reports whether monitoring is enabled.
func (c *Coordinator) IsMonitoring() bool { return c.monitoring.Load() }

// IsRunning reports whether a run is in progress.
func (c *Coordinator) IsRunning() bool { return c.running.Load() }

// DroppedRuns counts run requests refused because another run was active.
func (c *Coordinator) DroppedRuns() int64 { return c.dropped.Load() }

// Browse asks the resolver for the folder for role and keeps its handle,
// closing the handle it replaces. A cancelled selection returns
// ErrSelectionCancelled without logging anything.
func (c *Coordinator) Browse(role Role) (FolderPath, error) {
	folder, err := c.resolver.Resolve(role)
	if errors.Is(err, ErrSelectionCancelled) {
		c.logger.Debug("folder selection cancelled", zap.Stringer("role", role))
		return FolderPath{}, err
	}

	if err != nil {
		c.logger.Error("folder selection failed", zap.Stringer("role", role), zap.Error(err))
		c.log.Record(KindError, fmt.Sprintf("Could not open %s folder", role), WithError(err))

		return FolderPath{}, fmt.Errorf("failed to select %s folder: %w", role, err)
	}

	c.control.Lock()
	c.mu.Lock()
	var replaced *Location
	if role == RoleSource {
		replaced, c.source = c.source, folder.Handle
	} else {
		replaced, c.destination = c.destination, folder.Handle
	}
	c.mu.Unlock()

	if replaced == folder.Handle {
		replaced = nil
	}

	// an active run keeps walking the handle it started with
	if replaced != nil && c.running.Load() {
		c.retired = append(c.retired, replaced)
		replaced = nil
	}
	c.control.Unlock()

	replaced.Close()

	c.logger.Info("folder selected", zap.Stringer("role", role), zap.String("path", folder.DisplayPath))
	c.log.Record(KindInfo, fmt.Sprintf("Selected %s folder %s", role, folder.DisplayPath), WithPath(folder.DisplayPath))

	return FolderPath{DisplayPath: folder.DisplayPath, Name: folder.Name}, nil
}

// CanSync reports whether both folders have been selected.
func (c *Coordinator) CanSync() bool {
	source, destination := c.locations()
	return source != nil && destination != nil
}

// RunOnce performs one run and returns its stats. It returns nil without
// doing anything when another run is in progress, and nil after moving to
// StatusError when a folder is missing. Run failures are reported through
// the status, the returned stats and the activity log.
func (c *Coordinator) RunOnce() *SyncStats {
	if !c.running.CompareAndSwap(false, true) {
		c.dropped.Add(1)
		c.logger.Debug("run already in progress, request dropped")

		return nil
	}

	source, destination, monitoring, ok := c.begin()
	if !ok {
		return nil
	}

	stats := NewSyncStats(c.clock.Now())
	logger := logging.WithRun(c.logger, stats.RunID)
	logger.Info("run started", zap.Bool("monitoring", monitoring))

	mover := NewTreeMover(source.FS, destination.FS, MoverOptions{
		ForceRemove: c.settings.ForceRemove(),
		Filter:      c.filter,
		Log:         c.log,
		Logger:      logger,
	})

	err := mover.Sync(source.Root, destination.Root, c.cache, stats)
	stats.Finalize(c.clock.Now(), err)
	c.stats.Record(*stats)

	logger.Info("run finished",
		zap.Int("files", stats.FilesCopied),
		zap.Int64("bytes", stats.BytesCopied),
		zap.Int("skipped", stats.FilesSkipped),
		zap.Int("failures", len(stats.Failures)),
		zap.Duration("duration", stats.Duration),
		zap.Error(err))

	if err != nil {
		c.log.Record(KindError, FormatSummary(*stats), WithError(err), WithStats(*stats))
	} else {
		c.log.Record(KindInfo, FormatSummary(*stats), WithStats(*stats))
	}

	c.finish(err)

	return stats
}

// StartMonitor enables monitoring and runs immediately, then on every
// polling interval. It fails with ErrPrecondition when a folder is missing.
// Starting while already monitoring does nothing.
func (c *Coordinator) StartMonitor() error {
	c.control.Lock()
	defer c.control.Unlock()

	if !c.CanSync() {
		c.transition(StatusError)
		c.log.Record(KindError, "Select a source and a destination folder before monitoring",
			WithError(ErrPrecondition))

		return ErrPrecondition
	}

	if c.monitoring.Load() {
		return nil
	}

	c.monitoring.Store(true)
	c.saveMonitoring(true)

	// a run in progress settles into monitoring when it finishes
	if !c.running.Load() {
		c.transition(StatusMonitoring)
	}

	c.log.Record(KindMonitorStart, fmt.Sprintf("Monitoring started (every %s)", c.pollingInterval()))
	c.monitor.Start(c.tick, c.pollingInterval)

	return nil
}

// StopMonitor disables monitoring. A run already in progress finishes and
// then settles into StatusIdle.
func (c *Coordinator) StopMonitor() {
	c.control.Lock()
	defer c.control.Unlock()

	wasMonitoring := c.monitoring.Swap(false)
	c.monitor.Stop()

	if !wasMonitoring {
		return
	}

	c.saveMonitoring(false)

	if !c.running.Load() {
		c.transition(StatusIdle)
	}

	c.log.Record(KindMonitorStop, "Monitoring stopped")
}

// RestartMonitor applies a changed polling interval by stopping and
// restarting the timer. It does nothing when monitoring is off.
func (c *Coordinator) RestartMonitor() {
	c.control.Lock()
	defer c.control.Unlock()

	if !c.monitoring.Load() {
		return
	}

	c.monitor.Stop()
	c.log.Record(KindInfo, fmt.Sprintf("Polling interval changed to %s", c.pollingInterval()))
	c.monitor.Start(c.tick, c.pollingInterval)
}

// Pending reports the files still present in the source folder that are
// not excluded.
func (c *Coordinator) Pending() (PendingSummary, error) {
	source, _ := c.locations()
	if source == nil {
		return PendingSummary{}, ErrPrecondition
	}

	files, err := fileops.NewDualFileOps(source.FS, nil).ScanFiles(source.Root)
	if err != nil {
		return PendingSummary{}, fmt.Errorf("failed to scan source folder: %w", err)
	}

	var summary PendingSummary

	for _, file := range files {
		if !c.filter.ShouldInclude(file.RelativePath) {
			continue
		}

		summary.Files++
		summary.Bytes += file.Size
	}

	return summary, nil
}

// Close stops monitoring and releases both folder handles. Handles an
// active run still uses are closed when it finishes.
func (c *Coordinator) Close() {
	c.control.Lock()
	c.monitoring.Store(false)
	c.monitor.Stop()

	c.mu.Lock()
	source, destination := c.source, c.destination
	c.source, c.destination = nil, nil
	c.mu.Unlock()

	if destination == source {
		destination = nil
	}

	if c.running.Load() {
		c.retired = append(c.retired, source, destination)
		source, destination = nil, nil
	}
	c.control.Unlock()

	source.Close()
	destination.Close()
}

// tick runs from the monitor; RunOnce drops it while a run is active.
func (c *Coordinator) tick() {
	c.RunOnce()
}

func (c *Coordinator) locations() (*Location, *Location) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.source, c.destination
}

// begin claims the folders and enters StatusSyncing for a run that holds
// the running flag. It releases the flag when a folder is missing.
func (c *Coordinator) begin() (source, destination *Location, monitoring, ok bool) {
	c.control.Lock()
	defer c.control.Unlock()

	source, destination = c.locations()
	if source == nil || destination == nil {
		c.transition(StatusError)
		c.logger.Warn("run requested before both folders were selected")
		c.log.Record(KindError, "Select a source and a destination folder first", WithError(ErrPrecondition))
		c.running.Store(false)

		return nil, nil, false, false
	}

	monitoring = c.monitoring.Load()
	if !monitoring {
		c.cache.Clear()
	}

	c.transition(StatusSyncing)

	return source, destination, monitoring, true
}

// finish settles the status, releases the running flag and closes the
// handles replaced during the run.
func (c *Coordinator) finish(err error) {
	c.control.Lock()

	switch {
	case err != nil:
		c.transition(StatusError)
	case c.monitoring.Load():
		c.transition(StatusMonitoring)
	default:
		c.transition(StatusIdle)
	}

	c.running.Store(false)
	retired := c.retired
	c.retired = nil
	c.control.Unlock()

	for _, handle := range retired {
		handle.Close()
	}
}

func (c *Coordinator) transition(to SyncStatus) {
	err := c.status.Transition(to)
	if err != nil {
		c.logger.Warn("status transition refused", zap.Error(err))
	}
}

func (c *Coordinator) pollingInterval() time.Duration {
	return max(c.settings.PollingInterval(), MinPollingInterval)
}

func (c *Coordinator) saveMonitoring(enabled bool) {
	err := c.settings.SetMonitoring(enabled)
	if err != nil {
		c.logger.Warn("failed to save monitoring setting", zap.Bool("enabled", enabled), zap.Error(err))
	}
}
