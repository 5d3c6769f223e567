package moveengine

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/joe/move-files/internal/logging"
	"github.com/joe/move-files/internal/observer"
)

// SyncStatus is the mode the engine is in.
type SyncStatus int

// Statuses.
const (
	StatusIdle SyncStatus = iota
	StatusSyncing
	StatusMonitoring
	StatusError
)

func (s SyncStatus) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusSyncing:
		return "syncing"
	case StatusMonitoring:
		return "monitoring"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Besides the run edges, idle and error enter monitoring on StartMonitor,
// error leaves to idle on StopMonitor, and error -> error repeats a refused run.
//
//nolint:gochecknoglobals // Fixed transition table
var allowedTransitions = map[SyncStatus][]SyncStatus{
	StatusIdle:       {StatusSyncing, StatusMonitoring, StatusError},
	StatusSyncing:    {StatusIdle, StatusMonitoring, StatusError},
	StatusMonitoring: {StatusSyncing, StatusIdle},
	StatusError:      {StatusError, StatusSyncing, StatusIdle, StatusMonitoring},
}

// CanTransition reports whether from -> to is allowed.
func CanTransition(from, to SyncStatus) bool {
	for _, allowed := range allowedTransitions[from] {
		if allowed == to {
			return true
		}
	}

	return false
}

// StatusMachine holds the current SyncStatus and notifies subscribers on
// every transition it allows.
type StatusMachine struct {
	mu        sync.Mutex
	current   SyncStatus
	observers observer.Set[SyncStatus]
	logger    *zap.Logger
}

// NewStatusMachine starts in StatusIdle.
func NewStatusMachine(logger *zap.Logger) *StatusMachine {
	machine := &StatusMachine{logger: logging.OrNop(logger)}
	machine.observers.OnPanic = func(recovered any) {
		machine.logger.Error("status observer panicked", zap.Any("panic", recovered))
	}

	return machine
}

// Current returns the current status.
func (m *StatusMachine) Current() SyncStatus {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.current
}

// Subscribe calls fn with the new status after every transition.
func (m *StatusMachine) Subscribe(fn func(SyncStatus)) observer.Subscription {
	return m.observers.Subscribe(fn)
}

// Transition moves to status to. Observers are called synchronously after
// the state has changed and the lock is released. Transitions are delivered
// in the order they were applied; observers must not transition the machine.
func (m *StatusMachine) Transition(to SyncStatus) error {
	var from SyncStatus

	changed := m.observers.Publish(func() (SyncStatus, bool) {
		m.mu.Lock()
		defer m.mu.Unlock()

		from = m.current
		if !CanTransition(from, to) {
			return from, false
		}

		m.current = to

		return to, true
	})

	if !changed {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}

	m.logger.Debug("status changed", zap.Stringer("from", from), zap.Stringer("to", to))

	return nil
}
