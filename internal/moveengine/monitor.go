package moveengine

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/joe/move-files/internal/logging"
)

// Exported constants.
const (
	// MinPollingInterval is the shortest interval the monitor will tick at
	MinPollingInterval = time.Second
)

// Monitor fires a tick function once immediately and then on a fixed
// interval until stopped. Each tick runs on its own goroutine, so the tick
// function decides what to do when the previous one is still running.
type Monitor struct {
	lifecycle    sync.Mutex // serializes Start and Stop
	mu           sync.Mutex
	timeProvider TimeProvider
	logger       *zap.Logger
	stop         chan struct{}
	done         chan struct{}
}

// NewMonitor creates a stopped monitor.
func NewMonitor(timeProvider TimeProvider, logger *zap.Logger) *Monitor {
	if timeProvider == nil {
		timeProvider = &RealTimeProvider{}
	}

	return &Monitor{timeProvider: timeProvider, logger: logging.OrNop(logger)}
}

// IsRunning reports whether a timer is active.
func (m *Monitor) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.stop != nil
}

// Start stops any previous timer, fires tick once, then fires it every
// interval(). The interval is read once; call Start again to change it.
func (m *Monitor) Start(tick func(), interval func() time.Duration) {
	m.lifecycle.Lock()
	defer m.lifecycle.Unlock()

	m.stopTimer()

	every := max(interval(), MinPollingInterval)

	m.mu.Lock()
	defer m.mu.Unlock()

	ticker := m.timeProvider.NewTicker(every)
	stop := make(chan struct{})
	done := make(chan struct{})
	m.stop = stop
	m.done = done

	m.logger.Info("monitor started", zap.Duration("interval", every))

	go tick()
	go m.loop(ticker, tick, stop, done)
}

// Stop cancels the timer. Ticks already dispatched are not interrupted.
// Stopping a stopped monitor does nothing.
func (m *Monitor) Stop() {
	m.lifecycle.Lock()
	defer m.lifecycle.Unlock()

	m.stopTimer()
}

func (m *Monitor) stopTimer() {
	m.mu.Lock()
	stop, done := m.stop, m.done
	m.stop, m.done = nil, nil
	m.mu.Unlock()

	if stop == nil {
		return
	}

	close(stop)
	<-done

	m.logger.Info("monitor stopped")
}

func (m *Monitor) loop(ticker Ticker, tick func(), stop, done chan struct{}) {
	defer close(done)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case _, ok := <-ticker.C():
			if !ok {
				return
			}

			go tick()
		}
	}
}
