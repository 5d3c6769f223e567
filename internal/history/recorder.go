package history

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/joe/move-files/internal/logging"
	"github.com/joe/move-files/internal/moveengine"
)

// QueueSize is how many finished runs may wait for the database.
const QueueSize = 64

// Saver persists one finished run.
type Saver interface {
	Save(stats moveengine.SyncStats) error
}

// Recorder saves finished runs on its own goroutine so stats subscribers
// never wait on the database. Runs are saved in the order they were queued.
type Recorder struct {
	saver   Saver
	logger  *zap.Logger
	mu      sync.RWMutex
	closed  bool
	queue   chan moveengine.SyncStats
	done    chan struct{}
	dropped atomic.Int64
}

// NewRecorder starts a recorder writing to saver.
func NewRecorder(saver Saver, logger *zap.Logger) *Recorder {
	r := &Recorder{
		saver:  saver,
		logger: logging.OrNop(logger),
		queue:  make(chan moveengine.SyncStats, QueueSize),
		done:   make(chan struct{}),
	}

	go r.loop()

	return r
}

// Save queues stats without blocking. A full queue or a closed recorder
// drops the run and logs it.
func (r *Recorder) Save(stats moveengine.SyncStats) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		r.dropped.Add(1)
		r.logger.Warn("run history closed, run not saved", zap.String("run_id", stats.RunID))

		return
	}

	select {
	case r.queue <- stats:
	default:
		r.dropped.Add(1)
		r.logger.Warn("run history queue full, run not saved", zap.String("run_id", stats.RunID))
	}
}

// Dropped returns how many runs were never handed to the saver.
func (r *Recorder) Dropped() int64 { return r.dropped.Load() }

// Close saves everything already queued and stops the recorder.
// Calling it again does nothing.
func (r *Recorder) Close() {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.queue)
	}
	r.mu.Unlock()

	<-r.done
}

func (r *Recorder) loop() {
	defer close(r.done)

	for stats := range r.queue {
		err := r.saver.Save(stats)
		if err != nil {
			r.logger.Warn("failed to save run history", zap.String("run_id", stats.RunID), zap.Error(err))
		}
	}
}
