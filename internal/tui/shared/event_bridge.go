package shared

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/joe/move-files/internal/activity"
	"github.com/joe/move-files/internal/moveengine"
	"github.com/joe/move-files/internal/observer"
)

// EventBridge adapts engine observer callbacks to bubble tea messages.
// Callbacks never block the engine: when the buffer is full the message is
// dropped. Every message carries complete state, so a later one replaces
// anything lost.
type EventBridge struct {
	mu            sync.Mutex
	eventChan     chan tea.Msg
	closed        bool
	subscriptions []observer.Subscription
}

// NewEventBridge creates a new event bridge.
func NewEventBridge() *EventBridge {
	return &EventBridge{
		eventChan: make(chan tea.Msg, 100), //nolint:mnd // Buffer to prevent blocking engine
	}
}

// Watch subscribes to the status machine, the stats accumulator and the
// activity log. Any of them may be nil.
func (b *EventBridge) Watch(
	status *moveengine.StatusMachine,
	stats *moveengine.StatsAccumulator,
	log *activity.Log,
) {
	var subs []observer.Subscription

	if status != nil {
		subs = append(subs, status.Subscribe(func(s moveengine.SyncStatus) {
			b.Emit(StatusChangedMsg{Status: s})
		}))
	}

	if stats != nil {
		subs = append(subs, stats.Subscribe(func(s moveengine.SyncStats) {
			b.Emit(StatsRecordedMsg{Stats: s})
		}))
	}

	if log != nil {
		subs = append(subs, log.Subscribe(func(entries []activity.Entry) {
			b.Emit(ActivityMsg{Entries: entries})
		}))
	}

	b.mu.Lock()
	b.subscriptions = append(b.subscriptions, subs...)
	b.mu.Unlock()
}

// Emit queues msg for the TUI without blocking.
func (b *EventBridge) Emit(msg tea.Msg) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}

	select {
	case b.eventChan <- msg:
	default:
		// Channel full, message dropped
	}
}

// Subscribe returns the event channel for receiving messages.
func (b *EventBridge) Subscribe() <-chan tea.Msg {
	return b.eventChan
}

// ListenCmd returns a tea.Cmd that blocks until a message is received.
// Use this in Init() or after processing a message to continue listening.
func (b *EventBridge) ListenCmd() tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-b.eventChan
		if !ok {
			return nil // Channel closed
		}

		return msg
	}
}

// Close unsubscribes from the engine and closes the event channel.
func (b *EventBridge) Close() {
	b.mu.Lock()
	subs := b.subscriptions
	b.subscriptions = nil

	if !b.closed {
		b.closed = true
		close(b.eventChan)
	}
	b.mu.Unlock()

	for _, sub := range subs {
		sub.Unsubscribe()
	}
}
