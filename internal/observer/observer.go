// Package observer provides a small subscription list shared by the
// status, stats and activity log components.
package observer

import (
	"sync"
)

// Subscription is returned by Subscribe and cancels delivery when unsubscribed.
type Subscription interface {
	Unsubscribe()
}

// Set holds the callbacks subscribed to values of type T.
// The zero value is ready to use.
type Set[T any] struct {
	publishing sync.Mutex
	mu         sync.Mutex
	nextID     uint64
	callbacks  map[uint64]func(T)
	order      []uint64

	// OnPanic, if set, is called with the recovered value when a callback panics.
	OnPanic func(recovered any)
}

// Subscribe registers fn and returns a handle to remove it.
func (s *Set[T]) Subscribe(fn func(T)) Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.callbacks == nil {
		s.callbacks = make(map[uint64]func(T))
	}

	s.nextID++
	id := s.nextID
	s.callbacks[id] = fn
	s.order = append(s.order, id)

	return &subscription[T]{set: s, id: id}
}

// Len returns the number of active subscriptions.
func (s *Set[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.callbacks)
}

// Notify calls every subscribed callback with value in subscription order.
// Callbacks run on the calling goroutine without the lock held, so they may
// subscribe or unsubscribe. A panicking callback does not stop the others.
func (s *Set[T]) Notify(value T) {
	s.mu.Lock()
	snapshot := make([]func(T), 0, len(s.order))
	for _, id := range s.order {
		snapshot = append(snapshot, s.callbacks[id])
	}
	onPanic := s.OnPanic
	s.mu.Unlock()

	for _, fn := range snapshot {
		s.call(fn, value, onPanic)
	}
}

// Publish runs update and, when it reports a change, notifies subscribers
// with the value it returns. Publications are serialized, so subscribers see
// values in the order the updates were applied. Callbacks must not publish
// to the same set. It reports whether subscribers were notified.
func (s *Set[T]) Publish(update func() (T, bool)) bool {
	s.publishing.Lock()
	defer s.publishing.Unlock()

	value, changed := update()
	if changed {
		s.Notify(value)
	}

	return changed
}

func (s *Set[T]) call(fn func(T), value T, onPanic func(any)) {
	defer func() {
		if r := recover(); r != nil && onPanic != nil {
			onPanic(r)
		}
	}()

	fn(value)
}

func (s *Set[T]) remove(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.callbacks[id]; !ok {
		return
	}

	delete(s.callbacks, id)

	for i, candidate := range s.order {
		if candidate == id {
			s.order = append(s.order[:i:i], s.order[i+1:]...)
			break
		}
	}
}

type subscription[T any] struct {
	set  *Set[T]
	id   uint64
	once sync.Once
}

// Unsubscribe is idempotent.
func (sub *subscription[T]) Unsubscribe() {
	sub.once.Do(func() { sub.set.remove(sub.id) })
}
