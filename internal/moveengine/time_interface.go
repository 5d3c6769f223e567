package moveengine

import "time"

// MockTicker is a manually driven Ticker for tests.
type MockTicker struct {
	TickChan chan time.Time
}

// NewMockTicker creates a MockTicker with an unbuffered channel.
func NewMockTicker() *MockTicker {
	return &MockTicker{TickChan: make(chan time.Time)}
}

// C returns the ticker's channel.
func (m *MockTicker) C() <-chan time.Time {
	return m.TickChan
}

// Stop does nothing; the test owns the channel.
func (m *MockTicker) Stop() {}

// MockTimeProvider hands out a fixed ticker and a settable clock.
type MockTimeProvider struct {
	Ticker    Ticker
	Intervals chan time.Duration
	now       time.Time
}

// NewMockTimeProvider creates a provider whose NewTicker returns ticker.
// Every requested interval is sent to Intervals when it has room.
func NewMockTimeProvider(ticker Ticker, now time.Time) *MockTimeProvider {
	return &MockTimeProvider{Ticker: ticker, Intervals: make(chan time.Duration, 16), now: now}
}

// NewTicker returns the configured ticker.
func (m *MockTimeProvider) NewTicker(d time.Duration) Ticker {
	select {
	case m.Intervals <- d:
	default:
	}

	return m.Ticker
}

// Now returns the configured time.
func (m *MockTimeProvider) Now() time.Time {
	return m.now
}

// RealTicker wraps time.Ticker to implement the Ticker interface.
type RealTicker struct {
	ticker *time.Ticker
}

// C returns the ticker's channel.
func (r *RealTicker) C() <-chan time.Time {
	return r.ticker.C
}

// Stop stops the ticker.
func (r *RealTicker) Stop() {
	r.ticker.Stop()
}

// RealTimeProvider implements TimeProvider using real time functions.
type RealTimeProvider struct{}

// NewTicker creates a new ticker.
func (r *RealTimeProvider) NewTicker(d time.Duration) Ticker {
	return &RealTicker{ticker: time.NewTicker(d)}
}

// Now returns the current time.
func (r *RealTimeProvider) Now() time.Time {
	return time.Now()
}

// Ticker is an interface for time.Ticker to allow mocking.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TimeProvider provides time-related functionality for dependency injection.
type TimeProvider interface {
	Now() time.Time
	NewTicker(d time.Duration) Ticker
}
