package moveengine_test

import (
	"sync/atomic"
	"testing"
	"time"

	. "github.com/onsi/gomega" //nolint:revive // Dot import is idiomatic for Gomega matchers
	"go.uber.org/zap/zaptest"

	"github.com/joe/move-files/internal/moveengine"
)

func fixedInterval(d time.Duration) func() time.Duration {
	return func() time.Duration { return d }
}

func TestMonitor_FiresImmediatelyThenOnEveryTick(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	ticker := moveengine.NewMockTicker()
	clock := moveengine.NewMockTimeProvider(ticker, baseTime)
	monitor := moveengine.NewMonitor(clock, zaptest.NewLogger(t))

	var ticks atomic.Int32
	monitor.Start(func() { ticks.Add(1) }, fixedInterval(5*time.Second))
	defer monitor.Stop()

	g.Expect(monitor.IsRunning()).To(BeTrue())
	g.Eventually(ticks.Load).Should(Equal(int32(1)))
	g.Expect(<-clock.Intervals).To(Equal(5 * time.Second))

	ticker.TickChan <- baseTime
	ticker.TickChan <- baseTime
	g.Eventually(ticks.Load).Should(Equal(int32(3)))
}

func TestMonitor_ClampsShortIntervals(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	clock := moveengine.NewMockTimeProvider(moveengine.NewMockTicker(), baseTime)
	monitor := moveengine.NewMonitor(clock, nil)

	monitor.Start(func() {}, fixedInterval(10*time.Millisecond))
	defer monitor.Stop()

	g.Expect(<-clock.Intervals).To(Equal(moveengine.MinPollingInterval))
}

func TestMonitor_StopIsIdempotent(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	ticker := moveengine.NewMockTicker()
	monitor := moveengine.NewMonitor(moveengine.NewMockTimeProvider(ticker, baseTime), nil)

	monitor.Stop()

	var ticks atomic.Int32
	monitor.Start(func() { ticks.Add(1) }, fixedInterval(time.Second))
	g.Eventually(ticks.Load).Should(Equal(int32(1)))

	monitor.Stop()
	monitor.Stop()
	g.Expect(monitor.IsRunning()).To(BeFalse())

	// nothing reads the channel once the loop has exited
	select {
	case ticker.TickChan <- baseTime:
		t.Fatal("tick delivered after Stop")
	case <-time.After(50 * time.Millisecond):
	}

	g.Consistently(ticks.Load, 50*time.Millisecond).Should(Equal(int32(1)))
}

func TestMonitor_RestartReplacesTimer(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	clock := moveengine.NewMockTimeProvider(moveengine.NewMockTicker(), baseTime)
	monitor := moveengine.NewMonitor(clock, nil)

	var ticks atomic.Int32
	monitor.Start(func() { ticks.Add(1) }, fixedInterval(2*time.Second))
	monitor.Start(func() { ticks.Add(1) }, fixedInterval(7*time.Second))
	defer monitor.Stop()

	g.Expect(<-clock.Intervals).To(Equal(2 * time.Second))
	g.Expect(<-clock.Intervals).To(Equal(7 * time.Second))
	g.Eventually(ticks.Load).Should(Equal(int32(2)))
	g.Expect(monitor.IsRunning()).To(BeTrue())
}
