package shared_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	. "github.com/onsi/gomega" //nolint:revive // Dot import is idiomatic for Gomega matchers

	"github.com/joe/move-files/internal/activity"
	"github.com/joe/move-files/internal/moveengine"
	"github.com/joe/move-files/internal/tui/shared"
)

func TestEventBridge_ForwardsEngineEvents(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	status := moveengine.NewStatusMachine(nil)
	stats := moveengine.NewStatsAccumulator()
	log := activity.New()

	bridge := shared.NewEventBridge()
	bridge.Watch(status, stats, log)
	defer bridge.Close()

	g.Expect(status.Transition(moveengine.StatusSyncing)).To(Succeed())
	stats.Record(moveengine.SyncStats{RunID: "run-1", FilesCopied: 2})
	log.Record(moveengine.KindMove, "Moved a.txt")

	g.Expect(bridge.ListenCmd()()).To(Equal(shared.StatusChangedMsg{Status: moveengine.StatusSyncing}))

	recorded, ok := bridge.ListenCmd()().(shared.StatsRecordedMsg)
	g.Expect(ok).To(BeTrue())
	g.Expect(recorded.Stats.RunID).To(Equal("run-1"))

	activityMsg, ok := bridge.ListenCmd()().(shared.ActivityMsg)
	g.Expect(ok).To(BeTrue())
	g.Expect(activityMsg.Entries[0].Message).To(Equal("Moved a.txt"))
}

func TestEventBridge_DropsWhenFullAndStopsAfterClose(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	bridge := shared.NewEventBridge()

	for i := range 150 {
		bridge.Emit(fmt.Sprint(i))
	}

	g.Expect(bridge.Subscribe()).To(HaveLen(100))

	status := moveengine.NewStatusMachine(nil)
	bridge.Watch(status, nil, nil)
	bridge.Close()

	// closed bridges ignore emits and unsubscribed observers
	bridge.Emit("late")
	g.Expect(status.Transition(moveengine.StatusError)).To(Succeed())

	count := 0
	for range bridge.Subscribe() {
		count++
	}

	g.Expect(count).To(Equal(100))
	g.Expect(bridge.ListenCmd()()).To(BeNil())
}

func TestRenderActivityLog(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	at := time.Date(2024, 3, 1, 9, 30, 15, 0, time.UTC)
	entries := []activity.Entry{
		{Timestamp: at, Kind: moveengine.KindMove, Message: "Moved c.txt"},
		{Timestamp: at, Kind: moveengine.KindError, Message: "Failed to move b.txt", Error: "boom"},
		{Timestamp: at, Kind: moveengine.KindInfo, Message: "Activity log started"},
	}

	out := shared.RenderActivityLog("Activity", entries, 2)
	g.Expect(out).To(ContainSubstring("Activity"))
	g.Expect(out).To(ContainSubstring("09:30:15"))
	g.Expect(out).To(ContainSubstring("[MOVE] Moved c.txt"))
	g.Expect(out).To(ContainSubstring("Error: boom"))
	g.Expect(out).ToNot(ContainSubstring("Activity log started"))
	g.Expect(strings.Index(out, "c.txt")).To(BeNumerically("<", strings.Index(out, "b.txt")), "newest first")

	g.Expect(shared.RenderActivityLog("", nil, 0)).To(ContainSubstring("no activity"))
}

func TestRenderErrorList(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	g.Expect(shared.RenderErrorList(nil, shared.ErrorLimit, 80)).To(BeEmpty())

	failures := []moveengine.EntryFailure{
		{Path: "a.txt", Err: errors.New("open a.txt: permission denied")},
		{Path: "b.txt", Err: errors.New("write b.txt: no space left on device")},
		{Path: "c.txt", Err: errors.New("x")},
		{Path: "d.txt", Err: errors.New("y")},
	}

	out := shared.RenderErrorList(failures, 2, 80)
	g.Expect(out).To(ContainSubstring("a.txt"))
	g.Expect(out).To(ContainSubstring("permission denied"))
	g.Expect(out).To(ContainSubstring("•"))
	g.Expect(out).ToNot(ContainSubstring("c.txt"))
	g.Expect(out).To(ContainSubstring("and 2 more error(s)"))
}

func TestTruncateLeft(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	g.Expect(shared.TruncateLeft("short", 10)).To(Equal("short"))
	g.Expect(shared.TruncateLeft("very/long/path/file.txt", 10)).To(Equal("...ile.txt"))
	g.Expect([]rune(shared.TruncateLeft("very/long/path/file.txt", 10))).To(HaveLen(10))
}

func TestFormatters(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	g.Expect(shared.FormatBytes(1500)).To(Equal("1.5 kB"))
	g.Expect(shared.FormatBytes(-1)).To(Equal("0 B"))
	g.Expect(shared.FormatDuration(250 * time.Millisecond)).To(Equal("250ms"))
	g.Expect(shared.FormatDuration(90 * time.Second)).To(Equal("1m 30s"))
	g.Expect(shared.FormatDuration(2*time.Hour + 5*time.Second)).To(Equal("2h 0m 5s"))

	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	g.Expect(shared.FormatAgo(time.Time{}, now)).To(Equal("never"))
	g.Expect(shared.FormatAgo(now.Add(-3*time.Minute), now)).To(Equal("3 minutes ago"))
}

func TestRenderStatusBadge(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	for _, status := range []moveengine.SyncStatus{
		moveengine.StatusIdle, moveengine.StatusSyncing, moveengine.StatusMonitoring, moveengine.StatusError,
	} {
		g.Expect(shared.RenderStatusBadge(status)).To(ContainSubstring(status.String()))
	}
}
