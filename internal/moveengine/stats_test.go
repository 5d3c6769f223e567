package moveengine_test

import (
	"errors"
	"testing"
	"time"

	. "github.com/onsi/gomega" //nolint:revive // Dot import is idiomatic for Gomega matchers

	"github.com/joe/move-files/internal/moveengine"
)

func TestNewSyncStats_AssignsRunID(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	first := moveengine.NewSyncStats(baseTime)
	second := moveengine.NewSyncStats(baseTime)

	g.Expect(first.RunID).ToNot(BeEmpty())
	g.Expect(first.RunID).ToNot(Equal(second.RunID))
	g.Expect(first.StartTime).To(Equal(baseTime))
}

func TestSyncStats_Finalize(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	stats := moveengine.NewSyncStats(baseTime)
	failure := errors.New("boom")
	stats.Finalize(baseTime.Add(1500*time.Millisecond), failure)

	g.Expect(stats.Duration).To(Equal(1500 * time.Millisecond))
	g.Expect(stats.EndTime).To(Equal(baseTime.Add(1500 * time.Millisecond)))
	g.Expect(stats.Err).To(MatchError(failure))
}

func TestFormatSummary(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		stats moveengine.SyncStats
		want  string
	}{
		{
			name:  "nothing moved",
			stats: moveengine.SyncStats{},
			want:  "No files needed to be moved",
		},
		{
			name:  "one file",
			stats: moveengine.SyncStats{FilesCopied: 1, BytesCopied: 10, Duration: 200 * time.Millisecond},
			want:  "Moved 1 file (10 B) in 0.2s",
		},
		{
			name:  "several files",
			stats: moveengine.SyncStats{FilesCopied: 3, BytesCopied: 2_000_000, Duration: 3 * time.Second},
			want:  "Moved 3 files (2.0 MB) in 3.0s",
		},
		{
			name: "with failures",
			stats: moveengine.SyncStats{
				FilesCopied: 2, BytesCopied: 30, Duration: time.Second,
				Failures: []moveengine.EntryFailure{{Path: "x", Err: errors.New("x")}},
			},
			want: "Moved 2 files (30 B) in 1.0s, 1 failed",
		},
		{
			name:  "aborted",
			stats: moveengine.SyncStats{FilesCopied: 1, Err: errors.New("folder vanished")},
			want:  "Sync failed after moving 1 file: folder vanished",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			NewWithT(t).Expect(moveengine.FormatSummary(tt.stats)).To(Equal(tt.want))
		})
	}
}

func TestStatsAccumulator(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	acc := moveengine.NewStatsAccumulator()

	_, ok := acc.Latest()
	g.Expect(ok).To(BeFalse())

	var notified []moveengine.SyncStats
	acc.Subscribe(func(stats moveengine.SyncStats) { notified = append(notified, stats) })

	stats := moveengine.NewSyncStats(baseTime)
	stats.FilesCopied = 2
	stats.Failures = []moveengine.EntryFailure{{Path: "a", Err: errors.New("a")}}
	acc.Record(*stats)

	// later changes to the caller's value do not leak into the snapshot
	stats.FilesCopied = 99
	stats.Failures[0].Path = "changed"

	latest, ok := acc.Latest()
	g.Expect(ok).To(BeTrue())
	g.Expect(latest.FilesCopied).To(Equal(2))
	g.Expect(latest.Failures[0].Path).To(Equal("a"))

	latest.Failures[0].Path = "mutated"
	again, _ := acc.Latest()
	g.Expect(again.Failures[0].Path).To(Equal("a"))

	g.Expect(notified).To(HaveLen(1))
	g.Expect(notified[0].RunID).To(Equal(stats.RunID))
}
