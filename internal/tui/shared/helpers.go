package shared

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

// ============================================================================
// Formatting Functions
// ============================================================================

// FormatBytes formats bytes into human-readable format (e.g., "1.5 MB")
func FormatBytes(bytes int64) string {
	return humanize.Bytes(uint64(max(bytes, 0)))
}

// FormatDuration formats duration into human-readable format (e.g., "2m 30s")
func FormatDuration(duration time.Duration) string {
	if duration < time.Second {
		return fmt.Sprintf("%dms", duration.Milliseconds())
	}

	duration = duration.Round(time.Second)
	hours := duration / time.Hour
	duration %= time.Hour
	minutes := duration / time.Minute
	duration %= time.Minute
	seconds := duration / time.Second

	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	} else if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}

	return fmt.Sprintf("%ds", seconds)
}

// FormatAgo describes how long ago t was relative to now (e.g., "3m ago")
func FormatAgo(t, now time.Time) string {
	if t.IsZero() {
		return "never"
	}

	return humanize.RelTime(t, now, "ago", "from now")
}
