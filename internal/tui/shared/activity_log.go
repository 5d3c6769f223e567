package shared

import (
	"strings"

	"github.com/joe/move-files/internal/activity"
	"github.com/joe/move-files/internal/moveengine"
)

// RenderActivityLog renders activity entries with an optional title.
// Entries arrive newest first and are displayed that way.
// If maxEntries > 0, limits display to the most recent N entries.
func RenderActivityLog(title string, entries []activity.Entry, maxEntries int) string {
	var builder strings.Builder

	trimmedTitle := strings.TrimSpace(title)
	if trimmedTitle != "" {
		builder.WriteString(RenderLabel(trimmedTitle))
		builder.WriteString("\n")
	}

	if len(entries) == 0 {
		builder.WriteString(RenderDim("  (no activity)"))
		return builder.String()
	}

	if maxEntries > 0 && maxEntries < len(entries) {
		entries = entries[:maxEntries]
	}

	for i, entry := range entries {
		builder.WriteString("  ")
		builder.WriteString(RenderDim(entry.Timestamp.Format("15:04:05")))
		builder.WriteString(" ")
		builder.WriteString(renderEntry(entry))

		if i < len(entries)-1 {
			builder.WriteString("\n")
		}
	}

	return builder.String()
}

func renderEntry(entry activity.Entry) string {
	line := activity.Format(entry)

	switch entry.Kind {
	case moveengine.KindError:
		return FileItemErrorStyle().Render(line)
	case moveengine.KindMove:
		return line
	case moveengine.KindMonitorStart, moveengine.KindMonitorStop:
		return LabelStyle().Render(line)
	case moveengine.KindInfo:
		return DimStyle().Render(line)
	default:
		return line
	}
}
