package tui

import (
	"fmt"
	"strings"

	"github.com/joe/move-files/internal/moveengine"
	"github.com/joe/move-files/internal/tui/shared"
)

// View renders the dashboard
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(shared.RenderTitle("move-files"))
	b.WriteString("  ")
	b.WriteString(shared.RenderStatusBadge(m.status))

	if m.running || m.status == moveengine.StatusSyncing {
		b.WriteString(" ")
		b.WriteString(m.spinner.View())
	}

	b.WriteString("\n\n")

	left := shared.RenderWidgetBox("Folders", m.renderFolders(), m.width*3/5) //nolint:mnd // matches the 60-40 layout
	right := shared.RenderWidgetBox("Last run", m.renderLatest(), m.width-m.width*3/5)
	b.WriteString(shared.RenderTwoColumnLayout(left, right, m.width))
	b.WriteString("\n")

	if m.editing {
		b.WriteString("\n")
		b.WriteString(shared.RenderLabel(fmt.Sprintf("New %s folder:", m.role)))
		b.WriteString("\n")
		b.WriteString(m.input.View())
		b.WriteString("\n")
		b.WriteString(shared.RenderDim("enter to open • esc to cancel"))
		b.WriteString("\n")
	}

	if m.notice != "" {
		b.WriteString("\n")
		b.WriteString(shared.RenderError(m.notice))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(shared.RenderActivityLog("Activity", m.entries, shared.ActivityLogLines))
	b.WriteString("\n\n")
	b.WriteString(m.renderHelp())

	return b.String()
}

func (m Model) renderFolders() string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s %s\n", shared.RenderLabel("Source:     "), orNotSelected(m.source))
	fmt.Fprintf(&b, "%s %s\n", shared.RenderLabel("Destination:"), orNotSelected(m.destination))

	if m.seconds > 0 {
		fmt.Fprintf(&b, "%s every %ds\n", shared.RenderLabel("Polling:    "), m.seconds)
	}

	switch {
	case m.source == "":
	case m.pendingErr != nil:
		fmt.Fprintf(&b, "%s %s", shared.RenderLabel("Pending:    "), shared.RenderError(m.pendingErr.Error()))
	default:
		fmt.Fprintf(&b, "%s %d files (%s)", shared.RenderLabel("Pending:    "),
			m.pending.Files, shared.FormatBytes(m.pending.Bytes))
	}

	return b.String()
}

func (m Model) renderLatest() string {
	if m.latest == nil {
		return shared.RenderDim("No runs yet")
	}

	stats := *m.latest

	var b strings.Builder

	summary := moveengine.FormatSummary(stats)
	if stats.Err != nil {
		b.WriteString(shared.RenderError(summary))
	} else {
		b.WriteString(shared.RenderSuccess(summary))
	}

	b.WriteString("\n")
	fmt.Fprintf(&b, "Skipped %d • Excluded %d • Folders removed %d • Took %s\n",
		stats.FilesSkipped, stats.FilesExcluded, stats.DirsRemoved, shared.FormatDuration(stats.Duration))
	b.WriteString(shared.RenderDim("Finished " + stats.EndTime.Format("15:04:05")))

	if len(stats.Failures) > 0 {
		b.WriteString("\n")
		b.WriteString(shared.RenderErrorList(stats.Failures, shared.ErrorLimit, m.width*2/5)) //nolint:mnd // right column
	}

	return b.String()
}

func (m Model) renderHelp() string {
	monitorAction := "start monitoring"
	if m.monitoring {
		monitorAction = "stop monitoring"
	}

	return shared.RenderDim(strings.Join([]string{
		"s sync now",
		"m " + monitorAction,
		"+/- interval",
		"1 source",
		"2 destination",
		"c clear log",
		"q quit",
	}, " • "))
}

func orNotSelected(path string) string {
	if path == "" {
		return shared.RenderDim("(not selected)")
	}

	return path
}
