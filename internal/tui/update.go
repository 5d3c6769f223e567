package tui

import (
	"errors"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/joe/move-files/internal/moveengine"
	"github.com/joe/move-files/internal/settings"
	"github.com/joe/move-files/internal/tui/shared"
)

// Update handles messages and key presses
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.editing {
			return m.handleEditKey(msg)
		}

		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)

		return m, cmd

	case shared.RefreshMsg:
		// the pending preview goes stale as files land in the source
		return m, tea.Batch(m.pendingCmd(), shared.RefreshCmd(shared.RefreshInterval))

	case shared.StatusChangedMsg:
		m.status = msg.Status
		return m, m.listen()

	case shared.StatsRecordedMsg:
		stats := msg.Stats
		m.latest = &stats

		return m, tea.Batch(m.listen(), m.pendingCmd())

	case shared.ActivityMsg:
		m.entries = msg.Entries
		return m, m.listen()

	case shared.RunFinishedMsg:
		m.running = false
		if msg.Stats != nil {
			m.latest = msg.Stats
		}

		return m, m.pendingCmd()

	case shared.MonitorToggledMsg:
		m.monitoring = msg.Monitoring
		m.notice = errorNotice(msg.Err)

		return m, nil

	case shared.IntervalChangedMsg:
		m.notice = errorNotice(msg.Err)
		if msg.Err == nil {
			m.seconds = msg.Seconds
		}

		return m, nil

	case shared.FolderSelectedMsg:
		return m.handleFolderSelected(msg)

	case shared.PendingMsg:
		m.pending, m.pendingErr = msg.Summary, msg.Err
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", shared.KeyCtrlC:
		m.quitting = true
		return m, tea.Quit

	case "s":
		if m.running || m.controller == nil {
			return m, nil
		}

		m.running = true
		m.notice = ""

		return m, m.runCmd()

	case "m":
		if m.controller == nil {
			return m, nil
		}

		return m, m.toggleMonitorCmd()

	case "c":
		if m.log != nil {
			m.log.Clear()
			m.entries = m.log.Entries()
		}

		return m, nil

	case "+", "=":
		return m.changeInterval(1)

	case "-":
		return m.changeInterval(-1)

	case "1":
		return m.startEditing(moveengine.RoleSource)

	case "2":
		return m.startEditing(moveengine.RoleDestination)
	}

	return m, nil
}

func (m Model) changeInterval(delta int) (tea.Model, tea.Cmd) {
	if m.interval == nil || m.controller == nil {
		return m, nil
	}

	seconds := min(max(m.seconds+delta, settings.MinIntervalSeconds), settings.MaxIntervalSeconds)
	if seconds == m.seconds {
		return m, nil
	}

	return m, m.intervalCmd(seconds)
}

func (m Model) startEditing(role moveengine.Role) (tea.Model, tea.Cmd) {
	if m.paths == nil || m.controller == nil {
		return m, nil
	}

	m.editing = true
	m.role = role
	m.input.SetValue(m.paths.Path(role))
	m.input.CursorEnd()

	return m, m.input.Focus()
}

func (m Model) handleEditKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.editing = false
		m.input.Blur()

		return m, nil

	case tea.KeyEnter:
		m.editing = false
		m.input.Blur()
		m.paths.SetPath(m.role, m.input.Value())

		return m, m.browseCmd(m.role)

	case tea.KeyCtrlC:
		m.quitting = true
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m Model) handleFolderSelected(msg shared.FolderSelectedMsg) (tea.Model, tea.Cmd) {
	if errors.Is(msg.Err, moveengine.ErrSelectionCancelled) {
		return m, nil
	}

	if msg.Err != nil {
		m.notice = errorNotice(msg.Err)
		return m, nil
	}

	m.notice = ""

	if msg.Role == moveengine.RoleSource {
		m.source = msg.Folder.DisplayPath
		return m, m.pendingCmd()
	}

	m.destination = msg.Folder.DisplayPath

	return m, nil
}

func (m Model) listen() tea.Cmd {
	if m.bridge == nil {
		return nil
	}

	return m.bridge.ListenCmd()
}

func errorNotice(err error) string {
	if err == nil {
		return ""
	}

	return err.Error()
}
