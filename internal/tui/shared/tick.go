package shared

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// RefreshInterval is how often the pending preview is reloaded.
const RefreshInterval = 5 * time.Second

// RefreshMsg asks the dashboard to reload what goes stale on its own,
// such as the pending preview.
type RefreshMsg time.Time

// RefreshCmd sends one RefreshMsg after every.
func RefreshCmd(every time.Duration) tea.Cmd {
	return tea.Tick(every, func(t time.Time) tea.Msg {
		return RefreshMsg(t)
	})
}
