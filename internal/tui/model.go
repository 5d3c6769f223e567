package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/joe/move-files/internal/activity"
	"github.com/joe/move-files/internal/moveengine"
	"github.com/joe/move-files/internal/tui/shared"
)

// Controller is the part of the coordinator the dashboard drives.
type Controller interface {
	Browse(role moveengine.Role) (moveengine.FolderPath, error)
	CanSync() bool
	IsMonitoring() bool
	Pending() (moveengine.PendingSummary, error)
	RestartMonitor()
	RunOnce() *moveengine.SyncStats
	StartMonitor() error
	StopMonitor()
}

// IntervalSetter reads and saves the polling interval.
type IntervalSetter interface {
	PollingInterval() time.Duration
	SetPollingInterval(seconds int) error
}

// PathSetter changes the location a role resolves to.
type PathSetter interface {
	Path(role moveengine.Role) string
	SetPath(role moveengine.Role, location string)
}

// LogView is the activity log as the dashboard sees it.
type LogView interface {
	Entries() []activity.Entry
	Clear()
}

// Model represents the dashboard state
type Model struct {
	controller Controller
	paths      PathSetter
	log        LogView
	bridge     *shared.EventBridge
	interval   IntervalSetter

	spinner spinner.Model
	input   textinput.Model
	editing bool
	role    moveengine.Role

	status      moveengine.SyncStatus
	monitoring  bool
	running     bool
	latest      *moveengine.SyncStats
	pending     moveengine.PendingSummary
	pendingErr  error
	entries     []activity.Entry
	source      string
	destination string
	notice      string
	seconds     int

	width    int
	quitting bool
}

// Options are the collaborators a Model is built from.
type Options struct {
	Controller Controller
	Paths      PathSetter
	Log        LogView
	Bridge     *shared.EventBridge
	// Interval enables the +/- keys when set.
	Interval IntervalSetter
	// Status is the engine status when the dashboard opens.
	Status moveengine.SyncStatus
	// Latest is the last finished run, if any.
	Latest *moveengine.SyncStats
	// Source and Destination are the folders already selected.
	Source      string
	Destination string
}

// NewModel creates a new dashboard model
func NewModel(opts Options) Model {
	input := textinput.New()
	input.Prompt = shared.PromptArrow
	input.Placeholder = "/path/to/folder or sftp://user@host/path"
	input.CharLimit = 4096

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(shared.PrimaryColor())

	model := Model{
		controller:  opts.Controller,
		paths:       opts.Paths,
		log:         opts.Log,
		bridge:      opts.Bridge,
		interval:    opts.Interval,
		spinner:     s,
		input:       input,
		status:      opts.Status,
		latest:      opts.Latest,
		source:      opts.Source,
		destination: opts.Destination,
		width:       shared.DefaultWidth,
	}

	if opts.Controller != nil {
		model.monitoring = opts.Controller.IsMonitoring()
	}

	if opts.Interval != nil {
		model.seconds = int(opts.Interval.PollingInterval() / time.Second)
	}

	if opts.Log != nil {
		model.entries = opts.Log.Entries()
	}

	return model
}

// Init starts listening to the engine and loads the pending preview
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick, m.pendingCmd(), shared.RefreshCmd(shared.RefreshInterval)}

	if m.bridge != nil {
		cmds = append(cmds, m.bridge.ListenCmd())
	}

	return tea.Batch(cmds...)
}

// Status returns the engine status last seen (for testing)
func (m Model) Status() moveengine.SyncStatus { return m.status }

// Editing reports whether a folder path is being typed (for testing)
func (m Model) Editing() bool { return m.editing }

// Quitting reports whether quit was requested (for testing)
func (m Model) Quitting() bool { return m.quitting }

// Pending returns the last pending preview (for testing)
func (m Model) Pending() moveengine.PendingSummary { return m.pending }

// IntervalSeconds returns the polling interval shown (for testing)
func (m Model) IntervalSeconds() int { return m.seconds }

func (m Model) pendingCmd() tea.Cmd {
	controller := m.controller
	if controller == nil {
		return nil
	}

	return func() tea.Msg {
		summary, err := controller.Pending()
		return shared.PendingMsg{Summary: summary, Err: err}
	}
}

func (m Model) runCmd() tea.Cmd {
	controller := m.controller

	return func() tea.Msg {
		return shared.RunFinishedMsg{Stats: controller.RunOnce()}
	}
}

func (m Model) toggleMonitorCmd() tea.Cmd {
	controller := m.controller
	monitoring := m.monitoring

	return func() tea.Msg {
		if monitoring {
			controller.StopMonitor()
			return shared.MonitorToggledMsg{Monitoring: false}
		}

		err := controller.StartMonitor()

		return shared.MonitorToggledMsg{Monitoring: err == nil, Err: err}
	}
}

func (m Model) browseCmd(role moveengine.Role) tea.Cmd {
	controller := m.controller

	return func() tea.Msg {
		folder, err := controller.Browse(role)
		return shared.FolderSelectedMsg{Role: role, Folder: folder, Err: err}
	}
}

func (m Model) intervalCmd(seconds int) tea.Cmd {
	interval := m.interval
	controller := m.controller

	return func() tea.Msg {
		err := interval.SetPollingInterval(seconds)
		if err != nil {
			return shared.IntervalChangedMsg{Err: err}
		}

		controller.RestartMonitor()

		return shared.IntervalChangedMsg{Seconds: seconds}
	}
}
