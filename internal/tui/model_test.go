package tui

import (
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/joe/move-files/internal/activity"
	"github.com/joe/move-files/internal/folders"
	"github.com/joe/move-files/internal/moveengine"
	"github.com/joe/move-files/internal/tui/shared"
	"github.com/joe/move-files/pkg/filesystem"
)

type staticSettings struct{}

func (staticSettings) PollingInterval() time.Duration { return time.Minute }
func (staticSettings) ForceRemove() bool              { return false }
func (staticSettings) SetMonitoring(bool) error       { return nil }

// intervalStore keeps the polling interval in memory.
type intervalStore struct {
	seconds int
	err     error
}

func (s *intervalStore) PollingInterval() time.Duration {
	return time.Duration(s.seconds) * time.Second
}

func (s *intervalStore) SetPollingInterval(seconds int) error {
	if s.err != nil {
		return s.err
	}

	s.seconds = seconds

	return nil
}

func keyPress(key string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
}

// send delivers msg and returns the updated model and its command.
func send(model Model, msg tea.Msg) (Model, tea.Cmd) {
	updated, cmd := model.Update(msg)
	return updated.(Model), cmd
}

// drain delivers every message queued on the bridge.
func drain(model Model, bridge *shared.EventBridge) Model {
	for {
		select {
		case msg := <-bridge.Subscribe():
			model, _ = send(model, msg)
		default:
			return model
		}
	}
}

var _ = Describe("Dashboard", func() {
	var (
		mockFS      *filesystem.MockFileSystem
		paths       *folders.PathResolver
		log         *activity.Log
		coordinator *moveengine.Coordinator
		bridge      *shared.EventBridge
		interval    *intervalStore
		model       Model
		cmd         tea.Cmd
	)

	BeforeEach(func() {
		mockFS = filesystem.NewMockFileSystem()
		modTime := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
		mockFS.AddFile("/src/a.txt", []byte("0123456789"), modTime)
		mockFS.AddFile("/src/sub/b.txt", []byte("01234567890123456789"), modTime)
		mockFS.AddDir("/dst")

		paths = folders.NewPathResolver("", "").
			WithOpener(func(location string) (filesystem.FileSystem, string, func(), error) {
				return mockFS, location, nil, nil
			})

		log = activity.New()
		coordinator = moveengine.NewCoordinator(moveengine.Dependencies{
			Settings: staticSettings{},
			Resolver: paths,
			Log:      log,
		})
		DeferCleanup(coordinator.Close)

		bridge = shared.NewEventBridge()
		bridge.Watch(coordinator.Status(), coordinator.Stats(), log)
		DeferCleanup(bridge.Close)

		interval = &intervalStore{seconds: 5}
		model = NewModel(Options{
			Controller: coordinator,
			Paths:      paths,
			Log:        log,
			Bridge:     bridge,
			Interval:   interval,
		})
	})

	selectFolders := func() {
		for _, step := range []struct {
			key, path string
		}{{"1", "/src"}, {"2", "/dst"}} {
			model, _ = send(model, keyPress(step.key))
			Expect(model.Editing()).To(BeTrue())

			model.input.SetValue(step.path)
			model, cmd = send(model, tea.KeyMsg{Type: tea.KeyEnter})
			Expect(cmd).ToNot(BeNil())

			model, _ = send(model, cmd())
		}

		model = drain(model, bridge)
	}

	Describe("initial view", func() {
		It("shows the idle badge and the started entry", func() {
			view := model.View()
			Expect(view).To(ContainSubstring("idle"))
			Expect(view).To(ContainSubstring("Activity log started"))
			Expect(view).To(ContainSubstring("(not selected)"))
			Expect(view).To(ContainSubstring("No runs yet"))
		})

		It("batches its startup commands", func() {
			Expect(model.Init()).ToNot(BeNil())
		})
	})

	Describe("folder selection", func() {
		It("opens typed folders and shows them", func() {
			selectFolders()

			Expect(model.Editing()).To(BeFalse())
			Expect(coordinator.CanSync()).To(BeTrue())
			Expect(model.View()).To(ContainSubstring("/src"))
			Expect(model.View()).To(ContainSubstring("Selected destination folder /dst"))
		})

		It("leaves editing on escape without opening anything", func() {
			model, _ = send(model, keyPress("1"))
			model, cmd = send(model, tea.KeyMsg{Type: tea.KeyEsc})

			Expect(cmd).To(BeNil())
			Expect(model.Editing()).To(BeFalse())
			Expect(coordinator.CanSync()).To(BeFalse())
		})

		It("ignores a cancelled selection", func() {
			model, _ = send(model, shared.FolderSelectedMsg{
				Role: moveengine.RoleSource,
				Err:  moveengine.ErrSelectionCancelled,
			})

			Expect(model.notice).To(BeEmpty())
		})

		It("shows a failed selection", func() {
			model, _ = send(model, keyPress("1"))
			model.input.SetValue("/missing")
			model, cmd = send(model, tea.KeyMsg{Type: tea.KeyEnter})
			model, _ = send(model, cmd())

			Expect(model.notice).To(ContainSubstring("/missing"))
		})
	})

	Describe("sync key", func() {
		It("marks the run failed without folders", func() {
			model, cmd = send(model, keyPress("s"))
			Expect(cmd).ToNot(BeNil())

			model, _ = send(model, cmd())
			model = drain(model, bridge)

			Expect(model.Status()).To(Equal(moveengine.StatusError))
			Expect(model.View()).To(ContainSubstring("Select a source and a destination folder first"))
		})

		It("runs once and shows the result", func() {
			selectFolders()

			model, cmd = send(model, keyPress("s"))
			Expect(model.running).To(BeTrue())

			// a second press while running does nothing
			_, again := send(model, keyPress("s"))
			Expect(again).To(BeNil())

			msg := cmd()
			Expect(msg).To(BeAssignableToTypeOf(shared.RunFinishedMsg{}))

			model, _ = send(model, msg)
			model = drain(model, bridge)

			Expect(model.running).To(BeFalse())
			Expect(model.Status()).To(Equal(moveengine.StatusIdle))
			Expect(model.View()).To(ContainSubstring("Moved 2 files (30 B)"))
			Expect(mockFS.Exists("/dst/sub/b.txt")).To(BeTrue())
		})
	})

	Describe("monitor key", func() {
		It("starts and stops monitoring", func() {
			selectFolders()

			model, cmd = send(model, keyPress("m"))
			model, _ = send(model, cmd())
			Expect(model.monitoring).To(BeTrue())
			Expect(coordinator.IsMonitoring()).To(BeTrue())
			Expect(model.View()).To(ContainSubstring("m stop monitoring"))

			Eventually(coordinator.IsRunning).Should(BeFalse())

			model, cmd = send(model, keyPress("m"))
			model, _ = send(model, cmd())
			Expect(model.monitoring).To(BeFalse())
			Expect(coordinator.IsMonitoring()).To(BeFalse())
		})

		It("reports a refused start", func() {
			model, cmd = send(model, keyPress("m"))
			model, _ = send(model, cmd())

			Expect(model.monitoring).To(BeFalse())
			Expect(model.View()).To(ContainSubstring(moveengine.ErrPrecondition.Error()))
		})
	})

	Describe("interval keys", func() {
		It("saves a longer interval", func() {
			Expect(model.View()).To(ContainSubstring("every 5s"))

			model, cmd = send(model, keyPress("+"))
			Expect(cmd).ToNot(BeNil())
			model, _ = send(model, cmd())

			Expect(interval.seconds).To(Equal(6))
			Expect(model.IntervalSeconds()).To(Equal(6))
			Expect(model.View()).To(ContainSubstring("every 6s"))
		})

		It("restarts the timer while monitoring", func() {
			selectFolders()

			model, cmd = send(model, keyPress("m"))
			model, _ = send(model, cmd())
			Eventually(coordinator.IsRunning).Should(BeFalse())

			model, cmd = send(model, keyPress("-"))
			model, _ = send(model, cmd())

			Expect(model.IntervalSeconds()).To(Equal(4))
			Expect(log.Entries()).To(ContainElement(HaveField("Message", ContainSubstring("Polling interval changed"))))
			Eventually(coordinator.IsRunning).Should(BeFalse())
		})

		It("stops at the minimum", func() {
			interval.seconds = 1
			model = NewModel(Options{Controller: coordinator, Interval: interval})

			model, cmd = send(model, keyPress("-"))
			Expect(cmd).To(BeNil())
			Expect(model.IntervalSeconds()).To(Equal(1))
		})

		It("shows a failed save", func() {
			interval.err = errors.New("read-only file system")

			model, cmd = send(model, keyPress("+"))
			model, _ = send(model, cmd())

			Expect(model.IntervalSeconds()).To(Equal(5))
			Expect(model.View()).To(ContainSubstring("read-only file system"))
		})
	})

	Describe("clear key", func() {
		It("clears the activity log", func() {
			log.Record(moveengine.KindMove, "Moved old.txt")

			model, _ = send(model, keyPress("c"))

			Expect(model.entries).To(HaveLen(1))
			Expect(model.entries[0].Message).To(Equal("Logs cleared"))
		})
	})

	Describe("pending preview", func() {
		It("counts the files waiting in the source", func() {
			selectFolders()

			msg := model.pendingCmd()()
			model, _ = send(model, msg)

			Expect(model.Pending()).To(Equal(moveengine.PendingSummary{Files: 2, Bytes: 30}))
			Expect(model.View()).To(ContainSubstring("2 files (30 B)"))
		})
	})

	Describe("quit key", func() {
		It("quits", func() {
			model, cmd = send(model, keyPress("q"))

			Expect(model.Quitting()).To(BeTrue())
			Expect(cmd()).To(Equal(tea.Quit()))
			Expect(model.View()).To(BeEmpty())
		})
	})

	Describe("window size", func() {
		It("tracks the width", func() {
			model, _ = send(model, tea.WindowSizeMsg{Width: 140, Height: 40})
			Expect(model.width).To(Equal(140))
		})
	})
})
