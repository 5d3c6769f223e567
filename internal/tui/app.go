// Package tui is the interactive dashboard: folder selection, the engine
// status, the latest run and the activity log.
package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/joe/move-files/internal/activity"
	"github.com/joe/move-files/internal/moveengine"
	"github.com/joe/move-files/internal/tui/shared"
)

// Engine is what Run needs from the coordinator: the controls plus the
// observables the dashboard listens to.
type Engine interface {
	Controller
	Status() *moveengine.StatusMachine
	Stats() *moveengine.StatsAccumulator
}

// Run shows the dashboard until the user quits.
func Run(
	engine Engine,
	paths PathSetter,
	interval IntervalSetter,
	log *activity.Log,
	source, destination string,
	programOpts ...tea.ProgramOption,
) error {
	bridge := shared.NewEventBridge()
	bridge.Watch(engine.Status(), engine.Stats(), log)
	defer bridge.Close()

	var latest *moveengine.SyncStats
	if stats, ok := engine.Stats().Latest(); ok {
		latest = &stats
	}

	model := NewModel(Options{
		Controller:  engine,
		Paths:       paths,
		Log:         log,
		Bridge:      bridge,
		Interval:    interval,
		Status:      engine.Status().Current(),
		Latest:      latest,
		Source:      source,
		Destination: destination,
	})

	_, err := tea.NewProgram(model, programOpts...).Run()
	if err != nil {
		return fmt.Errorf("dashboard failed: %w", err)
	}

	return nil
}
