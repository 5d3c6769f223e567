// Package main is the entry point for the move-files application.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"go.uber.org/zap"
	"golang.org/x/term" //nolint:depguard // Required for TTY detection

	"github.com/joe/move-files/internal/activity"
	"github.com/joe/move-files/internal/config"
	"github.com/joe/move-files/internal/folders"
	"github.com/joe/move-files/internal/history"
	"github.com/joe/move-files/internal/logging"
	"github.com/joe/move-files/internal/moveengine"
	"github.com/joe/move-files/internal/settings"
	"github.com/joe/move-files/internal/tui"
)

var errRunFailed = errors.New("run failed")

func main() {
	cfg, err := config.ParseFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	err = run(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	mode := cfg.Mode()

	logger, err := newLogger(cfg, mode)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	logger.Debug("starting", zap.Stringer("mode", mode))

	if mode == config.ModeHistory {
		return printHistory(os.Stdout, cfg.HistoryDB, cfg.HistoryLimit)
	}

	store, err := settings.Open(cfg.SettingsPath)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	err = applyFlags(cfg, store)
	if err != nil {
		return err
	}

	filter, err := moveengine.NewExcludeFilter(cfg.Exclude...)
	if err != nil {
		return fmt.Errorf("failed to build exclude filter: %w", err)
	}

	saved := store.Settings()
	log := activity.New()
	paths := folders.NewPathResolver(saved.SourcePath, saved.DestinationPath)

	var resolver moveengine.FolderResolver = paths
	if mode != config.ModeInteractive && stdinIsTerminal() {
		resolver = &promptWhenUnset{paths: paths, prompt: folders.NewPromptResolver(os.Stdin, os.Stderr, paths)}
	}

	coordinator := moveengine.NewCoordinator(moveengine.Dependencies{
		Settings: store,
		Resolver: resolver,
		Log:      log,
		Logger:   logger,
		Filter:   filter,
	})
	defer coordinator.Close()

	runs, err := history.Open(cfg.HistoryDB)
	if err != nil {
		logger.Warn("run history disabled", zap.String("path", cfg.HistoryDB), zap.Error(err))
	} else {
		defer func() { _ = runs.Close() }()

		recorder := history.NewRecorder(runs, logger)
		defer recorder.Close()

		subscription := coordinator.Stats().Subscribe(recorder.Save)
		defer subscription.Unsubscribe()
	}

	switch mode {
	case config.ModeInteractive:
		return runInteractive(coordinator, &savedPaths{PathResolver: paths, store: store, logger: logger}, store, log, saved)
	case config.ModeMonitor:
		return runMonitor(coordinator, log)
	default:
		return runOnce(coordinator, log)
	}
}

func newLogger(cfg *config.Config, mode config.Mode) (*zap.Logger, error) {
	// the dashboard owns the terminal
	if mode == config.ModeInteractive && cfg.LogFile == "" {
		return zap.NewNop(), nil
	}

	logger, err := logging.New(logging.Config{
		Level:      cfg.LogLevel,
		Format:     cfg.LogFormat,
		OutputPath: cfg.LogFile,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set up logging: %w", err)
	}

	return logger, nil
}

// applyFlags saves command-line overrides so later runs start from them.
func applyFlags(cfg *config.Config, store *settings.Store) error {
	if cfg.SourcePath != "" {
		err := store.SetSourcePath(cfg.SourcePath)
		if err != nil {
			return fmt.Errorf("failed to save source folder: %w", err)
		}
	}

	if cfg.DestPath != "" {
		err := store.SetDestinationPath(cfg.DestPath)
		if err != nil {
			return fmt.Errorf("failed to save destination folder: %w", err)
		}
	}

	if cfg.IntervalSeconds != 0 {
		err := store.SetPollingInterval(cfg.IntervalSeconds)
		if err != nil {
			return fmt.Errorf("failed to save polling interval: %w", err)
		}
	}

	if cfg.ForceRemove {
		err := store.SetForceRemove(true)
		if err != nil {
			return fmt.Errorf("failed to save force-remove: %w", err)
		}
	}

	return nil
}

func runOnce(coordinator *moveengine.Coordinator, log *activity.Log) error {
	subscription := log.Subscribe(activity.WriteTo(os.Stdout))
	defer subscription.Unsubscribe()

	err := browseBoth(coordinator)
	if err != nil {
		return err
	}

	stats := coordinator.RunOnce()
	if stats == nil {
		return fmt.Errorf("%w: nothing was run", errRunFailed)
	}

	if stats.Err != nil {
		return fmt.Errorf("%w: %w", errRunFailed, stats.Err)
	}

	if len(stats.Failures) > 0 {
		return fmt.Errorf("%w: %d entries could not be moved", errRunFailed, len(stats.Failures))
	}

	return nil
}

func runMonitor(coordinator *moveengine.Coordinator, log *activity.Log) error {
	subscription := log.Subscribe(activity.WriteTo(os.Stdout))
	defer subscription.Unsubscribe()

	err := browseBoth(coordinator)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = coordinator.StartMonitor()
	if err != nil {
		return fmt.Errorf("failed to start monitoring: %w", err)
	}

	<-ctx.Done()
	coordinator.StopMonitor()

	return nil
}

func runInteractive(
	coordinator *moveengine.Coordinator,
	paths *savedPaths,
	store *settings.Store,
	log *activity.Log,
	saved settings.Settings,
) error {
	if !stdinIsTerminal() {
		return errors.New("the dashboard needs a terminal; pass --source and --dest to run without one")
	}

	var source, destination string

	if saved.SourcePath != "" {
		folder, err := coordinator.Browse(moveengine.RoleSource)
		if err == nil {
			source = folder.DisplayPath
		}
	}

	if saved.DestinationPath != "" {
		folder, err := coordinator.Browse(moveengine.RoleDestination)
		if err == nil {
			destination = folder.DisplayPath
		}
	}

	// resume monitoring left on by the previous session
	if saved.IsMonitoring && coordinator.CanSync() {
		_ = coordinator.StartMonitor()
	}

	var opts []tea.ProgramOption
	if term.IsTerminal(int(os.Stdout.Fd())) {
		opts = append(opts, tea.WithAltScreen())
	}

	return tui.Run(coordinator, paths, store, log, source, destination, opts...) //nolint:wrapcheck // Already wrapped
}

func browseBoth(coordinator *moveengine.Coordinator) error {
	for _, role := range []moveengine.Role{moveengine.RoleSource, moveengine.RoleDestination} {
		_, err := coordinator.Browse(role)
		if errors.Is(err, moveengine.ErrSelectionCancelled) {
			return fmt.Errorf("no %s folder given (use --%s)", role, flagFor(role))
		}

		if err != nil {
			return err //nolint:wrapcheck // Browse names the role
		}
	}

	return nil
}

func flagFor(role moveengine.Role) string {
	if role == moveengine.RoleSource {
		return "source"
	}

	return "dest"
}

func printHistory(w io.Writer, dbPath string, limit int) error {
	runs, err := history.Open(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open run history: %w", err)
	}
	defer func() { _ = runs.Close() }()

	recent, err := runs.Recent(limit)
	if err != nil {
		return fmt.Errorf("failed to read run history: %w", err)
	}

	totals, err := runs.Totals()
	if err != nil {
		return fmt.Errorf("failed to read run history: %w", err)
	}

	if len(recent) == 0 {
		_, _ = fmt.Fprintln(w, "No runs recorded yet.")
		return nil
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Started", "Duration", "Files", "Size", "Skipped", "Failed", "Outcome"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)

	for _, r := range recent {
		table.Append([]string{
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			strconv.FormatInt(r.DurationMS, 10) + "ms",
			strconv.Itoa(r.FilesCopied),
			humanize.Bytes(uint64(max(r.BytesCopied, 0))),
			strconv.Itoa(r.FilesSkipped),
			strconv.Itoa(r.Failures),
			r.Outcome,
		})
	}

	table.Render()

	_, _ = fmt.Fprintf(w, "%d runs, %s files, %s moved in total\n",
		totals.Runs, humanize.Comma(totals.Files), humanize.Bytes(uint64(max(totals.Bytes, 0))))

	return nil
}

func stdinIsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// promptWhenUnset asks on the terminal for folders that were not given.
type promptWhenUnset struct {
	paths  *folders.PathResolver
	prompt *folders.PromptResolver
}

func (p *promptWhenUnset) Resolve(role moveengine.Role) (moveengine.Folder, error) {
	if p.paths.Path(role) == "" {
		return p.prompt.Resolve(role) //nolint:wrapcheck // Sentinels pass through
	}

	return p.paths.Resolve(role) //nolint:wrapcheck // Sentinels pass through
}

// savedPaths persists folders entered in the dashboard.
type savedPaths struct {
	*folders.PathResolver

	store  *settings.Store
	logger *zap.Logger
}

func (s *savedPaths) SetPath(role moveengine.Role, location string) {
	s.PathResolver.SetPath(role, location)

	save := s.store.SetDestinationPath
	if role == moveengine.RoleSource {
		save = s.store.SetSourcePath
	}

	err := save(location)
	if err != nil {
		s.logger.Warn("failed to save folder", zap.Stringer("role", role), zap.Error(err))
	}
}
