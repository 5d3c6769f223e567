// Package history records finished runs in a sqlite database.
package history

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/joe/move-files/internal/moveengine"
)

// Outcomes of a run.
const (
	OutcomeFailed  = "failed"
	OutcomePartial = "partial"
	OutcomeSuccess = "success"
)

// Run is one persisted run.
type Run struct {
	ID            uint      `gorm:"primaryKey"`
	RunID         string    `gorm:"uniqueIndex;not null"`
	StartedAt     time.Time `gorm:"index;not null"`
	FinishedAt    time.Time `gorm:"not null"`
	DurationMS    int64
	FilesCopied   int
	BytesCopied   int64
	FilesSkipped  int
	FilesExcluded int
	DirsRemoved   int
	Failures      int
	FailedPaths   string
	Outcome       string `gorm:"not null"`
	ErrMsg        string
}

// TableName keeps the table name stable regardless of gorm's pluralization.
func (Run) TableName() string {
	return "runs"
}

// Totals sums every recorded run.
type Totals struct {
	Runs  int64
	Files int64
	Bytes int64
}

// Store is an open history database.
type Store struct {
	db *gorm.DB
}

// DefaultPath returns ~/.config/move-files/history.db.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home dir: %w", err)
	}

	return filepath.Join(home, ".config", "move-files", "history.db"), nil
}

// Open opens or creates the database at path and migrates the schema.
func Open(path string) (*Store, error) {
	err := os.MkdirAll(filepath.Dir(path), 0o750)
	if err != nil {
		return nil, fmt.Errorf("failed to create history dir: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(path+"?_pragma=journal_mode(WAL)"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open history db: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get history db handle: %w", err)
	}

	// stats observers may save from several goroutines
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(&Run{})
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to migrate history db: %w", err)
	}

	return &Store{db: db}, nil
}

// FromStats converts a finished run to its stored form.
func FromStats(stats moveengine.SyncStats) Run {
	run := Run{
		RunID:         stats.RunID,
		StartedAt:     stats.StartTime,
		FinishedAt:    stats.EndTime,
		DurationMS:    stats.Duration.Milliseconds(),
		FilesCopied:   stats.FilesCopied,
		BytesCopied:   stats.BytesCopied,
		FilesSkipped:  stats.FilesSkipped,
		FilesExcluded: stats.FilesExcluded,
		DirsRemoved:   stats.DirsRemoved,
		Failures:      len(stats.Failures),
		Outcome:       OutcomeSuccess,
	}

	paths := make([]string, 0, len(stats.Failures))
	for _, failure := range stats.Failures {
		paths = append(paths, failure.Path)
	}

	run.FailedPaths = strings.Join(paths, "\n")

	switch {
	case stats.Err != nil:
		run.Outcome = OutcomeFailed
		run.ErrMsg = stats.Err.Error()
	case len(stats.Failures) > 0:
		run.Outcome = OutcomePartial
	}

	return run
}

// Save stores a finished run. Saving the same run twice updates it.
func (s *Store) Save(stats moveengine.SyncStats) error {
	if stats.RunID == "" {
		return errors.New("run has no ID")
	}

	run := FromStats(stats)

	var existing Run

	err := s.db.Where("run_id = ?", run.RunID).First(&existing).Error

	switch {
	case err == nil:
		run.ID = existing.ID
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("failed to look up run %s: %w", run.RunID, err)
	}

	err = s.db.Save(&run).Error
	if err != nil {
		return fmt.Errorf("failed to save run %s: %w", run.RunID, err)
	}

	return nil
}

// Recent returns up to limit runs, newest first.
func (s *Store) Recent(limit int) ([]Run, error) {
	var runs []Run

	err := s.db.Order("started_at desc").Order("id desc").Limit(limit).Find(&runs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	return runs, nil
}

// Totals sums all stored runs.
func (s *Store) Totals() (Totals, error) {
	var totals Totals

	err := s.db.Model(&Run{}).
		Select("count(*) as runs, coalesce(sum(files_copied), 0) as files, coalesce(sum(bytes_copied), 0) as bytes").
		Scan(&totals).Error
	if err != nil {
		return Totals{}, fmt.Errorf("failed to total runs: %w", err)
	}

	return totals, nil
}

// Close releases the database.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get history db handle: %w", err)
	}

	return sqlDB.Close() //nolint:wrapcheck // Closing has nothing to add
}
