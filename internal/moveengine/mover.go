package moveengine

import (
	"errors"
	"fmt"
	"path"

	"go.uber.org/zap"

	"github.com/joe/move-files/internal/logging"
	"github.com/joe/move-files/pkg/fileops"
	"github.com/joe/move-files/pkg/filesystem"
)

// MoverOptions configures a TreeMover.
type MoverOptions struct {
	// ForceRemove deletes a source folder that still has entries after its
	// subtree was processed, provided nothing under it failed or was excluded.
	ForceRemove bool
	Filter      FileFilter
	Log         ActivityLog
	Logger      *zap.Logger
}

// TreeMover moves the contents of a source tree into a destination tree:
// changed files are copied then deleted from the source, the folder layout
// is mirrored, and source folders left empty are removed.
type TreeMover struct {
	sourceFS    filesystem.FileSystem
	destFS      filesystem.FileSystem
	ops         *fileops.FileOps
	forceRemove bool
	filter      FileFilter
	log         ActivityLog
	logger      *zap.Logger
}

// NewTreeMover creates a mover between two filesystems, which may be the same.
func NewTreeMover(sourceFS, destFS filesystem.FileSystem, opts MoverOptions) *TreeMover {
	mover := &TreeMover{
		sourceFS:    sourceFS,
		destFS:      destFS,
		ops:         fileops.NewDualFileOps(sourceFS, destFS),
		forceRemove: opts.ForceRemove,
		filter:      opts.Filter,
		log:         opts.Log,
		logger:      logging.OrNop(opts.Logger),
	}

	if mover.filter == nil {
		mover.filter = includeAll{}
	}

	if mover.log == nil {
		mover.log = discardLog{}
	}

	return mover
}

// subtreeResult reports what a processed folder left behind.
type subtreeResult struct {
	// blocked is set when something under the folder failed or was excluded,
	// so it must not be force-removed.
	blocked bool
}

// destDir creates a destination folder the first time a file needs it.
type destDir struct {
	fs    filesystem.FileSystem
	path  string
	ready bool
}

func (d *destDir) ensure() error {
	if d.ready {
		return nil
	}

	err := d.fs.MkdirAll(d.path, fileops.DefaultDirPermissions)
	if err != nil {
		return fmt.Errorf("failed to create destination folder %s: %w", d.path, err)
	}

	d.ready = true

	return nil
}

// Sync moves everything below sourceRoot into destRoot. Entry failures are
// recorded in stats and do not stop the walk. A folder that cannot be
// listed aborts the run with an error wrapping ErrEnumeration. The source
// root itself is never removed.
func (m *TreeMover) Sync(sourceRoot, destRoot string, cache *ChangeCache, stats *SyncStats) error {
	dest := &destDir{fs: m.destFS, path: destRoot}

	_, err := m.syncSubtree(sourceRoot, dest, "", cache, stats)

	return err
}

func (m *TreeMover) syncSubtree(
	sourceDir string,
	dest *destDir,
	prefix string,
	cache *ChangeCache,
	stats *SyncStats,
) (subtreeResult, error) {
	var result subtreeResult

	entries, err := m.sourceFS.ReadDir(sourceDir)
	if err != nil {
		err = fmt.Errorf("%w: %s: %w", ErrEnumeration, displayPath(prefix), err)
		m.logger.Error("failed to list folder", zap.String("path", sourceDir), zap.Error(err))
		m.log.Record(KindError, "Could not list folder "+displayPath(prefix), WithPath(prefix), WithError(err))

		return result, err
	}

	for _, entry := range entries {
		rel := path.Join(prefix, entry.Name)
		sourcePath := m.sourceFS.Join(sourceDir, entry.Name)
		destPath := m.destFS.Join(dest.path, entry.Name)

		if !m.filter.ShouldInclude(rel) {
			stats.FilesExcluded++
			result.blocked = true

			m.logger.Debug("excluded", zap.String("path", rel))

			continue
		}

		if entry.IsDir {
			child, err := m.moveDir(sourcePath, destPath, rel, cache, stats)
			if errors.Is(err, ErrEnumeration) {
				return result, err
			}

			if err != nil {
				m.recordFailure(stats, rel, err)
			}

			result.blocked = result.blocked || child.blocked || err != nil

			continue
		}

		leftBehind, err := m.moveFile(sourcePath, destPath, rel, dest, cache, stats)
		if err != nil {
			m.recordFailure(stats, rel, err)
		}

		result.blocked = result.blocked || leftBehind || err != nil
	}

	return result, nil
}

// moveFile copies one file if it changed since it was last seen, then
// deletes the source. leftBehind is set when the copy succeeded but the
// source could not be deleted.
func (m *TreeMover) moveFile(
	sourcePath, destPath, rel string,
	dest *destDir,
	cache *ChangeCache,
	stats *SyncStats,
) (leftBehind bool, err error) {
	info, err := m.sourceFS.Stat(sourcePath)
	if err != nil {
		return false, fmt.Errorf("%w: %s: %w", ErrEntry, rel, err)
	}

	fingerprint := FingerprintOf(info)
	if cache.Unchanged(rel, fingerprint) {
		stats.FilesSkipped++
		m.logger.Debug("unchanged, skipped", zap.String("path", rel))

		return false, nil
	}

	cache.Set(rel, fingerprint)

	err = dest.ensure()
	if err != nil {
		return false, fmt.Errorf("%w: %s: %w", ErrEntry, rel, err)
	}

	written, err := m.ops.CopyFile(sourcePath, destPath, nil)
	if err != nil {
		return false, fmt.Errorf("%w: %s: %w", ErrEntry, rel, err)
	}

	m.logger.Debug("copied", zap.String("path", rel), zap.Int64("bytes", written))

	err = m.sourceFS.Remove(sourcePath)
	if err != nil {
		// the copy stands; only source cleanup failed
		err = fmt.Errorf("%w: %s: %w", ErrDeleteAfterCopy, rel, err)
		stats.addFailure(rel, err)
		m.logger.Warn("copied but could not delete source", zap.String("path", rel), zap.Error(err))
		m.log.Record(KindError, "Copied "+rel+" but could not delete the source", WithPath(rel), WithError(err))

		leftBehind = true
	}

	stats.FilesCopied++
	stats.BytesCopied += info.Size()

	m.log.Record(KindMove, "Moved "+rel, WithPath(rel))

	return leftBehind, nil
}

// moveDir mirrors one folder, recurses into it, then removes the source
// folder if it ended up empty.
func (m *TreeMover) moveDir(
	sourcePath, destPath, rel string,
	cache *ChangeCache,
	stats *SyncStats,
) (subtreeResult, error) {
	dest := &destDir{fs: m.destFS, path: destPath}

	err := dest.ensure()
	if err != nil {
		return subtreeResult{blocked: true}, fmt.Errorf("%w: %s: %w", ErrEntry, rel, err)
	}

	result, err := m.syncSubtree(sourcePath, dest, rel, cache, stats)
	if err != nil {
		return result, err
	}

	remaining, err := m.sourceFS.ReadDir(sourcePath)
	if err != nil {
		return subtreeResult{blocked: true}, fmt.Errorf("%w: checking %s is empty: %w", ErrEntry, rel, err)
	}

	switch {
	case len(remaining) == 0:
		err = m.sourceFS.Remove(sourcePath)
		if err != nil {
			return subtreeResult{blocked: true}, fmt.Errorf("%w: removing empty folder %s: %w", ErrEntry, rel, err)
		}

		stats.DirsRemoved++
		m.logger.Info("removed empty source folder", zap.String("path", rel))
		m.log.Record(KindInfo, "Removed empty folder "+rel, WithPath(rel))

	case m.forceRemove && !result.blocked:
		err = m.sourceFS.RemoveAll(sourcePath)
		if err != nil {
			return subtreeResult{blocked: true}, fmt.Errorf("%w: force-removing %s: %w", ErrEntry, rel, err)
		}

		stats.DirsRemoved++
		m.logger.Info("force-removed source folder",
			zap.String("path", rel), zap.Int("entries", len(remaining)))
		m.log.Record(KindInfo, fmt.Sprintf("Force-removed folder %s (%d entries left)", rel, len(remaining)),
			WithPath(rel))

	default:
		m.logger.Info("kept non-empty source folder",
			zap.String("path", rel), zap.Int("entries", len(remaining)), zap.Bool("blocked", result.blocked))
		m.log.Record(KindInfo, fmt.Sprintf("Kept folder %s (%d entries left)", rel, len(remaining)),
			WithPath(rel))
	}

	return result, nil
}

func (m *TreeMover) recordFailure(stats *SyncStats, rel string, err error) {
	stats.addFailure(rel, err)
	m.logger.Error("failed to move", zap.String("path", rel), zap.Error(err))
	m.log.Record(KindError, "Failed to move "+rel, WithPath(rel), WithError(err))
}

func displayPath(rel string) string {
	if rel == "" {
		return "."
	}

	return rel
}
