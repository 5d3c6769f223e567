package filesystem

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/kr/fs"
)

// FileScanner is an iterator over files in a directory tree.
// It provides a simple Next pattern for traversing directory contents.
type FileScanner interface {
	// Next advances to the next entry and returns its info.
	// Returns (FileInfo{}, false) when done or on error.
	// Check Err() after Next() returns false to distinguish between end-of-scan and error.
	Next() (FileInfo, bool)

	// Err returns any error that occurred during scanning.
	Err() error
}

// FileInfo contains metadata about a scanned entry.
type FileInfo struct {
	// RelativePath is the slash-separated path relative to the scan root
	RelativePath string

	// Size is the file size in bytes
	Size int64

	// ModTime is the modification time
	ModTime time.Time

	// IsDir indicates if this is a directory
	IsDir bool
}

// walkerScanner adapts a kr/fs Walker to FileScanner. Both the local and the
// SFTP filesystems walk through the same Walker type.
type walkerScanner struct {
	walker *fs.Walker
	root   string
	rel    func(root, target string) (string, error)
	err    error
	done   bool
}

// newLocalScanner creates a scanner over a local directory tree.
func newLocalScanner(root string) *walkerScanner {
	return &walkerScanner{
		walker: fs.Walk(root),
		root:   root,
		rel:    localRelativePath,
	}
}

// newWalkerScanner creates a scanner over an existing walker using slash paths.
func newWalkerScanner(walker *fs.Walker, root string) *walkerScanner {
	return &walkerScanner{
		walker: walker,
		root:   root,
		rel:    relativePath,
	}
}

// Err returns any error that occurred during scanning.
func (s *walkerScanner) Err() error {
	return s.err
}

// Next advances to the next entry and returns its info.
func (s *walkerScanner) Next() (FileInfo, bool) {
	if s.done {
		return FileInfo{}, false
	}

	for s.walker.Step() {
		if err := s.walker.Err(); err != nil { //nolint:noinlineerr // Inline error check is idiomatic for walker error handling
			s.err = fmt.Errorf("error scanning %s: %w", s.root, err)
			s.done = true

			return FileInfo{}, false
		}

		fullPath := s.walker.Path()
		relPath, err := s.rel(s.root, fullPath)
		if err != nil {
			s.err = fmt.Errorf("failed to get relative path for %s: %w", fullPath, err)
			s.done = true

			return FileInfo{}, false
		}

		// Skip the root directory itself
		if relPath == "." {
			continue
		}

		stat := s.walker.Stat()

		return FileInfo{
			RelativePath: relPath,
			Size:         stat.Size(),
			ModTime:      stat.ModTime(),
			IsDir:        stat.IsDir(),
		}, true
	}

	s.done = true

	return FileInfo{}, false
}

// localRelativePath returns the slash-separated relative path for local walks.
func localRelativePath(root, target string) (string, error) {
	rel, err := filepath.Rel(root, target)
	if err != nil {
		return "", fmt.Errorf("failed to relativize %s: %w", target, err)
	}

	return filepath.ToSlash(rel), nil
}

// relativePath computes the relative path from root to target.
// Uses path package (not filepath) since SFTP always uses forward slashes.
func relativePath(root, target string) (string, error) {
	root = path.Clean(root)
	target = path.Clean(target)

	if root == target {
		return ".", nil
	}

	prefix := root
	if prefix != "/" {
		prefix += "/"
	}

	if !strings.HasPrefix(target, prefix) {
		return "", fmt.Errorf("target %s is not under root %s", target, root) //nolint:err113 // Path validation error with actual paths
	}

	return target[len(prefix):], nil
}
