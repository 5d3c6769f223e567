// Package fileops provides file operations that run across two filesystems,
// such as copying a local file to an SFTP server.
package fileops

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/joe/move-files/pkg/filesystem"
)

// Exported constants.
const (
	// BufferSize is the size of the buffer used for file copy operations (64KB)
	BufferSize = 64 * 1024
	// DefaultDirPermissions is the default permission mode for created directories
	DefaultDirPermissions = 0o750
)

// FileInfo represents information about a file below a scanned root.
type FileInfo struct {
	Path         string
	RelativePath string
	Size         int64
	ModTime      time.Time
}

// ProgressCallback is called during file operations to report progress
type ProgressCallback func(bytesTransferred int64, totalBytes int64, currentFile string)

// FileOps copies between a source and a destination filesystem.
type FileOps struct {
	SourceFS filesystem.FileSystem
	DestFS   filesystem.FileSystem
}

// NewDualFileOps creates a new FileOps instance with separate source and destination filesystems.
func NewDualFileOps(sourceFS, destFS filesystem.FileSystem) *FileOps {
	return &FileOps{
		SourceFS: sourceFS,
		DestFS:   destFS,
	}
}

// CopyFile copies the entire content of src on the source filesystem to dst
// on the destination filesystem. An existing dst is overwritten. The parent
// of dst must already exist. Returns the number of bytes written.
func (fo *FileOps) CopyFile(src, dst string, progress ProgressCallback) (written int64, err error) {
	sourceFile, err := fo.SourceFS.Open(src)
	if err != nil {
		return 0, fmt.Errorf("failed to open source file %s: %w", src, err)
	}

	defer func() {
		_ = sourceFile.Close()
	}()

	sourceInfo, err := sourceFile.Stat()
	if err != nil {
		return 0, fmt.Errorf("failed to stat source file %s: %w", src, err)
	}

	destFile, err := fo.DestFS.Create(dst)
	if err != nil {
		return 0, fmt.Errorf("failed to create destination file %s: %w", dst, err)
	}

	// Remote writes can fail on close, so that error counts
	defer func() {
		closeErr := destFile.Close()
		if err == nil && closeErr != nil {
			err = fmt.Errorf("failed to finish destination file %s: %w", dst, closeErr)
		}
	}()

	written, err = copyLoop(sourceFile, destFile, sourceInfo.Size(), src, progress)
	if err != nil {
		return written, fmt.Errorf("failed to copy %s to %s: %w", src, dst, err)
	}

	return written, nil
}

// ScanFiles lists every regular file below rootPath on the source
// filesystem, sorted by relative path.
func (fo *FileOps) ScanFiles(rootPath string) ([]FileInfo, error) {
	var files []FileInfo

	scanner := fo.SourceFS.Scan(rootPath)
	for info, ok := scanner.Next(); ok; info, ok = scanner.Next() {
		if info.IsDir {
			continue
		}

		files = append(files, FileInfo{
			Path:         fo.SourceFS.Join(rootPath, info.RelativePath),
			RelativePath: info.RelativePath,
			Size:         info.Size,
			ModTime:      info.ModTime,
		})
	}

	err := scanner.Err()
	if err != nil {
		return files, fmt.Errorf("failed to scan directory %s: %w", rootPath, err)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].RelativePath < files[j].RelativePath })

	return files, nil
}

// copyLoop performs a basic file copy with progress tracking.
//
//nolint:lll // Long function signature with many parameters
func copyLoop(sourceFile filesystem.File, destFile filesystem.File, sourceSize int64, srcPath string, progress ProgressCallback) (int64, error) {
	var written int64

	buf := make([]byte, BufferSize)

	for {
		nr, err := sourceFile.Read(buf) //nolint:varnamelen // nr is idiomatic for bytes read
		if nr > 0 {
			nw, werr := destFile.Write(buf[0:nr]) //nolint:varnamelen // nw is idiomatic for bytes written
			if werr != nil {
				return written, fmt.Errorf("failed to write to destination: %w", werr)
			}

			if nr != nw {
				return written, fmt.Errorf("short write: %w", io.ErrShortWrite)
			}

			written += int64(nw)

			if progress != nil {
				progress(written, sourceSize, srcPath)
			}
		}

		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return written, fmt.Errorf("failed to read from source: %w", err)
		}
	}

	return written, nil
}
