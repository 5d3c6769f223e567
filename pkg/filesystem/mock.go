package filesystem

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"sort"
	"strings"
	"sync"
	"time"
)

// Op names a MockFileSystem operation for fault injection.
type Op string

// Operations that can be intercepted on a MockFileSystem.
const (
	OpCreate    Op = "create"
	OpMkdirAll  Op = "mkdirall"
	OpOpen      Op = "open"
	OpReadDir   Op = "readdir"
	OpRemove    Op = "remove"
	OpRemoveAll Op = "removeall"
	OpStat      Op = "stat"
	OpWrite     Op = "write"
)

// Exported variables.
var (
	ErrDirectoryNotEmpty = errors.New("directory not empty")
	ErrIsDirectory       = errors.New("is a directory")
	ErrNotDirectory      = errors.New("not a directory")
)

// MockFileSystem is an in-memory filesystem implementation for testing.
// Paths are slash-separated; "/" always exists. Unlike AddFile, Create
// requires the parent directory to exist, matching the real filesystem.
type MockFileSystem struct {
	mu        sync.RWMutex
	files     map[string]*mockFile
	failures  map[failureKey]error
	intercept func(op Op, path string) error
}

type failureKey struct {
	op   Op
	path string
}

// mockFile represents a file or directory in the mock filesystem.
type mockFile struct {
	data    []byte
	modTime time.Time
	isDir   bool
	perm    os.FileMode
}

// mockFileInfo implements os.FileInfo for mock files.
type mockFileInfo struct {
	name    string
	size    int64
	modTime time.Time
	isDir   bool
	perm    os.FileMode
}

func (fi *mockFileInfo) Name() string       { return fi.name }
func (fi *mockFileInfo) Size() int64        { return fi.size }
func (fi *mockFileInfo) Mode() os.FileMode  { return fi.perm }
func (fi *mockFileInfo) ModTime() time.Time { return fi.modTime }
func (fi *mockFileInfo) IsDir() bool        { return fi.isDir }
func (fi *mockFileInfo) Sys() any           { return nil }

// mockFileHandle implements the File interface for reading/writing.
type mockFileHandle struct {
	fs     *MockFileSystem
	path   string
	reader *bytes.Reader
	writer *bytes.Buffer
	closed bool
}

func (f *mockFileHandle) Read(p []byte) (int, error) {
	if f.closed {
		return 0, os.ErrClosed
	}

	if f.reader == nil {
		return 0, io.EOF
	}

	return f.reader.Read(p)
}

func (f *mockFileHandle) Write(p []byte) (int, error) {
	if f.closed {
		return 0, os.ErrClosed
	}

	if err := f.fs.check(OpWrite, f.path); err != nil {
		return 0, err
	}

	if f.writer == nil {
		f.writer = &bytes.Buffer{}
	}

	return f.writer.Write(p)
}

// Close persists written data into the filesystem.
func (f *mockFileHandle) Close() error {
	if f.closed {
		return os.ErrClosed
	}
	f.closed = true

	if f.writer == nil {
		return nil
	}

	f.fs.mu.Lock()
	defer f.fs.mu.Unlock()

	if file, exists := f.fs.files[f.path]; exists {
		file.data = f.writer.Bytes()
		file.modTime = time.Now()
	}

	return nil
}

func (f *mockFileHandle) Stat() (os.FileInfo, error) {
	if f.closed {
		return nil, os.ErrClosed
	}

	return f.fs.Stat(f.path)
}

// NewMockFileSystem creates a new in-memory filesystem.
func NewMockFileSystem() *MockFileSystem {
	return &MockFileSystem{
		files: map[string]*mockFile{
			"/": {isDir: true, perm: 0o755, modTime: time.Now()},
		},
		failures: make(map[failureKey]error),
	}
}

// FailOn makes every future op on path return err.
func (fs *MockFileSystem) FailOn(op Op, p string, err error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	fs.failures[failureKey{op: op, path: clean(p)}] = err
}

// ClearFailure removes a failure registered with FailOn.
func (fs *MockFileSystem) ClearFailure(op Op, p string) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	delete(fs.failures, failureKey{op: op, path: clean(p)})
}

// Intercept installs a hook that runs before every operation. A non-nil
// return value fails the operation. The hook runs without the lock held,
// so it may block.
func (fs *MockFileSystem) Intercept(hook func(op Op, path string) error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	fs.intercept = hook
}

// check runs the interceptor and registered failures for op on p.
func (fs *MockFileSystem) check(op Op, p string) error {
	p = clean(p)

	fs.mu.RLock()
	hook := fs.intercept
	err := fs.failures[failureKey{op: op, path: p}]
	fs.mu.RUnlock()

	if hook != nil {
		if hookErr := hook(op, p); hookErr != nil {
			return hookErr
		}
	}

	if err != nil {
		return fmt.Errorf("%s %s: %w", op, p, err)
	}

	return nil
}

// Create creates a file for writing.
func (fs *MockFileSystem) Create(p string) (File, error) {
	if err := fs.check(OpCreate, p); err != nil {
		return nil, err
	}

	p = clean(p)

	fs.mu.Lock()
	defer fs.mu.Unlock()

	parent, exists := fs.files[path.Dir(p)]
	if !exists {
		return nil, fmt.Errorf("create %s: %w", p, os.ErrNotExist)
	}

	if !parent.isDir {
		return nil, fmt.Errorf("create %s: %w", p, ErrNotDirectory)
	}

	if existing, ok := fs.files[p]; ok && existing.isDir {
		return nil, fmt.Errorf("create %s: %w", p, ErrIsDirectory)
	}

	fs.files[p] = &mockFile{
		data:    []byte{},
		modTime: time.Now(),
		perm:    0o644,
	}

	return &mockFileHandle{fs: fs, path: p, writer: &bytes.Buffer{}}, nil
}

// Join joins path elements with forward slashes.
func (fs *MockFileSystem) Join(elem ...string) string {
	return path.Join(elem...)
}

// MkdirAll creates a directory and all necessary parents.
func (fs *MockFileSystem) MkdirAll(p string, perm os.FileMode) error {
	if err := fs.check(OpMkdirAll, p); err != nil {
		return err
	}

	fs.mu.Lock()
	defer fs.mu.Unlock()

	return fs.mkdirAllLocked(clean(p), perm)
}

// mkdirAllLocked is the internal implementation that assumes the lock is held.
func (fs *MockFileSystem) mkdirAllLocked(p string, perm os.FileMode) error {
	if existing, exists := fs.files[p]; exists {
		if !existing.isDir {
			return fmt.Errorf("mkdir %s: %w", p, ErrNotDirectory)
		}

		return nil
	}

	if err := fs.mkdirAllLocked(path.Dir(p), perm); err != nil {
		return err
	}

	fs.files[p] = &mockFile{modTime: time.Now(), isDir: true, perm: perm}

	return nil
}

// Open opens a file for reading.
func (fs *MockFileSystem) Open(p string) (File, error) {
	if err := fs.check(OpOpen, p); err != nil {
		return nil, err
	}

	p = clean(p)

	fs.mu.RLock()
	defer fs.mu.RUnlock()

	file, exists := fs.files[p]
	if !exists {
		return nil, fmt.Errorf("open %s: %w", p, os.ErrNotExist)
	}

	if file.isDir {
		return nil, fmt.Errorf("open %s: %w", p, ErrIsDirectory)
	}

	return &mockFileHandle{fs: fs, path: p, reader: bytes.NewReader(file.data)}, nil
}

// ReadDir lists the direct children of a directory, sorted by name.
func (fs *MockFileSystem) ReadDir(p string) ([]DirEntry, error) {
	if err := fs.check(OpReadDir, p); err != nil {
		return nil, err
	}

	p = clean(p)

	fs.mu.RLock()
	defer fs.mu.RUnlock()

	dir, exists := fs.files[p]
	if !exists {
		return nil, fmt.Errorf("readdir %s: %w", p, os.ErrNotExist)
	}

	if !dir.isDir {
		return nil, fmt.Errorf("readdir %s: %w", p, ErrNotDirectory)
	}

	var entries []DirEntry

	for candidate, file := range fs.files {
		if candidate != p && path.Dir(candidate) == p {
			entries = append(entries, DirEntry{Name: path.Base(candidate), IsDir: file.isDir})
		}
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })

	return entries, nil
}

// Remove removes a file or empty directory.
func (fs *MockFileSystem) Remove(p string) error {
	if err := fs.check(OpRemove, p); err != nil {
		return err
	}

	p = clean(p)

	fs.mu.Lock()
	defer fs.mu.Unlock()

	file, exists := fs.files[p]
	if !exists {
		return fmt.Errorf("remove %s: %w", p, os.ErrNotExist)
	}

	if file.isDir && fs.hasChildrenLocked(p) {
		return fmt.Errorf("remove %s: %w", p, ErrDirectoryNotEmpty)
	}

	delete(fs.files, p)

	return nil
}

// RemoveAll removes a path and everything below it. Missing paths are not an error.
func (fs *MockFileSystem) RemoveAll(p string) error {
	if err := fs.check(OpRemoveAll, p); err != nil {
		return err
	}

	p = clean(p)

	fs.mu.Lock()
	defer fs.mu.Unlock()

	for candidate := range fs.files {
		if candidate == p || strings.HasPrefix(candidate, p+"/") {
			delete(fs.files, candidate)
		}
	}

	return nil
}

// Scan returns an iterator over all entries below a directory.
func (fs *MockFileSystem) Scan(root string) FileScanner {
	root = clean(root)

	fs.mu.RLock()
	defer fs.mu.RUnlock()

	scanner := &mockFileScanner{index: -1}

	if _, exists := fs.files[root]; !exists {
		scanner.err = fmt.Errorf("scan %s: %w", root, os.ErrNotExist)
		return scanner
	}

	prefix := strings.TrimSuffix(root, "/") + "/"
	for p, file := range fs.files {
		if !strings.HasPrefix(p, prefix) {
			continue
		}

		scanner.files = append(scanner.files, FileInfo{
			RelativePath: strings.TrimPrefix(p, prefix),
			Size:         int64(len(file.data)),
			ModTime:      file.modTime,
			IsDir:        file.isDir,
		})
	}

	sort.Slice(scanner.files, func(i, j int) bool {
		return scanner.files[i].RelativePath < scanner.files[j].RelativePath
	})

	return scanner
}

// Stat returns file information.
func (fs *MockFileSystem) Stat(p string) (os.FileInfo, error) {
	if err := fs.check(OpStat, p); err != nil {
		return nil, err
	}

	p = clean(p)

	fs.mu.RLock()
	defer fs.mu.RUnlock()

	file, exists := fs.files[p]
	if !exists {
		return nil, fmt.Errorf("stat %s: %w", p, os.ErrNotExist)
	}

	return &mockFileInfo{
		name:    path.Base(p),
		size:    int64(len(file.data)),
		modTime: file.modTime,
		isDir:   file.isDir,
		perm:    file.perm,
	}, nil
}

// hasChildrenLocked reports whether a directory has any entries below it.
func (fs *MockFileSystem) hasChildrenLocked(p string) bool {
	prefix := strings.TrimSuffix(p, "/") + "/"
	for candidate := range fs.files {
		if candidate != p && strings.HasPrefix(candidate, prefix) {
			return true
		}
	}

	return false
}

// Helper methods for testing

// AddFile adds a file with the given content and modtime, creating parents.
func (fs *MockFileSystem) AddFile(p string, content []byte, modTime time.Time) {
	p = clean(p)

	fs.mu.Lock()
	defer fs.mu.Unlock()

	_ = fs.mkdirAllLocked(path.Dir(p), 0o755)

	fs.files[p] = &mockFile{
		data:    append([]byte(nil), content...),
		modTime: modTime,
		perm:    0o644,
	}
}

// AddDir adds a directory, creating parents.
func (fs *MockFileSystem) AddDir(p string) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	_ = fs.mkdirAllLocked(clean(p), 0o755)
}

// SetModTime changes the modification time of an existing entry.
func (fs *MockFileSystem) SetModTime(p string, modTime time.Time) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if file, exists := fs.files[clean(p)]; exists {
		file.modTime = modTime
	}
}

// GetFile retrieves a file's content from the mock filesystem.
func (fs *MockFileSystem) GetFile(p string) ([]byte, time.Time, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	file, exists := fs.files[clean(p)]
	if !exists {
		return nil, time.Time{}, os.ErrNotExist
	}

	if file.isDir {
		return nil, time.Time{}, ErrIsDirectory
	}

	return append([]byte(nil), file.data...), file.modTime, nil
}

// Exists checks if a path exists in the mock filesystem.
func (fs *MockFileSystem) Exists(p string) bool {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	_, exists := fs.files[clean(p)]

	return exists
}

// ListFiles returns all non-directory paths, sorted.
func (fs *MockFileSystem) ListFiles() []string {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	var paths []string

	for p, file := range fs.files {
		if !file.isDir {
			paths = append(paths, p)
		}
	}

	sort.Strings(paths)

	return paths
}

// mockFileScanner iterates over a snapshot taken when Scan was called.
type mockFileScanner struct {
	files []FileInfo
	index int
	err   error
}

func (s *mockFileScanner) Next() (FileInfo, bool) {
	if s.err != nil {
		return FileInfo{}, false
	}

	s.index++
	if s.index >= len(s.files) {
		return FileInfo{}, false
	}

	return s.files[s.index], true
}

func (s *mockFileScanner) Err() error {
	return s.err
}

// clean normalizes p to an absolute slash path.
func clean(p string) string {
	return path.Clean("/" + p)
}
