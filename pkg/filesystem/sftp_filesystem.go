package filesystem

import (
	"fmt"
	"os"
	"path"
	"sort"
)

// SFTPFileSystem implements FileSystem over a single SFTP session.
// Runs are serialized, so one client is enough.
type SFTPFileSystem struct {
	conn *SFTPConnection
}

// NewSFTPFileSystem creates a new SFTP filesystem using an established connection.
func NewSFTPFileSystem(conn *SFTPConnection) *SFTPFileSystem {
	return &SFTPFileSystem{conn: conn}
}

// Close closes the underlying connection.
func (fs *SFTPFileSystem) Close() error {
	return fs.conn.Close()
}

// Create creates a remote file for writing, truncating any existing file.
func (fs *SFTPFileSystem) Create(p string) (File, error) {
	file, err := fs.conn.Client().Create(p)
	if err != nil {
		return nil, fmt.Errorf("failed to create remote file %s: %w", p, err)
	}

	return file, nil
}

// Join joins path elements with forward slashes.
func (fs *SFTPFileSystem) Join(elem ...string) string {
	return path.Join(elem...)
}

// MkdirAll creates a remote directory and all necessary parents.
func (fs *SFTPFileSystem) MkdirAll(p string, _ os.FileMode) error {
	err := fs.conn.Client().MkdirAll(p)
	if err != nil {
		return fmt.Errorf("failed to create remote directory %s: %w", p, err)
	}

	return nil
}

// Open opens a remote file for reading.
func (fs *SFTPFileSystem) Open(p string) (File, error) {
	file, err := fs.conn.Client().Open(p)
	if err != nil {
		return nil, fmt.Errorf("failed to open remote file %s: %w", p, err)
	}

	return file, nil
}

// ReadDir lists the direct children of a remote directory.
func (fs *SFTPFileSystem) ReadDir(p string) ([]DirEntry, error) {
	infos, err := fs.conn.Client().ReadDir(p)
	if err != nil {
		return nil, fmt.Errorf("failed to read remote directory %s: %w", p, err)
	}

	entries := make([]DirEntry, 0, len(infos))
	for _, info := range infos {
		entries = append(entries, DirEntry{Name: info.Name(), IsDir: info.IsDir()})
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })

	return entries, nil
}

// Remove removes a remote file or empty directory.
func (fs *SFTPFileSystem) Remove(p string) error {
	err := fs.conn.Client().Remove(p)
	if err != nil {
		return fmt.Errorf("failed to remove remote file %s: %w", p, err)
	}

	return nil
}

// RemoveAll removes a remote path and any children it contains.
func (fs *SFTPFileSystem) RemoveAll(p string) error {
	err := fs.conn.Client().RemoveAll(p)
	if err != nil {
		return fmt.Errorf("failed to remove remote directory %s: %w", p, err)
	}

	return nil
}

// Scan returns an iterator over all entries in a remote directory tree.
func (fs *SFTPFileSystem) Scan(p string) FileScanner {
	return newWalkerScanner(fs.conn.Client().Walk(p), p)
}

// Stat returns file information for a remote file.
func (fs *SFTPFileSystem) Stat(p string) (os.FileInfo, error) {
	info, err := fs.conn.Client().Stat(p)
	if err != nil {
		return nil, fmt.Errorf("failed to stat remote file %s: %w", p, err)
	}

	return info, nil
}
