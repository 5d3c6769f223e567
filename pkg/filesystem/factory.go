package filesystem

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Open returns the filesystem a location lives on and the root to use with
// it. Local paths are made absolute and a leading "~/" is expanded. For
// sftp:// locations the returned closer drops the connection; it is nil for
// local paths.
func Open(location string) (FileSystem, string, func(), error) {
	parsed, err := ParsePath(location)
	if err != nil {
		return nil, "", nil, err
	}

	if !parsed.IsRemote {
		root, err := absLocal(parsed.LocalPath)
		if err != nil {
			return nil, "", nil, err
		}

		return NewRealFileSystem(), root, nil, nil
	}

	conn, err := Connect(parsed.Host, parsed.Port, parsed.User)
	if err != nil {
		return nil, "", nil, fmt.Errorf("failed to connect to %s@%s:%d: %w",
			parsed.User, parsed.Host, parsed.Port, err)
	}

	remote := NewSFTPFileSystem(conn)

	return remote, parsed.Path, func() { _ = remote.Close() }, nil
}

func absLocal(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to expand %s: %w", path, err)
		}

		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	return abs, nil
}
