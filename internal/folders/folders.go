// Package folders turns configured paths and URLs into opened folders for
// the move engine.
package folders

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"github.com/joe/move-files/internal/moveengine"
	"github.com/joe/move-files/pkg/fileops"
	"github.com/joe/move-files/pkg/filesystem"
)

// Exported variables.
var (
	ErrNotDirectory = errors.New("not a directory")
)

// OpenFunc opens the filesystem for a path or URL. It matches
// filesystem.Open.
type OpenFunc func(location string) (filesystem.FileSystem, string, func(), error)

// PathResolver resolves each role to a configured local path or sftp:// URL.
type PathResolver struct {
	mu    sync.Mutex
	paths map[moveengine.Role]string
	open  OpenFunc
}

// NewPathResolver creates a resolver for the given source and destination locations.
func NewPathResolver(source, destination string) *PathResolver {
	return &PathResolver{
		paths: map[moveengine.Role]string{
			moveengine.RoleSource:      source,
			moveengine.RoleDestination: destination,
		},
		open: filesystem.Open,
	}
}

// WithOpener replaces the function used to open locations.
func (r *PathResolver) WithOpener(open OpenFunc) *PathResolver {
	r.open = open
	return r
}

// SetPath changes the location used for role.
func (r *PathResolver) SetPath(role moveengine.Role, location string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.paths[role] = location
}

// Path returns the location configured for role.
func (r *PathResolver) Path(role moveengine.Role) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.paths[role]
}

// Resolve opens the folder for role. The source must be an existing
// directory; a missing destination is created.
func (r *PathResolver) Resolve(role moveengine.Role) (moveengine.Folder, error) {
	location := strings.TrimSpace(r.Path(role))
	if location == "" {
		return moveengine.Folder{}, moveengine.ErrSelectionCancelled
	}

	fs, root, closer, err := r.open(location)
	if errors.Is(err, filesystem.ErrUnsupportedScheme) {
		return moveengine.Folder{}, fmt.Errorf("%w: %w", moveengine.ErrUnsupportedEnvironment, err)
	}

	if err != nil {
		return moveengine.Folder{}, fmt.Errorf("failed to open %s: %w", location, err)
	}

	handle := moveengine.NewLocation(fs, root, closer)

	if role == moveengine.RoleSource {
		err = requireDir(fs, root)
	} else {
		err = fs.MkdirAll(root, fileops.DefaultDirPermissions)
	}

	if err != nil {
		handle.Close()
		return moveengine.Folder{}, fmt.Errorf("%s folder %s: %w", role, location, err)
	}

	return moveengine.Folder{
		DisplayPath: location,
		Name:        baseName(root),
		Handle:      handle,
	}, nil
}

func requireDir(fs filesystem.FileSystem, root string) error {
	info, err := fs.Stat(root)
	if err != nil {
		return err //nolint:wrapcheck // Wrapped by Resolve with the role and location
	}

	if !info.IsDir() {
		return ErrNotDirectory
	}

	return nil
}

func baseName(root string) string {
	name := path.Base(filepath.ToSlash(root))
	if name == "." || name == "/" {
		return root
	}

	return name
}

// PromptResolver asks for a location on a terminal each time a role is
// resolved, then opens it through a PathResolver. An empty answer or end of
// input cancels the selection.
type PromptResolver struct {
	in   *bufio.Reader
	out  io.Writer
	next *PathResolver
}

// NewPromptResolver reads answers from in and writes prompts to out.
func NewPromptResolver(in io.Reader, out io.Writer, next *PathResolver) *PromptResolver {
	return &PromptResolver{in: bufio.NewReader(in), out: out, next: next}
}

// Resolve prompts for the role's location.
func (p *PromptResolver) Resolve(role moveengine.Role) (moveengine.Folder, error) {
	_, _ = fmt.Fprintf(p.out, "Enter %s folder (blank to cancel): ", role)

	answer, err := p.in.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || answer == "") {
		return moveengine.Folder{}, moveengine.ErrSelectionCancelled
	}

	answer = strings.TrimSpace(answer)
	if answer == "" {
		return moveengine.Folder{}, moveengine.ErrSelectionCancelled
	}

	p.next.SetPath(role, answer)

	return p.next.Resolve(role)
}
