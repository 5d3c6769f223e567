package folders_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	. "github.com/onsi/gomega" //nolint:revive // Dot import is idiomatic for Gomega matchers

	"github.com/joe/move-files/internal/folders"
	"github.com/joe/move-files/internal/moveengine"
	"github.com/joe/move-files/pkg/filesystem"
)

func TestPathResolver_EmptyPathIsCancelled(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	_, err := folders.NewPathResolver("", "  ").Resolve(moveengine.RoleSource)
	g.Expect(err).To(MatchError(moveengine.ErrSelectionCancelled))
}

func TestPathResolver_UnknownSchemeIsUnsupported(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	_, err := folders.NewPathResolver("smb://server/share", "").Resolve(moveengine.RoleSource)
	g.Expect(err).To(MatchError(moveengine.ErrUnsupportedEnvironment))
	g.Expect(err).To(MatchError(filesystem.ErrUnsupportedScheme))
}

func TestPathResolver_LocalSource(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	dir := filepath.Join(t.TempDir(), "inbox")
	g.Expect(os.Mkdir(dir, 0o750)).To(Succeed())

	folder, err := folders.NewPathResolver(dir, "").Resolve(moveengine.RoleSource)
	g.Expect(err).ToNot(HaveOccurred())
	defer folder.Handle.Close()

	g.Expect(folder.DisplayPath).To(Equal(dir))
	g.Expect(folder.Name).To(Equal("inbox"))
	g.Expect(folder.Handle.Root).To(Equal(dir))
	g.Expect(folder.Handle.FS).ToNot(BeNil())
}

func TestPathResolver_SourceMustBeAnExistingDirectory(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	base := t.TempDir()
	file := filepath.Join(base, "file.txt")
	g.Expect(os.WriteFile(file, []byte("x"), 0o600)).To(Succeed())

	_, err := folders.NewPathResolver(filepath.Join(base, "missing"), "").Resolve(moveengine.RoleSource)
	g.Expect(err).To(MatchError(os.ErrNotExist))

	_, err = folders.NewPathResolver(file, "").Resolve(moveengine.RoleSource)
	g.Expect(err).To(MatchError(folders.ErrNotDirectory))
}

func TestPathResolver_DestinationIsCreated(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	dest := filepath.Join(t.TempDir(), "archive", "2024")

	folder, err := folders.NewPathResolver("", dest).Resolve(moveengine.RoleDestination)
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(folder.Name).To(Equal("2024"))

	info, err := os.Stat(dest)
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(info.IsDir()).To(BeTrue())
}

func TestPathResolver_ClosesHandleOnFailure(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	mock := filesystem.NewMockFileSystem()
	closed := 0

	resolver := folders.NewPathResolver("sftp://me@nas/inbox", "").
		WithOpener(func(string) (filesystem.FileSystem, string, func(), error) {
			return mock, "/inbox", func() { closed++ }, nil
		})

	_, err := resolver.Resolve(moveengine.RoleSource)
	g.Expect(err).To(HaveOccurred())
	g.Expect(closed).To(Equal(1))

	mock.AddDir("/inbox")
	folder, err := resolver.Resolve(moveengine.RoleSource)
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(folder.DisplayPath).To(Equal("sftp://me@nas/inbox"))
	g.Expect(closed).To(Equal(1))
}

func TestPathResolver_OpenFailure(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	refused := errors.New("ssh connection failed: connection refused")
	resolver := folders.NewPathResolver("", "sftp://me@nas/out").
		WithOpener(func(string) (filesystem.FileSystem, string, func(), error) {
			return nil, "", nil, refused
		})

	_, err := resolver.Resolve(moveengine.RoleDestination)
	g.Expect(err).To(MatchError(refused))
	g.Expect(err).ToNot(MatchError(moveengine.ErrUnsupportedEnvironment))
}

func TestPromptResolver(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	tests := []struct {
		name      string
		input     string
		cancelled bool
	}{
		{"answer", dir + "\n", false},
		{"answer without newline", dir, false},
		{"blank answer", "\n", true},
		{"end of input", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			g := NewWithT(t)

			var out strings.Builder
			paths := folders.NewPathResolver("", "")
			prompt := folders.NewPromptResolver(strings.NewReader(tt.input), &out, paths)

			folder, err := prompt.Resolve(moveengine.RoleSource)
			g.Expect(out.String()).To(ContainSubstring("source folder"))

			if tt.cancelled {
				g.Expect(err).To(MatchError(moveengine.ErrSelectionCancelled))
				return
			}

			g.Expect(err).ToNot(HaveOccurred())
			g.Expect(folder.DisplayPath).To(Equal(dir))
			g.Expect(paths.Path(moveengine.RoleSource)).To(Equal(dir))
		})
	}
}
