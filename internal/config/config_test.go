//nolint:varnamelen // Test files use idiomatic short variable names (t, tt, etc.)
package config_test

import (
	"path/filepath"
	"testing"

	. "github.com/onsi/gomega" //nolint:revive // Dot import is idiomatic for Gomega matchers

	"github.com/joe/move-files/internal/config"
	"github.com/joe/move-files/pkg/filesystem"
)

// validConfig returns a config with file locations set so tests do not depend on $HOME.
func validConfig(t *testing.T) *config.Config {
	t.Helper()

	dir := t.TempDir()

	return &config.Config{
		SettingsPath: filepath.Join(dir, "settings.yaml"),
		HistoryDB:    filepath.Join(dir, "history.db"),
		HistoryLimit: 20,
		LogLevel:     "info",
		LogFormat:    "console",
	}
}

func TestModeString(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	g.Expect(config.ModeOnce.String()).To(Equal("once"))
	g.Expect(config.ModeMonitor.String()).To(Equal("monitor"))
	g.Expect(config.ModeInteractive.String()).To(Equal("interactive"))
	g.Expect(config.ModeHistory.String()).To(Equal("history"))
	g.Expect(config.Mode(99).String()).To(Equal("unknown"))
}

func TestConfigDescriptionAndVersion(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	cfg := config.Config{}
	g.Expect(cfg.Description()).ToNot(BeEmpty())
	g.Expect(cfg.Version()).To(HavePrefix("move-files"))
}

func TestConfigMode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		edit func(*config.Config)
		want config.Mode
	}{
		{"no paths means dashboard", func(*config.Config) {}, config.ModeInteractive},
		{"paths mean one run", func(c *config.Config) { c.SourcePath, c.DestPath = "/a", "/b" }, config.ModeOnce},
		{"monitor without paths uses saved folders", func(c *config.Config) { c.Monitor = true }, config.ModeMonitor},
		{"monitor with paths", func(c *config.Config) { c.SourcePath, c.Monitor = "/a", true }, config.ModeMonitor},
		{"interactive wins over monitor", func(c *config.Config) { c.Monitor, c.InteractiveMode = true, true }, config.ModeInteractive},
		{"history wins over everything", func(c *config.Config) { c.InteractiveMode, c.ShowHistory = true, true }, config.ModeHistory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := &config.Config{}
			tt.edit(cfg)
			NewWithT(t).Expect(cfg.Mode()).To(Equal(tt.want))
		})
	}
}

//nolint:funlen // Table-driven test cases
func TestPostProcessConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		edit    func(*config.Config)
		wantErr string
	}{
		{"defaults are valid", func(*config.Config) {}, ""},
		{"interval lower bound", func(c *config.Config) { c.IntervalSeconds = 1 }, ""},
		{"interval upper bound", func(c *config.Config) { c.IntervalSeconds = 60 }, ""},
		{"interval too long", func(c *config.Config) { c.IntervalSeconds = 61 }, "interval must be between 1 and 60"},
		{"negative interval", func(c *config.Config) { c.IntervalSeconds = -5 }, "interval must be between 1 and 60"},
		{"json logs", func(c *config.Config) { c.LogFormat = "JSON" }, ""},
		{"unknown log format", func(c *config.Config) { c.LogFormat = "xml" }, "log format"},
		{"history limit", func(c *config.Config) { c.HistoryLimit = 0 }, "history limit"},
		{"valid excludes", func(c *config.Config) { c.Exclude = []string{"**/*.tmp", "cache"} }, ""},
		{"bad exclude", func(c *config.Config) { c.Exclude = []string{"[oops"} }, "invalid exclude pattern"},
		{"sftp source", func(c *config.Config) { c.SourcePath = "sftp://me@nas:2222/inbox" }, ""},
		{"sftp without user", func(c *config.Config) { c.DestPath = "sftp://nas/inbox" }, "must include username"},
		{"unsupported scheme", func(c *config.Config) { c.SourcePath = "ftp://nas/inbox" }, "unsupported location scheme"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			g := NewWithT(t)

			cfg := validConfig(t)
			tt.edit(cfg)

			got, err := config.PostProcessConfig(cfg)
			if tt.wantErr == "" {
				g.Expect(err).ToNot(HaveOccurred())
				g.Expect(got).To(BeIdenticalTo(cfg))

				return
			}

			g.Expect(err).To(MatchError(config.ErrInvalidConfig))
			g.Expect(err.Error()).To(ContainSubstring(tt.wantErr))
		})
	}
}

func TestPostProcessConfig_UnsupportedSchemeKeepsSentinel(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	cfg := validConfig(t)
	cfg.SourcePath = "smb://server/share"

	_, err := config.PostProcessConfig(cfg)
	g.Expect(err).To(MatchError(filesystem.ErrUnsupportedScheme))
}

func TestPostProcessConfig_NormalizesLogFormat(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	cfg := validConfig(t)
	cfg.LogFormat = "JSON"

	got, err := config.PostProcessConfig(cfg)
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(got.LogFormat).To(Equal("json"))
}

func TestPostProcessConfig_DefaultLocations(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	g := NewWithT(t)

	cfg := &config.Config{HistoryLimit: 20, LogFormat: "console"}

	got, err := config.PostProcessConfig(cfg)
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(got.SettingsPath).To(HaveSuffix(filepath.Join(".config", "move-files", "settings.yaml")))
	g.Expect(got.HistoryDB).To(HaveSuffix(filepath.Join(".config", "move-files", "history.db")))
}
