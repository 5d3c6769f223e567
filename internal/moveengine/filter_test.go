//nolint:varnamelen // Test files use idiomatic short variable names (t, tt, etc.)
package moveengine_test

import (
	"testing"

	. "github.com/onsi/gomega" //nolint:revive // Dot import is idiomatic for Gomega matchers

	"github.com/joe/move-files/internal/moveengine"
)

func TestNewExcludeFilter_InvalidPattern(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	_, err := moveengine.NewExcludeFilter("[invalid")
	g.Expect(err).To(HaveOccurred())
	g.Expect(err.Error()).To(ContainSubstring("[invalid"))
}

func TestExcludeFilter_NoPatternsIncludesEverything(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	filter, err := moveengine.NewExcludeFilter("", "")
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(filter.Patterns()).To(BeEmpty())
	g.Expect(filter.ShouldInclude("any/file.txt")).To(BeTrue())
}

//nolint:funlen // Table-driven test cases
func TestExcludeFilter_ShouldInclude(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		patterns []string
		path     string
		included bool
	}{
		{"extension at top level", []string{"*.tmp"}, "upload.tmp", false},
		{"single star does not cross folders", []string{"*.tmp"}, "sub/upload.tmp", true},
		{"double star matches any depth", []string{"**/*.tmp"}, "a/b/c/upload.tmp", false},
		{"double star matches top level", []string{"**/*.tmp"}, "upload.tmp", false},
		{"other extension kept", []string{"**/*.tmp"}, "report.pdf", true},
		{"uppercase pattern", []string{"*.TMP"}, "upload.tmp", false},
		{"uppercase path", []string{"*.tmp"}, "UPLOAD.TMP", false},
		{"folder name", []string{"cache"}, "cache", false},
		{"folder name does not match prefix", []string{"cache"}, "cached", true},
		{"hidden files", []string{"**/.*"}, "sub/.DS_Store", false},
		{"alternatives", []string{"*.{part,crdownload}"}, "movie.crdownload", false},
		{"any of several patterns", []string{"*.log", "*.tmp"}, "x.tmp", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			g := NewWithT(t)

			filter, err := moveengine.NewExcludeFilter(tt.patterns...)
			g.Expect(err).ToNot(HaveOccurred())
			g.Expect(filter.ShouldInclude(tt.path)).To(Equal(tt.included))
		})
	}
}
