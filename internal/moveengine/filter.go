package moveengine

import (
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// FileFilter decides which source entries take part in a run.
type FileFilter interface {
	// ShouldInclude returns true if the entry at the given relative path should be moved
	ShouldInclude(relativePath string) bool
}

// ExcludeFilter leaves entries matching any of its glob patterns in place.
// Matching is case-insensitive and uses doublestar syntax, so "**/*.tmp"
// matches temporary files at any depth and "cache" matches a top-level
// folder together with everything below it.
type ExcludeFilter struct {
	patterns []string
}

// NewExcludeFilter validates patterns and builds a filter. No patterns includes everything.
func NewExcludeFilter(patterns ...string) (*ExcludeFilter, error) {
	normalized := make([]string, 0, len(patterns))

	for _, pattern := range patterns {
		if pattern == "" {
			continue
		}

		lower := strings.ToLower(pattern)
		if !doublestar.ValidatePattern(lower) {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", pattern, doublestar.ErrBadPattern)
		}

		normalized = append(normalized, lower)
	}

	return &ExcludeFilter{patterns: normalized}, nil
}

// Patterns returns the normalized patterns.
func (f *ExcludeFilter) Patterns() []string {
	return append([]string(nil), f.patterns...)
}

// ShouldInclude returns false when relativePath matches an exclude pattern.
func (f *ExcludeFilter) ShouldInclude(relativePath string) bool {
	normalizedPath := strings.ToLower(relativePath)

	for _, pattern := range f.patterns {
		if matched, err := doublestar.Match(pattern, normalizedPath); err == nil && matched {
			return false
		}
	}

	return true
}

type includeAll struct{}

func (includeAll) ShouldInclude(string) bool { return true }
