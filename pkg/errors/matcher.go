package errors

import "strings"

// PatternMatcher matches error messages to categories using string patterns.
type PatternMatcher interface {
	Match(errorMsg string) ErrorCategory
}

// NewPatternMatcher creates a new PatternMatcher with predefined patterns.
// Rules are checked in order, so a message like
// "failed to read directory /x: permission denied" is a permission error
// rather than an enumeration error.
func NewPatternMatcher() PatternMatcher {
	return &patternMatcher{
		rules: []matchRule{
			{CategoryConnection, []string{
				"ssh connection failed",
				"sftp session creation failed",
				"no ssh authentication methods",
				"connection refused",
				"connection reset",
				"broken pipe",
				"connection lost",
			}},
			{CategoryDiskSpace, []string{
				"no space left on device",
				"disk full",
				"quota exceeded",
			}},
			{CategoryPermission, []string{
				"permission denied",
				"access denied",
				"operation not permitted",
				"read-only file system",
			}},
			{CategoryDelete, []string{
				"directory not empty",
				"cannot remove",
				"failed to remove",
			}},
			{CategoryPath, []string{
				"no such file or directory",
				"file does not exist",
				"file not found",
				"path does not exist",
				"not a directory",
			}},
			{CategoryCopy, []string{
				"short write",
				"input/output error",
				"i/o error",
				"failed to copy",
			}},
			{CategoryEnumeration, []string{
				"failed to read directory",
				"failed to read remote directory",
				"error scanning",
			}},
		},
	}
}

type matchRule struct {
	category ErrorCategory
	patterns []string
}

// patternMatcher is the concrete implementation of PatternMatcher.
type patternMatcher struct {
	rules []matchRule
}

// Match returns the category of the first rule with a pattern contained in errorMsg.
func (m *patternMatcher) Match(errorMsg string) ErrorCategory {
	lowerMsg := strings.ToLower(errorMsg)

	for _, rule := range m.rules {
		for _, pattern := range rule.patterns {
			if strings.Contains(lowerMsg, pattern) {
				return rule.category
			}
		}
	}

	return CategoryUnknown
}
