// Package errors turns the raw errors of a move run into actionable ones.
//
// Each error is matched to a category (permission, disk space, path, and so
// on) and given suggestions the user can act on. The original error stays
// in the chain, so errors.Is and errors.As keep working on the result.
//
// Basic Usage:
//
//	enricher := errors.NewEnricher()
//	if err := fs.Remove(path); err != nil {
//	    enriched := enricher.Enrich(err, path)
//	    fmt.Println(enriched)
//	    fmt.Println(errors.FormatSuggestions(enriched))
//	}
//
// When no path is given the enricher tries to pull one out of the message,
// so "open /home/user/file.txt: permission denied" is attributed to
// /home/user/file.txt.
package errors

import (
	stderrors "errors"
	"strings"
)

// Exported constants.
const (
	CategoryConnection  ErrorCategory = "connection"
	CategoryCopy        ErrorCategory = "copy"
	CategoryDelete      ErrorCategory = "delete"
	CategoryDiskSpace   ErrorCategory = "disk_space"
	CategoryEnumeration ErrorCategory = "enumeration"
	CategoryPath        ErrorCategory = "path"
	CategoryPermission  ErrorCategory = "permission"
	CategoryUnknown     ErrorCategory = "unknown"
)

// ActionableError represents an error with actionable suggestions for the user.
type ActionableError interface {
	error
	Unwrap() error
	Category() ErrorCategory
	Suggestions() []string
	AffectedPath() string
}

// ErrorCategory represents the type of error that occurred.
type ErrorCategory string

// NewActionableError wraps cause with a category, suggestions and the path it concerns.
func NewActionableError(
	cause error,
	category ErrorCategory,
	suggestions []string,
	affectedPath string,
) ActionableError {
	return &actionableError{
		cause:        cause,
		category:     category,
		suggestions:  suggestions,
		affectedPath: affectedPath,
	}
}

// CategoryOf returns the category of the first ActionableError in err's chain,
// or CategoryUnknown.
func CategoryOf(err error) ErrorCategory {
	var actionable ActionableError
	if stderrors.As(err, &actionable) {
		return actionable.Category()
	}

	return CategoryUnknown
}

// FormatSuggestions formats the suggestions from an ActionableError as a bulleted list
// for display. Returns empty string if the error is nil or has no suggestions.
func FormatSuggestions(err error) string {
	if err == nil {
		return ""
	}

	var actionable ActionableError
	if !stderrors.As(err, &actionable) {
		return ""
	}

	suggestions := actionable.Suggestions()
	if len(suggestions) == 0 {
		return ""
	}

	var builder strings.Builder
	for i, suggestion := range suggestions {
		if i > 0 {
			builder.WriteString("\n")
		}
		builder.WriteString("  • ")
		builder.WriteString(suggestion)
	}

	return builder.String()
}

// actionableError is the concrete implementation of ActionableError.
type actionableError struct {
	cause        error
	category     ErrorCategory
	suggestions  []string
	affectedPath string
}

// AffectedPath returns the file path affected by this error.
func (e *actionableError) AffectedPath() string {
	return e.affectedPath
}

// Category returns the error category.
func (e *actionableError) Category() ErrorCategory {
	return e.category
}

// Error returns the message of the wrapped error unchanged.
func (e *actionableError) Error() string {
	if e.cause == nil {
		return string(e.category) + " error"
	}

	return e.cause.Error()
}

// Suggestions returns the list of actionable suggestions.
func (e *actionableError) Suggestions() []string {
	return e.suggestions
}

// Unwrap returns the wrapped error.
func (e *actionableError) Unwrap() error {
	return e.cause
}
