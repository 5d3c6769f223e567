package shared

import (
	"fmt"
	"strings"

	"github.com/joe/move-files/internal/moveengine"
	"github.com/joe/move-files/pkg/errors"
)

// ErrorLimit is how many failures of the latest run the dashboard lists.
const ErrorLimit = 3

// RenderErrorList renders up to limit failures with their suggestions.
// Paths longer than maxWidth are shortened from the left.
func RenderErrorList(failures []moveengine.EntryFailure, limit, maxWidth int) string {
	if len(failures) == 0 {
		return ""
	}

	var builder strings.Builder

	enricher := errors.NewEnricher()

	for i, failure := range failures {
		if i >= limit {
			fmt.Fprintf(&builder, "... and %d more error(s)\n", len(failures)-limit)

			break
		}

		enrichedErr := enricher.Enrich(failure.Err, failure.Path)

		fmt.Fprintf(&builder, "  %s %s\n", ErrorSymbol(), FileItemErrorStyle().Render(TruncateLeft(failure.Path, maxWidth)))

		errMsg := enrichedErr.Error()
		if maxWidth > 3 && len(errMsg) > maxWidth {
			errMsg = errMsg[:maxWidth-3] + "..."
		}

		fmt.Fprintf(&builder, "    %s\n", errMsg)

		suggestions := errors.FormatSuggestions(enrichedErr)
		if suggestions != "" {
			fmt.Fprintf(&builder, "    %s\n", strings.ReplaceAll(suggestions, "\n", "\n    "))
		}
	}

	return builder.String()
}

// ErrorSymbol returns the marker shown before a failed path
func ErrorSymbol() string {
	return ErrorStyle().Render("✗")
}

// TruncateLeft keeps the end of s, which for paths is the most specific part.
func TruncateLeft(s string, width int) string {
	runes := []rune(s)
	if width <= 3 || len(runes) <= width {
		return s
	}

	return "..." + string(runes[len(runes)-width+3:])
}
