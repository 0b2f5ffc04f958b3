package conflicts

import (
	"fmt"
	"strings"

	"aqevent/pkg/model"
)

const (
	summaryClear       = "No conflicts detected. Event can be submitted."
	summaryUnavailable = "Conflict detection temporarily unavailable"
)

// Summarize renders "2 conflicts found, 1 warning" style text.
func Summarize(conflicts, warnings int) string {
	if conflicts == 0 && warnings == 0 {
		return summaryClear
	}
	var parts []string
	if conflicts > 0 {
		parts = append(parts, fmt.Sprintf("%d %s found", conflicts, plural(conflicts, "conflict")))
	}
	if warnings > 0 {
		parts = append(parts, fmt.Sprintf("%d %s", warnings, plural(warnings, "warning")))
	}
	return strings.Join(parts, ", ")
}

func plural(n int, word string) string {
	if n > 1 {
		return word + "s"
	}
	return word
}

// Unavailable is the fail-open result returned when the corpus cannot be read.
func Unavailable(err error) *model.ConflictResult {
	return &model.ConflictResult{
		HasConflicts: false,
		HasWarnings:  true,
		Conflicts:    []model.Issue{},
		Warnings: []model.Issue{{
			Type:     model.IssueSystem,
			Severity: model.SeverityMedium,
			Message:  fmt.Sprintf("Unable to check for conflicts: %v", err),
		}},
		Suggestions: []model.Suggestion{},
		Summary:     summaryUnavailable,
	}
}
