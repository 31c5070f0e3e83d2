package output

import (
	"fmt"
	"strings"

	"github.com/jiralite/jl/internal/models"
)

// Checklist renders an issue's subtasks as an indented checklist with
// box-drawing connectors, one line per subtask.
func Checklist(subtasks []models.Subtask) string {
	lines := ChecklistLines(subtasks)
	return strings.Join(lines, "\n")
}

// ChecklistLines renders subtasks as individual lines, useful when the
// checklist is embedded in larger output.
func ChecklistLines(subtasks []models.Subtask) []string {
	var lines []string
	for i, st := range subtasks {
		connector := "├── "
		if i == len(subtasks)-1 {
			connector = "└── "
		}
		mark := "☐"
		if st.IsCompleted {
			mark = "✓"
		}
		lines = append(lines, fmt.Sprintf("%s%s %s", connector, mark, st.Title))
	}
	return lines
}

// Progress renders an "m/n done" summary for a subtask list, or ""
// when there are no subtasks.
func Progress(subtasks []models.Subtask) string {
	if len(subtasks) == 0 {
		return ""
	}
	done := 0
	for _, st := range subtasks {
		if st.IsCompleted {
			done++
		}
	}
	return fmt.Sprintf("%d/%d done", done, len(subtasks))
}
