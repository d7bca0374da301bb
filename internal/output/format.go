// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"

	"taskman/internal/projection"
	"taskman/internal/service"
)

const (
	// ListSeparator is the separator line under the list header.
	ListSeparator = "------------"

	// descriptionIndent lines a description up under the title.
	descriptionIndent = "            "
)

// FormatTask formats one task.
// Format: "{ID:>4}  [x] {TITLE}\n", then the description (if any) indented under the title.
func FormatTask(w io.Writer, task service.Task) {
	fmt.Fprintf(w, "%4s  %s %s\n", task.ID, Checkbox(task.Completed), NormalizeTitle(task.Title))
	if desc := normalizeText(task.Description); desc != "" {
		fmt.Fprintf(w, "%s%s\n", descriptionIndent, desc)
	}
}

// FormatHeader formats the list header: how many tasks are shown and how
// they are filtered and sorted.
func FormatHeader(w io.Writer, shown, total int, filter projection.Filter, sort projection.Sort) {
	fmt.Fprintf(w, "%d of %d tasks (filter: %s, sort: %s %s)\n", shown, total, filter, sort.Field, sort.Order)
	fmt.Fprintln(w, ListSeparator)
}

// FormatTasks formats a header and the given tasks.
func FormatTasks(w io.Writer, tasks []service.Task, total int, filter projection.Filter, sort projection.Sort) {
	FormatHeader(w, len(tasks), total, filter, sort)
	if len(tasks) == 0 {
		fmt.Fprintln(w, "no tasks")
		return
	}
	for _, task := range tasks {
		FormatTask(w, task)
	}
}

// Checkbox renders the completion state.
func Checkbox(completed bool) string {
	if completed {
		return "[x]"
	}
	return "[ ]"
}

// NormalizeTitle normalizes a task title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func NormalizeTitle(title string) string {
	title = normalizeText(title)
	if title == "" {
		return "(untitled)"
	}
	return title
}

// normalizeText flattens newlines and trims surrounding space.
func normalizeText(s string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.TrimSpace(s)
}
