package report

import (
	"fmt"

	"stockpile/internal/task"
)

// RunSummary aggregates all tasks of one execution. It is built once,
// after every task reached a terminal state; there are no concurrent
// writers.
type RunSummary struct {
	TotalItems          int
	TotalDownloaded     int
	TotalDownloadErrors int
	TotalSystemErrors   int

	Tasks []*task.Task

	// SystemErrors lists every non-item error verbatim for the
	// notification body.
	SystemErrors []string
}

// Aggregate reduces completed tasks plus run-level errors into a summary.
// Validation-failed tasks contribute zero items but are still listed.
func Aggregate(tasks []*task.Task, runErrors []string) *RunSummary {
	summary := &RunSummary{Tasks: tasks}

	for _, t := range tasks {
		if t.ValidationError == "" {
			summary.TotalItems += len(t.Items)
		}
		summary.TotalDownloaded += t.DownloadedCount()
		summary.TotalDownloadErrors += t.ErrorCount()
		if t.TaskError != "" {
			summary.TotalSystemErrors++
			summary.SystemErrors = append(summary.SystemErrors, fmt.Sprintf("%s: %s", t.Source, t.TaskError))
		}
	}

	summary.TotalSystemErrors += len(runErrors)
	summary.SystemErrors = append(summary.SystemErrors, runErrors...)
	return summary
}

// ErrorTotal is the combined count driving priority elevation.
func (s *RunSummary) ErrorTotal() int {
	return s.TotalDownloadErrors + s.TotalSystemErrors
}

// HasErrors reports whether anything in the run went wrong, including
// task validation failures.
func (s *RunSummary) HasErrors() bool {
	if s.ErrorTotal() > 0 {
		return true
	}
	for _, t := range s.Tasks {
		if t.ValidationError != "" {
			return true
		}
	}
	return false
}
