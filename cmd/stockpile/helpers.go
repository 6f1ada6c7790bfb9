package main

import (
	"stockpile/internal/task"
)

func taskOutcome(t *task.Task) string {
	switch {
	case t.ValidationError != "":
		return t.ValidationError
	case t.ArchiveOutcome.State == task.ArchiveCreated:
		return "archived"
	case t.ArchiveOutcome.State == task.ArchiveSkipped:
		return "archive skipped: " + t.ArchiveOutcome.Reason
	case t.TaskError != "":
		return t.TaskError
	default:
		return string(t.Status)
	}
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
