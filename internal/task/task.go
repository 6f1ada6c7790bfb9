package task

// Status tracks a task through its lifecycle. Tasks never move backward
// and are not revisited once terminal.
type Status string

const (
	StatusCreated          Status = "created"
	StatusValidating       Status = "validating"
	StatusValidationFailed Status = "validation_failed"
	StatusSourceUnreadable Status = "source_unreadable"
	StatusFetching         Status = "fetching"
	StatusFetched          Status = "fetched"
	StatusArchiving        Status = "archiving"
	StatusArchived         Status = "archived"
	StatusArchiveSkipped   Status = "archive_skipped"
	StatusArchiveFailed    Status = "archive_failed"
)

// Terminal reports whether a task in this status is finished.
func (s Status) Terminal() bool {
	switch s {
	case StatusValidationFailed, StatusSourceUnreadable, StatusArchived, StatusArchiveSkipped, StatusArchiveFailed:
		return true
	}
	return false
}

// ArchiveState enumerates the outcome of the archive gate.
type ArchiveState int

const (
	ArchiveNotAttempted ArchiveState = iota
	ArchiveCreated
	ArchiveSkipped
)

// ArchiveOutcome records the gate's decision for one task.
type ArchiveOutcome struct {
	State  ArchiveState
	Path   string
	Reason string
}

// Created marks a successfully written archive.
func Created(path string) ArchiveOutcome {
	return ArchiveOutcome{State: ArchiveCreated, Path: path}
}

// Skipped marks an archive that was deliberately not produced.
func Skipped(reason string) ArchiveOutcome {
	return ArchiveOutcome{State: ArchiveSkipped, Reason: reason}
}

// Task is one manifest's unit of work and the fault-isolation boundary: a
// malformed manifest poisons only its own task, never the run.
type Task struct {
	// Source identifies the manifest this task was built from.
	Source string
	// Worksheet is the sheet name the rows were read from.
	Worksheet string
	// OutputFolder is owned exclusively by this task for the run.
	OutputFolder string

	Items []Item
	// ValidationError is set when the manifest failed structural
	// validation; Items is then empty and no fetch occurs.
	ValidationError string
	// Results has the same cardinality as Items once fetching finished.
	Results []Result

	ArchiveOutcome ArchiveOutcome
	// TaskError records failures outside per-item fetch and validation,
	// such as folder creation or archiver invocation problems.
	TaskError string

	Status Status
}

// DownloadedCount returns the number of successfully fetched items.
func (t *Task) DownloadedCount() int {
	n := 0
	for _, r := range t.Results {
		if r.Downloaded() {
			n++
		}
	}
	return n
}

// ErrorCount returns the number of failed items.
func (t *Task) ErrorCount() int {
	n := 0
	for _, r := range t.Results {
		if r.Err != nil {
			n++
		}
	}
	return n
}

// AllDownloaded reports whether every item produced a successful result.
// False for tasks with no items or missing results.
func (t *Task) AllDownloaded() bool {
	if len(t.Items) == 0 || len(t.Results) != len(t.Items) {
		return false
	}
	for _, r := range t.Results {
		if !r.Downloaded() {
			return false
		}
	}
	return true
}
