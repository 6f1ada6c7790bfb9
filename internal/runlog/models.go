package runlog

import "time"

// RunRecord is one persisted run.
type RunRecord struct {
	ID             string
	Mode           string
	StartedAt      time.Time
	FinishedAt     time.Time
	TotalItems     int
	Downloaded     int
	DownloadErrors int
	SystemErrors   int
	Subject        string
	Tasks          []TaskRecord
}

// TaskRecord is one task row inside a persisted run.
type TaskRecord struct {
	Source       string
	Items        int
	Downloaded   int
	Errors       int
	Outcome      string
	OutputFolder string
}
