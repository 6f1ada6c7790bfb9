package report

import "fmt"

// Priority signals how the notification should be flagged.
type Priority string

const (
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

// Priority is elevated whenever any download or system error occurred.
func (s *RunSummary) Priority() Priority {
	if s.ErrorTotal() > 0 {
		return PriorityHigh
	}
	return PriorityNormal
}

// Subject renders the notification subject, for example
// "3/4 files downloaded, 1 error".
func (s *RunSummary) Subject() string {
	subject := fmt.Sprintf("%d/%d %s downloaded",
		s.TotalDownloaded, s.TotalItems, pluralize(s.TotalItems, "file", "files"))
	if errs := s.ErrorTotal(); errs > 0 {
		subject += fmt.Sprintf(", %d %s", errs, pluralize(errs, "error", "errors"))
	}
	return subject
}

func pluralize(n int, singular, plural string) string {
	if n == 1 {
		return singular
	}
	return plural
}
