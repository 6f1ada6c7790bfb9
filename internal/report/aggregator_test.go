package report

import (
	"strings"
	"testing"
	"time"

	"stockpile/internal/task"
)

func taskWithResults(source string, downloaded, failed int) *task.Task {
	now := time.Now()
	t := &task.Task{Source: source, Status: task.StatusFetched}
	for i := 0; i < downloaded; i++ {
		item := task.Item{URL: "u", FileName: "f"}
		t.Items = append(t.Items, item)
		t.Results = append(t.Results, task.Result{Item: item, DownloadedAt: &now})
	}
	for i := 0; i < failed; i++ {
		item := task.Item{URL: "u", FileName: "f"}
		t.Items = append(t.Items, item)
		t.Results = append(t.Results, task.Result{Item: item, Err: &task.ErrorInfo{Kind: task.ErrorTransport, Detail: "x"}})
	}
	return t
}

func TestAggregateCounters(t *testing.T) {
	tasks := []*task.Task{
		taskWithResults("a.xlsx", 2, 0),
		taskWithResults("b.xlsx", 1, 1),
		{Source: "c.xlsx", ValidationError: "Property 'Url' not found", Status: task.StatusValidationFailed},
	}
	tasks[1].TaskError = "zip failed: disk full"

	s := Aggregate(tasks, []string{"manifest d.xlsx disappeared mid-run"})

	if s.TotalItems != 4 {
		t.Fatalf("TotalItems = %d, want 4", s.TotalItems)
	}
	if s.TotalDownloaded != 3 {
		t.Fatalf("TotalDownloaded = %d, want 3", s.TotalDownloaded)
	}
	if s.TotalDownloadErrors != 1 {
		t.Fatalf("TotalDownloadErrors = %d, want 1", s.TotalDownloadErrors)
	}
	if s.TotalSystemErrors != 2 {
		t.Fatalf("TotalSystemErrors = %d, want 2", s.TotalSystemErrors)
	}
	if len(s.SystemErrors) != 2 {
		t.Fatalf("SystemErrors = %v", s.SystemErrors)
	}
}

func TestSubjectAndPriority(t *testing.T) {
	cases := []struct {
		name        string
		summary     RunSummary
		wantSubject string
		wantHigh    bool
	}{
		{
			name:        "all clean",
			summary:     RunSummary{TotalItems: 4, TotalDownloaded: 4},
			wantSubject: "4/4 files downloaded",
		},
		{
			name:        "singular file",
			summary:     RunSummary{TotalItems: 1, TotalDownloaded: 1},
			wantSubject: "1/1 file downloaded",
		},
		{
			name:        "one error",
			summary:     RunSummary{TotalItems: 2, TotalDownloaded: 1, TotalDownloadErrors: 1},
			wantSubject: "1/2 files downloaded, 1 error",
			wantHigh:    true,
		},
		{
			name:        "mixed errors",
			summary:     RunSummary{TotalItems: 5, TotalDownloaded: 2, TotalDownloadErrors: 2, TotalSystemErrors: 1},
			wantSubject: "2/5 files downloaded, 3 errors",
			wantHigh:    true,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.summary.Subject(); got != tc.wantSubject {
				t.Fatalf("Subject() = %q, want %q", got, tc.wantSubject)
			}
			wantPriority := PriorityNormal
			if tc.wantHigh {
				wantPriority = PriorityHigh
			}
			if got := tc.summary.Priority(); got != wantPriority {
				t.Fatalf("Priority() = %q, want %q", got, wantPriority)
			}
		})
	}
}

func TestHasErrorsIncludesValidationFailures(t *testing.T) {
	s := Aggregate([]*task.Task{
		{Source: "bad.xlsx", ValidationError: "Worksheet 'Sheet1' not found"},
	}, nil)
	if s.ErrorTotal() != 0 {
		t.Fatalf("ErrorTotal = %d", s.ErrorTotal())
	}
	if !s.HasErrors() {
		t.Fatal("validation failure should count as a run error")
	}
}

func TestBodyListsSystemErrorsVerbatim(t *testing.T) {
	s := Aggregate([]*task.Task{taskWithResults("a.xlsx", 1, 0)}, []string{"log folder vanished"})
	body := s.Body()
	if !strings.Contains(body, "log folder vanished") {
		t.Fatalf("body missing system error: %q", body)
	}
	if !strings.Contains(body, "a.xlsx") {
		t.Fatalf("body missing task row: %q", body)
	}
}

func TestBreakdownTableShowsOutcome(t *testing.T) {
	tk := taskWithResults("a.xlsx", 1, 0)
	tk.ArchiveOutcome = task.Created("/archives/a.zip")
	s := Aggregate([]*task.Task{tk}, nil)

	out := s.BreakdownTable()
	if !strings.Contains(out, "archived") {
		t.Fatalf("table missing outcome: %q", out)
	}
}
