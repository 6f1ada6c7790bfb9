package runner

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"stockpile/internal/archive"
	"stockpile/internal/fileutil"
	"stockpile/internal/report"
	"stockpile/internal/task"
	"stockpile/internal/testsupport"
)

type spyNotifier struct {
	summaries     []*report.RunSummary
	setupFailures []error
}

func (s *spyNotifier) NotifyRunSummary(_ context.Context, summary *report.RunSummary) error {
	s.summaries = append(s.summaries, summary)
	return nil
}

func (s *spyNotifier) NotifySetupFailure(_ context.Context, failure error) error {
	s.setupFailures = append(s.setupFailures, failure)
	return nil
}

func (s *spyNotifier) TestNotification(context.Context) error { return nil }

func newFileServer(t *testing.T, hits *atomic.Int64) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			hits.Add(1)
		}
		if strings.HasPrefix(r.URL.Path, "/missing") {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("payload for " + r.URL.Path))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestExecuteArchivesWhenAllItemsDownload(t *testing.T) {
	server := newFileServer(t, nil)
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedArchiver())
	manifestPath := filepath.Join(testsupport.BaseDir(cfg), "invoices.xlsx")
	testsupport.SimpleManifest(t, manifestPath, cfg.Manifest.Worksheet,
		server.URL+"/a", server.URL+"/b")

	notifier := &spyNotifier{}
	r := New(cfg, nil, WithNotifier(notifier))
	summary, err := r.Execute(context.Background(), ModeRun, manifestPath)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if summary.TotalItems != 2 || summary.TotalDownloaded != 2 {
		t.Fatalf("summary = %d/%d, want 2/2", summary.TotalDownloaded, summary.TotalItems)
	}
	if summary.HasErrors() {
		t.Fatalf("unexpected errors: %+v", summary)
	}

	tk := summary.Tasks[0]
	if tk.Status != task.StatusArchived {
		t.Fatalf("status = %s, want %s", tk.Status, task.StatusArchived)
	}
	wantArchive := filepath.Join(cfg.Paths.ArchiveDir, "invoices.zip")
	if tk.ArchiveOutcome.Path != wantArchive {
		t.Fatalf("archive path = %s, want %s", tk.ArchiveOutcome.Path, wantArchive)
	}
	if _, statErr := os.Stat(wantArchive); statErr != nil {
		t.Fatalf("archive not written: %v", statErr)
	}
	for _, name := range []string{"f0.bin", "f1.bin"} {
		if _, statErr := os.Stat(filepath.Join(tk.OutputFolder, name)); statErr != nil {
			t.Fatalf("downloaded file %s missing: %v", name, statErr)
		}
	}

	if len(notifier.summaries) != 1 {
		t.Fatalf("summary notifications = %d, want 1", len(notifier.summaries))
	}
	reports, globErr := filepath.Glob(filepath.Join(cfg.Paths.ReportDir, "*.xlsx"))
	if globErr != nil || len(reports) != 1 {
		t.Fatalf("report artifacts = %v (err %v), want exactly one", reports, globErr)
	}
}

func TestExecuteSkipsArchiveOnPartialFailure(t *testing.T) {
	server := newFileServer(t, nil)
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedArchiver())
	manifestPath := filepath.Join(testsupport.BaseDir(cfg), "mixed.xlsx")
	testsupport.SimpleManifest(t, manifestPath, cfg.Manifest.Worksheet,
		server.URL+"/ok", server.URL+"/missing")

	r := New(cfg, nil)
	summary, err := r.Execute(context.Background(), ModeRun, manifestPath)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if summary.TotalDownloaded != 1 || summary.TotalDownloadErrors != 1 {
		t.Fatalf("downloaded/errors = %d/%d, want 1/1",
			summary.TotalDownloaded, summary.TotalDownloadErrors)
	}
	tk := summary.Tasks[0]
	if tk.Status != task.StatusArchiveSkipped {
		t.Fatalf("status = %s, want %s", tk.Status, task.StatusArchiveSkipped)
	}
	if entries, _ := filepath.Glob(filepath.Join(cfg.Paths.ArchiveDir, "*.zip")); len(entries) != 0 {
		t.Fatalf("no archive expected, found %v", entries)
	}

	marker, readErr := os.ReadFile(fileutil.FailureMarkerPath(tk.OutputFolder))
	if readErr != nil {
		t.Fatalf("read failure marker: %v", readErr)
	}
	if !strings.Contains(string(marker), archive.MarkerNoArchive) {
		t.Fatalf("marker = %q, want it to contain %q", marker, archive.MarkerNoArchive)
	}
	if summary.Priority() != report.PriorityHigh {
		t.Fatalf("priority = %v, want high", summary.Priority())
	}
}

func TestExecuteValidationFailureFetchesNothing(t *testing.T) {
	var hits atomic.Int64
	server := newFileServer(t, &hits)
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedArchiver())
	manifestPath := filepath.Join(testsupport.BaseDir(cfg), "broken.xlsx")
	testsupport.WriteManifest(t, manifestPath, cfg.Manifest.Worksheet, [][]string{
		{"Url"},
		{server.URL + "/a"},
	})

	r := New(cfg, nil)
	summary, err := r.Execute(context.Background(), ModeRun, manifestPath)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if got := hits.Load(); got != 0 {
		t.Fatalf("server hits = %d, want 0", got)
	}
	tk := summary.Tasks[0]
	if tk.ValidationError != "Property 'FileName' not found" {
		t.Fatalf("validation error = %q", tk.ValidationError)
	}
	marker, readErr := os.ReadFile(fileutil.FailureMarkerPath(tk.OutputFolder))
	if readErr != nil {
		t.Fatalf("read failure marker: %v", readErr)
	}
	if !strings.Contains(string(marker), "Property 'FileName' not found") {
		t.Fatalf("marker = %q", marker)
	}
	if !summary.HasErrors() {
		t.Fatal("summary should report errors")
	}
}

func TestExecuteMissingWorksheet(t *testing.T) {
	server := newFileServer(t, nil)
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedArchiver())
	cfg.Manifest.Worksheet = "Expected"
	manifestPath := filepath.Join(testsupport.BaseDir(cfg), "wrong-sheet.xlsx")
	testsupport.SimpleManifest(t, manifestPath, "Other", server.URL+"/a")

	r := New(cfg, nil)
	summary, err := r.Execute(context.Background(), ModeRun, manifestPath)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	tk := summary.Tasks[0]
	if tk.ValidationError != "Worksheet 'Expected' not found" {
		t.Fatalf("validation error = %q", tk.ValidationError)
	}
}

func TestExecuteBatchIsolatesFaultySiblings(t *testing.T) {
	server := newFileServer(t, nil)
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedArchiver())
	dir := filepath.Join(testsupport.BaseDir(cfg), "manifests")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	testsupport.SimpleManifest(t, filepath.Join(dir, "good.xlsx"), cfg.Manifest.Worksheet, server.URL+"/a")
	testsupport.WriteManifest(t, filepath.Join(dir, "bad.xlsx"), cfg.Manifest.Worksheet, [][]string{
		{"Url"},
		{server.URL + "/b"},
	})

	r := New(cfg, nil)
	summary, err := r.Execute(context.Background(), ModeBatch, dir)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if len(summary.Tasks) != 2 {
		t.Fatalf("tasks = %d, want 2", len(summary.Tasks))
	}
	var archived, failed int
	for _, tk := range summary.Tasks {
		if tk.Status == task.StatusArchived {
			archived++
		}
		if tk.ValidationError != "" {
			failed++
		}
	}
	if archived != 1 || failed != 1 {
		t.Fatalf("archived=%d failed=%d, want 1/1", archived, failed)
	}
	if summary.TotalDownloaded != 1 {
		t.Fatalf("downloaded = %d, want 1", summary.TotalDownloaded)
	}
}

func TestExecuteGroupedPlacesFilesInSubfolders(t *testing.T) {
	server := newFileServer(t, nil)
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedArchiver())
	manifestPath := filepath.Join(testsupport.BaseDir(cfg), "grouped.xlsx")
	testsupport.WriteManifest(t, manifestPath, cfg.Manifest.Worksheet, [][]string{
		{"Url", "FileName", "DownloadFolderName"},
		{server.URL + "/a", "a.bin", "alpha"},
		{server.URL + "/b", "b.bin", "beta"},
	})

	r := New(cfg, nil)
	summary, err := r.Execute(context.Background(), ModeGrouped, manifestPath)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	tk := summary.Tasks[0]
	for _, want := range []string{
		filepath.Join("alpha", "a.bin"),
		filepath.Join("beta", "b.bin"),
	} {
		if _, statErr := os.Stat(filepath.Join(tk.OutputFolder, want)); statErr != nil {
			t.Fatalf("grouped file %s missing: %v", want, statErr)
		}
	}
	if tk.Status != task.StatusArchived {
		t.Fatalf("status = %s, want %s", tk.Status, task.StatusArchived)
	}
}

func TestExecuteSetupFailureNotifiesAdminOnly(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedArchiver())
	notifier := &spyNotifier{}

	r := New(cfg, nil, WithNotifier(notifier))
	summary, err := r.Execute(context.Background(), ModeRun, filepath.Join(testsupport.BaseDir(cfg), "absent.xlsx"))

	var setupErr *SetupError
	if !errors.As(err, &setupErr) {
		t.Fatalf("err = %v, want SetupError", err)
	}
	if summary != nil {
		t.Fatalf("summary = %+v, want nil", summary)
	}
	if len(notifier.setupFailures) != 1 || len(notifier.summaries) != 0 {
		t.Fatalf("notifications = %d setup / %d summary, want 1/0",
			len(notifier.setupFailures), len(notifier.summaries))
	}
}
