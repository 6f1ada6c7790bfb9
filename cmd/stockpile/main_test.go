package main

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"stockpile/internal/config"
	"stockpile/internal/testsupport"
)

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(
		"[paths]\ndownload_dir = %q\narchive_dir = %q\nreport_dir = %q\nlog_dir = %q\n\n[manifest]\nworksheet = %q\n\n[archiver]\nbinary = %q\n",
		cfg.Paths.DownloadDir,
		cfg.Paths.ArchiveDir,
		cfg.Paths.ReportDir,
		cfg.Paths.LogDir,
		cfg.Manifest.Worksheet,
		cfg.Archiver.Binary,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, configPath string, args []string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	if configPath != "" {
		args = append([]string{"--config", configPath}, args...)
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestCLIRunCommand(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("payload"))
	}))
	t.Cleanup(server.Close)

	cfg := testsupport.NewConfig(t, testsupport.WithStubbedArchiver())
	configPath := filepath.Join(testsupport.BaseDir(cfg), "config.toml")
	writeTestConfig(t, configPath, cfg)

	manifestPath := filepath.Join(testsupport.BaseDir(cfg), "orders.xlsx")
	testsupport.SimpleManifest(t, manifestPath, cfg.Manifest.Worksheet, server.URL+"/a", server.URL+"/b")

	out, _, err := runCLI(t, configPath, []string{"run", "--manifest", manifestPath})
	if err != nil {
		t.Fatalf("run command: %v", err)
	}
	if !strings.Contains(out, "2/2 files downloaded") {
		t.Fatalf("unexpected run output: %q", out)
	}
	if !strings.Contains(out, "orders.xlsx") {
		t.Fatalf("breakdown missing source: %q", out)
	}
}

func TestCLIRunCommandReportsErrorsWithNonzeroExit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	t.Cleanup(server.Close)

	cfg := testsupport.NewConfig(t, testsupport.WithStubbedArchiver())
	configPath := filepath.Join(testsupport.BaseDir(cfg), "config.toml")
	writeTestConfig(t, configPath, cfg)

	manifestPath := filepath.Join(testsupport.BaseDir(cfg), "orders.xlsx")
	testsupport.SimpleManifest(t, manifestPath, cfg.Manifest.Worksheet, server.URL+"/gone")

	out, _, err := runCLI(t, configPath, []string{"run", "--manifest", manifestPath})
	if err == nil {
		t.Fatalf("expected error exit, output: %q", out)
	}
	if !strings.Contains(out, "0/1 file downloaded") {
		t.Fatalf("unexpected run output: %q", out)
	}
}

func TestCLIConfigInit(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	out, _, err := runCLI(t, "", []string{"config", "init", "--path", target})
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(out, "Wrote sample configuration") {
		t.Fatalf("unexpected init output: %q", out)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("sample config not written: %v", err)
	}

	if _, _, err := runCLI(t, "", []string{"config", "init", "--path", target}); err == nil {
		t.Fatal("expected error when config already exists")
	}
}

func TestCLIStatusCommand(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedArchiver())
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	configPath := filepath.Join(testsupport.BaseDir(cfg), "config.toml")
	writeTestConfig(t, configPath, cfg)

	out, _, err := runCLI(t, configPath, []string{"status"})
	if err != nil {
		t.Fatalf("status command: %v", err)
	}
	for _, want := range []string{"Archiver", "Download dir", "ok"} {
		if !strings.Contains(out, want) {
			t.Fatalf("status output missing %q: %q", want, out)
		}
	}
}

func TestCLIHistoryEmpty(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedArchiver())
	configPath := filepath.Join(testsupport.BaseDir(cfg), "config.toml")
	writeTestConfig(t, configPath, cfg)

	out, _, err := runCLI(t, configPath, []string{"history"})
	if err != nil {
		t.Fatalf("history command: %v", err)
	}
	if !strings.Contains(out, "No runs recorded yet") {
		t.Fatalf("unexpected history output: %q", out)
	}
}
