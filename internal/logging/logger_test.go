package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestConsoleHandlerFormatsAttrs(t *testing.T) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, levelVar))

	logger.Info("download complete", String("file", "a.pdf"), Int("bytes", 42))

	out := buf.String()
	if !strings.Contains(out, "INFO") {
		t.Fatalf("missing level in %q", out)
	}
	if !strings.Contains(out, "download complete") {
		t.Fatalf("missing message in %q", out)
	}
	if !strings.Contains(out, "file=a.pdf") || !strings.Contains(out, "bytes=42") {
		t.Fatalf("missing attrs in %q", out)
	}
}

func TestConsoleHandlerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	levelVar.Set(slog.LevelWarn)
	handler := newConsoleHandler(&buf, levelVar)

	if handler.Enabled(context.Background(), slog.LevelInfo) {
		t.Fatal("info should be suppressed at warn level")
	}
	if !handler.Enabled(context.Background(), slog.LevelError) {
		t.Fatal("error should pass at warn level")
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestWithAttrsIsolation(t *testing.T) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	base := slog.New(newConsoleHandler(&buf, levelVar))
	child := base.With(String("task", "invoices"))

	child.Info("fetching")
	base.Info("idle")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "task=invoices") {
		t.Fatalf("child line missing attr: %q", lines[0])
	}
	if strings.Contains(lines[1], "task=invoices") {
		t.Fatalf("base line leaked attr: %q", lines[1])
	}
}
