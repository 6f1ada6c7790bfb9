package fileutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteFailureMarker(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "task")

	reason := "No zip-file created because not all files could be downloaded"
	if err := WriteFailureMarker(dir, reason); err != nil {
		t.Fatalf("WriteFailureMarker: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "Error.html"))
	if err != nil {
		t.Fatalf("read marker: %v", err)
	}
	if !strings.Contains(string(data), reason) {
		t.Fatalf("marker body %q missing reason", string(data))
	}
}

func TestWriteFailureMarkerKeepsReasonVerbatim(t *testing.T) {
	dir := t.TempDir()
	reason := "Worksheet 'Downloads' not found"
	if err := WriteFailureMarker(dir, reason); err != nil {
		t.Fatalf("WriteFailureMarker: %v", err)
	}
	data, err := os.ReadFile(FailureMarkerPath(dir))
	if err != nil {
		t.Fatalf("read marker: %v", err)
	}
	if !strings.Contains(string(data), reason) {
		t.Fatalf("marker body %q must contain the reason verbatim", string(data))
	}
}
