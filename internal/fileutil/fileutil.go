package fileutil

import (
	"fmt"
	"os"
	"path/filepath"
)

// failureMarkerName is the document consumers look for inside a task's
// output folder; its body carries the literal failure reason.
const failureMarkerName = "Error.html"

// EnsureDir creates path and any missing parents.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0o755)
}

// FailureMarkerPath returns where the failure marker for dir lives.
func FailureMarkerPath(dir string) string {
	return filepath.Join(dir, failureMarkerName)
}

// WriteFailureMarker writes the failure marker document into dir. The
// reason appears verbatim in the body; downstream tooling pattern-matches
// on that text.
func WriteFailureMarker(dir, reason string) error {
	if err := EnsureDir(dir); err != nil {
		return fmt.Errorf("create marker folder: %w", err)
	}
	// The reason goes in unescaped: consumers match on the exact text,
	// quotes included.
	body := "<html><body>" + reason + "</body></html>\n"
	if err := os.WriteFile(FailureMarkerPath(dir), []byte(body), 0o644); err != nil {
		return fmt.Errorf("write failure marker: %w", err)
	}
	return nil
}
