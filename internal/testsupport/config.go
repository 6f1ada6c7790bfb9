package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"stockpile/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per
// test. It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DownloadDir = filepath.Join(base, "downloads")
	cfgVal.Paths.ArchiveDir = filepath.Join(base, "archives")
	cfgVal.Paths.ReportDir = filepath.Join(base, "reports")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Fetch.TimeoutSeconds = 5

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := cfgVal.Validate(); err != nil {
		t.Fatalf("test config invalid: %v", err)
	}
	return builder.cfg
}

// WithMaxJobs sets the concurrency bound on the test config.
func WithMaxJobs(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.SetMaxJobs(n)
	}
}

// WithManifest points the config at a manifest path and worksheet.
func WithManifest(path, worksheet string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Manifest.Path = path
		if worksheet != "" {
			b.cfg.Manifest.Worksheet = worksheet
		}
	}
}

// WithStubbedArchiver writes a stub zip executable that records nothing
// and exits zero, and points the config at it.
func WithStubbedArchiver() ConfigOption {
	return func(b *configBuilder) {
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		target := filepath.Join(binDir, "zip")
		script := []byte("#!/bin/sh\ntouch \"$2\"\nexit 0\n")
		if err := os.WriteFile(target, script, 0o755); err != nil {
			b.t.Fatalf("write stub zip: %v", err)
		}
		b.cfg.Archiver.Binary = target
	}
}

// WithFailingArchiver installs a stub archiver that always exits nonzero.
func WithFailingArchiver() ConfigOption {
	return func(b *configBuilder) {
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		target := filepath.Join(binDir, "zip")
		script := []byte("#!/bin/sh\necho 'zip failure' >&2\nexit 15\n")
		if err := os.WriteFile(target, script, 0o755); err != nil {
			b.t.Fatalf("write stub zip: %v", err)
		}
		b.cfg.Archiver.Binary = target
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DownloadDir)
}
