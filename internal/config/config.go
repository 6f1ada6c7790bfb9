package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DownloadDir string `toml:"download_dir"`
	ArchiveDir  string `toml:"archive_dir"`
	ReportDir   string `toml:"report_dir"`
	LogDir      string `toml:"log_dir"`
}

// Manifest names the spreadsheet a run reads its items from.
type Manifest struct {
	Path      string `toml:"path"`
	Worksheet string `toml:"worksheet"`
}

// Fetch contains transfer tuning.
//
// MaxConcurrentJobs is decoded as a raw TOML value so that a non-numeric
// entry surfaces as a validation failure with the documented wording
// instead of a decoder error.
type Fetch struct {
	MaxConcurrentJobs any `toml:"max_concurrent_jobs"`
	TimeoutSeconds    int `toml:"timeout_seconds"`

	maxJobs int
}

// Archiver configures the external archiving tool.
type Archiver struct {
	Binary string `toml:"binary"`
}

// Mail contains SMTP settings for the run summary notification.
// An empty To disables user-facing mail; an empty AdminTo disables the
// administrative channel.
type Mail struct {
	To       string `toml:"to"`
	AdminTo  string `toml:"admin_to"`
	From     string `toml:"from"`
	SMTPHost string `toml:"smtp_host"`
	SMTPPort int    `toml:"smtp_port"`
	Username string `toml:"username"`
	Password string `toml:"password"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for Stockpile.
//
// Configuration sections by subsystem:
//   - Paths: download, archive, report and log directories
//   - Manifest: default manifest location and worksheet name
//   - Fetch: concurrency bound and per-transfer timeout
//   - Archiver: external zip tool
//   - Mail: SMTP summary notification
//   - Logging: log format and level
type Config struct {
	Paths    Paths    `toml:"paths"`
	Manifest Manifest `toml:"manifest"`
	Fetch    Fetch    `toml:"fetch"`
	Archiver Archiver `toml:"archiver"`
	Mail     Mail     `toml:"mail"`
	Logging  Logging  `toml:"logging"`
}

// MaxJobs returns the validated concurrency bound. Only meaningful after
// Validate has run; Load always validates.
func (c *Config) MaxJobs() int {
	if c.Fetch.maxJobs <= 0 {
		return defaultMaxConcurrentJobs
	}
	return c.Fetch.maxJobs
}

// SetMaxJobs overrides the concurrency bound, typically from a CLI flag.
func (c *Config) SetMaxJobs(n int) {
	if n > 0 {
		c.Fetch.maxJobs = n
		c.Fetch.MaxConcurrentJobs = int64(n)
	}
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/stockpile/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("stockpile.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	return defaultPath, false, nil
}

// EnsureDirectories creates the directories the engine writes into.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.DownloadDir, c.Paths.ArchiveDir, c.Paths.ReportDir, c.Paths.LogDir}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// CreateSample writes the embedded sample configuration to target.
func CreateSample(target string) error {
	return os.WriteFile(target, []byte(sampleConfig), 0o644)
}

// Sample returns the embedded sample configuration text.
func Sample() string {
	return sampleConfig
}
