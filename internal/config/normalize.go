package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeManifest(); err != nil {
		return err
	}
	c.normalizeArchiver()
	c.normalizeMail()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.DownloadDir, err = expandPath(c.Paths.DownloadDir); err != nil {
		return fmt.Errorf("paths.download_dir: %w", err)
	}
	if c.Paths.ArchiveDir, err = expandPath(c.Paths.ArchiveDir); err != nil {
		return fmt.Errorf("paths.archive_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.ReportDir) == "" {
		c.Paths.ReportDir = defaultReportDir
	}
	if c.Paths.ReportDir, err = expandPath(c.Paths.ReportDir); err != nil {
		return fmt.Errorf("paths.report_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeManifest() error {
	c.Manifest.Worksheet = strings.TrimSpace(c.Manifest.Worksheet)
	if c.Manifest.Worksheet == "" {
		c.Manifest.Worksheet = defaultWorksheet
	}
	if strings.TrimSpace(c.Manifest.Path) == "" {
		return nil
	}
	expanded, err := expandPath(c.Manifest.Path)
	if err != nil {
		return fmt.Errorf("manifest.path: %w", err)
	}
	c.Manifest.Path = expanded
	return nil
}

func (c *Config) normalizeArchiver() {
	c.Archiver.Binary = strings.TrimSpace(c.Archiver.Binary)
	if c.Archiver.Binary == "" {
		c.Archiver.Binary = defaultArchiverBinary
	}
}

func (c *Config) normalizeMail() {
	c.Mail.To = strings.TrimSpace(c.Mail.To)
	c.Mail.AdminTo = strings.TrimSpace(c.Mail.AdminTo)
	c.Mail.From = strings.TrimSpace(c.Mail.From)
	c.Mail.SMTPHost = strings.TrimSpace(c.Mail.SMTPHost)
	if c.Mail.SMTPPort <= 0 {
		c.Mail.SMTPPort = defaultSMTPPort
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

// ExpandPath resolves ~ prefixes and returns an absolute path.
func ExpandPath(path string) (string, error) {
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", nil
	}
	if trimmed == "~" || strings.HasPrefix(trimmed, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if trimmed == "~" {
			trimmed = home
		} else {
			trimmed = filepath.Join(home, trimmed[2:])
		}
	}
	abs, err := filepath.Abs(trimmed)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path: %w", err)
	}
	return abs, nil
}
