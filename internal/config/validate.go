package config

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateFetch(); err != nil {
		return err
	}
	if err := c.validateArchiver(); err != nil {
		return err
	}
	if err := c.validateMail(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.DownloadDir == "" {
		return errors.New("paths.download_dir must be set")
	}
	if c.Paths.ArchiveDir == "" {
		return errors.New("paths.archive_dir must be set")
	}
	return nil
}

func (c *Config) validateFetch() error {
	jobs, err := parseMaxJobs(c.Fetch.MaxConcurrentJobs)
	if err != nil {
		return fmt.Errorf("fetch.max_concurrent_jobs %w", err)
	}
	if jobs < 1 {
		return fmt.Errorf("fetch.max_concurrent_jobs must be positive, got %d", jobs)
	}
	c.Fetch.maxJobs = jobs

	if c.Fetch.TimeoutSeconds < 1 {
		return errors.New("fetch.timeout_seconds must be positive")
	}
	return nil
}

// parseMaxJobs accepts the numeric TOML forms plus a digit string. Any
// other value is the documented "needs to be a number" failure; the exact
// wording is relied on by operators filtering mail.
func parseMaxJobs(v any) (int, error) {
	switch n := v.(type) {
	case nil:
		return defaultMaxConcurrentJobs, nil
	case int:
		return n, nil
	case int64:
		return int(n), nil
	case float64:
		if n != math.Trunc(n) {
			return 0, notANumber(n)
		}
		return int(n), nil
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, notANumber(n)
		}
		return parsed, nil
	default:
		return 0, notANumber(v)
	}
}

func notANumber(v any) error {
	return fmt.Errorf("needs to be a number, the value '%v' is not supported", v)
}

func (c *Config) validateArchiver() error {
	if c.Archiver.Binary == "" {
		return errors.New("archiver.binary must be set")
	}
	return nil
}

func (c *Config) validateMail() error {
	if c.Mail.To == "" && c.Mail.AdminTo == "" {
		return nil
	}
	if c.Mail.SMTPHost == "" {
		return errors.New("mail.smtp_host must be set when a recipient is configured")
	}
	if c.Mail.From == "" {
		return errors.New("mail.from must be set when a recipient is configured")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
