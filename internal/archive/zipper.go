package archive

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

var commandContext = exec.CommandContext

// Zipper bundles a folder into an archive file.
type Zipper interface {
	Create(ctx context.Context, sourceDir, outputPath string) error
}

// Option configures the CLI zipper.
type Option func(*CLI)

// WithBinary overrides the default binary name.
func WithBinary(binary string) Option {
	return func(c *CLI) {
		if binary != "" {
			c.binary = binary
		}
	}
}

// CLI wraps the external zip command-line tool.
type CLI struct {
	binary string
}

// NewCLI constructs a CLI zipper using defaults.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{binary: "zip"}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// Create archives sourceDir recursively into outputPath. The command runs
// from inside sourceDir so archive entries are relative to the task
// folder, not absolute paths.
func (c *CLI) Create(ctx context.Context, sourceDir, outputPath string) error {
	if strings.TrimSpace(sourceDir) == "" {
		return errors.New("source directory required")
	}
	if strings.TrimSpace(outputPath) == "" {
		return errors.New("output path required")
	}

	cmd := commandContext(ctx, c.binary, "-r", outputPath, ".")
	cmd.Dir = sourceDir
	output, err := cmd.CombinedOutput()
	if err != nil {
		detail := strings.TrimSpace(string(output))
		if detail != "" {
			return fmt.Errorf("%s failed: %w: %s", c.binary, err, detail)
		}
		return fmt.Errorf("%s failed: %w", c.binary, err)
	}
	return nil
}

var _ Zipper = (*CLI)(nil)
