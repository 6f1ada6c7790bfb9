package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"stockpile/internal/notifications"
	"stockpile/internal/report"
	"stockpile/internal/runlog"
	"stockpile/internal/runner"
)

// runFlags holds the per-invocation overrides shared by the run, batch
// and grouped commands.
type runFlags struct {
	manifest  string
	worksheet string
	maxJobs   int
}

func (f *runFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.manifest, "manifest", "m", "", "Manifest workbook (or directory for batch)")
	cmd.Flags().StringVarP(&f.worksheet, "worksheet", "w", "", "Worksheet holding the download rows")
	cmd.Flags().IntVarP(&f.maxJobs, "max-jobs", "j", 0, "Maximum concurrent downloads per manifest")
}

func newRunCommand(ctx *commandContext) *cobra.Command {
	flags := &runFlags{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Download every file listed in one manifest",
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeRun(cmd, ctx, runner.ModeRun, flags)
		},
	}
	flags.register(cmd)
	return cmd
}

func newBatchCommand(ctx *commandContext) *cobra.Command {
	flags := &runFlags{}
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Process every manifest workbook in a directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeRun(cmd, ctx, runner.ModeBatch, flags)
		},
	}
	flags.register(cmd)
	return cmd
}

func newGroupedCommand(ctx *commandContext) *cobra.Command {
	flags := &runFlags{}
	cmd := &cobra.Command{
		Use:   "grouped",
		Short: "Download a manifest whose rows name destination subfolders",
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeRun(cmd, ctx, runner.ModeGrouped, flags)
		},
	}
	flags.register(cmd)
	return cmd
}

func executeRun(cmd *cobra.Command, ctx *commandContext, mode runner.Mode, flags *runFlags) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	if ws := strings.TrimSpace(flags.worksheet); ws != "" {
		cfg.Manifest.Worksheet = ws
	}
	if flags.maxJobs > 0 {
		cfg.SetMaxJobs(flags.maxJobs)
	}
	manifestPath := strings.TrimSpace(flags.manifest)
	if manifestPath == "" {
		manifestPath = cfg.Manifest.Path
	}

	logger := ctx.ensureLogger()
	notifier, err := notifications.NewService(cfg)
	if err != nil {
		return fmt.Errorf("configure notifications: %w", err)
	}

	opts := []runner.Option{runner.WithNotifier(notifier)}
	store, storeErr := runlog.Open(cfg)
	if storeErr == nil {
		defer store.Close()
		opts = append(opts, runner.WithStore(store))
	} else {
		logger.Warn("run history unavailable", "error", storeErr)
	}

	summary, err := runner.New(cfg, logger, opts...).Execute(cmd.Context(), mode, manifestPath)
	if err != nil {
		var setupErr *runner.SetupError
		if errors.As(err, &setupErr) {
			return fmt.Errorf("run aborted: %w", setupErr.Err)
		}
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, summary.Subject())
	fmt.Fprintln(out, breakdownTable(summary))
	if len(summary.SystemErrors) > 0 {
		fmt.Fprintf(out, "System errors (%d):\n", len(summary.SystemErrors))
		for _, msg := range summary.SystemErrors {
			fmt.Fprintf(out, "  - %s\n", msg)
		}
	}
	if summary.HasErrors() {
		return fmt.Errorf("%d error(s) during run", summary.ErrorTotal())
	}
	return nil
}

func breakdownTable(summary *report.RunSummary) string {
	headers := []string{"Source", "Items", "Downloaded", "Errors", "Outcome"}
	rows := make([][]string, 0, len(summary.Tasks))
	for _, t := range summary.Tasks {
		rows = append(rows, []string{
			t.Source,
			fmt.Sprintf("%d", len(t.Items)),
			fmt.Sprintf("%d", t.DownloadedCount()),
			fmt.Sprintf("%d", t.ErrorCount()),
			taskOutcome(t),
		})
	}
	return renderTable(headers, rows, 1, 2, 3)
}
