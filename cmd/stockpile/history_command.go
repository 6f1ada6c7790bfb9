package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"stockpile/internal/runlog"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var verbose bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := runlog.Open(cfg)
			if err != nil {
				return fmt.Errorf("open run history: %w", err)
			}
			defer store.Close()

			runs, err := store.RecentRuns(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("read run history: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded yet")
				return nil
			}

			rows := make([][]string, 0, len(runs))
			for _, run := range runs {
				rows = append(rows, []string{
					run.StartedAt.Local().Format("2006-01-02 15:04:05"),
					run.Mode,
					fmt.Sprintf("%d", run.TotalItems),
					fmt.Sprintf("%d", run.Downloaded),
					fmt.Sprintf("%d", run.DownloadErrors+run.SystemErrors),
					run.FinishedAt.Sub(run.StartedAt).Round(time.Second).String(),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Started", "Mode", "Items", "Downloaded", "Errors", "Duration"},
				rows, 2, 3, 4, 5))

			if verbose {
				for _, run := range runs {
					fmt.Fprintf(out, "\n%s: %s\n", run.StartedAt.Local().Format("2006-01-02 15:04:05"), run.Subject)
					taskRows := make([][]string, 0, len(run.Tasks))
					for _, t := range run.Tasks {
						taskRows = append(taskRows, []string{
							t.Source,
							fmt.Sprintf("%d", t.Items),
							fmt.Sprintf("%d", t.Downloaded),
							fmt.Sprintf("%d", t.Errors),
							t.Outcome,
						})
					}
					fmt.Fprintln(out, renderTable(
						[]string{"Source", "Items", "Downloaded", "Errors", "Outcome"},
						taskRows, 1, 2, 3))
				}
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of runs to show")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Include per-manifest breakdowns")
	return cmd
}
