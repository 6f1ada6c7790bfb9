package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"stockpile/internal/deps"
)

const (
	ansiGreen = "\x1b[32m"
	ansiRed   = "\x1b[31m"
	ansiReset = "\x1b[0m"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check external tools and directory access",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := isTerminal(out)

			binaries := deps.CheckBinaries(deps.Requirements(cfg))
			rows := make([][]string, 0, len(binaries)+4)
			for _, status := range binaries {
				rows = append(rows, []string{
					status.Name,
					status.Command,
					statusMark(status.Available, status.Detail, colorize),
				})
			}

			directories := []struct {
				name string
				path string
			}{
				{"Download dir", cfg.Paths.DownloadDir},
				{"Archive dir", cfg.Paths.ArchiveDir},
				{"Report dir", cfg.Paths.ReportDir},
				{"Log dir", cfg.Paths.LogDir},
			}
			for _, dir := range directories {
				result := deps.CheckDirectoryAccess(dir.name, dir.path)
				rows = append(rows, []string{
					result.Name,
					dir.path,
					statusMark(result.Passed, result.Detail, colorize),
				})
			}

			fmt.Fprintln(out, renderTable([]string{"Check", "Target", "Status"}, rows))
			return nil
		},
	}
}

func statusMark(ok bool, detail string, colorize bool) string {
	if ok {
		if colorize {
			return ansiGreen + "ok" + ansiReset
		}
		return "ok"
	}
	if detail == "" {
		detail = "unavailable"
	}
	if colorize {
		return ansiRed + detail + ansiReset
	}
	return detail
}
