package report

import (
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"stockpile/internal/task"
)

// BreakdownTable renders the per-task table used in the notification body
// and the CLI summary: one row per task with its counts and output
// location.
func (s *RunSummary) BreakdownTable() string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"Source", "Items", "Downloaded", "Errors", "Outcome", "Output"})

	for _, t := range s.Tasks {
		tw.AppendRow(table.Row{
			t.Source,
			len(t.Items),
			t.DownloadedCount(),
			t.ErrorCount(),
			outcomeLabel(t),
			t.OutputFolder,
		})
	}

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
	})
	return tw.Render()
}

// Body renders the full notification text: subject line, breakdown table
// and, when present, the verbatim system error list.
func (s *RunSummary) Body() string {
	var b strings.Builder
	b.WriteString(s.Subject())
	b.WriteString("\n\n")
	b.WriteString(s.BreakdownTable())
	b.WriteString("\n")

	if len(s.SystemErrors) > 0 {
		b.WriteString("\nSystem errors (")
		b.WriteString(strconv.Itoa(len(s.SystemErrors)))
		b.WriteString("):\n")
		for _, msg := range s.SystemErrors {
			b.WriteString("  - ")
			b.WriteString(msg)
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func outcomeLabel(t *task.Task) string {
	if t.ValidationError != "" {
		return t.ValidationError
	}
	switch t.ArchiveOutcome.State {
	case task.ArchiveCreated:
		return "archived"
	case task.ArchiveSkipped:
		return "archive skipped: " + t.ArchiveOutcome.Reason
	}
	if t.TaskError != "" {
		return t.TaskError
	}
	return string(t.Status)
}
