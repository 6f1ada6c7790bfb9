package archive

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"stockpile/internal/fileutil"
	"stockpile/internal/logging"
	"stockpile/internal/task"
)

// SkipReason is recorded on the archive outcome when any item failed.
const SkipReason = "not all files downloaded"

// MarkerNoArchive is the failure marker text for a skipped archive;
// consumers pattern-match on it.
const MarkerNoArchive = "No zip-file created because not all files could be downloaded"

// Gate applies the all-or-nothing archival decision to a fetched task.
type Gate struct {
	zipper     Zipper
	archiveDir string
	logger     *slog.Logger
}

// NewGate builds an archiver gate writing archives into archiveDir.
func NewGate(zipper Zipper, archiveDir string, logger *slog.Logger) *Gate {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Gate{zipper: zipper, archiveDir: archiveDir, logger: logger}
}

// Apply archives the task folder when every item downloaded, and writes
// the failure marker otherwise. One failed item cancels archival for the
// whole task; there is never a partial archive. An archiver invocation
// failure becomes a task error, not a silent skip.
func (g *Gate) Apply(ctx context.Context, t *task.Task) {
	if !t.AllDownloaded() {
		t.ArchiveOutcome = task.Skipped(SkipReason)
		t.Status = task.StatusArchiveSkipped
		if err := fileutil.WriteFailureMarker(t.OutputFolder, MarkerNoArchive); err != nil {
			t.TaskError = err.Error()
			g.logger.Error("failure marker write failed",
				logging.String("task", t.Source),
				logging.Error(err))
		}
		return
	}

	t.Status = task.StatusArchiving
	outputPath := filepath.Join(g.archiveDir, archiveName(t.Source))
	if err := g.zipper.Create(ctx, t.OutputFolder, outputPath); err != nil {
		t.TaskError = err.Error()
		t.Status = task.StatusArchiveFailed
		g.logger.Error("archiver invocation failed",
			logging.String("task", t.Source),
			logging.Error(err))
		return
	}

	t.ArchiveOutcome = task.Created(outputPath)
	t.Status = task.StatusArchived
	g.logger.Info("archive created",
		logging.String("task", t.Source),
		logging.String("archive", outputPath))
}

// archiveName embeds the manifest's base name so multiple tasks in one
// run produce distinct archives.
func archiveName(source string) string {
	base := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	if base == "" || base == "." {
		base = "manifest"
	}
	return base + ".zip"
}
