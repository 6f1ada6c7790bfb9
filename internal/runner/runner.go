package runner

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"stockpile/internal/archive"
	"stockpile/internal/config"
	"stockpile/internal/deps"
	"stockpile/internal/fetch"
	"stockpile/internal/fileutil"
	"stockpile/internal/logging"
	"stockpile/internal/manifest"
	"stockpile/internal/notifications"
	"stockpile/internal/report"
	"stockpile/internal/runlog"
	"stockpile/internal/task"
)

// Mode selects the manifest shape a run processes.
type Mode string

const (
	// ModeRun processes one simple-shape manifest.
	ModeRun Mode = "run"
	// ModeBatch processes every .xlsx manifest in a directory.
	ModeBatch Mode = "batch"
	// ModeGrouped processes one grouped-shape manifest.
	ModeGrouped Mode = "grouped"
)

// SetupError marks a failure that aborted the run before any task was
// attempted. It is reported to the administrative channel only.
type SetupError struct {
	Err error
}

func (e *SetupError) Error() string { return e.Err.Error() }
func (e *SetupError) Unwrap() error { return e.Err }

// Runner drives one execution end to end: preflight, task construction,
// per-task fetch and archival, aggregation, reporting and notification.
type Runner struct {
	cfg      *config.Config
	logger   *slog.Logger
	loader   manifest.Loader
	notifier notifications.Service
	store    *runlog.Store

	// now and newID are overridable for tests.
	now   func() time.Time
	newID func() string
}

// Option configures a Runner.
type Option func(*Runner)

// WithNotifier overrides the notification service.
func WithNotifier(svc notifications.Service) Option {
	return func(r *Runner) {
		if svc != nil {
			r.notifier = svc
		}
	}
}

// WithStore attaches a run-log store. Without one, history is not
// recorded.
func WithStore(store *runlog.Store) Option {
	return func(r *Runner) {
		r.store = store
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		if now != nil {
			r.now = now
		}
	}
}

// New builds a Runner for the given configuration.
func New(cfg *config.Config, logger *slog.Logger, opts ...Option) *Runner {
	if logger == nil {
		logger = logging.NewNop()
	}
	r := &Runner{
		cfg:      cfg,
		logger:   logger,
		notifier: notifications.Noop(),
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Execute runs one batch end to end and returns its summary. A returned
// SetupError means no task was attempted; the summary is nil in that
// case.
func (r *Runner) Execute(ctx context.Context, mode Mode, manifestPath string) (*report.RunSummary, error) {
	started := r.now()
	runID := r.newID()
	log := r.logger.With(logging.String("run", runID))

	if err := r.preflight(ctx, manifestPath); err != nil {
		setupErr := &SetupError{Err: err}
		log.Error("run aborted during setup", logging.Error(err))
		if notifyErr := r.notifier.NotifySetupFailure(ctx, err); notifyErr != nil {
			log.Warn("setup failure notification failed", logging.Error(notifyErr))
		}
		return nil, setupErr
	}

	// One run at a time against a download root.
	lock := flock.New(filepath.Join(r.cfg.Paths.DownloadDir, ".stockpile.lock"))
	locked, err := lock.TryLock()
	if err == nil && !locked {
		err = fmt.Errorf("another run is already in progress for %s", r.cfg.Paths.DownloadDir)
	}
	if err != nil {
		setupErr := &SetupError{Err: err}
		log.Error("run aborted during setup", logging.Error(err))
		if notifyErr := r.notifier.NotifySetupFailure(ctx, err); notifyErr != nil {
			log.Warn("setup failure notification failed", logging.Error(notifyErr))
		}
		return nil, setupErr
	}
	defer lock.Unlock()

	sources, runErrors := r.loadSources(mode, manifestPath)

	builder := &task.Builder{
		DownloadDir: r.cfg.Paths.DownloadDir,
		Shape:       shapeFor(mode),
		Now:         r.now,
	}
	tasks := builder.Build(sources)
	log.Info("run started",
		logging.String("mode", string(mode)),
		logging.Int("tasks", len(tasks)))

	scheduler := fetch.NewScheduler(
		fetch.NewClient(time.Duration(r.cfg.Fetch.TimeoutSeconds)*time.Second),
		r.cfg.MaxJobs(),
		log,
	)
	gate := archive.NewGate(
		archive.NewCLI(archive.WithBinary(r.cfg.Archiver.Binary)),
		r.cfg.Paths.ArchiveDir,
		log,
	)

	// Tasks are processed sequentially; only items within one task
	// download concurrently.
	for _, t := range tasks {
		r.processTask(ctx, t, scheduler, gate, log)
		if reportErr := r.writeTaskReport(t); reportErr != nil {
			runErrors = append(runErrors, reportErr.Error())
			log.Warn("report artifact write failed",
				logging.String("task", t.Source),
				logging.Error(reportErr))
		}
	}

	summary := report.Aggregate(tasks, runErrors)
	log.Info("run finished",
		logging.Int("items", summary.TotalItems),
		logging.Int("downloaded", summary.TotalDownloaded),
		logging.Int("errors", summary.ErrorTotal()),
		logging.Duration("elapsed", r.now().Sub(started)))

	if err := r.notifier.NotifyRunSummary(ctx, summary); err != nil {
		log.Warn("summary notification failed", logging.Error(err))
	}
	r.recordRun(ctx, runID, mode, started, summary, log)

	return summary, nil
}

// preflight verifies everything a run needs before the first task. A
// failure here is fatal: no partial task work is ever attempted.
func (r *Runner) preflight(_ context.Context, manifestPath string) error {
	if strings.TrimSpace(manifestPath) == "" {
		return fmt.Errorf("no manifest configured: set manifest.path or pass --manifest")
	}
	if _, err := os.Stat(manifestPath); err != nil {
		return fmt.Errorf("manifest location %s: %w", manifestPath, err)
	}
	if err := r.cfg.EnsureDirectories(); err != nil {
		return err
	}
	if missing := deps.FirstMissing(deps.CheckBinaries(deps.Requirements(r.cfg))); missing != nil {
		return fmt.Errorf("%s unavailable: %s", missing.Name, missing.Detail)
	}
	return nil
}

// loadSources reads manifest rows per source. Load failures are attached
// to their source so the builder can isolate them; only directory
// enumeration problems surface as run errors.
func (r *Runner) loadSources(mode Mode, manifestPath string) ([]task.Source, []string) {
	worksheet := r.cfg.Manifest.Worksheet
	var runErrors []string

	paths := []string{manifestPath}
	if mode == ModeBatch {
		found, err := listManifests(manifestPath)
		if err != nil {
			return nil, []string{err.Error()}
		}
		paths = found
	}

	sources := make([]task.Source, 0, len(paths))
	for _, path := range paths {
		rows, err := r.loader.Rows(path, worksheet)
		sources = append(sources, task.Source{
			Identity:  path,
			Worksheet: worksheet,
			Rows:      rows,
			LoadErr:   err,
		})
	}
	return sources, runErrors
}

func (r *Runner) processTask(ctx context.Context, t *task.Task, scheduler *fetch.Scheduler, gate *archive.Gate, log *slog.Logger) {
	taskLog := log.With(logging.String("task", t.Source))

	if t.ValidationError != "" {
		taskLog.Warn("manifest validation failed", logging.String("reason", t.ValidationError))
		if err := fileutil.WriteFailureMarker(t.OutputFolder, t.ValidationError); err != nil {
			t.TaskError = err.Error()
		}
		return
	}
	if t.TaskError != "" {
		// Source unreadable; counted as a system error by aggregation.
		taskLog.Warn("manifest not readable", logging.String("reason", t.TaskError))
		return
	}

	if err := fileutil.EnsureDir(t.OutputFolder); err != nil {
		t.TaskError = fmt.Sprintf("create output folder: %v", err)
		taskLog.Error("output folder creation failed", logging.Error(err))
		return
	}

	scheduler.Run(ctx, t)
	taskLog.Info("fetch complete",
		logging.Int("items", len(t.Items)),
		logging.Int("downloaded", t.DownloadedCount()),
		logging.Int("errors", t.ErrorCount()))

	gate.Apply(ctx, t)
}

// writeTaskReport emits the per-task report workbook: one row per
// manifest row, DownloadedOn and Error mutually exclusive.
func (r *Runner) writeTaskReport(t *task.Task) error {
	if len(t.Results) == 0 {
		// Nothing was fetched: validation failed, the source was
		// unreadable, or the manifest was empty.
		return nil
	}
	rows := make([]manifest.ReportRow, 0, len(t.Results))
	for _, result := range t.Results {
		row := manifest.ReportRow{
			URL:         result.Item.URL,
			FileName:    result.Item.FileName,
			Destination: result.DestinationPath,
		}
		if result.DownloadedAt != nil {
			row.DownloadedOn = result.DownloadedAt.Format("2006-01-02 15:04:05")
		}
		if result.Err != nil {
			row.Error = result.Err.Message()
		}
		rows = append(rows, row)
	}
	name := filepath.Base(t.OutputFolder) + ".xlsx"
	return manifest.WriteReport(filepath.Join(r.cfg.Paths.ReportDir, name), rows)
}

func (r *Runner) recordRun(ctx context.Context, runID string, mode Mode, started time.Time, summary *report.RunSummary, log *slog.Logger) {
	if r.store == nil {
		return
	}
	rec := runlog.RunRecord{
		ID:             runID,
		Mode:           string(mode),
		StartedAt:      started,
		FinishedAt:     r.now(),
		TotalItems:     summary.TotalItems,
		Downloaded:     summary.TotalDownloaded,
		DownloadErrors: summary.TotalDownloadErrors,
		SystemErrors:   summary.TotalSystemErrors,
		Subject:        summary.Subject(),
	}
	for _, t := range summary.Tasks {
		rec.Tasks = append(rec.Tasks, runlog.TaskRecord{
			Source:       t.Source,
			Items:        len(t.Items),
			Downloaded:   t.DownloadedCount(),
			Errors:       t.ErrorCount(),
			Outcome:      outcomeText(t),
			OutputFolder: t.OutputFolder,
		})
	}
	if err := r.store.RecordRun(ctx, rec); err != nil {
		log.Warn("run history not recorded", logging.Error(err))
	}
}

func outcomeText(t *task.Task) string {
	switch {
	case t.ValidationError != "":
		return t.ValidationError
	case t.ArchiveOutcome.State == task.ArchiveCreated:
		return "archived"
	case t.ArchiveOutcome.State == task.ArchiveSkipped:
		return "archive skipped"
	case t.TaskError != "":
		return t.TaskError
	default:
		return string(t.Status)
	}
}

func shapeFor(mode Mode) task.Shape {
	if mode == ModeGrouped {
		return task.ShapeGrouped
	}
	return task.ShapeSimple
}

// listManifests returns every .xlsx workbook directly inside dir, sorted
// by name so task order is stable across runs.
func listManifests(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list manifests in %s: %w", dir, err)
	}
	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, "~") {
			continue // Excel lock files
		}
		if strings.EqualFold(filepath.Ext(name), ".xlsx") {
			paths = append(paths, filepath.Join(dir, name))
		}
	}
	sort.Strings(paths)
	if len(paths) == 0 {
		return nil, fmt.Errorf("no .xlsx manifests found in %s", dir)
	}
	return paths, nil
}
