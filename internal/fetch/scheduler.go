package fetch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"stockpile/internal/logging"
	"stockpile/internal/task"
)

// Scheduler executes one task's items with a bounded number of concurrent
// transfers. It always produces exactly one result per item and returns
// only after every submitted transfer has finished.
type Scheduler struct {
	client  *Client
	maxJobs int
	logger  *slog.Logger

	// now is overridable for tests.
	now func() time.Time
}

// NewScheduler builds a scheduler. maxJobs below 1 is clamped to 1.
func NewScheduler(client *Client, maxJobs int, logger *slog.Logger) *Scheduler {
	if maxJobs < 1 {
		maxJobs = 1
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Scheduler{client: client, maxJobs: maxJobs, logger: logger, now: time.Now}
}

// Run fetches every item of t and fills t.Results with one entry per
// item. Submission follows manifest row order; completion order is
// unconstrained. Item failures never abort the task.
func (s *Scheduler) Run(ctx context.Context, t *task.Task) {
	if len(t.Items) == 0 {
		t.Results = nil
		t.Status = task.StatusFetched
		return
	}

	t.Status = task.StatusFetching
	results := make([]task.Result, len(t.Items))

	group := new(errgroup.Group)
	group.SetLimit(s.maxJobs)
	for i, item := range t.Items {
		i, item := i, item
		group.Go(func() error {
			// Each worker owns its result slot; no shared state.
			results[i] = s.fetchOne(ctx, t.OutputFolder, item)
			return nil
		})
	}
	_ = group.Wait()

	t.Results = results
	t.Status = task.StatusFetched
}

func (s *Scheduler) fetchOne(ctx context.Context, outputFolder string, item task.Item) task.Result {
	dest := filepath.Join(outputFolder, item.Group, item.FileName)
	result := task.Result{Item: item, DestinationPath: dest}

	if item.Group != "" {
		// MkdirAll is idempotent, so two workers in the same group
		// racing here is harmless.
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			result.Err = Classify(err)
			s.logger.Warn("group folder creation failed",
				logging.String("file", item.FileName),
				logging.Error(err))
			return result
		}
	}

	if err := s.client.Download(ctx, item.URL, dest); err != nil {
		result.Err = Classify(err)
		s.logger.Warn("download failed",
			logging.String("url", item.URL),
			logging.String("file", item.FileName),
			logging.Error(err))
		return result
	}

	downloadedAt := s.now()
	result.DownloadedAt = &downloadedAt
	s.logger.Debug("download complete",
		logging.String("url", item.URL),
		logging.String("file", item.FileName))
	return result
}
