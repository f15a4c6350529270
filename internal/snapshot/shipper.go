package snapshot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/imedwei/timedtask/internal/config"
	"github.com/imedwei/timedtask/internal/health"
	"github.com/imedwei/timedtask/internal/metrics"
	"github.com/imedwei/timedtask/internal/storage"
	"github.com/imedwei/timedtask/internal/utils"
	"github.com/imedwei/timedtask/pkg/timedtask"
)

// Task names used in logs, metrics and health output.
const (
	TaskChange = "change"
	TaskSync   = "sync"
	TaskPrune  = "prune"
)

// Job is bound to each upload task; it records which task shipped a snapshot.
type Job struct {
	Trigger string
}

// runHistory tracks the outcome of a task's run attempts.
type runHistory struct {
	lastSuccess time.Time
	lastFailure time.Time
	lastError   string
}

// Shipper watches a source and uploads snapshots of it.
//
// Three timed tasks pace the work. The change task is debounced and poked on
// every observed modification, so it ships on the first change after a quiet
// period. The sync task is throttled and polled while changes are pending, so
// a long burst of changes is still shipped at least once per sync interval.
// The prune task is throttled and deletes snapshots past retention.
//
// Timed tasks are not safe for concurrent use; all access goes through mu.
type Shipper struct {
	mu sync.Mutex

	config  *config.Config
	source  Source
	storage storage.Storage
	logger  *slog.Logger
	clock   timedtask.Clock

	changeTask *timedtask.Task[Job]
	syncTask   *timedtask.Task[Job]
	pruneTask  *timedtask.Task[int] // bound to the retention in days; nil when disabled

	// observed is the newest source mod time seen by Tick; shipped is the mod
	// time of the newest state known to be in storage.
	observed time.Time
	shipped  time.Time

	history       map[string]*runHistory
	storageStatus health.StorageStatus
}

// NewShipper creates a shipper. A nil clock uses the system clock.
func NewShipper(cfg *config.Config, source Source, store storage.Storage, logger *slog.Logger, clock timedtask.Clock) (*Shipper, error) {
	if clock == nil {
		clock = timedtask.SystemClock
	}

	s := &Shipper{
		config:  cfg,
		source:  source,
		storage: store,
		logger:  logger,
		clock:   clock,
		history: map[string]*runHistory{
			TaskChange: {},
			TaskSync:   {},
		},
		storageStatus: health.StorageStatus{Provider: cfg.StorageProvider},
	}

	var err error
	s.changeTask, err = timedtask.NewDebounced(cfg.DebounceInterval, s.ship, Job{Trigger: TaskChange}, timedtask.WithClock(clock))
	if err != nil {
		return nil, fmt.Errorf("failed to create change task: %w", err)
	}

	s.syncTask, err = timedtask.NewThrottled(cfg.SyncInterval, s.ship, Job{Trigger: TaskSync}, timedtask.WithClock(clock))
	if err != nil {
		return nil, fmt.Errorf("failed to create sync task: %w", err)
	}

	if cfg.RetentionDays > 0 {
		s.pruneTask, err = timedtask.NewThrottled(cfg.PruneInterval, s.pruneOld, cfg.RetentionDays, timedtask.WithClock(clock))
		if err != nil {
			return nil, fmt.Errorf("failed to create prune task: %w", err)
		}
		s.history[TaskPrune] = &runHistory{}
	}

	return s, nil
}

// Prime seeds the shipped watermark from storage so a restart does not
// re-ship a source that has not changed since the last snapshot.
func (s *Shipper) Prime(ctx context.Context) {
	latest, err := s.storage.LatestSnapshotTime(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.recordStorage("latest", err)
	if err != nil {
		s.logger.Warn("Failed to get latest snapshot time, source will be shipped", "error", err)
		return
	}
	if latest.IsZero() {
		s.logger.Info("No previous snapshot found")
		return
	}

	s.shipped = latest
	metrics.LastSnapshotTimestamp.Set(float64(latest.Unix()))
	s.logger.Info("Found previous snapshot", "snapshot_time", latest)
}

// Tick observes the source once and gives each timed task its chance to run.
// The caller decides how often to tick.
func (s *Shipper) Tick(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	info, err := s.source.Stat(ctx)
	if err != nil {
		return fmt.Errorf("failed to stat source: %w", err)
	}

	var (
		errs      []error
		changeRan bool
	)

	if info.ModTime.After(s.observed) {
		s.observed = info.ModTime
		if s.pending() {
			s.logger.Debug("Source changed", "path", info.Path, "mod_time", info.ModTime, "size", info.Size)
			changeRan, err = runTask(ctx, s, TaskChange, s.changeTask)
			errs = append(errs, err)
		}
	}

	// One upload attempt per tick; a failed change upload is retried by sync
	// on a later tick.
	if s.pending() && !changeRan {
		_, err = runTask(ctx, s, TaskSync, s.syncTask)
		errs = append(errs, err)
	}

	if s.pruneTask != nil {
		_, err = runTask(ctx, s, TaskPrune, s.pruneTask)
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// Run primes the shipper and ticks every PollInterval until ctx is done.
func (s *Shipper) Run(ctx context.Context) error {
	s.logger.Info("Starting snapshot shipper",
		"poll_interval", s.config.PollInterval,
		"debounce_interval", s.config.DebounceInterval,
		"sync_interval", s.config.SyncInterval,
		"retention_days", s.config.RetentionDays,
	)

	s.Prime(ctx)

	ticker := time.NewTicker(s.config.PollInterval)
	defer ticker.Stop()

	for {
		if err := s.Tick(ctx); err != nil {
			s.logger.Error("Tick failed", "error", err)
		}

		select {
		case <-ctx.Done():
			s.logger.Info("Snapshot shipper stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// Status returns a view of every timed task for health reporting.
func (s *Shipper) Status() []health.TaskStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	statuses := []health.TaskStatus{
		taskStatus(TaskChange, s.changeTask, s.history[TaskChange]),
		taskStatus(TaskSync, s.syncTask, s.history[TaskSync]),
	}
	if s.pruneTask != nil {
		statuses = append(statuses, taskStatus(TaskPrune, s.pruneTask, s.history[TaskPrune]))
	}
	return statuses
}

// StorageStatus returns the outcome of the most recent storage operations.
func (s *Shipper) StorageStatus() health.StorageStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.storageStatus
}

// recordStorage records a storage operation outcome in metrics and status.
// The caller must hold mu.
func (s *Shipper) recordStorage(op string, err error) {
	metrics.RecordStorageOperation(op, s.config.StorageProvider, err == nil)

	s.storageStatus.LastOperation = op
	if err != nil {
		s.storageStatus.LastFailure = s.clock.Now()
		s.storageStatus.LastError = err.Error()
		return
	}
	s.storageStatus.LastSuccess = s.clock.Now()
}

// pending reports whether the source has changes not yet in storage.
func (s *Shipper) pending() bool {
	return s.observed.After(s.shipped)
}

// ship uploads the current state of the source. It is the func bound to
// both the change and sync tasks.
func (s *Shipper) ship(ctx context.Context, job Job) error {
	info, err := s.source.Stat(ctx)
	if err != nil {
		return fmt.Errorf("failed to stat source: %w", err)
	}

	reader, err := s.source.Open(ctx)
	if err != nil {
		return fmt.Errorf("failed to open source: %w", err)
	}
	defer func() {
		if err := reader.Close(); err != nil {
			s.logger.Warn("Failed to close source", "error", err)
		}
	}()

	timestamp := s.clock.Now()
	name := utils.GenerateSnapshotName(s.config.SnapshotPrefix, timestamp, info.Path)
	key := utils.SnapshotKey(timestamp, name)

	progress := utils.NewProgressReader(reader, func(n int64, elapsed time.Duration) {
		s.logger.Info("Upload progress", "storage_key", key, "uploaded", utils.FormatBytes(n), "elapsed", elapsed)
	})

	metadata := map[string]string{
		storage.MetadataTimestamp: timestamp.UTC().Format(time.RFC3339Nano),
		"snapshot-trigger":        job.Trigger,
		"source-path":             info.Path,
		"source-modtime":          info.ModTime.UTC().Format(time.RFC3339Nano),
		"snapshot-tool":           "snapshotd",
	}

	s.logger.Info("Starting snapshot upload", "trigger", job.Trigger, "storage_key", key)
	uploadStart := time.Now()

	err = s.storage.Upload(ctx, key, progress.Body(), metadata)
	s.recordStorage("upload", err)
	if err != nil {
		return fmt.Errorf("failed to upload snapshot: %w", err)
	}

	uploadDuration := time.Since(uploadStart)
	bytesWritten := progress.BytesRead()

	metrics.UploadDuration.Observe(uploadDuration.Seconds())
	metrics.SnapshotSize.Set(float64(bytesWritten))
	metrics.LastSnapshotTimestamp.Set(float64(timestamp.Unix()))

	if info.ModTime.After(s.shipped) {
		s.shipped = info.ModTime
	}

	s.logger.Info("Snapshot uploaded",
		"trigger", job.Trigger,
		"storage_key", key,
		"size", utils.FormatBytes(bytesWritten),
		"upload_duration", uploadDuration,
		"rate", utils.FormatRate(float64(bytesWritten)/max(uploadDuration.Seconds(), 1e-9)),
	)

	return nil
}

// pruneOld deletes snapshots older than retentionDays. It is the func bound
// to the prune task. Objects that are not snapshots are never touched.
func (s *Shipper) pruneOld(ctx context.Context, retentionDays int) error {
	cutoff := s.clock.Now().AddDate(0, 0, -retentionDays)
	s.logger.Info("Pruning old snapshots", "cutoff", cutoff)

	objects, err := s.storage.List(ctx, "")
	s.recordStorage("list", err)
	if err != nil {
		return fmt.Errorf("failed to list snapshots: %w", err)
	}

	var (
		deleted int
		errs    []error
	)
	for _, obj := range objects {
		if !utils.IsSnapshotKey(obj.Key) {
			continue
		}

		snapshotTime, err := utils.ParseSnapshotName(obj.Key)
		if err != nil {
			s.logger.Debug("Using last modified time for snapshot", "storage_key", obj.Key, "error", err)
			snapshotTime = obj.LastModified
		}

		if !snapshotTime.Before(cutoff) {
			continue
		}

		err = s.storage.Delete(ctx, obj.Key)
		s.recordStorage("delete", err)
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to delete %s: %w", obj.Key, err))
			continue
		}

		deleted++
		metrics.SnapshotsDeleted.Inc()
		s.logger.Info("Deleted old snapshot", "storage_key", obj.Key, "snapshot_time", snapshotTime)
	}

	s.logger.Info("Prune completed", "deleted_count", deleted, "failed_count", len(errs))
	return errors.Join(errs...)
}

// runTask performs one readiness check on task and runs it when ready. It
// reports whether the task was invoked.
func runTask[A any](ctx context.Context, s *Shipper, name string, task *timedtask.Task[A]) (bool, error) {
	res := task.Poll()
	metrics.RecordCheck(name, res)
	if !res.Ready {
		s.logger.Debug("Task not ready", "task", name, "reason", res.String())
		return false, nil
	}

	err := task.Run(ctx)
	metrics.RecordTaskRun(name, err == nil)

	h := s.history[name]
	if err != nil {
		h.lastFailure = s.clock.Now()
		h.lastError = err.Error()
		return true, fmt.Errorf("%s task: %w", name, err)
	}
	h.lastSuccess = s.clock.Now()
	return true, nil
}

func taskStatus[A any](name string, task *timedtask.Task[A], h *runHistory) health.TaskStatus {
	return health.TaskStatus{
		Name:         name,
		Policy:       task.Policy().String(),
		Interval:     task.Interval(),
		LastActivate: task.LastActivateTime(),
		LastSuccess:  h.lastSuccess,
		LastFailure:  h.lastFailure,
		LastError:    h.lastError,
	}
}
