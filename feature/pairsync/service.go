package pairsync

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/carboneio/sclone/core/artifact"
	"github.com/carboneio/sclone/core/queue"
	"github.com/carboneio/sclone/core/reconcile"
	"github.com/carboneio/sclone/core/snapshot"
	"github.com/carboneio/sclone/core/storage"
	"github.com/carboneio/sclone/core/utils"
	"github.com/carboneio/sclone/feature/history"

	mapset "github.com/deckarep/golang-set/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// History stores cycle reports.
type History interface {
	Record(ctx context.Context, run *history.Run) error
	Recent(ctx context.Context, pair string, limit int) ([]history.Run, error)
}

// RunOptions tunes a single cycle.
type RunOptions struct {
	// DryRun stops after the safety check and persists nothing.
	DryRun bool
}

// Service runs sync cycles for one pair.
type Service struct {
	pair    Pair
	cfg     Config
	store   snapshot.Store
	history History
	logger  *zap.Logger
	guard   *runGuard
	output  io.Writer

	mu   sync.RWMutex
	last *Report

	triggered sync.WaitGroup
}

// Option configures a Service.
type Option func(*Service)

// WithHistory records every cycle report.
func WithHistory(h History) Option {
	return func(s *Service) { s.history = h }
}

// WithOutput redirects lane progress lines.
func WithOutput(w io.Writer) Option {
	return func(s *Service) { s.output = w }
}

// NewService creates a sync service for pair.
func NewService(pair Pair, cfg Config, store snapshot.Store, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		pair:   pair,
		cfg:    cfg,
		store:  store,
		logger: logger.With(zap.String("pair", pair.Name)),
		guard:  newRunGuard(cfg.LockFile),
		output: os.Stdout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Pair returns the synchronized pair.
func (s *Service) Pair() Pair {
	return s.pair
}

// Running reports whether a cycle is in progress in this process.
func (s *Service) Running() bool {
	return s.guard.busy()
}

// LastReport returns the report of the latest completed cycle, or nil.
func (s *Service) LastReport() *Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

// Recent lists the latest recorded cycles.
func (s *Service) Recent(ctx context.Context, limit int) ([]history.Run, error) {
	if s.history == nil {
		return nil, ErrHistoryDisabled
	}
	return s.history.Recent(ctx, s.pair.Name, limit)
}

// RunOnce runs a full cycle. The report is returned even on failure; a cycle
// that could not start because another one holds the guard returns
// ErrAlreadyRunning with a skipped report.
func (s *Service) RunOnce(ctx context.Context, opts RunOptions) (*Report, error) {
	if err := s.guard.acquire(); err != nil {
		report := newReport(s.pair)
		report.finish(err, opts.DryRun)
		if errors.Is(err, ErrAlreadyRunning) {
			s.logger.Info("Sync already running, cycle skipped")
		}
		return report, err
	}
	defer s.guard.release()
	return s.execute(ctx, opts)
}

// Trigger starts a cycle in the background and returns once it holds the
// guard.
func (s *Service) Trigger(ctx context.Context) error {
	if err := s.guard.acquire(); err != nil {
		return err
	}
	s.triggered.Add(1)
	go func() {
		defer s.triggered.Done()
		defer s.guard.release()
		if _, err := s.execute(ctx, RunOptions{}); err != nil {
			s.logger.Error("Triggered sync failed", zap.Error(err))
		}
	}()
	return nil
}

// Wait blocks until every cycle started by Trigger has returned.
func (s *Service) Wait() {
	s.triggered.Wait()
}

// RunEvery runs a cycle now and then on every tick until ctx is done.
// Ticks elapsing while a cycle runs are dropped.
func (s *Service) RunEvery(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("invalid sync interval %s", interval)
	}
	s.logger.Info("Sync scheduled", zap.Duration("interval", interval))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		s.scheduled(ctx)
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (s *Service) scheduled(ctx context.Context) {
	_, err := s.RunOnce(ctx, RunOptions{})
	switch {
	case errors.Is(err, ErrAlreadyRunning), errors.Is(err, context.Canceled):
	case err != nil:
		s.logger.Error("Scheduled sync failed", zap.Error(err))
	}
	s.prune()
}

func (s *Service) prune() {
	if s.cfg.ArtifactRetention <= 0 || s.cfg.ArtifactDir == "" {
		return
	}
	n, err := artifact.Prune(s.cfg.ArtifactDir, s.cfg.ArtifactRetention)
	if err != nil {
		s.logger.Warn("Failed to prune artifacts", zap.Error(err))
		return
	}
	if n > 0 {
		s.logger.Info("Pruned artifacts", zap.Int("removed", n))
	}
}

// cycle carries the mutable state of one run.
type cycle struct {
	report *Report
	log    *zap.Logger
	state  *reconcile.State
	ops    *reconcile.OperationSet

	failedUploads mapset.Set[string]
	failedDeletes []*storage.FileEntry
}

func (s *Service) execute(ctx context.Context, opts RunOptions) (*Report, error) {
	report := newReport(s.pair)
	c := &cycle{
		report:        report,
		log:           s.logger.With(zap.String("cycle_id", report.CycleID)),
		failedUploads: mapset.NewSet[string](),
	}
	c.log.Info("Sync cycle started",
		zap.String("mode", string(s.pair.Policy.Mode)),
		zap.Bool("delete", s.pair.Policy.Deletion),
		zap.Bool("dry_run", opts.DryRun),
	)

	err := s.pipeline(ctx, c, opts)
	report.finish(err, opts.DryRun)

	s.mu.Lock()
	s.last = report
	s.mu.Unlock()
	s.record(ctx, report)

	fields := []zap.Field{
		zap.String("status", string(report.Status)),
		zap.String("stage", string(report.Stage)),
		zap.String("duration", utils.FormatDuration(report.Duration)),
		zap.Int("uploaded", report.Uploaded),
		zap.Int("deleted", report.Deleted),
		zap.Int("failed", report.Failed),
		zap.String("transferred", utils.FormatBytes(report.Bytes)),
	}
	if err != nil {
		c.log.Error("Sync cycle failed", append(fields, zap.Error(err))...)
		return report, err
	}
	c.log.Info("Sync cycle finished", fields...)
	return report, nil
}

func (s *Service) record(ctx context.Context, report *Report) {
	if s.history == nil {
		return
	}
	if err := s.history.Record(context.WithoutCancel(ctx), report.run()); err != nil {
		s.logger.Warn("Failed to record sync run", zap.Error(err))
	}
}

func (s *Service) pipeline(ctx context.Context, c *cycle, opts RunOptions) error {
	bi := s.pair.Policy.Mode == reconcile.Bidirectional

	c.report.Stage = StageListing
	source, target, err := s.list(ctx)
	if err != nil {
		return &StageError{Stage: StageListing, Err: err}
	}
	c.log.Info("Storages listed", zap.Int("source", source.Len()), zap.Int("target", target.Len()))

	c.report.Stage = StageLoadingCache
	cache := reconcile.NewIndex()
	if bi {
		loaded, err := s.store.Load(ctx)
		if err != nil {
			c.log.Warn("Cache unavailable, continuing with an empty cache", zap.Error(err))
		} else {
			cache = loaded
		}
	}

	c.report.Stage = StageReconciling
	c.state = reconcile.NewState(source, target, cache)
	c.ops, err = reconcile.ComputeSync(c.state, s.pair.Policy)
	if err != nil {
		return &StageError{Stage: StageReconciling, Err: err}
	}
	c.report.Planned = reconcile.Summarize(c.ops)
	for _, key := range c.ops.Conflicts {
		c.log.Warn("Object changed on both sides at the same time",
			zap.String("key", key),
			zap.String("tie_break", string(s.pair.Policy.TieBreak)),
		)
	}
	c.log.Info("Reconciliation computed",
		zap.Int("upload_target", c.report.Planned.UploadTarget),
		zap.Int("delete_target", c.report.Planned.DeleteTarget),
		zap.Int("upload_source", c.report.Planned.UploadSource),
		zap.Int("delete_source", c.report.Planned.DeleteSource),
		zap.Int("updates_target", c.ops.UpdatesTarget),
		zap.Int("updates_source", c.ops.UpdatesSource),
	)
	if opts.DryRun || s.cfg.LogSync {
		path, err := reconcile.WritePlan(s.cfg.ArtifactDir, s.pair.Name, s.pair.Policy, c.ops)
		if err != nil {
			c.log.Warn("Failed to write plan", zap.Error(err))
		} else {
			c.report.PlanPath = path
			c.log.Info("Plan written", zap.String("path", path))
		}
	}

	c.report.Stage = StageSafetyCheck
	if err := c.ops.CheckDeletionLimit(s.cfg.MaxDeletions); err != nil {
		return &StageError{Stage: StageSafetyCheck, Err: err}
	}
	if opts.DryRun {
		return nil
	}

	if err := s.transfer(ctx, c, bi); err != nil {
		return err
	}

	if !bi {
		return nil
	}
	c.report.Stage = StagePersisting
	if err := s.store.Save(ctx, s.snapshotOf(c)); err != nil {
		return &StageError{Stage: StagePersisting, Err: err}
	}
	return nil
}

// list fetches both sides concurrently.
func (s *Service) list(ctx context.Context) (*reconcile.Index, *reconcile.Index, error) {
	var source, target []storage.FileEntry
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		entries, err := s.pair.Source.List(gctx, storage.ListOptions{})
		if err != nil {
			return &ListingError{Side: "source", Err: err}
		}
		source = entries
		return nil
	})
	g.Go(func() error {
		entries, err := s.pair.Target.List(gctx, storage.ListOptions{})
		if err != nil {
			return &ListingError{Side: "target", Err: err}
		}
		target = entries
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return reconcile.IndexOf(source), reconcile.IndexOf(target), nil
}

func (s *Service) queueOptions() queue.Options {
	return queue.Options{
		Concurrency: s.cfg.Transfers,
		Delay:       s.cfg.Delay,
		Retry:       s.cfg.Retry,
		Progress:    s.cfg.Progress,
		Output:      s.output,
		ArtifactDir: s.cfg.ArtifactDir,
		Logger:      s.logger,
	}
}

// transfer executes the operation set. Item failures are collected; only
// runner faults such as cancellation abort the cycle.
func (s *Service) transfer(ctx context.Context, c *cycle, bi bool) error {
	p := s.pair

	c.report.Stage = StageDeletingTarget
	if err := s.deleteFrom(ctx, c, p.Target, targetKey, "delete-files-target", c.ops.DeleteTarget); err != nil {
		return &StageError{Stage: StageDeletingTarget, Err: err}
	}

	c.report.Stage = StageUploadingTarget
	if err := s.copyTo(ctx, c, p.Source, p.Target, sourceKey, targetKey, "upload-from-source-to-target", c.ops.UploadTarget); err != nil {
		return &StageError{Stage: StageUploadingTarget, Err: err}
	}

	if !bi {
		return nil
	}

	c.report.Stage = StageDeletingSource
	if err := s.deleteFrom(ctx, c, p.Source, sourceKey, "delete-files-source", c.ops.DeleteSource); err != nil {
		return &StageError{Stage: StageDeletingSource, Err: err}
	}

	c.report.Stage = StageUploadingSource
	if err := s.copyTo(ctx, c, p.Target, p.Source, targetKey, sourceKey, "upload-from-target-to-source", c.ops.UploadSource); err != nil {
		return &StageError{Stage: StageUploadingSource, Err: err}
	}
	return nil
}

func (s *Service) copyTo(ctx context.Context, c *cycle, from, to storage.Adapter, fromKey, toKey func(*storage.FileEntry) string, name string, entries []*storage.FileEntry) error {
	if len(entries) == 0 {
		return nil
	}
	out, err := queue.Run(ctx, name, entries, copyWorker(from, to, fromKey, toKey), s.queueOptions())
	if out != nil {
		c.report.Uploaded += len(out.Results)
		for _, n := range out.Results {
			c.report.Bytes += n
		}
		c.report.Failed += len(out.Errors)
		for _, e := range out.FailedItems() {
			c.failedUploads.Add(e.Key)
		}
	}
	return err
}

func (s *Service) deleteFrom(ctx context.Context, c *cycle, side storage.Adapter, keyOf func(*storage.FileEntry) string, name string, entries []*storage.FileEntry) error {
	if len(entries) == 0 {
		return nil
	}
	out, err := queue.Run(ctx, name, chunkEntries(entries), deleteWorker(side, keyOf), s.queueOptions())
	if out != nil {
		for _, n := range out.Results {
			c.report.Deleted += n
		}
		for _, ie := range out.Errors {
			var df *DeleteFailure
			if errors.As(ie.Err, &df) {
				c.report.Deleted += df.Deleted
			}
		}
		failed := failedDeletes(out.Errors)
		c.report.Failed += len(failed)
		c.failedDeletes = append(c.failedDeletes, failed...)
	}
	return err
}

// snapshotOf picks the mapping to persist and corrects it for the items
// that failed: failed uploads are dropped so they are detected as new on
// the next cycle, failed deletions are kept so they are deleted again.
func (s *Service) snapshotOf(c *cycle) *reconcile.Index {
	snap := c.state.Source
	if c.state.Cache.Len() > 0 {
		snap = c.state.Target
	}
	for _, key := range c.failedUploads.ToSlice() {
		snap.Delete(key)
	}
	for _, e := range c.failedDeletes {
		snap.Set(e.Key, e)
	}
	return snap
}
