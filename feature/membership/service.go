package membership

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"roster-sync/core/reconcile"
	"roster-sync/feature/roster"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// Mirror is the mailing list: it lists subscribers and applies operations.
type Mirror interface {
	reconcile.Mutator
	ListSubscribers(ctx context.Context) ([]reconcile.MirrorRecord, error)
}

// Service runs reconciliations between the roster and the mailing list.
type Service struct {
	source    roster.Source
	columns   roster.Columns
	mirror    Mirror
	skippable func(error) bool
	archive   *ReportArchive
	logger    *zap.Logger

	// mu serializes live runs
	mu sync.Mutex
	sf singleflight.Group
}

// NewService creates a membership service. archive may be nil to disable report archiving.
func NewService(source roster.Source, columns roster.Columns, mirror Mirror, skippable func(error) bool, archive *ReportArchive, logger *zap.Logger) *Service {
	return &Service{
		source:    source,
		columns:   columns,
		mirror:    mirror,
		skippable: skippable,
		archive:   archive,
		logger:    logger,
	}
}

// Archive returns the report archive, or nil when archiving is disabled.
func (s *Service) Archive() *ReportArchive {
	return s.archive
}

// Run loads fresh snapshots and reconciles them. Live runs never overlap.
// The report is archived when an archive is configured; archiving failures are logged only.
// A live run rejected by the mailing list archives a partial report with the applied operations.
func (s *Service) Run(ctx context.Context, dryRun bool) (*Report, error) {
	if !dryRun {
		s.mu.Lock()
		defer s.mu.Unlock()
	}

	report := &Report{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
		DryRun:    dryRun,
	}
	log := s.logger.With(zap.String("run_id", report.RunID), zap.Bool("dry_run", dryRun))

	source, mirror, err := s.snapshots(ctx)
	if err != nil {
		return nil, err
	}
	report.SourceCount = len(source)
	report.MirrorCount = len(mirror)

	spec := &reconcile.Spec{
		Mutator:   s.mirror,
		DryRun:    dryRun,
		Skippable: s.skippable,
		Logger:    log,
	}
	result, err := reconcile.Reconcile(ctx, spec, source, mirror)
	if err != nil {
		report.FinishedAt = time.Now().UTC()
		report.Error = err.Error()

		var mutationErr *reconcile.MutationError
		if errors.As(err, &mutationErr) {
			report.Applied = mutationErr.Applied
			for _, op := range mutationErr.Applied {
				log.Warn("Applied before abort", zap.String("type", string(op.Type())), zap.Stringer("op", op))
			}
			s.save(ctx, report, log)
		}

		log.Error("Reconciliation failed", zap.Error(err), zap.Int("applied", len(report.Applied)))
		return nil, fmt.Errorf("reconciliation failed: %w", err)
	}
	report.Result = result
	report.FinishedAt = time.Now().UTC()

	log.Info("Reconciliation finished",
		zap.Int("adds", result.Summary.Adds),
		zap.Int("edits", result.Summary.Edits),
		zap.Int("deletes", result.Summary.Deletes),
		zap.Int("skipped", result.Summary.Skipped),
		zap.Int("warnings", len(result.Warnings)))

	s.save(ctx, report, log)
	return report, nil
}

// save archives the report when an archive is configured. Failures are logged only.
func (s *Service) save(ctx context.Context, report *Report, log *zap.Logger) {
	if s.archive == nil {
		return
	}
	key, err := s.archive.Save(ctx, report)
	if err != nil {
		log.Error("Failed to archive report", zap.Error(err))
		return
	}
	report.Archive = key
}

// Plan performs a dry run. Concurrent callers share one in-flight run.
func (s *Service) Plan(ctx context.Context) (*Report, error) {
	v, err, _ := s.sf.Do("plan", func() (interface{}, error) {
		return s.Run(ctx, true)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Report), nil
}

// Drift compares fresh snapshots without planning operations.
func (s *Service) Drift(ctx context.Context) (*reconcile.Drift, error) {
	source, mirror, err := s.snapshots(ctx)
	if err != nil {
		return nil, err
	}
	return reconcile.ComputeDrift(source, mirror)
}

// snapshots loads the roster and the mailing list concurrently.
func (s *Service) snapshots(ctx context.Context) ([]reconcile.SourceRecord, []reconcile.MirrorRecord, error) {
	var (
		source []reconcile.SourceRecord
		mirror []reconcile.MirrorRecord
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		records, err := roster.Load(gctx, s.source, s.columns)
		if err != nil {
			return err
		}
		source = records
		return nil
	})
	g.Go(func() error {
		records, err := s.mirror.ListSubscribers(gctx)
		if err != nil {
			return fmt.Errorf("failed to load subscribers: %w", err)
		}
		mirror = records
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return source, mirror, nil
}
