package maintenance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/seistore/seistore/internal/models"
	"github.com/seistore/seistore/pkg/logger"
	"github.com/seistore/seistore/pkg/metrics"
)

const defaultSweepSpec = "@hourly"

// Sweeper prunes leftovers the request path cannot produce but operational
// accidents can: cache rows whose project is gone, and result sets that no
// longer hold any raw rows.
type Sweeper struct {
	db       *gorm.DB
	cron     *cron.Cron
	now      func() time.Time
	log      *zap.Logger
	schedule string
}

// Option customises the Sweeper.
type Option func(*Sweeper)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(s *Sweeper) {
		if c != nil {
			s.cron = c
		}
	}
}

// WithNow overrides the clock used for logging sweep timestamps.
func WithNow(now func() time.Time) Option {
	return func(s *Sweeper) {
		if now != nil {
			s.now = now
		}
	}
}

// WithSchedule overrides the cron specification for the sweep job.
func WithSchedule(spec string) Option {
	return func(s *Sweeper) {
		if spec != "" {
			s.schedule = spec
		}
	}
}

// NewSweeper constructs a Sweeper with sensible defaults.
func NewSweeper(db *gorm.DB, opts ...Option) *Sweeper {
	s := &Sweeper{
		db:       db,
		now:      time.Now,
		schedule: defaultSweepSpec,
		log:      logger.WithModule("maintenance"),
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.cron == nil {
		s.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}

	return s
}

// Start registers the sweep job with the cron scheduler and launches it.
func (s *Sweeper) Start() error {
	if s.db == nil {
		return nil
	}

	if _, err := s.cron.AddFunc(s.schedule, func() {
		if _, err := s.RunOnce(context.Background()); err != nil {
			s.log.Warn("sweep failed", zap.Error(err))
		}
	}); err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

// Stop halts the underlying scheduler, waiting for any running jobs to complete.
func (s *Sweeper) Stop() context.Context {
	if s.cron == nil {
		return context.Background()
	}
	return s.cron.Stop()
}

// SweepStats captures the number of records removed in one pass.
type SweepStats struct {
	OrphanedCacheRows int64
	EmptyResultSets   int64
}

// RunOnce executes one sweep pass. Primarily used in tests and during
// graceful shutdown.
func (s *Sweeper) RunOnce(ctx context.Context) (SweepStats, error) {
	if s.db == nil {
		return SweepStats{}, errors.New("sweeper: db is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	stats := SweepStats{}
	var errs error

	n, err := pruneOrphanedCacheRows(ctx, s.db)
	if err != nil {
		errs = multierr.Append(errs, err)
	}
	stats.OrphanedCacheRows = n

	m, err := pruneEmptyResultSets(ctx, s.db)
	if err != nil {
		errs = multierr.Append(errs, err)
	}
	stats.EmptyResultSets = m

	if stats.OrphanedCacheRows > 0 {
		metrics.CacheInvalidations.WithLabelValues("sweep").Inc()
	}

	s.log.Info("sweep finished",
		zap.Time("at", s.now()),
		zap.Int64("orphaned_cache_rows", stats.OrphanedCacheRows),
		zap.Int64("empty_result_sets", stats.EmptyResultSets),
	)

	return stats, errs
}

// pruneOrphanedCacheRows removes cache rows whose project no longer exists.
// The cache tables carry no foreign key on purpose, so a project removed
// outside the service layer leaves rows behind.
func pruneOrphanedCacheRows(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64

	orphaned := "project_id NOT IN (?)"
	projectIDs := db.Model(&models.Project{}).Select("id")

	for _, model := range []any{
		&models.GlobalResultCache{},
		&models.ElementResultCache{},
		&models.JointResultCache{},
	} {
		result := db.WithContext(ctx).Where(orphaned, projectIDs).Delete(model)
		if result.Error != nil {
			return total, fmt.Errorf("sweeper: orphaned cache rows: %w", result.Error)
		}
		total += result.RowsAffected
	}

	return total, nil
}

// pruneEmptyResultSets removes result sets that hold no raw rows. Imports
// always create a set together with its rows, so an empty set is debris.
func pruneEmptyResultSets(ctx context.Context, db *gorm.DB) (int64, error) {
	rowSets := db.Model(&models.RawRow{}).Select("DISTINCT result_set_id")

	result := db.WithContext(ctx).
		Where("id NOT IN (?)", rowSets).
		Delete(&models.ResultSet{})
	if result.Error != nil {
		return 0, fmt.Errorf("sweeper: empty result sets: %w", result.Error)
	}
	return result.RowsAffected, nil
}
