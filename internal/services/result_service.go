package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/seistore/seistore/internal/cache"
	"github.com/seistore/seistore/internal/models"
	"github.com/seistore/seistore/internal/results"
	apperrors "github.com/seistore/seistore/pkg/errors"
	"github.com/seistore/seistore/pkg/logger"
	"github.com/seistore/seistore/pkg/metrics"
)

// ResultService serves derived datasets: cache lookup first, provider build
// on miss, whole-row cache write afterwards.
type ResultService struct {
	db       *gorm.DB
	cache    *cache.Store
	registry *results.Registry
	builds   keyedMutex
	log      *zap.Logger
}

// NewResultService constructs the dataset lookup-or-build orchestrator.
func NewResultService(db *gorm.DB, store *cache.Store, registry *results.Registry) (*ResultService, error) {
	if db == nil {
		return nil, errors.New("result service: db is required")
	}
	if store == nil {
		return nil, errors.New("result service: cache store is required")
	}
	if registry == nil {
		registry = results.NewRegistry()
	}

	return &ResultService{
		db:       db,
		cache:    store,
		registry: registry,
		log:      logger.WithModule("results"),
	}, nil
}

// Registry exposes the provider registry, e.g. for listing result types.
func (s *ResultService) Registry() *results.Registry {
	return s.registry
}

// GetDataset returns the dataset for (project, result type, scope key),
// building and caching it on a miss. The result type may carry a direction
// suffix ("Drifts_X"); the base type selects the provider.
func (s *ResultService) GetDataset(ctx context.Context, projectID, resultType, scopeKey string) (*results.Dataset, error) {
	if s == nil {
		return nil, errors.New("result service: service not initialised")
	}
	ctx = ensuredContext(ctx)

	if err := s.ensureProject(ctx, projectID); err != nil {
		return nil, err
	}

	base, direction := results.ExtractBaseType(resultType)
	provider, err := s.registry.Lookup(base)
	if err != nil {
		return nil, err
	}
	scope := provider.Scope()

	// Cache rows are keyed by the canonical type name so that requests with
	// case-variant suffixes ("Drifts_x") share one row, and invalidation by
	// type variants reaches every row for the base type.
	cacheType := results.CanonicalType(base, direction)

	if dataset, ok := s.cacheLookup(ctx, scope, projectID, cacheType, scopeKey); ok {
		metrics.CacheLookups.WithLabelValues(base, "hit").Inc()
		return dataset, nil
	}

	release := s.builds.lock(buildKey(projectID, cacheType, scopeKey))
	defer release()

	// A concurrent request may have finished the build while we waited.
	if dataset, ok := s.cacheLookup(ctx, scope, projectID, cacheType, scopeKey); ok {
		metrics.CacheLookups.WithLabelValues(base, "hit").Inc()
		return dataset, nil
	}
	metrics.CacheLookups.WithLabelValues(base, "miss").Inc()

	rows, err := s.rawRows(ctx, projectID, base, scope, scopeKey)
	if err != nil {
		return nil, err
	}

	dataset, err := provider.Compute(rows, direction)
	if err != nil {
		metrics.CacheBuilds.WithLabelValues(base, "error").Inc()
		return nil, err
	}
	metrics.CacheBuilds.WithLabelValues(base, "success").Inc()

	blob, err := dataset.Encode()
	if err != nil {
		return nil, fmt.Errorf("encode dataset: %w", err)
	}

	// A failed cache write must not fail the read path.
	if err := s.cache.Put(ctx, scope, projectID, cacheType, scopeKey, blob); err != nil {
		metrics.CacheWriteFailures.Inc()
		s.log.Warn("cache write failed, serving computed dataset",
			zap.String("project_id", projectID),
			zap.String("result_type", cacheType),
			zap.Error(err),
		)
	}

	return dataset, nil
}

func (s *ResultService) ensureProject(ctx context.Context, projectID string) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Project{}).Where("id = ?", projectID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return apperrors.ErrProjectNotFound.WithMessage(fmt.Sprintf("project %q not found", projectID))
	}
	return nil
}

// cacheLookup returns the decoded dataset on a clean hit. Lookup or decode
// failures degrade to a miss so a damaged cache row cannot poison reads; the
// subsequent build overwrites it.
func (s *ResultService) cacheLookup(ctx context.Context, scope results.Scope, projectID, resultType, scopeKey string) (*results.Dataset, bool) {
	blob, hit, err := s.cache.Get(ctx, scope, projectID, resultType, scopeKey)
	if err != nil {
		s.log.Warn("cache lookup failed, treating as miss",
			zap.String("project_id", projectID),
			zap.String("result_type", resultType),
			zap.Error(err),
		)
		return nil, false
	}
	if !hit {
		return nil, false
	}

	dataset, err := results.Decode(blob)
	if err != nil {
		s.log.Warn("cached dataset is unreadable, rebuilding",
			zap.String("project_id", projectID),
			zap.String("result_type", resultType),
			zap.Error(err),
		)
		return nil, false
	}
	return dataset, true
}

func (s *ResultService) rawRows(ctx context.Context, projectID, base string, scope results.Scope, scopeKey string) ([]models.RawRow, error) {
	query := s.db.WithContext(ctx).
		Where("project_id = ? AND result_type IN ?", projectID, results.TypeVariants(base)).
		Order("id")

	if scopeKey != "" {
		switch scope {
		case results.ScopeElement:
			query = query.Where("element = ?", scopeKey)
		case results.ScopeJoint:
			query = query.Where("joint = ?", scopeKey)
		}
	}

	var rows []models.RawRow
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func buildKey(projectID, resultType, scopeKey string) string {
	return projectID + "\x00" + resultType + "\x00" + scopeKey
}
