package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/seistore/seistore/internal/cache"
	"github.com/seistore/seistore/internal/models"
	"github.com/seistore/seistore/internal/results"
	apperrors "github.com/seistore/seistore/pkg/errors"
	"github.com/seistore/seistore/pkg/metrics"
)

// ProjectService manages project lifecycle, including the cascade of raw
// rows and cache rows on delete.
type ProjectService struct {
	db    *gorm.DB
	cache *cache.Store
}

// NewProjectService constructs a project service.
func NewProjectService(db *gorm.DB, store *cache.Store) (*ProjectService, error) {
	if db == nil {
		return nil, errors.New("project service: db is required")
	}
	if store == nil {
		return nil, errors.New("project service: cache store is required")
	}
	return &ProjectService{db: db, cache: store}, nil
}

// CreateProjectInput captures required fields when creating a project.
type CreateProjectInput struct {
	Name         string
	AnalysisType string
}

// Create persists a new project. The analysis type is normalized onto the
// closed NLTHA/Pushover/Mixed set.
func (s *ProjectService) Create(ctx context.Context, input CreateProjectInput) (*models.Project, error) {
	ctx = ensuredContext(ctx)

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewBadRequest("project name is required")
	}

	project := models.Project{
		Name:         name,
		AnalysisType: models.NormalizeAnalysisType(input.AnalysisType),
	}

	if err := s.db.WithContext(ctx).Create(&project).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.ErrConflict.WithMessage(fmt.Sprintf("project %q already exists", name))
		}
		return nil, err
	}

	return &project, nil
}

// Get loads a project by id.
func (s *ProjectService) Get(ctx context.Context, id string) (*models.Project, error) {
	ctx = ensuredContext(ctx)

	var project models.Project
	err := s.db.WithContext(ctx).Take(&project, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.ErrProjectNotFound.WithMessage(fmt.Sprintf("project %q not found", id))
	}
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// List returns all projects ordered by name.
func (s *ProjectService) List(ctx context.Context) ([]models.Project, error) {
	ctx = ensuredContext(ctx)

	var projects []models.Project
	if err := s.db.WithContext(ctx).Order("LOWER(name)").Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

// Delete removes a project, its result sets and raw rows (database cascade),
// and every cache row, all in one transaction.
func (s *ProjectService) Delete(ctx context.Context, id string) error {
	ctx = ensuredContext(ctx)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var project models.Project
		err := tx.Take(&project, "id = ?", id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrProjectNotFound.WithMessage(fmt.Sprintf("project %q not found", id))
		}
		if err != nil {
			return err
		}

		if err := cache.InvalidateTx(tx, id, ""); err != nil {
			return err
		}
		return tx.Delete(&models.Project{}, "id = ?", id).Error
	})
	if err != nil {
		return err
	}

	metrics.CacheInvalidations.WithLabelValues("project_delete").Inc()
	return nil
}

// ClearCache drops cached datasets for a project, optionally narrowed to one
// result type. A narrowed clear expands to the base type's direction variants
// so it removes the same rows an import of that type would invalidate. Raw
// rows are untouched; the next read rebuilds.
func (s *ProjectService) ClearCache(ctx context.Context, id, resultType string) error {
	ctx = ensuredContext(ctx)

	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	if resultType == "" {
		if err := s.cache.Invalidate(ctx, id, ""); err != nil {
			return err
		}
	} else {
		base, _ := results.ExtractBaseType(resultType)
		if err := s.cache.InvalidateTypes(ctx, id, results.TypeVariants(base)); err != nil {
			return err
		}
	}

	metrics.CacheInvalidations.WithLabelValues("explicit").Inc()
	return nil
}

// ListResultSets returns a project's imported batches, newest first.
func (s *ProjectService) ListResultSets(ctx context.Context, projectID string) ([]models.ResultSet, error) {
	ctx = ensuredContext(ctx)

	if _, err := s.Get(ctx, projectID); err != nil {
		return nil, err
	}

	var sets []models.ResultSet
	if err := s.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at DESC").
		Find(&sets).Error; err != nil {
		return nil, err
	}
	return sets, nil
}
