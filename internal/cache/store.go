// Package cache persists computed result datasets in per-scope database
// tables. Entries are whole-row replaced on write and deleted on
// invalidation; they are never patched in place.
package cache

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/multierr"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/seistore/seistore/internal/models"
	"github.com/seistore/seistore/internal/results"
)

// Store implements the result cache over the three scope tables.
type Store struct {
	db *gorm.DB
}

// NewStore constructs a database-backed result cache.
func NewStore(db *gorm.DB) *Store {
	if db == nil {
		return nil
	}
	return &Store{db: db}
}

const keyCondition = "project_id = ? AND result_type = ? AND scope_key = ?"

var cacheKeyConflict = clause.OnConflict{
	Columns: []clause.Column{
		{Name: "project_id"},
		{Name: "result_type"},
		{Name: "scope_key"},
	},
	DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
}

// Get looks up a cached dataset blob. A miss is (nil, false, nil).
func (s *Store) Get(ctx context.Context, scope results.Scope, projectID, resultType, scopeKey string) ([]byte, bool, error) {
	if s == nil {
		return nil, false, errors.New("cache: store not initialised")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	db := s.db.WithContext(ctx)

	var (
		data datatypes.JSON
		err  error
	)

	switch scope {
	case results.ScopeGlobal:
		var entry models.GlobalResultCache
		err = db.Take(&entry, keyCondition, projectID, resultType, scopeKey).Error
		data = entry.Data
	case results.ScopeElement:
		var entry models.ElementResultCache
		err = db.Take(&entry, keyCondition, projectID, resultType, scopeKey).Error
		data = entry.Data
	case results.ScopeJoint:
		var entry models.JointResultCache
		err = db.Take(&entry, keyCondition, projectID, resultType, scopeKey).Error
		data = entry.Data
	default:
		return nil, false, fmt.Errorf("cache: unknown scope %q", scope)
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return []byte(data), true, nil
}

// Put upserts a cached dataset blob for the key tuple. Writes are idempotent
// whole-row replaces.
func (s *Store) Put(ctx context.Context, scope results.Scope, projectID, resultType, scopeKey string, data []byte) error {
	if s == nil {
		return errors.New("cache: store not initialised")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	db := s.db.WithContext(ctx).Clauses(cacheKeyConflict)

	switch scope {
	case results.ScopeGlobal:
		entry := models.GlobalResultCache{
			ProjectID:  projectID,
			ResultType: resultType,
			ScopeKey:   scopeKey,
			Data:       datatypes.JSON(data),
		}
		return db.Create(&entry).Error
	case results.ScopeElement:
		entry := models.ElementResultCache{
			ProjectID:  projectID,
			ResultType: resultType,
			ScopeKey:   scopeKey,
			Data:       datatypes.JSON(data),
		}
		return db.Create(&entry).Error
	case results.ScopeJoint:
		entry := models.JointResultCache{
			ProjectID:  projectID,
			ResultType: resultType,
			ScopeKey:   scopeKey,
			Data:       datatypes.JSON(data),
		}
		return db.Create(&entry).Error
	default:
		return fmt.Errorf("cache: unknown scope %q", scope)
	}
}

// Invalidate removes cache rows for a project. With a result type, only rows
// of that type are removed; otherwise the project's rows in every scope table.
func (s *Store) Invalidate(ctx context.Context, projectID, resultType string) error {
	if s == nil {
		return errors.New("cache: store not initialised")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return InvalidateTx(s.db.WithContext(ctx), projectID, resultType)
}

// InvalidateTypes removes cache rows for a set of result type names outside
// any transaction, e.g. for an explicit cache clear.
func (s *Store) InvalidateTypes(ctx context.Context, projectID string, types []string) error {
	if s == nil {
		return errors.New("cache: store not initialised")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return InvalidateTypesTx(s.db.WithContext(ctx), projectID, types)
}

// InvalidateTx removes cache rows using the caller's transaction handle, so
// an import can commit raw rows and invalidation atomically.
func InvalidateTx(tx *gorm.DB, projectID, resultType string) error {
	if tx == nil {
		return errors.New("cache: nil transaction handle")
	}
	if projectID == "" {
		return errors.New("cache: project id is required")
	}

	condition := "project_id = ?"
	args := []interface{}{projectID}
	if resultType != "" {
		condition = "project_id = ? AND result_type = ?"
		args = append(args, resultType)
	}

	return deleteAllScopes(tx, condition, args...)
}

// InvalidateTypesTx removes cache rows for a set of result type names inside
// the caller's transaction.
func InvalidateTypesTx(tx *gorm.DB, projectID string, types []string) error {
	if tx == nil {
		return errors.New("cache: nil transaction handle")
	}
	if projectID == "" {
		return errors.New("cache: project id is required")
	}
	if len(types) == 0 {
		return nil
	}

	return deleteAllScopes(tx, "project_id = ? AND result_type IN ?", projectID, types)
}

func deleteAllScopes(tx *gorm.DB, condition string, args ...interface{}) error {
	var err error
	err = multierr.Append(err, tx.Where(condition, args...).Delete(&models.GlobalResultCache{}).Error)
	err = multierr.Append(err, tx.Where(condition, args...).Delete(&models.ElementResultCache{}).Error)
	err = multierr.Append(err, tx.Where(condition, args...).Delete(&models.JointResultCache{}).Error)
	return err
}
