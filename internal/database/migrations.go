package database

import (
	"errors"

	"gorm.io/gorm"

	"github.com/seistore/seistore/internal/models"
)

// AutoMigrate creates or updates the database schema for all models. The
// cache tables carry their (project_id, result_type) lookup indexes via the
// model tags, so migration is the only schema step required.
func AutoMigrate(db *gorm.DB) error {
	if db == nil {
		return errors.New("nil database handle")
	}

	return db.AutoMigrate(
		&models.Project{},
		&models.ResultSet{},
		&models.RawRow{},
		&models.GlobalResultCache{},
		&models.ElementResultCache{},
		&models.JointResultCache{},
	)
}
