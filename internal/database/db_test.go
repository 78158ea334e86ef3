package database

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/seistore/seistore/internal/models"
)

func TestOpenUnsupportedDriver(t *testing.T) {
	_, err := Open(Config{Driver: "oracle"})
	require.Error(t, err)
	require.Contains(t, err.Error(), "unsupported database driver")
}

func TestOpenSQLiteInMemoryAndMigrate(t *testing.T) {
	db, err := Open(Config{Driver: "sqlite"})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, AutoMigrate(db))

	for _, table := range []string{
		"projects", "result_sets", "raw_rows",
		"global_result_caches", "element_result_caches", "joint_result_caches",
	} {
		require.True(t, db.Migrator().HasTable(table), "missing table %s", table)
	}
}

func TestProjectDeleteCascadesToRows(t *testing.T) {
	db, err := Open(Config{Driver: "sqlite"})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, AutoMigrate(db))

	project := models.Project{Name: "Cascade Tower", AnalysisType: models.AnalysisNLTHA}
	require.NoError(t, db.Create(&project).Error)

	set := models.ResultSet{ProjectID: project.ID, Name: "run-1"}
	require.NoError(t, db.Create(&set).Error)

	row := models.RawRow{
		ResultSetID: set.ID,
		ProjectID:   project.ID,
		ResultType:  "Drifts",
		Story:       "L01",
		LoadCase:    "DES_X",
		Value:       0.0123,
	}
	require.NoError(t, db.Create(&row).Error)

	require.NoError(t, db.Delete(&models.Project{}, "id = ?", project.ID).Error)

	var sets, rows int64
	require.NoError(t, db.Model(&models.ResultSet{}).Where("project_id = ?", project.ID).Count(&sets).Error)
	require.NoError(t, db.Model(&models.RawRow{}).Where("project_id = ?", project.ID).Count(&rows).Error)
	require.Zero(t, sets)
	require.Zero(t, rows)
}
