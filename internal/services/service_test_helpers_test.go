package services

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/seistore/seistore/internal/cache"
	"github.com/seistore/seistore/internal/database/testutil"
	"github.com/seistore/seistore/internal/models"
	"github.com/seistore/seistore/internal/results"
)

func newTestStack(t *testing.T) (*gorm.DB, *cache.Store, *ResultService) {
	t.Helper()

	db := testutil.MustOpenTestDB(t)
	store := cache.NewStore(db)
	require.NotNil(t, store)

	svc, err := NewResultService(db, store, results.NewRegistry())
	require.NoError(t, err)

	return db, store, svc
}

func mustCreateProject(t *testing.T, db *gorm.DB, name string) models.Project {
	t.Helper()

	project := models.Project{Name: name, AnalysisType: models.AnalysisNLTHA}
	require.NoError(t, db.Create(&project).Error)
	return project
}

func mustCreateResultSet(t *testing.T, db *gorm.DB, projectID, name string) models.ResultSet {
	t.Helper()

	set := models.ResultSet{ProjectID: projectID, Name: name}
	require.NoError(t, db.Create(&set).Error)
	return set
}

func mustInsertRows(t *testing.T, db *gorm.DB, rows []models.RawRow) {
	t.Helper()
	require.NoError(t, db.Create(&rows).Error)
}

// buildWorkbook renders sheets into an in-memory .xlsx file. Each sheet is
// a header row followed by data rows.
func buildWorkbook(t *testing.T, sheets map[string][][]string) *bytes.Reader {
	t.Helper()

	workbook := excelize.NewFile()
	first := true
	for name, rows := range sheets {
		if first {
			require.NoError(t, workbook.SetSheetName(workbook.GetSheetName(0), name))
			first = false
		} else {
			_, err := workbook.NewSheet(name)
			require.NoError(t, err)
		}

		for i, row := range rows {
			axis, err := excelize.CoordinatesToCellName(1, i+1)
			require.NoError(t, err)
			line := make([]interface{}, len(row))
			for j, cell := range row {
				line[j] = cell
			}
			require.NoError(t, workbook.SetSheetRow(name, axis, &line))
		}
	}

	var buf bytes.Buffer
	require.NoError(t, workbook.Write(&buf))
	require.NoError(t, workbook.Close())

	return bytes.NewReader(buf.Bytes())
}
