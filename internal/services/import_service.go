package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/seistore/seistore/internal/cache"
	"github.com/seistore/seistore/internal/models"
	"github.com/seistore/seistore/internal/results"
	apperrors "github.com/seistore/seistore/pkg/errors"
	"github.com/seistore/seistore/pkg/logger"
	"github.com/seistore/seistore/pkg/metrics"
)

const importBatchSize = 500

// ImportService parses spreadsheet exports into raw rows. Rows and the cache
// invalidation they trigger commit in one transaction, so no reader ever
// sees fresh rows next to a stale cache.
type ImportService struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewImportService constructs an import service.
func NewImportService(db *gorm.DB) (*ImportService, error) {
	if db == nil {
		return nil, errors.New("import service: db is required")
	}
	return &ImportService{db: db, log: logger.WithModule("import")}, nil
}

// ImportSummary reports what one workbook import produced.
type ImportSummary struct {
	ResultSetID string         `json:"result_set_id"`
	RowCounts   map[string]int `json:"row_counts"`
}

// ImportWorkbook reads an .xlsx workbook (one sheet per result type, header
// row naming the columns) and stores its rows as a new result set.
func (s *ImportService) ImportWorkbook(ctx context.Context, projectID, name string, r io.Reader) (*ImportSummary, error) {
	if s == nil {
		return nil, errors.New("import service: service not initialised")
	}
	ctx = ensuredContext(ctx)

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Project{}).Where("id = ?", projectID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, apperrors.ErrProjectNotFound.WithMessage(fmt.Sprintf("project %q not found", projectID))
	}

	workbook, err := excelize.OpenReader(r)
	if err != nil {
		return nil, apperrors.NewBadRequest("workbook is not a readable .xlsx file").WithInternal(err)
	}
	defer func() {
		_ = workbook.Close()
	}()

	rows, err := s.parseWorkbook(workbook, projectID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, apperrors.NewBadRequest("workbook contains no importable rows")
	}

	summary := &ImportSummary{RowCounts: make(map[string]int)}
	for _, row := range rows {
		summary.RowCounts[row.ResultType]++
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		set := models.ResultSet{ProjectID: projectID, Name: strings.TrimSpace(name)}
		if set.Name == "" {
			set.Name = "import"
		}
		if err := tx.Create(&set).Error; err != nil {
			return err
		}
		summary.ResultSetID = set.ID

		for i := range rows {
			rows[i].ResultSetID = set.ID
		}
		if err := tx.CreateInBatches(rows, importBatchSize).Error; err != nil {
			return err
		}

		return invalidateTypesTx(tx, projectID, summary.RowCounts)
	})
	if err != nil {
		return nil, err
	}

	for resultType, n := range summary.RowCounts {
		metrics.ImportedRows.WithLabelValues(resultType).Add(float64(n))
	}
	metrics.CacheInvalidations.WithLabelValues("import").Inc()

	s.log.Info("workbook imported",
		zap.String("project_id", projectID),
		zap.String("result_set_id", summary.ResultSetID),
		zap.Int("rows", len(rows)),
	)

	return summary, nil
}

// DeleteResultSet removes one imported batch and invalidates the cache for
// every result type the batch contributed to, in one transaction.
func (s *ImportService) DeleteResultSet(ctx context.Context, projectID, resultSetID string) error {
	if s == nil {
		return errors.New("import service: service not initialised")
	}
	ctx = ensuredContext(ctx)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var set models.ResultSet
		err := tx.Take(&set, "id = ? AND project_id = ?", resultSetID, projectID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrResultSetNotFound.WithMessage(fmt.Sprintf("result set %q not found", resultSetID))
		}
		if err != nil {
			return err
		}

		var types []string
		if err := tx.Model(&models.RawRow{}).
			Where("result_set_id = ?", resultSetID).
			Distinct("result_type").
			Pluck("result_type", &types).Error; err != nil {
			return err
		}

		if err := tx.Where("result_set_id = ?", resultSetID).Delete(&models.RawRow{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.ResultSet{}, "id = ?", resultSetID).Error; err != nil {
			return err
		}

		touched := make(map[string]int, len(types))
		for _, t := range types {
			touched[t]++
		}
		return invalidateTypesTx(tx, projectID, touched)
	})
	if err != nil {
		return err
	}

	metrics.CacheInvalidations.WithLabelValues("result_set_delete").Inc()
	return nil
}

// invalidateTypesTx drops cache rows for every base type the touched result
// types map onto, including their direction-suffixed variants.
func invalidateTypesTx(tx *gorm.DB, projectID string, touched map[string]int) error {
	bases := make(map[string]struct{}, len(touched))
	for resultType := range touched {
		base, _ := results.ExtractBaseType(resultType)
		bases[base] = struct{}{}
	}

	ordered := make([]string, 0, len(bases))
	for base := range bases {
		ordered = append(ordered, base)
	}
	sort.Strings(ordered)

	var variants []string
	for _, base := range ordered {
		variants = append(variants, results.TypeVariants(base)...)
	}
	return cache.InvalidateTypesTx(tx, projectID, variants)
}

// headerField maps a recognised column header onto a RawRow field setter.
var headerField = map[string]func(*models.RawRow, string){
	"story":       func(r *models.RawRow, v string) { r.Story = v },
	"element":     func(r *models.RawRow, v string) { r.Element = v },
	"pier":        func(r *models.RawRow, v string) { r.Element = v },
	"joint":       func(r *models.RawRow, v string) { r.Joint = v },
	"load case":   func(r *models.RawRow, v string) { r.LoadCase = v },
	"loadcase":    func(r *models.RawRow, v string) { r.LoadCase = v },
	"output case": func(r *models.RawRow, v string) { r.LoadCase = v },
	"case":        func(r *models.RawRow, v string) { r.LoadCase = v },
	"direction":   func(r *models.RawRow, v string) { r.Direction = strings.ToUpper(v) },
	"dir":         func(r *models.RawRow, v string) { r.Direction = strings.ToUpper(v) },
	"measure":     func(r *models.RawRow, v string) { r.Measure = v },
	"component":   func(r *models.RawRow, v string) { r.Measure = v },
	"unit":        func(r *models.RawRow, v string) { r.Unit = v },
	"units":       func(r *models.RawRow, v string) { r.Unit = v },
}

func (s *ImportService) parseWorkbook(workbook *excelize.File, projectID string) ([]models.RawRow, error) {
	var out []models.RawRow

	for _, sheet := range workbook.GetSheetList() {
		cells, err := workbook.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
		}
		if len(cells) < 2 {
			continue
		}

		header := cells[0]
		valueCol := -1
		setters := make(map[int]func(*models.RawRow, string), len(header))
		for i, column := range header {
			key := strings.ToLower(strings.TrimSpace(column))
			if key == "value" {
				valueCol = i
				continue
			}
			if setter, ok := headerField[key]; ok {
				setters[i] = setter
			}
		}
		if valueCol < 0 {
			s.log.Warn("sheet skipped, no value column", zap.String("sheet", sheet))
			continue
		}

		resultType := strings.TrimSpace(sheet)
		for _, line := range cells[1:] {
			row := models.RawRow{
				ProjectID:  projectID,
				ResultType: resultType,
			}

			empty := true
			for i, cell := range line {
				cell = strings.TrimSpace(cell)
				if cell == "" {
					continue
				}
				empty = false
				if i == valueCol {
					row.RawText = cell
					// Malformed cells fall back to 0.0 with a warning;
					// partial data beats an aborted import.
					row.Value = parseCellValue(cell)
					continue
				}
				if setter, ok := setters[i]; ok {
					setter(&row, cell)
				}
			}
			if empty {
				continue
			}
			out = append(out, row)
		}
	}

	return out, nil
}

// parseCellValue parses a numeric cell, accepting a trailing "%" and storing
// percentages as their decimal fraction so providers normalize uniformly.
func parseCellValue(cell string) float64 {
	if strings.HasSuffix(cell, "%") {
		return results.ParsePercentageValue(cell) / 100
	}
	return results.ParseNumericValue(cell)
}
