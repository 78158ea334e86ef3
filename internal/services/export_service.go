package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/seistore/seistore/internal/results"
	apperrors "github.com/seistore/seistore/pkg/errors"
	"github.com/seistore/seistore/pkg/logger"
	"github.com/seistore/seistore/pkg/metrics"
)

// Export formats.
const (
	FormatXLSX = "xlsx"
	FormatCSV  = "csv"
)

// ExportJob names what to export and where.
type ExportJob struct {
	ProjectID   string
	ResultTypes []string
	Format      string
	ScopeKey    string
}

// ExportProgress is emitted on the per-job progress channel as datasets are
// written.
type ExportProgress struct {
	JobID     string `json:"job_id"`
	Stage     string `json:"stage"`
	Completed int    `json:"completed"`
	Total     int    `json:"total"`
}

// ExportResult is the single completion message for a job.
type ExportResult struct {
	JobID      string `json:"job_id"`
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	OutputPath string `json:"output_path,omitempty"`
}

type exportTask struct {
	job      ExportJob
	jobID    string
	progress chan ExportProgress
}

// ExportService renders datasets to spreadsheet/CSV files on a small worker
// pool. Workers only read finalized datasets through the result service;
// they never touch raw rows or the cache directly.
type ExportService struct {
	resultSvc *ResultService
	outputDir string
	tasks     chan exportTask
	wg        sync.WaitGroup
	log       *zap.Logger

	mu       sync.Mutex
	statuses map[string]ExportResult

	// closeMu serializes Submit's closed-check-and-send against Close's
	// channel close. Statuses stay under mu so workers recording results
	// never contend with a Close in progress.
	closeMu sync.RWMutex
	closed  bool
}

// NewExportService constructs the export worker pool and starts its workers.
func NewExportService(resultSvc *ResultService, outputDir string, workers int) (*ExportService, error) {
	if resultSvc == nil {
		return nil, errors.New("export service: result service is required")
	}
	if outputDir == "" {
		outputDir = "exports"
	}
	if workers <= 0 {
		workers = 2
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create export directory: %w", err)
	}

	s := &ExportService{
		resultSvc: resultSvc,
		outputDir: outputDir,
		tasks:     make(chan exportTask, workers*4),
		log:       logger.WithModule("export"),
		statuses:  make(map[string]ExportResult),
	}

	for i := 0; i < workers; i++ {
		s.wg.Add(1)
		go s.worker()
	}

	return s, nil
}

// Submit enqueues an export job and returns its id plus a progress channel.
// The channel receives progress updates and is closed once the completion
// result has been recorded; slow consumers never block the worker.
func (s *ExportService) Submit(job ExportJob) (string, <-chan ExportProgress, error) {
	if s == nil {
		return "", nil, errors.New("export service: service not initialised")
	}
	if job.ProjectID == "" {
		return "", nil, apperrors.NewBadRequest("project id is required")
	}
	if len(job.ResultTypes) == 0 {
		return "", nil, apperrors.NewBadRequest("at least one result type is required")
	}
	switch job.Format {
	case "", FormatXLSX:
		job.Format = FormatXLSX
	case FormatCSV:
	default:
		return "", nil, apperrors.NewBadRequest(fmt.Sprintf("unsupported export format %q", job.Format))
	}

	task := exportTask{
		job:      job,
		jobID:    uuid.NewString(),
		progress: make(chan ExportProgress, len(job.ResultTypes)+2),
	}

	// Hold the read lock across the closed check and the send: Close takes
	// the write lock before closing the channel, so a task that passed the
	// check can never hit a closed channel.
	s.closeMu.RLock()
	defer s.closeMu.RUnlock()
	if s.closed {
		return "", nil, errors.New("export service: shut down")
	}

	s.mu.Lock()
	s.statuses[task.jobID] = ExportResult{JobID: task.jobID, Message: "queued"}
	s.mu.Unlock()

	s.tasks <- task
	return task.jobID, task.progress, nil
}

// Status reports the latest known state of a job.
func (s *ExportService) Status(jobID string) (ExportResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	result, ok := s.statuses[jobID]
	return result, ok
}

// Close stops accepting jobs and waits for in-flight exports to finish.
func (s *ExportService) Close() {
	s.closeMu.Lock()
	if s.closed {
		s.closeMu.Unlock()
		return
	}
	s.closed = true
	close(s.tasks)
	s.closeMu.Unlock()

	s.wg.Wait()
}

func (s *ExportService) worker() {
	defer s.wg.Done()

	for task := range s.tasks {
		result := s.run(task)

		s.mu.Lock()
		s.statuses[task.jobID] = result
		s.mu.Unlock()

		outcome := "failure"
		if result.Success {
			outcome = "success"
		}
		metrics.ExportJobs.WithLabelValues(outcome).Inc()

		close(task.progress)

		s.log.Info("export finished",
			zap.String("job_id", task.jobID),
			zap.Bool("success", result.Success),
			zap.String("output", result.OutputPath),
		)
	}
}

func (s *ExportService) run(task exportTask) ExportResult {
	job := task.job
	total := len(job.ResultTypes)

	datasets := make([]*results.Dataset, 0, total)
	for i, resultType := range job.ResultTypes {
		s.emit(task, ExportProgress{JobID: task.jobID, Stage: "computing " + resultType, Completed: i, Total: total})

		dataset, err := s.resultSvc.GetDataset(context.Background(), job.ProjectID, resultType, job.ScopeKey)
		if err != nil {
			return ExportResult{JobID: task.jobID, Success: false, Message: fmt.Sprintf("compute %s: %v", resultType, err)}
		}
		datasets = append(datasets, dataset)
	}

	s.emit(task, ExportProgress{JobID: task.jobID, Stage: "writing", Completed: total, Total: total})

	var (
		path string
		err  error
	)
	switch job.Format {
	case FormatCSV:
		path, err = s.writeCSV(task.jobID, datasets)
	default:
		path, err = s.writeWorkbook(task.jobID, datasets)
	}
	if err != nil {
		return ExportResult{JobID: task.jobID, Success: false, Message: err.Error()}
	}

	return ExportResult{
		JobID:      task.jobID,
		Success:    true,
		Message:    fmt.Sprintf("exported %d dataset(s)", len(datasets)),
		OutputPath: path,
	}
}

// emit sends progress without ever blocking on a slow consumer.
func (s *ExportService) emit(task exportTask, p ExportProgress) {
	select {
	case task.progress <- p:
	default:
	}
}

func (s *ExportService) writeWorkbook(jobID string, datasets []*results.Dataset) (string, error) {
	workbook := excelize.NewFile()
	defer func() {
		_ = workbook.Close()
	}()

	for i, dataset := range datasets {
		sheet := sheetName(dataset)
		if i == 0 {
			if err := workbook.SetSheetName(workbook.GetSheetName(0), sheet); err != nil {
				return "", err
			}
		} else if _, err := workbook.NewSheet(sheet); err != nil {
			return "", err
		}

		header := append([]interface{}{"Key"}, toInterfaces(dataset.Columns)...)
		if err := workbook.SetSheetRow(sheet, "A1", &header); err != nil {
			return "", err
		}

		for r, row := range dataset.Rows {
			line := make([]interface{}, 0, len(row.Cells)+1)
			line = append(line, row.Key)
			for _, cell := range row.Cells {
				line = append(line, cellValue(cell))
			}
			axis, err := excelize.CoordinatesToCellName(1, r+2)
			if err != nil {
				return "", err
			}
			if err := workbook.SetSheetRow(sheet, axis, &line); err != nil {
				return "", err
			}
		}
	}

	path := filepath.Join(s.outputDir, fmt.Sprintf("export-%s.xlsx", jobID))
	if err := workbook.SaveAs(path); err != nil {
		return "", fmt.Errorf("save workbook: %w", err)
	}
	return path, nil
}

func (s *ExportService) writeCSV(jobID string, datasets []*results.Dataset) (string, error) {
	dir := filepath.Join(s.outputDir, "export-"+jobID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	for _, dataset := range datasets {
		if err := writeDatasetCSV(dir, dataset); err != nil {
			return "", err
		}
	}
	return dir, nil
}

func writeDatasetCSV(dir string, dataset *results.Dataset) error {
	file, err := os.Create(filepath.Join(dir, sheetName(dataset)+".csv"))
	if err != nil {
		return err
	}
	defer func() {
		_ = file.Close()
	}()

	w := csv.NewWriter(file)
	if err := w.Write(append([]string{"Key"}, dataset.Columns...)); err != nil {
		return err
	}
	for _, row := range dataset.Rows {
		record := make([]string, 0, len(row.Cells)+1)
		record = append(record, row.Key)
		for _, cell := range row.Cells {
			record = append(record, cellString(cell))
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func sheetName(dataset *results.Dataset) string {
	if dataset.Direction == "" {
		return dataset.ResultType
	}
	return dataset.ResultType + "_" + dataset.Direction
}

// cellValue renders a cell for a spreadsheet: scalars stay numeric, envelope
// pairs become a readable string.
func cellValue(cell results.Value) interface{} {
	vals := cell.Floats()
	switch len(vals) {
	case 0:
		return ""
	case 1:
		return vals[0]
	default:
		return cellString(cell)
	}
}

func cellString(cell results.Value) string {
	vals := cell.Floats()
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strings.Join(parts, "; ")
}

func toInterfaces(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
