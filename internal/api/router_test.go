package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/seistore/seistore/internal/app"
	"github.com/seistore/seistore/internal/cache"
	testutil "github.com/seistore/seistore/internal/database/testutil"
	"github.com/seistore/seistore/internal/results"
	"github.com/seistore/seistore/internal/services"
	"github.com/seistore/seistore/pkg/response"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.MustOpenTestDB(t)
	store := cache.NewStore(db)

	resultSvc, err := services.NewResultService(db, store, results.NewRegistry())
	require.NoError(t, err)
	projectSvc, err := services.NewProjectService(db, store)
	require.NoError(t, err)
	importSvc, err := services.NewImportService(db)
	require.NoError(t, err)
	exportSvc, err := services.NewExportService(resultSvc, t.TempDir(), 1)
	require.NoError(t, err)
	t.Cleanup(exportSvc.Close)

	cfg := &app.Config{}
	cfg.Monitoring.Prometheus.Enabled = true
	cfg.Monitoring.Prometheus.Endpoint = "/metrics"

	router, err := NewRouter(db, cfg, Services{
		Projects: projectSvc,
		Results:  resultSvc,
		Imports:  importSvc,
		Exports:  exportSvc,
	})
	require.NoError(t, err)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) response.Response {
	t.Helper()

	var payload response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	return payload
}

func createProjectViaAPI(t *testing.T, router *gin.Engine, name string) string {
	t.Helper()

	w := doJSON(t, router, http.MethodPost, "/api/projects", gin.H{"name": name})
	require.Equal(t, http.StatusCreated, w.Code)

	payload := decodeResponse(t, w)
	data := payload.Data.(map[string]any)
	return data["id"].(string)
}

func TestRouterHealthAndMetrics(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "seistore_")
}

func TestRouterUnknownRouteIsJSON404(t *testing.T) {
	router := newTestRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	require.Equal(t, http.StatusNotFound, w.Code)

	payload := decodeResponse(t, w)
	require.False(t, payload.Success)
}

func TestRouterProjectLifecycle(t *testing.T) {
	router := newTestRouter(t)

	id := createProjectViaAPI(t, router, "API Tower")

	w := doJSON(t, router, http.MethodGet, "/api/projects/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/projects", nil)
	require.Equal(t, http.StatusOK, w.Code)

	// duplicate name conflicts
	w = doJSON(t, router, http.MethodPost, "/api/projects", gin.H{"name": "API Tower"})
	require.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, router, http.MethodDelete, "/api/projects/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/projects/"+id, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouterResultTypes(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/result-types", nil)
	require.Equal(t, http.StatusOK, w.Code)

	payload := decodeResponse(t, w)
	types, ok := payload.Data.([]any)
	require.True(t, ok)
	require.Contains(t, types, "Drifts")
}

func TestRouterImportAndDataset(t *testing.T) {
	router := newTestRouter(t)
	id := createProjectViaAPI(t, router, "Workbook Tower")

	workbook := excelize.NewFile()
	require.NoError(t, workbook.SetSheetName(workbook.GetSheetName(0), "Drifts_X"))
	require.NoError(t, workbook.SetSheetRow("Drifts_X", "A1", &[]interface{}{"Story", "Load Case", "Value"}))
	require.NoError(t, workbook.SetSheetRow("Drifts_X", "A2", &[]interface{}{"L01", "DES_X", "0.01"}))

	var fileBuf bytes.Buffer
	require.NoError(t, workbook.Write(&fileBuf))
	require.NoError(t, workbook.Close())

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "run-1.xlsx")
	require.NoError(t, err)
	_, err = part.Write(fileBuf.Bytes())
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("name", "run-1"))
	require.NoError(t, mw.Close())

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/projects/%s/import", id), &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/projects/%s/resultsets", id), nil)
	require.Equal(t, http.StatusOK, w.Code)
	payload := decodeResponse(t, w)
	sets := payload.Data.([]any)
	require.Len(t, sets, 1)

	w = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/projects/%s/datasets/Drifts_X", id), nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, strings.Contains(w.Body.String(), "L01"))

	w = doJSON(t, router, http.MethodDelete, fmt.Sprintf("/api/projects/%s/cache", id), nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestRouterDatasetErrors(t *testing.T) {
	router := newTestRouter(t)
	id := createProjectViaAPI(t, router, "Error Tower")

	w := doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/projects/%s/datasets/NotAResult", id), nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	payload := decodeResponse(t, w)
	require.False(t, payload.Success)
	require.Equal(t, "UNKNOWN_RESULT_TYPE", payload.Error.Code)

	w = doJSON(t, router, http.MethodGet, "/api/projects/missing/datasets/Drifts_X", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouterExportEndpoints(t *testing.T) {
	router := newTestRouter(t)
	id := createProjectViaAPI(t, router, "Export API Tower")

	w := doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/projects/%s/exports", id), gin.H{
		"result_types": []string{"Drifts_X"},
	})
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())

	payload := decodeResponse(t, w)
	data := payload.Data.(map[string]any)
	jobID := data["job_id"].(string)
	require.NotEmpty(t, jobID)

	w = doJSON(t, router, http.MethodGet, "/api/exports/"+jobID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/exports/missing", nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	// missing result_types fails validation
	w = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/projects/%s/exports", id), gin.H{})
	require.Equal(t, http.StatusBadRequest, w.Code)
}
