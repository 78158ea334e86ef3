package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/seistore/seistore/internal/services"
	apperrors "github.com/seistore/seistore/pkg/errors"
	"github.com/seistore/seistore/pkg/response"
)

// ExportHandler submits export jobs and reports their status.
type ExportHandler struct {
	svc *services.ExportService
}

func NewExportHandler(svc *services.ExportService) *ExportHandler {
	return &ExportHandler{svc: svc}
}

type submitExportPayload struct {
	ResultTypes []string `json:"result_types" binding:"required"`
	Format      string   `json:"format"`
	ScopeKey    string   `json:"scope_key"`
}

// Submit enqueues an export job for the project in the path. The job runs
// asynchronously; poll Status for completion.
func (h *ExportHandler) Submit(c *gin.Context) {
	var payload submitExportPayload
	if !bindAndValidate(c, &payload) {
		return
	}

	jobID, _, err := h.svc.Submit(services.ExportJob{
		ProjectID:   c.Param("id"),
		ResultTypes: payload.ResultTypes,
		Format:      payload.Format,
		ScopeKey:    payload.ScopeKey,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusAccepted, gin.H{"job_id": jobID})
}

func (h *ExportHandler) Status(c *gin.Context) {
	result, ok := h.svc.Status(c.Param("jobID"))
	if !ok {
		response.Error(c, apperrors.ErrNotFound.WithMessage("export job not found"))
		return
	}
	response.Success(c, http.StatusOK, result)
}
