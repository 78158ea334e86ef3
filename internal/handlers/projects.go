package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/seistore/seistore/internal/models"
	"github.com/seistore/seistore/internal/services"
	"github.com/seistore/seistore/pkg/response"
)

// ProjectHandler exposes project lifecycle and cache maintenance endpoints.
type ProjectHandler struct {
	svc *services.ProjectService
}

func NewProjectHandler(svc *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{svc: svc}
}

type projectDTO struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	AnalysisType string `json:"analysis_type"`
	CreatedAt    string `json:"created_at"`
}

func mapProject(project *models.Project) projectDTO {
	createdAt := ""
	if !project.CreatedAt.IsZero() {
		createdAt = project.CreatedAt.Format(time.RFC3339)
	}
	return projectDTO{
		ID:           project.ID,
		Name:         project.Name,
		AnalysisType: string(project.AnalysisType),
		CreatedAt:    createdAt,
	}
}

type createProjectPayload struct {
	Name         string `json:"name" binding:"required"`
	AnalysisType string `json:"analysis_type"`
}

func (h *ProjectHandler) Create(c *gin.Context) {
	var payload createProjectPayload
	if !bindAndValidate(c, &payload) {
		return
	}

	project, err := h.svc.Create(requestContext(c), services.CreateProjectInput{
		Name:         payload.Name,
		AnalysisType: payload.AnalysisType,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, mapProject(project))
}

func (h *ProjectHandler) List(c *gin.Context) {
	projects, err := h.svc.List(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	out := make([]projectDTO, 0, len(projects))
	for i := range projects {
		out = append(out, mapProject(&projects[i]))
	}
	response.Success(c, http.StatusOK, out)
}

func (h *ProjectHandler) Get(c *gin.Context) {
	project, err := h.svc.Get(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, mapProject(project))
}

func (h *ProjectHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(requestContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// ClearCache drops cached datasets for a project. An optional result_type
// query parameter narrows the drop to one result type.
func (h *ProjectHandler) ClearCache(c *gin.Context) {
	err := h.svc.ClearCache(requestContext(c), c.Param("id"), c.Query("result_type"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"cleared": true})
}
