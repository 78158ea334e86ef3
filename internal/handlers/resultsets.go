package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/seistore/seistore/internal/models"
	"github.com/seistore/seistore/internal/services"
	apperrors "github.com/seistore/seistore/pkg/errors"
	"github.com/seistore/seistore/pkg/response"
)

// ResultSetHandler serves workbook imports and result set management.
type ResultSetHandler struct {
	importSvc  *services.ImportService
	projectSvc *services.ProjectService
}

func NewResultSetHandler(importSvc *services.ImportService, projectSvc *services.ProjectService) *ResultSetHandler {
	return &ResultSetHandler{importSvc: importSvc, projectSvc: projectSvc}
}

type resultSetDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
}

func mapResultSet(set *models.ResultSet) resultSetDTO {
	createdAt := ""
	if !set.CreatedAt.IsZero() {
		createdAt = set.CreatedAt.Format(time.RFC3339)
	}
	return resultSetDTO{ID: set.ID, Name: set.Name, CreatedAt: createdAt}
}

// Import accepts a multipart upload under the "file" field and stores the
// workbook's rows as a new result set. An optional "name" field labels it.
func (h *ResultSetHandler) Import(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		response.Error(c, apperrors.NewBadRequest("multipart field \"file\" is required"))
		return
	}
	defer func() {
		_ = file.Close()
	}()

	name := c.PostForm("name")
	if name == "" && header != nil {
		name = header.Filename
	}

	summary, err := h.importSvc.ImportWorkbook(requestContext(c), c.Param("id"), name, file)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, summary)
}

func (h *ResultSetHandler) List(c *gin.Context) {
	sets, err := h.projectSvc.ListResultSets(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	out := make([]resultSetDTO, 0, len(sets))
	for i := range sets {
		out = append(out, mapResultSet(&sets[i]))
	}
	response.Success(c, http.StatusOK, out)
}

func (h *ResultSetHandler) Delete(c *gin.Context) {
	err := h.importSvc.DeleteResultSet(requestContext(c), c.Param("id"), c.Param("setID"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
