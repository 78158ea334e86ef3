package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/seistore/seistore/internal/services"
	"github.com/seistore/seistore/pkg/response"
)

// DatasetHandler serves derived result datasets.
type DatasetHandler struct {
	svc *services.ResultService
}

func NewDatasetHandler(svc *services.ResultService) *DatasetHandler {
	return &DatasetHandler{svc: svc}
}

// Get returns the dataset for one result type, building and caching it on a
// miss. Element/joint scoped types accept a scope_key query parameter.
func (h *DatasetHandler) Get(c *gin.Context) {
	dataset, err := h.svc.GetDataset(
		requestContext(c),
		c.Param("id"),
		c.Param("resultType"),
		c.Query("scope_key"),
	)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, dataset)
}

// Types lists the base result types the registry can compute.
func (h *DatasetHandler) Types(c *gin.Context) {
	response.Success(c, http.StatusOK, h.svc.Registry().Types())
}
