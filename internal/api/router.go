package api

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/seistore/seistore/internal/app"
	"github.com/seistore/seistore/internal/handlers"
	"github.com/seistore/seistore/internal/middleware"
	"github.com/seistore/seistore/internal/services"
)

// Services bundles the wired service layer the router exposes.
type Services struct {
	Projects *services.ProjectService
	Results  *services.ResultService
	Imports  *services.ImportService
	Exports  *services.ExportService
}

// NewRouter builds the Gin engine, wires middleware and registers routes.
func NewRouter(db *gorm.DB, cfg *app.Config, svcs Services) (*gin.Engine, error) {
	if db == nil {
		return nil, fmt.Errorf("database handle must be provided")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config must be provided")
	}
	if svcs.Projects == nil || svcs.Results == nil || svcs.Imports == nil || svcs.Exports == nil {
		return nil, fmt.Errorf("all services must be provided")
	}

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.Metrics())

	r.NoRoute(middleware.NotFoundHandler)

	r.GET("/health", handlers.Health())

	if cfg.Monitoring.Prometheus.Enabled {
		endpoint := cfg.Monitoring.Prometheus.Endpoint
		if endpoint == "" {
			endpoint = "/metrics"
		}
		r.GET(endpoint, gin.WrapH(promhttp.Handler()))
	}

	projectHandler := handlers.NewProjectHandler(svcs.Projects)
	datasetHandler := handlers.NewDatasetHandler(svcs.Results)
	resultSetHandler := handlers.NewResultSetHandler(svcs.Imports, svcs.Projects)
	exportHandler := handlers.NewExportHandler(svcs.Exports)

	api := r.Group("/api")

	api.GET("/result-types", datasetHandler.Types)

	projects := api.Group("/projects")
	{
		projects.POST("", projectHandler.Create)
		projects.GET("", projectHandler.List)
		projects.GET("/:id", projectHandler.Get)
		projects.DELETE("/:id", projectHandler.Delete)
		projects.DELETE("/:id/cache", projectHandler.ClearCache)

		projects.POST("/:id/import", resultSetHandler.Import)
		projects.GET("/:id/resultsets", resultSetHandler.List)
		projects.DELETE("/:id/resultsets/:setID", resultSetHandler.Delete)

		projects.GET("/:id/datasets/:resultType", datasetHandler.Get)

		projects.POST("/:id/exports", exportHandler.Submit)
	}

	api.GET("/exports/:jobID", exportHandler.Status)

	return r, nil
}
