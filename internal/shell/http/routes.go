package http

import (
	"github.com/gorilla/mux"
	"github.com/redhatinsights/platform-go-middlewares/v2/identity"

	"turbo-export/internal/core/domain"
	"turbo-export/internal/core/ports"
)

func SetupRoutes(exportService ports.ExportService, runService ports.ExportRunService, outputDir string, defaults domain.ExportDefaults) *mux.Router {
	router := mux.NewRouter()
	router.Use(LoggingMiddleware)

	exportHandler := NewExportHandler(exportService, outputDir, defaults)
	runHandler := NewExportRunHandler(runService)

	// Apply identity middleware to all API routes
	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(identity.EnforceIdentity)

	registerRoutes(api, exportHandler, runHandler)

	return router
}

func registerRoutes(api *mux.Router, exportHandler *ExportHandler, runHandler *ExportRunHandler) {
	// Export operations
	api.HandleFunc("/exports", exportHandler.CreateExport).Methods("POST")
	api.HandleFunc("/exports/split-zip", exportHandler.CreateSplitZip).Methods("POST")

	// Run history
	api.HandleFunc("/runs", runHandler.GetRuns).Methods("GET")
	api.HandleFunc("/runs/{id}", runHandler.GetRun).Methods("GET")
}
