package router

import (
	"github.com/gin-gonic/gin"

	"invoicevision/internal/handler"
	"invoicevision/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	extractH *handler.ExtractHandler,
	exportH *handler.ExportHandler,
	healthH *handler.HealthHandler,
	corsOrigins []string,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(corsOrigins))

	// Health check
	r.GET("/healthz", healthH.Liveness)

	v1 := r.Group("/api/v1")

	// Extraction
	v1.POST("/extractions", extractH.Extract)

	// Exports
	exports := v1.Group("/exports")
	exports.POST("/csv", exportH.CSV)
	exports.POST("/xlsx", exportH.XLSX)
	exports.POST("/json", exportH.JSON)

	return r
}
