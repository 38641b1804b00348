package http

import (
	"github.com/gin-gonic/gin"

	"github.com/shoprank/backend/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Run triggers and visibility
		v1.POST("/runs", handler.StartAllRuns)
		v1.GET("/runs", handler.ListRunStatuses)

		clients := v1.Group("/clients")
		{
			clients.POST("", handler.CreateClient)
			clients.POST("/:id/runs", handler.StartClientRun)
			clients.GET("/:id/runs", handler.ClientRunStatus)
			clients.POST("/:id/runs/reset", handler.ResetClientRun)
			clients.POST("/:id/products", handler.AddProduct)
			clients.POST("/:id/keywords", handler.AddKeyword)
			clients.GET("/:id/history", handler.History)
		}
	}

	return router
}
