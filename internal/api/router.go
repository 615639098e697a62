// Package api exposes the monitoring core over HTTP. It is a read-mostly
// surface: the tick pipeline owns all derived state, and every endpoint
// except device selection and threshold updates only observes it.
package api

import (
	"github.com/gin-gonic/gin"

	"github.com/humaxai2025/gputop/internal/api/handlers"
	"github.com/humaxai2025/gputop/internal/api/middleware"
)

// Router manages API routing and handlers
type Router struct {
	engine           *gin.Engine
	deviceHandler    *handlers.DeviceHandler
	thresholdHandler *handlers.ThresholdHandler
}

// NewRouter creates a new API router with all handlers initialized
func NewRouter(registry handlers.HealthRegistry, settings handlers.ThresholdSettings) *Router {
	router := &Router{
		engine:           gin.New(),
		deviceHandler:    handlers.NewDeviceHandler(registry),
		thresholdHandler: handlers.NewThresholdHandler(settings),
	}

	router.setupMiddleware()
	router.setupRoutes()

	return router
}

// setupMiddleware configures global middleware
func (r *Router) setupMiddleware() {
	// Logging middleware
	r.engine.Use(middleware.LoggingMiddleware())

	// Error handling middleware
	r.engine.Use(middleware.ErrorHandlerMiddleware())

	// Recovery middleware (catch panics)
	r.engine.Use(gin.Recovery())
}

// setupRoutes configures all API routes
func (r *Router) setupRoutes() {
	// Health check
	r.engine.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "healthy",
		})
	})

	// API v1 routes
	v1 := r.engine.Group("/api/v1")
	{
		// Device endpoints
		devices := v1.Group("/devices")
		{
			devices.GET("", r.deviceHandler.ListDevices)
			devices.GET("/:id/snapshot", r.deviceHandler.GetSnapshot)
			devices.GET("/:id/history", r.deviceHandler.GetHistory)
			devices.GET("/:id/alerts", r.deviceHandler.GetAlerts)
			devices.POST("/:id/select", r.deviceHandler.SelectDevice)
		}

		// Threshold configuration; updates apply on the next tick
		thresholds := v1.Group("/thresholds")
		{
			thresholds.GET("", r.thresholdHandler.GetThresholds)
			thresholds.PUT("", r.thresholdHandler.UpdateThresholds)
		}
	}
}

// Engine returns the underlying Gin engine
func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// Run starts the HTTP server
func (r *Router) Run(addr string) error {
	return r.engine.Run(addr)
}
