// Package routes defines the HTTP routes for the Skedy Escalation Service.
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/skedy/escalation-service/internal/api/handlers"
	"github.com/skedy/escalation-service/internal/api/middleware"
)

// Config holds the dependencies for setting up routes.
type Config struct {
	HealthHandler        *handlers.HealthHandler
	EscalationHandler    *handlers.EscalationHandler
	NotificationsHandler *handlers.NotificationsHandler
}

// Setup configures all routes on the Gin engine.
func Setup(r *gin.Engine, cfg *Config) {
	r.HandleMethodNotAllowed = true
	r.NoRoute(middleware.NotFound())
	r.NoMethod(middleware.MethodNotAllowed())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 routes - all routes under /api/v1/escalation-service
	v1 := r.Group("/api/v1/escalation-service")
	{
		// Health check routes
		v1.GET("/health", cfg.HealthHandler.Health)
		v1.GET("/ready", cfg.HealthHandler.Ready)
		v1.GET("/live", cfg.HealthHandler.Live)

		// Inbound message routes
		messages := v1.Group("/messages")
		{
			messages.POST("/process", cfg.EscalationHandler.ProcessMessage)
			messages.POST("/admin", cfg.EscalationHandler.AdminMessage)
		}

		// Debug routes
		debug := v1.Group("/debug")
		{
			debug.POST("/escalation-check", cfg.EscalationHandler.DebugCheck)
		}

		// Notification routes
		notifications := v1.Group("/notifications")
		{
			notifications.GET("", cfg.NotificationsHandler.List)
			notifications.GET("/:id", cfg.NotificationsHandler.Get)
			notifications.POST("/:id/resolve", cfg.NotificationsHandler.Resolve)
			notifications.POST("/:id/proxy", cfg.NotificationsHandler.StartProxy)
		}
	}
}

// SetupWithMiddleware sets up routes with common middleware.
func SetupWithMiddleware(r *gin.Engine, cfg *Config, loggingMw *middleware.LoggingMiddleware, errorMw *middleware.ErrorMiddleware) {
	// Apply global middleware
	r.Use(loggingMw.Logger())
	r.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	r.Use(errorMw.Recovery())
	r.Use(gin.Recovery())

	// Setup routes
	Setup(r, cfg)
}
