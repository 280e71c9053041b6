package routes

import (
	"github.com/gin-gonic/gin"

	"tillpoint/internal/interfaces/http/handlers"
)

// SystemRouteConfig contains dependencies for unauthenticated operational
// routes.
type SystemRouteConfig struct {
	HealthHandler  *handlers.HealthHandler
	MetricsHandler gin.HandlerFunc
}

// SetupSystemRoutes configures /health and /metrics.
func SetupSystemRoutes(engine *gin.Engine, cfg *SystemRouteConfig) {
	engine.GET("/health", cfg.HealthHandler.Health)
	if cfg.MetricsHandler != nil {
		engine.GET("/metrics", cfg.MetricsHandler)
	}
}
