package routes

import (
	"github.com/gin-gonic/gin"

	"tillpoint/internal/interfaces/http/handlers"
)

// AccessRouteConfig contains dependencies for decision, selection and gate
// routes.
type AccessRouteConfig struct {
	TenantScope
	AuthzHandler     *handlers.AuthzHandler
	SelectionHandler *handlers.SelectionHandler
	GateHandler      *handlers.GateHandler
}

// SetupAccessRoutes configures the routes clients use to render gates.
// Routes: /tenants/:tenantID/authz/*, /tenants/:tenantID/selection,
// /tenants/:tenantID/gates/stream
func SetupAccessRoutes(api *gin.RouterGroup, cfg *AccessRouteConfig) {
	scoped := cfg.group(api)

	// Decisions are answered, not enforced: a denial is a 200 with allowed=false.
	authzGroup := scoped.Group("/authz")
	{
		authzGroup.GET("/decide", cfg.AuthzHandler.Decide)
		authzGroup.GET("/permission", cfg.AuthzHandler.Permission)
		authzGroup.GET("/limit", cfg.AuthzMiddleware.RequireMembership(), cfg.AuthzHandler.Limit)
	}

	selection := scoped.Group("/selection")
	selection.Use(cfg.AuthzMiddleware.RequireMembership())
	{
		selection.GET("", cfg.SelectionHandler.Get)
		selection.PUT("", cfg.SelectionHandler.Switch)
	}

	scoped.GET("/gates/stream", cfg.GateHandler.Stream)
}
