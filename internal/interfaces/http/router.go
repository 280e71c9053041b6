package http

import (
	"github.com/gin-gonic/gin"

	"tillpoint/internal/interfaces/http/middleware"
	"tillpoint/internal/interfaces/http/routes"
)

// SetupRoutes installs the global middleware chain and every route group.
func (c *Container) SetupRoutes() {
	engine := c.engine
	engine.Use(middleware.RequestID())
	engine.Use(middleware.CustomLogger(c.log))
	engine.Use(middleware.Recovery(c.log))
	engine.Use(middleware.CORS(c.cfg.Server.AllowedOrigins))
	engine.Use(middleware.SecurityHeaders())

	routes.SetupSystemRoutes(engine, &routes.SystemRouteConfig{
		HealthHandler:  c.hdlrs.health,
		MetricsHandler: gin.WrapH(c.recorder.Handler()),
	})

	api := engine.Group("/api/v1")
	scope := routes.TenantScope{
		AuthMiddleware:   c.authMiddleware,
		TenantMiddleware: c.tenantMiddleware,
		AuthzMiddleware:  c.authzMiddleware,
	}

	routes.SetupTenantRoutes(api, &routes.TenantRouteConfig{
		TenantHandler:  c.hdlrs.tenant,
		AuthMiddleware: c.authMiddleware,
	})
	routes.SetupAdminRoutes(api, &routes.AdminRouteConfig{
		TenantHandler:       c.hdlrs.tenant,
		SubscriptionHandler: c.hdlrs.subscription,
		AuthMiddleware:      c.authMiddleware,
		TenantMiddleware:    c.tenantMiddleware,
		PlatformAdmins:      c.admins,
	})
	routes.SetupLocationRoutes(api, &routes.LocationRouteConfig{
		TenantScope:     scope,
		LocationHandler: c.hdlrs.location,
	})
	routes.SetupTeamRoutes(api, &routes.TeamRouteConfig{
		TenantScope: scope,
		TeamHandler: c.hdlrs.team,
	})
	routes.SetupSubscriptionRoutes(api, &routes.SubscriptionRouteConfig{
		TenantScope:         scope,
		SubscriptionHandler: c.hdlrs.subscription,
	})
	routes.SetupAccessRoutes(api, &routes.AccessRouteConfig{
		TenantScope:      scope,
		AuthzHandler:     c.hdlrs.authz,
		SelectionHandler: c.hdlrs.selection,
		GateHandler:      c.hdlrs.gate,
	})
}
