// Package routes provides HTTP route configurations.
package routes

import (
	"github.com/gin-gonic/gin"

	"tillpoint/internal/application/authorization"
	"tillpoint/internal/interfaces/http/handlers"
	"tillpoint/internal/interfaces/http/middleware"
)

// TenantRouteConfig contains dependencies for the caller's tenant routes.
type TenantRouteConfig struct {
	TenantHandler  *handlers.TenantHandler
	AuthMiddleware *middleware.AuthMiddleware
}

// SetupTenantRoutes configures tenant discovery and creation.
// Routes: /me/tenants, /me/tenant, /tenants
func SetupTenantRoutes(api *gin.RouterGroup, cfg *TenantRouteConfig) {
	me := api.Group("/me")
	me.Use(cfg.AuthMiddleware.RequireAuth())
	{
		me.GET("/tenants", cfg.TenantHandler.Mine)
		// Resolves the active tenant; X-Tenant-ID names an explicit choice.
		me.GET("/tenant", cfg.TenantHandler.Current)
	}

	api.POST("/tenants", cfg.AuthMiddleware.RequireAuth(), cfg.TenantHandler.Create)
}

// AdminRouteConfig contains dependencies for platform-admin routes.
type AdminRouteConfig struct {
	TenantHandler       *handlers.TenantHandler
	SubscriptionHandler *handlers.SubscriptionHandler
	AuthMiddleware      *middleware.AuthMiddleware
	TenantMiddleware    *middleware.TenantMiddleware
	PlatformAdmins      *authorization.PlatformAdmins
}

// SetupAdminRoutes configures the cross-tenant catalog and the billing
// hooks. Every route requires a platform admin.
// Routes: /admin/tenants/*
func SetupAdminRoutes(api *gin.RouterGroup, cfg *AdminRouteConfig) {
	admin := api.Group("/admin")
	admin.Use(cfg.AuthMiddleware.RequireAuth())
	admin.Use(middleware.RequirePlatformAdmin(cfg.PlatformAdmins))
	{
		admin.GET("/tenants", cfg.TenantHandler.All)

		tenantGroup := admin.Group("/tenants/:tenantID")
		tenantGroup.Use(cfg.TenantMiddleware.TenantContext())
		{
			tenantGroup.PUT("/subscription/status", cfg.SubscriptionHandler.UpdateStatus)
			tenantGroup.POST("/subscription/trial", cfg.SubscriptionHandler.StartTrial)
		}
	}
}
