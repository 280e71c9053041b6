package routes

import (
	"github.com/gin-gonic/gin"

	"tillpoint/internal/domain/permission"
	"tillpoint/internal/domain/subscription"
	"tillpoint/internal/interfaces/http/handlers"
	"tillpoint/internal/interfaces/http/middleware"
)

// TenantScope is shared by the routes nested under /tenants/:tenantID.
type TenantScope struct {
	AuthMiddleware   *middleware.AuthMiddleware
	TenantMiddleware *middleware.TenantMiddleware
	AuthzMiddleware  *middleware.AuthzMiddleware
}

// group returns /tenants/:tenantID with authentication and tenant binding.
func (s *TenantScope) group(api *gin.RouterGroup) *gin.RouterGroup {
	g := api.Group("/tenants/:tenantID")
	g.Use(s.AuthMiddleware.RequireAuth())
	g.Use(s.TenantMiddleware.TenantContext())
	return g
}

type LocationRouteConfig struct {
	TenantScope
	LocationHandler *handlers.LocationHandler
}

// SetupLocationRoutes configures location CRUD and the branch projection.
// Routes: /tenants/:tenantID/locations/*, /tenants/:tenantID/branches
// :locationID is a location SID (loc_xxx format)
func SetupLocationRoutes(api *gin.RouterGroup, cfg *LocationRouteConfig) {
	authz := cfg.AuthzMiddleware
	scoped := cfg.group(api)

	locations := scoped.Group("/locations")
	{
		// Listing also creates the main location on first use.
		locations.GET("", authz.RequireMembership(), cfg.LocationHandler.List)
		locations.POST("",
			authz.RequireModule(permission.ModuleLocations),
			authz.RequirePermission(permission.LocationsManage),
			authz.RequireWithinLimit(subscription.LimitMaxLocations, permission.ModuleLocations),
			cfg.LocationHandler.Create,
		)

		// Mutations are checked against the addressed location, not a query value.
		target := middleware.PathLocation("locationID")
		locationGroup := locations.Group("/:locationID")
		locationGroup.Use(authz.RequirePermissionAt(permission.LocationsManage, target))
		{
			locationGroup.PATCH("", cfg.LocationHandler.Update)
			locationGroup.DELETE("", authz.RequireModuleAt(permission.ModuleLocations, target), cfg.LocationHandler.Delete)
		}
	}

	scoped.GET("/branches", authz.RequireMembership(), cfg.LocationHandler.ListBranches)
}
