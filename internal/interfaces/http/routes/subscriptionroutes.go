package routes

import (
	"github.com/gin-gonic/gin"

	"tillpoint/internal/domain/permission"
	"tillpoint/internal/interfaces/http/handlers"
)

// SubscriptionRouteConfig contains dependencies for tenant subscription routes.
type SubscriptionRouteConfig struct {
	TenantScope
	SubscriptionHandler *handlers.SubscriptionHandler
}

// SetupSubscriptionRoutes configures the subscription view and plan changes.
// Routes: /tenants/:tenantID/subscription/*
func SetupSubscriptionRoutes(api *gin.RouterGroup, cfg *SubscriptionRouteConfig) {
	authz := cfg.AuthzMiddleware
	sub := cfg.group(api).Group("/subscription")
	{
		sub.GET("", authz.RequireMembership(), cfg.SubscriptionHandler.Get)
		sub.PUT("/plan", authz.RequireModule(permission.ModuleBilling), cfg.SubscriptionHandler.ChangePlan)
	}
}
