package http

import (
	"context"

	"tillpoint/internal/infrastructure/auth"
	"tillpoint/internal/interfaces/http/handlers"
	"tillpoint/internal/interfaces/http/middleware"
)

// allHandlers holds all HTTP handler instances.
type allHandlers struct {
	tenant       *handlers.TenantHandler
	location     *handlers.LocationHandler
	team         *handlers.TeamHandler
	subscription *handlers.SubscriptionHandler
	authz        *handlers.AuthzHandler
	selection    *handlers.SelectionHandler
	gate         *handlers.GateHandler
	health       *handlers.HealthHandler
}

// initHandlers builds the middlewares and the handlers over the use cases.
func (c *Container) initHandlers() {
	cfg := c.cfg
	log := c.log
	ucs := c.ucs
	threshold := cfg.Authz.UsageWarningThreshold

	c.jwtSvc = auth.NewJWTService(cfg.Auth.JWT.Secret, cfg.Auth.JWT.Issuer, cfg.Auth.JWT.AccessExpMinutes)
	c.authMiddleware = middleware.NewAuthMiddleware(c.jwtSvc, log)
	c.tenantMiddleware = middleware.NewTenantMiddleware(c.repos.tenantRepo, c.memberCache, log)
	c.authzMiddleware = middleware.NewAuthzMiddleware(c.authzEngine, c.resolver, threshold, log)

	checks := map[string]handlers.Pinger{
		"database": func(ctx context.Context) error {
			sqlDB, err := c.db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if c.redis != nil {
		checks["redis"] = func(ctx context.Context) error {
			return c.redis.Ping(ctx).Err()
		}
	}

	c.hdlrs = &allHandlers{
		tenant: handlers.NewTenantHandler(ucs.listTenantsUC, ucs.createTenantUC, log),
		location: handlers.NewLocationHandler(
			ucs.listLocationsUC, ucs.createLocationUC, ucs.updateLocationUC,
			ucs.deleteLocationUC, ucs.listBranchesUC, log,
		),
		team: handlers.NewTeamHandler(
			ucs.listMembersUC, ucs.inviteMemberUC, ucs.addMemberUC, ucs.updateMemberUC,
			ucs.removeMemberUC, ucs.acceptInvitationUC, ucs.revokeInvitationUC, log,
		),
		subscription: handlers.NewSubscriptionHandler(
			c.resolver, ucs.changePlanUC, ucs.updateStatusUC, ucs.startTrialUC, log,
		),
		authz:     handlers.NewAuthzHandler(c.authzMiddleware, c.resolver, threshold, log),
		selection: handlers.NewSelectionHandler(c.registry, c.candidates, log),
		gate:      handlers.NewGateHandler(c.newGateSession, 0, log),
		health:    handlers.NewHealthHandler(checks),
	}
}
