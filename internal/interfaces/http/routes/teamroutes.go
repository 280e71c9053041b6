package routes

import (
	"github.com/gin-gonic/gin"

	"tillpoint/internal/domain/permission"
	"tillpoint/internal/domain/subscription"
	"tillpoint/internal/interfaces/http/handlers"
)

type TeamRouteConfig struct {
	TenantScope
	TeamHandler *handlers.TeamHandler
}

// SetupTeamRoutes configures membership and invitation management.
// Routes: /tenants/:tenantID/team/*, /invitations/:token/accept
// :invitationID is an invitation SID (inv_xxx format)
func SetupTeamRoutes(api *gin.RouterGroup, cfg *TeamRouteConfig) {
	authz := cfg.AuthzMiddleware
	seatLimit := authz.RequireWithinLimit(subscription.LimitMaxUsers, permission.ModuleTeamManagement)

	team := cfg.group(api).Group("/team")
	{
		team.GET("", authz.RequirePermission(permission.TeamView), cfg.TeamHandler.List)

		team.POST("/invitations",
			authz.RequireModule(permission.ModuleTeamManagement),
			authz.RequirePermission(permission.TeamInvite),
			seatLimit,
			cfg.TeamHandler.Invite,
		)
		team.DELETE("/invitations/:invitationID",
			authz.RequirePermission(permission.TeamInvite),
			cfg.TeamHandler.Revoke,
		)

		team.POST("/members",
			authz.RequireModule(permission.ModuleTeamManagement),
			authz.RequirePermission(permission.TeamManage),
			seatLimit,
			cfg.TeamHandler.Add,
		)
		team.PATCH("/:userID", authz.RequirePermission(permission.TeamManage), cfg.TeamHandler.Update)
		team.DELETE("/:userID", authz.RequirePermission(permission.TeamManage), cfg.TeamHandler.Remove)
	}

	// The invitee is not a member yet; the token is the credential.
	api.POST("/invitations/:token/accept", cfg.AuthMiddleware.RequireAuth(), cfg.TeamHandler.Accept)
}
