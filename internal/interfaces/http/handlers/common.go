package handlers

import (
	"github.com/gin-gonic/gin"

	"tillpoint/internal/application/authorization"
	"tillpoint/internal/application/team/usecases"
	"tillpoint/internal/domain/permission"
	"tillpoint/internal/interfaces/http/middleware"
	"tillpoint/internal/shared/constants"
	apperrors "tillpoint/internal/shared/errors"
)

func bindError(err error) error {
	return apperrors.NewValidationError("invalid request body", err.Error())
}

// assigner describes the caller for the role-escalation guard. Platform
// admins acting without a membership assign as owners.
func assigner(c *gin.Context) usecases.Assigner {
	if m := middleware.MemberFrom(c); m != nil {
		return usecases.Assigner{UserID: m.UserID(), Role: m.Role()}
	}
	a := usecases.Assigner{UserID: c.GetString(constants.ContextKeyUserID)}
	if v, ok := c.Get(constants.ContextKeyDecision); ok {
		if d, ok := v.(authorization.Decision); ok && d.Override == authorization.OverridePlatformAdmin {
			a.Role = permission.RoleOwner
		}
	}
	return a
}
