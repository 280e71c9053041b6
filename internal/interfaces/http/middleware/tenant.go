package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"tillpoint/internal/domain/subscription"
	"tillpoint/internal/domain/team"
	"tillpoint/internal/domain/tenant"
	"tillpoint/internal/shared/constants"
	apperrors "tillpoint/internal/shared/errors"
	"tillpoint/internal/shared/id"
	"tillpoint/internal/shared/logger"
	"tillpoint/internal/shared/utils"
)

type TenantLookup interface {
	GetByID(ctx context.Context, tenantID string) (*tenant.Tenant, error)
}

type MemberLookup interface {
	Get(ctx context.Context, tenantID, userID string) (*team.Member, error)
}

type StateLookup interface {
	Resolve(ctx context.Context, tenantID string) (*subscription.State, error)
}

// TenantMiddleware binds the :tenantID path parameter to the request and
// loads the caller's membership in it. A missing membership is not an
// error here; the authorization checks decide what it means.
type TenantMiddleware struct {
	tenants TenantLookup
	members MemberLookup
	logger  logger.Interface
}

func NewTenantMiddleware(tenants TenantLookup, members MemberLookup, logger logger.Interface) *TenantMiddleware {
	return &TenantMiddleware{tenants: tenants, members: members, logger: logger}
}

func (m *TenantMiddleware) TenantContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID, err := utils.ParseSIDParam(c, "tenantID", id.PrefixTenant, "tenant")
		if err != nil {
			utils.ErrorResponseWithError(c, err)
			c.Abort()
			return
		}

		if _, err := m.tenants.GetByID(c.Request.Context(), tenantID); err != nil {
			if errors.Is(err, tenant.ErrTenantNotFound) {
				utils.ErrorResponse(c, http.StatusNotFound, "tenant not found")
			} else {
				m.logger.Errorw("failed to load tenant", "tenant_id", tenantID, "error", err)
				utils.ErrorResponseWithError(c, apperrors.NewPersistenceError("failed to load tenant"))
			}
			c.Abort()
			return
		}

		member, err := m.members.Get(c.Request.Context(), tenantID, c.GetString(constants.ContextKeyUserID))
		if err != nil {
			m.logger.Errorw("failed to load membership", "tenant_id", tenantID, "error", err)
			utils.ErrorResponseWithError(c, apperrors.NewPersistenceError("failed to load membership"))
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyTenantID, tenantID)
		if member != nil {
			c.Set(constants.ContextKeyMember, member)
		}
		c.Next()
	}
}

func TenantIDFrom(c *gin.Context) string {
	return c.GetString(constants.ContextKeyTenantID)
}

// MemberFrom returns nil when the caller has no membership in the tenant.
func MemberFrom(c *gin.Context) *team.Member {
	v, ok := c.Get(constants.ContextKeyMember)
	if !ok {
		return nil
	}
	m, _ := v.(*team.Member)
	return m
}

// StateFrom resolves the tenant's subscription once per request.
func StateFrom(c *gin.Context, states StateLookup) (*subscription.State, error) {
	if v, ok := c.Get(constants.ContextKeySubscription); ok {
		s, _ := v.(*subscription.State)
		return s, nil
	}
	s, err := states.Resolve(c.Request.Context(), TenantIDFrom(c))
	if err != nil {
		return nil, apperrors.NewPersistenceError("failed to load subscription", err.Error())
	}
	c.Set(constants.ContextKeySubscription, s)
	return s, nil
}
