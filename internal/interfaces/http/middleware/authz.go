package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tillpoint/internal/application/authorization"
	"tillpoint/internal/application/entitlement"
	"tillpoint/internal/domain/permission"
	"tillpoint/internal/domain/subscription"
	"tillpoint/internal/shared/constants"
	"tillpoint/internal/shared/logger"
	"tillpoint/internal/shared/utils"
)

// HeaderUsageWarning carries the soft usage advisory on allowed requests.
const HeaderUsageWarning = "X-Usage-Warning"

// Denial is the structured payload every authorization refusal carries.
type Denial struct {
	Kind            authorization.DenyKind `json:"kind"`
	Reason          string                 `json:"reason"`
	UpgradeRequired bool                   `json:"upgrade_required"`
	Capability      string                 `json:"capability,omitempty"`
}

type DenialResponse struct {
	Success bool             `json:"success"`
	Error   *utils.ErrorInfo `json:"error"`
	Denial  Denial           `json:"denial"`
}

func NewDenial(d authorization.Decision) Denial {
	out := Denial{
		Kind:            d.Kind,
		Reason:          d.Reason,
		UpgradeRequired: d.UpgradeRequired(),
	}
	if d.Capability.Kind != 0 {
		out.Capability = d.Capability.String()
	}
	return out
}

// AbortWithDecision renders a denied decision and stops the chain.
func AbortWithDecision(c *gin.Context, d authorization.Decision) {
	status := http.StatusForbidden
	errType := "forbidden"
	if d.Kind == authorization.DenyNotAuthenticated {
		status = http.StatusUnauthorized
		errType = "unauthorized"
	}
	c.AbortWithStatusJSON(status, DenialResponse{
		Success: false,
		Error:   &utils.ErrorInfo{Type: errType, Message: d.Reason, Details: string(d.Kind)},
		Denial:  NewDenial(d),
	})
}

// AuthzMiddleware gates routes on the authorization engine. It must run
// after RequireAuth and TenantContext.
type AuthzMiddleware struct {
	engine    *authorization.Engine
	states    StateLookup
	threshold float64
	logger    logger.Interface
}

func NewAuthzMiddleware(engine *authorization.Engine, states StateLookup, threshold float64, logger logger.Interface) *AuthzMiddleware {
	return &AuthzMiddleware{engine: engine, states: states, threshold: threshold, logger: logger}
}

// Decide evaluates c against the request's actor, membership and location.
// The subscription is loaded only when the local rules leave the outcome
// open.
func (m *AuthzMiddleware) Decide(c *gin.Context, capability permission.Capability, locationID string) (authorization.Decision, error) {
	actor, _ := ActorFrom(c)
	req := authorization.Request{
		Actor:      actor,
		Member:     MemberFrom(c),
		Capability: capability,
		LocationID: locationID,
	}
	if _, decided := m.engine.PreCheck(req); !decided {
		state, err := StateFrom(c, m.states)
		if err != nil {
			return authorization.Decision{}, err
		}
		req.Subscription = state
	}
	return m.engine.Evaluate(req), nil
}

// LocationSource reads the location a guarded request acts on.
type LocationSource func(*gin.Context) string

// QueryLocation reads the optional "location" query parameter.
func QueryLocation(c *gin.Context) string {
	return c.Query("location")
}

// PathLocation reads the location a route addresses from its path, so
// the location being changed is the one checked.
func PathLocation(param string) LocationSource {
	return func(c *gin.Context) string {
		return c.Param(param)
	}
}

// RequireModule allows the request when the caller may use module at the
// location named by the "location" query parameter, if any.
func (m *AuthzMiddleware) RequireModule(module permission.ModuleKey) gin.HandlerFunc {
	return m.RequireModuleAt(module, QueryLocation)
}

func (m *AuthzMiddleware) RequireModuleAt(module permission.ModuleKey, at LocationSource) gin.HandlerFunc {
	capability := permission.ModuleCapability(module)
	return m.require(capability, at)
}

func (m *AuthzMiddleware) RequirePermission(p permission.Permission) gin.HandlerFunc {
	return m.RequirePermissionAt(p, QueryLocation)
}

func (m *AuthzMiddleware) RequirePermissionAt(p permission.Permission, at LocationSource) gin.HandlerFunc {
	return m.require(permission.ActionCapability(p), at)
}

func (m *AuthzMiddleware) require(capability permission.Capability, at LocationSource) gin.HandlerFunc {
	return func(c *gin.Context) {
		d, err := m.Decide(c, capability, at(c))
		if err != nil {
			m.logger.Errorw("authorization check failed", "tenant_id", TenantIDFrom(c), "error", err)
			utils.ErrorResponseWithError(c, err)
			c.Abort()
			return
		}
		c.Set(constants.ContextKeyDecision, d)
		if !d.Allowed {
			m.logger.Debugw("request denied",
				"tenant_id", TenantIDFrom(c),
				"user_id", c.GetString(constants.ContextKeyUserID),
				"decision", d.String())
			AbortWithDecision(c, d)
			return
		}
		c.Next()
	}
}

// RequireMembership admits platform admins and active members of the
// tenant in context. Routes behind it need no particular module.
func (m *AuthzMiddleware) RequireMembership() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, _ := ActorFrom(c)
		member := MemberFrom(c)
		if m.engine.IsPlatformAdmin(actor) || (member != nil && member.IsActive()) {
			c.Next()
			return
		}
		kind := authorization.DenyNoMembership
		if member != nil {
			kind = authorization.DenyMembershipInactive
		}
		AbortWithDecision(c, authorization.Deny(permission.Capability{}, kind, "no active membership"))
	}
}

// RequireWithinLimit blocks creation once the tenant's counter for key has
// reached the plan limit. Below the limit it only attaches the advisory.
func (m *AuthzMiddleware) RequireWithinLimit(key subscription.LimitKey, module permission.ModuleKey) gin.HandlerFunc {
	return func(c *gin.Context) {
		state, err := StateFrom(c, m.states)
		if err != nil {
			utils.ErrorResponseWithError(c, err)
			c.Abort()
			return
		}

		d := entitlement.CheckState(state, key, module)
		if !d.Allowed {
			AbortWithDecision(c, d)
			return
		}

		current, _ := state.Usage.For(key)
		if adv := entitlement.Advise(state.Limits, key, current, m.threshold); adv.Warning {
			c.Header(HeaderUsageWarning, adv.Message)
		}
		c.Next()
	}
}

// RequirePlatformAdmin restricts a route to the configured platform admins.
func RequirePlatformAdmin(admins *authorization.PlatformAdmins) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, _ := ActorFrom(c)
		if !admins.Contains(actor) {
			utils.ErrorResponse(c, http.StatusForbidden, "platform admin access required")
			c.Abort()
			return
		}
		c.Next()
	}
}
