package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tillpoint/internal/application/authorization"
	"tillpoint/internal/domain/permission"
	"tillpoint/internal/domain/subscription"
	"tillpoint/internal/domain/team"
	"tillpoint/internal/domain/tenant"
	"tillpoint/internal/infrastructure/auth"
	"tillpoint/internal/shared/constants"
	"tillpoint/internal/shared/logger"
	"tillpoint/internal/shared/utils"
)

var testNow = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

func init() {
	gin.SetMode(gin.TestMode)
}

// =====================================================================
// Fakes
// =====================================================================

type fakeTenants struct {
	known map[string]bool
	err   error
}

func (f *fakeTenants) GetByID(ctx context.Context, tenantID string) (*tenant.Tenant, error) {
	if f.err != nil {
		return nil, f.err
	}
	if !f.known[tenantID] {
		return nil, tenant.ErrTenantNotFound
	}
	return tenant.ReconstructTenant(tenantID, "Shop", "owner", testNow), nil
}

type fakeMembers struct {
	members map[string]*team.Member
}

func (f *fakeMembers) Get(ctx context.Context, tenantID, userID string) (*team.Member, error) {
	return f.members[tenantID+"/"+userID], nil
}

type fakeStates struct {
	state *subscription.State
	err   error
	calls int
}

func (f *fakeStates) Resolve(ctx context.Context, tenantID string) (*subscription.State, error) {
	f.calls++
	return f.state, f.err
}

// =====================================================================
// Helpers
// =====================================================================

func newMember(t *testing.T, userID string, role permission.Role) *team.Member {
	t.Helper()
	m, err := team.NewMember("tn_shop", userID, userID+"@example.com", "", role, nil, nil, testNow)
	require.NoError(t, err)
	return m
}

func newState(t *testing.T, tier subscription.Tier, usage subscription.Usage) *subscription.State {
	t.Helper()
	plan, ok := subscription.DefaultCatalog().Plan(tier)
	require.True(t, ok)
	sub := subscription.ReconstructSubscription(1, "tn_shop", tier, subscription.StatusActive, subscription.BillingMonthly, nil, nil, testNow, testNow)
	return subscription.NewState(sub, plan, usage, testNow)
}

// withCaller stands in for RequireAuth and TenantContext.
func withCaller(actor authorization.Actor, member *team.Member) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(constants.ContextKeyActor, actor)
		c.Set(constants.ContextKeyUserID, actor.UserID)
		c.Set(constants.ContextKeyTenantID, "tn_shop")
		if member != nil {
			c.Set(constants.ContextKeyMember, member)
		}
		c.Next()
	}
}

func ok(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeDenial(t *testing.T, w *httptest.ResponseRecorder) DenialResponse {
	t.Helper()
	var resp DenialResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func newAuthz(states StateLookup, opts ...authorization.Option) *AuthzMiddleware {
	engine := authorization.NewEngine(permission.DefaultRoleTable(), logger.NewNopLogger(), opts...)
	return NewAuthzMiddleware(engine, states, 0.8, logger.NewNopLogger())
}

// =====================================================================
// RequireAuth
// =====================================================================

func TestRequireAuth(t *testing.T) {
	jwtSvc := auth.NewJWTService("test-secret", "tillpoint", 15)
	token, err := jwtSvc.Issue("user-1", "ana@example.com", "Ana")
	require.NoError(t, err)

	r := gin.New()
	r.GET("/me", NewAuthMiddleware(jwtSvc, logger.NewNopLogger()).RequireAuth(), func(c *gin.Context) {
		actor, found := ActorFrom(c)
		require.True(t, found)
		c.JSON(http.StatusOK, gin.H{"user": actor.UserID, "email": actor.Email})
	})

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"valid bearer token", "Bearer " + token, http.StatusOK},
		{"lowercase scheme", "bearer " + token, http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized},
		{"garbage token", "Bearer not-a-jwt", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set(constants.HeaderAuthorization, tt.header)
			}
			w := serve(r, req)
			assert.Equal(t, tt.status, w.Code)

			if tt.status == http.StatusUnauthorized {
				var resp utils.APIResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				require.NotNil(t, resp.Error)
				assert.Equal(t, "not_authenticated", resp.Error.Type)
				return
			}
			assert.JSONEq(t, `{"user":"user-1","email":"ana@example.com"}`, w.Body.String())
		})
	}
}

// =====================================================================
// TenantContext
// =====================================================================

func TestTenantContext(t *testing.T) {
	owner := newMember(t, "user-1", permission.RoleOwner)
	tm := NewTenantMiddleware(
		&fakeTenants{known: map[string]bool{"tn_shop": true}},
		&fakeMembers{members: map[string]*team.Member{"tn_shop/user-1": owner}},
		logger.NewNopLogger(),
	)

	r := gin.New()
	r.GET("/tenants/:tenantID",
		func(c *gin.Context) {
			c.Set(constants.ContextKeyUserID, c.GetHeader("X-User"))
			c.Next()
		},
		tm.TenantContext(),
		func(c *gin.Context) {
			m := MemberFrom(c)
			c.JSON(http.StatusOK, gin.H{"tenant": TenantIDFrom(c), "member": m != nil})
		},
	)

	t.Run("binds tenant and membership", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/tenants/tn_shop", nil)
		req.Header.Set("X-User", "user-1")
		w := serve(r, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"tenant":"tn_shop","member":true}`, w.Body.String())
	})

	t.Run("non-member passes without membership", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/tenants/tn_shop", nil)
		req.Header.Set("X-User", "stranger")
		w := serve(r, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"tenant":"tn_shop","member":false}`, w.Body.String())
	})

	t.Run("unknown tenant", func(t *testing.T) {
		w := serve(r, httptest.NewRequest(http.MethodGet, "/tenants/tn_missing", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("wrong prefix", func(t *testing.T) {
		w := serve(r, httptest.NewRequest(http.MethodGet, "/tenants/loc_shop", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestTenantContextStoreFailure(t *testing.T) {
	tm := NewTenantMiddleware(&fakeTenants{err: errors.New("connection reset")}, &fakeMembers{}, logger.NewNopLogger())
	r := gin.New()
	r.GET("/tenants/:tenantID", tm.TenantContext(), ok)

	w := serve(r, httptest.NewRequest(http.MethodGet, "/tenants/tn_shop", nil))
	var resp utils.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "persistence_failure", resp.Error.Type)
}

// =====================================================================
// Authorization
// =====================================================================

func TestRequireModuleDenials(t *testing.T) {
	tests := []struct {
		name    string
		member  *team.Member
		tier    subscription.Tier
		module  permission.ModuleKey
		status  int
		kind    authorization.DenyKind
		upgrade bool
	}{
		{
			name:   "no membership",
			member: nil,
			tier:   subscription.TierProfessional,
			module: permission.ModulePOS,
			status: http.StatusForbidden,
			kind:   authorization.DenyNoMembership,
		},
		{
			name:   "role capped",
			member: newMember(t, "cashier", permission.RoleStaff),
			tier:   subscription.TierEnterprise,
			module: permission.ModuleReports,
			status: http.StatusForbidden,
			kind:   authorization.DenyRoleCapped,
		},
		{
			name:    "feature outside the plan",
			member:  newMember(t, "boss", permission.RoleManager),
			tier:    subscription.TierFree,
			module:  permission.ModuleLocations,
			status:  http.StatusForbidden,
			kind:    authorization.DenyFeatureNotEntitled,
			upgrade: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			states := &fakeStates{state: newState(t, tt.tier, subscription.Usage{})}
			authz := newAuthz(states)

			r := gin.New()
			r.GET("/x", withCaller(authorization.Actor{UserID: "u"}, tt.member), authz.RequireModule(tt.module), ok)

			w := serve(r, httptest.NewRequest(http.MethodGet, "/x", nil))
			assert.Equal(t, tt.status, w.Code)

			resp := decodeDenial(t, w)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.kind, resp.Denial.Kind)
			assert.Equal(t, tt.upgrade, resp.Denial.UpgradeRequired)
			assert.Equal(t, "module:"+string(tt.module), resp.Denial.Capability)
		})
	}
}

func TestRequireModuleSkipsSubscriptionWhenLocalRulesDecide(t *testing.T) {
	states := &fakeStates{state: newState(t, subscription.TierProfessional, subscription.Usage{})}
	authz := newAuthz(states)

	r := gin.New()
	r.GET("/x", withCaller(authorization.Actor{UserID: "u"}, nil), authz.RequireModule(permission.ModulePOS), ok)

	w := serve(r, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Zero(t, states.calls)
}

func TestRequireModuleAllowsAndStoresDecision(t *testing.T) {
	states := &fakeStates{state: newState(t, subscription.TierProfessional, subscription.Usage{})}
	authz := newAuthz(states)
	owner := newMember(t, "boss", permission.RoleOwner)

	r := gin.New()
	r.GET("/x", withCaller(authorization.Actor{UserID: "boss"}, owner), authz.RequireModule(permission.ModuleLocations), func(c *gin.Context) {
		v, found := c.Get(constants.ContextKeyDecision)
		require.True(t, found)
		d := v.(authorization.Decision)
		c.JSON(http.StatusOK, gin.H{"allowed": d.Allowed})
	})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"allowed":true}`, w.Body.String())
	assert.Equal(t, 1, states.calls)
}

func TestRequireModuleLocationScope(t *testing.T) {
	states := &fakeStates{state: newState(t, subscription.TierProfessional, subscription.Usage{})}
	authz := newAuthz(states)
	staff, err := team.NewMember("tn_shop", "cashier", "", "", permission.RoleStaff, []string{"loc_a"}, nil, testNow)
	require.NoError(t, err)

	r := gin.New()
	r.GET("/x", withCaller(authorization.Actor{UserID: "cashier"}, staff), authz.RequireModule(permission.ModulePOS), ok)

	assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/x?location=loc_a", nil)).Code)

	w := serve(r, httptest.NewRequest(http.MethodGet, "/x?location=loc_b", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, authorization.DenyLocationNotAccessible, decodeDenial(t, w).Denial.Kind)
}

func TestRequireAtPathLocation(t *testing.T) {
	states := &fakeStates{state: newState(t, subscription.TierProfessional, subscription.Usage{})}
	authz := newAuthz(states)
	manager, err := team.NewMember("tn_shop", "lead", "", "", permission.RoleManager, []string{"loc_a"}, nil, testNow)
	require.NoError(t, err)

	target := PathLocation("locationID")
	r := gin.New()
	r.DELETE("/locations/:locationID",
		withCaller(authorization.Actor{UserID: "lead"}, manager),
		authz.RequirePermissionAt(permission.LocationsManage, target),
		authz.RequireModuleAt(permission.ModuleLocations, target),
		ok,
	)

	assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodDelete, "/locations/loc_a", nil)).Code)

	w := serve(r, httptest.NewRequest(http.MethodDelete, "/locations/loc_b?location=loc_a", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)
	resp := decodeDenial(t, w)
	assert.Equal(t, authorization.DenyLocationNotAccessible, resp.Denial.Kind)
	assert.Equal(t, "action:locations.manage", resp.Denial.Capability)
}

func TestRequireModulePlatformAdminOverride(t *testing.T) {
	states := &fakeStates{state: newState(t, subscription.TierProfessional, subscription.Usage{})}
	authz := newAuthz(states, authorization.WithPlatformAdmins(authorization.NewPlatformAdmins([]string{"root@example.com"})))

	r := gin.New()
	r.GET("/x", withCaller(authorization.Actor{UserID: "root", Email: "root@example.com"}, nil), authz.RequireModule(permission.ModuleBilling), ok)

	assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/x", nil)).Code)
}

func TestRequireModuleResolverFailure(t *testing.T) {
	authz := newAuthz(&fakeStates{err: errors.New("timeout")})
	owner := newMember(t, "boss", permission.RoleOwner)

	r := gin.New()
	r.GET("/x", withCaller(authorization.Actor{UserID: "boss"}, owner), authz.RequireModule(permission.ModulePOS), ok)

	w := serve(r, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestRequirePermission(t *testing.T) {
	authz := newAuthz(&fakeStates{})
	staff := newMember(t, "cashier", permission.RoleStaff)

	r := gin.New()
	r.GET("/sell", withCaller(authorization.Actor{UserID: "cashier"}, staff), authz.RequirePermission(permission.POSSell), ok)
	r.GET("/team", withCaller(authorization.Actor{UserID: "cashier"}, staff), authz.RequirePermission(permission.TeamManage), ok)

	assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/sell", nil)).Code)

	w := serve(r, httptest.NewRequest(http.MethodGet, "/team", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)
	resp := decodeDenial(t, w)
	assert.Equal(t, authorization.DenyPermissionNotGranted, resp.Denial.Kind)
	assert.Equal(t, "action:team.manage", resp.Denial.Capability)
}

func TestRequireWithinLimit(t *testing.T) {
	tests := []struct {
		name    string
		tier    subscription.Tier
		usage   subscription.Usage
		status  int
		warning string
	}{
		{"below threshold", subscription.TierProfessional, subscription.Usage{Locations: 1}, http.StatusOK, ""},
		{"at warning threshold", subscription.TierProfessional, subscription.Usage{Locations: 4}, http.StatusOK, "4 of 5 maxLocations used"},
		{"at limit", subscription.TierFree, subscription.Usage{Locations: 1}, http.StatusForbidden, ""},
		{"unlimited", subscription.TierEnterprise, subscription.Usage{Locations: 500}, http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			authz := newAuthz(&fakeStates{state: newState(t, tt.tier, tt.usage)})
			r := gin.New()
			r.POST("/locations", authz.RequireWithinLimit(subscription.LimitMaxLocations, permission.ModuleLocations), ok)

			w := serve(r, httptest.NewRequest(http.MethodPost, "/locations", nil))
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.warning, w.Header().Get(HeaderUsageWarning))

			if tt.status == http.StatusForbidden {
				resp := decodeDenial(t, w)
				assert.Equal(t, authorization.DenyLimitReached, resp.Denial.Kind)
				assert.True(t, resp.Denial.UpgradeRequired)
			}
		})
	}
}

func TestRequireWithinLimitWithoutSubscription(t *testing.T) {
	authz := newAuthz(&fakeStates{})
	r := gin.New()
	r.POST("/members", authz.RequireWithinLimit(subscription.LimitMaxUsers, permission.ModuleTeamManagement), ok)

	w := serve(r, httptest.NewRequest(http.MethodPost, "/members", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, authorization.DenySubscriptionInactive, decodeDenial(t, w).Denial.Kind)
}

func TestRequireMembership(t *testing.T) {
	authz := newAuthz(&fakeStates{}, authorization.WithPlatformAdmins(authorization.NewPlatformAdmins([]string{"root"})))
	inactive := newMember(t, "gone", permission.RoleManager)
	require.NoError(t, inactive.ChangeStatus(team.MemberStatusInactive, testNow))

	tests := []struct {
		name   string
		actor  authorization.Actor
		member *team.Member
		status int
		kind   authorization.DenyKind
	}{
		{"active member", authorization.Actor{UserID: "viewer"}, newMember(t, "viewer", permission.RoleViewer), http.StatusOK, ""},
		{"platform admin", authorization.Actor{UserID: "root"}, nil, http.StatusOK, ""},
		{"stranger", authorization.Actor{UserID: "stranger"}, nil, http.StatusForbidden, authorization.DenyNoMembership},
		{"inactive member", authorization.Actor{UserID: "gone"}, inactive, http.StatusForbidden, authorization.DenyMembershipInactive},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/x", withCaller(tt.actor, tt.member), authz.RequireMembership(), ok)

			w := serve(r, httptest.NewRequest(http.MethodGet, "/x", nil))
			assert.Equal(t, tt.status, w.Code)
			if tt.kind != "" {
				resp := decodeDenial(t, w)
				assert.Equal(t, tt.kind, resp.Denial.Kind)
				assert.Empty(t, resp.Denial.Capability)
			}
		})
	}
}

func TestRequirePlatformAdmin(t *testing.T) {
	admins := authorization.NewPlatformAdmins([]string{"Root@Example.com"})
	r := gin.New()
	r.GET("/admin", func(c *gin.Context) {
		c.Set(constants.ContextKeyActor, authorization.Actor{UserID: c.GetHeader("X-User"), Email: c.GetHeader("X-Email")})
		c.Next()
	}, RequirePlatformAdmin(admins), ok)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("X-User", "u1")
	req.Header.Set("X-Email", "root@example.com")
	assert.Equal(t, http.StatusOK, serve(r, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("X-User", "u2")
	req.Header.Set("X-Email", "someone@example.com")
	assert.Equal(t, http.StatusForbidden, serve(r, req).Code)
}
