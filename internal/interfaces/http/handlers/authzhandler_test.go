package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tillpoint/internal/application/authorization"
	"tillpoint/internal/application/locationswitch"
	"tillpoint/internal/domain/location"
	"tillpoint/internal/domain/permission"
	"tillpoint/internal/domain/subscription"
	"tillpoint/internal/interfaces/http/handlers/testutil"
	"tillpoint/internal/shared/logger"
)

type mockDecider struct {
	decision   authorization.Decision
	err        error
	capability permission.Capability
	location   string
}

func (m *mockDecider) Decide(c *gin.Context, capability permission.Capability, locationID string) (authorization.Decision, error) {
	m.capability = capability
	m.location = locationID
	return m.decision, m.err
}

func TestAuthzHandler_Decide(t *testing.T) {
	t.Run("denial is an answer, not an error", func(t *testing.T) {
		capability := permission.ModuleCapability(permission.ModuleSuppliers)
		decider := &mockDecider{decision: authorization.Deny(capability, authorization.DenyFeatureNotEntitled, "plan does not include suppliers")}
		h := NewAuthzHandler(decider, &mockStateResolver{}, 0.8, logger.NewNopLogger())

		c, w := testutil.NewTestContext(http.MethodGet, "/api/v1/tenants/tn_shop/authz/decide", nil)
		testutil.SetTenantContext(c, "tn_shop", nil)
		testutil.SetQueryParams(c, map[string]string{"module": "suppliers", "location": "loc_abc123"})
		h.Decide(c)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, capability, decider.capability)
		assert.Equal(t, "loc_abc123", decider.location)

		var resp testutil.APIResponse
		require.NoError(t, testutil.ParseResponse(w, &resp))
		var out DecisionResponse
		require.NoError(t, json.Unmarshal(resp.Data, &out))
		assert.False(t, out.Allowed)
		assert.Equal(t, "feature_not_entitled", out.Kind)
		assert.True(t, out.UpgradeRequired)
		assert.Equal(t, "module:suppliers", out.Capability)
	})

	t.Run("unknown module", func(t *testing.T) {
		h := NewAuthzHandler(&mockDecider{}, &mockStateResolver{}, 0.8, logger.NewNopLogger())
		c, w := testutil.NewTestContext(http.MethodGet, "/api/v1/tenants/tn_shop/authz/decide", nil)
		testutil.SetQueryParams(c, map[string]string{"module": "payroll"})
		h.Decide(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestAuthzHandler_Permission(t *testing.T) {
	decider := &mockDecider{decision: authorization.Allow(permission.ActionCapability(permission.POSSell), authorization.OverrideNone)}
	h := NewAuthzHandler(decider, &mockStateResolver{}, 0.8, logger.NewNopLogger())

	c, w := testutil.NewTestContext(http.MethodGet, "/api/v1/tenants/tn_shop/authz/permission", nil)
	testutil.SetQueryParams(c, map[string]string{"permission": string(permission.POSSell)})
	h.Permission(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, permission.ActionCapability(permission.POSSell), decider.capability)
}

func TestAuthzHandler_Limit(t *testing.T) {
	decodeLimit := func(t *testing.T, body []byte) LimitResponse {
		t.Helper()
		var resp testutil.APIResponse
		require.NoError(t, json.Unmarshal(body, &resp))
		var out LimitResponse
		require.NoError(t, json.Unmarshal(resp.Data, &out))
		return out
	}

	t.Run("stored usage near the cap warns", func(t *testing.T) {
		states := &mockStateResolver{state: testState(t, subscription.TierProfessional, subscription.Usage{Locations: 4})}
		h := NewAuthzHandler(&mockDecider{}, states, 0.8, logger.NewNopLogger())

		c, w := testutil.NewTestContext(http.MethodGet, "/api/v1/tenants/tn_shop/authz/limit", nil)
		testutil.SetTenantContext(c, "tn_shop", nil)
		testutil.SetQueryParams(c, map[string]string{"key": "maxLocations"})
		h.Limit(c)

		require.Equal(t, http.StatusOK, w.Code)
		out := decodeLimit(t, w.Body.Bytes())
		assert.True(t, out.Within)
		assert.True(t, out.Advisory.Warning)
		assert.Equal(t, "4 of 5 maxLocations used", out.Advisory.Message)
		assert.True(t, out.Decision.Allowed)
	})

	t.Run("explicit usage at the cap is denied", func(t *testing.T) {
		states := &mockStateResolver{state: testState(t, subscription.TierProfessional, subscription.Usage{})}
		h := NewAuthzHandler(&mockDecider{}, states, 0.8, logger.NewNopLogger())

		c, w := testutil.NewTestContext(http.MethodGet, "/api/v1/tenants/tn_shop/authz/limit", nil)
		testutil.SetTenantContext(c, "tn_shop", nil)
		testutil.SetQueryParams(c, map[string]string{"key": "maxLocations", "usage": "5"})
		h.Limit(c)

		require.Equal(t, http.StatusOK, w.Code)
		out := decodeLimit(t, w.Body.Bytes())
		assert.False(t, out.Within)
		assert.Equal(t, "limit_reached", out.Decision.Kind)
		assert.True(t, out.Decision.UpgradeRequired)
		assert.Equal(t, "module:locations", out.Decision.Capability)
	})

	t.Run("no subscription", func(t *testing.T) {
		h := NewAuthzHandler(&mockDecider{}, &mockStateResolver{}, 0.8, logger.NewNopLogger())

		c, w := testutil.NewTestContext(http.MethodGet, "/api/v1/tenants/tn_shop/authz/limit", nil)
		testutil.SetTenantContext(c, "tn_shop", nil)
		testutil.SetQueryParams(c, map[string]string{"key": "maxUsers"})
		h.Limit(c)

		require.Equal(t, http.StatusOK, w.Code)
		out := decodeLimit(t, w.Body.Bytes())
		assert.False(t, out.Within)
		assert.Equal(t, "subscription_inactive", out.Decision.Kind)
	})

	t.Run("invalid input", func(t *testing.T) {
		states := &mockStateResolver{state: testState(t, subscription.TierFree, subscription.Usage{})}
		h := NewAuthzHandler(&mockDecider{}, states, 0.8, logger.NewNopLogger())

		for _, q := range []map[string]string{
			{"key": "maxWidgets"},
			{"key": "maxUsers", "usage": "-1"},
			{"key": "maxUsers", "usage": "many"},
		} {
			c, w := testutil.NewTestContext(http.MethodGet, "/api/v1/tenants/tn_shop/authz/limit", nil)
			testutil.SetTenantContext(c, "tn_shop", nil)
			testutil.SetQueryParams(c, q)
			h.Limit(c)
			assert.Equal(t, http.StatusBadRequest, w.Code, "query %v", q)
		}
	})
}

type mockMachines struct {
	called bool
}

func (m *mockMachines) Machine(ctx context.Context, tenantID, userID, explicit string) (*locationswitch.Machine, error) {
	m.called = true
	return nil, errors.New("unexpected machine lookup")
}

type mockCandidates struct {
	result []*location.Location
	err    error
}

func (m *mockCandidates) Candidates(ctx context.Context, tenantID, userID string) ([]*location.Location, error) {
	return m.result, m.err
}

func TestSelectionHandler_Switch(t *testing.T) {
	t.Run("location outside the candidate set", func(t *testing.T) {
		machines := &mockMachines{}
		h := NewSelectionHandler(machines, &mockCandidates{result: []*location.Location{testLocation("Downtown")}}, logger.NewNopLogger())

		c, w := testutil.NewTestContext(http.MethodPut, "/api/v1/tenants/tn_shop/selection",
			map[string]any{"locationId": "loc_elsewhere"})
		testutil.SetAuthContext(c, "staff-1", "staff-1@example.com")
		testutil.SetTenantContext(c, "tn_shop", testMember("staff-1", permission.RoleStaff))
		h.Switch(c)

		require.Equal(t, http.StatusForbidden, w.Code)
		assert.False(t, machines.called)
		var resp testutil.APIResponse
		require.NoError(t, testutil.ParseResponse(w, &resp))
		require.NotNil(t, resp.Denial)
		assert.Equal(t, "location_not_accessible", resp.Denial.Kind)
	})

	t.Run("candidate lookup failure", func(t *testing.T) {
		machines := &mockMachines{}
		h := NewSelectionHandler(machines, &mockCandidates{err: errors.New("db down")}, logger.NewNopLogger())

		c, w := testutil.NewTestContext(http.MethodPut, "/api/v1/tenants/tn_shop/selection",
			map[string]any{"locationId": "loc_abc123"})
		testutil.SetAuthContext(c, "staff-1", "staff-1@example.com")
		testutil.SetTenantContext(c, "tn_shop", nil)
		h.Switch(c)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.False(t, machines.called)
	})

	t.Run("location id is required", func(t *testing.T) {
		h := NewSelectionHandler(&mockMachines{}, &mockCandidates{}, logger.NewNopLogger())

		c, w := testutil.NewTestContext(http.MethodPut, "/api/v1/tenants/tn_shop/selection", map[string]any{})
		testutil.SetTenantContext(c, "tn_shop", nil)
		h.Switch(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHealthHandler(t *testing.T) {
	t.Run("healthy", func(t *testing.T) {
		h := NewHealthHandler(map[string]Pinger{"database": func(ctx context.Context) error { return nil }})
		c, w := testutil.NewTestContext(http.MethodGet, "/health", nil)
		h.Health(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"status":"healthy","checks":{"database":"ok"}}`, w.Body.String())
	})

	t.Run("degraded", func(t *testing.T) {
		h := NewHealthHandler(map[string]Pinger{
			"database": func(ctx context.Context) error { return nil },
			"redis":    func(ctx context.Context) error { return errors.New("dial tcp: connection refused") },
		})
		c, w := testutil.NewTestContext(http.MethodGet, "/health", nil)
		h.Health(c)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.JSONEq(t, `{"status":"degraded","checks":{"database":"ok","redis":"dial tcp: connection refused"}}`, w.Body.String())
	})
}
