package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tillpoint/internal/application/subscription/usecases"
	"tillpoint/internal/domain/subscription"
	"tillpoint/internal/interfaces/http/handlers/testutil"
	apperrors "tillpoint/internal/shared/errors"
	"tillpoint/internal/shared/logger"
)

type mockStateResolver struct {
	state *subscription.State
	err   error
	calls int
}

func (m *mockStateResolver) Resolve(ctx context.Context, tenantID string) (*subscription.State, error) {
	m.calls++
	return m.state, m.err
}

type mockChangePlanUC struct {
	result *usecases.ChangePlanResult
	err    error
	got    usecases.ChangePlanCommand
}

func (m *mockChangePlanUC) Execute(ctx context.Context, cmd usecases.ChangePlanCommand) (*usecases.ChangePlanResult, error) {
	m.got = cmd
	return m.result, m.err
}

type mockUpdateStatusUC struct {
	err error
	got usecases.UpdateStatusCommand
}

func (m *mockUpdateStatusUC) Execute(ctx context.Context, cmd usecases.UpdateStatusCommand) error {
	m.got = cmd
	return m.err
}

type mockStartTrialUC struct {
	result *subscription.Subscription
	err    error
	got    usecases.StartTrialCommand
}

func (m *mockStartTrialUC) Execute(ctx context.Context, cmd usecases.StartTrialCommand) (*subscription.Subscription, error) {
	m.got = cmd
	return m.result, m.err
}

func testState(t *testing.T, tier subscription.Tier, usage subscription.Usage) *subscription.State {
	t.Helper()
	plan, ok := subscription.DefaultCatalog().Plan(tier)
	require.True(t, ok)
	sub := subscription.ReconstructSubscription(1, "tn_shop", tier, subscription.StatusActive,
		subscription.BillingMonthly, nil, nil, handlerNow, handlerNow)
	return subscription.NewState(sub, plan, usage, handlerNow)
}

func TestSubscriptionHandler_Get(t *testing.T) {
	t.Run("resolved state", func(t *testing.T) {
		states := &mockStateResolver{state: testState(t, subscription.TierStarter, subscription.Usage{Users: 2})}
		h := NewSubscriptionHandler(states, &mockChangePlanUC{}, &mockUpdateStatusUC{}, &mockStartTrialUC{}, logger.NewNopLogger())

		c, w := testutil.NewTestContext(http.MethodGet, "/api/v1/tenants/tn_shop/subscription", nil)
		testutil.SetTenantContext(c, "tn_shop", nil)
		h.Get(c)

		require.Equal(t, http.StatusOK, w.Code)
		var resp testutil.APIResponse
		require.NoError(t, testutil.ParseResponse(w, &resp))
		var out struct {
			Tier          string             `json:"tier"`
			CanUseService bool               `json:"canUseService"`
			Usage         subscription.Usage `json:"currentUsage"`
		}
		require.NoError(t, json.Unmarshal(resp.Data, &out))
		assert.Equal(t, "starter", out.Tier)
		assert.True(t, out.CanUseService)
		assert.Equal(t, int64(2), out.Usage.Users)
	})

	t.Run("tenant without subscription", func(t *testing.T) {
		h := NewSubscriptionHandler(&mockStateResolver{}, &mockChangePlanUC{}, &mockUpdateStatusUC{}, &mockStartTrialUC{}, logger.NewNopLogger())

		c, w := testutil.NewTestContext(http.MethodGet, "/api/v1/tenants/tn_shop/subscription", nil)
		testutil.SetTenantContext(c, "tn_shop", nil)
		h.Get(c)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("resolver failure", func(t *testing.T) {
		states := &mockStateResolver{err: errors.New("connection refused")}
		h := NewSubscriptionHandler(states, &mockChangePlanUC{}, &mockUpdateStatusUC{}, &mockStartTrialUC{}, logger.NewNopLogger())

		c, w := testutil.NewTestContext(http.MethodGet, "/api/v1/tenants/tn_shop/subscription", nil)
		testutil.SetTenantContext(c, "tn_shop", nil)
		h.Get(c)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

func TestSubscriptionHandler_ChangePlan(t *testing.T) {
	t.Run("upgrade", func(t *testing.T) {
		change := &mockChangePlanUC{result: &usecases.ChangePlanResult{
			PreviousTier: subscription.TierStarter,
			Tier:         subscription.TierProfessional,
			Direction:    usecases.ChangeUpgrade,
		}}
		h := NewSubscriptionHandler(&mockStateResolver{}, change, &mockUpdateStatusUC{}, &mockStartTrialUC{}, logger.NewNopLogger())

		c, w := testutil.NewTestContext(http.MethodPut, "/api/v1/tenants/tn_shop/subscription/plan",
			map[string]any{"tier": "professional"})
		testutil.SetTenantContext(c, "tn_shop", nil)
		h.ChangePlan(c)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, usecases.ChangePlanCommand{TenantID: "tn_shop", Tier: "professional"}, change.got)
		var resp testutil.APIResponse
		require.NoError(t, testutil.ParseResponse(w, &resp))
		assert.JSONEq(t, `{"previousTier":"starter","tier":"professional","direction":"upgrade"}`, string(resp.Data))
	})

	t.Run("tier is required", func(t *testing.T) {
		change := &mockChangePlanUC{}
		h := NewSubscriptionHandler(&mockStateResolver{}, change, &mockUpdateStatusUC{}, &mockStartTrialUC{}, logger.NewNopLogger())

		c, w := testutil.NewTestContext(http.MethodPut, "/api/v1/tenants/tn_shop/subscription/plan", map[string]any{})
		testutil.SetTenantContext(c, "tn_shop", nil)
		h.ChangePlan(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Empty(t, change.got.TenantID)
	})
}

func TestSubscriptionHandler_UpdateStatus(t *testing.T) {
	update := &mockUpdateStatusUC{}
	h := NewSubscriptionHandler(&mockStateResolver{}, &mockChangePlanUC{}, update, &mockStartTrialUC{}, logger.NewNopLogger())

	c, w := testutil.NewTestContext(http.MethodPut, "/api/v1/admin/tenants/tn_shop/subscription/status",
		map[string]any{"status": "past_due"})
	testutil.SetTenantContext(c, "tn_shop", nil)
	h.UpdateStatus(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, usecases.UpdateStatusCommand{TenantID: "tn_shop", Status: "past_due"}, update.got)
}

func TestSubscriptionHandler_StartTrial(t *testing.T) {
	t.Run("without a body uses the defaults", func(t *testing.T) {
		sub, err := subscription.NewTrial("tn_shop", subscription.TierProfessional, 14, handlerNow)
		require.NoError(t, err)
		start := &mockStartTrialUC{result: sub}
		h := NewSubscriptionHandler(&mockStateResolver{}, &mockChangePlanUC{}, &mockUpdateStatusUC{}, start, logger.NewNopLogger())

		c, w := testutil.NewTestContext(http.MethodPost, "/api/v1/admin/tenants/tn_shop/subscription/trial", nil)
		testutil.SetTenantContext(c, "tn_shop", nil)
		h.StartTrial(c)

		require.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, usecases.StartTrialCommand{TenantID: "tn_shop"}, start.got)
	})

	t.Run("existing subscription", func(t *testing.T) {
		start := &mockStartTrialUC{err: apperrors.NewConflictError("tenant already has a subscription")}
		h := NewSubscriptionHandler(&mockStateResolver{}, &mockChangePlanUC{}, &mockUpdateStatusUC{}, start, logger.NewNopLogger())

		c, w := testutil.NewTestContext(http.MethodPost, "/api/v1/admin/tenants/tn_shop/subscription/trial",
			map[string]any{"tier": "starter", "trialDays": 7})
		testutil.SetTenantContext(c, "tn_shop", nil)
		h.StartTrial(c)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, 7, start.got.TrialDays)
	})
}
