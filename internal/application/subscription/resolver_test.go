package subscription

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tillpoint/internal/domain/subscription"
	"tillpoint/internal/shared/logger"
)

type stubRepo struct {
	sub   *subscription.Subscription
	err   error
	calls int
}

func (s *stubRepo) GetByTenant(context.Context, string) (*subscription.Subscription, error) {
	s.calls++
	return s.sub, s.err
}
func (s *stubRepo) Create(context.Context, *subscription.Subscription) error { return nil }
func (s *stubRepo) Update(context.Context, *subscription.Subscription) error { return nil }
func (s *stubRepo) ListTrialsEndingBefore(context.Context, time.Time, int) ([]*subscription.Subscription, error) {
	return nil, nil
}

type stubUsage struct{ usage subscription.Usage }

func (s stubUsage) GetUsage(context.Context, string) (subscription.Usage, error) { return s.usage, nil }

type mapCache struct {
	states map[string]*subscription.State
	getErr error
}

func (c *mapCache) Get(_ context.Context, tenantID string) (*subscription.State, bool, error) {
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	s, ok := c.states[tenantID]
	return s, ok, nil
}

func (c *mapCache) Set(_ context.Context, s *subscription.State) error {
	c.states[s.TenantID] = s
	return nil
}

func (c *mapCache) Invalidate(_ context.Context, tenantID string) error {
	delete(c.states, tenantID)
	return nil
}

func TestResolveBuildsStateAndCaches(t *testing.T) {
	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	repo := &stubRepo{sub: subscription.ReconstructSubscription(1, "tn_1", subscription.TierProfessional,
		subscription.StatusActive, subscription.BillingMonthly, nil, nil, now, now)}
	cache := &mapCache{states: map[string]*subscription.State{}}
	r := NewStateResolver(repo, stubUsage{subscription.Usage{Users: 4}}, subscription.DefaultCatalog(), cache, logger.NewNopLogger())
	r.now = func() time.Time { return now }

	state, err := r.Resolve(context.Background(), "tn_1")
	require.NoError(t, err)
	assert.Equal(t, "professional", state.PlanID)
	assert.True(t, state.Features.Enabled(subscription.FeatureTeamManagement))
	assert.Equal(t, int64(4), state.Usage.Users)

	_, err = r.Resolve(context.Background(), "tn_1")
	require.NoError(t, err)
	assert.Equal(t, 1, repo.calls)

	r.Invalidate(context.Background(), "tn_1")
	_, err = r.Resolve(context.Background(), "tn_1")
	require.NoError(t, err)
	assert.Equal(t, 2, repo.calls)
}

func TestResolveNoSubscription(t *testing.T) {
	r := NewStateResolver(&stubRepo{}, stubUsage{}, subscription.DefaultCatalog(), nil, logger.NewNopLogger())

	state, err := r.Resolve(context.Background(), "tn_1")
	require.NoError(t, err)
	assert.Nil(t, state)
}

func TestResolveRepositoryError(t *testing.T) {
	r := NewStateResolver(&stubRepo{err: errors.New("boom")}, stubUsage{}, subscription.DefaultCatalog(), nil, logger.NewNopLogger())

	_, err := r.Resolve(context.Background(), "tn_1")
	assert.Error(t, err)
}

func TestResolveCacheErrorFallsBackToStore(t *testing.T) {
	now := time.Now()
	repo := &stubRepo{sub: subscription.ReconstructSubscription(1, "tn_1", subscription.TierFree,
		subscription.StatusActive, subscription.BillingMonthly, nil, nil, now, now)}
	cache := &mapCache{states: map[string]*subscription.State{}, getErr: errors.New("redis down")}
	r := NewStateResolver(repo, stubUsage{}, subscription.DefaultCatalog(), cache, logger.NewNopLogger())

	state, err := r.Resolve(context.Background(), "tn_1")
	require.NoError(t, err)
	assert.Equal(t, subscription.TierFree, state.Tier)
}

func TestResolveLapsesCachedTrial(t *testing.T) {
	now := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	ends := now.Add(-time.Minute)
	cache := &mapCache{states: map[string]*subscription.State{
		"tn_1": {TenantID: "tn_1", Status: subscription.StatusTrialing, TrialEndsAt: &ends},
	}}
	r := NewStateResolver(&stubRepo{}, stubUsage{}, subscription.DefaultCatalog(), cache, logger.NewNopLogger())
	r.now = func() time.Time { return now }

	state, err := r.Resolve(context.Background(), "tn_1")
	require.NoError(t, err)
	assert.Equal(t, subscription.StatusExpired, state.Status)
	assert.Equal(t, subscription.StatusTrialing, cache.states["tn_1"].Status)
}
