// Package subscription resolves a tenant's effective subscription state.
package subscription

import (
	"context"
	"fmt"
	"time"

	"tillpoint/internal/domain/subscription"
	"tillpoint/internal/shared/logger"
)

// StateCache holds resolved states between reads. Implementations must
// treat a failed Get as a miss.
type StateCache interface {
	Get(ctx context.Context, tenantID string) (*subscription.State, bool, error)
	Set(ctx context.Context, state *subscription.State) error
	Invalidate(ctx context.Context, tenantID string) error
}

// StateResolver builds subscription.State from the stored subscription,
// the plan catalog and live usage.
type StateResolver struct {
	subs    subscription.Repository
	usage   subscription.UsageReader
	catalog *subscription.Catalog
	cache   StateCache
	now     func() time.Time
	logger  logger.Interface
}

func NewStateResolver(
	subs subscription.Repository,
	usage subscription.UsageReader,
	catalog *subscription.Catalog,
	cache StateCache,
	logger logger.Interface,
) *StateResolver {
	return &StateResolver{
		subs:    subs,
		usage:   usage,
		catalog: catalog,
		cache:   cache,
		now:     time.Now,
		logger:  logger,
	}
}

// Resolve returns (nil, nil) when the tenant has no subscription.
func (r *StateResolver) Resolve(ctx context.Context, tenantID string) (*subscription.State, error) {
	now := r.now()
	if r.cache != nil {
		state, ok, err := r.cache.Get(ctx, tenantID)
		if err != nil {
			r.logger.Warnw("subscription cache read failed", "tenant_id", tenantID, "error", err)
		} else if ok {
			return lapse(state, now), nil
		}
	}

	sub, err := r.subs.GetByTenant(ctx, tenantID)
	if err != nil {
		r.logger.Errorw("failed to load subscription", "tenant_id", tenantID, "error", err)
		return nil, fmt.Errorf("failed to load subscription: %w", err)
	}
	if sub == nil {
		return nil, nil
	}

	usage, err := r.usage.GetUsage(ctx, tenantID)
	if err != nil {
		r.logger.Errorw("failed to load usage", "tenant_id", tenantID, "error", err)
		return nil, fmt.Errorf("failed to load usage: %w", err)
	}

	plan, known := r.catalog.Plan(sub.Tier())
	if !known {
		r.logger.Warnw("subscription tier not in catalog, using most restrictive plan",
			"tenant_id", tenantID, "tier", sub.Tier())
	}
	state := subscription.NewState(sub, plan, usage, now)

	if r.cache != nil {
		if err := r.cache.Set(ctx, state); err != nil {
			r.logger.Warnw("subscription cache write failed", "tenant_id", tenantID, "error", err)
		}
	}
	return state, nil
}

// Invalidate drops any cached state for tenantID.
func (r *StateResolver) Invalidate(ctx context.Context, tenantID string) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Invalidate(ctx, tenantID); err != nil {
		r.logger.Warnw("subscription cache invalidation failed", "tenant_id", tenantID, "error", err)
	}
}

// lapse applies trial expiry to a cached state.
func lapse(s *subscription.State, now time.Time) *subscription.State {
	if s.Status == subscription.StatusTrialing && s.TrialEndsAt != nil && !now.Before(*s.TrialEndsAt) {
		out := *s
		out.Status = subscription.StatusExpired
		return &out
	}
	return s
}
