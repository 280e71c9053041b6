package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tillpoint/internal/domain/shared/events"
	"tillpoint/internal/domain/subscription"
	apperrors "tillpoint/internal/shared/errors"
	"tillpoint/internal/shared/logger"
)

type ChangeDirection string

const (
	ChangeUpgrade   ChangeDirection = "upgrade"
	ChangeDowngrade ChangeDirection = "downgrade"
)

type ChangePlanCommand struct {
	TenantID string
	Tier     string
}

type ChangePlanResult struct {
	PreviousTier subscription.Tier
	Tier         subscription.Tier
	Direction    ChangeDirection
}

type ChangePlanUseCase struct {
	subs        subscription.Repository
	invalidator StateInvalidator
	publisher   events.Publisher
	now         func() time.Time
	logger      logger.Interface
}

func NewChangePlanUseCase(
	subs subscription.Repository,
	invalidator StateInvalidator,
	publisher events.Publisher,
	logger logger.Interface,
) *ChangePlanUseCase {
	return &ChangePlanUseCase{
		subs:        subs,
		invalidator: invalidator,
		publisher:   publisher,
		now:         time.Now,
		logger:      logger,
	}
}

func (uc *ChangePlanUseCase) Execute(ctx context.Context, cmd ChangePlanCommand) (*ChangePlanResult, error) {
	tier, err := subscription.ParseTier(cmd.Tier)
	if err != nil {
		return nil, apperrors.NewValidationError("invalid tier", err.Error())
	}

	sub, err := uc.subs.GetByTenant(ctx, cmd.TenantID)
	if err != nil {
		uc.logger.Errorw("failed to get subscription", "error", err, "tenant_id", cmd.TenantID)
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	if sub == nil {
		return nil, apperrors.NewNotFoundError("subscription not found")
	}

	previous := sub.Tier()
	now := uc.now()
	if err := sub.ChangeTier(tier, now); err != nil {
		if errors.Is(err, subscription.ErrSameTier) {
			return nil, apperrors.NewConflictError(err.Error())
		}
		return nil, apperrors.NewValidationError(err.Error())
	}

	if err := uc.subs.Update(ctx, sub); err != nil {
		uc.logger.Errorw("failed to update subscription", "error", err, "tenant_id", cmd.TenantID)
		return nil, apperrors.NewPersistenceError("failed to change plan", err.Error())
	}

	uc.invalidator.Invalidate(ctx, cmd.TenantID)
	publishSubscriptionChange(ctx, uc.publisher, uc.logger, cmd.TenantID, now)

	result := &ChangePlanResult{PreviousTier: previous, Tier: tier, Direction: direction(previous, tier)}
	uc.logger.Infow("subscription plan changed",
		"tenant_id", cmd.TenantID,
		"from", previous,
		"to", tier,
		"direction", result.Direction,
	)
	return result, nil
}

func direction(from, to subscription.Tier) ChangeDirection {
	rank := func(t subscription.Tier) int {
		for i, v := range subscription.AllTiers {
			if v == t {
				return i
			}
		}
		return -1
	}
	if rank(to) > rank(from) {
		return ChangeUpgrade
	}
	return ChangeDowngrade
}

func publishSubscriptionChange(ctx context.Context, p events.Publisher, log logger.Interface, tenantID string, now time.Time) {
	err := p.Publish(ctx, events.ChangeEvent{
		TenantID:   tenantID,
		Kind:       events.ChangeSubscription,
		EntityID:   tenantID,
		OccurredAt: now,
	})
	if err != nil {
		log.Warnw("failed to publish subscription change", "tenant_id", tenantID, "error", err)
	}
}
