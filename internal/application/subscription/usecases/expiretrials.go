package usecases

import (
	"context"
	"fmt"
	"time"

	"tillpoint/internal/domain/shared/events"
	"tillpoint/internal/domain/subscription"
	"tillpoint/internal/shared/logger"
)

const expireTrialsBatchSize = 200

// ExpireTrialsUseCase moves lapsed trials to expired so the stored status
// matches what readers already compute.
type ExpireTrialsUseCase struct {
	subs        subscription.Repository
	invalidator StateInvalidator
	publisher   events.Publisher
	now         func() time.Time
	logger      logger.Interface
}

func NewExpireTrialsUseCase(
	subs subscription.Repository,
	invalidator StateInvalidator,
	publisher events.Publisher,
	logger logger.Interface,
) *ExpireTrialsUseCase {
	return &ExpireTrialsUseCase{
		subs:        subs,
		invalidator: invalidator,
		publisher:   publisher,
		now:         time.Now,
		logger:      logger,
	}
}

// Execute returns the number of subscriptions expired.
func (uc *ExpireTrialsUseCase) Execute(ctx context.Context) (int, error) {
	now := uc.now()
	due, err := uc.subs.ListTrialsEndingBefore(ctx, now, expireTrialsBatchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to list lapsed trials: %w", err)
	}

	expired := 0
	for _, sub := range due {
		if !sub.ExpireTrial(now) {
			continue
		}
		if err := uc.subs.Update(ctx, sub); err != nil {
			uc.logger.Errorw("failed to expire trial", "tenant_id", sub.TenantID(), "error", err)
			continue
		}
		uc.invalidator.Invalidate(ctx, sub.TenantID())
		publishSubscriptionChange(ctx, uc.publisher, uc.logger, sub.TenantID(), now)
		expired++
	}

	if expired > 0 {
		uc.logger.Infow("expired lapsed trials", "count", expired)
	}
	return expired, nil
}
