package usecases

import (
	"context"
	"time"

	"tillpoint/internal/domain/shared/events"
	"tillpoint/internal/domain/subscription"
	apperrors "tillpoint/internal/shared/errors"
	"tillpoint/internal/shared/logger"
)

const DefaultTrialDays = 14

type StartTrialCommand struct {
	TenantID  string
	Tier      string
	TrialDays int
}

type StartTrialUseCase struct {
	subs      subscription.Repository
	publisher events.Publisher
	now       func() time.Time
	logger    logger.Interface
}

func NewStartTrialUseCase(subs subscription.Repository, publisher events.Publisher, logger logger.Interface) *StartTrialUseCase {
	return &StartTrialUseCase{subs: subs, publisher: publisher, now: time.Now, logger: logger}
}

func (uc *StartTrialUseCase) Execute(ctx context.Context, cmd StartTrialCommand) (*subscription.Subscription, error) {
	tier := subscription.TierProfessional
	if cmd.Tier != "" {
		t, err := subscription.ParseTier(cmd.Tier)
		if err != nil {
			return nil, apperrors.NewValidationError("invalid tier", err.Error())
		}
		tier = t
	}
	days := cmd.TrialDays
	if days <= 0 {
		days = DefaultTrialDays
	}

	existing, err := uc.subs.GetByTenant(ctx, cmd.TenantID)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to check subscription", err.Error())
	}
	if existing != nil {
		return nil, apperrors.NewConflictError("tenant already has a subscription")
	}

	now := uc.now()
	sub, err := subscription.NewTrial(cmd.TenantID, tier, days, now)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}
	if err := uc.subs.Create(ctx, sub); err != nil {
		uc.logger.Errorw("failed to create trial subscription", "error", err, "tenant_id", cmd.TenantID)
		return nil, apperrors.NewPersistenceError("failed to start trial", err.Error())
	}

	publishSubscriptionChange(ctx, uc.publisher, uc.logger, cmd.TenantID, now)
	uc.logger.Infow("trial started", "tenant_id", cmd.TenantID, "tier", tier, "trial_ends_at", sub.TrialEndsAt())
	return sub, nil
}
