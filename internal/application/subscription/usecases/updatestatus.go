package usecases

import (
	"context"
	"fmt"
	"time"

	"tillpoint/internal/domain/shared/events"
	"tillpoint/internal/domain/subscription"
	apperrors "tillpoint/internal/shared/errors"
	"tillpoint/internal/shared/logger"
)

// UpdateStatusCommand is sent by the billing collaborator when payment
// state changes.
type UpdateStatusCommand struct {
	TenantID string
	Status   string
}

type UpdateStatusUseCase struct {
	subs        subscription.Repository
	invalidator StateInvalidator
	publisher   events.Publisher
	now         func() time.Time
	logger      logger.Interface
}

func NewUpdateStatusUseCase(
	subs subscription.Repository,
	invalidator StateInvalidator,
	publisher events.Publisher,
	logger logger.Interface,
) *UpdateStatusUseCase {
	return &UpdateStatusUseCase{
		subs:        subs,
		invalidator: invalidator,
		publisher:   publisher,
		now:         time.Now,
		logger:      logger,
	}
}

func (uc *UpdateStatusUseCase) Execute(ctx context.Context, cmd UpdateStatusCommand) error {
	status, err := subscription.ParseStatus(cmd.Status)
	if err != nil {
		return apperrors.NewValidationError("invalid status", err.Error())
	}

	sub, err := uc.subs.GetByTenant(ctx, cmd.TenantID)
	if err != nil {
		uc.logger.Errorw("failed to get subscription", "error", err, "tenant_id", cmd.TenantID)
		return fmt.Errorf("failed to get subscription: %w", err)
	}
	if sub == nil {
		return apperrors.NewNotFoundError("subscription not found")
	}

	from := sub.Status()
	now := uc.now()
	if err := sub.TransitionTo(status, now); err != nil {
		return apperrors.NewConflictError("status change not allowed", err.Error())
	}
	if err := uc.subs.Update(ctx, sub); err != nil {
		uc.logger.Errorw("failed to update subscription status", "error", err, "tenant_id", cmd.TenantID)
		return apperrors.NewPersistenceError("failed to update subscription status", err.Error())
	}

	uc.invalidator.Invalidate(ctx, cmd.TenantID)
	publishSubscriptionChange(ctx, uc.publisher, uc.logger, cmd.TenantID, now)
	uc.logger.Infow("subscription status changed", "tenant_id", cmd.TenantID, "from", from, "to", status)
	return nil
}
