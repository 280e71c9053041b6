package usecases

import (
	"context"
	"time"

	"tillpoint/internal/domain/shared/events"
	"tillpoint/internal/domain/team"
	"tillpoint/internal/domain/tenant"
	apperrors "tillpoint/internal/shared/errors"
	"tillpoint/internal/shared/logger"
)

type RemoveMemberCommand struct {
	TenantID string
	Actor    Assigner
	UserID   string
}

// RemoveMemberUseCase deletes the membership record outright.
type RemoveMemberUseCase struct {
	members     team.MemberRepository
	tenants     tenant.Repository
	invalidator StateInvalidator
	publisher   events.Publisher
	now         func() time.Time
	logger      logger.Interface
}

func NewRemoveMemberUseCase(
	members team.MemberRepository,
	tenants tenant.Repository,
	invalidator StateInvalidator,
	publisher events.Publisher,
	logger logger.Interface,
) *RemoveMemberUseCase {
	return &RemoveMemberUseCase{
		members:     members,
		tenants:     tenants,
		invalidator: invalidator,
		publisher:   publisher,
		now:         time.Now,
		logger:      logger,
	}
}

func (uc *RemoveMemberUseCase) Execute(ctx context.Context, cmd RemoveMemberCommand) error {
	m, err := loadTarget(ctx, uc.members, cmd.TenantID, cmd.UserID)
	if err != nil {
		return err
	}
	if err := guardTenantOwner(ctx, uc.tenants, cmd.TenantID, cmd.UserID); err != nil {
		return err
	}
	if err := checkAssign(cmd.Actor, m.Role()); err != nil {
		return toAppError(err)
	}

	if err := uc.members.Delete(ctx, cmd.TenantID, cmd.UserID); err != nil {
		uc.logger.Errorw("failed to remove member", "tenant_id", cmd.TenantID, "user_id", cmd.UserID, "error", err)
		return apperrors.NewPersistenceError("failed to remove member", err.Error())
	}

	uc.invalidator.Invalidate(ctx, cmd.TenantID)
	publishMembershipChange(ctx, uc.publisher, uc.logger, cmd.TenantID, cmd.UserID, uc.now())

	uc.logger.Infow("member removed",
		"tenant_id", cmd.TenantID,
		"user_id", cmd.UserID,
		"removed_by", cmd.Actor.UserID,
	)
	return nil
}
