package usecases

import (
	"context"

	"tillpoint/internal/domain/team"
	apperrors "tillpoint/internal/shared/errors"
	"tillpoint/internal/shared/logger"
)

type RevokeInvitationCommand struct {
	TenantID     string
	InvitationID string
}

type RevokeInvitationUseCase struct {
	invitations team.InvitationRepository
	logger      logger.Interface
}

func NewRevokeInvitationUseCase(invitations team.InvitationRepository, logger logger.Interface) *RevokeInvitationUseCase {
	return &RevokeInvitationUseCase{invitations: invitations, logger: logger}
}

func (uc *RevokeInvitationUseCase) Execute(ctx context.Context, cmd RevokeInvitationCommand) error {
	inv, err := uc.invitations.GetByID(ctx, cmd.TenantID, cmd.InvitationID)
	if err != nil {
		return apperrors.NewPersistenceError("failed to load invitation", err.Error())
	}
	if inv == nil {
		return toAppError(team.ErrInvitationNotFound)
	}
	if err := inv.Revoke(); err != nil {
		return toAppError(err)
	}
	if err := uc.invitations.Update(ctx, inv); err != nil {
		return apperrors.NewPersistenceError("failed to revoke invitation", err.Error())
	}
	uc.logger.Infow("invitation revoked", "tenant_id", cmd.TenantID, "invitation_id", cmd.InvitationID)
	return nil
}
