package usecases

import (
	"context"
	"time"

	"tillpoint/internal/domain/location"
	"tillpoint/internal/domain/permission"
	"tillpoint/internal/domain/team"
	apperrors "tillpoint/internal/shared/errors"
	"tillpoint/internal/shared/logger"
	"tillpoint/internal/shared/utils"
)

const DefaultInvitationTTL = 7 * 24 * time.Hour

type InviteMemberCommand struct {
	TenantID    string   `json:"-"`
	Actor       Assigner `json:"-"`
	Email       string   `json:"email" validate:"required,email"`
	Role        string   `json:"role" validate:"required,oneof=owner manager staff viewer"`
	LocationIDs []string `json:"locationIds"`
	Permissions []string `json:"permissions"`
}

type InviteMemberUseCase struct {
	members     team.MemberRepository
	invitations team.InvitationRepository
	locations   location.Repository
	states      StateResolver
	ttl         time.Duration
	now         func() time.Time
	logger      logger.Interface
}

func NewInviteMemberUseCase(
	members team.MemberRepository,
	invitations team.InvitationRepository,
	locations location.Repository,
	states StateResolver,
	logger logger.Interface,
) *InviteMemberUseCase {
	return &InviteMemberUseCase{
		members:     members,
		invitations: invitations,
		locations:   locations,
		states:      states,
		ttl:         DefaultInvitationTTL,
		now:         time.Now,
		logger:      logger,
	}
}

func (uc *InviteMemberUseCase) Execute(ctx context.Context, cmd InviteMemberCommand) (*team.Invitation, error) {
	if err := utils.ValidateStruct(cmd); err != nil {
		return nil, err
	}
	role := permission.Role(cmd.Role)
	if err := checkAssign(cmd.Actor, role); err != nil {
		return nil, toAppError(err)
	}
	perms, err := parsePermissions(cmd.Permissions)
	if err != nil {
		return nil, err
	}
	if err := checkLocations(ctx, uc.locations, cmd.TenantID, cmd.LocationIDs); err != nil {
		return nil, err
	}
	if err := checkSeat(ctx, uc.states, uc.members, uc.invitations, cmd.TenantID); err != nil {
		return nil, err
	}

	inv, err := team.NewInvitation(cmd.TenantID, cmd.Email, role, cmd.LocationIDs, perms, cmd.Actor.UserID, uc.ttl, uc.now())
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}
	if err := uc.invitations.Create(ctx, inv); err != nil {
		uc.logger.Errorw("failed to create invitation", "tenant_id", cmd.TenantID, "error", err)
		return nil, apperrors.NewPersistenceError("failed to create invitation", err.Error())
	}

	uc.logger.Infow("member invited",
		"tenant_id", cmd.TenantID,
		"invitation_id", inv.ID(),
		"role", role,
		"invited_by", cmd.Actor.UserID,
	)
	return inv, nil
}
