package usecases

import (
	"context"
	"time"

	"tillpoint/internal/domain/location"
	"tillpoint/internal/domain/permission"
	"tillpoint/internal/domain/shared/events"
	"tillpoint/internal/domain/team"
	apperrors "tillpoint/internal/shared/errors"
	"tillpoint/internal/shared/logger"
	"tillpoint/internal/shared/utils"
)

// AddMemberCommand adds an existing identity directly, without an
// invitation round trip.
type AddMemberCommand struct {
	TenantID    string   `json:"-"`
	Actor       Assigner `json:"-"`
	UserID      string   `json:"userId" validate:"required"`
	Email       string   `json:"email" validate:"omitempty,email"`
	DisplayName string   `json:"displayName" validate:"max=100"`
	Role        string   `json:"role" validate:"required,oneof=owner manager staff viewer"`
	LocationIDs []string `json:"locationIds"`
	Permissions []string `json:"permissions"`
}

type AddMemberUseCase struct {
	members     team.MemberRepository
	invitations team.InvitationRepository
	locations   location.Repository
	states      StateResolver
	invalidator StateInvalidator
	publisher   events.Publisher
	now         func() time.Time
	logger      logger.Interface
}

func NewAddMemberUseCase(
	members team.MemberRepository,
	invitations team.InvitationRepository,
	locations location.Repository,
	states StateResolver,
	invalidator StateInvalidator,
	publisher events.Publisher,
	logger logger.Interface,
) *AddMemberUseCase {
	return &AddMemberUseCase{
		members:     members,
		invitations: invitations,
		locations:   locations,
		states:      states,
		invalidator: invalidator,
		publisher:   publisher,
		now:         time.Now,
		logger:      logger,
	}
}

func (uc *AddMemberUseCase) Execute(ctx context.Context, cmd AddMemberCommand) (*team.Member, error) {
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

	existing, err := uc.members.Get(ctx, cmd.TenantID, cmd.UserID)
	if err != nil {
		return nil, apperrors.NewPersistenceError("failed to load member", err.Error())
	}
	if existing != nil {
		return nil, toAppError(team.ErrMemberExists)
	}
	if err := checkLocations(ctx, uc.locations, cmd.TenantID, cmd.LocationIDs); err != nil {
		return nil, err
	}
	if err := checkSeat(ctx, uc.states, uc.members, uc.invitations, cmd.TenantID); err != nil {
		return nil, err
	}

	now := uc.now()
	m, err := team.NewMember(cmd.TenantID, cmd.UserID, cmd.Email, utils.SanitizeText(cmd.DisplayName), role, cmd.LocationIDs, perms, now)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}
	if err := uc.members.Create(ctx, m); err != nil {
		if apperrors.IsDuplicateError(err) {
			return nil, toAppError(team.ErrMemberExists)
		}
		uc.logger.Errorw("failed to create member", "tenant_id", cmd.TenantID, "user_id", cmd.UserID, "error", err)
		return nil, apperrors.NewPersistenceError("failed to create member", err.Error())
	}

	uc.invalidator.Invalidate(ctx, cmd.TenantID)
	publishMembershipChange(ctx, uc.publisher, uc.logger, cmd.TenantID, cmd.UserID, now)

	uc.logger.Infow("member added",
		"tenant_id", cmd.TenantID,
		"user_id", cmd.UserID,
		"role", role,
		"added_by", cmd.Actor.UserID,
	)
	return m, nil
}
