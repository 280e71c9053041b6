package usecases

import (
	"context"
	"errors"
	"time"

	"tillpoint/internal/domain/location"
	"tillpoint/internal/domain/permission"
	"tillpoint/internal/domain/shared/events"
	"tillpoint/internal/domain/team"
	"tillpoint/internal/domain/tenant"
	apperrors "tillpoint/internal/shared/errors"
	"tillpoint/internal/shared/logger"
	"tillpoint/internal/shared/utils"
)

// UpdateMemberCommand changes a member; nil fields are left as is.
type UpdateMemberCommand struct {
	TenantID    string    `json:"-"`
	Actor       Assigner  `json:"-"`
	UserID      string    `json:"-"`
	Role        *string   `json:"role,omitempty" validate:"omitempty,oneof=owner manager staff viewer"`
	Status      *string   `json:"status,omitempty" validate:"omitempty,oneof=active inactive pending"`
	LocationIDs *[]string `json:"locationIds,omitempty"`
	Permissions *[]string `json:"permissions,omitempty"`
}

type UpdateMemberUseCase struct {
	members   team.MemberRepository
	tenants   tenant.Repository
	locations location.Repository
	publisher events.Publisher
	now       func() time.Time
	logger    logger.Interface
}

func NewUpdateMemberUseCase(
	members team.MemberRepository,
	tenants tenant.Repository,
	locations location.Repository,
	publisher events.Publisher,
	logger logger.Interface,
) *UpdateMemberUseCase {
	return &UpdateMemberUseCase{
		members:   members,
		tenants:   tenants,
		locations: locations,
		publisher: publisher,
		now:       time.Now,
		logger:    logger,
	}
}

func (uc *UpdateMemberUseCase) Execute(ctx context.Context, cmd UpdateMemberCommand) (*team.Member, error) {
	if err := utils.ValidateStruct(cmd); err != nil {
		return nil, err
	}

	m, err := loadTarget(ctx, uc.members, cmd.TenantID, cmd.UserID)
	if err != nil {
		return nil, err
	}
	// Changing someone requires being allowed to hand out their current role.
	if err := checkAssign(cmd.Actor, m.Role()); err != nil {
		return nil, toAppError(err)
	}

	demotes := (cmd.Role != nil && permission.Role(*cmd.Role) != permission.RoleOwner) ||
		(cmd.Status != nil && team.MemberStatus(*cmd.Status) != team.MemberStatusActive)
	if demotes {
		if err := guardTenantOwner(ctx, uc.tenants, cmd.TenantID, cmd.UserID); err != nil {
			return nil, err
		}
	}

	now := uc.now()
	if cmd.Role != nil {
		role := permission.Role(*cmd.Role)
		if err := checkAssign(cmd.Actor, role); err != nil {
			return nil, toAppError(err)
		}
		if err := m.ChangeRole(role, now); err != nil {
			return nil, apperrors.NewValidationError(err.Error())
		}
	}
	if cmd.Status != nil {
		if err := m.ChangeStatus(team.MemberStatus(*cmd.Status), now); err != nil {
			return nil, apperrors.NewValidationError(err.Error())
		}
	}
	if cmd.LocationIDs != nil {
		if err := checkLocations(ctx, uc.locations, cmd.TenantID, *cmd.LocationIDs); err != nil {
			return nil, err
		}
		m.AssignLocations(*cmd.LocationIDs, now)
	}
	if cmd.Permissions != nil {
		perms, err := parsePermissions(*cmd.Permissions)
		if err != nil {
			return nil, err
		}
		m.GrantPermissions(perms, now)
	}

	if err := uc.members.Update(ctx, m); err != nil {
		uc.logger.Errorw("failed to update member", "tenant_id", cmd.TenantID, "user_id", cmd.UserID, "error", err)
		return nil, apperrors.NewPersistenceError("failed to update member", err.Error())
	}
	publishMembershipChange(ctx, uc.publisher, uc.logger, cmd.TenantID, cmd.UserID, now)

	uc.logger.Infow("member updated",
		"tenant_id", cmd.TenantID,
		"user_id", cmd.UserID,
		"role", m.Role(),
		"status", m.Status(),
		"updated_by", cmd.Actor.UserID,
	)
	return m, nil
}

func loadTarget(ctx context.Context, members team.MemberRepository, tenantID, userID string) (*team.Member, error) {
	m, err := members.Get(ctx, tenantID, userID)
	if err != nil {
		return nil, apperrors.NewPersistenceError("failed to load member", err.Error())
	}
	if m == nil {
		return nil, toAppError(team.ErrMemberNotFound)
	}
	return m, nil
}

func guardTenantOwner(ctx context.Context, tenants tenant.Repository, tenantID, userID string) error {
	t, err := tenants.GetByID(ctx, tenantID)
	if errors.Is(err, tenant.ErrTenantNotFound) {
		return apperrors.NewNotFoundError(err.Error())
	}
	if err != nil {
		return apperrors.NewPersistenceError("failed to load tenant", err.Error())
	}
	if t.OwnerUserID() == userID {
		return toAppError(team.ErrCannotRemoveOwner)
	}
	return nil
}
