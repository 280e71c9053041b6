package usecases

import (
	"context"

	"tillpoint/internal/domain/team"
	apperrors "tillpoint/internal/shared/errors"
	"tillpoint/internal/shared/logger"
)

// TeamView is a tenant's roster plus the invitations still open.
type TeamView struct {
	Members     []*team.Member
	Invitations []*team.Invitation
}

type ListMembersUseCase struct {
	members     team.MemberRepository
	invitations team.InvitationRepository
	logger      logger.Interface
}

func NewListMembersUseCase(members team.MemberRepository, invitations team.InvitationRepository, logger logger.Interface) *ListMembersUseCase {
	return &ListMembersUseCase{members: members, invitations: invitations, logger: logger}
}

func (uc *ListMembersUseCase) Execute(ctx context.Context, tenantID string) (*TeamView, error) {
	members, err := uc.members.ListByTenant(ctx, tenantID)
	if err != nil {
		uc.logger.Errorw("failed to list members", "tenant_id", tenantID, "error", err)
		return nil, apperrors.NewPersistenceError("failed to list members", err.Error())
	}
	invitations, err := uc.invitations.ListPending(ctx, tenantID)
	if err != nil {
		uc.logger.Errorw("failed to list invitations", "tenant_id", tenantID, "error", err)
		return nil, apperrors.NewPersistenceError("failed to list invitations", err.Error())
	}
	return &TeamView{Members: members, Invitations: invitations}, nil
}

// GetMemberUseCase loads one membership. A missing membership is returned
// as (nil, nil); authorization treats it as NoMembership.
type GetMemberUseCase struct {
	members team.MemberRepository
}

func NewGetMemberUseCase(members team.MemberRepository) *GetMemberUseCase {
	return &GetMemberUseCase{members: members}
}

func (uc *GetMemberUseCase) Execute(ctx context.Context, tenantID, userID string) (*team.Member, error) {
	m, err := uc.members.Get(ctx, tenantID, userID)
	if err != nil {
		return nil, apperrors.NewPersistenceError("failed to load member", err.Error())
	}
	return m, nil
}
