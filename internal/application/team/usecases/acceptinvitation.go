package usecases

import (
	"context"
	"errors"
	"time"

	"tillpoint/internal/domain/shared/events"
	"tillpoint/internal/domain/team"
	apperrors "tillpoint/internal/shared/errors"
	"tillpoint/internal/shared/logger"
	"tillpoint/internal/shared/utils"
)

type AcceptInvitationCommand struct {
	Token       string
	UserID      string
	DisplayName string
}

type AcceptInvitationUseCase struct {
	members     team.MemberRepository
	invitations team.InvitationRepository
	tx          TransactionRunner
	states      StateInvalidator
	publisher   events.Publisher
	now         func() time.Time
	logger      logger.Interface
}

func NewAcceptInvitationUseCase(
	members team.MemberRepository,
	invitations team.InvitationRepository,
	tx TransactionRunner,
	states StateInvalidator,
	publisher events.Publisher,
	logger logger.Interface,
) *AcceptInvitationUseCase {
	return &AcceptInvitationUseCase{
		members:     members,
		invitations: invitations,
		tx:          tx,
		states:      states,
		publisher:   publisher,
		now:         time.Now,
		logger:      logger,
	}
}

func (uc *AcceptInvitationUseCase) Execute(ctx context.Context, cmd AcceptInvitationCommand) (*team.Member, error) {
	inv, err := uc.invitations.GetByToken(ctx, cmd.Token)
	if err != nil {
		return nil, apperrors.NewPersistenceError("failed to load invitation", err.Error())
	}
	if inv == nil {
		return nil, toAppError(team.ErrInvitationNotFound)
	}

	existing, err := uc.members.Get(ctx, inv.TenantID(), cmd.UserID)
	if err != nil {
		return nil, apperrors.NewPersistenceError("failed to load member", err.Error())
	}
	if existing != nil {
		return nil, toAppError(team.ErrMemberExists)
	}

	now := uc.now()
	member, err := inv.Accept(cmd.UserID, utils.SanitizeText(cmd.DisplayName), now)
	if errors.Is(err, team.ErrInvitationExpired) {
		if uerr := uc.invitations.Update(ctx, inv); uerr != nil {
			uc.logger.Warnw("failed to mark invitation expired", "invitation_id", inv.ID(), "error", uerr)
		}
		return nil, toAppError(err)
	}
	if err != nil {
		return nil, toAppError(err)
	}

	err = uc.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := uc.members.Create(ctx, member); err != nil {
			return err
		}
		return uc.invitations.Update(ctx, inv)
	})
	if err != nil {
		if apperrors.IsDuplicateError(err) {
			return nil, toAppError(team.ErrMemberExists)
		}
		uc.logger.Errorw("failed to accept invitation", "invitation_id", inv.ID(), "error", err)
		return nil, apperrors.NewPersistenceError("failed to accept invitation", err.Error())
	}

	uc.states.Invalidate(ctx, inv.TenantID())
	publishMembershipChange(ctx, uc.publisher, uc.logger, inv.TenantID(), cmd.UserID, now)

	uc.logger.Infow("invitation accepted",
		"tenant_id", inv.TenantID(),
		"invitation_id", inv.ID(),
		"user_id", cmd.UserID,
		"role", member.Role(),
	)
	return member, nil
}
