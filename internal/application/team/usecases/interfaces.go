// Package usecases manages tenant membership: invitations, direct adds,
// role and location changes, and removal.
package usecases

import (
	"context"
	"errors"
	"time"

	"tillpoint/internal/application/entitlement"
	"tillpoint/internal/domain/location"
	"tillpoint/internal/domain/permission"
	"tillpoint/internal/domain/shared/events"
	"tillpoint/internal/domain/subscription"
	"tillpoint/internal/domain/team"
	apperrors "tillpoint/internal/shared/errors"
	"tillpoint/internal/shared/logger"
)

type TransactionRunner interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type StateResolver interface {
	Resolve(ctx context.Context, tenantID string) (*subscription.State, error)
}

// StateInvalidator drops cached subscription state after the user count
// changes.
type StateInvalidator interface {
	Invalidate(ctx context.Context, tenantID string)
}

// Assigner is the member performing a change. Platform admins act as
// owners.
type Assigner struct {
	UserID string
	Role   permission.Role
}

func toAppError(err error) error {
	switch {
	case err == nil:
		return nil
	case apperrors.IsAppError(err):
		return err
	case errors.Is(err, team.ErrMemberNotFound),
		errors.Is(err, team.ErrInvitationNotFound):
		return apperrors.NewNotFoundError(err.Error())
	case errors.Is(err, team.ErrMemberExists):
		return apperrors.NewConflictError(err.Error())
	case errors.Is(err, team.ErrInvitationExpired),
		errors.Is(err, team.ErrInvitationNotPending),
		errors.Is(err, location.ErrInvalidLocationRef):
		return apperrors.NewValidationError(err.Error())
	case errors.Is(err, team.ErrCannotRemoveOwner),
		errors.Is(err, team.ErrRoleEscalation):
		return apperrors.NewForbiddenError(err.Error())
	}
	return err
}

// checkSeat enforces maxUsers counting members and pending invitations.
func checkSeat(ctx context.Context, states StateResolver, members team.MemberRepository, invitations team.InvitationRepository, tenantID string) error {
	state, err := states.Resolve(ctx, tenantID)
	if err != nil {
		return err
	}
	count, err := members.CountByTenant(ctx, tenantID)
	if err != nil {
		return apperrors.NewPersistenceError("failed to count members", err.Error())
	}
	pending, err := invitations.CountPending(ctx, tenantID)
	if err != nil {
		return apperrors.NewPersistenceError("failed to count invitations", err.Error())
	}
	if state == nil {
		return apperrors.NewForbiddenError("no subscription")
	}
	d := entitlement.CheckLimit(state.Limits, subscription.LimitMaxUsers, count+pending, permission.ModuleTeamManagement)
	return d.Err()
}

// checkLocations verifies every id names a location of the tenant.
func checkLocations(ctx context.Context, locations location.Repository, tenantID string, ids []string) error {
	for _, id := range ids {
		l, err := locations.Get(ctx, tenantID, id)
		if err != nil {
			return apperrors.NewPersistenceError("failed to load location", err.Error())
		}
		if l == nil {
			return apperrors.NewValidationError(location.ErrInvalidLocationRef.Error(), id)
		}
	}
	return nil
}

func checkAssign(actor Assigner, target permission.Role) error {
	if !actor.Role.CanAssign(target) {
		return team.ErrRoleEscalation
	}
	return nil
}

func publishMembershipChange(ctx context.Context, p events.Publisher, log logger.Interface, tenantID, userID string, now time.Time) {
	err := p.Publish(ctx, events.ChangeEvent{
		TenantID:   tenantID,
		UserID:     userID,
		Kind:       events.ChangeMembership,
		EntityID:   userID,
		OccurredAt: now,
	})
	if err != nil {
		log.Warnw("failed to publish membership change", "tenant_id", tenantID, "user_id", userID, "error", err)
	}
}

func parsePermissions(raw []string) (permission.List, error) {
	if raw == nil {
		return nil, nil
	}
	perms, err := permission.ParseList(raw)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}
	return perms, nil
}
