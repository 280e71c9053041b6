// Package usecases onboards tenants and lists the tenants a user reaches.
package usecases

import (
	"context"
	"fmt"
	"time"

	"tillpoint/internal/domain/location"
	"tillpoint/internal/domain/permission"
	"tillpoint/internal/domain/shared/events"
	"tillpoint/internal/domain/subscription"
	"tillpoint/internal/domain/team"
	"tillpoint/internal/domain/tenant"
	apperrors "tillpoint/internal/shared/errors"
	"tillpoint/internal/shared/logger"
	"tillpoint/internal/shared/utils"
)

type TransactionRunner interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// BranchProjector writes the branch projection for a new location.
type BranchProjector interface {
	Upsert(ctx context.Context, l *location.Location, now time.Time) error
}

type CreateTenantCommand struct {
	Name        string `json:"name" validate:"required,max=100"`
	OwnerUserID string `json:"-"`
	OwnerEmail  string `json:"-"`
	OwnerName   string `json:"-"`
	Tier        string `json:"tier" validate:"omitempty,oneof=free starter professional enterprise pro"`
}

type CreateTenantResult struct {
	Tenant       *tenant.Tenant
	Owner        *team.Member
	Subscription *subscription.Subscription
	MainLocation *location.Location
	Warning      error
}

// CreateTenantUseCase creates a tenant with its owner membership, a trial
// subscription and the main location in one transaction.
type CreateTenantUseCase struct {
	tenants   tenant.Repository
	members   team.MemberRepository
	subs      subscription.Repository
	locations location.Repository
	branches  BranchProjector
	tx        TransactionRunner
	publisher events.Publisher
	trialDays int
	now       func() time.Time
	logger    logger.Interface
}

func NewCreateTenantUseCase(
	tenants tenant.Repository,
	members team.MemberRepository,
	subs subscription.Repository,
	locations location.Repository,
	branches BranchProjector,
	tx TransactionRunner,
	publisher events.Publisher,
	logger logger.Interface,
) *CreateTenantUseCase {
	return &CreateTenantUseCase{
		tenants:   tenants,
		members:   members,
		subs:      subs,
		locations: locations,
		branches:  branches,
		tx:        tx,
		publisher: publisher,
		trialDays: 14,
		now:       time.Now,
		logger:    logger,
	}
}

func (uc *CreateTenantUseCase) Execute(ctx context.Context, cmd CreateTenantCommand) (*CreateTenantResult, error) {
	if err := utils.ValidateStruct(cmd); err != nil {
		return nil, err
	}
	tier := subscription.TierProfessional
	if cmd.Tier != "" {
		t, err := subscription.ParseTier(cmd.Tier)
		if err != nil {
			return nil, apperrors.NewValidationError(err.Error())
		}
		tier = t
	}

	now := uc.now()
	res := &CreateTenantResult{}
	err := uc.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		t, err := tenant.NewTenant(utils.SanitizeText(cmd.Name), cmd.OwnerUserID, now)
		if err != nil {
			return apperrors.NewValidationError(err.Error())
		}
		if err := uc.tenants.Create(ctx, t); err != nil {
			return fmt.Errorf("failed to create tenant: %w", err)
		}

		owner, err := team.NewMember(t.ID(), cmd.OwnerUserID, cmd.OwnerEmail, utils.SanitizeText(cmd.OwnerName), permission.RoleOwner, nil, nil, now)
		if err != nil {
			return apperrors.NewValidationError(err.Error())
		}
		if err := uc.members.Create(ctx, owner); err != nil {
			return fmt.Errorf("failed to create owner membership: %w", err)
		}

		sub, err := subscription.NewTrial(t.ID(), tier, uc.trialDays, now)
		if err != nil {
			return err
		}
		if err := uc.subs.Create(ctx, sub); err != nil {
			return fmt.Errorf("failed to create subscription: %w", err)
		}

		main, err := location.NewDefaultMain(t.ID(), now)
		if err != nil {
			return err
		}
		if err := uc.locations.Create(ctx, main); err != nil {
			return fmt.Errorf("failed to create main location: %w", err)
		}

		res.Tenant, res.Owner, res.Subscription, res.MainLocation = t, owner, sub, main
		return nil
	})
	if err != nil {
		if apperrors.IsAppError(err) {
			return nil, err
		}
		uc.logger.Errorw("failed to create tenant", "owner_user_id", cmd.OwnerUserID, "error", err)
		return nil, apperrors.NewPersistenceError("failed to create tenant", err.Error())
	}

	res.Warning = uc.branches.Upsert(ctx, res.MainLocation, now)

	tenantID := res.Tenant.ID()
	for _, ev := range []events.ChangeEvent{
		{TenantID: tenantID, UserID: cmd.OwnerUserID, Kind: events.ChangeMembership, EntityID: cmd.OwnerUserID},
		{TenantID: tenantID, Kind: events.ChangeSubscription, EntityID: tenantID},
		{TenantID: tenantID, Kind: events.ChangeLocations, EntityID: res.MainLocation.ID()},
	} {
		ev.OccurredAt = now
		if err := uc.publisher.Publish(ctx, ev); err != nil {
			uc.logger.Warnw("failed to publish tenant change", "tenant_id", tenantID, "kind", ev.Kind, "error", err)
		}
	}

	uc.logger.Infow("tenant created",
		"tenant_id", tenantID,
		"owner_user_id", cmd.OwnerUserID,
		"tier", tier,
	)
	return res, nil
}
