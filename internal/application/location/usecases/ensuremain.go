package usecases

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"tillpoint/internal/domain/location"
	"tillpoint/internal/domain/shared/events"
	apperrors "tillpoint/internal/shared/errors"
	"tillpoint/internal/shared/logger"
)

// EnsureMainUseCase converges a tenant to exactly one main location:
// it synthesizes a default main when there is none and demotes extras.
// Concurrent calls for one tenant share a single run.
type EnsureMainUseCase struct {
	repo      location.Repository
	tx        TransactionRunner
	cache     StateInvalidator
	sync      *BranchSync
	publisher events.Publisher
	group     singleflight.Group
	now       func() time.Time
	logger    logger.Interface
}

func NewEnsureMainUseCase(
	repo location.Repository,
	tx TransactionRunner,
	cache StateInvalidator,
	sync *BranchSync,
	publisher events.Publisher,
	logger logger.Interface,
) *EnsureMainUseCase {
	return &EnsureMainUseCase{
		repo:      repo,
		tx:        tx,
		cache:     cache,
		sync:      sync,
		publisher: publisher,
		now:       time.Now,
		logger:    logger,
	}
}

func (uc *EnsureMainUseCase) Execute(ctx context.Context, tenantID string) (*location.Location, error) {
	v, err, _ := uc.group.Do(tenantID, func() (any, error) {
		return uc.ensure(ctx, tenantID)
	})
	if err != nil {
		return nil, err
	}
	return v.(*location.Location), nil
}

func (uc *EnsureMainUseCase) ensure(ctx context.Context, tenantID string) (*location.Location, error) {
	now := uc.now()
	var (
		main    *location.Location
		changed []*location.Location
	)

	err := uc.tx.RunInTransaction(ctx, func(ctx context.Context) error {
		locs, err := uc.repo.ListByTenant(ctx, tenantID)
		if err != nil {
			return fmt.Errorf("failed to list locations: %w", err)
		}

		var demoted []*location.Location
		main, demoted = location.ResolveMain(locs, now)
		for _, l := range demoted {
			if err := uc.repo.Update(ctx, l); err != nil {
				return fmt.Errorf("failed to demote location %s: %w", l.ID(), err)
			}
		}
		changed = demoted

		if main == nil {
			main, err = location.NewDefaultMain(tenantID, now)
			if err != nil {
				return err
			}
			if err := uc.repo.Create(ctx, main); err != nil {
				return fmt.Errorf("failed to create main location: %w", err)
			}
			changed = append(changed, main)
		}
		return nil
	})
	if err != nil {
		uc.logger.Errorw("failed to ensure main location", "tenant_id", tenantID, "error", err)
		return nil, apperrors.NewPersistenceError("failed to ensure main location", err.Error())
	}

	if len(changed) == 0 {
		return main, nil
	}
	uc.cache.Invalidate(ctx, tenantID)

	for _, l := range changed {
		_ = uc.sync.Upsert(ctx, l, now)
	}
	publishLocationChange(ctx, uc.publisher, uc.logger, tenantID, main.ID(), now)
	uc.logger.Infow("main location repaired",
		"tenant_id", tenantID,
		"main_location_id", main.ID(),
		"changed", len(changed),
	)
	return main, nil
}

func publishLocationChange(ctx context.Context, p events.Publisher, log logger.Interface, tenantID, locationID string, now time.Time) {
	err := p.Publish(ctx, events.ChangeEvent{
		TenantID:   tenantID,
		Kind:       events.ChangeLocations,
		EntityID:   locationID,
		OccurredAt: now,
	})
	if err != nil {
		log.Warnw("failed to publish location change", "tenant_id", tenantID, "location_id", locationID, "error", err)
	}
}
