package usecases

import (
	"context"
	"fmt"
	"time"

	"tillpoint/internal/domain/location"
	"tillpoint/internal/domain/tenant"
	"tillpoint/internal/shared/logger"
)

// ReconcileBranchesUseCase repairs projection drift left by failed syncs:
// missing or stale branches are rewritten and branches of deleted
// locations are soft-deleted.
type ReconcileBranchesUseCase struct {
	tenants   tenant.Repository
	locations location.Repository
	branches  location.BranchRepository
	sync      *BranchSync
	now       func() time.Time
	logger    logger.Interface
}

func NewReconcileBranchesUseCase(
	tenants tenant.Repository,
	locations location.Repository,
	branches location.BranchRepository,
	sync *BranchSync,
	logger logger.Interface,
) *ReconcileBranchesUseCase {
	return &ReconcileBranchesUseCase{
		tenants:   tenants,
		locations: locations,
		branches:  branches,
		sync:      sync,
		now:       time.Now,
		logger:    logger,
	}
}

// Execute returns the number of branches it repaired.
func (uc *ReconcileBranchesUseCase) Execute(ctx context.Context) (int, error) {
	tenants, err := uc.tenants.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list tenants: %w", err)
	}

	repaired := 0
	for _, t := range tenants {
		if err := ctx.Err(); err != nil {
			return repaired, err
		}
		n, err := uc.reconcileTenant(ctx, t.ID())
		repaired += n
		if err != nil {
			uc.logger.Warnw("branch reconciliation failed", "tenant_id", t.ID(), "error", err)
		}
	}

	if repaired > 0 {
		uc.logger.Infow("branch projections reconciled", "repaired", repaired)
	}
	return repaired, nil
}

func (uc *ReconcileBranchesUseCase) reconcileTenant(ctx context.Context, tenantID string) (int, error) {
	locs, err := uc.locations.ListByTenant(ctx, tenantID)
	if err != nil {
		return 0, err
	}
	branches, err := uc.branches.ListByTenant(ctx, tenantID, true)
	if err != nil {
		return 0, err
	}

	byID := make(map[string]*location.Branch, len(branches))
	for _, b := range branches {
		byID[b.ID] = b
	}

	now := uc.now()
	repaired := 0
	live := make(map[string]struct{}, len(locs))
	for _, l := range locs {
		branchID, err := location.BranchIDFor(l.ID())
		if err != nil {
			continue
		}
		live[branchID] = struct{}{}
		if b, ok := byID[branchID]; ok && !b.Deleted && branchMatches(b, l) {
			continue
		}
		if uc.sync.Upsert(ctx, l, now) == nil {
			repaired++
		}
	}

	for _, b := range branches {
		if _, ok := live[b.ID]; ok || b.Deleted {
			continue
		}
		if uc.sync.SoftDelete(ctx, tenantID, b.LocationID, now) == nil {
			repaired++
		}
	}
	return repaired, nil
}

func branchMatches(b *location.Branch, l *location.Location) bool {
	c := l.Contact()
	return b.Name == l.Name() &&
		b.Address == l.Address().String() &&
		b.Phone == c.Phone &&
		b.Manager == c.Manager &&
		b.IsMain == l.IsMain()
}
