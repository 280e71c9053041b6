package usecases

import (
	"context"
	"fmt"

	"tillpoint/internal/domain/location"
	"tillpoint/internal/shared/logger"
)

type ListLocationsQuery struct {
	TenantID        string
	IncludeInactive bool
}

type ListLocationsUseCase struct {
	repo       location.Repository
	ensureMain *EnsureMainUseCase
	logger     logger.Interface
}

func NewListLocationsUseCase(repo location.Repository, ensureMain *EnsureMainUseCase, logger logger.Interface) *ListLocationsUseCase {
	return &ListLocationsUseCase{repo: repo, ensureMain: ensureMain, logger: logger}
}

// Execute lists the tenant's locations, repairing the main location first.
func (uc *ListLocationsUseCase) Execute(ctx context.Context, q ListLocationsQuery) ([]*location.Location, error) {
	if _, err := uc.ensureMain.Execute(ctx, q.TenantID); err != nil {
		return nil, err
	}

	locs, err := uc.repo.ListByTenant(ctx, q.TenantID)
	if err != nil {
		uc.logger.Errorw("failed to list locations", "tenant_id", q.TenantID, "error", err)
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}
	if q.IncludeInactive {
		return locs, nil
	}

	active := make([]*location.Location, 0, len(locs))
	for _, l := range locs {
		if l.IsActive() {
			active = append(active, l)
		}
	}
	return active, nil
}
