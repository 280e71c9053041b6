package usecases

import (
	"context"

	"tillpoint/internal/domain/location"
	apperrors "tillpoint/internal/shared/errors"
	"tillpoint/internal/shared/logger"
)

type ListBranchesQuery struct {
	TenantID       string
	IncludeDeleted bool
}

type ListBranchesUseCase struct {
	branches location.BranchRepository
	logger   logger.Interface
}

func NewListBranchesUseCase(branches location.BranchRepository, logger logger.Interface) *ListBranchesUseCase {
	return &ListBranchesUseCase{branches: branches, logger: logger}
}

func (uc *ListBranchesUseCase) Execute(ctx context.Context, q ListBranchesQuery) ([]*location.Branch, error) {
	branches, err := uc.branches.ListByTenant(ctx, q.TenantID, q.IncludeDeleted)
	if err != nil {
		uc.logger.Errorw("failed to list branches", "tenant_id", q.TenantID, "error", err)
		return nil, apperrors.NewPersistenceError("failed to list branches", err.Error())
	}
	return branches, nil
}
