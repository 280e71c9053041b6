package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tillpoint/internal/domain/location"
	"tillpoint/internal/infrastructure/persistence/mappers"
	"tillpoint/internal/infrastructure/persistence/models"
	"tillpoint/internal/shared/db"
	"tillpoint/internal/shared/logger"
)

type BranchRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.BranchMapper
	logger logger.Interface
}

func NewBranchRepository(db *gorm.DB, logger logger.Interface) location.BranchRepository {
	return &BranchRepositoryImpl{
		db:     db,
		mapper: mappers.NewBranchMapper(),
		logger: logger,
	}
}

// Upsert inserts or refreshes the projection by branch id. Stats columns
// are never part of the update set, and a soft-deleted row is revived.
func (r *BranchRepositoryImpl) Upsert(ctx context.Context, b *location.Branch) error {
	model := r.mapper.ToModel(b)
	err := db.GetTxFromContext(ctx, r.db).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "branch_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"location_id": model.LocationID,
			"tenant_id":   model.TenantID,
			"name":        model.Name,
			"address":     model.Address,
			"phone":       model.Phone,
			"manager":     model.Manager,
			"is_main":     model.IsMain,
			"updated_at":  model.UpdatedAt,
			"deleted_at":  nil,
		}),
	}).Create(model).Error
	if err != nil {
		r.logger.Errorw("failed to upsert branch", "branch_id", b.ID, "error", err)
		return fmt.Errorf("failed to upsert branch: %w", err)
	}
	return nil
}

// SoftDelete keeps the row, with its stats, for historical reads.
func (r *BranchRepositoryImpl) SoftDelete(ctx context.Context, tenantID, branchID string, at time.Time) error {
	err := db.GetTxFromContext(ctx, r.db).Model(&models.BranchModel{}).
		Where("tenant_id = ? AND branch_id = ?", tenantID, branchID).
		Updates(map[string]interface{}{
			"deleted_at": at,
			"updated_at": at,
		}).Error
	if err != nil {
		r.logger.Errorw("failed to soft delete branch", "branch_id", branchID, "error", err)
		return fmt.Errorf("failed to soft delete branch: %w", err)
	}
	return nil
}

func (r *BranchRepositoryImpl) Get(ctx context.Context, tenantID, branchID string) (*location.Branch, error) {
	var model models.BranchModel
	err := db.GetTxFromContext(ctx, r.db).Unscoped().
		Where("tenant_id = ? AND branch_id = ?", tenantID, branchID).
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		r.logger.Errorw("failed to get branch", "branch_id", branchID, "error", err)
		return nil, fmt.Errorf("failed to get branch: %w", err)
	}
	return r.mapper.ToEntity(&model), nil
}

func (r *BranchRepositoryImpl) ListByTenant(ctx context.Context, tenantID string, includeDeleted bool) ([]*location.Branch, error) {
	query := db.GetTxFromContext(ctx, r.db)
	if includeDeleted {
		query = query.Unscoped()
	}
	var rows []*models.BranchModel
	err := query.Scopes(db.ForTenant(tenantID)).
		Order("is_main DESC, name ASC").
		Find(&rows).Error
	if err != nil {
		r.logger.Errorw("failed to list branches", "tenant_id", tenantID, "error", err)
		return nil, fmt.Errorf("failed to list branches: %w", err)
	}
	return r.mapper.ToEntities(rows), nil
}

// UpdateStats is the write path for modules that roll sales and stock up
// onto the projection.
func (r *BranchRepositoryImpl) UpdateStats(ctx context.Context, tenantID, branchID string, stats location.BranchStats) error {
	err := db.GetTxFromContext(ctx, r.db).Model(&models.BranchModel{}).
		Where("tenant_id = ? AND branch_id = ?", tenantID, branchID).
		Updates(map[string]interface{}{
			"sales_cents":   stats.SalesCents,
			"order_count":   stats.OrderCount,
			"product_count": stats.ProductCount,
		}).Error
	if err != nil {
		r.logger.Errorw("failed to update branch stats", "branch_id", branchID, "error", err)
		return fmt.Errorf("failed to update branch stats: %w", err)
	}
	return nil
}
