package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"tillpoint/internal/domain/subscription"
	"tillpoint/internal/infrastructure/persistence/models"
	"tillpoint/internal/shared/db"
	"tillpoint/internal/shared/logger"
)

// UsageRepositoryImpl reads the stored counters and counts users and
// locations live, so membership and location writes need no counter
// bookkeeping.
type UsageRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewUsageRepository(db *gorm.DB, logger logger.Interface) subscription.UsageReader {
	return &UsageRepositoryImpl{db: db, logger: logger}
}

func (r *UsageRepositoryImpl) GetUsage(ctx context.Context, tenantID string) (subscription.Usage, error) {
	tx := db.GetTxFromContext(ctx, r.db)
	var usage subscription.Usage

	var counters models.TenantUsageModel
	err := tx.Where("tenant_id = ?", tenantID).First(&counters).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
	case err != nil:
		r.logger.Errorw("failed to read usage counters", "tenant_id", tenantID, "error", err)
		return usage, fmt.Errorf("failed to read usage counters: %w", err)
	default:
		usage.Products = counters.Products
		usage.Suppliers = counters.Suppliers
		usage.OrdersThisMonth = counters.OrdersThisMonth
	}

	if err := tx.Model(&models.TeamMemberModel{}).Scopes(db.ForTenant(tenantID)).Count(&usage.Users).Error; err != nil {
		r.logger.Errorw("failed to count users", "tenant_id", tenantID, "error", err)
		return usage, fmt.Errorf("failed to count users: %w", err)
	}
	if err := tx.Model(&models.LocationModel{}).Scopes(db.ForTenant(tenantID)).Count(&usage.Locations).Error; err != nil {
		r.logger.Errorw("failed to count locations", "tenant_id", tenantID, "error", err)
		return usage, fmt.Errorf("failed to count locations: %w", err)
	}
	return usage, nil
}
