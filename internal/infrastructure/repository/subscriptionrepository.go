package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"tillpoint/internal/domain/subscription"
	"tillpoint/internal/infrastructure/persistence/mappers"
	"tillpoint/internal/infrastructure/persistence/models"
	"tillpoint/internal/shared/db"
	"tillpoint/internal/shared/logger"
)

type SubscriptionRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.SubscriptionMapper
	logger logger.Interface
}

func NewSubscriptionRepository(db *gorm.DB, logger logger.Interface) subscription.Repository {
	return &SubscriptionRepositoryImpl{
		db:     db,
		mapper: mappers.NewSubscriptionMapper(),
		logger: logger,
	}
}

func (r *SubscriptionRepositoryImpl) Create(ctx context.Context, sub *subscription.Subscription) error {
	model := r.mapper.ToModel(sub)
	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		r.logger.Errorw("failed to create subscription in database", "tenant_id", sub.TenantID(), "error", err)
		return fmt.Errorf("failed to create subscription: %w", err)
	}
	sub.SetID(model.ID)

	r.logger.Infow("subscription created successfully", "id", model.ID, "tenant_id", model.TenantID, "tier", model.Tier)
	return nil
}

func (r *SubscriptionRepositoryImpl) GetByTenant(ctx context.Context, tenantID string) (*subscription.Subscription, error) {
	var model models.SubscriptionModel
	err := db.GetTxFromContext(ctx, r.db).Where("tenant_id = ?", tenantID).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		r.logger.Errorw("failed to get subscription by tenant", "tenant_id", tenantID, "error", err)
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}

	entity, err := r.mapper.ToEntity(&model)
	if err != nil {
		r.logger.Errorw("failed to map subscription model to entity", "tenant_id", tenantID, "error", err)
		return nil, fmt.Errorf("failed to map subscription: %w", err)
	}
	return entity, nil
}

func (r *SubscriptionRepositoryImpl) Update(ctx context.Context, sub *subscription.Subscription) error {
	model := r.mapper.ToModel(sub)

	result := db.GetTxFromContext(ctx, r.db).Model(&models.SubscriptionModel{}).
		Where("tenant_id = ?", model.TenantID).
		Updates(map[string]interface{}{
			"tier":               model.Tier,
			"status":             model.Status,
			"billing_cycle":      model.BillingCycle,
			"trial_ends_at":      model.TrialEndsAt,
			"current_period_end": model.CurrentPeriodEnd,
			"version":            gorm.Expr("version + 1"),
			"updated_at":         model.UpdatedAt,
		})
	if result.Error != nil {
		r.logger.Errorw("failed to update subscription", "tenant_id", model.TenantID, "error", result.Error)
		return fmt.Errorf("failed to update subscription: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return subscription.ErrSubscriptionNotFound
	}

	r.logger.Infow("subscription updated successfully", "tenant_id", model.TenantID, "status", model.Status)
	return nil
}

// ListTrialsEndingBefore returns trialing subscriptions whose trial ends
// before t, oldest first.
func (r *SubscriptionRepositoryImpl) ListTrialsEndingBefore(ctx context.Context, t time.Time, limit int) ([]*subscription.Subscription, error) {
	var rows []*models.SubscriptionModel
	query := db.GetTxFromContext(ctx, r.db).
		Where("status = ? AND trial_ends_at IS NOT NULL AND trial_ends_at <= ?", subscription.StatusTrialing.String(), t).
		Order("trial_ends_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&rows).Error; err != nil {
		r.logger.Errorw("failed to list ending trials", "error", err)
		return nil, fmt.Errorf("failed to list ending trials: %w", err)
	}
	return r.mapper.ToEntities(rows)
}
