package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"tillpoint/internal/domain/tenant"
	"tillpoint/internal/infrastructure/persistence/mappers"
	"tillpoint/internal/infrastructure/persistence/models"
	"tillpoint/internal/shared/db"
	"tillpoint/internal/shared/logger"
)

type TenantRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.TenantMapper
	logger logger.Interface
}

func NewTenantRepository(db *gorm.DB, logger logger.Interface) tenant.Repository {
	return &TenantRepositoryImpl{
		db:     db,
		mapper: mappers.NewTenantMapper(),
		logger: logger,
	}
}

func (r *TenantRepositoryImpl) Create(ctx context.Context, t *tenant.Tenant) error {
	model := r.mapper.ToModel(t)
	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		r.logger.Errorw("failed to create tenant", "tenant_id", t.ID(), "error", err)
		return fmt.Errorf("failed to create tenant: %w", err)
	}
	r.logger.Infow("tenant created", "tenant_id", t.ID(), "owner_user_id", t.OwnerUserID())
	return nil
}

// GetByID returns tenant.ErrTenantNotFound for an unknown id.
func (r *TenantRepositoryImpl) GetByID(ctx context.Context, tenantID string) (*tenant.Tenant, error) {
	var model models.TenantModel
	err := db.GetTxFromContext(ctx, r.db).Where("tenant_id = ?", tenantID).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, tenant.ErrTenantNotFound
	}
	if err != nil {
		r.logger.Errorw("failed to get tenant", "tenant_id", tenantID, "error", err)
		return nil, fmt.Errorf("failed to get tenant: %w", err)
	}
	return r.mapper.ToEntity(&model), nil
}

func (r *TenantRepositoryImpl) List(ctx context.Context) ([]*tenant.Tenant, error) {
	var rows []*models.TenantModel
	if err := db.GetTxFromContext(ctx, r.db).Order("created_at ASC, id ASC").Find(&rows).Error; err != nil {
		r.logger.Errorw("failed to list tenants", "error", err)
		return nil, fmt.Errorf("failed to list tenants: %w", err)
	}
	return r.mapper.ToEntities(rows), nil
}

func (r *TenantRepositoryImpl) ListByOwner(ctx context.Context, userID string) ([]*tenant.Tenant, error) {
	var rows []*models.TenantModel
	err := db.GetTxFromContext(ctx, r.db).
		Where("owner_user_id = ?", userID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		r.logger.Errorw("failed to list tenants by owner", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to list tenants: %w", err)
	}
	return r.mapper.ToEntities(rows), nil
}
