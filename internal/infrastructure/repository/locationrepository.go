package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"tillpoint/internal/domain/location"
	"tillpoint/internal/infrastructure/persistence/mappers"
	"tillpoint/internal/infrastructure/persistence/models"
	"tillpoint/internal/shared/db"
	"tillpoint/internal/shared/logger"
)

type LocationRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.LocationMapper
	logger logger.Interface
}

func NewLocationRepository(db *gorm.DB, logger logger.Interface) location.Repository {
	return &LocationRepositoryImpl{
		db:     db,
		mapper: mappers.NewLocationMapper(),
		logger: logger,
	}
}

func (r *LocationRepositoryImpl) Create(ctx context.Context, l *location.Location) error {
	model, err := r.mapper.ToModel(l)
	if err != nil {
		r.logger.Errorw("failed to map location entity to model", "error", err)
		return fmt.Errorf("failed to map location entity: %w", err)
	}

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		r.logger.Errorw("failed to create location", "tenant_id", l.TenantID(), "location_id", l.ID(), "error", err)
		return fmt.Errorf("failed to create location: %w", err)
	}

	r.logger.Infow("location created", "tenant_id", l.TenantID(), "location_id", l.ID(), "type", l.Type())
	return nil
}

func (r *LocationRepositoryImpl) Update(ctx context.Context, l *location.Location) error {
	model, err := r.mapper.ToModel(l)
	if err != nil {
		r.logger.Errorw("failed to map location entity to model", "error", err)
		return fmt.Errorf("failed to map location entity: %w", err)
	}

	result := db.GetTxFromContext(ctx, r.db).Model(&models.LocationModel{}).
		Where("tenant_id = ? AND location_id = ?", model.TenantID, model.LocationID).
		Updates(map[string]interface{}{
			"name":          model.Name,
			"type":          model.Type,
			"status":        model.Status,
			"street":        model.Street,
			"city":          model.City,
			"state":         model.State,
			"postal_code":   model.PostalCode,
			"country":       model.Country,
			"phone":         model.Phone,
			"contact_email": model.ContactEmail,
			"manager":       model.Manager,
			"settings":      model.Settings,
			"updated_at":    model.UpdatedAt,
		})
	if result.Error != nil {
		r.logger.Errorw("failed to update location", "location_id", model.LocationID, "error", result.Error)
		return fmt.Errorf("failed to update location: %w", result.Error)
	}

	r.logger.Infow("location updated", "tenant_id", model.TenantID, "location_id", model.LocationID)
	return nil
}

// Delete is idempotent.
func (r *LocationRepositoryImpl) Delete(ctx context.Context, tenantID, locationID string) error {
	err := db.GetTxFromContext(ctx, r.db).
		Where("tenant_id = ? AND location_id = ?", tenantID, locationID).
		Delete(&models.LocationModel{}).Error
	if err != nil {
		r.logger.Errorw("failed to delete location", "tenant_id", tenantID, "location_id", locationID, "error", err)
		return fmt.Errorf("failed to delete location: %w", err)
	}
	return nil
}

func (r *LocationRepositoryImpl) Get(ctx context.Context, tenantID, locationID string) (*location.Location, error) {
	var model models.LocationModel
	err := db.GetTxFromContext(ctx, r.db).
		Where("tenant_id = ? AND location_id = ?", tenantID, locationID).
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		r.logger.Errorw("failed to get location", "tenant_id", tenantID, "location_id", locationID, "error", err)
		return nil, fmt.Errorf("failed to get location: %w", err)
	}

	entity, err := r.mapper.ToEntity(&model)
	if err != nil {
		r.logger.Errorw("failed to map location model to entity", "location_id", locationID, "error", err)
		return nil, fmt.Errorf("failed to map location: %w", err)
	}
	return entity, nil
}

func (r *LocationRepositoryImpl) ListByTenant(ctx context.Context, tenantID string) ([]*location.Location, error) {
	var rows []*models.LocationModel
	err := db.GetTxFromContext(ctx, r.db).
		Scopes(db.ForTenant(tenantID)).
		Order("created_at ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		r.logger.Errorw("failed to list locations", "tenant_id", tenantID, "error", err)
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}
	return r.mapper.ToEntities(rows)
}

func (r *LocationRepositoryImpl) CountByTenant(ctx context.Context, tenantID string) (int64, error) {
	var count int64
	err := db.GetTxFromContext(ctx, r.db).
		Model(&models.LocationModel{}).
		Scopes(db.ForTenant(tenantID)).
		Count(&count).Error
	if err != nil {
		r.logger.Errorw("failed to count locations", "tenant_id", tenantID, "error", err)
		return 0, fmt.Errorf("failed to count locations: %w", err)
	}
	return count, nil
}
