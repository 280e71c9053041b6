package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"tillpoint/internal/domain/location"
	"tillpoint/internal/infrastructure/persistence/models"
	"tillpoint/internal/shared/db"
	"tillpoint/internal/shared/logger"
)

// LocationDataRepositoryImpl removes the per-location records other
// modules write. It never reads their contents.
type LocationDataRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewLocationDataRepository(db *gorm.DB, logger logger.Interface) location.DataRepository {
	return &LocationDataRepositoryImpl{db: db, logger: logger}
}

func recordModel(kind location.RecordKind) (interface{}, error) {
	switch kind {
	case location.RecordLocation:
		return &models.LocationModel{}, nil
	case location.RecordUsageStats:
		return &models.LocationUsageStatModel{}, nil
	case location.RecordInventory:
		return &models.LocationInventoryModel{}, nil
	case location.RecordAnalytics:
		return &models.LocationAnalyticsModel{}, nil
	}
	return nil, fmt.Errorf("unknown record kind: %s", kind)
}

func (r *LocationDataRepositoryImpl) DeleteRecords(ctx context.Context, tenantID, locationID string, kind location.RecordKind) error {
	model, err := recordModel(kind)
	if err != nil {
		return err
	}
	result := db.GetTxFromContext(ctx, r.db).
		Where("tenant_id = ? AND location_id = ?", tenantID, locationID).
		Delete(model)
	if result.Error != nil {
		r.logger.Errorw("failed to delete location records",
			"tenant_id", tenantID,
			"location_id", locationID,
			"kind", kind,
			"error", result.Error,
		)
		return fmt.Errorf("failed to delete %s records: %w", kind, result.Error)
	}
	if result.RowsAffected > 0 {
		r.logger.Debugw("location records deleted", "location_id", locationID, "kind", kind, "rows", result.RowsAffected)
	}
	return nil
}

func (r *LocationDataRepositoryImpl) CountRecords(ctx context.Context, tenantID, locationID string, kind location.RecordKind) (int64, error) {
	model, err := recordModel(kind)
	if err != nil {
		return 0, err
	}
	var count int64
	err = db.GetTxFromContext(ctx, r.db).
		Model(model).
		Where("tenant_id = ? AND location_id = ?", tenantID, locationID).
		Count(&count).Error
	if err != nil {
		r.logger.Errorw("failed to count location records", "location_id", locationID, "kind", kind, "error", err)
		return 0, fmt.Errorf("failed to count %s records: %w", kind, err)
	}
	return count, nil
}
