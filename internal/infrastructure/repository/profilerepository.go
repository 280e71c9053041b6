package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tillpoint/internal/domain/profile"
	"tillpoint/internal/infrastructure/persistence/models"
	"tillpoint/internal/shared/db"
	"tillpoint/internal/shared/logger"
)

type ProfileRepositoryImpl struct {
	db     *gorm.DB
	logger logger.Interface
}

func NewProfileRepository(db *gorm.DB, logger logger.Interface) profile.Repository {
	return &ProfileRepositoryImpl{db: db, logger: logger}
}

func (r *ProfileRepositoryImpl) Get(ctx context.Context, tenantID, userID string) (*profile.Profile, error) {
	var model models.UserProfileModel
	err := db.GetTxFromContext(ctx, r.db).
		Where("tenant_id = ? AND user_id = ?", tenantID, userID).
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		r.logger.Errorw("failed to get user profile", "tenant_id", tenantID, "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to get user profile: %w", err)
	}
	return &profile.Profile{
		TenantID:         model.TenantID,
		UserID:           model.UserID,
		ActiveLocationID: model.ActiveLocationID,
		Version:          model.Version,
		UpdatedAt:        model.UpdatedAt,
	}, nil
}

// SaveActiveLocation is a conditional write: the row changes only when
// version is above the stored one. A missing row is inserted; if another
// writer inserts it first the conditional update is tried once more.
func (r *ProfileRepositoryImpl) SaveActiveLocation(ctx context.Context, tenantID, userID, locationID string, version uint64, at time.Time) error {
	tx := db.GetTxFromContext(ctx, r.db)
	for attempt := 0; attempt < 2; attempt++ {
		res := tx.Model(&models.UserProfileModel{}).
			Where("tenant_id = ? AND user_id = ? AND version < ?", tenantID, userID, version).
			Updates(map[string]any{
				"active_location_id": locationID,
				"version":            version,
				"updated_at":         at,
			})
		if res.Error != nil {
			r.logger.Errorw("failed to save active location", "tenant_id", tenantID, "user_id", userID, "error", res.Error)
			return fmt.Errorf("failed to save active location: %w", res.Error)
		}
		if res.RowsAffected > 0 {
			return nil
		}
		if attempt > 0 {
			break
		}

		res = tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&models.UserProfileModel{
			TenantID:         tenantID,
			UserID:           userID,
			ActiveLocationID: locationID,
			Version:          version,
			UpdatedAt:        at,
		})
		if res.Error != nil {
			r.logger.Errorw("failed to save active location", "tenant_id", tenantID, "user_id", userID, "error", res.Error)
			return fmt.Errorf("failed to save active location: %w", res.Error)
		}
		if res.RowsAffected > 0 {
			return nil
		}
	}

	r.logger.Debugw("stale active location write rejected",
		"tenant_id", tenantID,
		"user_id", userID,
		"location_id", locationID,
		"version", version,
	)
	return profile.ErrStaleVersion
}
