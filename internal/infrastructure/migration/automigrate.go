package migration

import (
	"fmt"

	"gorm.io/gorm"

	"tillpoint/internal/infrastructure/persistence/models"
	"tillpoint/internal/shared/logger"
)

// Models lists every table the service owns. casbin_rule is created by
// the casbin adapter.
func Models() []interface{} {
	return []interface{}{
		&models.TenantModel{},
		&models.TeamMemberModel{},
		&models.InvitationModel{},
		&models.LocationModel{},
		&models.BranchModel{},
		&models.LocationUsageStatModel{},
		&models.LocationInventoryModel{},
		&models.LocationAnalyticsModel{},
		&models.SubscriptionModel{},
		&models.TenantUsageModel{},
		&models.UserProfileModel{},
	}
}

// GormAutoMigrateStrategy derives the schema from the models. It is the
// only strategy that works on sqlite.
type GormAutoMigrateStrategy struct {
	logger logger.Interface
}

func NewGormAutoMigrateStrategy(log logger.Interface) *GormAutoMigrateStrategy {
	return &GormAutoMigrateStrategy{logger: log.With("component", "migration.automigrate")}
}

func (s *GormAutoMigrateStrategy) Migrate(db *gorm.DB) error {
	all := Models()
	if err := db.AutoMigrate(all...); err != nil {
		s.logger.Errorw("auto migration failed", "error", err)
		return fmt.Errorf("failed to auto migrate: %w", err)
	}
	s.logger.Infow("auto migration completed", "models_count", len(all))
	return nil
}

func (s *GormAutoMigrateStrategy) GetName() string {
	return StrategyAutoMigrate
}
