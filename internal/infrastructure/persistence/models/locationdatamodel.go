package models

import (
	"time"

	"gorm.io/datatypes"

	"tillpoint/internal/shared/constants"
)

// LocationUsageStatModel, LocationInventoryModel and LocationAnalyticsModel
// are per-location records owned by other modules. This service only
// deletes and counts them.
type LocationUsageStatModel struct {
	ID         uint   `gorm:"primarykey"`
	TenantID   string `gorm:"not null;size:40;index:idx_usage_stat_location,priority:1"`
	LocationID string `gorm:"not null;size:40;index:idx_usage_stat_location,priority:2"`
	Period     string `gorm:"not null;size:20"`
	Sales      int64  `gorm:"not null;default:0"`
	Orders     int64  `gorm:"not null;default:0"`
	CreatedAt  time.Time
}

func (LocationUsageStatModel) TableName() string {
	return constants.TableLocationUsageStats
}

type LocationInventoryModel struct {
	ID         uint   `gorm:"primarykey"`
	TenantID   string `gorm:"not null;size:40;index:idx_inventory_location,priority:1"`
	LocationID string `gorm:"not null;size:40;index:idx_inventory_location,priority:2"`
	ProductID  string `gorm:"not null;size:64"`
	Quantity   int64  `gorm:"not null;default:0"`
	UpdatedAt  time.Time
}

func (LocationInventoryModel) TableName() string {
	return constants.TableLocationInventory
}

type LocationAnalyticsModel struct {
	ID         uint           `gorm:"primarykey"`
	TenantID   string         `gorm:"not null;size:40;index:idx_analytics_location,priority:1"`
	LocationID string         `gorm:"not null;size:40;index:idx_analytics_location,priority:2"`
	Metric     string         `gorm:"not null;size:64"`
	Payload    datatypes.JSON
	CreatedAt  time.Time
}

func (LocationAnalyticsModel) TableName() string {
	return constants.TableLocationAnalytics
}
