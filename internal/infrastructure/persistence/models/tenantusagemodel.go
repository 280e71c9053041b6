package models

import (
	"time"

	"tillpoint/internal/shared/constants"
)

// TenantUsageModel holds the counters feature modules increment. Users and
// locations are counted live and are not stored here.
type TenantUsageModel struct {
	TenantID        string `gorm:"primarykey;size:40"`
	Products        int64  `gorm:"not null;default:0"`
	Suppliers       int64  `gorm:"not null;default:0"`
	OrdersThisMonth int64  `gorm:"not null;default:0"`
	UpdatedAt       time.Time
}

func (TenantUsageModel) TableName() string {
	return constants.TableTenantUsage
}
