package models

import (
	"time"

	"gorm.io/gorm"

	"tillpoint/internal/shared/constants"
)

// BranchModel is the legacy branch projection of a location. Stats columns
// are written by other modules and survive upserts.
type BranchModel struct {
	ID           uint           `gorm:"primarykey"`
	BranchID     string         `gorm:"uniqueIndex;not null;size:40"`
	LocationID   string         `gorm:"not null;size:40"`
	TenantID     string         `gorm:"not null;size:40;index:idx_branch_tenant"`
	Name         string         `gorm:"not null;size:120"`
	Address      string         `gorm:"size:512"`
	Phone        string         `gorm:"size:40"`
	Manager      string         `gorm:"size:120"`
	IsMain       bool           `gorm:"not null;default:false"`
	SalesCents   int64          `gorm:"not null;default:0"`
	OrderCount   int64          `gorm:"not null;default:0"`
	ProductCount int64          `gorm:"not null;default:0"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    gorm.DeletedAt `gorm:"index"`
}

func (BranchModel) TableName() string {
	return constants.TableBranches
}
