package models

import (
	"time"

	"gorm.io/datatypes"

	"tillpoint/internal/shared/constants"
)

// LocationModel is the persistence model for locations. Address and
// contact are flattened; settings is a JSON column.
type LocationModel struct {
	ID           uint           `gorm:"primarykey"`
	LocationID   string         `gorm:"uniqueIndex;not null;size:40"`
	TenantID     string         `gorm:"not null;size:40;index:idx_location_tenant_created,priority:1"`
	Name         string         `gorm:"not null;size:120"`
	Type         string         `gorm:"not null;size:20"`
	Status       string         `gorm:"not null;size:20;default:active"`
	Street       string         `gorm:"size:255"`
	City         string         `gorm:"size:120"`
	State        string         `gorm:"size:120"`
	PostalCode   string         `gorm:"size:20"`
	Country      string         `gorm:"size:80"`
	Phone        string         `gorm:"size:40"`
	ContactEmail string         `gorm:"size:255"`
	Manager      string         `gorm:"size:120"`
	Settings     datatypes.JSON
	CreatedAt    time.Time      `gorm:"index:idx_location_tenant_created,priority:2"`
	UpdatedAt    time.Time
}

func (LocationModel) TableName() string {
	return constants.TableLocations
}
