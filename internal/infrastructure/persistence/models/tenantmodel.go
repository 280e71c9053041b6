package models

import (
	"time"

	"tillpoint/internal/shared/constants"
)

// TenantModel is the persistence model for tenants. Tenants are never deleted.
type TenantModel struct {
	ID          uint   `gorm:"primarykey"`
	TenantID    string `gorm:"uniqueIndex;not null;size:40"`
	Name        string `gorm:"not null;size:120"`
	OwnerUserID string `gorm:"not null;size:64;index:idx_tenant_owner"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (TenantModel) TableName() string {
	return constants.TableTenants
}
