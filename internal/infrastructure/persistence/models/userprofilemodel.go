package models

import (
	"time"

	"tillpoint/internal/shared/constants"
)

type UserProfileModel struct {
	TenantID         string `gorm:"primarykey;size:40"`
	UserID           string `gorm:"primarykey;size:64"`
	ActiveLocationID string `gorm:"size:40"`
	Version          uint64 `gorm:"not null;default:0"`
	UpdatedAt        time.Time
}

func (UserProfileModel) TableName() string {
	return constants.TableUserProfiles
}
