package models

import (
	"time"

	"gorm.io/datatypes"

	"tillpoint/internal/shared/constants"
)

type InvitationModel struct {
	ID           uint           `gorm:"primarykey"`
	InvitationID string         `gorm:"uniqueIndex;not null;size:40"`
	TenantID     string         `gorm:"not null;size:40;index:idx_invitation_tenant_status,priority:1"`
	Email        string         `gorm:"not null;size:255"`
	Role         string         `gorm:"not null;size:20"`
	LocationIDs  datatypes.JSON
	Permissions  datatypes.JSON
	Token        string         `gorm:"uniqueIndex;not null;size:64"`
	Status       string         `gorm:"not null;size:20;index:idx_invitation_tenant_status,priority:2"`
	InvitedBy    string         `gorm:"size:64"`
	ExpiresAt    time.Time      `gorm:"not null"`
	AcceptedAt   *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (InvitationModel) TableName() string {
	return constants.TableInvitations
}
