package models

import (
	"time"

	"gorm.io/datatypes"

	"tillpoint/internal/shared/constants"
)

// TeamMemberModel stores one membership row per (tenant, user).
type TeamMemberModel struct {
	ID          uint           `gorm:"primarykey"`
	TenantID    string         `gorm:"not null;size:40;uniqueIndex:uk_member_tenant_user,priority:1"`
	UserID      string         `gorm:"not null;size:64;uniqueIndex:uk_member_tenant_user,priority:2;index:idx_member_user"`
	Email       string         `gorm:"size:255"`
	DisplayName string         `gorm:"size:120"`
	Role        string         `gorm:"not null;size:20"`
	Status      string         `gorm:"not null;size:20;default:active"`
	LocationIDs datatypes.JSON `gorm:"comment:JSON array of location ids"`
	Permissions datatypes.JSON `gorm:"comment:JSON array of permission tokens"`
	JoinedAt    time.Time      `gorm:"not null"`
	LastLoginAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (TeamMemberModel) TableName() string {
	return constants.TableTeamMembers
}
