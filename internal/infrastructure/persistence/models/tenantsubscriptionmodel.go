package models

import (
	"time"

	"gorm.io/gorm"

	"tillpoint/internal/shared/constants"
)

// SubscriptionModel stores one subscription per tenant. Features and
// limits are not persisted; they come from the plan catalog.
type SubscriptionModel struct {
	ID               uint       `gorm:"primarykey"`
	TenantID         string     `gorm:"uniqueIndex;not null;size:40"`
	Tier             string     `gorm:"not null;size:20"`
	Status           string     `gorm:"not null;size:20;index:idx_subscription_status_trial,priority:1"`
	BillingCycle     string     `gorm:"not null;size:20;default:monthly"`
	TrialEndsAt      *time.Time `gorm:"index:idx_subscription_status_trial,priority:2"`
	CurrentPeriodEnd *time.Time
	Version          int `gorm:"not null;default:1"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (SubscriptionModel) TableName() string {
	return constants.TableSubscriptions
}

// BeforeCreate hook for GORM
func (s *SubscriptionModel) BeforeCreate(tx *gorm.DB) error {
	if s.Version == 0 {
		s.Version = 1
	}
	return nil
}
