package subscription

import (
	"fmt"
	"time"
)

// Subscription is the persisted billing state of one tenant. Features and
// limits are not stored; they come from the catalog entry for the tier.
type Subscription struct {
	id               uint
	tenantID         string
	tier             Tier
	status           Status
	billingCycle     BillingCycle
	trialEndsAt      *time.Time
	currentPeriodEnd *time.Time
	createdAt        time.Time
	updatedAt        time.Time
}

// NewTrial starts a trial on tier that lapses after trialDays.
func NewTrial(tenantID string, tier Tier, trialDays int, now time.Time) (*Subscription, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("tenant ID is required")
	}
	if !tier.IsValid() {
		return nil, fmt.Errorf("invalid tier: %s", tier)
	}
	if trialDays <= 0 {
		return nil, fmt.Errorf("trial days must be positive")
	}
	ends := now.AddDate(0, 0, trialDays)
	return &Subscription{
		tenantID:     tenantID,
		tier:         tier,
		status:       StatusTrialing,
		billingCycle: BillingMonthly,
		trialEndsAt:  &ends,
		createdAt:    now,
		updatedAt:    now,
	}, nil
}

// NewActive creates a paid subscription running until periodEnd.
func NewActive(tenantID string, tier Tier, cycle BillingCycle, periodEnd time.Time, now time.Time) (*Subscription, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("tenant ID is required")
	}
	if !tier.IsValid() {
		return nil, fmt.Errorf("invalid tier: %s", tier)
	}
	if !cycle.IsValid() {
		return nil, fmt.Errorf("invalid billing cycle: %s", cycle)
	}
	return &Subscription{
		tenantID:         tenantID,
		tier:             tier,
		status:           StatusActive,
		billingCycle:     cycle,
		currentPeriodEnd: &periodEnd,
		createdAt:        now,
		updatedAt:        now,
	}, nil
}

// ReconstructSubscription rebuilds a subscription from storage.
func ReconstructSubscription(
	id uint,
	tenantID string,
	tier Tier,
	status Status,
	cycle BillingCycle,
	trialEndsAt, currentPeriodEnd *time.Time,
	createdAt, updatedAt time.Time,
) *Subscription {
	return &Subscription{
		id:               id,
		tenantID:         tenantID,
		tier:             tier,
		status:           status,
		billingCycle:     cycle,
		trialEndsAt:      trialEndsAt,
		currentPeriodEnd: currentPeriodEnd,
		createdAt:        createdAt,
		updatedAt:        updatedAt,
	}
}

func (s *Subscription) ID() uint                     { return s.id }
func (s *Subscription) TenantID() string             { return s.tenantID }
func (s *Subscription) Tier() Tier                   { return s.tier }
func (s *Subscription) Status() Status               { return s.status }
func (s *Subscription) BillingCycle() BillingCycle   { return s.billingCycle }
func (s *Subscription) TrialEndsAt() *time.Time      { return s.trialEndsAt }
func (s *Subscription) CurrentPeriodEnd() *time.Time { return s.currentPeriodEnd }
func (s *Subscription) CreatedAt() time.Time         { return s.createdAt }
func (s *Subscription) UpdatedAt() time.Time         { return s.updatedAt }

func (s *Subscription) SetID(id uint) {
	s.id = id
}

// EffectiveStatus is the stored status with trial lapse applied.
func (s *Subscription) EffectiveStatus(now time.Time) Status {
	if s.status == StatusTrialing && s.trialEndsAt != nil && !now.Before(*s.trialEndsAt) {
		return StatusExpired
	}
	return s.status
}

// ChangeTier moves the subscription to another plan. Status is unchanged.
func (s *Subscription) ChangeTier(tier Tier, now time.Time) error {
	if !tier.IsValid() {
		return fmt.Errorf("invalid tier: %s", tier)
	}
	if tier == s.tier {
		return ErrSameTier
	}
	s.tier = tier
	s.updatedAt = now
	return nil
}

// TransitionTo applies a status change allowed by the transition table.
func (s *Subscription) TransitionTo(target Status, now time.Time) error {
	if !s.status.CanTransitionTo(target) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s.status, target)
	}
	s.status = target
	if target != StatusTrialing {
		s.trialEndsAt = nil
	}
	s.updatedAt = now
	return nil
}

// ExpireTrial marks a lapsed trial expired. It reports whether anything changed.
func (s *Subscription) ExpireTrial(now time.Time) bool {
	if s.status != StatusTrialing || s.EffectiveStatus(now) != StatusExpired {
		return false
	}
	s.status = StatusExpired
	s.updatedAt = now
	return true
}
