package subscription

import "time"

// State is the resolved, read-only view the authorization engine consumes:
// stored status with trial lapse applied, the catalog plan for the tier, and
// the tenant's live usage.
type State struct {
	TenantID         string       `json:"tenantId"`
	PlanID           string       `json:"planId"`
	Tier             Tier         `json:"tier"`
	Status           Status       `json:"status"`
	Features         Features     `json:"features"`
	Limits           Limits       `json:"limits"`
	Usage            Usage        `json:"currentUsage"`
	BillingCycle     BillingCycle `json:"billingCycle"`
	TrialEndsAt      *time.Time   `json:"trialEndsAt,omitempty"`
	CurrentPeriodEnd *time.Time   `json:"currentPeriodEnd,omitempty"`
}

// NewState resolves sub against plan and usage at now.
func NewState(sub *Subscription, plan Plan, usage Usage, now time.Time) *State {
	return &State{
		TenantID:         sub.TenantID(),
		PlanID:           plan.ID,
		Tier:             plan.Tier,
		Status:           sub.EffectiveStatus(now),
		Features:         plan.Features,
		Limits:           plan.Limits,
		Usage:            usage,
		BillingCycle:     sub.BillingCycle(),
		TrialEndsAt:      sub.TrialEndsAt(),
		CurrentPeriodEnd: sub.CurrentPeriodEnd(),
	}
}

func (s *State) CanUseService() bool {
	return s != nil && s.Status.CanUseService()
}

// HasFeature is false for a nil state or an unusable status.
func (s *State) HasFeature(key FeatureKey) bool {
	return s.CanUseService() && s.Features.Enabled(key)
}
