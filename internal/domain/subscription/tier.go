package subscription

import (
	"fmt"
	"strings"
)

type Tier string

const (
	TierFree         Tier = "free"
	TierStarter      Tier = "starter"
	TierProfessional Tier = "professional"
	TierEnterprise   Tier = "enterprise"
)

var AllTiers = []Tier{TierFree, TierStarter, TierProfessional, TierEnterprise}

func (t Tier) String() string {
	return string(t)
}

func (t Tier) IsValid() bool {
	for _, v := range AllTiers {
		if v == t {
			return true
		}
	}
	return false
}

// ParseTier normalizes billing aliases ("pro", "Business") to a tier.
func ParseTier(s string) (Tier, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "free", "basic":
		return TierFree, nil
	case "starter":
		return TierStarter, nil
	case "professional", "pro":
		return TierProfessional, nil
	case "enterprise", "business":
		return TierEnterprise, nil
	}
	return "", fmt.Errorf("unknown subscription tier: %q", s)
}

type BillingCycle string

const (
	BillingMonthly BillingCycle = "monthly"
	BillingYearly  BillingCycle = "yearly"
)

func (c BillingCycle) IsValid() bool {
	return c == BillingMonthly || c == BillingYearly
}
