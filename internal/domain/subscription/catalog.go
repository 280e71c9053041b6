package subscription

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Plan is the catalog entry for one tier.
type Plan struct {
	ID       string
	Tier     Tier
	Name     string
	Features Features
	Limits   Limits
}

// Catalog maps tiers to plans. It is read-only after construction.
type Catalog struct {
	plans map[Tier]Plan
}

// DefaultCatalog returns the built-in plans. Core modules (pos, inventory,
// dashboard, settings, billing) are on every tier.
func DefaultCatalog() *Catalog {
	core := []FeatureKey{FeaturePOS, FeatureInventory, FeatureDashboard, FeatureSettings, FeatureBilling}
	with := func(extra ...FeatureKey) Features {
		return featureSet(append(append([]FeatureKey{}, core...), extra...)...)
	}

	return &Catalog{plans: map[Tier]Plan{
		TierFree: {
			ID: "free", Tier: TierFree, Name: "Free",
			Features: with(),
			Limits: Limits{
				LimitMaxUsers: 1, LimitMaxProducts: 50, LimitMaxSuppliers: 5,
				LimitMaxLocations: 1, LimitMaxOrdersPerMonth: 100,
			},
		},
		TierStarter: {
			ID: "starter", Tier: TierStarter, Name: "Starter",
			Features: with(FeatureSupplierManagement, FeatureCustomerManagement),
			Limits: Limits{
				LimitMaxUsers: 3, LimitMaxProducts: 500, LimitMaxSuppliers: 25,
				LimitMaxLocations: 1, LimitMaxOrdersPerMonth: 1000,
			},
		},
		TierProfessional: {
			ID: "professional", Tier: TierProfessional, Name: "Professional",
			Features: with(
				FeatureSupplierManagement, FeatureCustomerManagement,
				FeatureTeamManagement, FeatureMultiLocation, FeatureAdvancedReports, FeaturePurchaseOrders,
			),
			Limits: Limits{
				LimitMaxUsers: 10, LimitMaxProducts: 5000, LimitMaxSuppliers: 100,
				LimitMaxLocations: 5, LimitMaxOrdersPerMonth: 10000,
			},
		},
		TierEnterprise: {
			ID: "enterprise", Tier: TierEnterprise, Name: "Enterprise",
			Features: featureSet(AllFeatures...),
			Limits: Limits{
				LimitMaxUsers: Unlimited, LimitMaxProducts: Unlimited, LimitMaxSuppliers: Unlimited,
				LimitMaxLocations: Unlimited, LimitMaxOrdersPerMonth: Unlimited,
			},
		},
	}}
}

// Plan returns the plan for tier. Unknown tiers get the free plan so a bad
// record never grants more than the most restrictive entitlements.
func (c *Catalog) Plan(tier Tier) (Plan, bool) {
	p, ok := c.plans[tier]
	if !ok {
		p = c.plans[TierFree]
	}
	return Plan{
		ID:       p.ID,
		Tier:     p.Tier,
		Name:     p.Name,
		Features: p.Features.Clone(),
		Limits:   p.Limits.Clone(),
	}, ok
}

// Plans returns every plan ordered from free to enterprise.
func (c *Catalog) Plans() []Plan {
	out := make([]Plan, 0, len(AllTiers))
	for _, t := range AllTiers {
		if _, ok := c.plans[t]; ok {
			p, _ := c.Plan(t)
			out = append(out, p)
		}
	}
	return out
}

type planOverride struct {
	ID       string           `yaml:"plan_id"`
	Name     string           `yaml:"name"`
	Features map[string]bool  `yaml:"features"`
	Limits   map[string]int64 `yaml:"limits"`
}

type catalogFile struct {
	Plans map[string]planOverride `yaml:"plans"`
}

// LoadCatalog reads a YAML override file and merges it onto the default
// catalog. An empty path returns the defaults.
func LoadCatalog(path string) (*Catalog, error) {
	c := DefaultCatalog()
	if path == "" {
		return c, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plan catalog: %w", err)
	}
	if err := c.merge(data); err != nil {
		return nil, fmt.Errorf("plan catalog %s: %w", path, err)
	}
	return c, nil
}

func (c *Catalog) merge(data []byte) error {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return err
	}

	for rawTier, o := range file.Plans {
		tier, err := ParseTier(rawTier)
		if err != nil {
			return err
		}
		plan := c.plans[tier]
		if o.ID != "" {
			plan.ID = o.ID
		}
		if o.Name != "" {
			plan.Name = o.Name
		}
		for k, v := range o.Features {
			key := FeatureKey(k)
			if !key.IsValid() {
				return fmt.Errorf("unknown feature %q for tier %s", k, tier)
			}
			plan.Features[key] = v
		}
		for k, v := range o.Limits {
			key := LimitKey(k)
			if !key.IsValid() {
				return fmt.Errorf("unknown limit %q for tier %s", k, tier)
			}
			if v < Unlimited {
				return fmt.Errorf("limit %s for tier %s must be >= -1", k, tier)
			}
			plan.Limits[key] = v
		}
		c.plans[tier] = plan
	}
	return nil
}
