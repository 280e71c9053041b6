package subscription

import "tillpoint/internal/domain/permission"

// FeatureKey names a plan entitlement.
type FeatureKey string

const (
	FeaturePOS                FeatureKey = "pos"
	FeatureInventory          FeatureKey = "inventory"
	FeatureDashboard          FeatureKey = "dashboard"
	FeatureSettings           FeatureKey = "settings"
	FeatureBilling            FeatureKey = "billing"
	FeatureTeamManagement     FeatureKey = "teamManagement"
	FeatureMultiLocation      FeatureKey = "multiLocation"
	FeatureAdvancedReports    FeatureKey = "advancedReports"
	FeatureSupplierManagement FeatureKey = "supplierManagement"
	FeatureCustomerManagement FeatureKey = "customerManagement"
	FeaturePurchaseOrders     FeatureKey = "purchaseOrders"
	FeatureAPIAccess          FeatureKey = "apiAccess"
)

var AllFeatures = []FeatureKey{
	FeaturePOS, FeatureInventory, FeatureDashboard, FeatureSettings, FeatureBilling,
	FeatureTeamManagement, FeatureMultiLocation, FeatureAdvancedReports,
	FeatureSupplierManagement, FeatureCustomerManagement, FeaturePurchaseOrders,
	FeatureAPIAccess,
}

func (k FeatureKey) IsValid() bool {
	for _, f := range AllFeatures {
		if f == k {
			return true
		}
	}
	return false
}

var moduleFeatures = map[permission.ModuleKey]FeatureKey{
	permission.ModuleDashboard:      FeatureDashboard,
	permission.ModulePOS:            FeaturePOS,
	permission.ModuleInventory:      FeatureInventory,
	permission.ModuleSettings:       FeatureSettings,
	permission.ModuleBilling:        FeatureBilling,
	permission.ModuleTeamManagement: FeatureTeamManagement,
	permission.ModuleLocations:      FeatureMultiLocation,
	permission.ModuleReports:        FeatureAdvancedReports,
	permission.ModuleSuppliers:      FeatureSupplierManagement,
	permission.ModuleCustomers:      FeatureCustomerManagement,
	permission.ModulePurchaseOrders: FeaturePurchaseOrders,
	permission.ModuleIntegrations:   FeatureAPIAccess,
}

// FeatureForModule maps a module to the entitlement that gates it.
func FeatureForModule(m permission.ModuleKey) (FeatureKey, bool) {
	f, ok := moduleFeatures[m]
	return f, ok
}

// Features is a plan's entitlement set. Absent keys are disabled.
type Features map[FeatureKey]bool

func (f Features) Enabled(key FeatureKey) bool {
	return f[key]
}

// Clone returns an independent copy.
func (f Features) Clone() Features {
	out := make(Features, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

func featureSet(keys ...FeatureKey) Features {
	f := make(Features, len(AllFeatures))
	for _, k := range AllFeatures {
		f[k] = false
	}
	for _, k := range keys {
		f[k] = true
	}
	return f
}
