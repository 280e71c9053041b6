package permission

import "fmt"

// ModuleKey names a gated application area.
type ModuleKey string

const (
	ModuleDashboard      ModuleKey = "dashboard"
	ModulePOS            ModuleKey = "pos"
	ModuleInventory      ModuleKey = "inventory"
	ModuleSettings       ModuleKey = "settings"
	ModuleTeamManagement ModuleKey = "team-management"
	ModuleLocations      ModuleKey = "locations"
	ModuleReports        ModuleKey = "reports"
	ModuleSuppliers      ModuleKey = "suppliers"
	ModuleCustomers      ModuleKey = "customers"
	ModulePurchaseOrders ModuleKey = "purchase-orders"
	ModuleBilling        ModuleKey = "billing"
	ModuleIntegrations   ModuleKey = "integrations"
)

var AllModules = []ModuleKey{
	ModuleDashboard,
	ModulePOS,
	ModuleInventory,
	ModuleSettings,
	ModuleTeamManagement,
	ModuleLocations,
	ModuleReports,
	ModuleSuppliers,
	ModuleCustomers,
	ModulePurchaseOrders,
	ModuleBilling,
	ModuleIntegrations,
}

// MinimalModules stay reachable for an owner whose tenant has no
// subscription record yet.
var MinimalModules = []ModuleKey{ModulePOS, ModuleInventory, ModuleDashboard, ModuleSettings}

func (m ModuleKey) String() string {
	return string(m)
}

func (m ModuleKey) IsValid() bool {
	for _, k := range AllModules {
		if k == m {
			return true
		}
	}
	return false
}

// IsMinimal reports whether m belongs to the no-subscription fallback set.
func (m ModuleKey) IsMinimal() bool {
	for _, k := range MinimalModules {
		if k == m {
			return true
		}
	}
	return false
}

func ParseModule(s string) (ModuleKey, error) {
	m := ModuleKey(s)
	if !m.IsValid() {
		return "", fmt.Errorf("unknown module: %q", s)
	}
	return m, nil
}
