package permission

import "sort"

// RoleTable answers whether a role may enter a module.
type RoleTable interface {
	AllowsModule(role Role, module ModuleKey) bool
}

// StaticRoleTable is the built-in role table. Roles inherit their parents'
// grants, and owner sits at the top of the chain, so owner always covers
// every module any other role can reach.
type StaticRoleTable struct {
	grants  map[Role][]ModuleKey
	parents map[Role][]Role
}

// DefaultRoleTable returns the production role table:
//
//	staff:   pos, inventory
//	viewer:  dashboard, reports
//	manager: staff + viewer + settings, team, locations, suppliers, customers, purchase orders
//	owner:   manager + billing, integrations
func DefaultRoleTable() *StaticRoleTable {
	return &StaticRoleTable{
		grants: map[Role][]ModuleKey{
			RoleStaff:  {ModulePOS, ModuleInventory},
			RoleViewer: {ModuleDashboard, ModuleReports},
			RoleManager: {
				ModuleSettings, ModuleTeamManagement, ModuleLocations,
				ModuleSuppliers, ModuleCustomers, ModulePurchaseOrders,
			},
			RoleOwner: {ModuleBilling, ModuleIntegrations},
		},
		parents: map[Role][]Role{
			RoleOwner:   {RoleManager},
			RoleManager: {RoleStaff, RoleViewer},
		},
	}
}

func (t *StaticRoleTable) AllowsModule(role Role, module ModuleKey) bool {
	for _, r := range t.closure(role) {
		for _, m := range t.grants[r] {
			if m == module {
				return true
			}
		}
	}
	return false
}

// Modules returns every module role can reach, sorted.
func (t *StaticRoleTable) Modules(role Role) []ModuleKey {
	seen := make(map[ModuleKey]struct{})
	for _, r := range t.closure(role) {
		for _, m := range t.grants[r] {
			seen[m] = struct{}{}
		}
	}
	out := make([]ModuleKey, 0, len(seen))
	for m := range seen {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// DirectGrants returns the modules granted to role without inheritance.
func (t *StaticRoleTable) DirectGrants(role Role) []ModuleKey {
	return append([]ModuleKey(nil), t.grants[role]...)
}

// Inheritance returns (child, parent) pairs: child inherits parent's grants.
func (t *StaticRoleTable) Inheritance() [][2]Role {
	var out [][2]Role
	for _, child := range AllRoles {
		for _, parent := range t.parents[child] {
			out = append(out, [2]Role{child, parent})
		}
	}
	return out
}

func (t *StaticRoleTable) closure(role Role) []Role {
	var out []Role
	seen := make(map[Role]bool)
	stack := []Role{role}
	for len(stack) > 0 {
		r := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[r] {
			continue
		}
		seen[r] = true
		out = append(out, r)
		stack = append(stack, t.parents[r]...)
	}
	return out
}
