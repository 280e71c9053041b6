package permission

import (
	"fmt"
	"strings"
)

// Permission is a "resource.action" token or the wildcard.
type Permission string

// Wildcard grants every action capability. It never widens module access.
const Wildcard Permission = "*"

const (
	InventoryView   Permission = "inventory.view"
	InventoryCreate Permission = "inventory.create"
	InventoryUpdate Permission = "inventory.update"
	InventoryDelete Permission = "inventory.delete"

	POSSell   Permission = "pos.sell"
	POSRefund Permission = "pos.refund"
	POSVoid   Permission = "pos.void"

	ReportsView   Permission = "reports.view"
	ReportsExport Permission = "reports.export"

	TeamView   Permission = "team.view"
	TeamInvite Permission = "team.invite"
	TeamManage Permission = "team.manage"

	LocationsView   Permission = "locations.view"
	LocationsManage Permission = "locations.manage"

	SuppliersManage      Permission = "suppliers.manage"
	CustomersManage      Permission = "customers.manage"
	PurchaseOrdersManage Permission = "purchaseOrders.manage"

	SettingsView   Permission = "settings.view"
	SettingsManage Permission = "settings.manage"
)

func (p Permission) String() string {
	return string(p)
}

// IsValid accepts the wildcard or a two-part dotted token.
func (p Permission) IsValid() bool {
	if p == Wildcard {
		return true
	}
	resource, action, ok := strings.Cut(string(p), ".")
	return ok && resource != "" && action != "" && !strings.ContainsAny(action, ". ")
}

func ParsePermission(s string) (Permission, error) {
	p := Permission(strings.TrimSpace(s))
	if !p.IsValid() {
		return "", fmt.Errorf("invalid permission: %q", s)
	}
	return p, nil
}

// List is a member's explicit permission set.
type List []Permission

// Grants reports whether the list holds p or the wildcard.
func (l List) Grants(p Permission) bool {
	for _, have := range l {
		if have == Wildcard || have == p {
			return true
		}
	}
	return false
}

// Strings returns the list as plain strings for storage.
func (l List) Strings() []string {
	out := make([]string, len(l))
	for i, p := range l {
		out[i] = string(p)
	}
	return out
}

// ParseList validates and de-duplicates raw permission strings.
func ParseList(raw []string) (List, error) {
	out := make(List, 0, len(raw))
	seen := make(map[Permission]struct{}, len(raw))
	for _, s := range raw {
		p, err := ParsePermission(s)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out, nil
}

var defaultPermissions = map[Role]List{
	RoleOwner: {Wildcard},
	RoleManager: {
		InventoryView, InventoryCreate, InventoryUpdate, InventoryDelete,
		POSSell, POSRefund, POSVoid,
		ReportsView, ReportsExport,
		TeamView, TeamInvite,
		LocationsView, LocationsManage,
		SuppliersManage, CustomersManage, PurchaseOrdersManage,
		SettingsView,
	},
	RoleStaff:  {InventoryView, InventoryUpdate, POSSell},
	RoleViewer: {InventoryView, ReportsView},
}

// DefaultPermissions returns a copy of the permission set a new member of
// role gets when none is specified.
func DefaultPermissions(role Role) List {
	src := defaultPermissions[role]
	out := make(List, len(src))
	copy(out, src)
	return out
}
