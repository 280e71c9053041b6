// Package permission models tenant roles, module access and fine-grained
// permission strings.
package permission

import "fmt"

// Role is a member's coarse tier inside a tenant.
type Role string

const (
	RoleOwner   Role = "owner"
	RoleManager Role = "manager"
	RoleStaff   Role = "staff"
	RoleViewer  Role = "viewer"
)

// AllRoles lists roles from most to least privileged.
var AllRoles = []Role{RoleOwner, RoleManager, RoleStaff, RoleViewer}

func (r Role) String() string {
	return string(r)
}

func (r Role) IsValid() bool {
	switch r {
	case RoleOwner, RoleManager, RoleStaff, RoleViewer:
		return true
	}
	return false
}

func (r Role) IsOwner() bool {
	return r == RoleOwner
}

// Rank orders roles for escalation checks. Unknown roles rank 0.
func (r Role) Rank() int {
	switch r {
	case RoleOwner:
		return 4
	case RoleManager:
		return 3
	case RoleStaff:
		return 2
	case RoleViewer:
		return 1
	}
	return 0
}

// CanAssign reports whether a member holding r may hand out target.
// Only owners create owners.
func (r Role) CanAssign(target Role) bool {
	if target == RoleOwner {
		return r == RoleOwner
	}
	return r.Rank() >= target.Rank() && r.Rank() >= RoleManager.Rank()
}

func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.IsValid() {
		return "", fmt.Errorf("invalid role: %q", s)
	}
	return r, nil
}
