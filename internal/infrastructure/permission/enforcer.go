// Package permission backs the role table with casbin so module grants
// can be changed per deployment without a release.
package permission

import (
	"fmt"
	"sync"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"gorm.io/gorm"

	"tillpoint/internal/domain/permission"
	"tillpoint/internal/shared/logger"
)

// enterAction is the only action in the policy set: a role may enter a module.
const enterAction = "enter"

const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && r.obj == p.obj && r.act == p.act
`

var _ permission.RoleTable = (*Enforcer)(nil)

// Enforcer answers permission.RoleTable from casbin policies stored in
// casbin_rule. Policies are "p, role, module, enter" and role inheritance
// is "g, child, parent".
type Enforcer struct {
	enforcer *casbin.Enforcer
	mu       sync.RWMutex
	logger   logger.Interface
}

// NewEnforcer loads stored policies. When the table is empty it seeds it
// from defaults.
func NewEnforcer(db *gorm.DB, defaults *permission.StaticRoleTable, log logger.Interface) (*Enforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin adapter: %w", err)
	}

	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, fmt.Errorf("failed to parse casbin model: %w", err)
	}

	enforcer, err := casbin.NewEnforcer(m, adapter)
	if err != nil {
		return nil, fmt.Errorf("failed to create casbin enforcer: %w", err)
	}
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, fmt.Errorf("failed to load policy: %w", err)
	}

	e := &Enforcer{enforcer: enforcer, logger: log}

	policies, err := enforcer.GetPolicy()
	if err != nil {
		return nil, fmt.Errorf("failed to read policy: %w", err)
	}
	if len(policies) == 0 && defaults != nil {
		if err := e.Seed(defaults); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// AllowsModule fails closed: an enforcement error denies.
func (e *Enforcer) AllowsModule(role permission.Role, module permission.ModuleKey) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()

	allowed, err := e.enforcer.Enforce(role.String(), module.String(), enterAction)
	if err != nil {
		e.logger.Errorw("role table check failed", "error", err, "role", role, "module", module)
		return false
	}
	return allowed
}

// Seed replaces every stored policy with the grants and inheritance of t.
func (e *Enforcer) Seed(t *permission.StaticRoleTable) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.enforcer.ClearPolicy()

	var grants [][]string
	for _, role := range permission.AllRoles {
		for _, module := range t.DirectGrants(role) {
			grants = append(grants, []string{role.String(), module.String(), enterAction})
		}
	}
	var parents [][]string
	for _, pair := range t.Inheritance() {
		parents = append(parents, []string{pair[0].String(), pair[1].String()})
	}

	if len(grants) > 0 {
		if _, err := e.enforcer.AddPolicies(grants); err != nil {
			e.logger.Errorw("failed to add module grants", "error", err)
			return fmt.Errorf("failed to add module grants: %w", err)
		}
	}
	if len(parents) > 0 {
		if _, err := e.enforcer.AddGroupingPolicies(parents); err != nil {
			e.logger.Errorw("failed to add role inheritance", "error", err)
			return fmt.Errorf("failed to add role inheritance: %w", err)
		}
	}
	if err := e.enforcer.SavePolicy(); err != nil {
		e.logger.Errorw("failed to save role table", "error", err)
		return fmt.Errorf("failed to save role table: %w", err)
	}

	e.logger.Infow("role table seeded", "grants", len(grants), "inheritance", len(parents))
	return nil
}

// Grant adds a module to a role and persists it.
func (e *Enforcer) Grant(role permission.Role, module permission.ModuleKey) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.enforcer.AddPolicy(role.String(), module.String(), enterAction); err != nil {
		e.logger.Errorw("failed to add policy", "error", err, "role", role, "module", module)
		return fmt.Errorf("failed to add policy: %w", err)
	}
	return e.enforcer.SavePolicy()
}

// Revoke removes a directly granted module. Inherited grants stay.
func (e *Enforcer) Revoke(role permission.Role, module permission.ModuleKey) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.enforcer.RemovePolicy(role.String(), module.String(), enterAction); err != nil {
		e.logger.Errorw("failed to remove policy", "error", err, "role", role, "module", module)
		return fmt.Errorf("failed to remove policy: %w", err)
	}
	return e.enforcer.SavePolicy()
}

// Modules lists every module role reaches, inherited ones included.
func (e *Enforcer) Modules(role permission.Role) ([]permission.ModuleKey, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	perms, err := e.enforcer.GetImplicitPermissionsForUser(role.String())
	if err != nil {
		return nil, fmt.Errorf("failed to get permissions for role: %w", err)
	}
	seen := make(map[permission.ModuleKey]struct{}, len(perms))
	out := make([]permission.ModuleKey, 0, len(perms))
	for _, p := range perms {
		if len(p) < 3 || p[2] != enterAction {
			continue
		}
		m := permission.ModuleKey(p[1])
		if _, dup := seen[m]; dup {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	return out, nil
}

// LoadPolicy picks up policy edits made by other instances.
func (e *Enforcer) LoadPolicy() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.enforcer.LoadPolicy(); err != nil {
		return fmt.Errorf("failed to reload policy: %w", err)
	}
	e.logger.Infow("policy reloaded successfully")
	return nil
}
