// Package authorization combines role-based permissions with subscription
// entitlements into a single decision over the capability space.
package authorization

import (
	"tillpoint/internal/domain/permission"
	"tillpoint/internal/domain/subscription"
	"tillpoint/internal/domain/team"
	"tillpoint/internal/shared/logger"
)

// Recorder observes every decision the engine returns.
type Recorder interface {
	RecordDecision(d Decision)
}

// Request is one authorization question. Member and Subscription are the
// caller's current snapshots; the engine never loads anything itself.
type Request struct {
	Actor        Actor
	Member       *team.Member
	Subscription *subscription.State
	Capability   permission.Capability
	LocationID   string
}

type Engine struct {
	roles    permission.RoleTable
	admins   *PlatformAdmins
	recorder Recorder
}

type Option func(*Engine)

func WithPlatformAdmins(admins *PlatformAdmins) Option {
	return func(e *Engine) { e.admins = admins }
}

func WithRecorder(r Recorder) Option {
	return func(e *Engine) { e.recorder = r }
}

func NewEngine(roles permission.RoleTable, log logger.Interface, opts ...Option) *Engine {
	e := &Engine{roles: roles}
	for _, opt := range opts {
		opt(e)
	}
	if devBypass {
		log.Warnw("development authorization bypass is compiled in; every decision allows")
	}
	log.Infow("authorization engine ready", "platform_admins", e.admins.Len())
	return e
}

// IsPlatformAdmin reports whether a is in the configured admin set.
func (e *Engine) IsPlatformAdmin(a Actor) bool {
	return e.admins.Contains(a)
}

// Decide answers whether member may use module at locationID. An empty
// locationID skips location scoping.
func (e *Engine) Decide(member *team.Member, sub *subscription.State, module permission.ModuleKey, locationID string) Decision {
	return e.Evaluate(Request{
		Member:       member,
		Subscription: sub,
		Capability:   permission.ModuleCapability(module),
		LocationID:   locationID,
	})
}

// HasPermission answers whether member holds the action permission at
// locationID. It does not consult the subscription.
func (e *Engine) HasPermission(member *team.Member, p permission.Permission, locationID string) bool {
	return e.Evaluate(Request{
		Member:     member,
		Capability: permission.ActionCapability(p),
		LocationID: locationID,
	}).Allowed
}

// Evaluate runs the full rule chain for req.
func (e *Engine) Evaluate(req Request) Decision {
	d := e.evaluate(req)
	if e.recorder != nil {
		e.recorder.RecordDecision(d)
	}
	return d
}

// EvaluateFeature answers whether the tenant's plan includes feature. Only
// the subscription is consulted; platform admins are marked as an override
// but are still bound by the plan.
func (e *Engine) EvaluateFeature(actor Actor, sub *subscription.State, feature subscription.FeatureKey) Decision {
	d := e.evaluateFeature(actor, sub, feature)
	if e.recorder != nil {
		e.recorder.RecordDecision(d)
	}
	return d
}

func (e *Engine) evaluateFeature(actor Actor, sub *subscription.State, feature subscription.FeatureKey) Decision {
	c := permission.Capability{Kind: permission.CapabilityModule}
	if devBypass {
		return Allow(c, OverrideDevBypass)
	}
	override := OverrideNone
	if e.admins.Contains(actor) {
		override = OverridePlatformAdmin
	}
	switch {
	case sub == nil:
		return Deny(c, DenySubscriptionInactive, "no subscription")
	case !sub.Status.CanUseService():
		return Deny(c, DenySubscriptionInactive, "subscription is "+string(sub.Status))
	case !sub.Features.Enabled(feature):
		return Deny(c, DenyFeatureNotEntitled, "feature not in plan")
	}
	return Allow(c, override)
}

// PreCheck runs only the rules that need no subscription data. decided is
// true when the outcome is already final: a local denial, or an override.
func (e *Engine) PreCheck(req Request) (d Decision, decided bool) {
	if devBypass {
		return Allow(req.Capability, OverrideDevBypass), true
	}
	if e.admins.Contains(req.Actor) {
		if req.Capability.Kind == permission.CapabilityAction {
			return Allow(req.Capability, OverridePlatformAdmin), true
		}
		return Decision{}, false
	}
	if d, denied := e.localRules(req); denied {
		return d, true
	}
	if req.Capability.Kind == permission.CapabilityAction {
		return Allow(req.Capability, OverrideNone), true
	}
	return Decision{}, false
}

func (e *Engine) evaluate(req Request) Decision {
	c := req.Capability
	if devBypass {
		return Allow(c, OverrideDevBypass)
	}

	override := OverrideNone
	if e.admins.Contains(req.Actor) {
		override = OverridePlatformAdmin
	} else if d, denied := e.localRules(req); denied {
		return d
	}

	if c.Kind == permission.CapabilityAction {
		return Allow(c, override)
	}
	return e.entitlementRules(req, override)
}

// localRules covers membership, location scoping and the role gate.
func (e *Engine) localRules(req Request) (Decision, bool) {
	c, m := req.Capability, req.Member
	switch {
	case m == nil:
		return Deny(c, DenyNoMembership, "no active membership"), true
	case !m.IsActive():
		return Deny(c, DenyMembershipInactive, "no active membership"), true
	case m.IsOwner():
		return Decision{}, false
	case req.LocationID != "" && !m.CanAccessLocation(req.LocationID):
		return Deny(c, DenyLocationNotAccessible, "location not accessible"), true
	}

	switch c.Kind {
	case permission.CapabilityModule:
		if !e.roles.AllowsModule(m.Role(), c.Module) {
			return Deny(c, DenyRoleCapped, "role does not include this module"), true
		}
	case permission.CapabilityAction:
		if !m.HasPermission(c.Action) {
			return Deny(c, DenyPermissionNotGranted, "permission not granted"), true
		}
	default:
		return Deny(c, DenyRoleCapped, "unknown capability"), true
	}
	return Decision{}, false
}

// entitlementRules covers the subscription half for module capabilities.
// Platform admins are evaluated as owners.
func (e *Engine) entitlementRules(req Request, override OverrideKind) Decision {
	c, sub := req.Capability, req.Subscription
	asOwner := override == OverridePlatformAdmin || (req.Member != nil && req.Member.IsOwner())

	if sub == nil {
		if asOwner && c.Module.IsMinimal() {
			return Allow(c, override)
		}
		return Deny(c, DenySubscriptionInactive, "no subscription")
	}
	if !sub.Status.CanUseService() {
		return Deny(c, DenySubscriptionInactive, "subscription is "+string(sub.Status))
	}

	feature, ok := subscription.FeatureForModule(c.Module)
	if !ok || !sub.Features.Enabled(feature) {
		return Deny(c, DenyFeatureNotEntitled, "feature not in plan")
	}

	if !asOwner && req.Member.Role() == permission.RoleStaff &&
		c.Module != permission.ModulePOS && c.Module != permission.ModuleInventory {
		return Deny(c, DenyRoleCapped, "staff is limited to pos and inventory")
	}
	return Allow(c, override)
}
