// Package gate answers authorization questions reactively: a Session keeps
// the membership and subscription snapshots for one user in one tenant and
// re-evaluates every registered gate when either changes.
package gate

import (
	"tillpoint/internal/application/authorization"
	"tillpoint/internal/application/entitlement"
	"tillpoint/internal/domain/permission"
	"tillpoint/internal/domain/subscription"
)

type Outcome string

const (
	Loading Outcome = "loading"
	Allowed Outcome = "allowed"
	Denied  Outcome = "denied"
)

// Result is a gate's current answer. Decision is meaningful once Outcome
// is not Loading. Advisory is only set by usage-limit gates.
type Result struct {
	Outcome  Outcome                `json:"outcome"`
	Decision authorization.Decision `json:"decision"`
	Advisory *entitlement.Advisory  `json:"advisory,omitempty"`
	Err      error                  `json:"-"`
}

func loading(err error) Result { return Result{Outcome: Loading, Err: err} }

func fromDecision(d authorization.Decision) Result {
	if d.Allowed {
		return Result{Outcome: Allowed, Decision: d}
	}
	return Result{Outcome: Denied, Decision: d}
}

func (r Result) same(o Result) bool {
	if r.Outcome != o.Outcome || r.Decision.Kind != o.Decision.Kind ||
		r.Decision.Override != o.Decision.Override || (r.Err == nil) != (o.Err == nil) {
		return false
	}
	if (r.Advisory == nil) != (o.Advisory == nil) {
		return false
	}
	return r.Advisory == nil || *r.Advisory == *o.Advisory
}

type specKind int

const (
	specModule specKind = iota
	specAction
	specFeature
	specUsage
)

// Spec describes one gate. Build it with PermissionGate, ActionGate,
// FeatureGate or UsageLimitGate.
type Spec struct {
	kind       specKind
	module     permission.ModuleKey
	action     permission.Permission
	feature    subscription.FeatureKey
	limit      subscription.LimitKey
	usage      func() int64
	locationID string
}

// PermissionGate gates a module at a location (empty for any).
func PermissionGate(module permission.ModuleKey, locationID string) Spec {
	return Spec{kind: specModule, module: module, locationID: locationID}
}

// ActionGate gates a single permission string; it never waits on the
// subscription.
func ActionGate(p permission.Permission, locationID string) Spec {
	return Spec{kind: specAction, action: p, locationID: locationID}
}

// FeatureGate checks the plan alone.
func FeatureGate(f subscription.FeatureKey) Spec {
	return Spec{kind: specFeature, feature: f}
}

// UsageLimitGate blocks when usage() has reached the limit for key and
// attaches the soft warning. module names what the limit protects. usage
// runs under the session lock and must not call back into it.
func UsageLimitGate(key subscription.LimitKey, module permission.ModuleKey, usage func() int64) Spec {
	return Spec{kind: specUsage, limit: key, module: module, usage: usage}
}
