// Package entitlement evaluates usage counters against plan limits. The
// hard gate and the advisory ratio are separate functions so a caller can
// never block on the soft warning by accident.
package entitlement

import (
	"fmt"

	"tillpoint/internal/application/authorization"
	"tillpoint/internal/domain/permission"
	"tillpoint/internal/domain/subscription"
)

// DefaultWarningThreshold is the usage ratio at which Advise starts warning.
const DefaultWarningThreshold = 0.8

// WithinLimit reports whether one more unit fits under the limit for key.
// Unlimited always fits; an unknown key never does.
func WithinLimit(limits subscription.Limits, key subscription.LimitKey, current int64) bool {
	limit, ok := limits.Get(key)
	if !ok {
		return false
	}
	if limit == subscription.Unlimited {
		return true
	}
	return current < limit
}

// UsageRatio returns current/limit. ok is false for unlimited or unknown
// keys, which have no meaningful ratio. A zero limit reports ratio 1.
func UsageRatio(limits subscription.Limits, key subscription.LimitKey, current int64) (ratio float64, ok bool) {
	limit, found := limits.Get(key)
	if !found || limit == subscription.Unlimited {
		return 0, false
	}
	if limit == 0 {
		return 1, true
	}
	return float64(current) / float64(limit), true
}

// Advisory is the non-blocking usage report shown next to a gated action.
type Advisory struct {
	Key       subscription.LimitKey `json:"key"`
	Current   int64                 `json:"current"`
	Limit     int64                 `json:"limit"`
	Ratio     float64               `json:"ratio"`
	Unlimited bool                  `json:"unlimited"`
	Warning   bool                  `json:"warning"`
	Message   string                `json:"message,omitempty"`
}

// Advise reports usage against key with a soft warning at threshold. A
// non-positive threshold uses DefaultWarningThreshold.
func Advise(limits subscription.Limits, key subscription.LimitKey, current int64, threshold float64) Advisory {
	if threshold <= 0 {
		threshold = DefaultWarningThreshold
	}
	limit, _ := limits.Get(key)
	a := Advisory{Key: key, Current: current, Limit: limit}

	ratio, ok := UsageRatio(limits, key, current)
	if !ok {
		a.Unlimited = limit == subscription.Unlimited
		return a
	}
	a.Ratio = ratio
	if ratio >= threshold {
		a.Warning = true
		a.Message = fmt.Sprintf("%d of %d %s used", current, limit, key)
	}
	return a
}

// CheckLimit renders the hard gate as a decision for the module the limit
// protects.
func CheckLimit(limits subscription.Limits, key subscription.LimitKey, current int64, module permission.ModuleKey) authorization.Decision {
	c := permission.ModuleCapability(module)
	if WithinLimit(limits, key, current) {
		return authorization.Allow(c, authorization.OverrideNone)
	}
	limit, _ := limits.Get(key)
	return authorization.Deny(c, authorization.DenyLimitReached,
		fmt.Sprintf("limit reached: %s (%d of %d)", key, current, limit))
}

// CheckState applies CheckLimit to a resolved subscription, reading the
// current value from its usage counters. A nil state has no limits and
// is always denied.
func CheckState(state *subscription.State, key subscription.LimitKey, module permission.ModuleKey) authorization.Decision {
	if state == nil {
		return authorization.Deny(permission.ModuleCapability(module), authorization.DenySubscriptionInactive, "no subscription")
	}
	current, _ := state.Usage.For(key)
	return CheckLimit(state.Limits, key, current, module)
}

// ModuleForLimit names the module a limit protects.
func ModuleForLimit(key subscription.LimitKey) permission.ModuleKey {
	switch key {
	case subscription.LimitMaxUsers:
		return permission.ModuleTeamManagement
	case subscription.LimitMaxLocations:
		return permission.ModuleLocations
	case subscription.LimitMaxSuppliers:
		return permission.ModuleSuppliers
	case subscription.LimitMaxOrdersPerMonth:
		return permission.ModulePOS
	}
	return permission.ModuleInventory
}
