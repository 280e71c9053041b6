package authorization

import (
	"fmt"

	"tillpoint/internal/domain/permission"
	"tillpoint/internal/shared/errors"
)

// DenyKind classifies why a decision denied. The zero value means allowed.
type DenyKind string

const (
	DenyNotAuthenticated      DenyKind = "not_authenticated"
	DenyNoMembership          DenyKind = "no_membership"
	DenyMembershipInactive    DenyKind = "membership_inactive"
	DenyLocationNotAccessible DenyKind = "location_not_accessible"
	DenySubscriptionInactive  DenyKind = "subscription_inactive"
	DenyFeatureNotEntitled    DenyKind = "feature_not_entitled"
	DenyRoleCapped            DenyKind = "role_capped"
	DenyPermissionNotGranted  DenyKind = "permission_not_granted"
	DenyLimitReached          DenyKind = "limit_reached"
)

// OverrideKind tags decisions that skipped the normal rule chain.
type OverrideKind string

const (
	OverrideNone          OverrideKind = ""
	OverridePlatformAdmin OverrideKind = "platform-admin"
	OverrideDevBypass     OverrideKind = "dev-bypass"
)

// Decision is the result of an authorization question. Denials are values,
// not errors.
type Decision struct {
	Allowed    bool                  `json:"allowed"`
	Kind       DenyKind              `json:"kind,omitempty"`
	Reason     string                `json:"reason,omitempty"`
	Override   OverrideKind          `json:"override,omitempty"`
	Capability permission.Capability `json:"-"`
}

func Allow(c permission.Capability, o OverrideKind) Decision {
	return Decision{Allowed: true, Override: o, Capability: c}
}

func Deny(c permission.Capability, kind DenyKind, reason string) Decision {
	return Decision{Kind: kind, Reason: reason, Capability: c}
}

// UpgradeRequired is true when a plan change would lift the denial.
func (d Decision) UpgradeRequired() bool {
	return d.Kind == DenyFeatureNotEntitled || d.Kind == DenyLimitReached
}

// IsOverride reports whether the decision came from an override path.
func (d Decision) IsOverride() bool {
	return d.Override != OverrideNone
}

// Err converts a denial to the AppError returned by imperative commands.
// Allowed decisions return nil.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	if d.Kind == DenyNotAuthenticated {
		return errors.NewUnauthorizedError(d.Reason)
	}
	return errors.NewForbiddenError(d.Reason, fmt.Sprintf("%s: %s", d.Kind, d.Capability))
}

func (d Decision) String() string {
	if d.Allowed {
		if d.IsOverride() {
			return fmt.Sprintf("allow %s (%s)", d.Capability, d.Override)
		}
		return "allow " + d.Capability.String()
	}
	return fmt.Sprintf("deny %s: %s (%s)", d.Capability, d.Reason, d.Kind)
}
