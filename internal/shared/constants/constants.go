// Package constants holds identifiers shared across layers.
package constants

const (
	EnvDevelopment = "development"
	EnvTest        = "test"
	EnvProduction  = "production"

	HeaderAuthorization = "Authorization"
	HeaderXRequestID    = "X-Request-ID"
	// HeaderXTenantID lets platform admins pick the tenant they act on.
	HeaderXTenantID = "X-Tenant-ID"

	ContentTypeJSON = "application/json"
)

// gin context keys
const (
	ContextKeyUserID       = "user_id"
	ContextKeyUserEmail    = "user_email"
	ContextKeyRequestID    = "request_id"
	ContextKeyTenantID     = "tenant_id"
	ContextKeyMember       = "team_member"
	ContextKeySubscription = "subscription_state"
	ContextKeyActor        = "actor"
	ContextKeyDecision     = "authz_decision"
)

const (
	TableTenants            = "tenants"
	TableTeamMembers        = "team_members"
	TableInvitations        = "invitations"
	TableLocations          = "locations"
	TableBranches           = "branches"
	TableLocationUsageStats = "location_usage_stats"
	TableLocationInventory  = "location_inventory"
	TableLocationAnalytics  = "location_analytics"
	TableSubscriptions      = "subscriptions"
	TableTenantUsage        = "tenant_usage"
	TableUserProfiles       = "user_profiles"
)
