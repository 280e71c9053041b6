package authorization

import "tillpoint/internal/domain/tenant"

func tenants(ids ...string) []*tenant.Tenant {
	out := make([]*tenant.Tenant, len(ids))
	for i, v := range ids {
		out[i] = tenant.ReconstructTenant(v, v, "owner-"+v, testNow)
	}
	return out
}
