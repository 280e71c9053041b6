package authorization

import (
	"slices"
	"strings"

	"tillpoint/internal/domain/tenant"
)

// Actor is the authenticated identity asking a question.
type Actor struct {
	UserID string
	Email  string
}

// PlatformAdmins is the fixed set of identities that may act on any tenant.
// Entries match either a user id or an email, case-insensitively.
type PlatformAdmins struct {
	identities map[string]struct{}
}

func NewPlatformAdmins(identities []string) *PlatformAdmins {
	p := &PlatformAdmins{identities: make(map[string]struct{}, len(identities))}
	for _, v := range identities {
		if v = strings.ToLower(strings.TrimSpace(v)); v != "" {
			p.identities[v] = struct{}{}
		}
	}
	return p
}

// Contains is nil-safe; an empty actor never matches.
func (p *PlatformAdmins) Contains(a Actor) bool {
	if p == nil {
		return false
	}
	for _, v := range []string{a.UserID, a.Email} {
		if v == "" {
			continue
		}
		if _, ok := p.identities[strings.ToLower(v)]; ok {
			return true
		}
	}
	return false
}

func (p *PlatformAdmins) Len() int {
	if p == nil {
		return 0
	}
	return len(p.identities)
}

// SelectTenant picks the tenant a platform admin acts on: the requested
// tenant if given, else the first tenant the admin owns or belongs to,
// else the first tenant in the catalog. Requesting an unknown tenant fails.
func SelectTenant(requested string, own []string, catalog []*tenant.Tenant) (string, error) {
	ids := make([]string, len(catalog))
	for i, t := range catalog {
		ids[i] = t.ID()
	}

	if requested != "" {
		if !slices.Contains(ids, requested) {
			return "", tenant.ErrTenantNotFound
		}
		return requested, nil
	}
	for _, t := range own {
		if slices.Contains(ids, t) {
			return t, nil
		}
	}
	if len(ids) == 0 {
		return "", tenant.ErrTenantNotFound
	}
	return ids[0], nil
}
