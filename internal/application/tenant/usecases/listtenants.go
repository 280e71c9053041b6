package usecases

import (
	"context"
	"slices"
	"sort"

	"tillpoint/internal/application/authorization"
	"tillpoint/internal/domain/team"
	"tillpoint/internal/domain/tenant"
	apperrors "tillpoint/internal/shared/errors"
	"tillpoint/internal/shared/logger"
)

// TenantMembership pairs a tenant with the caller's role in it. Member is
// nil for tenants reached through the platform-admin override.
type TenantMembership struct {
	Tenant *tenant.Tenant
	Member *team.Member
}

type ListTenantsUseCase struct {
	tenants tenant.Repository
	members team.MemberRepository
	admins  *authorization.PlatformAdmins
	logger  logger.Interface
}

func NewListTenantsUseCase(
	tenants tenant.Repository,
	members team.MemberRepository,
	admins *authorization.PlatformAdmins,
	logger logger.Interface,
) *ListTenantsUseCase {
	return &ListTenantsUseCase{tenants: tenants, members: members, admins: admins, logger: logger}
}

// Mine lists the tenants actor belongs to, oldest first.
func (uc *ListTenantsUseCase) Mine(ctx context.Context, actor authorization.Actor) ([]TenantMembership, error) {
	ms, err := uc.members.ListByUser(ctx, actor.UserID)
	if err != nil {
		uc.logger.Errorw("failed to list memberships", "user_id", actor.UserID, "error", err)
		return nil, apperrors.NewPersistenceError("failed to list memberships", err.Error())
	}

	out := make([]TenantMembership, 0, len(ms))
	for _, m := range ms {
		t, err := uc.tenants.GetByID(ctx, m.TenantID())
		if err != nil {
			uc.logger.Warnw("membership references missing tenant", "tenant_id", m.TenantID(), "error", err)
			continue
		}
		out = append(out, TenantMembership{Tenant: t, Member: m})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Tenant.CreatedAt().Before(out[j].Tenant.CreatedAt())
	})
	return out, nil
}

// All returns the tenant catalog. Only platform admins may read it.
func (uc *ListTenantsUseCase) All(ctx context.Context, actor authorization.Actor) ([]*tenant.Tenant, error) {
	if !uc.admins.Contains(actor) {
		return nil, apperrors.NewForbiddenError("platform admin required")
	}
	ts, err := uc.tenants.List(ctx)
	if err != nil {
		return nil, apperrors.NewPersistenceError("failed to list tenants", err.Error())
	}
	return ts, nil
}

// Select picks the tenant a request operates on: the requested one, else
// the caller's oldest own tenant, else (for platform admins) the first
// tenant in the catalog.
func (uc *ListTenantsUseCase) Select(ctx context.Context, actor authorization.Actor, requested string) (string, error) {
	mine, err := uc.Mine(ctx, actor)
	if err != nil {
		return "", err
	}
	own := make([]string, len(mine))
	for i, tm := range mine {
		own[i] = tm.Tenant.ID()
	}

	if !uc.admins.Contains(actor) {
		if requested == "" && len(own) > 0 {
			return own[0], nil
		}
		if slices.Contains(own, requested) {
			return requested, nil
		}
		return "", apperrors.NewForbiddenError("no active membership")
	}

	catalog, err := uc.tenants.List(ctx)
	if err != nil {
		return "", apperrors.NewPersistenceError("failed to list tenants", err.Error())
	}
	selected, err := authorization.SelectTenant(requested, own, catalog)
	if err != nil {
		return "", apperrors.NewNotFoundError(err.Error())
	}
	return selected, nil
}
