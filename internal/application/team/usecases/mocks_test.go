package usecases

import (
	"context"
	"time"

	"tillpoint/internal/domain/location"
	"tillpoint/internal/domain/shared/events"
	"tillpoint/internal/domain/subscription"
	"tillpoint/internal/domain/team"
	"tillpoint/internal/domain/tenant"
)

type fakeMemberRepository struct {
	members map[string]*team.Member

	CreateFunc func(ctx context.Context, m *team.Member) error
}

func newFakeMemberRepository(ms ...*team.Member) *fakeMemberRepository {
	r := &fakeMemberRepository{members: make(map[string]*team.Member)}
	for _, m := range ms {
		r.members[m.TenantID()+"/"+m.UserID()] = m
	}
	return r
}

func (r *fakeMemberRepository) Create(ctx context.Context, m *team.Member) error {
	if r.CreateFunc != nil {
		if err := r.CreateFunc(ctx, m); err != nil {
			return err
		}
	}
	r.members[m.TenantID()+"/"+m.UserID()] = m
	return nil
}

func (r *fakeMemberRepository) Update(_ context.Context, m *team.Member) error {
	r.members[m.TenantID()+"/"+m.UserID()] = m
	return nil
}

func (r *fakeMemberRepository) Delete(_ context.Context, tenantID, userID string) error {
	delete(r.members, tenantID+"/"+userID)
	return nil
}

func (r *fakeMemberRepository) Get(_ context.Context, tenantID, userID string) (*team.Member, error) {
	return r.members[tenantID+"/"+userID], nil
}

func (r *fakeMemberRepository) ListByTenant(_ context.Context, tenantID string) ([]*team.Member, error) {
	var out []*team.Member
	for _, m := range r.members {
		if m.TenantID() == tenantID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMemberRepository) ListByUser(_ context.Context, userID string) ([]*team.Member, error) {
	var out []*team.Member
	for _, m := range r.members {
		if m.UserID() == userID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMemberRepository) CountByTenant(ctx context.Context, tenantID string) (int64, error) {
	ms, _ := r.ListByTenant(ctx, tenantID)
	return int64(len(ms)), nil
}

type fakeInvitationRepository struct {
	invitations map[string]*team.Invitation
}

func newFakeInvitationRepository() *fakeInvitationRepository {
	return &fakeInvitationRepository{invitations: make(map[string]*team.Invitation)}
}

func (r *fakeInvitationRepository) Create(_ context.Context, inv *team.Invitation) error {
	r.invitations[inv.ID()] = inv
	return nil
}

func (r *fakeInvitationRepository) Update(_ context.Context, inv *team.Invitation) error {
	r.invitations[inv.ID()] = inv
	return nil
}

func (r *fakeInvitationRepository) GetByToken(_ context.Context, token string) (*team.Invitation, error) {
	for _, inv := range r.invitations {
		if inv.Token() == token {
			return inv, nil
		}
	}
	return nil, nil
}

func (r *fakeInvitationRepository) GetByID(_ context.Context, tenantID, invitationID string) (*team.Invitation, error) {
	inv, ok := r.invitations[invitationID]
	if !ok || inv.TenantID() != tenantID {
		return nil, nil
	}
	return inv, nil
}

func (r *fakeInvitationRepository) ListPending(_ context.Context, tenantID string) ([]*team.Invitation, error) {
	var out []*team.Invitation
	for _, inv := range r.invitations {
		if inv.TenantID() == tenantID && inv.Status() == team.InvitationPending {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (r *fakeInvitationRepository) CountPending(ctx context.Context, tenantID string) (int64, error) {
	invs, _ := r.ListPending(ctx, tenantID)
	return int64(len(invs)), nil
}

// mockLocationRepository only answers Get; known ids exist in every tenant.
type mockLocationRepository struct {
	location.Repository
	known map[string]bool
}

func (m *mockLocationRepository) Get(_ context.Context, tenantID, locationID string) (*location.Location, error) {
	if !m.known[locationID] {
		return nil, nil
	}
	return location.ReconstructLocation(locationID, tenantID, "Shop", location.TypeBranch,
		location.Address{}, location.Contact{}, location.Settings{}, location.StatusActive, time.Time{}, time.Time{}), nil
}

type mockTenantRepository struct {
	tenant.Repository
	owner string
}

func (m *mockTenantRepository) GetByID(_ context.Context, tenantID string) (*tenant.Tenant, error) {
	return tenant.ReconstructTenant(tenantID, "Acme", m.owner, time.Time{}), nil
}

type mockStateResolver struct{ state *subscription.State }

func (m *mockStateResolver) Resolve(context.Context, string) (*subscription.State, error) {
	return m.state, nil
}

type mockInvalidator struct{ tenants []string }

func (m *mockInvalidator) Invalidate(_ context.Context, tenantID string) {
	m.tenants = append(m.tenants, tenantID)
}

type mockPublisher struct{ events []events.ChangeEvent }

func (m *mockPublisher) Publish(_ context.Context, ev events.ChangeEvent) error {
	m.events = append(m.events, ev)
	return nil
}

type passthroughTx struct{}

func (passthroughTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func seats(n int64) *mockStateResolver {
	return &mockStateResolver{state: &subscription.State{
		TenantID: "tn_1",
		Status:   subscription.StatusActive,
		Limits:   subscription.Limits{subscription.LimitMaxUsers: n},
	}}
}
