package usecases

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tillpoint/internal/application/authorization"
	"tillpoint/internal/domain/location"
	"tillpoint/internal/domain/permission"
	"tillpoint/internal/domain/shared/events"
	"tillpoint/internal/domain/subscription"
	"tillpoint/internal/domain/team"
	"tillpoint/internal/domain/tenant"
	apperrors "tillpoint/internal/shared/errors"
	"tillpoint/internal/shared/logger"
)

type memTenants struct {
	tenant.Repository
	items []*tenant.Tenant
}

func (m *memTenants) Create(_ context.Context, t *tenant.Tenant) error {
	m.items = append(m.items, t)
	return nil
}

func (m *memTenants) GetByID(_ context.Context, id string) (*tenant.Tenant, error) {
	for _, t := range m.items {
		if t.ID() == id {
			return t, nil
		}
	}
	return nil, tenant.ErrTenantNotFound
}

func (m *memTenants) List(context.Context) ([]*tenant.Tenant, error) { return m.items, nil }

type memMembers struct {
	team.MemberRepository
	items []*team.Member
}

func (m *memMembers) Create(_ context.Context, mem *team.Member) error {
	m.items = append(m.items, mem)
	return nil
}

func (m *memMembers) ListByUser(_ context.Context, userID string) ([]*team.Member, error) {
	var out []*team.Member
	for _, mem := range m.items {
		if mem.UserID() == userID {
			out = append(out, mem)
		}
	}
	return out, nil
}

type memSubs struct {
	subscription.Repository
	created []*subscription.Subscription
}

func (m *memSubs) Create(_ context.Context, s *subscription.Subscription) error {
	m.created = append(m.created, s)
	return nil
}

type memLocations struct {
	location.Repository
	created []*location.Location
	err     error
}

func (m *memLocations) Create(_ context.Context, l *location.Location) error {
	if m.err != nil {
		return m.err
	}
	m.created = append(m.created, l)
	return nil
}

type projector struct{ upserts int }

func (p *projector) Upsert(context.Context, *location.Location, time.Time) error {
	p.upserts++
	return nil
}

type txRunner struct{}

func (txRunner) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type publisher struct{ events []events.ChangeEvent }

func (p *publisher) Publish(_ context.Context, ev events.ChangeEvent) error {
	p.events = append(p.events, ev)
	return nil
}

func TestCreateTenant(t *testing.T) {
	tenants, members, subs, locs := &memTenants{}, &memMembers{}, &memSubs{}, &memLocations{}
	proj, pub := &projector{}, &publisher{}
	uc := NewCreateTenantUseCase(tenants, members, subs, locs, proj, txRunner{}, pub, logger.NewNopLogger())

	res, err := uc.Execute(context.Background(), CreateTenantCommand{
		Name:        "Corner Shop",
		OwnerUserID: "u1",
		OwnerEmail:  "Owner@Example.com",
		Tier:        "starter",
	})
	require.NoError(t, err)

	assert.Equal(t, "Corner Shop", res.Tenant.Name())
	assert.Equal(t, "u1", res.Tenant.OwnerUserID())
	assert.Equal(t, permission.RoleOwner, res.Owner.Role())
	assert.Equal(t, subscription.StatusTrialing, res.Subscription.Status())
	assert.Equal(t, subscription.TierStarter, res.Subscription.Tier())
	assert.True(t, res.MainLocation.IsMain())
	assert.Equal(t, 1, proj.upserts)
	assert.Len(t, pub.events, 3)
}

func TestCreateTenantFailureIsPersistenceError(t *testing.T) {
	locs := &memLocations{err: errors.New("disk full")}
	uc := NewCreateTenantUseCase(&memTenants{}, &memMembers{}, &memSubs{}, locs, &projector{}, txRunner{}, &publisher{}, logger.NewNopLogger())

	_, err := uc.Execute(context.Background(), CreateTenantCommand{Name: "Corner Shop", OwnerUserID: "u1"})
	require.Error(t, err)
	assert.True(t, apperrors.IsPersistenceError(err))
}

func TestSelectTenant(t *testing.T) {
	now := time.Now()
	older := tenant.ReconstructTenant("tn_a", "A", "u1", now.Add(-time.Hour))
	newer := tenant.ReconstructTenant("tn_b", "B", "u2", now)
	tenants := &memTenants{items: []*tenant.Tenant{older, newer}}

	m, err := team.NewMember("tn_b", "u2", "u2@example.com", "", permission.RoleStaff, nil, nil, now)
	require.NoError(t, err)
	members := &memMembers{items: []*team.Member{m}}

	admins := authorization.NewPlatformAdmins([]string{"root@example.com"})
	uc := NewListTenantsUseCase(tenants, members, admins, logger.NewNopLogger())

	member := authorization.Actor{UserID: "u2", Email: "u2@example.com"}
	admin := authorization.Actor{UserID: "u9", Email: "root@example.com"}

	got, err := uc.Select(context.Background(), member, "")
	require.NoError(t, err)
	assert.Equal(t, "tn_b", got)

	_, err = uc.Select(context.Background(), member, "tn_a")
	assert.True(t, apperrors.IsForbiddenError(err))

	got, err = uc.Select(context.Background(), admin, "")
	require.NoError(t, err)
	assert.Equal(t, "tn_a", got)

	got, err = uc.Select(context.Background(), admin, "tn_b")
	require.NoError(t, err)
	assert.Equal(t, "tn_b", got)

	_, err = uc.Select(context.Background(), admin, "tn_zzz")
	assert.True(t, apperrors.IsNotFoundError(err))

	_, err = uc.All(context.Background(), member)
	assert.True(t, apperrors.IsForbiddenError(err))
	all, err := uc.All(context.Background(), admin)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
