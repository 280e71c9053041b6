package usecases

import (
	"context"
	"sort"
	"sync"
	"time"

	"tillpoint/internal/domain/location"
	"tillpoint/internal/domain/shared/events"
	"tillpoint/internal/domain/subscription"
)

type fakeLocationRepository struct {
	mu        sync.Mutex
	locations map[string]*location.Location
	listCalls int

	CreateFunc func(ctx context.Context, l *location.Location) error
	DeleteFunc func(ctx context.Context, tenantID, locationID string) error
}

func newFakeLocationRepository(locs ...*location.Location) *fakeLocationRepository {
	r := &fakeLocationRepository{locations: make(map[string]*location.Location)}
	for _, l := range locs {
		r.locations[l.ID()] = l
	}
	return r
}

func (r *fakeLocationRepository) Create(ctx context.Context, l *location.Location) error {
	if r.CreateFunc != nil {
		if err := r.CreateFunc(ctx, l); err != nil {
			return err
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.locations[l.ID()] = l
	return nil
}

func (r *fakeLocationRepository) Update(_ context.Context, l *location.Location) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.locations[l.ID()] = l
	return nil
}

func (r *fakeLocationRepository) Delete(ctx context.Context, tenantID, locationID string) error {
	if r.DeleteFunc != nil {
		return r.DeleteFunc(ctx, tenantID, locationID)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.locations, locationID)
	return nil
}

func (r *fakeLocationRepository) Get(_ context.Context, tenantID, locationID string) (*location.Location, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.locations[locationID]
	if !ok || l.TenantID() != tenantID {
		return nil, nil
	}
	return l, nil
}

func (r *fakeLocationRepository) ListByTenant(_ context.Context, tenantID string) ([]*location.Location, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listCalls++
	var out []*location.Location
	for _, l := range r.locations {
		if l.TenantID() == tenantID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt().Before(out[j].CreatedAt()) })
	return out, nil
}

func (r *fakeLocationRepository) CountByTenant(ctx context.Context, tenantID string) (int64, error) {
	locs, _ := r.ListByTenant(ctx, tenantID)
	return int64(len(locs)), nil
}

// fakeDataRepository keeps a record count per location and kind.
type fakeDataRepository struct {
	counts map[string]map[location.RecordKind]int64

	DeleteRecordsFunc func(ctx context.Context, tenantID, locationID string, kind location.RecordKind) error
}

func newFakeDataRepository() *fakeDataRepository {
	return &fakeDataRepository{counts: make(map[string]map[location.RecordKind]int64)}
}

func (r *fakeDataRepository) seed(locationID string, kind location.RecordKind, n int64) {
	if r.counts[locationID] == nil {
		r.counts[locationID] = make(map[location.RecordKind]int64)
	}
	r.counts[locationID][kind] = n
}

func (r *fakeDataRepository) DeleteRecords(ctx context.Context, tenantID, locationID string, kind location.RecordKind) error {
	if r.DeleteRecordsFunc != nil {
		return r.DeleteRecordsFunc(ctx, tenantID, locationID, kind)
	}
	delete(r.counts[locationID], kind)
	return nil
}

func (r *fakeDataRepository) CountRecords(_ context.Context, _, locationID string, kind location.RecordKind) (int64, error) {
	return r.counts[locationID][kind], nil
}

type fakeBranchRepository struct {
	branches map[string]*location.Branch

	UpsertFunc func(ctx context.Context, b *location.Branch) error
}

func newFakeBranchRepository() *fakeBranchRepository {
	return &fakeBranchRepository{branches: make(map[string]*location.Branch)}
}

func (r *fakeBranchRepository) Upsert(ctx context.Context, b *location.Branch) error {
	if r.UpsertFunc != nil {
		if err := r.UpsertFunc(ctx, b); err != nil {
			return err
		}
	}
	r.branches[b.ID] = b
	return nil
}

func (r *fakeBranchRepository) SoftDelete(_ context.Context, _, branchID string, at time.Time) error {
	if b, ok := r.branches[branchID]; ok {
		b.Deleted = true
		b.DeletedAt = &at
	}
	return nil
}

func (r *fakeBranchRepository) Get(_ context.Context, _, branchID string) (*location.Branch, error) {
	return r.branches[branchID], nil
}

func (r *fakeBranchRepository) ListByTenant(_ context.Context, tenantID string, includeDeleted bool) ([]*location.Branch, error) {
	var out []*location.Branch
	for _, b := range r.branches {
		if b.TenantID == tenantID && (includeDeleted || !b.Deleted) {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// passthroughTx runs fn directly; rollback is not modelled.
type passthroughTx struct{ calls int }

func (t *passthroughTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.calls++
	return fn(ctx)
}

type mockStateResolver struct {
	state *subscription.State
	err   error
}

func (m *mockStateResolver) Resolve(_ context.Context, _ string) (*subscription.State, error) {
	return m.state, m.err
}

type mockPublisher struct {
	mu     sync.Mutex
	events []events.ChangeEvent
}

func (m *mockPublisher) Publish(_ context.Context, ev events.ChangeEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
	return nil
}

func stateWithMaxLocations(n int64) *subscription.State {
	return &subscription.State{
		TenantID: "tn_1",
		Tier:     subscription.TierStarter,
		Status:   subscription.StatusActive,
		Limits:   subscription.Limits{subscription.LimitMaxLocations: n},
	}
}

type recordingInvalidator struct {
	mu      sync.Mutex
	tenants []string
}

func (r *recordingInvalidator) Invalidate(_ context.Context, tenantID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tenants = append(r.tenants, tenantID)
}

func (r *recordingInvalidator) calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.tenants...)
}
