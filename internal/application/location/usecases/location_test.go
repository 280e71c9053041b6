package usecases

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tillpoint/internal/domain/location"
	"tillpoint/internal/domain/shared/events"
	"tillpoint/internal/domain/tenant"
	apperrors "tillpoint/internal/shared/errors"
	"tillpoint/internal/shared/logger"
)

var base = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func newLocation(t *testing.T, name string, typ location.Type, createdAt time.Time) *location.Location {
	t.Helper()
	l, err := location.NewLocation("tn_1", name, typ, location.Address{City: "Lisbon"}, location.Contact{}, location.Settings{}, createdAt)
	require.NoError(t, err)
	return l
}

type harness struct {
	repo     *fakeLocationRepository
	data     *fakeDataRepository
	branches *fakeBranchRepository
	tx       *passthroughTx
	pub      *mockPublisher
	inv      *recordingInvalidator
	sync     *BranchSync
}

func newHarness(locs ...*location.Location) *harness {
	h := &harness{
		repo:     newFakeLocationRepository(locs...),
		data:     newFakeDataRepository(),
		branches: newFakeBranchRepository(),
		tx:       &passthroughTx{},
		pub:      &mockPublisher{},
		inv:      &recordingInvalidator{},
	}
	h.sync = NewBranchSync(h.branches, logger.NewNopLogger())
	return h
}

func (h *harness) mains(t *testing.T) []*location.Location {
	t.Helper()
	locs, err := h.repo.ListByTenant(context.Background(), "tn_1")
	require.NoError(t, err)
	var out []*location.Location
	for _, l := range locs {
		if l.IsMain() {
			out = append(out, l)
		}
	}
	return out
}

func TestEnsureMainCreatesDefault(t *testing.T) {
	h := newHarness()
	uc := NewEnsureMainUseCase(h.repo, h.tx, h.inv, h.sync, h.pub, logger.NewNopLogger())

	main, err := uc.Execute(context.Background(), "tn_1")
	require.NoError(t, err)

	assert.Equal(t, "Main Location", main.Name())
	assert.Len(t, h.mains(t), 1)

	branchID, err := location.BranchIDFor(main.ID())
	require.NoError(t, err)
	require.Contains(t, h.branches.branches, branchID)
	assert.True(t, h.branches.branches[branchID].IsMain)

	require.Len(t, h.pub.events, 1)
	assert.Equal(t, events.ChangeLocations, h.pub.events[0].Kind)
	assert.Equal(t, []string{"tn_1"}, h.inv.calls())
}

func TestEnsureMainDemotesExtraMains(t *testing.T) {
	oldest := newLocation(t, "Downtown", location.TypeMain, base)
	newer := newLocation(t, "Airport", location.TypeMain, base.Add(time.Hour))
	h := newHarness(newer, oldest)
	uc := NewEnsureMainUseCase(h.repo, h.tx, h.inv, h.sync, h.pub, logger.NewNopLogger())

	main, err := uc.Execute(context.Background(), "tn_1")
	require.NoError(t, err)

	assert.Equal(t, oldest.ID(), main.ID())
	assert.Equal(t, location.TypeBranch, newer.Type())
	assert.Len(t, h.mains(t), 1)
}

func TestEnsureMainNoChangeIsQuiet(t *testing.T) {
	h := newHarness(newLocation(t, "Downtown", location.TypeMain, base))
	uc := NewEnsureMainUseCase(h.repo, h.tx, h.inv, h.sync, h.pub, logger.NewNopLogger())

	_, err := uc.Execute(context.Background(), "tn_1")
	require.NoError(t, err)
	assert.Empty(t, h.pub.events)
	assert.Empty(t, h.branches.branches)
	assert.Empty(t, h.inv.calls())
}

func TestEnsureMainConcurrentCallsCreateOneMain(t *testing.T) {
	h := newHarness()
	uc := NewEnsureMainUseCase(h.repo, h.tx, h.inv, h.sync, h.pub, logger.NewNopLogger())

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := uc.Execute(context.Background(), "tn_1")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Len(t, h.mains(t), 1)
}

func TestListLocations(t *testing.T) {
	main := newLocation(t, "Downtown", location.TypeMain, base)
	closed := newLocation(t, "Harbour", location.TypeBranch, base.Add(time.Hour))
	require.NoError(t, closed.ChangeStatus(location.StatusInactive, base))
	h := newHarness(main, closed)

	ensure := NewEnsureMainUseCase(h.repo, h.tx, h.inv, h.sync, h.pub, logger.NewNopLogger())
	uc := NewListLocationsUseCase(h.repo, ensure, logger.NewNopLogger())

	active, err := uc.Execute(context.Background(), ListLocationsQuery{TenantID: "tn_1"})
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, main.ID(), active[0].ID())

	all, err := uc.Execute(context.Background(), ListLocationsQuery{TenantID: "tn_1", IncludeInactive: true})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestCreateLocation(t *testing.T) {
	t.Run("first location becomes main", func(t *testing.T) {
		h := newHarness()
		uc := NewCreateLocationUseCase(h.repo, h.tx, &mockStateResolver{state: stateWithMaxLocations(3)}, h.inv, h.sync, h.pub, logger.NewNopLogger())

		res, err := uc.Execute(context.Background(), CreateLocationCommand{TenantID: "tn_1", Name: "Shop", Type: "kiosk"})
		require.NoError(t, err)
		assert.Equal(t, location.TypeMain, res.Location.Type())
		assert.NoError(t, res.Warning)
		assert.Len(t, h.pub.events, 1)
		assert.Equal(t, []string{"tn_1"}, h.inv.calls())
	})

	t.Run("second main is rejected", func(t *testing.T) {
		h := newHarness(newLocation(t, "Downtown", location.TypeMain, base))
		uc := NewCreateLocationUseCase(h.repo, h.tx, &mockStateResolver{state: stateWithMaxLocations(3)}, h.inv, h.sync, h.pub, logger.NewNopLogger())

		_, err := uc.Execute(context.Background(), CreateLocationCommand{TenantID: "tn_1", Name: "Other", Type: "main"})
		require.Error(t, err)
		assert.True(t, apperrors.IsConflictError(err))
		assert.Len(t, h.mains(t), 1)
	})

	t.Run("defaults to branch and strips markup", func(t *testing.T) {
		h := newHarness(newLocation(t, "Downtown", location.TypeMain, base))
		uc := NewCreateLocationUseCase(h.repo, h.tx, &mockStateResolver{state: stateWithMaxLocations(3)}, h.inv, h.sync, h.pub, logger.NewNopLogger())

		res, err := uc.Execute(context.Background(), CreateLocationCommand{TenantID: "tn_1", Name: "<b>Harbour</b>"})
		require.NoError(t, err)
		assert.Equal(t, location.TypeBranch, res.Location.Type())
		assert.Equal(t, "Harbour", res.Location.Name())
	})

	t.Run("location limit reached", func(t *testing.T) {
		h := newHarness(newLocation(t, "Downtown", location.TypeMain, base))
		uc := NewCreateLocationUseCase(h.repo, h.tx, &mockStateResolver{state: stateWithMaxLocations(1)}, h.inv, h.sync, h.pub, logger.NewNopLogger())

		_, err := uc.Execute(context.Background(), CreateLocationCommand{TenantID: "tn_1", Name: "Harbour"})
		require.Error(t, err)
		assert.True(t, apperrors.IsForbiddenError(err))
		assert.Empty(t, h.pub.events)
		assert.Empty(t, h.inv.calls())
	})

	t.Run("unlimited plan", func(t *testing.T) {
		h := newHarness(newLocation(t, "Downtown", location.TypeMain, base))
		uc := NewCreateLocationUseCase(h.repo, h.tx, &mockStateResolver{state: stateWithMaxLocations(-1)}, h.inv, h.sync, h.pub, logger.NewNopLogger())

		_, err := uc.Execute(context.Background(), CreateLocationCommand{TenantID: "tn_1", Name: "Harbour"})
		require.NoError(t, err)
	})

	t.Run("projection failure is a warning", func(t *testing.T) {
		h := newHarness(newLocation(t, "Downtown", location.TypeMain, base))
		h.branches.UpsertFunc = func(context.Context, *location.Branch) error { return errors.New("branch store down") }
		uc := NewCreateLocationUseCase(h.repo, h.tx, &mockStateResolver{state: stateWithMaxLocations(3)}, h.inv, h.sync, h.pub, logger.NewNopLogger())

		res, err := uc.Execute(context.Background(), CreateLocationCommand{TenantID: "tn_1", Name: "Harbour"})
		require.NoError(t, err)

		var syncErr *location.ProjectionSyncError
		require.ErrorAs(t, res.Warning, &syncErr)
		assert.Equal(t, res.Location.ID(), syncErr.LocationID)

		stored, err := h.repo.Get(context.Background(), "tn_1", res.Location.ID())
		require.NoError(t, err)
		assert.NotNil(t, stored)
	})

	t.Run("invalid input", func(t *testing.T) {
		h := newHarness()
		uc := NewCreateLocationUseCase(h.repo, h.tx, &mockStateResolver{state: stateWithMaxLocations(3)}, h.inv, h.sync, h.pub, logger.NewNopLogger())

		_, err := uc.Execute(context.Background(), CreateLocationCommand{TenantID: "tn_1", Name: "Shop", Type: "castle"})
		assert.True(t, apperrors.IsValidationError(err))

		_, err = uc.Execute(context.Background(), CreateLocationCommand{
			TenantID: "tn_1",
			Name:     "Shop",
			Settings: location.Settings{Timezone: "Mars/Olympus"},
		})
		assert.True(t, apperrors.IsValidationError(err))
	})
}

func TestUpdateLocation(t *testing.T) {
	main := newLocation(t, "Downtown", location.TypeMain, base)
	branch := newLocation(t, "Harbour", location.TypeBranch, base.Add(time.Hour))

	strp := func(s string) *string { return &s }

	tests := []struct {
		name  string
		cmd   UpdateLocationCommand
		check func(t *testing.T, err error)
	}{
		{
			name: "main cannot be demoted",
			cmd:  UpdateLocationCommand{LocationID: main.ID(), Type: strp("branch")},
			check: func(t *testing.T, err error) {
				assert.True(t, apperrors.IsValidationError(err))
			},
		},
		{
			name: "second main is rejected",
			cmd:  UpdateLocationCommand{LocationID: branch.ID(), Type: strp("main")},
			check: func(t *testing.T, err error) {
				assert.True(t, apperrors.IsConflictError(err))
			},
		},
		{
			name: "unknown location",
			cmd:  UpdateLocationCommand{LocationID: "loc_missing", Name: strp("x")},
			check: func(t *testing.T, err error) {
				assert.True(t, apperrors.IsNotFoundError(err))
			},
		},
		{
			name: "rename and close",
			cmd:  UpdateLocationCommand{LocationID: branch.ID(), Name: strp("Harbour East"), Status: strp("maintenance")},
			check: func(t *testing.T, err error) {
				require.NoError(t, err)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(main, branch)
			uc := NewUpdateLocationUseCase(h.repo, h.tx, h.sync, h.pub, logger.NewNopLogger())
			tt.cmd.TenantID = "tn_1"

			res, err := uc.Execute(context.Background(), tt.cmd)
			tt.check(t, err)
			if err == nil {
				assert.Equal(t, "Harbour East", res.Location.Name())
				assert.Equal(t, location.StatusMaintenance, res.Location.Status())
				assert.Len(t, h.pub.events, 1)
			}
		})
	}
}

func seededDelete(t *testing.T) (*harness, *location.Location, *DeleteLocationUseCase) {
	t.Helper()
	main := newLocation(t, "Downtown", location.TypeMain, base)
	branch := newLocation(t, "Harbour", location.TypeBranch, base.Add(time.Hour))
	h := newHarness(main, branch)
	for _, kind := range location.DependentRecords {
		h.data.seed(branch.ID(), kind, 5)
	}
	require.NoError(t, h.sync.Upsert(context.Background(), branch, base))

	uc := NewDeleteLocationUseCase(h.repo, h.data, h.tx, h.inv, h.sync, h.pub, logger.NewNopLogger())
	uc.backoff = func() retry.Backoff {
		return retry.WithMaxRetries(2, retry.NewConstant(time.Millisecond))
	}
	return h, branch, uc
}

func TestDeleteLocation(t *testing.T) {
	h, branch, uc := seededDelete(t)

	res, err := uc.Execute(context.Background(), DeleteLocationCommand{TenantID: "tn_1", LocationID: branch.ID()})
	require.NoError(t, err)
	assert.NoError(t, res.Warning)
	assert.Equal(t, 1, h.tx.calls)

	stored, _ := h.repo.Get(context.Background(), "tn_1", branch.ID())
	assert.Nil(t, stored)
	for _, kind := range location.DependentRecords {
		n, _ := h.data.CountRecords(context.Background(), "tn_1", branch.ID(), kind)
		assert.Zero(t, n, kind)
	}

	branchID, _ := location.BranchIDFor(branch.ID())
	assert.True(t, h.branches.branches[branchID].Deleted)
	require.Len(t, h.pub.events, 1)
	assert.Equal(t, []string{"tn_1"}, h.inv.calls())
}

func TestDeleteLocationRejectsMain(t *testing.T) {
	h := newHarness(newLocation(t, "Downtown", location.TypeMain, base))
	uc := NewDeleteLocationUseCase(h.repo, h.data, h.tx, h.inv, h.sync, h.pub, logger.NewNopLogger())

	main := h.mains(t)[0]
	_, err := uc.Execute(context.Background(), DeleteLocationCommand{TenantID: "tn_1", LocationID: main.ID()})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidationError(err))
	assert.Len(t, h.mains(t), 1)
}

func TestDeleteLocationNotFound(t *testing.T) {
	h := newHarness()
	uc := NewDeleteLocationUseCase(h.repo, h.data, h.tx, h.inv, h.sync, h.pub, logger.NewNopLogger())

	_, err := uc.Execute(context.Background(), DeleteLocationCommand{TenantID: "tn_1", LocationID: "loc_nope"})
	assert.True(t, apperrors.IsNotFoundError(err))
}

func TestDeleteLocationTransactionFailure(t *testing.T) {
	h, branch, uc := seededDelete(t)
	h.data.DeleteRecordsFunc = func(context.Context, string, string, location.RecordKind) error {
		return errors.New("deadlock")
	}

	_, err := uc.Execute(context.Background(), DeleteLocationCommand{TenantID: "tn_1", LocationID: branch.ID()})
	require.Error(t, err)
	assert.True(t, apperrors.IsPersistenceError(err))
	assert.Empty(t, h.pub.events)
	assert.Empty(t, h.inv.calls())
}

func TestDeleteLocationCompensates(t *testing.T) {
	h, branch, uc := seededDelete(t)
	skipped := false
	h.data.DeleteRecordsFunc = func(_ context.Context, _, locationID string, kind location.RecordKind) error {
		if kind == location.RecordInventory && !skipped {
			skipped = true
			return nil
		}
		delete(h.data.counts[locationID], kind)
		return nil
	}

	_, err := uc.Execute(context.Background(), DeleteLocationCommand{TenantID: "tn_1", LocationID: branch.ID()})
	require.NoError(t, err)

	n, _ := h.data.CountRecords(context.Background(), "tn_1", branch.ID(), location.RecordInventory)
	assert.Zero(t, n)
}

func TestDeleteLocationPartial(t *testing.T) {
	h, branch, uc := seededDelete(t)
	h.data.DeleteRecordsFunc = func(_ context.Context, _, locationID string, kind location.RecordKind) error {
		if kind == location.RecordAnalytics {
			return nil
		}
		delete(h.data.counts[locationID], kind)
		return nil
	}

	_, err := uc.Execute(context.Background(), DeleteLocationCommand{TenantID: "tn_1", LocationID: branch.ID()})
	require.Error(t, err)

	var partial *location.PartialDeleteError
	require.ErrorAs(t, err, &partial)
	assert.Equal(t, branch.ID(), partial.LocationID)
	assert.Equal(t, []location.RecordKind{location.RecordAnalytics}, partial.Remaining)
	assert.Empty(t, h.pub.events)
	// The location row is gone, so the cached count is already stale.
	assert.Equal(t, []string{"tn_1"}, h.inv.calls())
}

type fakeTenantRepository struct{ tenants []*tenant.Tenant }

func (r *fakeTenantRepository) Create(context.Context, *tenant.Tenant) error { return nil }
func (r *fakeTenantRepository) GetByID(_ context.Context, id string) (*tenant.Tenant, error) {
	for _, t := range r.tenants {
		if t.ID() == id {
			return t, nil
		}
	}
	return nil, tenant.ErrTenantNotFound
}
func (r *fakeTenantRepository) List(context.Context) ([]*tenant.Tenant, error) { return r.tenants, nil }
func (r *fakeTenantRepository) ListByOwner(context.Context, string) ([]*tenant.Tenant, error) {
	return nil, nil
}

func TestReconcileBranches(t *testing.T) {
	main := newLocation(t, "Downtown", location.TypeMain, base)
	renamed := newLocation(t, "Harbour", location.TypeBranch, base.Add(time.Hour))
	h := newHarness(main, renamed)

	require.NoError(t, h.sync.Upsert(context.Background(), renamed, base))
	require.NoError(t, renamed.Rename("Harbour East", base))

	orphan := &location.Branch{ID: "br_gone1234", LocationID: "loc_gone1234", TenantID: "tn_1", Name: "Gone"}
	h.branches.branches[orphan.ID] = orphan

	tenants := &fakeTenantRepository{tenants: []*tenant.Tenant{tenant.ReconstructTenant("tn_1", "Acme", "u1", base)}}
	uc := NewReconcileBranchesUseCase(tenants, h.repo, h.branches, h.sync, logger.NewNopLogger())

	n, err := uc.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	live, err := h.branches.ListByTenant(context.Background(), "tn_1", false)
	require.NoError(t, err)
	require.Len(t, live, 2)
	assert.True(t, orphan.Deleted)

	n, err = uc.Execute(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}
