package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tillpoint/internal/application/location/usecases"
	"tillpoint/internal/domain/location"
	"tillpoint/internal/interfaces/http/handlers/testutil"
	apperrors "tillpoint/internal/shared/errors"
	"tillpoint/internal/shared/logger"
)

var handlerNow = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

type mockListLocationsUC struct {
	result []*location.Location
	err    error
	got    usecases.ListLocationsQuery
}

func (m *mockListLocationsUC) Execute(ctx context.Context, q usecases.ListLocationsQuery) ([]*location.Location, error) {
	m.got = q
	return m.result, m.err
}

type mockCreateLocationUC struct {
	result *usecases.CreateLocationResult
	err    error
	got    usecases.CreateLocationCommand
}

func (m *mockCreateLocationUC) Execute(ctx context.Context, cmd usecases.CreateLocationCommand) (*usecases.CreateLocationResult, error) {
	m.got = cmd
	return m.result, m.err
}

type mockUpdateLocationUC struct {
	result *usecases.UpdateLocationResult
	err    error
}

func (m *mockUpdateLocationUC) Execute(ctx context.Context, cmd usecases.UpdateLocationCommand) (*usecases.UpdateLocationResult, error) {
	return m.result, m.err
}

type mockDeleteLocationUC struct {
	result *usecases.DeleteLocationResult
	err    error
	called bool
}

func (m *mockDeleteLocationUC) Execute(ctx context.Context, cmd usecases.DeleteLocationCommand) (*usecases.DeleteLocationResult, error) {
	m.called = true
	return m.result, m.err
}

type mockListBranchesUC struct {
	result []*location.Branch
	err    error
	got    usecases.ListBranchesQuery
}

func (m *mockListBranchesUC) Execute(ctx context.Context, q usecases.ListBranchesQuery) ([]*location.Branch, error) {
	m.got = q
	return m.result, m.err
}

func testLocation(name string) *location.Location {
	return location.ReconstructLocation("loc_abc123", "tn_shop", name, location.TypeBranch,
		location.Address{}, location.Contact{}, location.Settings{}, location.StatusActive, handlerNow, handlerNow)
}

func newLocationHandler(list *mockListLocationsUC, create *mockCreateLocationUC, del *mockDeleteLocationUC, branches *mockListBranchesUC) *LocationHandler {
	return NewLocationHandler(list, create, &mockUpdateLocationUC{}, del, branches, logger.NewNopLogger())
}

func TestLocationHandler_List(t *testing.T) {
	list := &mockListLocationsUC{result: []*location.Location{testLocation("Downtown")}}
	h := newLocationHandler(list, &mockCreateLocationUC{}, &mockDeleteLocationUC{}, &mockListBranchesUC{})

	c, w := testutil.NewTestContext(http.MethodGet, "/api/v1/tenants/tn_shop/locations", nil)
	testutil.SetTenantContext(c, "tn_shop", nil)
	testutil.SetQueryParams(c, map[string]string{"include_inactive": "true"})

	h.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "tn_shop", list.got.TenantID)
	assert.True(t, list.got.IncludeInactive)

	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	var locs []LocationResponse
	require.NoError(t, json.Unmarshal(resp.Data, &locs))
	require.Len(t, locs, 1)
	assert.Equal(t, "Downtown", locs[0].Name)
}

func TestLocationHandler_Create(t *testing.T) {
	t.Run("returns the projection warning with the location", func(t *testing.T) {
		create := &mockCreateLocationUC{result: &usecases.CreateLocationResult{
			Location: testLocation("Uptown"),
			Warning:  errors.New("branch projection not written"),
		}}
		h := newLocationHandler(&mockListLocationsUC{}, create, &mockDeleteLocationUC{}, &mockListBranchesUC{})

		c, w := testutil.NewTestContext(http.MethodPost, "/api/v1/tenants/tn_shop/locations",
			map[string]any{"name": "Uptown", "type": "branch"})
		testutil.SetTenantContext(c, "tn_shop", nil)

		h.Create(c)

		require.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "tn_shop", create.got.TenantID)
		assert.Equal(t, "Uptown", create.got.Name)

		var resp testutil.APIResponse
		require.NoError(t, testutil.ParseResponse(w, &resp))
		var out MutationResponse
		require.NoError(t, json.Unmarshal(resp.Data, &out))
		require.NotNil(t, out.Location)
		assert.Equal(t, "Uptown", out.Location.Name)
		assert.Equal(t, "branch projection not written", out.Warning)
	})

	t.Run("malformed body", func(t *testing.T) {
		h := newLocationHandler(&mockListLocationsUC{}, &mockCreateLocationUC{}, &mockDeleteLocationUC{}, &mockListBranchesUC{})
		c, w := testutil.NewTestContext(http.MethodPost, "/api/v1/tenants/tn_shop/locations", "not an object")
		testutil.SetTenantContext(c, "tn_shop", nil)

		h.Create(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("persistence failure", func(t *testing.T) {
		create := &mockCreateLocationUC{err: apperrors.NewPersistenceError("failed to create location")}
		h := newLocationHandler(&mockListLocationsUC{}, create, &mockDeleteLocationUC{}, &mockListBranchesUC{})
		c, w := testutil.NewTestContext(http.MethodPost, "/api/v1/tenants/tn_shop/locations",
			map[string]any{"name": "Uptown"})
		testutil.SetTenantContext(c, "tn_shop", nil)

		h.Create(c)

		require.Equal(t, http.StatusServiceUnavailable, w.Code)
		var resp testutil.APIResponse
		require.NoError(t, testutil.ParseResponse(w, &resp))
		require.NotNil(t, resp.Error)
		assert.Equal(t, string(apperrors.ErrorTypePersistence), resp.Error.Type)
	})
}

func TestLocationHandler_Delete(t *testing.T) {
	t.Run("rejects an id with the wrong prefix", func(t *testing.T) {
		del := &mockDeleteLocationUC{}
		h := newLocationHandler(&mockListLocationsUC{}, &mockCreateLocationUC{}, del, &mockListBranchesUC{})
		c, w := testutil.NewTestContext(http.MethodDelete, "/api/v1/tenants/tn_shop/locations/br_abc123", nil)
		testutil.SetTenantContext(c, "tn_shop", nil)
		testutil.SetURLParam(c, "locationID", "br_abc123")

		h.Delete(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.False(t, del.called)
	})

	t.Run("deleted", func(t *testing.T) {
		del := &mockDeleteLocationUC{result: &usecases.DeleteLocationResult{LocationID: "loc_abc123"}}
		h := newLocationHandler(&mockListLocationsUC{}, &mockCreateLocationUC{}, del, &mockListBranchesUC{})
		c, w := testutil.NewTestContext(http.MethodDelete, "/api/v1/tenants/tn_shop/locations/loc_abc123", nil)
		testutil.SetTenantContext(c, "tn_shop", nil)
		testutil.SetURLParam(c, "locationID", "loc_abc123")

		h.Delete(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, del.called)
	})
}

func TestLocationHandler_ListBranches(t *testing.T) {
	branches := &mockListBranchesUC{result: []*location.Branch{{ID: "br_abc123", LocationID: "loc_abc123", Name: "Downtown"}}}
	h := newLocationHandler(&mockListLocationsUC{}, &mockCreateLocationUC{}, &mockDeleteLocationUC{}, branches)

	c, w := testutil.NewTestContext(http.MethodGet, "/api/v1/tenants/tn_shop/branches", nil)
	testutil.SetTenantContext(c, "tn_shop", nil)
	testutil.SetQueryParams(c, map[string]string{"include_deleted": "1"})

	h.ListBranches(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, branches.got.IncludeDeleted)

	var resp testutil.APIResponse
	require.NoError(t, testutil.ParseResponse(w, &resp))
	var out []BranchResponse
	require.NoError(t, json.Unmarshal(resp.Data, &out))
	require.Len(t, out, 1)
	assert.Equal(t, "loc_abc123", out[0].LocationID)
}
