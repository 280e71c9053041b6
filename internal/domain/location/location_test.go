package location

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLocation(t *testing.T, typ Type, created time.Time) *Location {
	t.Helper()
	l, err := NewLocation("tn_1", "Shop", typ, Address{}, Contact{}, Settings{}, created)
	require.NoError(t, err)
	return l
}

func TestNewLocationDefaults(t *testing.T) {
	l, err := NewLocation("tn_1", "  Downtown ", TypeBranch,
		Address{Street: "1 Main St", City: "Springfield"}, Contact{Phone: "555"}, Settings{}, time.Now())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(l.ID(), "loc_"))
	assert.Equal(t, "Downtown", l.Name())
	assert.Equal(t, StatusActive, l.Status())
	assert.Equal(t, DefaultTimezone, l.Settings().Timezone)
	assert.Equal(t, DefaultCurrency, l.Settings().Currency)
	assert.Equal(t, "1 Main St, Springfield", l.Address().String())
}

func TestSettingsValidate(t *testing.T) {
	tests := []struct {
		name     string
		settings Settings
		wantErr  bool
	}{
		{"empty", Settings{}, false},
		{"valid hours", Settings{BusinessHours: map[string]DayHours{"monday": {Open: "09:00", Close: "17:00"}}}, false},
		{"closed day", Settings{BusinessHours: map[string]DayHours{"sunday": {Closed: true}}}, false},
		{"bad timezone", Settings{Timezone: "Mars/Base"}, true},
		{"bad currency", Settings{Currency: "EURO"}, true},
		{"bad weekday", Settings{BusinessHours: map[string]DayHours{"funday": {Open: "09:00", Close: "10:00"}}}, true},
		{"inverted hours", Settings{BusinessHours: map[string]DayHours{"monday": {Open: "18:00", Close: "09:00"}}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.settings.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestBranchIDRoundTrip(t *testing.T) {
	branchID, err := BranchIDFor("loc_abc123")
	require.NoError(t, err)
	assert.Equal(t, "br_abc123", branchID)

	locID, err := LocationIDFor(branchID)
	require.NoError(t, err)
	assert.Equal(t, "loc_abc123", locID)

	_, err = BranchIDFor("br_abc123")
	assert.Error(t, err)
}

func TestProjectBranch(t *testing.T) {
	l, err := NewLocation("tn_1", "HQ", TypeMain, Address{City: "Paris"}, Contact{Phone: "1", Manager: "Ana"}, Settings{}, time.Now())
	require.NoError(t, err)

	b, err := ProjectBranch(l, time.Now())
	require.NoError(t, err)

	assert.Equal(t, strings.Replace(l.ID(), "loc_", "br_", 1), b.ID)
	assert.Equal(t, "Paris", b.Address)
	assert.Equal(t, "Ana", b.Manager)
	assert.True(t, b.IsMain)
	assert.False(t, b.Deleted)
}

func TestResolveMain(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	oldest := newTestLocation(t, TypeMain, base)
	newer := newTestLocation(t, TypeMain, base.Add(time.Hour))
	branch := newTestLocation(t, TypeBranch, base.Add(-time.Hour))

	main, demoted := ResolveMain([]*Location{newer, branch, oldest}, base.Add(2*time.Hour))

	assert.Same(t, oldest, main)
	require.Len(t, demoted, 1)
	assert.Same(t, newer, demoted[0])
	assert.Equal(t, TypeBranch, newer.Type())

	main, demoted = ResolveMain([]*Location{branch}, base)
	assert.Nil(t, main)
	assert.Empty(t, demoted)
}

func TestTypeForNew(t *testing.T) {
	typ, err := TypeForNew(TypeKiosk, false)
	require.NoError(t, err)
	assert.Equal(t, TypeMain, typ)

	typ, err = TypeForNew(TypeWarehouse, true)
	require.NoError(t, err)
	assert.Equal(t, TypeWarehouse, typ)

	_, err = TypeForNew(TypeMain, true)
	assert.ErrorIs(t, err, ErrMainAlreadyExists)
}

func TestCheckTypeChange(t *testing.T) {
	main := newTestLocation(t, TypeMain, time.Now())
	branch := newTestLocation(t, TypeBranch, time.Now())

	assert.ErrorIs(t, CheckTypeChange(main, TypeBranch, false), ErrMainTypeLocked)
	assert.NoError(t, CheckTypeChange(main, TypeMain, false))
	assert.ErrorIs(t, CheckTypeChange(branch, TypeMain, true), ErrMainAlreadyExists)
	assert.NoError(t, CheckTypeChange(branch, TypeMain, false))
	assert.NoError(t, CheckTypeChange(branch, TypeKiosk, true))
}

func TestPartialDeleteErrorMessage(t *testing.T) {
	err := &PartialDeleteError{LocationID: "loc_1", Remaining: []RecordKind{RecordInventory, RecordAnalytics}}
	assert.Equal(t, "location loc_1 partially deleted, remaining: inventory, analytics", err.Error())
}
