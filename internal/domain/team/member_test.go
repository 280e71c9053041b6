package team

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tillpoint/internal/domain/permission"
)

func TestNewMemberDefaults(t *testing.T) {
	now := time.Now()
	m, err := NewMember("tn_1", "u1", " Staff@Example.com ", "Sam", permission.RoleStaff,
		[]string{"loc_a", "loc_a", "", "loc_b"}, nil, now)
	require.NoError(t, err)

	assert.Equal(t, "staff@example.com", m.Email())
	assert.True(t, m.IsActive())
	assert.Equal(t, []string{"loc_a", "loc_b"}, m.LocationIDs())
	assert.Equal(t, permission.DefaultPermissions(permission.RoleStaff), m.Permissions())
}

func TestNewMemberValidation(t *testing.T) {
	_, err := NewMember("", "u1", "", "", permission.RoleStaff, nil, nil, time.Now())
	assert.Error(t, err)

	_, err = NewMember("tn_1", "u1", "", "", permission.Role("boss"), nil, nil, time.Now())
	assert.Error(t, err)
}

func TestCanAccessLocation(t *testing.T) {
	now := time.Now()
	staff, _ := NewMember("tn_1", "u1", "", "", permission.RoleStaff, []string{"loc_a"}, nil, now)
	owner, _ := NewMember("tn_1", "u2", "", "", permission.RoleOwner, nil, nil, now)

	assert.True(t, staff.CanAccessLocation("loc_a"))
	assert.False(t, staff.CanAccessLocation("loc_b"))
	assert.True(t, owner.CanAccessLocation("loc_b"))
}

func TestRemoveLocation(t *testing.T) {
	m, _ := NewMember("tn_1", "u1", "", "", permission.RoleStaff, []string{"loc_a", "loc_b"}, nil, time.Now())

	assert.True(t, m.RemoveLocation("loc_a", time.Now()))
	assert.False(t, m.RemoveLocation("loc_a", time.Now()))
	assert.Equal(t, []string{"loc_b"}, m.LocationIDs())
}

func TestLocationIDsIsCopy(t *testing.T) {
	m, _ := NewMember("tn_1", "u1", "", "", permission.RoleStaff, []string{"loc_a"}, nil, time.Now())
	ids := m.LocationIDs()
	ids[0] = "loc_z"

	assert.Equal(t, []string{"loc_a"}, m.LocationIDs())
}

func TestInvitationAccept(t *testing.T) {
	now := time.Now()
	inv, err := NewInvitation("tn_1", "New.Hire@example.com", permission.RoleManager,
		[]string{"loc_a"}, nil, "owner-1", 72*time.Hour, now)
	require.NoError(t, err)
	assert.NotEmpty(t, inv.Token())
	assert.Equal(t, "new.hire@example.com", inv.Email())

	m, err := inv.Accept("u9", "New Hire", now.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, permission.RoleManager, m.Role())
	assert.Equal(t, []string{"loc_a"}, m.LocationIDs())
	assert.Equal(t, InvitationAccepted, inv.Status())

	_, err = inv.Accept("u9", "", now.Add(2*time.Hour))
	assert.ErrorIs(t, err, ErrInvitationNotPending)
}

func TestInvitationExpired(t *testing.T) {
	now := time.Now()
	inv, err := NewInvitation("tn_1", "x@example.com", permission.RoleStaff, nil, nil, "o", time.Hour, now)
	require.NoError(t, err)

	_, err = inv.Accept("u1", "", now.Add(time.Hour))
	assert.ErrorIs(t, err, ErrInvitationExpired)
	assert.Equal(t, InvitationExpired, inv.Status())
}

func TestInvitationRejectsBadEmail(t *testing.T) {
	_, err := NewInvitation("tn_1", "not-an-email", permission.RoleStaff, nil, nil, "o", time.Hour, time.Now())
	assert.Error(t, err)
}
