// Package team models tenant membership: who belongs to a tenant, in which
// role, at which locations, with which explicit permissions.
package team

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"tillpoint/internal/domain/permission"
)

type MemberStatus string

const (
	MemberStatusActive   MemberStatus = "active"
	MemberStatusInactive MemberStatus = "inactive"
	MemberStatusPending  MemberStatus = "pending"
)

func (s MemberStatus) IsValid() bool {
	return s == MemberStatusActive || s == MemberStatusInactive || s == MemberStatusPending
}

// Member is keyed by (tenantID, userID). Owners implicitly reach every
// location regardless of their stored location list.
type Member struct {
	id          uint
	tenantID    string
	userID      string
	email       string
	displayName string
	role        permission.Role
	status      MemberStatus
	locationIDs []string
	permissions permission.List
	joinedAt    time.Time
	updatedAt   time.Time
	lastLogin   *time.Time
}

// NewMember creates an active member. A nil permission list gets the
// role's defaults.
func NewMember(
	tenantID, userID, email, displayName string,
	role permission.Role,
	locationIDs []string,
	perms permission.List,
	now time.Time,
) (*Member, error) {
	if tenantID == "" || userID == "" {
		return nil, fmt.Errorf("tenant ID and user ID are required")
	}
	if !role.IsValid() {
		return nil, fmt.Errorf("invalid role: %s", role)
	}
	if perms == nil {
		perms = permission.DefaultPermissions(role)
	}
	return &Member{
		tenantID:    tenantID,
		userID:      userID,
		email:       strings.ToLower(strings.TrimSpace(email)),
		displayName: displayName,
		role:        role,
		status:      MemberStatusActive,
		locationIDs: dedupe(locationIDs),
		permissions: perms,
		joinedAt:    now,
		updatedAt:   now,
	}, nil
}

func ReconstructMember(
	id uint,
	tenantID, userID, email, displayName string,
	role permission.Role,
	status MemberStatus,
	locationIDs []string,
	perms permission.List,
	joinedAt, updatedAt time.Time,
	lastLogin *time.Time,
) *Member {
	return &Member{
		id:          id,
		tenantID:    tenantID,
		userID:      userID,
		email:       email,
		displayName: displayName,
		role:        role,
		status:      status,
		locationIDs: locationIDs,
		permissions: perms,
		joinedAt:    joinedAt,
		updatedAt:   updatedAt,
		lastLogin:   lastLogin,
	}
}

func (m *Member) ID() uint                     { return m.id }
func (m *Member) TenantID() string             { return m.tenantID }
func (m *Member) UserID() string               { return m.userID }
func (m *Member) Email() string                { return m.email }
func (m *Member) DisplayName() string          { return m.displayName }
func (m *Member) Role() permission.Role        { return m.role }
func (m *Member) Status() MemberStatus         { return m.status }
func (m *Member) LocationIDs() []string        { return slices.Clone(m.locationIDs) }
func (m *Member) Permissions() permission.List { return slices.Clone(m.permissions) }
func (m *Member) JoinedAt() time.Time          { return m.joinedAt }
func (m *Member) UpdatedAt() time.Time         { return m.updatedAt }
func (m *Member) LastLogin() *time.Time        { return m.lastLogin }
func (m *Member) IsActive() bool               { return m.status == MemberStatusActive }
func (m *Member) IsOwner() bool                { return m.role.IsOwner() }

// HasPermission reports whether the explicit list grants p or holds the wildcard.
func (m *Member) HasPermission(p permission.Permission) bool {
	return m.permissions.Grants(p)
}

func (m *Member) SetID(id uint) {
	m.id = id
}

// CanAccessLocation is true for owners and for members whose location
// list contains locationID.
func (m *Member) CanAccessLocation(locationID string) bool {
	return m.role.IsOwner() || slices.Contains(m.locationIDs, locationID)
}

func (m *Member) ChangeRole(role permission.Role, now time.Time) error {
	if !role.IsValid() {
		return fmt.Errorf("invalid role: %s", role)
	}
	m.role = role
	m.updatedAt = now
	return nil
}

func (m *Member) ChangeStatus(status MemberStatus, now time.Time) error {
	if !status.IsValid() {
		return fmt.Errorf("invalid member status: %s", status)
	}
	m.status = status
	m.updatedAt = now
	return nil
}

func (m *Member) AssignLocations(locationIDs []string, now time.Time) {
	m.locationIDs = dedupe(locationIDs)
	m.updatedAt = now
}

// RemoveLocation drops locationID from the member's list. It reports
// whether the list changed.
func (m *Member) RemoveLocation(locationID string, now time.Time) bool {
	i := slices.Index(m.locationIDs, locationID)
	if i < 0 {
		return false
	}
	m.locationIDs = slices.Delete(m.locationIDs, i, i+1)
	m.updatedAt = now
	return true
}

func (m *Member) GrantPermissions(perms permission.List, now time.Time) {
	m.permissions = slices.Clone(perms)
	m.updatedAt = now
}

func (m *Member) RecordLogin(now time.Time) {
	m.lastLogin = &now
}

func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != "" && !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}
