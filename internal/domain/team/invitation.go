package team

import (
	"fmt"
	"net/mail"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"tillpoint/internal/domain/permission"
	"tillpoint/internal/shared/id"
)

type InvitationStatus string

const (
	InvitationPending  InvitationStatus = "pending"
	InvitationAccepted InvitationStatus = "accepted"
	InvitationRevoked  InvitationStatus = "revoked"
	InvitationExpired  InvitationStatus = "expired"
)

// Invitation is a pending offer of membership. Accepting it creates an
// active Member carrying the invitation's role, locations and permissions.
type Invitation struct {
	id          string
	tenantID    string
	email       string
	role        permission.Role
	locationIDs []string
	permissions permission.List
	token       string
	status      InvitationStatus
	invitedBy   string
	expiresAt   time.Time
	createdAt   time.Time
	acceptedAt  *time.Time
}

func NewInvitation(
	tenantID, email string,
	role permission.Role,
	locationIDs []string,
	perms permission.List,
	invitedBy string,
	ttl time.Duration,
	now time.Time,
) (*Invitation, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(email))
	if err != nil {
		return nil, fmt.Errorf("invalid email: %w", err)
	}
	if !role.IsValid() {
		return nil, fmt.Errorf("invalid role: %s", role)
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("invitation ttl must be positive")
	}
	if perms == nil {
		perms = permission.DefaultPermissions(role)
	}
	invID, err := id.GenerateWithPrefix(id.PrefixInvitation)
	if err != nil {
		return nil, err
	}
	return &Invitation{
		id:          invID,
		tenantID:    tenantID,
		email:       strings.ToLower(addr.Address),
		role:        role,
		locationIDs: dedupe(locationIDs),
		permissions: perms,
		token:       uuid.NewString(),
		status:      InvitationPending,
		invitedBy:   invitedBy,
		expiresAt:   now.Add(ttl),
		createdAt:   now,
	}, nil
}

func ReconstructInvitation(
	invID, tenantID, email string,
	role permission.Role,
	locationIDs []string,
	perms permission.List,
	token string,
	status InvitationStatus,
	invitedBy string,
	expiresAt, createdAt time.Time,
	acceptedAt *time.Time,
) *Invitation {
	return &Invitation{
		id:          invID,
		tenantID:    tenantID,
		email:       email,
		role:        role,
		locationIDs: locationIDs,
		permissions: perms,
		token:       token,
		status:      status,
		invitedBy:   invitedBy,
		expiresAt:   expiresAt,
		createdAt:   createdAt,
		acceptedAt:  acceptedAt,
	}
}

func (i *Invitation) ID() string                   { return i.id }
func (i *Invitation) TenantID() string             { return i.tenantID }
func (i *Invitation) Email() string                { return i.email }
func (i *Invitation) Role() permission.Role        { return i.role }
func (i *Invitation) LocationIDs() []string        { return slices.Clone(i.locationIDs) }
func (i *Invitation) Permissions() permission.List { return slices.Clone(i.permissions) }
func (i *Invitation) Token() string                { return i.token }
func (i *Invitation) Status() InvitationStatus     { return i.status }
func (i *Invitation) InvitedBy() string            { return i.invitedBy }
func (i *Invitation) ExpiresAt() time.Time         { return i.expiresAt }
func (i *Invitation) CreatedAt() time.Time         { return i.createdAt }
func (i *Invitation) AcceptedAt() *time.Time       { return i.acceptedAt }

// Accept consumes the invitation and returns the member it creates.
func (i *Invitation) Accept(userID, displayName string, now time.Time) (*Member, error) {
	if i.status != InvitationPending {
		return nil, ErrInvitationNotPending
	}
	if !now.Before(i.expiresAt) {
		i.status = InvitationExpired
		return nil, ErrInvitationExpired
	}

	m, err := NewMember(i.tenantID, userID, i.email, displayName, i.role, i.locationIDs, i.Permissions(), now)
	if err != nil {
		return nil, err
	}
	i.status = InvitationAccepted
	i.acceptedAt = &now
	return m, nil
}

func (i *Invitation) Revoke() error {
	if i.status != InvitationPending {
		return ErrInvitationNotPending
	}
	i.status = InvitationRevoked
	return nil
}
