package handlers

import (
	"time"

	"tillpoint/internal/domain/location"
	"tillpoint/internal/domain/subscription"
	"tillpoint/internal/domain/team"
	"tillpoint/internal/domain/tenant"
)

type TenantResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	OwnerUserID string    `json:"ownerUserId"`
	CreatedAt   time.Time `json:"createdAt"`
	Role        string    `json:"role,omitempty"`
}

func toTenantResponse(t *tenant.Tenant) TenantResponse {
	return TenantResponse{
		ID:          t.ID(),
		Name:        t.Name(),
		OwnerUserID: t.OwnerUserID(),
		CreatedAt:   t.CreatedAt(),
	}
}

type LocationResponse struct {
	ID        string            `json:"id"`
	TenantID  string            `json:"tenantId"`
	Name      string            `json:"name"`
	Type      string            `json:"type"`
	Status    string            `json:"status"`
	Address   location.Address  `json:"address"`
	Contact   location.Contact  `json:"contact"`
	Settings  location.Settings `json:"settings"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

func toLocationResponse(l *location.Location) LocationResponse {
	return LocationResponse{
		ID:        l.ID(),
		TenantID:  l.TenantID(),
		Name:      l.Name(),
		Type:      string(l.Type()),
		Status:    string(l.Status()),
		Address:   l.Address(),
		Contact:   l.Contact(),
		Settings:  l.Settings(),
		CreatedAt: l.CreatedAt(),
		UpdatedAt: l.UpdatedAt(),
	}
}

func toLocationResponses(locs []*location.Location) []LocationResponse {
	out := make([]LocationResponse, len(locs))
	for i, l := range locs {
		out[i] = toLocationResponse(l)
	}
	return out
}

// MutationResponse wraps a write result with its non-fatal warning.
type MutationResponse struct {
	Location *LocationResponse `json:"location,omitempty"`
	Warning  string            `json:"warning,omitempty"`
}

func warningText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

type BranchResponse struct {
	ID         string               `json:"id"`
	LocationID string               `json:"locationId"`
	Name       string               `json:"name"`
	Address    string               `json:"address"`
	Phone      string               `json:"phone,omitempty"`
	Manager    string               `json:"manager,omitempty"`
	IsMain     bool                 `json:"isMain"`
	Stats      location.BranchStats `json:"stats"`
	Deleted    bool                 `json:"deleted"`
	DeletedAt  *time.Time           `json:"deletedAt,omitempty"`
}

func toBranchResponses(bs []*location.Branch) []BranchResponse {
	out := make([]BranchResponse, len(bs))
	for i, b := range bs {
		out[i] = BranchResponse{
			ID:         b.ID,
			LocationID: b.LocationID,
			Name:       b.Name,
			Address:    b.Address,
			Phone:      b.Phone,
			Manager:    b.Manager,
			IsMain:     b.IsMain,
			Stats:      b.Stats,
			Deleted:    b.Deleted,
			DeletedAt:  b.DeletedAt,
		}
	}
	return out
}

type MemberResponse struct {
	UserID      string     `json:"userId"`
	Email       string     `json:"email,omitempty"`
	DisplayName string     `json:"displayName,omitempty"`
	Role        string     `json:"role"`
	Status      string     `json:"status"`
	LocationIDs []string   `json:"locationIds"`
	Permissions []string   `json:"permissions"`
	JoinedAt    time.Time  `json:"joinedAt"`
	LastLogin   *time.Time `json:"lastLogin,omitempty"`
}

func toMemberResponse(m *team.Member) MemberResponse {
	perms := m.Permissions()
	raw := make([]string, len(perms))
	for i, p := range perms {
		raw[i] = string(p)
	}
	return MemberResponse{
		UserID:      m.UserID(),
		Email:       m.Email(),
		DisplayName: m.DisplayName(),
		Role:        string(m.Role()),
		Status:      string(m.Status()),
		LocationIDs: m.LocationIDs(),
		Permissions: raw,
		JoinedAt:    m.JoinedAt(),
		LastLogin:   m.LastLogin(),
	}
}

type InvitationResponse struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	LocationIDs []string  `json:"locationIds"`
	Status      string    `json:"status"`
	InvitedBy   string    `json:"invitedBy"`
	ExpiresAt   time.Time `json:"expiresAt"`
	// Token is only returned to the inviter on creation.
	Token string `json:"token,omitempty"`
}

func toInvitationResponse(inv *team.Invitation, withToken bool) InvitationResponse {
	r := InvitationResponse{
		ID:          inv.ID(),
		Email:       inv.Email(),
		Role:        string(inv.Role()),
		LocationIDs: inv.LocationIDs(),
		Status:      string(inv.Status()),
		InvitedBy:   inv.InvitedBy(),
		ExpiresAt:   inv.ExpiresAt(),
	}
	if withToken {
		r.Token = inv.Token()
	}
	return r
}

type TeamResponse struct {
	Members     []MemberResponse     `json:"members"`
	Invitations []InvitationResponse `json:"invitations"`
}

type SubscriptionResponse struct {
	*subscription.State
	CanUseService bool `json:"canUseService"`
}
