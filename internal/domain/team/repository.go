package team

import "context"

// MemberRepository stores memberships. Get returns (nil, nil) when the user
// has no membership in the tenant.
type MemberRepository interface {
	Create(ctx context.Context, m *Member) error
	Update(ctx context.Context, m *Member) error
	Delete(ctx context.Context, tenantID, userID string) error
	Get(ctx context.Context, tenantID, userID string) (*Member, error)
	ListByTenant(ctx context.Context, tenantID string) ([]*Member, error)
	ListByUser(ctx context.Context, userID string) ([]*Member, error)
	CountByTenant(ctx context.Context, tenantID string) (int64, error)
}

type InvitationRepository interface {
	Create(ctx context.Context, inv *Invitation) error
	Update(ctx context.Context, inv *Invitation) error
	GetByToken(ctx context.Context, token string) (*Invitation, error)
	GetByID(ctx context.Context, tenantID, invitationID string) (*Invitation, error)
	ListPending(ctx context.Context, tenantID string) ([]*Invitation, error)
	CountPending(ctx context.Context, tenantID string) (int64, error)
}
