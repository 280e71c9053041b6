package locationswitch

import (
	"context"

	"tillpoint/internal/domain/location"
	"tillpoint/internal/domain/team"
)

// MemberCandidates limits selectable locations to the member's assigned
// ones. Owners, and callers without a membership who passed the platform
// admin check upstream, see every location.
type MemberCandidates struct {
	locations location.Repository
	members   team.MemberRepository
}

func NewMemberCandidates(locations location.Repository, members team.MemberRepository) *MemberCandidates {
	return &MemberCandidates{locations: locations, members: members}
}

func (c *MemberCandidates) Candidates(ctx context.Context, tenantID, userID string) ([]*location.Location, error) {
	locs, err := c.locations.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	m, err := c.members.Get(ctx, tenantID, userID)
	if err != nil {
		return nil, err
	}
	if m == nil || m.IsOwner() {
		return locs, nil
	}

	out := make([]*location.Location, 0, len(locs))
	for _, l := range locs {
		if m.CanAccessLocation(l.ID()) {
			out = append(out, l)
		}
	}
	return out, nil
}
