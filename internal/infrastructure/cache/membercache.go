package cache

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"tillpoint/internal/domain/team"
	"tillpoint/internal/shared/logger"
)

// MemberCache fronts a team.MemberRepository with a bounded, expiring LRU
// of single-member reads. Writes through this decorator evict the entry;
// writes from other instances are bounded by the TTL.
type MemberCache struct {
	team.MemberRepository
	entries *expirable.LRU[string, *team.Member]
	logger  logger.Interface
}

func NewMemberCache(repo team.MemberRepository, size int, ttl time.Duration, log logger.Interface) *MemberCache {
	if size <= 0 {
		size = 1024
	}
	return &MemberCache{
		MemberRepository: repo,
		entries:          expirable.NewLRU[string, *team.Member](size, nil, ttl),
		logger:           log,
	}
}

func memberKey(tenantID, userID string) string {
	return tenantID + "\x00" + userID
}

// Get returns a copy so callers can mutate the result freely.
func (c *MemberCache) Get(ctx context.Context, tenantID, userID string) (*team.Member, error) {
	key := memberKey(tenantID, userID)
	if m, ok := c.entries.Get(key); ok {
		return cloneMember(m), nil
	}

	m, err := c.MemberRepository.Get(ctx, tenantID, userID)
	if err != nil || m == nil {
		return m, err
	}
	c.entries.Add(key, cloneMember(m))
	return m, nil
}

func (c *MemberCache) Create(ctx context.Context, m *team.Member) error {
	c.entries.Remove(memberKey(m.TenantID(), m.UserID()))
	return c.MemberRepository.Create(ctx, m)
}

func (c *MemberCache) Update(ctx context.Context, m *team.Member) error {
	defer c.entries.Remove(memberKey(m.TenantID(), m.UserID()))
	return c.MemberRepository.Update(ctx, m)
}

func (c *MemberCache) Delete(ctx context.Context, tenantID, userID string) error {
	defer c.entries.Remove(memberKey(tenantID, userID))
	return c.MemberRepository.Delete(ctx, tenantID, userID)
}

// Evict drops one entry, for change events raised elsewhere.
func (c *MemberCache) Evict(tenantID, userID string) {
	if c.entries.Remove(memberKey(tenantID, userID)) {
		c.logger.Debugw("member cache entry evicted", "tenant_id", tenantID, "user_id", userID)
	}
}

func cloneMember(m *team.Member) *team.Member {
	return team.ReconstructMember(
		m.ID(),
		m.TenantID(),
		m.UserID(),
		m.Email(),
		m.DisplayName(),
		m.Role(),
		m.Status(),
		m.LocationIDs(),
		m.Permissions(),
		m.JoinedAt(),
		m.UpdatedAt(),
		m.LastLogin(),
	)
}
