package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"tillpoint/internal/domain/subscription"
)

const subscriptionStateKeyPrefix = "tillpoint:subscription_state:"

// RedisSubscriptionStateCache stores resolved subscription states as JSON
// with a TTL. Usage counters inside a cached state can lag by up to the
// TTL; writers that change usage invalidate the tenant's entry.
type RedisSubscriptionStateCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSubscriptionStateCache(client *redis.Client, ttl time.Duration) *RedisSubscriptionStateCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &RedisSubscriptionStateCache{client: client, ttl: ttl}
}

func (c *RedisSubscriptionStateCache) key(tenantID string) string {
	return subscriptionStateKeyPrefix + tenantID
}

// Get reports (nil, false, nil) on a miss.
func (c *RedisSubscriptionStateCache) Get(ctx context.Context, tenantID string) (*subscription.State, bool, error) {
	data, err := c.client.Get(ctx, c.key(tenantID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get subscription state from redis: %w", err)
	}

	var state subscription.State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal subscription state: %w", err)
	}
	return &state, true, nil
}

func (c *RedisSubscriptionStateCache) Set(ctx context.Context, state *subscription.State) error {
	if state == nil || state.TenantID == "" {
		return errors.New("subscription state requires a tenant id")
	}
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal subscription state: %w", err)
	}
	if err := c.client.Set(ctx, c.key(state.TenantID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set subscription state in redis: %w", err)
	}
	return nil
}

func (c *RedisSubscriptionStateCache) Invalidate(ctx context.Context, tenantID string) error {
	if err := c.client.Del(ctx, c.key(tenantID)).Err(); err != nil {
		return fmt.Errorf("failed to delete subscription state from redis: %w", err)
	}
	return nil
}
