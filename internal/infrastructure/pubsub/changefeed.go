package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"tillpoint/internal/domain/shared/events"
	"tillpoint/internal/shared/logger"
)

const DefaultChangeChannel = "tillpoint:changes"

// changeEnvelope tags an event with the publishing instance so the
// subscriber loop can skip events it already delivered locally.
type changeEnvelope struct {
	InstanceID string             `json:"instance_id"`
	Event      events.ChangeEvent `json:"event"`
}

// RedisChangeFeed is an events.Feed that delivers locally first and then
// relays through Redis Pub/Sub to the other instances. Local subscribers
// see their own instance's writes synchronously.
type RedisChangeFeed struct {
	client     *redis.Client
	channel    string
	instanceID string
	local      *events.InMemoryFeed
	logger     logger.Interface

	mu        sync.RWMutex
	observers []events.Handler
}

func NewRedisChangeFeed(client *redis.Client, channel string, logger logger.Interface) *RedisChangeFeed {
	if channel == "" {
		channel = DefaultChangeChannel
	}
	return &RedisChangeFeed{
		client:     client,
		channel:    channel,
		instanceID: uuid.NewString(),
		local:      events.NewInMemoryFeed(),
		logger:     logger,
	}
}

func (f *RedisChangeFeed) Subscribe(tenantID string, kinds []events.ChangeKind, h events.Handler) func() {
	return f.local.Subscribe(tenantID, kinds, h)
}

// Observe registers h for every event of every tenant, local or remote.
// Cache invalidation hangs off this.
func (f *RedisChangeFeed) Observe(h events.Handler) {
	f.mu.Lock()
	f.observers = append(f.observers, h)
	f.mu.Unlock()
}

// Publish delivers ev locally and relays it. A relay failure is returned
// after local delivery has happened.
func (f *RedisChangeFeed) Publish(ctx context.Context, ev events.ChangeEvent) error {
	f.deliver(ev)

	data, err := json.Marshal(changeEnvelope{InstanceID: f.instanceID, Event: ev})
	if err != nil {
		return fmt.Errorf("failed to marshal change event: %w", err)
	}
	if err := f.client.Publish(ctx, f.channel, data).Err(); err != nil {
		f.logger.Errorw("failed to publish change event",
			"tenant_id", ev.TenantID,
			"kind", ev.Kind,
			"error", err,
		)
		return fmt.Errorf("failed to publish change event: %w", err)
	}

	f.logger.Debugw("change event published", "tenant_id", ev.TenantID, "kind", ev.Kind, "entity_id", ev.EntityID)
	return nil
}

// Run relays events from other instances until ctx is done.
func (f *RedisChangeFeed) Run(ctx context.Context) error {
	sub := f.client.Subscribe(ctx, f.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe to channel: %w", err)
	}
	f.logger.Infow("subscribed to change events", "channel", f.channel, "instance_id", f.instanceID)

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			f.logger.Infow("change event subscriber stopped", "reason", ctx.Err())
			return ctx.Err()

		case msg, ok := <-ch:
			if !ok {
				f.logger.Warnw("change event channel closed")
				return nil
			}

			var env changeEnvelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				f.logger.Warnw("failed to unmarshal change event", "payload", msg.Payload, "error", err)
				continue
			}
			if env.InstanceID == f.instanceID {
				continue
			}
			f.deliver(env.Event)
		}
	}
}

func (f *RedisChangeFeed) deliver(ev events.ChangeEvent) {
	f.mu.RLock()
	observers := f.observers
	f.mu.RUnlock()

	for _, h := range observers {
		h(ev)
	}
	f.local.Dispatch(ev)
}
