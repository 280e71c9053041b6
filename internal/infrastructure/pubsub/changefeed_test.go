package pubsub

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tillpoint/internal/domain/shared/events"
	"tillpoint/internal/shared/logger"
)

type recorder struct {
	mu  sync.Mutex
	evs []events.ChangeEvent
}

func (r *recorder) handle(ev events.ChangeEvent) {
	r.mu.Lock()
	r.evs = append(r.evs, ev)
	r.mu.Unlock()
}

func (r *recorder) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.evs)
}

func newFeeds(t *testing.T) (*RedisChangeFeed, *RedisChangeFeed) {
	t.Helper()
	mr := miniredis.RunT(t)

	newFeed := func() *RedisChangeFeed {
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = client.Close() })
		return NewRedisChangeFeed(client, "", logger.NewNopLogger())
	}
	return newFeed(), newFeed()
}

func runFeed(t *testing.T, f *RedisChangeFeed) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = f.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	// wait until the subscription is registered
	require.Eventually(t, func() bool {
		n, err := f.client.PubSubNumSub(context.Background(), f.channel).Result()
		return err == nil && n[f.channel] > 0
	}, time.Second, 10*time.Millisecond)
}

func TestRedisChangeFeedDeliversLocallyAndRemotely(t *testing.T) {
	a, b := newFeeds(t)
	runFeed(t, a)
	runFeed(t, b)

	var onA, onB recorder
	a.Subscribe("tn_a", []events.ChangeKind{events.ChangeLocations}, onA.handle)
	b.Subscribe("tn_a", []events.ChangeKind{events.ChangeLocations}, onB.handle)

	ev := events.ChangeEvent{
		TenantID:   "tn_a",
		Kind:       events.ChangeLocations,
		EntityID:   "loc_1",
		OccurredAt: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
	}
	require.NoError(t, a.Publish(context.Background(), ev))

	assert.Equal(t, 1, onA.len(), "local delivery is synchronous")
	assert.Eventually(t, func() bool { return onB.len() == 1 }, time.Second, 10*time.Millisecond)

	// the publisher must not receive its own relay
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, onA.len())

	onB.mu.Lock()
	got := onB.evs[0]
	onB.mu.Unlock()
	assert.Equal(t, "loc_1", got.EntityID)
	assert.True(t, ev.OccurredAt.Equal(got.OccurredAt))
}

func TestRedisChangeFeedObserversSeeEveryTenant(t *testing.T) {
	a, b := newFeeds(t)
	runFeed(t, b)

	var seen recorder
	b.Observe(seen.handle)

	require.NoError(t, a.Publish(context.Background(), events.ChangeEvent{TenantID: "tn_a", Kind: events.ChangeMembership, UserID: "user_1"}))
	require.NoError(t, a.Publish(context.Background(), events.ChangeEvent{TenantID: "tn_b", Kind: events.ChangeSubscription}))

	assert.Eventually(t, func() bool { return seen.len() == 2 }, time.Second, 10*time.Millisecond)
}

func TestRedisChangeFeedPublishFailsWhenRedisIsDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	f := NewRedisChangeFeed(client, "", logger.NewNopLogger())

	var local recorder
	f.Subscribe("tn_a", nil, local.handle)
	mr.Close()

	err := f.Publish(context.Background(), events.ChangeEvent{TenantID: "tn_a", Kind: events.ChangeSelection})
	assert.Error(t, err)
	assert.Equal(t, 1, local.len(), "local subscribers still hear about the change")
}
