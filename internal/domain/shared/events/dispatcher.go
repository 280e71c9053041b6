package events

import (
	"context"
	"slices"
	"sync"
)

type subscription struct {
	id       uint64
	tenantID string
	kinds    []ChangeKind
	handler  Handler
}

// InMemoryFeed delivers events synchronously to local subscribers.
// Handlers run on the publisher's goroutine, outside the feed's lock.
type InMemoryFeed struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[uint64]*subscription
}

func NewInMemoryFeed() *InMemoryFeed {
	return &InMemoryFeed{subs: make(map[uint64]*subscription)}
}

// Subscribe registers h for events of tenantID whose kind is in kinds.
// An empty kinds slice matches every kind.
func (f *InMemoryFeed) Subscribe(tenantID string, kinds []ChangeKind, h Handler) func() {
	f.mu.Lock()
	f.nextID++
	sid := f.nextID
	f.subs[sid] = &subscription{id: sid, tenantID: tenantID, kinds: slices.Clone(kinds), handler: h}
	f.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			delete(f.subs, sid)
			f.mu.Unlock()
		})
	}
}

func (f *InMemoryFeed) Publish(_ context.Context, ev ChangeEvent) error {
	f.Dispatch(ev)
	return nil
}

// Dispatch fans ev out to matching subscribers.
func (f *InMemoryFeed) Dispatch(ev ChangeEvent) {
	f.mu.RLock()
	targets := make([]*subscription, 0, len(f.subs))
	for _, s := range f.subs {
		if s.tenantID == ev.TenantID && (len(s.kinds) == 0 || slices.Contains(s.kinds, ev.Kind)) {
			targets = append(targets, s)
		}
	}
	f.mu.RUnlock()

	slices.SortFunc(targets, func(a, b *subscription) int {
		switch {
		case a.id < b.id:
			return -1
		case a.id > b.id:
			return 1
		}
		return 0
	})
	for _, s := range targets {
		s.handler(ev)
	}
}

// SubscriberCount reports live subscriptions.
func (f *InMemoryFeed) SubscriberCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.subs)
}
