// Package events carries change notifications between writers and the
// reactive readers that must re-evaluate when inputs change.
package events

import (
	"context"
	"time"
)

// ChangeKind names which reactive input changed.
type ChangeKind string

const (
	ChangeMembership   ChangeKind = "membership"
	ChangeSubscription ChangeKind = "subscription"
	ChangeLocations    ChangeKind = "locations"
	ChangeSelection    ChangeKind = "selection"
)

// ChangeEvent is scoped to one tenant. UserID is set for user-scoped
// changes (membership, selection). Version orders selection intents.
type ChangeEvent struct {
	TenantID   string     `json:"tenant_id"`
	UserID     string     `json:"user_id,omitempty"`
	Kind       ChangeKind `json:"kind"`
	EntityID   string     `json:"entity_id,omitempty"`
	Version    uint64     `json:"version,omitempty"`
	Source     string     `json:"source,omitempty"`
	OccurredAt time.Time  `json:"occurred_at"`
}

// Handler receives events. It must not block for long.
type Handler func(ChangeEvent)

// Publisher is what writers depend on.
type Publisher interface {
	Publish(ctx context.Context, ev ChangeEvent) error
}

// Subscriber is what reactive readers depend on. The returned function
// detaches the handler and is safe to call more than once.
type Subscriber interface {
	Subscribe(tenantID string, kinds []ChangeKind, h Handler) (unsubscribe func())
}

// Feed is both halves.
type Feed interface {
	Publisher
	Subscriber
}
