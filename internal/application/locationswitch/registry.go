package locationswitch

import (
	"context"
	"fmt"
	"sync"

	"tillpoint/internal/domain/location"
	"tillpoint/internal/domain/profile"
	"tillpoint/internal/domain/shared/events"
	"tillpoint/internal/shared/logger"
)

// CandidateLister returns the locations a user may select in a tenant.
type CandidateLister interface {
	Candidates(ctx context.Context, tenantID, userID string) ([]*location.Location, error)
}

type machineKey struct{ tenantID, userID string }

// Registry keeps one Machine per tenant and user and feeds them the
// selections other instances publish.
type Registry struct {
	mu       sync.Mutex
	machines map[machineKey]*Machine
	unsub    map[string]func()

	profiles   profile.Repository
	candidates CandidateLister
	feed       events.Feed
	logger     logger.Interface
}

func NewRegistry(profiles profile.Repository, candidates CandidateLister, feed events.Feed, logger logger.Interface) *Registry {
	return &Registry{
		machines:   make(map[machineKey]*Machine),
		unsub:      make(map[string]func()),
		profiles:   profiles,
		candidates: candidates,
		feed:       feed,
		logger:     logger,
	}
}

// Machine returns the machine for tenantID and userID, resolving its
// initial selection on first use. explicit is a session-level choice and
// may be empty.
func (r *Registry) Machine(ctx context.Context, tenantID, userID, explicit string) (*Machine, error) {
	key := machineKey{tenantID, userID}
	r.mu.Lock()
	if m, ok := r.machines[key]; ok {
		r.mu.Unlock()
		return m, nil
	}
	r.mu.Unlock()

	initial, err := r.resolve(ctx, tenantID, userID, explicit)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := r.machines[key]; ok {
		return m, nil
	}
	m := NewMachine(initial, r.profiles, r.feed, r.logger)
	r.machines[key] = m
	if _, ok := r.unsub[tenantID]; !ok {
		r.unsub[tenantID] = r.feed.Subscribe(tenantID, []events.ChangeKind{events.ChangeSelection}, r.route)
	}
	return m, nil
}

func (r *Registry) resolve(ctx context.Context, tenantID, userID, explicit string) (Selection, error) {
	cands, err := r.candidates.Candidates(ctx, tenantID, userID)
	if err != nil {
		return Selection{}, fmt.Errorf("failed to list selectable locations: %w", err)
	}
	var (
		persisted string
		version   uint64
	)
	p, err := r.profiles.Get(ctx, tenantID, userID)
	if err != nil {
		r.logger.Warnw("failed to load profile", "tenant_id", tenantID, "user_id", userID, "error", err)
	} else if p != nil {
		persisted = p.ActiveLocationID
		version = p.Version
	}

	sel, ok := ResolveInitial(tenantID, userID, explicit, persisted, cands)
	if !ok {
		sel = Selection{TenantID: tenantID, UserID: userID, Source: SourceDefault}
	}
	// The stored version carries over whichever location was picked, so
	// this instance's next intent orders after every stored one.
	sel.Version = version
	return sel, nil
}

func (r *Registry) route(ev events.ChangeEvent) {
	r.mu.Lock()
	m, ok := r.machines[machineKey{ev.TenantID, ev.UserID}]
	r.mu.Unlock()
	if ok {
		m.Observe(context.Background(), SelectionFromEvent(ev))
	}
}

// Forget disposes the user's machine, e.g. after their membership ends.
func (r *Registry) Forget(tenantID, userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := machineKey{tenantID, userID}
	if m, ok := r.machines[key]; ok {
		m.Dispose()
		delete(r.machines, key)
	}
}

// Close disposes every machine and detaches from the feed.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.machines {
		m.Dispose()
	}
	for _, u := range r.unsub {
		u()
	}
	r.machines = make(map[machineKey]*Machine)
	r.unsub = make(map[string]func())
}
