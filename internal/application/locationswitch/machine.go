package locationswitch

import (
	"context"
	"errors"
	"sync"
	"time"

	"tillpoint/internal/domain/profile"
	"tillpoint/internal/domain/shared/events"
	apperrors "tillpoint/internal/shared/errors"
	"tillpoint/internal/shared/logger"
)

// State is the machine's switch lifecycle.
type State int

const (
	Idle State = iota
	Switching
	Committed
	RolledBack
)

func (s State) String() string {
	switch s {
	case Switching:
		return "switching"
	case Committed:
		return "committed"
	case RolledBack:
		return "rolled_back"
	}
	return "idle"
}

var (
	// ErrSuperseded is returned by a Switch whose intent was overtaken by a
	// newer one before it completed. Its outcome is discarded.
	ErrSuperseded = errors.New("location switch superseded by a newer intent")
	ErrDisposed   = errors.New("location switch machine disposed")
)

// ProfileStore persists the user's choice so later sessions start there.
// Its version is the sequence every instance stamps intents from, and a
// save below the stored version fails with profile.ErrStaleVersion.
type ProfileStore interface {
	Get(ctx context.Context, tenantID, userID string) (*profile.Profile, error)
	SaveActiveLocation(ctx context.Context, tenantID, userID, locationID string, version uint64, at time.Time) error
}

// Listener is called outside the machine's lock after every transition.
type Listener func(sel Selection, state State)

// Machine owns one user's active location within one tenant.
type Machine struct {
	mu        sync.Mutex
	tenantID  string
	userID    string
	current   Selection
	committed Selection
	state     State
	lastErr   error
	version   uint64
	disposed  bool
	listeners map[int]Listener
	nextID    int

	profile   ProfileStore
	publisher events.Publisher
	now       func() time.Time
	logger    logger.Interface
}

func NewMachine(initial Selection, store ProfileStore, publisher events.Publisher, logger logger.Interface) *Machine {
	return &Machine{
		tenantID:  initial.TenantID,
		userID:    initial.UserID,
		current:   initial,
		committed: initial,
		version:   initial.Version,
		listeners: make(map[int]Listener),
		profile:   store,
		publisher: publisher,
		now:       time.Now,
		logger:    logger.With("tenant_id", initial.TenantID, "user_id", initial.UserID),
	}
}

func (m *Machine) Current() Selection {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// State returns the lifecycle state and, after a rollback, its cause.
func (m *Machine) State() (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state, m.lastErr
}

// OnChange registers l and returns a function that removes it.
func (m *Machine) OnChange(l Listener) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.disposed {
		return func() {}
	}
	id := m.nextID
	m.nextID++
	m.listeners[id] = l
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.listeners, id)
	}
}

// Switch moves to locationID. The new selection is visible immediately;
// it is persisted to the profile and only then published to other
// sessions. A persistence failure restores the last committed selection.
// Intents are stamped above the stored version; when another instance has
// stored a newer one first, the stored choice wins.
func (m *Machine) Switch(ctx context.Context, locationID string) error {
	m.mu.Lock()
	if m.disposed {
		m.mu.Unlock()
		return ErrDisposed
	}
	if locationID == m.current.LocationID {
		m.mu.Unlock()
		return nil
	}
	m.version++
	intent := Selection{
		TenantID:   m.tenantID,
		UserID:     m.userID,
		LocationID: locationID,
		Version:    m.version,
		Source:     SourceExplicit,
		At:         m.now(),
	}
	m.current = intent
	m.state = Switching
	m.lastErr = nil
	notify := m.snapshot()
	m.mu.Unlock()
	notify(intent, Switching)

	err := m.profile.SaveActiveLocation(ctx, m.tenantID, m.userID, locationID, intent.Version, intent.At)

	m.mu.Lock()
	if m.disposed {
		m.mu.Unlock()
		return nil
	}
	if m.version != intent.Version {
		m.mu.Unlock()
		return ErrSuperseded
	}
	if errors.Is(err, profile.ErrStaleVersion) {
		m.mu.Unlock()
		return m.adoptStored(ctx, intent)
	}
	if err != nil {
		m.rollbackLocked(err)
		restored := m.current
		notify = m.snapshot()
		m.mu.Unlock()

		m.logger.Warnw("location switch rolled back", "location_id", locationID, "error", err)
		notify(restored, RolledBack)
		return apperrors.NewPersistenceError("failed to save active location", err.Error())
	}
	m.committed = intent
	m.state = Committed
	notify = m.snapshot()
	m.mu.Unlock()

	m.publish(ctx, intent)
	notify(intent, Committed)
	m.logger.Infow("active location switched", "location_id", locationID, "version", intent.Version)
	return nil
}

// adoptStored runs after the store rejected intent because another
// instance persisted a newer choice. That choice becomes the committed
// selection and intent reports ErrSuperseded.
func (m *Machine) adoptStored(ctx context.Context, intent Selection) error {
	stored, err := m.profile.Get(ctx, m.tenantID, m.userID)

	m.mu.Lock()
	if m.disposed {
		m.mu.Unlock()
		return nil
	}
	if m.version != intent.Version {
		m.mu.Unlock()
		return ErrSuperseded
	}
	if err != nil || stored == nil {
		if err == nil {
			err = profile.ErrStaleVersion
		}
		m.rollbackLocked(err)
		restored := m.current
		notify := m.snapshot()
		m.mu.Unlock()

		m.logger.Warnw("location switch rolled back", "location_id", intent.LocationID, "error", err)
		notify(restored, RolledBack)
		return apperrors.NewPersistenceError("failed to load active location", err.Error())
	}

	sel := Selection{
		TenantID:   m.tenantID,
		UserID:     m.userID,
		LocationID: stored.ActiveLocationID,
		Version:    stored.Version,
		Source:     SourceExplicit,
		At:         stored.UpdatedAt,
	}
	m.version = sel.Version
	m.current = sel
	m.committed = sel
	m.state = Committed
	m.lastErr = nil
	notify := m.snapshot()
	m.mu.Unlock()

	m.logger.Infow("location switch lost to a newer stored choice",
		"location_id", intent.LocationID,
		"stored_location_id", sel.LocationID,
		"version", sel.Version,
	)
	notify(sel, Committed)
	return ErrSuperseded
}

// rollbackLocked restores the committed selection. The intent version is
// released too, so the stored sequence stays the only source of order.
func (m *Machine) rollbackLocked(cause error) {
	m.current = m.committed
	m.version = m.committed.Version
	m.state = RolledBack
	m.lastErr = cause
}

// Observe offers a selection seen on the shared store. It is accepted only
// when it is an explicit intent newer than the last local one; equal
// versions are broken by location id so two sessions converge. Anything
// else is discarded and the local choice is re-asserted.
func (m *Machine) Observe(ctx context.Context, sel Selection) bool {
	m.mu.Lock()
	if m.disposed || sel.TenantID != m.tenantID || sel.UserID != m.userID {
		m.mu.Unlock()
		return false
	}

	if sel.Source == SourceExplicit && newer(sel, m.committed, m.version) {
		m.version = sel.Version
		m.current = sel
		m.committed = sel
		m.state = Committed
		m.lastErr = nil
		notify := m.snapshot()
		m.mu.Unlock()
		notify(sel, Committed)
		return true
	}

	reassert := m.state != Switching && sel.LocationID != m.committed.LocationID
	local := m.committed
	m.mu.Unlock()

	if reassert {
		m.logger.Debugw("discarding selection from shared store",
			"location_id", sel.LocationID,
			"version", sel.Version,
			"source", sel.Source,
		)
		if local.Source != SourceExplicit {
			local.Source = SourceExplicit
		}
		m.publish(ctx, local)
	}
	return false
}

// Dispose detaches every listener. Switches still in flight finish
// without effect.
func (m *Machine) Dispose() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.disposed = true
	m.listeners = nil
}

func newer(sel, committed Selection, version uint64) bool {
	if sel.Version != version {
		return sel.Version > version
	}
	return sel.LocationID > committed.LocationID
}

func (m *Machine) publish(ctx context.Context, sel Selection) {
	if err := m.publisher.Publish(ctx, sel.event()); err != nil {
		m.logger.Warnw("failed to publish selection", "location_id", sel.LocationID, "error", err)
	}
}

// snapshot copies the listeners; the caller holds the lock.
func (m *Machine) snapshot() func(Selection, State) {
	ls := make([]Listener, 0, len(m.listeners))
	for i := 0; i < m.nextID; i++ {
		if l, ok := m.listeners[i]; ok {
			ls = append(ls, l)
		}
	}
	return func(sel Selection, s State) {
		for _, l := range ls {
			l(sel, s)
		}
	}
}
