package gate

import (
	"context"
	"sync"

	"tillpoint/internal/application/authorization"
	"tillpoint/internal/application/entitlement"
	"tillpoint/internal/domain/permission"
	"tillpoint/internal/domain/shared/events"
	"tillpoint/internal/domain/subscription"
	"tillpoint/internal/domain/team"
	"tillpoint/internal/shared/goroutine"
	"tillpoint/internal/shared/logger"
)

// MemberSource loads a membership; (nil, nil) means none.
type MemberSource interface {
	Get(ctx context.Context, tenantID, userID string) (*team.Member, error)
}

// StateSource resolves a tenant's subscription; (nil, nil) means none.
type StateSource interface {
	Resolve(ctx context.Context, tenantID string) (*subscription.State, error)
}

type input[T any] struct {
	value  T
	loaded bool
	err    error
	gen    uint64
}

type watcher struct {
	spec Spec
	fn   func(Result)
	last Result
	sent bool
}

type Option func(*Session)

// WithWarningThreshold sets the usage ratio at which usage gates warn.
func WithWarningThreshold(t float64) Option {
	return func(s *Session) { s.threshold = t }
}

type Session struct {
	mu       sync.Mutex
	tenantID string
	actor    authorization.Actor
	member   input[*team.Member]
	state    input[*subscription.State]
	watchers map[int]*watcher
	nextID   int
	closed   bool
	unsub    func()

	engine    *authorization.Engine
	members   MemberSource
	states    StateSource
	feed      events.Subscriber
	threshold float64
	spawn     func(name string, fn func())
	logger    logger.Interface
}

func NewSession(
	tenantID string,
	actor authorization.Actor,
	engine *authorization.Engine,
	members MemberSource,
	states StateSource,
	feed events.Subscriber,
	log logger.Interface,
	opts ...Option,
) *Session {
	s := &Session{
		tenantID:  tenantID,
		actor:     actor,
		watchers:  make(map[int]*watcher),
		engine:    engine,
		members:   members,
		states:    states,
		feed:      feed,
		threshold: entitlement.DefaultWarningThreshold,
		logger:    log.With("tenant_id", tenantID, "user_id", actor.UserID),
	}
	s.spawn = func(name string, fn func()) { goroutine.SafeGo(s.logger, name, fn) }
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start subscribes to change events and kicks off both loads.
func (s *Session) Start(ctx context.Context) {
	s.mu.Lock()
	if s.closed || s.unsub != nil {
		s.mu.Unlock()
		return
	}
	s.unsub = s.feed.Subscribe(s.tenantID,
		[]events.ChangeKind{events.ChangeMembership, events.ChangeSubscription}, s.onChange)
	s.mu.Unlock()

	s.spawn("gate-load-member", func() { s.ReloadMember(ctx) })
	s.spawn("gate-load-subscription", func() { s.ReloadSubscription(ctx) })
}

func (s *Session) onChange(ev events.ChangeEvent) {
	switch ev.Kind {
	case events.ChangeMembership:
		if ev.UserID != "" && ev.UserID != s.actor.UserID {
			return
		}
		s.spawn("gate-reload-member", func() { s.ReloadMember(context.Background()) })
	case events.ChangeSubscription:
		s.spawn("gate-reload-subscription", func() { s.ReloadSubscription(context.Background()) })
	}
}

// ReloadMember loads the membership. A result that was overtaken by a
// later reload, or arrives after Close, is dropped.
func (s *Session) ReloadMember(ctx context.Context) {
	gen, ok := s.begin(&s.member.gen)
	if !ok {
		return
	}
	m, err := s.members.Get(ctx, s.tenantID, s.actor.UserID)
	s.finish(func() bool {
		if s.member.gen != gen {
			return false
		}
		if err != nil {
			s.logger.Warnw("failed to load membership", "error", err)
			s.member.err = err
			return true
		}
		s.member = input[*team.Member]{value: m, loaded: true, gen: gen}
		return true
	})
}

func (s *Session) ReloadSubscription(ctx context.Context) {
	gen, ok := s.begin(&s.state.gen)
	if !ok {
		return
	}
	st, err := s.states.Resolve(ctx, s.tenantID)
	s.finish(func() bool {
		if s.state.gen != gen {
			return false
		}
		if err != nil {
			s.logger.Warnw("failed to load subscription", "error", err)
			s.state.err = err
			return true
		}
		s.state = input[*subscription.State]{value: st, loaded: true, gen: gen}
		return true
	})
}

func (s *Session) begin(gen *uint64) (uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, false
	}
	*gen++
	return *gen, true
}

// finish applies a load result under the lock and, if it took effect,
// re-evaluates every watcher.
func (s *Session) finish(apply func() bool) {
	s.mu.Lock()
	if s.closed || !apply() {
		s.mu.Unlock()
		return
	}
	s.notifyLocked()
}

// notifyLocked evaluates watchers, releases the lock and then calls the
// ones whose result changed.
func (s *Session) notifyLocked() {
	type call struct {
		fn func(Result)
		r  Result
	}
	var calls []call
	for i := 0; i < s.nextID; i++ {
		w, ok := s.watchers[i]
		if !ok {
			continue
		}
		r := s.evaluateLocked(w.spec)
		if w.sent && r.same(w.last) {
			continue
		}
		w.last, w.sent = r, true
		calls = append(calls, call{w.fn, r})
	}
	s.mu.Unlock()

	for _, c := range calls {
		c.fn(c.r)
	}
}

// Evaluate answers spec against the current snapshots.
func (s *Session) Evaluate(spec Spec) Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.evaluateLocked(spec)
}

// Watch registers fn for spec. fn is called with the current result right
// away and again whenever the result changes. The returned function
// unregisters it.
func (s *Session) Watch(spec Spec, fn func(Result)) func() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return func() {}
	}
	id := s.nextID
	s.nextID++
	r := s.evaluateLocked(spec)
	s.watchers[id] = &watcher{spec: spec, fn: fn, last: r, sent: true}
	s.mu.Unlock()

	fn(r)
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.watchers, id)
	}
}

// Close detaches from the feed and drops every watcher. Loads completing
// afterwards have no effect.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.watchers = nil
	unsub := s.unsub
	s.mu.Unlock()

	if unsub != nil {
		unsub()
	}
}

func (s *Session) evaluateLocked(spec Spec) Result {
	switch spec.kind {
	case specFeature:
		return s.featureLocked(spec.feature)
	case specUsage:
		return s.usageLocked(spec)
	}

	var c permission.Capability
	if spec.kind == specAction {
		c = permission.ActionCapability(spec.action)
	} else {
		c = permission.ModuleCapability(spec.module)
	}
	if !s.member.loaded {
		return loading(s.member.err)
	}
	req := authorization.Request{
		Actor:      s.actor,
		Member:     s.member.value,
		Capability: c,
		LocationID: spec.locationID,
	}
	if d, decided := s.engine.PreCheck(req); decided {
		return fromDecision(d)
	}
	if !s.state.loaded {
		return loading(s.state.err)
	}
	req.Subscription = s.state.value
	return fromDecision(s.engine.Evaluate(req))
}

func (s *Session) featureLocked(f subscription.FeatureKey) Result {
	if !s.state.loaded {
		return loading(s.state.err)
	}
	return fromDecision(s.engine.EvaluateFeature(s.actor, s.state.value, f))
}

func (s *Session) usageLocked(spec Spec) Result {
	if !s.state.loaded {
		return loading(s.state.err)
	}
	st := s.state.value
	if st == nil {
		return fromDecision(entitlement.CheckState(nil, spec.limit, spec.module))
	}
	current := spec.usage()
	r := fromDecision(entitlement.CheckLimit(st.Limits, spec.limit, current, spec.module))
	adv := entitlement.Advise(st.Limits, spec.limit, current, s.threshold)
	r.Advisory = &adv
	return r
}
