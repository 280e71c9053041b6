package handlers

import (
	"io"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"tillpoint/internal/application/authorization"
	"tillpoint/internal/application/entitlement"
	"tillpoint/internal/application/gate"
	"tillpoint/internal/domain/permission"
	"tillpoint/internal/domain/subscription"
	"tillpoint/internal/interfaces/http/middleware"
	apperrors "tillpoint/internal/shared/errors"
	"tillpoint/internal/shared/logger"
	"tillpoint/internal/shared/utils"
)

// SessionFactory builds an unstarted gate session for one caller.
type SessionFactory func(tenantID string, actor authorization.Actor) *gate.Session

// GateHandler streams a gate's outcome as server-sent events until the
// client disconnects.
type GateHandler struct {
	newSession SessionFactory
	keepAlive  time.Duration
	logger     logger.Interface
}

func NewGateHandler(newSession SessionFactory, keepAlive time.Duration, logger logger.Interface) *GateHandler {
	if keepAlive <= 0 {
		keepAlive = 30 * time.Second
	}
	return &GateHandler{newSession: newSession, keepAlive: keepAlive, logger: logger}
}

type GateEvent struct {
	Outcome  gate.Outcome          `json:"outcome"`
	Decision *DecisionResponse     `json:"decision,omitempty"`
	Advisory *entitlement.Advisory `json:"advisory,omitempty"`
}

func toGateEvent(r gate.Result) GateEvent {
	ev := GateEvent{Outcome: r.Outcome, Advisory: r.Advisory}
	if r.Outcome != gate.Loading {
		d := toDecisionResponse(r.Decision)
		ev.Decision = &d
	}
	return ev
}

func parseGateSpec(c *gin.Context) (gate.Spec, error) {
	location := c.Query("location")
	if raw := c.Query("module"); raw != "" {
		m, err := permission.ParseModule(raw)
		if err != nil {
			return gate.Spec{}, apperrors.NewValidationError(err.Error())
		}
		return gate.PermissionGate(m, location), nil
	}
	if raw := c.Query("permission"); raw != "" {
		p, err := permission.ParsePermission(raw)
		if err != nil {
			return gate.Spec{}, apperrors.NewValidationError(err.Error())
		}
		return gate.ActionGate(p, location), nil
	}
	if raw := c.Query("feature"); raw != "" {
		f := subscription.FeatureKey(raw)
		if !f.IsValid() {
			return gate.Spec{}, apperrors.NewValidationError("unknown feature", raw)
		}
		return gate.FeatureGate(f), nil
	}
	return gate.Spec{}, apperrors.NewValidationError("one of module, permission or feature is required")
}

func (h *GateHandler) Stream(c *gin.Context) {
	spec, err := parseGateSpec(c)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	actor, _ := middleware.ActorFrom(c)
	ctx := c.Request.Context()

	sess := h.newSession(middleware.TenantIDFrom(c), actor)
	defer sess.Close()

	var (
		mu     sync.Mutex
		latest gate.Result
		signal = make(chan struct{}, 1)
	)
	unwatch := sess.Watch(spec, func(r gate.Result) {
		mu.Lock()
		latest = r
		mu.Unlock()
		select {
		case signal <- struct{}{}:
		default:
		}
	})
	defer unwatch()
	sess.Start(ctx)

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")

	ticker := time.NewTicker(h.keepAlive)
	defer ticker.Stop()

	c.Stream(func(io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case <-signal:
			mu.Lock()
			r := latest
			mu.Unlock()
			c.SSEvent("gate", toGateEvent(r))
			return true
		case <-ticker.C:
			c.SSEvent("ping", time.Now().UTC().Format(time.RFC3339))
			return true
		}
	})
}
