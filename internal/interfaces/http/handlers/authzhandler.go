package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"tillpoint/internal/application/authorization"
	"tillpoint/internal/application/entitlement"
	"tillpoint/internal/domain/permission"
	"tillpoint/internal/domain/subscription"
	"tillpoint/internal/interfaces/http/middleware"
	apperrors "tillpoint/internal/shared/errors"
	"tillpoint/internal/shared/logger"
	"tillpoint/internal/shared/utils"
)

// AuthzHandler answers authorization questions for clients that render
// their own gates.
type AuthzHandler struct {
	decider   Decider
	states    StateResolver
	threshold float64
	logger    logger.Interface
}

func NewAuthzHandler(decider Decider, states StateResolver, threshold float64, logger logger.Interface) *AuthzHandler {
	return &AuthzHandler{decider: decider, states: states, threshold: threshold, logger: logger}
}

type DecisionResponse struct {
	Allowed         bool   `json:"allowed"`
	Kind            string `json:"kind,omitempty"`
	Reason          string `json:"reason,omitempty"`
	Override        string `json:"override,omitempty"`
	UpgradeRequired bool   `json:"upgrade_required"`
	Capability      string `json:"capability"`
}

func toDecisionResponse(d authorization.Decision) DecisionResponse {
	return DecisionResponse{
		Allowed:         d.Allowed,
		Kind:            string(d.Kind),
		Reason:          d.Reason,
		Override:        string(d.Override),
		UpgradeRequired: d.UpgradeRequired(),
		Capability:      d.Capability.String(),
	}
}

// Decide answers GET /authz/decide?module=&location=.
func (h *AuthzHandler) Decide(c *gin.Context) {
	module, err := permission.ParseModule(c.Query("module"))
	if err != nil {
		utils.ErrorResponseWithError(c, apperrors.NewValidationError(err.Error()))
		return
	}
	h.answer(c, permission.ModuleCapability(module))
}

// Permission answers GET /authz/permission?permission=&location=.
func (h *AuthzHandler) Permission(c *gin.Context) {
	p, err := permission.ParsePermission(c.Query("permission"))
	if err != nil {
		utils.ErrorResponseWithError(c, apperrors.NewValidationError(err.Error()))
		return
	}
	h.answer(c, permission.ActionCapability(p))
}

func (h *AuthzHandler) answer(c *gin.Context, capability permission.Capability) {
	d, err := h.decider.Decide(c, capability, c.Query("location"))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", toDecisionResponse(d))
}

type LimitResponse struct {
	Within   bool                 `json:"within"`
	Advisory entitlement.Advisory `json:"advisory"`
	Decision DecisionResponse     `json:"decision"`
}

// Limit answers GET /authz/limit?key=&usage=. Without usage the tenant's
// stored counter is used.
func (h *AuthzHandler) Limit(c *gin.Context) {
	key := subscription.LimitKey(c.Query("key"))
	if !key.IsValid() {
		utils.ErrorResponseWithError(c, apperrors.NewValidationError("unknown limit key", string(key)))
		return
	}

	state, err := middleware.StateFrom(c, h.states)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	if state == nil {
		d := entitlement.CheckState(nil, key, entitlement.ModuleForLimit(key))
		utils.SuccessResponse(c, http.StatusOK, "", LimitResponse{Decision: toDecisionResponse(d)})
		return
	}

	current, _ := state.Usage.For(key)
	if raw := c.Query("usage"); raw != "" {
		current, err = strconv.ParseInt(raw, 10, 64)
		if err != nil || current < 0 {
			utils.ErrorResponseWithError(c, apperrors.NewValidationError("usage must be a non-negative integer"))
			return
		}
	}

	d := entitlement.CheckLimit(state.Limits, key, current, entitlement.ModuleForLimit(key))
	utils.SuccessResponse(c, http.StatusOK, "", LimitResponse{
		Within:   d.Allowed,
		Advisory: entitlement.Advise(state.Limits, key, current, h.threshold),
		Decision: toDecisionResponse(d),
	})
}
