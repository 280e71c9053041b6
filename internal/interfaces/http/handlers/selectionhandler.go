package handlers

import (
	"errors"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"

	"tillpoint/internal/application/authorization"
	"tillpoint/internal/application/locationswitch"
	"tillpoint/internal/domain/location"
	"tillpoint/internal/domain/permission"
	"tillpoint/internal/interfaces/http/middleware"
	"tillpoint/internal/shared/constants"
	apperrors "tillpoint/internal/shared/errors"
	"tillpoint/internal/shared/logger"
	"tillpoint/internal/shared/utils"
)

// SelectionHandler exposes the caller's active location in a tenant.
type SelectionHandler struct {
	machines   MachineProvider
	candidates CandidateLister
	logger     logger.Interface
}

func NewSelectionHandler(machines MachineProvider, candidates CandidateLister, logger logger.Interface) *SelectionHandler {
	return &SelectionHandler{machines: machines, candidates: candidates, logger: logger}
}

type SelectionResponse struct {
	Selection locationswitch.Selection `json:"selection"`
	State     string                   `json:"state"`
	Error     string                   `json:"error,omitempty"`
}

func selectionResponse(m *locationswitch.Machine) SelectionResponse {
	state, err := m.State()
	return SelectionResponse{Selection: m.Current(), State: state.String(), Error: warningText(err)}
}

func (h *SelectionHandler) Get(c *gin.Context) {
	m, err := h.machines.Machine(c.Request.Context(), middleware.TenantIDFrom(c), c.GetString(constants.ContextKeyUserID), "")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", selectionResponse(m))
}

type switchRequest struct {
	LocationID string `json:"locationId" binding:"required"`
}

func (h *SelectionHandler) Switch(c *gin.Context) {
	var req switchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponseWithError(c, bindError(err))
		return
	}
	tenantID := middleware.TenantIDFrom(c)
	userID := c.GetString(constants.ContextKeyUserID)

	candidates, err := h.candidates.Candidates(c.Request.Context(), tenantID, userID)
	if err != nil {
		h.logger.Errorw("failed to list selectable locations", "tenant_id", tenantID, "error", err)
		utils.ErrorResponseWithError(c, apperrors.NewPersistenceError("failed to list locations", err.Error()))
		return
	}
	if !slices.ContainsFunc(candidates, func(l *location.Location) bool { return l.ID() == req.LocationID }) {
		middleware.AbortWithDecision(c, authorization.Deny(
			permission.ModuleCapability(permission.ModuleLocations),
			authorization.DenyLocationNotAccessible,
			"location not accessible"))
		return
	}

	m, err := h.machines.Machine(c.Request.Context(), tenantID, userID, "")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	switch err := m.Switch(c.Request.Context(), req.LocationID); {
	case errors.Is(err, locationswitch.ErrSuperseded), errors.Is(err, locationswitch.ErrDisposed):
		utils.ErrorResponseWithError(c, apperrors.NewConflictError(err.Error()))
		return
	case err != nil:
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "active location switched", selectionResponse(m))
}
