package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tillpoint/internal/application/subscription/usecases"
	"tillpoint/internal/interfaces/http/middleware"
	apperrors "tillpoint/internal/shared/errors"
	"tillpoint/internal/shared/logger"
	"tillpoint/internal/shared/utils"
)

type SubscriptionHandler struct {
	states        StateResolver
	changePlanUC  ChangePlanExecutor
	updateStateUC UpdateStatusExecutor
	startTrialUC  StartTrialExecutor
	logger        logger.Interface
}

func NewSubscriptionHandler(
	states StateResolver,
	changePlanUC ChangePlanExecutor,
	updateStatusUC UpdateStatusExecutor,
	startTrialUC StartTrialExecutor,
	logger logger.Interface,
) *SubscriptionHandler {
	return &SubscriptionHandler{
		states:        states,
		changePlanUC:  changePlanUC,
		updateStateUC: updateStatusUC,
		startTrialUC:  startTrialUC,
		logger:        logger,
	}
}

func (h *SubscriptionHandler) Get(c *gin.Context) {
	state, err := middleware.StateFrom(c, h.states)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	if state == nil {
		utils.ErrorResponseWithError(c, apperrors.NewNotFoundError("tenant has no subscription"))
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", SubscriptionResponse{State: state, CanUseService: state.CanUseService()})
}

type changePlanRequest struct {
	Tier string `json:"tier" binding:"required"`
}

type changePlanResponse struct {
	PreviousTier string `json:"previousTier"`
	Tier         string `json:"tier"`
	Direction    string `json:"direction"`
}

func (h *SubscriptionHandler) ChangePlan(c *gin.Context) {
	var req changePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for change plan", "error", err)
		utils.ErrorResponseWithError(c, bindError(err))
		return
	}

	result, err := h.changePlanUC.Execute(c.Request.Context(), usecases.ChangePlanCommand{
		TenantID: middleware.TenantIDFrom(c),
		Tier:     req.Tier,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "plan changed", changePlanResponse{
		PreviousTier: string(result.PreviousTier),
		Tier:         string(result.Tier),
		Direction:    string(result.Direction),
	})
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateStatus is the billing collaborator's hook; it is mounted on the
// platform-admin routes.
func (h *SubscriptionHandler) UpdateStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponseWithError(c, bindError(err))
		return
	}

	err := h.updateStateUC.Execute(c.Request.Context(), usecases.UpdateStatusCommand{
		TenantID: middleware.TenantIDFrom(c),
		Status:   req.Status,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "subscription status updated", nil)
}

type startTrialRequest struct {
	Tier      string `json:"tier"`
	TrialDays int    `json:"trialDays"`
}

// StartTrial gives a tenant without a subscription a trial. Platform admins
// only.
func (h *SubscriptionHandler) StartTrial(c *gin.Context) {
	var req startTrialRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.ErrorResponseWithError(c, bindError(err))
			return
		}
	}

	sub, err := h.startTrialUC.Execute(c.Request.Context(), usecases.StartTrialCommand{
		TenantID:  middleware.TenantIDFrom(c),
		Tier:      req.Tier,
		TrialDays: req.TrialDays,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.CreatedResponse(c, gin.H{
		"tier":        sub.Tier(),
		"status":      sub.Status(),
		"trialEndsAt": sub.TrialEndsAt(),
	}, "trial started")
}
