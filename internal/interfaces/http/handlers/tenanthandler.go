package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tillpoint/internal/application/tenant/usecases"
	"tillpoint/internal/interfaces/http/middleware"
	"tillpoint/internal/shared/constants"
	"tillpoint/internal/shared/logger"
	"tillpoint/internal/shared/utils"
)

type TenantHandler struct {
	tenants       TenantLister
	createUseCase CreateTenantExecutor
	logger        logger.Interface
}

func NewTenantHandler(tenants TenantLister, createUC CreateTenantExecutor, logger logger.Interface) *TenantHandler {
	return &TenantHandler{tenants: tenants, createUseCase: createUC, logger: logger}
}

// Mine lists the caller's tenants with the caller's role in each.
func (h *TenantHandler) Mine(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)
	memberships, err := h.tenants.Mine(c.Request.Context(), actor)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	out := make([]TenantResponse, len(memberships))
	for i, tm := range memberships {
		out[i] = toTenantResponse(tm.Tenant)
		out[i].Role = string(tm.Member.Role())
	}
	utils.SuccessResponse(c, http.StatusOK, "", out)
}

type currentTenantResponse struct {
	TenantID string `json:"tenantId"`
}

// Current picks the tenant the client should operate on. Platform admins
// may name any tenant with X-Tenant-ID.
func (h *TenantHandler) Current(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)
	tenantID, err := h.tenants.Select(c.Request.Context(), actor, c.GetHeader(constants.HeaderXTenantID))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", currentTenantResponse{TenantID: tenantID})
}

// All is the platform-admin tenant catalog.
func (h *TenantHandler) All(c *gin.Context) {
	actor, _ := middleware.ActorFrom(c)
	ts, err := h.tenants.All(c.Request.Context(), actor)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	out := make([]TenantResponse, len(ts))
	for i, t := range ts {
		out[i] = toTenantResponse(t)
	}
	utils.SuccessResponse(c, http.StatusOK, "", out)
}

type createTenantResponse struct {
	Tenant       TenantResponse   `json:"tenant"`
	Owner        MemberResponse   `json:"owner"`
	MainLocation LocationResponse `json:"mainLocation"`
	Tier         string           `json:"tier"`
	Status       string           `json:"status"`
	Warning      string           `json:"warning,omitempty"`
}

func (h *TenantHandler) Create(c *gin.Context) {
	var cmd usecases.CreateTenantCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		h.logger.Warnw("invalid request body for create tenant", "error", err)
		utils.ErrorResponseWithError(c, bindError(err))
		return
	}
	cmd.OwnerUserID = c.GetString(constants.ContextKeyUserID)
	cmd.OwnerEmail = c.GetString(constants.ContextKeyUserEmail)

	result, err := h.createUseCase.Execute(c.Request.Context(), cmd)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.CreatedResponse(c, createTenantResponse{
		Tenant:       toTenantResponse(result.Tenant),
		Owner:        toMemberResponse(result.Owner),
		MainLocation: toLocationResponse(result.MainLocation),
		Tier:         string(result.Subscription.Tier()),
		Status:       string(result.Subscription.Status()),
		Warning:      warningText(result.Warning),
	}, "tenant created")
}
