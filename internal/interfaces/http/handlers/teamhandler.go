package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tillpoint/internal/application/team/usecases"
	"tillpoint/internal/interfaces/http/middleware"
	"tillpoint/internal/shared/constants"
	apperrors "tillpoint/internal/shared/errors"
	"tillpoint/internal/shared/id"
	"tillpoint/internal/shared/logger"
	"tillpoint/internal/shared/utils"
)

type TeamHandler struct {
	listUseCase   ListMembersExecutor
	inviteUseCase InviteMemberExecutor
	addUseCase    AddMemberExecutor
	updateUseCase UpdateMemberExecutor
	removeUseCase RemoveMemberExecutor
	acceptUseCase AcceptInvitationExecutor
	revokeUseCase RevokeInvitationExecutor
	logger        logger.Interface
}

func NewTeamHandler(
	listUC ListMembersExecutor,
	inviteUC InviteMemberExecutor,
	addUC AddMemberExecutor,
	updateUC UpdateMemberExecutor,
	removeUC RemoveMemberExecutor,
	acceptUC AcceptInvitationExecutor,
	revokeUC RevokeInvitationExecutor,
	logger logger.Interface,
) *TeamHandler {
	return &TeamHandler{
		listUseCase:   listUC,
		inviteUseCase: inviteUC,
		addUseCase:    addUC,
		updateUseCase: updateUC,
		removeUseCase: removeUC,
		acceptUseCase: acceptUC,
		revokeUseCase: revokeUC,
		logger:        logger,
	}
}

func (h *TeamHandler) List(c *gin.Context) {
	view, err := h.listUseCase.Execute(c.Request.Context(), middleware.TenantIDFrom(c))
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	resp := TeamResponse{
		Members:     make([]MemberResponse, len(view.Members)),
		Invitations: make([]InvitationResponse, len(view.Invitations)),
	}
	for i, m := range view.Members {
		resp.Members[i] = toMemberResponse(m)
	}
	for i, inv := range view.Invitations {
		resp.Invitations[i] = toInvitationResponse(inv, false)
	}
	utils.SuccessResponse(c, http.StatusOK, "", resp)
}

func (h *TeamHandler) Invite(c *gin.Context) {
	var cmd usecases.InviteMemberCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		h.logger.Warnw("invalid request body for invite member", "error", err)
		utils.ErrorResponseWithError(c, bindError(err))
		return
	}
	cmd.TenantID = middleware.TenantIDFrom(c)
	cmd.Actor = assigner(c)

	inv, err := h.inviteUseCase.Execute(c.Request.Context(), cmd)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.CreatedResponse(c, toInvitationResponse(inv, true), "invitation created")
}

func (h *TeamHandler) Add(c *gin.Context) {
	var cmd usecases.AddMemberCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		h.logger.Warnw("invalid request body for add member", "error", err)
		utils.ErrorResponseWithError(c, bindError(err))
		return
	}
	cmd.TenantID = middleware.TenantIDFrom(c)
	cmd.Actor = assigner(c)

	m, err := h.addUseCase.Execute(c.Request.Context(), cmd)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.CreatedResponse(c, toMemberResponse(m), "member added")
}

func (h *TeamHandler) Update(c *gin.Context) {
	userID := c.Param("userID")
	if userID == "" {
		utils.ErrorResponseWithError(c, apperrors.NewValidationError("user ID is required"))
		return
	}

	var cmd usecases.UpdateMemberCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		h.logger.Warnw("invalid request body for update member", "error", err)
		utils.ErrorResponseWithError(c, bindError(err))
		return
	}
	cmd.TenantID = middleware.TenantIDFrom(c)
	cmd.Actor = assigner(c)
	cmd.UserID = userID

	m, err := h.updateUseCase.Execute(c.Request.Context(), cmd)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "member updated", toMemberResponse(m))
}

func (h *TeamHandler) Remove(c *gin.Context) {
	userID := c.Param("userID")
	if userID == "" {
		utils.ErrorResponseWithError(c, apperrors.NewValidationError("user ID is required"))
		return
	}

	err := h.removeUseCase.Execute(c.Request.Context(), usecases.RemoveMemberCommand{
		TenantID: middleware.TenantIDFrom(c),
		Actor:    assigner(c),
		UserID:   userID,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.NoContentResponse(c)
}

func (h *TeamHandler) Revoke(c *gin.Context) {
	invitationID, err := utils.ParseSIDParam(c, "invitationID", id.PrefixInvitation, "invitation")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	err = h.revokeUseCase.Execute(c.Request.Context(), usecases.RevokeInvitationCommand{
		TenantID:     middleware.TenantIDFrom(c),
		InvitationID: invitationID,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.NoContentResponse(c)
}

type acceptInvitationRequest struct {
	DisplayName string `json:"displayName"`
}

// Accept joins the caller to the inviting tenant. It runs outside the
// tenant scope since the caller has no membership yet.
func (h *TeamHandler) Accept(c *gin.Context) {
	token := c.Param("token")
	if token == "" {
		utils.ErrorResponseWithError(c, apperrors.NewValidationError("invitation token is required"))
		return
	}

	var req acceptInvitationRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.ErrorResponseWithError(c, bindError(err))
			return
		}
	}

	m, err := h.acceptUseCase.Execute(c.Request.Context(), usecases.AcceptInvitationCommand{
		Token:       token,
		UserID:      c.GetString(constants.ContextKeyUserID),
		DisplayName: req.DisplayName,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "invitation accepted", toMemberResponse(m))
}
