package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"tillpoint/internal/application/location/usecases"
	"tillpoint/internal/interfaces/http/middleware"
	"tillpoint/internal/shared/id"
	"tillpoint/internal/shared/logger"
	"tillpoint/internal/shared/utils"
)

type LocationHandler struct {
	listUseCase     ListLocationsExecutor
	createUseCase   CreateLocationExecutor
	updateUseCase   UpdateLocationExecutor
	deleteUseCase   DeleteLocationExecutor
	branchesUseCase ListBranchesExecutor
	logger          logger.Interface
}

func NewLocationHandler(
	listUC ListLocationsExecutor,
	createUC CreateLocationExecutor,
	updateUC UpdateLocationExecutor,
	deleteUC DeleteLocationExecutor,
	branchesUC ListBranchesExecutor,
	logger logger.Interface,
) *LocationHandler {
	return &LocationHandler{
		listUseCase:     listUC,
		createUseCase:   createUC,
		updateUseCase:   updateUC,
		deleteUseCase:   deleteUC,
		branchesUseCase: branchesUC,
		logger:          logger,
	}
}

func (h *LocationHandler) List(c *gin.Context) {
	includeInactive, _ := strconv.ParseBool(c.Query("include_inactive"))
	locs, err := h.listUseCase.Execute(c.Request.Context(), usecases.ListLocationsQuery{
		TenantID:        middleware.TenantIDFrom(c),
		IncludeInactive: includeInactive,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", toLocationResponses(locs))
}

func (h *LocationHandler) Create(c *gin.Context) {
	var cmd usecases.CreateLocationCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		h.logger.Warnw("invalid request body for create location", "error", err)
		utils.ErrorResponseWithError(c, bindError(err))
		return
	}
	cmd.TenantID = middleware.TenantIDFrom(c)

	result, err := h.createUseCase.Execute(c.Request.Context(), cmd)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	loc := toLocationResponse(result.Location)
	utils.CreatedResponse(c, MutationResponse{Location: &loc, Warning: warningText(result.Warning)}, "location created")
}

func (h *LocationHandler) Update(c *gin.Context) {
	locationID, err := utils.ParseSIDParam(c, "locationID", id.PrefixLocation, "location")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	var cmd usecases.UpdateLocationCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		h.logger.Warnw("invalid request body for update location", "error", err)
		utils.ErrorResponseWithError(c, bindError(err))
		return
	}
	cmd.TenantID = middleware.TenantIDFrom(c)
	cmd.LocationID = locationID

	result, err := h.updateUseCase.Execute(c.Request.Context(), cmd)
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	loc := toLocationResponse(result.Location)
	utils.SuccessResponse(c, http.StatusOK, "location updated", MutationResponse{Location: &loc, Warning: warningText(result.Warning)})
}

func (h *LocationHandler) Delete(c *gin.Context) {
	locationID, err := utils.ParseSIDParam(c, "locationID", id.PrefixLocation, "location")
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	result, err := h.deleteUseCase.Execute(c.Request.Context(), usecases.DeleteLocationCommand{
		TenantID:   middleware.TenantIDFrom(c),
		LocationID: locationID,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "location deleted", MutationResponse{Warning: warningText(result.Warning)})
}

func (h *LocationHandler) ListBranches(c *gin.Context) {
	includeDeleted, _ := strconv.ParseBool(c.Query("include_deleted"))
	branches, err := h.branchesUseCase.Execute(c.Request.Context(), usecases.ListBranchesQuery{
		TenantID:       middleware.TenantIDFrom(c),
		IncludeDeleted: includeDeleted,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}
	utils.SuccessResponse(c, http.StatusOK, "", toBranchResponses(branches))
}
