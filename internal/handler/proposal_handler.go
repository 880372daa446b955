package handler

import (
	"context"
	"net/http"

	"backend/internal/middleware"
	"backend/internal/model"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type ProposalHandler struct {
	proposalService service.ProposalService
}

func NewProposalHandler(proposalService service.ProposalService) *ProposalHandler {
	return &ProposalHandler{proposalService: proposalService}
}

func (h *ProposalHandler) RegisterRoutes(router *gin.RouterGroup) {
	apf := router.Group("/api/apf")
	{
		apf.POST("", middleware.RequireRole(model.RoleStudent, model.RoleHead), h.Submit)
		apf.GET("/pending", middleware.Authenticated(), h.ListPending)
		apf.GET("/approved", middleware.Authenticated(), h.ListApproved)
		apf.GET("/rejected", middleware.Authenticated(), h.ListRejected)
		apf.PATCH("/approve/:id", middleware.RequireRole(model.RoleHead, model.RoleOsa, model.RoleVpa, model.RoleVpaa), h.Approve)
		apf.PATCH("/reject/:id", middleware.RequireRole(model.RoleHead, model.RoleOsa, model.RoleVpa, model.RoleVpaa), h.Reject)
		apf.GET("/:id", middleware.Authenticated(), h.GetByID)
	}
}

// Submit handles POST /api/apf to create a new activity proposal
// @Summary      Submit activity proposal
// @Description  Creates a proposal with all approval statuses PENDING, tied to the caller's organization
// @Tags         apf
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateProposalRequest  true  "Proposal fields"
// @Success      201      {object}  response.Response{data=service.ProposalDetail}
// @Failure      400      {object}  response.Response
// @Router       /api/apf [post]
func (h *ProposalHandler) Submit(c *gin.Context) {
	caller, ok := identityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid identity"))
		return
	}

	var req service.CreateProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	detail, err := h.proposalService.Submit(c.Request.Context(), caller, req)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, detail))
}

// Approve handles PATCH /api/apf/approve/:id
// @Summary      Approve proposal
// @Description  Records the caller's approval; the proposal becomes APPROVED once all four approvers have approved
// @Tags         apf
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Proposal ID"
// @Success      200  {object}  response.Response{data=service.ProposalDetail}
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/apf/approve/{id} [patch]
func (h *ProposalHandler) Approve(c *gin.Context) {
	h.decide(c, h.proposalService.Approve)
}

// Reject handles PATCH /api/apf/reject/:id
// @Summary      Reject proposal
// @Description  Records the caller's rejection; a single rejection makes the proposal REJECTED
// @Tags         apf
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Proposal ID"
// @Success      200  {object}  response.Response{data=service.ProposalDetail}
// @Failure      404  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/apf/reject/{id} [patch]
func (h *ProposalHandler) Reject(c *gin.Context) {
	h.decide(c, h.proposalService.Reject)
}

func (h *ProposalHandler) decide(c *gin.Context, fn func(ctx context.Context, caller service.Identity, id string) (service.ProposalDetail, error)) {
	caller, ok := identityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid identity"))
		return
	}

	detail, err := fn(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, detail))
}

// ListPending handles GET /api/apf/pending with role-scoped visibility
// @Summary      List pending proposals
// @Tags         apf
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=object}
// @Router       /api/apf/pending [get]
func (h *ProposalHandler) ListPending(c *gin.Context) {
	h.list(c, h.proposalService.ListPending)
}

// ListApproved handles GET /api/apf/approved
// @Summary      List approved proposals
// @Tags         apf
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=object}
// @Router       /api/apf/approved [get]
func (h *ProposalHandler) ListApproved(c *gin.Context) {
	h.list(c, h.proposalService.ListApproved)
}

// ListRejected handles GET /api/apf/rejected
// @Summary      List rejected proposals
// @Tags         apf
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=object}
// @Router       /api/apf/rejected [get]
func (h *ProposalHandler) ListRejected(c *gin.Context) {
	h.list(c, h.proposalService.ListRejected)
}

func (h *ProposalHandler) list(c *gin.Context, fn func(ctx context.Context, caller service.Identity, params pagination.Params) ([]service.ProposalSummary, int64, error)) {
	caller, ok := identityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid identity"))
		return
	}

	params := pagination.Parse(c)
	summaries, total, err := fn(c.Request.Context(), caller, params)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{
		"proposals":  summaries,
		"pagination": params.MetaFor(total),
	}))
}

// GetByID handles GET /api/apf/:id returning the full proposal detail
// @Summary      Get proposal detail
// @Tags         apf
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Proposal ID"
// @Success      200  {object}  response.Response{data=service.ProposalDetail}
// @Failure      404  {object}  response.Response
// @Router       /api/apf/{id} [get]
func (h *ProposalHandler) GetByID(c *gin.Context) {
	caller, ok := identityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid identity"))
		return
	}

	detail, err := h.proposalService.GetByID(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, detail))
}
