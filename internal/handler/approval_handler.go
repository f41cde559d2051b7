package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/model"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type ApprovalHandler struct {
	approvalService service.ApprovalService
}

func NewApprovalHandler(approvalService service.ApprovalService) *ApprovalHandler {
	return &ApprovalHandler{approvalService: approvalService}
}

func (h *ApprovalHandler) RegisterRoutes(router *gin.RouterGroup) {
	approvals := router.Group("/api/approval-requests")
	{
		approvals.POST("", middleware.RequireRole(model.RoleInternal), h.CreateApprovalRequest)
		approvals.GET("", middleware.RequireRole(model.RoleManager), h.ListApprovalRequests)
		approvals.GET("/:id", middleware.RequireRole(model.RoleInternal, model.RoleManager), h.GetApprovalRequest)
		approvals.PUT("/:id/process", middleware.RequireRole(model.RoleManager), h.ProcessApproval)
	}
	router.GET("/api/my-approval-requests", middleware.RequireRole(model.RoleInternal), h.ListMyApprovalRequests)
}

// CreateApprovalRequest files a pending approval request for a project gate
// @Summary      Create approval request
// @Description  Files a Pending request; at most one Pending request per project and type
// @Tags         approvals
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateApprovalRequestDTO  true  "Request payload"
// @Success      201      {object}  response.Response{data=service.ApprovalRequestResponse}
// @Failure      409      {object}  response.Response
// @Failure      422      {object}  response.Response
// @Router       /api/approval-requests [post]
func (h *ApprovalHandler) CreateApprovalRequest(c *gin.Context) {
	var req service.CreateApprovalRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	result, err := h.approvalService.CreateApprovalRequest(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, result))
}

// ListApprovalRequests returns approval requests, optionally filtered by status
// @Summary      List approval requests
// @Tags         approvals
// @Produce      json
// @Security     BearerAuth
// @Param        status  query     string  false  "Pending, Approved or Rejected"
// @Param        page    query     int     false  "Page"
// @Param        limit   query     int     false  "Limit"
// @Success      200     {object}  response.PaginatedResponse
// @Router       /api/approval-requests [get]
func (h *ApprovalHandler) ListApprovalRequests(c *gin.Context) {
	params := pagination.Parse(c)
	filter := service.ApprovalFilter{
		Status: c.Query("status"),
		Page:   params.Page,
		Limit:  params.Limit,
	}

	approvals, total, err := h.approvalService.ListApprovalRequests(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, approvals, total, params.Page, params.Limit))
}

// ListMyApprovalRequests returns requests filed by the caller
// @Summary      List own approval requests
// @Tags         approvals
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=[]service.ApprovalRequestResponse}
// @Router       /api/my-approval-requests [get]
func (h *ApprovalHandler) ListMyApprovalRequests(c *gin.Context) {
	approvals, err := h.approvalService.ListMyApprovalRequests(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, approvals))
}

// GetApprovalRequest returns one approval request with its project
// @Summary      Get approval request
// @Tags         approvals
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Approval request ID"
// @Success      200  {object}  response.Response{data=service.ApprovalRequestResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/approval-requests/{id} [get]
func (h *ApprovalHandler) GetApprovalRequest(c *gin.Context) {
	result, err := h.approvalService.GetApprovalRequest(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// ProcessApproval resolves a pending request and applies the project transition
// @Summary      Resolve approval request
// @Description  One-shot resolution; the matching project transition is applied atomically
// @Tags         approvals
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                      true  "Approval request ID"
// @Param        payload  body      service.ProcessApprovalDTO  true  "Resolution payload"
// @Success      200      {object}  response.Response{data=service.ApprovalRequestResponse}
// @Failure      404      {object}  response.Response
// @Failure      422      {object}  response.Response
// @Router       /api/approval-requests/{id}/process [put]
func (h *ApprovalHandler) ProcessApproval(c *gin.Context) {
	var req service.ProcessApprovalDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	result, err := h.approvalService.ProcessApproval(c.Request.Context(), currentUserID(c), c.Param("id"), *req.IsApproved, req.ApprovalComment)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}
