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

type AuditHandler struct {
	auditService service.AuditService
}

func NewAuditHandler(auditService service.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

func (h *AuditHandler) RegisterRoutes(router *gin.RouterGroup) {
	audits := router.Group("/api/audit-logs")
	{
		audits.GET("", middleware.RequireRole(model.RoleManager), h.ListAuditLogs)
		audits.GET("/:entityId", middleware.RequireRole(model.RoleManager), h.GetEntityHistory)
	}
}

// ListAuditLogs returns the audit trail, newest first
// @Summary      List audit logs
// @Tags         audit
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page"
// @Param        limit  query     int  false  "Limit"
// @Success      200    {object}  response.PaginatedResponse
// @Router       /api/audit-logs [get]
func (h *AuditHandler) ListAuditLogs(c *gin.Context) {
	params := pagination.Parse(c)

	logs, total, err := h.auditService.GetAuditLogs(c.Request.Context(), params.Page, params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, logs, total, params.Page, params.Limit))
}

// GetEntityHistory returns the trail for one entity, oldest first
// @Summary      Get entity audit history
// @Tags         audit
// @Produce      json
// @Security     BearerAuth
// @Param        entityId  path      string  true  "Entity ID"
// @Success      200       {object}  response.Response{data=[]service.AuditLogResponse}
// @Router       /api/audit-logs/{entityId} [get]
func (h *AuditHandler) GetEntityHistory(c *gin.Context) {
	logs, err := h.auditService.GetEntityHistory(c.Request.Context(), c.Param("entityId"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, logs))
}
