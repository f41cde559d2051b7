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

type NotificationHandler struct {
	notificationService service.NotificationService
}

func NewNotificationHandler(notificationService service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

func (h *NotificationHandler) RegisterRoutes(router *gin.RouterGroup) {
	notifications := router.Group("/api/notifications")
	{
		notifications.POST("", middleware.RequireRole(model.RoleInternal, model.RoleManager), h.CreateNotification)
		notifications.GET("", middleware.RequireRole(model.RoleInternal, model.RoleSupplier, model.RoleManager), h.ListNotifications)
		notifications.PUT("/:id/read", middleware.RequireRole(model.RoleInternal, model.RoleSupplier, model.RoleManager), h.MarkAsRead)
	}
}

// CreateNotification publishes a notification for a project
// @Summary      Create notification
// @Description  Empty supplierId makes the notification visible to every supplier
// @Tags         notifications
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateNotificationDTO  true  "Notification payload"
// @Success      201      {object}  response.Response{data=service.NotificationResponse}
// @Failure      404      {object}  response.Response
// @Router       /api/notifications [post]
func (h *NotificationHandler) CreateNotification(c *gin.Context) {
	var req service.CreateNotificationDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	result, err := h.notificationService.CreateNotification(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, result))
}

// ListNotifications returns notifications visible to the caller
// @Summary      List notifications
// @Description  Suppliers see their own notifications plus broadcasts; other roles see everything
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page"
// @Param        limit  query     int  false  "Limit"
// @Success      200    {object}  response.PaginatedResponse
// @Router       /api/notifications [get]
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	params := pagination.Parse(c)

	role, _ := c.Get("userRole")
	roleStr, _ := role.(string)
	supplierID, _ := c.Get("supplierID")
	supplierStr, _ := supplierID.(string)

	notifications, total, err := h.notificationService.ListNotifications(c.Request.Context(), roleStr, supplierStr, params.Page, params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, notifications, total, params.Page, params.Limit))
}

// MarkAsRead marks a notification as read
// @Summary      Mark notification as read
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Notification ID"
// @Success      200  {object}  response.Response{data=service.NotificationResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/notifications/{id}/read [put]
func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	result, err := h.notificationService.MarkAsRead(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}
