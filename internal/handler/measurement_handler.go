package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/model"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type MeasurementHandler struct {
	judgmentService service.JudgmentService
}

func NewMeasurementHandler(judgmentService service.JudgmentService) *MeasurementHandler {
	return &MeasurementHandler{judgmentService: judgmentService}
}

func (h *MeasurementHandler) RegisterRoutes(router *gin.RouterGroup) {
	measurements := router.Group("/api/measurements")
	{
		measurements.PUT("/:id/judgment", middleware.RequireRole(model.RoleInternal), h.SetJudgment)
		measurements.GET("/:id/judgment", middleware.RequireRole(model.RoleInternal, model.RoleSupplier, model.RoleManager), h.GetJudgment)
	}
}

// SetJudgment applies a manual pass/fail override to a measurement record
// @Summary      Override judgment
// @Description  Manual judgment takes precedence over the tolerance comparison; last write wins
// @Tags         measurements
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                      true  "Measurement record ID"
// @Param        payload  body      service.SetJudgmentRequest  true  "Override payload"
// @Success      200      {object}  response.Response{data=service.MeasurementResponse}
// @Failure      404      {object}  response.Response
// @Router       /api/measurements/{id}/judgment [put]
func (h *MeasurementHandler) SetJudgment(c *gin.Context) {
	var req service.SetJudgmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	result, err := h.judgmentService.SetJudgment(c.Request.Context(), currentUserID(c), c.Param("id"), *req.IsOK, req.Comment)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// GetJudgment returns a record with its effective judgment
// @Summary      Get judgment
// @Tags         measurements
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Measurement record ID"
// @Success      200  {object}  response.Response{data=service.MeasurementResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/measurements/{id}/judgment [get]
func (h *MeasurementHandler) GetJudgment(c *gin.Context) {
	result, err := h.judgmentService.GetFinalJudgment(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}
