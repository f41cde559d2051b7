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

type ProjectHandler struct {
	projectService service.ProjectService
}

func NewProjectHandler(projectService service.ProjectService) *ProjectHandler {
	return &ProjectHandler{projectService: projectService}
}

func (h *ProjectHandler) RegisterRoutes(router *gin.RouterGroup) {
	projects := router.Group("/api/projects")
	{
		projects.GET("", middleware.RequireRole(model.RoleInternal, model.RoleManager), h.ListProjects)
		projects.POST("", middleware.RequireRole(model.RoleInternal), h.CreateProject)
		projects.PUT("/:id/approve", middleware.RequireRole(model.RoleManager), h.ApproveProject)
		projects.POST("/:id/import", middleware.RequireRole(model.RoleInternal), h.ImportMeasurements)
	}
	router.GET("/api/inspections",
		middleware.RequireRole(model.RoleInternal, model.RoleManager, model.RoleSupplier),
		h.ListInspections)
}

// CreateProject creates a new inspection project in Draft status
// @Summary      Create project
// @Description  Creates a part/lot inspection project; tolUpper must be greater than tolLower
// @Tags         projects
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateProjectRequest  true  "Project payload"
// @Success      201      {object}  response.Response{data=service.ProjectResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/projects [post]
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	var req service.CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	project, err := h.projectService.CreateProject(c.Request.Context(), currentUserID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, project))
}

// ListProjects returns paginated projects
// @Summary      List projects
// @Tags         projects
// @Produce      json
// @Security     BearerAuth
// @Param        page   query     int  false  "Page"
// @Param        limit  query     int  false  "Limit"
// @Success      200    {object}  response.PaginatedResponse
// @Router       /api/projects [get]
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	params := pagination.Parse(c)

	projects, total, err := h.projectService.ListProjects(c.Request.Context(), params.Page, params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Paginated(http.StatusOK, projects, total, params.Page, params.Limit))
}

// ListInspections returns projects with their records and judgments
// @Summary      List inspection results
// @Tags         inspections
// @Produce      json
// @Security     BearerAuth
// @Param        partNo  query     string  false  "Part number"
// @Param        lotNo   query     string  false  "Lot number"
// @Success      200     {object}  response.Response{data=[]service.InspectionResponse}
// @Router       /api/inspections [get]
func (h *ProjectHandler) ListInspections(c *gin.Context) {
	inspections, err := h.projectService.ListInspections(c.Request.Context(), c.Query("partNo"), c.Query("lotNo"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, inspections))
}

// ApproveProject is the manager fast path from Locked to Fixed
// @Summary      Approve project directly
// @Description  Moves a Locked project to Fixed without the request/resolve workflow
// @Tags         projects
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Project ID"
// @Success      200  {object}  response.Response{data=service.ProjectResponse}
// @Failure      404  {object}  response.Response
// @Failure      422  {object}  response.Response
// @Router       /api/projects/{id}/approve [put]
func (h *ProjectHandler) ApproveProject(c *gin.Context) {
	project, err := h.projectService.ApproveProject(c.Request.Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, project))
}

type importMeasurementsRequest struct {
	Records []service.MeasurementRowRequest `json:"records" binding:"required,min=1,dive"`
}

// ImportMeasurements registers parsed measurement rows for a Draft project
// @Summary      Import measurements
// @Description  Inserts measurement records and locks the project in one transaction
// @Tags         projects
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                      true  "Project ID"
// @Param        payload  body      importMeasurementsRequest  true  "Measurement rows"
// @Success      200      {object}  response.Response{data=service.ProjectResponse}
// @Failure      422      {object}  response.Response
// @Router       /api/projects/{id}/import [post]
func (h *ProjectHandler) ImportMeasurements(c *gin.Context) {
	var req importMeasurementsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	project, err := h.projectService.ImportMeasurements(c.Request.Context(), currentUserID(c), c.Param("id"), req.Records)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, project))
}
