package handler

import (
	"net/http"
	"path"
	"strings"
	"time"

	"backend/internal/middleware"
	"backend/internal/model"
	"backend/internal/storage"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ImportHandler struct {
	uploader storage.Uploader
}

func NewImportHandler(uploader storage.Uploader) *ImportHandler {
	return &ImportHandler{uploader: uploader}
}

func (h *ImportHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/api/import", middleware.RequireRole(model.RoleInternal), h.CreateUploadURL)
}

type createUploadURLRequest struct {
	FileName string `json:"fileName" binding:"required"`
	Size     int64  `json:"size"`
}

type createUploadURLResponse struct {
	SasURL     string `json:"sasUrl"`
	ObjectName string `json:"objectName"`
	ExpiresUTC string `json:"expiresUtc"`
}

// CreateUploadURL issues a presigned PUT URL for uploading a measurement file
// @Summary      Request upload URL
// @Description  The client uploads the file directly to object storage via the returned URL
// @Tags         imports
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      createUploadURLRequest  true  "Upload request"
// @Success      200      {object}  response.Response{data=createUploadURLResponse}
// @Router       /api/import [post]
func (h *ImportHandler) CreateUploadURL(c *gin.Context) {
	var req createUploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	// Object names are namespaced per upload so concurrent imports of the
	// same file name cannot clobber each other.
	base := path.Base(strings.TrimSpace(req.FileName))
	if base == "" || base == "." || base == "/" {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid file name"))
		return
	}
	objectName := "imports/" + uuid.NewString() + "/" + base

	url, expires, err := h.uploader.PresignUpload(c.Request.Context(), objectName)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, createUploadURLResponse{
		SasURL:     url,
		ObjectName: objectName,
		ExpiresUTC: expires.UTC().Format(time.RFC3339),
	}))
}
