package handler

import (
	"io"
	"net/http"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/internal/storage"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type UploadHandler struct {
	uploadService service.UploadService
	store         *storage.LocalStore
}

func NewUploadHandler(uploadService service.UploadService, store *storage.LocalStore) *UploadHandler {
	return &UploadHandler{uploadService: uploadService, store: store}
}

func (h *UploadHandler) RegisterRoutes(router *gin.RouterGroup) {
	uploads := router.Group("/api/uploads")
	{
		uploads.POST("/presign", middleware.Authenticated(), h.PresignUploads)
		uploads.GET("/presign-download", middleware.Authenticated(), h.PresignDownload)
	}

	// Targets of the local store's presigned URLs
	router.PUT("/uploads/:token", h.PutObject)
	router.GET("/downloads/:token", h.GetObject)
}

// PresignUploads handles POST /api/uploads/presign
// @Summary      Presign uploads
// @Description  Generates presigned upload URLs for a batch of attachment files
// @Tags         uploads
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.PresignUploadsRequest  true  "Files to presign"
// @Success      200      {object}  response.Response{data=object}
// @Failure      400      {object}  response.Response
// @Router       /api/uploads/presign [post]
func (h *UploadHandler) PresignUploads(c *gin.Context) {
	var req service.PresignUploadsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "files array is required"))
		return
	}

	uploads, err := h.uploadService.PresignUploads(c.Request.Context(), req)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"uploads": uploads}))
}

// PresignDownload handles GET /api/uploads/presign-download?key=...
// @Summary      Presign download
// @Tags         uploads
// @Produce      json
// @Security     BearerAuth
// @Param        key  query     string  true  "Storage key"
// @Success      200  {object}  response.Response{data=service.PresignedDownload}
// @Failure      400  {object}  response.Response
// @Router       /api/uploads/presign-download [get]
func (h *UploadHandler) PresignDownload(c *gin.Context) {
	result, err := h.uploadService.PresignDownload(c.Request.Context(), c.Query("key"))
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// PutObject receives the body of a presigned upload for the local store.
func (h *UploadHandler) PutObject(c *gin.Context) {
	key, err := h.store.Redeem(c.Param("token"), http.MethodPut)
	if err != nil {
		c.JSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Invalid or expired upload URL"))
		return
	}

	defer c.Request.Body.Close()
	if err := h.store.Save(key, c.Request.Body); err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to store file"))
		return
	}

	c.Status(http.StatusOK)
}

// GetObject serves the body of a presigned download for the local store.
func (h *UploadHandler) GetObject(c *gin.Context) {
	key, err := h.store.Redeem(c.Param("token"), http.MethodGet)
	if err != nil {
		c.JSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Invalid or expired download URL"))
		return
	}

	file, err := h.store.Open(key)
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, "File not found"))
		return
	}
	defer file.Close()

	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, file)
}
