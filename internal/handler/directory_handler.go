package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type DirectoryHandler struct {
	directoryService service.DirectoryService
}

func NewDirectoryHandler(directoryService service.DirectoryService) *DirectoryHandler {
	return &DirectoryHandler{directoryService: directoryService}
}

func (h *DirectoryHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/api/organizations", middleware.Authenticated(), h.ListOrganizations)
	router.GET("/api/venues", middleware.Authenticated(), h.ListVenues)
}

// ListOrganizations handles GET /api/organizations
// @Summary      List organizations
// @Tags         directory
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=object}
// @Router       /api/organizations [get]
func (h *DirectoryHandler) ListOrganizations(c *gin.Context) {
	orgs, err := h.directoryService.ListOrganizations(c.Request.Context())
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, orgs))
}

// ListVenues handles GET /api/venues
// @Summary      List venues
// @Tags         directory
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=object}
// @Router       /api/venues [get]
func (h *DirectoryHandler) ListVenues(c *gin.Context) {
	venues, err := h.directoryService.ListVenues(c.Request.Context())
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, venues))
}
