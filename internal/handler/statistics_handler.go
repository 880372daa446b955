package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type StatisticsHandler struct {
	statisticsService service.StatisticsService
}

func NewStatisticsHandler(statisticsService service.StatisticsService) *StatisticsHandler {
	return &StatisticsHandler{statisticsService: statisticsService}
}

func (h *StatisticsHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/api/statistics/overview", middleware.Authenticated(), h.Overview)
}

// Overview handles GET /api/statistics/overview
// @Summary      Proposal status counts
// @Description  Counts proposals per aggregate status within the caller's visible scope
// @Tags         statistics
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=service.StatisticsOverview}
// @Router       /api/statistics/overview [get]
func (h *StatisticsHandler) Overview(c *gin.Context) {
	caller, ok := identityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid identity"))
		return
	}

	overview, err := h.statisticsService.Overview(c.Request.Context(), caller)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, overview))
}
