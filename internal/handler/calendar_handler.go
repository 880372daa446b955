package handler

import (
	"net/http"
	"strconv"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/apperror"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type CalendarHandler struct {
	calendarService service.CalendarService
}

func NewCalendarHandler(calendarService service.CalendarService) *CalendarHandler {
	return &CalendarHandler{calendarService: calendarService}
}

func (h *CalendarHandler) RegisterRoutes(router *gin.RouterGroup) {
	calendar := router.Group("/api/calendar", middleware.Authenticated())
	{
		calendar.GET("/holidays", h.Holidays)
		calendar.GET("/activities", h.ApprovedActivities)
	}
}

// Holidays handles GET /api/calendar/holidays?year=&country=
// @Summary      List public holidays
// @Description  Public holidays from the external feed, cached server-side
// @Tags         calendar
// @Produce      json
// @Security     BearerAuth
// @Param        year     query     int     false  "Year (default current)"
// @Param        country  query     string  false  "Country code (default PH)"
// @Success      200      {object}  response.Response{data=object}
// @Router       /api/calendar/holidays [get]
func (h *CalendarHandler) Holidays(c *gin.Context) {
	year, _ := strconv.Atoi(c.Query("year"))
	country := c.Query("country")

	holidays, err := h.calendarService.Holidays(c.Request.Context(), year, country)
	if err != nil {
		// Unclassified errors here mean the upstream feed failed
		if apperror.KindOf(err) == apperror.KindInternal {
			c.JSON(http.StatusBadGateway, response.Error(http.StatusBadGateway, "Failed to fetch holidays"))
			return
		}
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, holidays))
}

// ApprovedActivities handles GET /api/calendar/activities
// @Summary      List approved activities
// @Description  Approved proposals projected for calendar display
// @Tags         calendar
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=object}
// @Router       /api/calendar/activities [get]
func (h *CalendarHandler) ApprovedActivities(c *gin.Context) {
	activities, err := h.calendarService.ApprovedActivities(c.Request.Context())
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, activities))
}
