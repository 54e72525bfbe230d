package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gymtrack/gymtrack-api/internal/dto"
	"github.com/gymtrack/gymtrack-api/pkg/response"
)

type dashboardService interface {
	Stats(ctx context.Context) (*dto.DashboardStatsResponse, bool, error)
	InstructorSchedules(ctx context.Context) ([]dto.InstructorScheduleEntry, bool, error)
}

// DashboardHandler exposes the admin overview endpoints.
type DashboardHandler struct {
	dashboard dashboardService
}

// NewDashboardHandler constructs DashboardHandler.
func NewDashboardHandler(dashboard dashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// Stats godoc
// @Summary Dashboard counters
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /dashboard/stats [get]
func (h *DashboardHandler) Stats(c *gin.Context) {
	stats, cached, err := h.dashboard.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil, map[string]interface{}{"cached": cached})
}

// InstructorSchedules godoc
// @Summary Instructor schedule overview
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /dashboard/instructor-schedules [get]
func (h *DashboardHandler) InstructorSchedules(c *gin.Context) {
	entries, cached, err := h.dashboard.InstructorSchedules(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil, map[string]interface{}{"cached": cached})
}
