package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/tableorder-api/internal/application/service"
	"github.com/sangkips/tableorder-api/internal/presentation/http/dto/response"
)

// DashboardHandler handles dashboard-related HTTP requests
type DashboardHandler struct {
	dashboardService *service.DashboardService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// GetStats returns sales analytics. days sets the daily summary window.
// @Router /admin/dashboard [get]
func (h *DashboardHandler) GetStats(c *gin.Context) {
	days, _ := strconv.Atoi(c.DefaultQuery("days", "7"))

	stats, err := h.dashboardService.GetDashboardStats(c.Request.Context(), days)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Dashboard stats retrieved successfully", stats)
}
