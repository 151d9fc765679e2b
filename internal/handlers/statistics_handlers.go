package handlers

import (
	"net/http"

	"gym_backend/internal/services"
	"gym_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// StatisticsHandler serves the admin dashboard figures.
type StatisticsHandler struct {
	statisticsService services.StatisticsService
}

func NewStatisticsHandler(ss services.StatisticsService) *StatisticsHandler {
	return &StatisticsHandler{statisticsService: ss}
}

func (h *StatisticsHandler) GetDashboard(c *gin.Context) {
	stats, err := h.statisticsService.GetDashboard(c.Request.Context())
	if err != nil {
		utils.LogError(err, "GetDashboard: Error from statisticsService.GetDashboard")
		utils.RespondInternal(c, "Failed to compute statistics.")
		return
	}
	c.JSON(http.StatusOK, stats)
}
