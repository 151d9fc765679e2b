package handlers

import (
	"net/http"

	"gym_backend/internal/services"
	"gym_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// ProbeHandler answers connectivity checks.
type ProbeHandler struct {
	probeService services.ProbeService
}

func NewProbeHandler(ps services.ProbeService) *ProbeHandler {
	return &ProbeHandler{probeService: ps}
}

func (h *ProbeHandler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}

func (h *ProbeHandler) Count(c *gin.Context) {
	count, err := h.probeService.Count(c.Request.Context())
	if err != nil {
		utils.LogError(err, "ProbeCount: Error from probeService.Count")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusServiceUnavailable, utils.ErrCodeServiceUnavailable, "Database unavailable.", ""))
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

func (h *ProbeHandler) Touch(c *gin.Context) {
	touchedAt, err := h.probeService.Touch(c.Request.Context())
	if err != nil {
		utils.LogError(err, "ProbeTouch: Error from probeService.Touch")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusServiceUnavailable, utils.ErrCodeServiceUnavailable, "Database unavailable.", ""))
		return
	}
	c.JSON(http.StatusOK, gin.H{"touched_at": touchedAt})
}
