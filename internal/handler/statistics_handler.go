package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-attendance-tracker/internal/middleware"
	"github.com/noah-isme/sma-attendance-tracker/pkg/response"
)

// StatisticsHandler exposes the session-wide statistics.
type StatisticsHandler struct {
	stats statisticsService
}

// NewStatisticsHandler constructs StatisticsHandler.
func NewStatisticsHandler(stats statisticsService) *StatisticsHandler {
	return &StatisticsHandler{stats: stats}
}

// Overview godoc
// @Summary Roster size, overall attendance rate and per-student rates
// @Tags Statistics
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /statistics [get]
func (h *StatisticsHandler) Overview(c *gin.Context) {
	overview, err := h.stats.Overview(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, overview, middleware.ResponseMeta(c, nil))
}
