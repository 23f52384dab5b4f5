package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ai-persona-chat/backend/internal/service"
)

// MetricsHandler exposes the conversation analytics summary.
type MetricsHandler struct {
	metrics *service.MetricsService
}

func NewMetricsHandler(metrics *service.MetricsService) *MetricsHandler {
	return &MetricsHandler{metrics: metrics}
}

// Summary handles GET /metrics/summary.
func (h *MetricsHandler) Summary(c *gin.Context) {
	summary, err := h.metrics.Summary(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
