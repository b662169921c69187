// internal/api/handlers/metrics_handler.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/retail-ars/internal/domain"
	"github.com/andresuchdata/retail-ars/internal/service"
)

// MetricsHandler serves the read-only analytics endpoints over the
// persisted retail_ars table.
type MetricsHandler struct {
	svc *service.MetricsService
}

func NewMetricsHandler(svc *service.MetricsService) *MetricsHandler {
	return &MetricsHandler{svc: svc}
}

// GetSummary returns per-segment aggregates, optionally scoped to a channel.
func (h *MetricsHandler) GetSummary(c *gin.Context) {
	channel := c.Query("channel")
	out, err := h.svc.SummaryBySegment(c.Request.Context(), channel)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": out})
}

// GetItems lists metric rows with filters and pagination.
func (h *MetricsHandler) GetItems(c *gin.Context) {
	var filter domain.MetricFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	items, total, err := h.svc.Items(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data":   items,
		"total":  total,
		"limit":  filter.Limit,
		"offset": filter.Offset,
	})
}

// GetChannels lists channels present in the table.
func (h *MetricsHandler) GetChannels(c *gin.Context) {
	out, err := h.svc.Channels(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": out})
}
