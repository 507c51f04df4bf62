package handler

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"tracemap/internal/models"
	"tracemap/internal/service"
	"tracemap/internal/tripfilter"
	"tracemap/pkg/response"
)

// MapHandler handles HTTP requests for the map overlay queries
type MapHandler struct {
	service *service.MapService
}

// NewMapHandler creates a new map handler
func NewMapHandler(service *service.MapService) *MapHandler {
	return &MapHandler{service: service}
}

// GetHeatmap handles GET /api/v1/heatmap
func (h *MapHandler) GetHeatmap(c *gin.Context) {
	q, start, end, filter, ok := h.bindTileQuery(c)
	if !ok {
		return
	}

	resp, err := h.service.Heatmap(c.Request.Context(), q.Rect(), start, end, filter, q.TileWidth, q.TileHeight)
	if err != nil {
		log.Printf("Heatmap query failed: %v", err)
		response.InternalError(c, "Failed to build heatmap")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetTrafficmap handles GET /api/v1/trafficmap
func (h *MapHandler) GetTrafficmap(c *gin.Context) {
	q, start, end, filter, ok := h.bindTileQuery(c)
	if !ok {
		return
	}

	resp, err := h.service.Trafficmap(c.Request.Context(), q.Rect(), start, end, filter, q.TileWidth, q.TileHeight)
	if err != nil {
		log.Printf("Trafficmap query failed: %v", err)
		response.InternalError(c, "Failed to build trafficmap")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetSpeedmap handles GET /api/v1/speedmap
func (h *MapHandler) GetSpeedmap(c *gin.Context) {
	q, start, end, filter, ok := h.bindTileQuery(c)
	if !ok {
		return
	}

	resp, err := h.service.Speedmap(c.Request.Context(), q.Rect(), start, end, filter, q.TileWidth, q.TileHeight)
	if err != nil {
		log.Printf("Speedmap query failed: %v", err)
		response.InternalError(c, "Failed to build speedmap")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetAnomalies handles GET /api/v1/anomalies
func (h *MapHandler) GetAnomalies(c *gin.Context) {
	var q models.AnomalyQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	start, end, ok := bindDateRange(c, q.DateStart, q.DateEnd)
	if !ok {
		return
	}

	resp, err := h.service.Anomalies(c.Request.Context(), q.Rect(), start, end)
	if err != nil {
		log.Printf("Anomalies query failed: %v", err)
		response.InternalError(c, "Failed to list anomalies")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// bindTileQuery binds and validates the parameters shared by the three tile
// endpoints. All validation runs before any store access; on failure a 400
// has already been written and ok is false.
func (h *MapHandler) bindTileQuery(c *gin.Context) (q models.TileQuery, start, end *time.Time, filter tripfilter.Options, ok bool) {
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return q, nil, nil, filter, false
	}

	if q.TileWidth <= 0 || q.TileHeight <= 0 {
		response.BadRequest(c, "tileWidth and tileHeight must be > 0")
		return q, nil, nil, filter, false
	}

	start, end, ok = bindDateRange(c, q.DateStart, q.DateEnd)
	if !ok {
		return q, nil, nil, filter, false
	}

	filter, err := tripfilter.ParseOptions(q.Days, q.TimeStart, q.TimeEnd, false)
	if err != nil {
		response.BadRequest(c, err.Error())
		return q, nil, nil, filter, false
	}

	return q, start, end, filter, true
}

// bindDateRange parses the optional RFC3339 date range; on failure a 400 has
// already been written and ok is false
func bindDateRange(c *gin.Context, dateStart, dateEnd string) (start, end *time.Time, ok bool) {
	if dateStart != "" {
		t, err := time.Parse(time.RFC3339, dateStart)
		if err != nil {
			response.BadRequest(c, "dateStart must be RFC3339")
			return nil, nil, false
		}
		start = &t
	}
	if dateEnd != "" {
		t, err := time.Parse(time.RFC3339, dateEnd)
		if err != nil {
			response.BadRequest(c, "dateEnd must be RFC3339")
			return nil, nil, false
		}
		end = &t
	}
	return start, end, true
}
