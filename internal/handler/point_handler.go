package handler

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"tracemap/internal/models"
	"tracemap/internal/service"
	"tracemap/pkg/response"
)

// PointHandler handles HTTP requests for point ingestion
type PointHandler struct {
	service *service.PointService
}

// NewPointHandler creates a new point handler
func NewPointHandler(service *service.PointService) *PointHandler {
	return &PointHandler{service: service}
}

// PushPoints handles POST /api/v1/points
func (h *PointHandler) PushPoints(c *gin.Context) {
	var req models.PointBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid point list format")
		return
	}
	if len(req.Points) == 0 {
		response.BadRequest(c, "Point batch must not be empty")
		return
	}

	if err := h.service.Ingest(c.Request.Context(), req.Points); err != nil {
		log.Printf("Failed to ingest points: %v", err)
		response.InternalError(c, "Failed to store points")
		return
	}

	c.Status(http.StatusOK)
}
