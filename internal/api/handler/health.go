package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/timmy/socialkit/internal/service"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	sessions      *service.SessionManager
	exportEnabled bool
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(sessions *service.SessionManager, exportEnabled bool) *HealthHandler {
	return &HealthHandler{sessions: sessions, exportEnabled: exportEnabled}
}

// Health returns the health status of the service
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":         "ok",
		"sessions":       h.sessions.Len(),
		"dropped_events": h.sessions.DroppedEvents(),
		"export":         h.exportEnabled,
	})
}
