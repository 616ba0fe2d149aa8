package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
)

type HealthHandler struct {
	clock     clockwork.Clock
	startTime time.Time
}

func NewHealthHandler(clock clockwork.Clock) *HealthHandler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &HealthHandler{
		clock:     clock,
		startTime: clock.Now(),
	}
}

func (h *HealthHandler) uptime() string {
	return h.clock.Since(h.startTime).Round(time.Second).String()
}

func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status: "alive",
		Uptime: h.uptime(),
	})
}

// Readiness has no upstream checks; the providers are only reachable per
// lookup and their failures are reported in lookup results.
func (h *HealthHandler) Readiness(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status: "ready",
		Uptime: h.uptime(),
	})
}

func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "ok",
		Uptime:    h.uptime(),
		Timestamp: h.clock.Now().UTC().Format(time.RFC3339),
	})
}
