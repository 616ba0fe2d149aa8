package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/vzahanych/nimbus/internal/observability"
)

// NewMetricsHandler serves the Prometheus exposition of metrics.
func NewMetricsHandler(metrics *observability.Metrics) gin.HandlerFunc {
	return gin.WrapH(metrics.Handler())
}
