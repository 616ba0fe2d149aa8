package utils

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	SpanContextKey = "span_context"
	RequestIDKey   = "request_id"
)

// GetContextFromGinContext returns the traced request context when the
// tracing middleware stored one, else the plain request context.
func GetContextFromGinContext(c *gin.Context) context.Context {
	if spanCtx, exists := c.Get(SpanContextKey); exists {
		if ctx, ok := spanCtx.(context.Context); ok {
			return ctx
		}
	}
	return c.Request.Context()
}

func GetRequestIDFromGinContext(c *gin.Context) string {
	return c.GetString(RequestIDKey)
}

// RequestLogger derives a child logger tagged with the request id, if any.
func RequestLogger(c *gin.Context, logger *zap.Logger) *zap.Logger {
	if requestID := GetRequestIDFromGinContext(c); requestID != "" {
		return logger.With(zap.String("request_id", requestID))
	}
	return logger
}
