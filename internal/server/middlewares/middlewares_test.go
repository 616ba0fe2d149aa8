package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vzahanych/nimbus/internal/observability"
	"github.com/vzahanych/nimbus/internal/server/utils"
	"go.uber.org/zap/zaptest"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(engine *gin.Engine, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestRequestID_MintsAndStores(t *testing.T) {
	engine := gin.New()
	engine.Use(RequestID())

	var seen string
	engine.GET("/", func(c *gin.Context) {
		seen = utils.GetRequestIDFromGinContext(c)
		c.Status(http.StatusNoContent)
	})

	rec := serve(engine, "/")

	require.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))
}

func TestRecovery_ReturnsInternalError(t *testing.T) {
	engine := gin.New()
	engine.Use(RequestID(), Recovery(zaptest.NewLogger(t)))
	engine.GET("/boom", func(c *gin.Context) {
		panic("boom")
	})

	rec := serve(engine, "/boom")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"Internal server error","code":"INTERNAL_ERROR"}`, rec.Body.String())
}

func TestMetrics_RecordsRouteTemplate(t *testing.T) {
	metrics := observability.NewMetricsForTesting()
	engine := gin.New()
	engine.Use(Metrics(metrics))
	engine.GET("/weather", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	serve(engine, "/weather?city=Paris")
	serve(engine, "/nowhere")

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.HTTPRequests.WithLabelValues(http.MethodGet, "/weather", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.HTTPRequests.WithLabelValues(http.MethodGet, unmatchedRoute, "404")))
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.HTTPActiveRequests))
}

func TestTracing_StoresContext(t *testing.T) {
	engine := gin.New()
	engine.Use(Tracing(zaptest.NewLogger(t), nil))

	var stored bool
	engine.GET("/", func(c *gin.Context) {
		_, stored = c.Get(utils.SpanContextKey)
		c.Status(http.StatusOK)
	})

	serve(engine, "/")

	assert.True(t, stored)
}
