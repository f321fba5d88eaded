package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestMiddleware_RecordsRoute(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/tasks/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	r.GET("/metrics", Handler(reg))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/tasks/abc", nil))
	require.Equal(t, http.StatusNotFound, w.Code)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/tasks/:id", "404")))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "taskflow_http_requests_total"))
}

func TestAuthCounters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.IncAuthFailure(ReasonTokenExpired)
	m.IncAuthFailure(ReasonTokenExpired)
	m.IncAuthEvent("login")
	m.IncRateLimited("auth")
	m.IncRateLimitFallback()
	m.SetBreakerState("redis", 1)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.AuthFailures.WithLabelValues(ReasonTokenExpired)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AuthEvents.WithLabelValues("login")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RateLimited.WithLabelValues("auth")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RateLimitFallbacks))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BreakerState.WithLabelValues("redis")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.IncAuthFailure(ReasonMissingToken)
		m.IncAuthEvent("login")
		m.IncRateLimited("auth")
		m.IncRateLimitFallback()
		m.SetBreakerState("redis", 0)
	})

	r := gin.New()
	r.Use(m.Middleware())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
