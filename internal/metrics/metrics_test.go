package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareRecordsRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := New()

	router := gin.New()
	router.Use(m.Middleware())
	router.GET("/items/:id", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, path := range []string{"/items/1", "/items/2"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("/items/:id", http.MethodGet, "200")))
}

func TestRecorders(t *testing.T) {
	m := New()

	m.AuthEvent("login", "success")
	m.TaskProcessed("refresh_tokens.purge", nil)
	m.TaskProcessed("refresh_tokens.purge", errors.New("boom"))
	m.RateLimited()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.authEvents.WithLabelValues("login", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.tasks.WithLabelValues("refresh_tokens.purge", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.tasks.WithLabelValues("refresh_tokens.purge", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rateLimited))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.AuthEvent("login", "failure")
		m.TaskProcessed("x", nil)
		m.RateLimited()
	})
}

func TestHandlerExposesRegistry(t *testing.T) {
	m := New()
	m.AuthEvent("logout", "success")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "zeroai_auth_events_total")
}
