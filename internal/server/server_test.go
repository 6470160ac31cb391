package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/necatisahhin/zeroAiBackend/internal/config"
	"github.com/necatisahhin/zeroAiBackend/internal/database/dbtest"
	"github.com/necatisahhin/zeroAiBackend/internal/handlers"
	"github.com/necatisahhin/zeroAiBackend/internal/metrics"
	"github.com/necatisahhin/zeroAiBackend/internal/ratelimit"
)

type countingLimiter struct {
	limit int
	calls int
}

func (l *countingLimiter) Allow(_ context.Context, _ string, limit int, window time.Duration) (ratelimit.Result, error) {
	l.calls++
	remaining := l.limit - l.calls
	if remaining < 0 {
		remaining = 0
	}
	return ratelimit.Result{
		Allowed:   l.calls <= l.limit,
		Remaining: remaining,
		Limit:     limit,
		ResetAt:   time.Now().Add(window),
	}, nil
}

func newTestServer(t *testing.T, limiter *countingLimiter) *HTTPServer {
	t.Helper()

	cfg := &config.AppConfig{
		Environment: "test",
		Security: config.SecurityConfig{
			JWTSecret:  "test-secret",
			AccessTTL:  time.Hour,
			RefreshTTL: 24 * time.Hour,
			BcryptCost: bcrypt.MinCost,
		},
		RateLimit: config.RateLimitConfig{Enabled: true, Requests: 2, Window: time.Minute},
	}

	m := metrics.New()
	hs, err := handlers.NewHandlerSet(zerolog.Nop(), dbtest.New(t), nil, nil, m, cfg)
	require.NoError(t, err)

	if limiter == nil {
		return NewHTTPServer(cfg, zerolog.Nop(), hs, m, nil)
	}
	return NewHTTPServer(cfg, zerolog.Nop(), hs, m, limiter)
}

func get(srv *HTTPServer, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestServerRoutesAndHeaders(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := get(srv, "/api/v1/")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))

	rec = get(srv, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}

func TestServerRateLimit(t *testing.T) {
	limiter := &countingLimiter{limit: 2}
	srv := newTestServer(t, limiter)

	for i := 0; i < 2; i++ {
		rec := get(srv, "/api/v1/")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.NotEmpty(t, rec.Header().Get("RateLimit-Policy"))
	}

	rec := get(srv, "/api/v1/")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	// /metrics sits outside the limited group.
	rec = get(srv, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, limiter.calls)
}
