package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/necatisahhin/zeroAiBackend/internal/config"
	"github.com/necatisahhin/zeroAiBackend/internal/ratelimit"
	"github.com/necatisahhin/zeroAiBackend/internal/security"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestAuth(t *testing.T) {
	now := time.Now()
	codec := security.NewTokenCodec(security.TokenConfig{
		Secret:     "test-secret",
		Issuer:     "zeroai",
		AccessTTL:  time.Hour,
		RefreshTTL: 24 * time.Hour,
	})

	access, err := codec.IssueAccess("user-1")
	require.NoError(t, err)
	refresh, err := codec.IssueRefresh("user-1")
	require.NoError(t, err)
	expired, err := codec.WithClock(func() time.Time { return now.Add(-2 * time.Hour) }).IssueAccess("user-1")
	require.NoError(t, err)

	router := gin.New()
	router.GET("/private", Auth(codec), func(c *gin.Context) {
		fromGin, _ := CurrentUserID(c)
		fromCtx, _ := security.UserIDFromContext(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"gin": fromGin, "ctx": fromCtx})
	})

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantCode   string
	}{
		{name: "missing header", wantStatus: http.StatusUnauthorized, wantCode: "AUTH_MIDDLEWARE_01"},
		{name: "wrong scheme", header: "Basic abc", wantStatus: http.StatusUnauthorized, wantCode: "AUTH_MIDDLEWARE_01"},
		{name: "empty bearer", header: "Bearer ", wantStatus: http.StatusUnauthorized, wantCode: "AUTH_MIDDLEWARE_01"},
		{name: "expired", header: "Bearer " + expired.Value, wantStatus: http.StatusUnauthorized, wantCode: "AUTH_MIDDLEWARE_02"},
		{name: "garbage", header: "Bearer nope", wantStatus: http.StatusUnauthorized, wantCode: "AUTH_MIDDLEWARE_03"},
		{name: "refresh token", header: "Bearer " + refresh.Value, wantStatus: http.StatusUnauthorized, wantCode: "AUTH_MIDDLEWARE_03"},
		{name: "valid", header: "Bearer " + access.Value, wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/private", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			body := decodeBody(t, rec)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, body["code"])
				return
			}
			assert.Equal(t, "user-1", body["gin"])
			assert.Equal(t, "user-1", body["ctx"])
		})
	}
}

func TestRecoveryReturnsGenericError(t *testing.T) {
	router := gin.New()
	router.Use(RequestID(), Recovery(zerolog.Nop()))
	router.GET("/panic", func(c *gin.Context) { panic("boom") })

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "INTERNAL_SERVER_ERROR", decodeBody(t, rec)["code"])
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))
}

func TestRequestIDPropagates(t *testing.T) {
	router := gin.New()
	router.Use(RequestID(), Logger(zerolog.Nop()))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", rec.Header().Get(requestIDHeader))
}

func TestCORS(t *testing.T) {
	router := gin.New()
	router.Use(CORS(config.CORSConfig{
		AllowOrigins:     []string{"https://app.example.com"},
		AllowMethods:     []string{"GET", "POST"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"RateLimit", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           10 * time.Minute,
	}))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	tests := []struct {
		name       string
		method     string
		origin     string
		wantStatus int
		wantHeader map[string]string
	}{
		{
			name:       "preflight from allowed origin",
			method:     http.MethodOptions,
			origin:     "https://app.example.com",
			wantStatus: http.StatusNoContent,
			wantHeader: map[string]string{
				"Access-Control-Allow-Origin":      "https://app.example.com",
				"Access-Control-Allow-Methods":     "GET, POST",
				"Access-Control-Allow-Headers":     "Authorization, Content-Type",
				"Access-Control-Allow-Credentials": "true",
				"Access-Control-Max-Age":           "600",
			},
		},
		{
			name:       "simple request exposes rate limit headers",
			method:     http.MethodGet,
			origin:     "https://app.example.com",
			wantStatus: http.StatusOK,
			wantHeader: map[string]string{
				"Access-Control-Allow-Origin":   "https://app.example.com",
				"Access-Control-Expose-Headers": "RateLimit, Retry-After",
				"Access-Control-Allow-Methods":  "",
			},
		},
		{
			name:       "preflight from unknown origin",
			method:     http.MethodOptions,
			origin:     "https://evil.example.com",
			wantStatus: http.StatusForbidden,
			wantHeader: map[string]string{"Access-Control-Allow-Origin": ""},
		},
		{
			name:       "request from unknown origin",
			method:     http.MethodGet,
			origin:     "https://evil.example.com",
			wantStatus: http.StatusOK,
			wantHeader: map[string]string{"Access-Control-Allow-Origin": ""},
		},
		{
			name:       "no origin",
			method:     http.MethodGet,
			wantStatus: http.StatusOK,
			wantHeader: map[string]string{"Vary": ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			for k, v := range tt.wantHeader {
				assert.Equal(t, v, rec.Header().Get(k), k)
			}
		})
	}
}

func TestCORSAllowsAnyOriginWhenUnset(t *testing.T) {
	router := gin.New()
	router.Use(CORS(config.CORSConfig{}))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://anywhere.example.com")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "https://anywhere.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestSecurityHeaders(t *testing.T) {
	router := gin.New()
	router.Use(SecurityHeaders())
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "SAMEORIGIN", rec.Header().Get("X-Frame-Options"))
}

type stubLimiter struct {
	res ratelimit.Result
	err error
}

func (s stubLimiter) Allow(context.Context, string, int, time.Duration) (ratelimit.Result, error) {
	return s.res, s.err
}

func TestRateLimit(t *testing.T) {
	tests := []struct {
		name       string
		limiter    stubLimiter
		wantStatus int
	}{
		{
			name:       "allowed",
			limiter:    stubLimiter{res: ratelimit.Result{Allowed: true, Remaining: 99, Limit: 100, ResetAt: time.Now().Add(time.Minute)}},
			wantStatus: http.StatusOK,
		},
		{
			name:       "rejected",
			limiter:    stubLimiter{res: ratelimit.Result{Allowed: false, Limit: 100, ResetAt: time.Now().Add(30 * time.Second)}},
			wantStatus: http.StatusTooManyRequests,
		},
		{
			name:       "limiter down fails open",
			limiter:    stubLimiter{err: errors.New("redis down")},
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.Use(RateLimit(tt.limiter, 100, time.Minute, nil, zerolog.Nop()))
			router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusTooManyRequests {
				assert.Equal(t, "Too many requests, please try again later.", decodeBody(t, rec)["error"])
				assert.NotEmpty(t, rec.Header().Get("Retry-After"))
			}
		})
	}
}
