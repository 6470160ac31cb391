package middleware

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/necatisahhin/zeroAiBackend/internal/metrics"
	"github.com/necatisahhin/zeroAiBackend/internal/ratelimit"
)

// Limiter is satisfied by *ratelimit.Limiter.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (ratelimit.Result, error)
}

// RateLimit limits each client IP to limit requests per sliding window.
// Limiter failures let the request through.
func RateLimit(limiter Limiter, limit int, window time.Duration, m *metrics.Metrics, log zerolog.Logger) gin.HandlerFunc {
	policy := fmt.Sprintf(`"default"; q=%d; w=%d`, limit, int(window.Seconds()))

	return func(c *gin.Context) {
		res, err := limiter.Allow(c.Request.Context(), c.ClientIP(), limit, window)
		if err != nil {
			log.Warn().Err(err).Str("client_ip", c.ClientIP()).Msg("rate limiter unavailable")
			c.Next()
			return
		}

		reset := int(math.Ceil(time.Until(res.ResetAt).Seconds()))
		if reset < 0 {
			reset = 0
		}

		h := c.Writer.Header()
		h.Set("RateLimit-Policy", policy)
		h.Set("RateLimit", fmt.Sprintf(`"default"; r=%d; t=%d`, res.Remaining, reset))

		if !res.Allowed {
			m.RateLimited()
			h.Set("Retry-After", strconv.Itoa(reset))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Too many requests, please try again later.",
			})
			return
		}

		c.Next()
	}
}
