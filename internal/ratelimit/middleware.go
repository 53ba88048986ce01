package ratelimit

import (
	"log/slog"
	"strconv"

	apperrors "github.com/ZanzyTHEbar/wine-quality-expert/internal/errors"
	"github.com/gin-gonic/gin"
)

// exemptPaths are never limited so probes and scrapers keep working under load
var exemptPaths = map[string]bool{
	"/health":  true,
	"/metrics": true,
}

// IPRateLimitMiddleware limits requests per client IP. Limiter failures fail open.
func (rl *RateLimiter) IPRateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if exemptPaths[c.Request.URL.Path] {
			c.Next()
			return
		}

		ip := c.ClientIP()

		result, err := rl.AllowIP(c.Request.Context(), ip)
		if err != nil {
			slog.Error("Rate limit check failed", "ip", ip, "error", err)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

		if !result.Allowed {
			if rl.metrics != nil {
				rl.metrics.IncrementRateLimitIPBlock()
				rl.metrics.IncrementRateLimitEndpoint(c.Request.URL.Path)
			}

			retryAfter := retryAfterSeconds(result)
			c.Header("Retry-After", retryAfter)

			appErr := apperrors.NewRateLimitError(retryAfter + "s")
			c.AbortWithStatusJSON(appErr.HTTPStatus, appErr.Response())
			return
		}

		c.Next()
	}
}

// retryAfterSeconds rounds up so clients never retry early
func retryAfterSeconds(result *Result) string {
	secs := int(result.RetryAfter.Seconds())
	if float64(secs) < result.RetryAfter.Seconds() || secs == 0 {
		secs++
	}
	return strconv.Itoa(secs)
}
