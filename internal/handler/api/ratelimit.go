package api

import (
	"github.com/labstack/echo/v4"

	"MarketPulse/internal/service/ratelimit"
	xhttp "MarketPulse/pkg/http"
	xlogger "MarketPulse/pkg/logger"
)

// RateLimit rejects clients that exhaust their token bucket with 429.
// Clients are keyed by echo's RealIP.
func RateLimit(l *ratelimit.Limiter, logger *xlogger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()
			if !l.Allow(ip) {
				logger.Warn("api.rate_limited", xlogger.String("remote", ip), xlogger.String("path", c.Path()))
				return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("rate limited"))
			}
			return next(c)
		}
	}
}
