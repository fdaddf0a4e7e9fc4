package middleware

import (
	"math"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/errs"
	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/ratelimit"
	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/server"
)

const (
	HeaderRateLimitLimit     = "X-RateLimit-Limit"
	HeaderRateLimitRemaining = "X-RateLimit-Remaining"
	HeaderRateLimitReset     = "X-RateLimit-Reset"
)

type RateLimitMiddleware struct {
	server  *server.Server
	limiter ratelimit.Limiter
}

func NewRateLimitMiddleware(s *server.Server) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		server:  s,
		limiter: s.Limiter,
	}
}

// Limit counts requests per client IP against the route's own budget.
//
// A rejected request gets a 429 with Retry-After. If the limiter itself
// fails (Redis down) the request is let through and the failure logged.
func (r *RateLimitMiddleware) Limit(route string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if r.limiter == nil {
				return next(c)
			}

			ip := c.RealIP()
			d, err := r.limiter.Allow(c.Request().Context(), route+":"+ip)
			if err != nil {
				GetLogger(c).Error().Err(err).Str("route", route).Msg("rate limiter unavailable, allowing request")
				return next(c)
			}

			if d.Limit > 0 {
				reset := strconv.Itoa(int(math.Ceil(d.ResetIn.Seconds())))
				h := c.Response().Header()
				h.Set(HeaderRateLimitLimit, strconv.Itoa(d.Limit))
				h.Set(HeaderRateLimitRemaining, strconv.Itoa(d.Remaining))
				h.Set(HeaderRateLimitReset, reset)

				if !d.Allowed {
					h.Set(echo.HeaderRetryAfter, reset)
					GetLogger(c).Warn().Str("route", route).Msg("rate limit exceeded")
					r.RecordRateLimitHit(route)
					return r.tooManyRequests()
				}
			}

			return next(c)
		}
	}
}

func (r *RateLimitMiddleware) tooManyRequests() *errs.HTTPError {
	err := errs.NewTooManyRequestsError("Too many submissions. Please try again later.")
	if url := r.server.Config.Integration.CalendlyURL; url != "" {
		return err.WithAction(&errs.Action{
			Type:    errs.ActionTypeSchedule,
			Message: "Book a call instead",
			Value:   url,
		})
	}
	return err
}

// RecordRateLimitHit sends a RateLimitHit custom event to New Relic.
func (r *RateLimitMiddleware) RecordRateLimitHit(endpoint string) {
	if r.server.LoggerService != nil && r.server.LoggerService.GetApplication() != nil {
		r.server.LoggerService.GetApplication().RecordCustomEvent("RateLimitHit", map[string]interface{}{
			"endpoint": endpoint,
		})
	}
}
