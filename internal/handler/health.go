package handler

import (
	"context"
	"net/http"
	"slices"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/middleware"
	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/server"
)

const (
	checkDatabase = "database"
	checkRedis    = "redis"
)

type dependencyCheck struct {
	name string
	// critical checks turn the response into a 503; the rest only degrade it.
	critical bool
	ping     func(ctx context.Context) error
}

// HealthHandler reports whether the service and its dependencies respond.
//
// Postgres is critical. Redis only carries the job queue, so an outage
// reports "degraded" but keeps a 200 for the load balancer.
type HealthHandler struct {
	Handler
	checks  []dependencyCheck
	timeout time.Duration
}

func NewHealthHandler(s *server.Server) *HealthHandler {
	h := &HealthHandler{
		Handler: NewHandler(s),
		timeout: 5 * time.Second,
	}

	enabled := []string{checkDatabase, checkRedis}
	if obs := s.Config.Observability; obs != nil {
		if obs.HealthChecks.Timeout > 0 {
			h.timeout = obs.HealthChecks.Timeout
		}
		if len(obs.HealthChecks.Checks) > 0 {
			enabled = obs.HealthChecks.Checks
		}
	}

	if s.DB != nil && slices.Contains(enabled, checkDatabase) {
		h.checks = append(h.checks, dependencyCheck{name: checkDatabase, critical: true, ping: s.DB.Ping})
	}
	if s.Redis != nil && slices.Contains(enabled, checkRedis) {
		h.checks = append(h.checks, dependencyCheck{name: checkRedis, ping: func(ctx context.Context) error {
			return s.Redis.Ping(ctx).Err()
		}})
	}

	return h
}

type checkResult struct {
	Status       string `json:"status"`
	ResponseTime string `json:"response_time"`
	Error        string `json:"error,omitempty"`
}

type healthResponse struct {
	Status      string                 `json:"status"`
	Timestamp   time.Time              `json:"timestamp"`
	Environment string                 `json:"environment"`
	Checks      map[string]checkResult `json:"checks"`
}

func (h *HealthHandler) CheckHealth(c echo.Context) error {
	start := time.Now()
	logger := middleware.GetLogger(c).With().Str("operation", "health_check").Logger()

	response := healthResponse{
		Status:      "healthy",
		Timestamp:   start.UTC(),
		Environment: h.server.Config.Primary.Env,
		Checks:      make(map[string]checkResult, len(h.checks)),
	}
	status := http.StatusOK

	for _, check := range h.checks {
		ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
		checkStart := time.Now()
		err := check.ping(ctx)
		elapsed := time.Since(checkStart)
		cancel()

		if err == nil {
			response.Checks[check.name] = checkResult{Status: "healthy", ResponseTime: elapsed.String()}
			continue
		}

		response.Checks[check.name] = checkResult{Status: "unhealthy", ResponseTime: elapsed.String(), Error: err.Error()}
		logger.Error().Err(err).Str("check", check.name).Dur("response_time", elapsed).Msg("health check failed")
		h.recordFailure(check.name, err, elapsed)

		if check.critical {
			response.Status = "unhealthy"
			status = http.StatusServiceUnavailable
		} else if response.Status == "healthy" {
			response.Status = "degraded"
		}
	}

	logger.Debug().Dur("total_duration", time.Since(start)).Str("status", response.Status).Msg("health check finished")

	return c.JSON(status, response)
}

func (h *HealthHandler) recordFailure(check string, err error, elapsed time.Duration) {
	if h.server.LoggerService == nil || h.server.LoggerService.GetApplication() == nil {
		return
	}
	h.server.LoggerService.GetApplication().RecordCustomEvent("HealthCheckError", map[string]interface{}{
		"check_type":       check,
		"operation":        "health_check",
		"error_type":       check + "_unhealthy",
		"response_time_ms": elapsed.Milliseconds(),
		"error_message":    err.Error(),
	})
}
