package middleware

import (
	"github.com/newrelic/go-agent/v3/newrelic"

	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/server"
)

// Middlewares groups every middleware component the router installs, built
// once from the application container.
type Middlewares struct {
	// Global holds CORS, request logging, recovery, secure headers, the body
	// limit and the global error handler.
	Global *GlobalMiddlewares

	// Auth guards the admin dashboard API.
	Auth *AuthMiddleware

	// ContextEnhancer attaches the request-scoped logger.
	ContextEnhancer *ContextEnhancer

	Tracing *TracingMiddleware

	// RateLimit throttles the public form endpoints per client IP.
	RateLimit *RateLimitMiddleware
}

// NewMiddlewares constructs all middleware components. Tracing degrades to
// a no-op when New Relic is not configured.
func NewMiddlewares(s *server.Server) *Middlewares {
	var nrApp *newrelic.Application
	if s.LoggerService != nil {
		nrApp = s.LoggerService.GetApplication()
	}

	return &Middlewares{
		Global:          NewGlobalMiddlewares(s),
		Auth:            NewAuthMiddleware(s),
		ContextEnhancer: NewContextEnhancer(s),
		Tracing:         NewTracingMiddleware(s, nrApp),
		RateLimit:       NewRateLimitMiddleware(s),
	}
}
