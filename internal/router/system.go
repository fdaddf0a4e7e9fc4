package router

import (
	"github.com/labstack/echo/v4"

	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/handler"
)

// registerSystemRoutes registers endpoints that are not part of the
// business API: health, the docs UI and its static assets.
func registerSystemRoutes(r *echo.Echo, h *handler.Handlers) {
	// Used by the load balancer and uptime monitors.
	r.GET("/status", h.Health.CheckHealth)

	// openapi.json, openapi.html and anything else under ./static.
	r.Static("/static", "static")

	r.GET("/docs", h.OpenAPI.ServeOpenAPIUI)
}
