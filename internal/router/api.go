package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/handler"
	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/middleware"
	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/model"
)

// Rate limit buckets. Each form counts separately per client IP.
const (
	RouteContact    = "contact"
	RouteLeadMagnet = "lead-magnet"
	RouteSignup     = "signup"
)

func registerPublicRoutes(r *echo.Echo, h *handler.Handlers, m *middleware.Middlewares) {
	api := r.Group("/api")

	pricing := api.Group("/pricing")
	pricing.GET("/plans", handler.Handle(h.Pricing.Handler, h.Pricing.ListPlans, http.StatusOK, &model.EmptyRequest{}))
	pricing.POST("/quote", handler.Handle(h.Pricing.Handler, h.Pricing.Quote, http.StatusOK, &model.QuoteRequest{}))

	api.POST("/contact",
		handler.Handle(h.Form.Handler, h.Form.SubmitContact, http.StatusCreated, &model.ContactRequest{}),
		m.RateLimit.Limit(RouteContact))

	api.POST("/lead-magnet",
		handler.Handle(h.Form.Handler, h.Form.RequestLeadMagnet, http.StatusCreated, &model.LeadMagnetRequest{}),
		m.RateLimit.Limit(RouteLeadMagnet))
	api.GET("/lead-magnet/download",
		handler.HandleFile(h.Form.Handler, h.Form.DownloadLeadMagnet, http.StatusOK, &model.DownloadRequest{}))

	api.POST("/signup",
		handler.Handle(h.Form.Handler, h.Form.Signup, http.StatusCreated, &model.SignupRequest{}),
		m.RateLimit.Limit(RouteSignup))
}

// registerWebhookRoutes mounts the provider callbacks. They read the raw
// body themselves to check signatures.
func registerWebhookRoutes(r *echo.Echo, h *handler.Handlers) {
	webhooks := r.Group("/webhooks")
	webhooks.POST("/stripe", h.Webhook.Stripe)
	webhooks.POST("/calendly", h.Webhook.Calendly)
}

func registerAdminRoutes(r *echo.Echo, h *handler.Handlers, m *middleware.Middlewares) {
	admin := r.Group("/api/admin", m.Auth.RequireAdmin)

	admin.GET("/submissions", handler.Handle(h.Admin.Handler, h.Admin.ListSubmissions, http.StatusOK, &model.ListSubmissionsRequest{}))
	admin.PATCH("/submissions/:id", handler.Handle(h.Admin.Handler, h.Admin.UpdateSubmission, http.StatusOK, &model.UpdateSubmissionRequest{}))
	admin.GET("/leads", handler.Handle(h.Admin.Handler, h.Admin.ListLeads, http.StatusOK, &model.ListRequest{}))
	admin.GET("/subscriptions", handler.Handle(h.Admin.Handler, h.Admin.ListSubscriptions, http.StatusOK, &model.ListRequest{}))
	admin.GET("/stats", handler.Handle(h.Admin.Handler, h.Admin.Stats, http.StatusOK, &model.EmptyRequest{}))

	admin.GET("/emails", handler.Handle(h.Admin.Handler, h.Admin.EmailTemplates, http.StatusOK, &model.EmptyRequest{}))
	admin.GET("/emails/:template", handler.HandleHTML(h.Admin.Handler, h.Admin.PreviewEmail, http.StatusOK, &model.EmailPreviewRequest{}))
}
