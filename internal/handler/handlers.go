package handler

import (
	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/server"
	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/service"
)

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Health  *HealthHandler
	OpenAPI *OpenAPIHandler
	Form    *FormHandler
	Pricing *PricingHandler
	Webhook *WebhookHandler
	Admin   *AdminHandler
}

func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	return &Handlers{
		Health:  NewHealthHandler(s),
		OpenAPI: NewOpenAPIHandler(s),
		Form:    NewFormHandler(s, services.Contact, services.LeadMagnet, services.Signup),
		Pricing: NewPricingHandler(s, services.Pricing),
		Webhook: NewWebhookHandler(s, services.StripeWebhook, services.CalendlyWebhook),
		Admin:   NewAdminHandler(s, services.Admin),
	}
}
