package handler

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/errs"
	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/lib/billing"
	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/lib/calendly"
	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/server"
	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/service"
)

// WebhookHandler receives signed deliveries. Signatures cover the exact
// bytes sent, so the body is read raw rather than bound.
type WebhookHandler struct {
	Handler
	stripe   *service.StripeWebhookService
	calendly *service.CalendlyWebhookService
}

func NewWebhookHandler(s *server.Server, stripe *service.StripeWebhookService, calendly *service.CalendlyWebhookService) *WebhookHandler {
	return &WebhookHandler{
		Handler:  NewHandler(s),
		stripe:   stripe,
		calendly: calendly,
	}
}

func (h *WebhookHandler) Stripe(c echo.Context) error {
	payload, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return errs.NewBadRequestError("Could not read request body", false, nil, nil, nil)
	}

	res, err := h.stripe.Handle(c.Request().Context(), payload, c.Request().Header.Get(billing.SignatureHeader))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

func (h *WebhookHandler) Calendly(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return errs.NewBadRequestError("Could not read request body", false, nil, nil, nil)
	}

	res, err := h.calendly.Handle(c.Request().Context(), c.Request().Header.Get(calendly.SignatureHeader), body)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}
