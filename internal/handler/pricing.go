package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/model"
	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/pricing"
	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/server"
	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/service"
)

type PricingHandler struct {
	Handler
	pricing *service.PricingService
}

func NewPricingHandler(s *server.Server, pricing *service.PricingService) *PricingHandler {
	return &PricingHandler{
		Handler: NewHandler(s),
		pricing: pricing,
	}
}

func (h *PricingHandler) ListPlans(c echo.Context, _ *model.EmptyRequest) (*service.Catalog, error) {
	c.Response().Header().Set(echo.HeaderCacheControl, "public, max-age=300")
	return h.pricing.Catalog(), nil
}

func (h *PricingHandler) Quote(_ echo.Context, req *model.QuoteRequest) (*pricing.Quote, error) {
	return h.pricing.Quote(req)
}
