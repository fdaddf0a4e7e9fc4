package service

import (
	"errors"

	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/errs"
	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/model"
	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/pricing"
)

// Catalog is what the pricing page renders.
type Catalog struct {
	Plans     []pricing.Plan `json:"plans"`
	AddOns    []pricing.Plan `json:"addOns"`
	TrialDays int            `json:"trialDays"`
}

type PricingService struct {
	calc *pricing.Calculator
}

func NewPricingService(calc *pricing.Calculator) *PricingService {
	return &PricingService{calc: calc}
}

func (s *PricingService) Catalog() *Catalog {
	return &Catalog{
		Plans:     pricing.CorePlans(),
		AddOns:    pricing.AddOns(),
		TrialDays: s.calc.TrialDays(),
	}
}

func (s *PricingService) Quote(req *model.QuoteRequest) (*pricing.Quote, error) {
	q, err := s.calc.Quote(req.Plan, req.AddOns, req.State)
	if errors.Is(err, pricing.ErrUnknownPlan) {
		return nil, errs.NewBadRequestError(err.Error(), true, errs.Ptr(errs.CodeUnknownPlan), nil, nil)
	}
	return q, err
}
