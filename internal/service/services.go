package service

import (
	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/lib/calendly"
	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/lib/job"
	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/pricing"
	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/repository"
	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/server"
)

type Services struct {
	Contact         *ContactService
	LeadMagnet      *LeadMagnetService
	Pricing         *PricingService
	Signup          *SignupService
	StripeWebhook   *StripeWebhookService
	CalendlyWebhook *CalendlyWebhookService
	Admin           *AdminService
	Job             *job.JobService
}

func NewService(s *server.Server, repos *repository.Repositories) (*Services, error) {
	integration := s.Config.Integration
	calc := pricing.NewCalculator(s.Config.Pricing)
	queue := s.Job.Client

	// Interface values stay nil, not typed nils, when Stripe is off.
	var gateway BillingGateway
	var verifier EventVerifier
	if s.Billing != nil {
		gateway = s.Billing
		verifier = s.Billing
	}

	var calendlyVerifier *calendly.Verifier
	if integration.CalendlySigningKey != "" {
		calendlyVerifier = calendly.NewVerifier(integration.CalendlySigningKey)
	}

	return &Services{
		Contact:    NewContactService(repos.Submissions, queue, integration.CalendlyURL, integration.PublicBaseURL),
		LeadMagnet: NewLeadMagnetService(repos.Leads, s.Assets, s.Downloads, queue, integration.PublicBaseURL),
		Pricing:    NewPricingService(calc),
		Signup: NewSignupService(calc, gateway, repos.Customers, repos.Subscriptions, queue,
			integration.StripeTaxRateID, integration.CalendlyURL),
		StripeWebhook:   NewStripeWebhookService(verifier, repos.Subscriptions, repos.StripeEvents, queue),
		CalendlyWebhook: NewCalendlyWebhookService(calendlyVerifier, repos.Submissions),
		Admin:           NewAdminService(repos.Submissions, repos.Leads, repos.Subscriptions, repos.Stats),
		Job:             s.Job,
	}, nil
}
