package service

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/errs"
	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/lib/billing"
	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/lib/email"
	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/lib/job"
	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/lib/utils"
	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/model"
	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/pricing"
)

// BillingGateway is the part of the Stripe client signup uses.
type BillingGateway interface {
	CreateCustomer(ctx context.Context, p billing.CustomerParams) (string, error)
	CreateSubscription(ctx context.Context, p billing.SubscriptionParams) (*billing.CreatedSubscription, error)
}

type CustomerCreator interface {
	Create(ctx context.Context, c *model.Customer) error
}

type SubscriptionUpserter interface {
	Upsert(ctx context.Context, s model.SubscriptionState) (*model.Subscription, error)
}

type SignupResult struct {
	Success        bool                     `json:"success"`
	CustomerID     string                   `json:"customerId,omitempty"`
	SubscriptionID string                   `json:"subscriptionId,omitempty"`
	Status         model.SubscriptionStatus `json:"status,omitempty"`
	Quote          *pricing.Quote           `json:"quote,omitempty"`
	ClientSecret   string                   `json:"clientSecret,omitempty"`
	CalendlyURL    string                   `json:"calendlyUrl,omitempty"`

	httpStatus int
}

func (r *SignupResult) StatusCode() int {
	return r.httpStatus
}

type SignupService struct {
	calc          *pricing.Calculator
	billing       BillingGateway
	customers     CustomerCreator
	subscriptions SubscriptionUpserter
	queue         job.Enqueuer
	taxRateID     string
	calendlyURL   string
}

// NewSignupService wires signup. gateway is nil when Stripe is not
// configured, and every signup then answers 503.
func NewSignupService(
	calc *pricing.Calculator,
	gateway BillingGateway,
	customers CustomerCreator,
	subscriptions SubscriptionUpserter,
	queue job.Enqueuer,
	taxRateID, calendlyURL string,
) *SignupService {
	return &SignupService{
		calc:          calc,
		billing:       gateway,
		customers:     customers,
		subscriptions: subscriptions,
		queue:         queue,
		taxRateID:     taxRateID,
		calendlyURL:   calendlyURL,
	}
}

// Signup prices the selection, creates the Stripe customer and
// subscription, stores both and queues the welcome email.
func (s *SignupService) Signup(ctx context.Context, req *model.SignupRequest) (*SignupResult, error) {
	logger := zerolog.Ctx(ctx)

	if req.IsBot() {
		logger.Warn().Msg("signup honeypot triggered")
		return &SignupResult{Success: true, httpStatus: http.StatusOK}, nil
	}

	if s.billing == nil {
		return nil, errs.NewServiceUnavailableError("Online signup is temporarily unavailable", errs.Ptr(errs.CodeBillingDisabled))
	}

	quote, err := s.calc.Quote(req.Plan, req.AddOns, req.State)
	if errors.Is(err, pricing.ErrUnknownPlan) {
		return nil, errs.NewBadRequestError(err.Error(), true, errs.Ptr(errs.CodeUnknownPlan), nil, nil)
	}
	if err != nil {
		return nil, err
	}

	if quote.Plan.Kind != pricing.KindTrial && req.PaymentMethodID == "" {
		return nil, errs.NewBadRequestError("A payment method is required", true, errs.Ptr(errs.CodePaymentMethodMiss),
			[]errs.FieldError{{Field: "paymentMethodId", Error: "is required"}}, nil)
	}

	customerID, err := s.billing.CreateCustomer(ctx, billing.CustomerParams{
		Name:            req.Name,
		Email:           req.Email,
		Phone:           req.Phone,
		State:           req.State,
		PaymentMethodID: req.PaymentMethodID,
	})
	if err != nil {
		logger.Error().Err(err).Str("email", req.Email).Msg("stripe customer creation failed")
		return nil, errs.NewInternalServerError()
	}

	params := billing.SubscriptionParams{CustomerID: customerID, Quote: quote}
	if s.calc.IsHomeState(req.State) {
		params.TaxRateID = s.taxRateID
	}

	created, err := s.billing.CreateSubscription(ctx, params)
	if err != nil {
		logger.Error().Err(err).Str("stripe_customer_id", customerID).Msg("stripe subscription creation failed")
		return nil, errs.NewInternalServerError()
	}

	log := logger.With().
		Str("stripe_customer_id", customerID).
		Str("stripe_subscription_id", created.State.StripeSubscriptionID).
		Logger()

	err = s.customers.Create(ctx, &model.Customer{
		StripeCustomerID: customerID,
		Name:             req.Name,
		Email:            req.Email,
		Phone:            utils.Optional(req.Phone),
		Company:          utils.Optional(req.Company),
		Website:          utils.Optional(req.Website),
		State:            utils.Optional(req.State),
		IdealClient:      utils.Optional(req.IdealClient),
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to store customer after stripe signup")
		return nil, err
	}

	if created.State.StripeCustomerID == "" {
		created.State.StripeCustomerID = customerID
	}
	if _, err := s.subscriptions.Upsert(ctx, created.State); err != nil {
		log.Error().Err(err).Msg("failed to store subscription after stripe signup")
		return nil, err
	}

	task, err := job.NewWelcomeTask(req.Email, welcomeData(req.Name, quote, s.calendlyURL))
	enqueue(ctx, s.queue, task, err)

	log.Info().Str("plan", quote.Plan.ID).Strs("add_ons", quote.AddOnIDs()).Msg("signup completed")

	return &SignupResult{
		Success:        true,
		CustomerID:     customerID,
		SubscriptionID: created.State.StripeSubscriptionID,
		Status:         created.State.Status,
		Quote:          quote,
		ClientSecret:   created.ClientSecret,
		CalendlyURL:    s.calendlyURL,
	}, nil
}

func welcomeData(name string, q *pricing.Quote, calendlyURL string) email.WelcomeData {
	data := email.WelcomeData{
		Name:        utils.FirstName(name),
		PlanName:    q.Plan.Name,
		TrialDays:   q.TrialDays,
		TaxCents:    q.TaxCents,
		TotalCents:  q.TotalCents,
		CalendlyURL: calendlyURL,
	}
	for _, li := range q.LineItems {
		data.LineItems = append(data.LineItems, email.LineItem{Name: li.Name, AmountCents: li.AmountCents})
	}
	return data
}
