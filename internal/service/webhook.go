package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v76"

	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/errs"
	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/lib/billing"
	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/lib/calendly"
	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/lib/email"
	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/lib/job"
	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/model"
)

// WebhookResult acknowledges a delivery.
type WebhookResult struct {
	Received  bool   `json:"received"`
	Duplicate bool   `json:"duplicate,omitempty"`
	Ignored   bool   `json:"ignored,omitempty"`
	Event     string `json:"event,omitempty"`
}

type EventVerifier interface {
	ConstructEvent(payload []byte, signature string) (stripe.Event, error)
}

type SubscriptionStore interface {
	Upsert(ctx context.Context, s model.SubscriptionState) (*model.Subscription, error)
	UpdateStatus(ctx context.Context, stripeSubscriptionID string, status model.SubscriptionStatus) (*model.Subscription, error)
	MarkPaid(ctx context.Context, stripeSubscriptionID string, paidAt time.Time, periodEnd *time.Time) (*model.Subscription, error)
}

type EventLog interface {
	Record(ctx context.Context, id, eventType string) (bool, error)
	Forget(ctx context.Context, id string) error
}

type stripeEventHandler func(ctx context.Context, ev stripe.Event) error

// StripeWebhookService applies Stripe events to the subscriptions table.
// Each event id is processed once; a handler failure forgets the id so
// Stripe's retry runs again.
type StripeWebhookService struct {
	verifier      EventVerifier
	subscriptions SubscriptionStore
	events        EventLog
	queue         job.Enqueuer
	handlers      map[stripe.EventType]stripeEventHandler
}

// NewStripeWebhookService wires the dispatch table. verifier is nil when
// Stripe is not configured.
func NewStripeWebhookService(verifier EventVerifier, subscriptions SubscriptionStore, events EventLog, queue job.Enqueuer) *StripeWebhookService {
	s := &StripeWebhookService{
		verifier:      verifier,
		subscriptions: subscriptions,
		events:        events,
		queue:         queue,
	}
	s.handlers = map[stripe.EventType]stripeEventHandler{
		stripe.EventTypeCustomerSubscriptionCreated: s.subscriptionChanged,
		stripe.EventTypeCustomerSubscriptionUpdated: s.subscriptionChanged,
		stripe.EventTypeCustomerSubscriptionDeleted: s.subscriptionDeleted,
		stripe.EventTypeInvoicePaid:                 s.invoicePaid,
		stripe.EventTypeInvoicePaymentFailed:        s.invoicePaymentFailed,
	}
	return s
}

// Handles reports whether t has a handler.
func (s *StripeWebhookService) Handles(t stripe.EventType) bool {
	_, ok := s.handlers[t]
	return ok
}

func (s *StripeWebhookService) Handle(ctx context.Context, payload []byte, signature string) (*WebhookResult, error) {
	if s.verifier == nil {
		return nil, errs.NewServiceUnavailableError("Billing is not configured", errs.Ptr(errs.CodeBillingDisabled))
	}

	ev, err := s.verifier.ConstructEvent(payload, signature)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("rejected stripe webhook")
		return nil, errs.NewBadRequestError("Invalid signature", false, errs.Ptr(errs.CodeInvalidSignature), nil, nil)
	}

	logger := zerolog.Ctx(ctx).With().Str("event_id", ev.ID).Str("event_type", string(ev.Type)).Logger()
	ctx = logger.WithContext(ctx)

	handler, ok := s.handlers[ev.Type]
	if !ok {
		logger.Debug().Msg("stripe event ignored")
		return &WebhookResult{Received: true, Ignored: true, Event: string(ev.Type)}, nil
	}

	fresh, err := s.events.Record(ctx, ev.ID, string(ev.Type))
	if err != nil {
		return nil, err
	}
	if !fresh {
		logger.Info().Msg("stripe event already processed")
		return &WebhookResult{Received: true, Duplicate: true, Event: string(ev.Type)}, nil
	}

	if err := handler(ctx, ev); err != nil {
		if ferr := s.events.Forget(ctx, ev.ID); ferr != nil {
			logger.Error().Err(ferr).Msg("failed to forget stripe event")
		}
		return nil, err
	}

	logger.Info().Msg("stripe event processed")
	return &WebhookResult{Received: true, Event: string(ev.Type)}, nil
}

func (s *StripeWebhookService) subscriptionChanged(ctx context.Context, ev stripe.Event) error {
	var sub stripe.Subscription
	if err := json.Unmarshal(ev.Data.Raw, &sub); err != nil {
		return err
	}

	_, err := s.subscriptions.Upsert(ctx, billing.SubscriptionState(&sub))
	return err
}

// subscriptionDeleted upserts rather than updates so a subscription
// created outside signup still ends up recorded as canceled.
func (s *StripeWebhookService) subscriptionDeleted(ctx context.Context, ev stripe.Event) error {
	var sub stripe.Subscription
	if err := json.Unmarshal(ev.Data.Raw, &sub); err != nil {
		return err
	}

	state := billing.SubscriptionState(&sub)
	state.Status = model.SubscriptionCanceled

	_, err := s.subscriptions.Upsert(ctx, state)
	return err
}

func (s *StripeWebhookService) invoicePaid(ctx context.Context, ev stripe.Event) error {
	var inv stripe.Invoice
	if err := json.Unmarshal(ev.Data.Raw, &inv); err != nil {
		return err
	}
	if inv.Subscription == nil || inv.Subscription.ID == "" {
		return nil
	}

	paidAt := time.Unix(ev.Created, 0).UTC()
	if inv.StatusTransitions != nil && inv.StatusTransitions.PaidAt > 0 {
		paidAt = time.Unix(inv.StatusTransitions.PaidAt, 0).UTC()
	}

	var periodEnd *time.Time
	if inv.Lines != nil {
		for _, line := range inv.Lines.Data {
			if line.Period != nil {
				periodEnd = billing.UnixTime(line.Period.End)
				break
			}
		}
	}

	_, err := s.subscriptions.MarkPaid(ctx, inv.Subscription.ID, paidAt, periodEnd)
	return err
}

// invoicePaymentFailed marks the subscription past due and tells the
// agency. An invoice for a subscription we never stored still alerts.
func (s *StripeWebhookService) invoicePaymentFailed(ctx context.Context, ev stripe.Event) error {
	var inv stripe.Invoice
	if err := json.Unmarshal(ev.Data.Raw, &inv); err != nil {
		return err
	}
	if inv.Subscription == nil || inv.Subscription.ID == "" {
		return nil
	}

	_, err := s.subscriptions.UpdateStatus(ctx, inv.Subscription.ID, model.SubscriptionPastDue)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return err
	}

	task, err := job.NewPaymentFailedTask(email.PaymentFailedData{
		CustomerName:   inv.CustomerName,
		CustomerEmail:  inv.CustomerEmail,
		SubscriptionID: inv.Subscription.ID,
		AmountDueCents: inv.AmountDue,
		AttemptCount:   inv.AttemptCount,
		InvoiceURL:     inv.HostedInvoiceURL,
	})
	enqueue(ctx, s.queue, task, err)

	return nil
}

type SubmissionStatusUpdater interface {
	UpdateLatestStatusByEmail(ctx context.Context, email string, status model.SubmissionStatus) (*model.Submission, error)
}

// CalendlyWebhookService keeps submission status in step with bookings.
type CalendlyWebhookService struct {
	verifier    *calendly.Verifier
	submissions SubmissionStatusUpdater
}

// NewCalendlyWebhookService wires the service. verifier is nil when no
// signing key is configured.
func NewCalendlyWebhookService(verifier *calendly.Verifier, submissions SubmissionStatusUpdater) *CalendlyWebhookService {
	return &CalendlyWebhookService{verifier: verifier, submissions: submissions}
}

// Handle marks the latest submission from the invitee booked on
// invitee.created and back to contacted on a cancellation. The
// cancellation half of a reschedule is skipped since a created event
// follows it.
func (s *CalendlyWebhookService) Handle(ctx context.Context, signature string, body []byte) (*WebhookResult, error) {
	if s.verifier == nil {
		return nil, errs.NewServiceUnavailableError("Calendly webhooks are not configured", nil)
	}

	if err := s.verifier.Verify(signature, body); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("rejected calendly webhook")
		return nil, errs.NewBadRequestError("Invalid signature", false, errs.Ptr(errs.CodeInvalidSignature), nil, nil)
	}

	ev, err := calendly.Parse(body)
	if err != nil {
		return nil, errs.NewBadRequestError("Malformed event", false, nil, nil, nil)
	}

	logger := zerolog.Ctx(ctx).With().Str("event_type", ev.Event).Str("email", ev.Payload.Email).Logger()

	var status model.SubmissionStatus
	switch {
	case ev.Event == calendly.EventInviteeCreated:
		status = model.SubmissionBooked
	case ev.Event == calendly.EventInviteeCanceled && !ev.Payload.Rescheduled:
		status = model.SubmissionContacted
	default:
		logger.Debug().Msg("calendly event ignored")
		return &WebhookResult{Received: true, Ignored: true, Event: ev.Event}, nil
	}

	sub, err := s.submissions.UpdateLatestStatusByEmail(ctx, ev.Payload.Email, status)
	if errors.Is(err, pgx.ErrNoRows) {
		logger.Info().Msg("calendly invitee has no submission")
		return &WebhookResult{Received: true, Ignored: true, Event: ev.Event}, nil
	}
	if err != nil {
		return nil, err
	}

	logger.Info().Str("submission_id", sub.ID.String()).Str("status", string(status)).Msg("submission status updated from calendly")
	return &WebhookResult{Received: true, Event: ev.Event}, nil
}
