package service

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/errs"
	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/lib/billing"
	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/lib/calendly"
	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/lib/job"
	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/model"
)

type fakeVerifier struct {
	ev  stripe.Event
	err error
}

func (v *fakeVerifier) ConstructEvent([]byte, string) (stripe.Event, error) {
	return v.ev, v.err
}

func stripeEvent(id string, t stripe.EventType, raw string) stripe.Event {
	return stripe.Event{
		ID:      id,
		Type:    t,
		Created: time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC).Unix(),
		Data:    &stripe.EventData{Raw: json.RawMessage(raw)},
	}
}

type stripeFixture struct {
	subscriptions *fakeSubscriptions
	events        *fakeEventLog
	queue         *fakeQueue
	verifier      *fakeVerifier
	svc           *StripeWebhookService
}

func newStripeFixture() *stripeFixture {
	f := &stripeFixture{
		subscriptions: newFakeSubscriptions(),
		events:        newFakeEventLog(),
		queue:         &fakeQueue{},
		verifier:      &fakeVerifier{},
	}
	f.svc = NewStripeWebhookService(f.verifier, f.subscriptions, f.events, f.queue)
	return f
}

const subscriptionJSON = `{"id":"sub_1","object":"subscription","customer":"cus_1","status":"active",
	"current_period_end":1793448000,"metadata":{"plan":"growth","add_ons":"seo-boost,paid-ads"}}`

func TestStripeWebhookSubscriptionUpdated(t *testing.T) {
	f := newStripeFixture()
	f.verifier.ev = stripeEvent("evt_1", stripe.EventTypeCustomerSubscriptionUpdated, subscriptionJSON)

	res, err := f.svc.Handle(context.Background(), []byte("{}"), "sig")
	require.NoError(t, err)
	assert.True(t, res.Received)
	assert.False(t, res.Duplicate)

	require.Len(t, f.subscriptions.upserts, 1)
	state := f.subscriptions.upserts[0]
	assert.Equal(t, "sub_1", state.StripeSubscriptionID)
	assert.Equal(t, "cus_1", state.StripeCustomerID)
	assert.Equal(t, "growth", state.Plan)
	assert.Equal(t, []string{"seo-boost", "paid-ads"}, state.AddOns)
	assert.Equal(t, model.SubscriptionActive, state.Status)
	require.NotNil(t, state.CurrentPeriodEnd)
}

func TestStripeWebhookDuplicateEvent(t *testing.T) {
	f := newStripeFixture()
	f.verifier.ev = stripeEvent("evt_1", stripe.EventTypeCustomerSubscriptionCreated, subscriptionJSON)

	_, err := f.svc.Handle(context.Background(), nil, "sig")
	require.NoError(t, err)

	res, err := f.svc.Handle(context.Background(), nil, "sig")
	require.NoError(t, err)
	assert.True(t, res.Duplicate)
	assert.Len(t, f.subscriptions.upserts, 1)
}

func TestStripeWebhookSubscriptionDeleted(t *testing.T) {
	f := newStripeFixture()
	f.verifier.ev = stripeEvent("evt_2", stripe.EventTypeCustomerSubscriptionDeleted, subscriptionJSON)

	_, err := f.svc.Handle(context.Background(), nil, "sig")
	require.NoError(t, err)
	assert.Equal(t, model.SubscriptionCanceled, f.subscriptions.statuses["sub_1"])
}

func TestStripeWebhookInvoicePaid(t *testing.T) {
	f := newStripeFixture()
	f.verifier.ev = stripeEvent("evt_3", stripe.EventTypeInvoicePaid,
		`{"id":"in_1","object":"invoice","subscription":"sub_1","status_transitions":{"paid_at":1790000000},
		"lines":{"object":"list","data":[{"id":"il_1","period":{"start":1790000000,"end":1792592000}}]}}`)

	_, err := f.svc.Handle(context.Background(), nil, "sig")
	require.NoError(t, err)

	assert.Equal(t, time.Unix(1790000000, 0).UTC(), f.subscriptions.paid["sub_1"])
	assert.Equal(t, model.SubscriptionActive, f.subscriptions.statuses["sub_1"])
}

func TestStripeWebhookInvoicePaymentFailed(t *testing.T) {
	f := newStripeFixture()
	f.subscriptions.statuses["sub_1"] = model.SubscriptionActive
	f.verifier.ev = stripeEvent("evt_4", stripe.EventTypeInvoicePaymentFailed,
		`{"id":"in_2","object":"invoice","subscription":"sub_1","customer_email":"jane@cooperbakery.com","amount_due":15688,"attempt_count":2}`)

	_, err := f.svc.Handle(context.Background(), nil, "sig")
	require.NoError(t, err)

	assert.Equal(t, model.SubscriptionPastDue, f.subscriptions.statuses["sub_1"])
	assert.Equal(t, []string{job.TaskPaymentFailed}, f.queue.types())
}

func TestStripeWebhookPaymentFailedForUnknownSubscriptionStillAlerts(t *testing.T) {
	f := newStripeFixture()
	f.verifier.ev = stripeEvent("evt_5", stripe.EventTypeInvoicePaymentFailed,
		`{"id":"in_3","object":"invoice","subscription":"sub_unknown"}`)

	_, err := f.svc.Handle(context.Background(), nil, "sig")
	require.NoError(t, err)
	assert.Equal(t, []string{job.TaskPaymentFailed}, f.queue.types())
}

func TestStripeWebhookIgnoresUnhandledTypes(t *testing.T) {
	f := newStripeFixture()
	f.verifier.ev = stripeEvent("evt_6", stripe.EventTypeCustomerCreated, `{"id":"cus_1"}`)

	res, err := f.svc.Handle(context.Background(), nil, "sig")
	require.NoError(t, err)
	assert.True(t, res.Ignored)
	assert.Empty(t, f.events.seen)
	assert.False(t, f.svc.Handles(stripe.EventTypeCustomerCreated))
	assert.True(t, f.svc.Handles(stripe.EventTypeInvoicePaid))
}

func TestStripeWebhookForgetsEventOnFailure(t *testing.T) {
	f := newStripeFixture()
	f.subscriptions.err = errBoom
	f.verifier.ev = stripeEvent("evt_7", stripe.EventTypeCustomerSubscriptionUpdated, subscriptionJSON)

	_, err := f.svc.Handle(context.Background(), nil, "sig")
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, []string{"evt_7"}, f.events.forgotten)
	assert.False(t, f.events.seen["evt_7"])
}

func TestStripeWebhookBadSignature(t *testing.T) {
	f := newStripeFixture()
	f.verifier.err = errBoom

	_, err := f.svc.Handle(context.Background(), nil, "sig")
	requireHTTPError(t, err, http.StatusBadRequest, errs.CodeInvalidSignature)
}

func TestStripeWebhookDisabled(t *testing.T) {
	svc := NewStripeWebhookService(nil, newFakeSubscriptions(), newFakeEventLog(), &fakeQueue{})

	_, err := svc.Handle(context.Background(), nil, "sig")
	requireHTTPError(t, err, http.StatusServiceUnavailable, errs.CodeBillingDisabled)
}

func TestStripeWebhookWithSignedPayload(t *testing.T) {
	const secret = "whsec_test"
	subs := newFakeSubscriptions()
	svc := NewStripeWebhookService(billing.NewClient("sk_test_123", secret), subs, newFakeEventLog(), &fakeQueue{})

	payload := []byte(`{"id":"evt_signed","object":"event","type":"customer.subscription.created","api_version":"2023-10-16",
		"data":{"object":` + subscriptionJSON + `}}`)
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    secret,
		Timestamp: time.Now(),
	})

	res, err := svc.Handle(context.Background(), payload, signed.Header)
	require.NoError(t, err)
	assert.Equal(t, "customer.subscription.created", res.Event)
	require.Len(t, subs.upserts, 1)
	assert.Equal(t, "growth", subs.upserts[0].Plan)
}

func calendlyBody(event, email string, rescheduled bool) []byte {
	body, _ := json.Marshal(map[string]any{
		"event":      event,
		"created_at": "2026-10-15T08:00:00Z",
		"payload": map[string]any{
			"email":       email,
			"name":        "Jane Cooper",
			"rescheduled": rescheduled,
		},
	})
	return body
}

func TestCalendlyWebhook(t *testing.T) {
	const email = "jane@cooperbakery.com"

	tests := []struct {
		name        string
		event       string
		rescheduled bool
		want        model.SubmissionStatus
		ignored     bool
	}{
		{"booked", calendly.EventInviteeCreated, false, model.SubmissionBooked, false},
		{"canceled", calendly.EventInviteeCanceled, false, model.SubmissionContacted, false},
		{"rescheduled", calendly.EventInviteeCanceled, true, model.SubmissionNew, true},
		{"other event", "routing_form_submission.created", false, model.SubmissionNew, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subs := newFakeSubmissions()
			subs.byHash["h"] = &model.Submission{Email: email, Status: model.SubmissionNew}

			verifier := calendly.NewVerifier("calendly-key")
			svc := NewCalendlyWebhookService(verifier, subs)

			body := calendlyBody(tt.event, email, tt.rescheduled)
			res, err := svc.Handle(context.Background(), verifier.Signature(time.Now(), body), body)
			require.NoError(t, err)

			assert.Equal(t, tt.ignored, res.Ignored)
			assert.Equal(t, tt.want, subs.byHash["h"].Status)
		})
	}
}

func TestCalendlyWebhookUnknownInvitee(t *testing.T) {
	verifier := calendly.NewVerifier("calendly-key")
	svc := NewCalendlyWebhookService(verifier, newFakeSubmissions())

	body := calendlyBody(calendly.EventInviteeCreated, "stranger@example.com", false)
	res, err := svc.Handle(context.Background(), verifier.Signature(time.Now(), body), body)
	require.NoError(t, err)
	assert.True(t, res.Ignored)
}

func TestCalendlyWebhookRejects(t *testing.T) {
	verifier := calendly.NewVerifier("calendly-key")
	body := calendlyBody(calendly.EventInviteeCreated, "jane@cooperbakery.com", false)

	svc := NewCalendlyWebhookService(verifier, newFakeSubmissions())
	_, err := svc.Handle(context.Background(), "t=1,v1=00", body)
	requireHTTPError(t, err, http.StatusBadRequest, errs.CodeInvalidSignature)

	disabled := NewCalendlyWebhookService(nil, newFakeSubmissions())
	_, err = disabled.Handle(context.Background(), verifier.Signature(time.Now(), body), body)
	requireHTTPError(t, err, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE")
}
