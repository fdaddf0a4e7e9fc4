// Package billing wraps the Stripe API calls the signup flow and the
// webhook endpoint need.
package billing

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/model"
	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/pricing"
)

const (
	SignatureHeader = "Stripe-Signature"

	metadataPlan   = "plan"
	metadataAddOns = "add_ons"
)

// ErrPriceNotFound means a catalog lookup key has no active Stripe price.
var ErrPriceNotFound = errors.New("billing: no active price for lookup key")

// CustomerParams describes the customer created at signup.
type CustomerParams struct {
	Name            string
	Email           string
	Phone           string
	State           string
	PaymentMethodID string
}

// SubscriptionParams describes the subscription created at signup.
type SubscriptionParams struct {
	CustomerID string
	Quote      *pricing.Quote
	TaxRateID  string
}

// CreatedSubscription is what signup needs back from Stripe.
type CreatedSubscription struct {
	State        model.SubscriptionState
	ClientSecret string
}

// Client talks to Stripe with one API key. Resolved price ids are cached
// for the life of the process.
type Client struct {
	api           *client.API
	webhookSecret string

	mu     sync.RWMutex
	prices map[string]string
}

func NewClient(secretKey, webhookSecret string) *Client {
	return NewClientWithBackends(secretKey, webhookSecret, nil)
}

// NewClientWithBackends points the client at explicit Stripe backends,
// e.g. stripe-mock or a test server. Nil means the live API.
func NewClientWithBackends(secretKey, webhookSecret string, backends *stripe.Backends) *Client {
	sc := &client.API{}
	sc.Init(secretKey, backends)

	return &Client{
		api:           sc,
		webhookSecret: webhookSecret,
		prices:        make(map[string]string),
	}
}

// CreateCustomer creates a customer and, when given, attaches the payment
// method as the invoice default.
func (c *Client) CreateCustomer(ctx context.Context, p CustomerParams) (string, error) {
	params := &stripe.CustomerParams{
		Name:  stripe.String(p.Name),
		Email: stripe.String(p.Email),
	}
	params.Context = ctx
	if p.Phone != "" {
		params.Phone = stripe.String(p.Phone)
	}
	if p.State != "" {
		params.Address = &stripe.AddressParams{
			State:   stripe.String(p.State),
			Country: stripe.String("US"),
		}
	}
	if p.PaymentMethodID != "" {
		params.PaymentMethod = stripe.String(p.PaymentMethodID)
		params.InvoiceSettings = &stripe.CustomerInvoiceSettingsParams{
			DefaultPaymentMethod: stripe.String(p.PaymentMethodID),
		}
	}

	cus, err := c.api.Customers.New(params)
	if err != nil {
		return "", errors.Wrap(err, "stripe: create customer")
	}
	return cus.ID, nil
}

// CreateSubscription subscribes the customer to every line of the quote.
// Trial quotes get trial days and are cancelled by Stripe if no payment
// method is on file when the trial ends.
func (c *Client) CreateSubscription(ctx context.Context, p SubscriptionParams) (*CreatedSubscription, error) {
	lookupKeys := []string{p.Quote.Plan.LookupKey}
	for _, addOn := range p.Quote.AddOns {
		lookupKeys = append(lookupKeys, addOn.LookupKey)
	}

	priceIDs, err := c.ResolvePrices(ctx, lookupKeys)
	if err != nil {
		return nil, err
	}

	params := &stripe.SubscriptionParams{
		Customer:        stripe.String(p.CustomerID),
		PaymentBehavior: stripe.String("default_incomplete"),
		Metadata: map[string]string{
			metadataPlan:   p.Quote.Plan.ID,
			metadataAddOns: strings.Join(p.Quote.AddOnIDs(), ","),
		},
	}
	params.Context = ctx
	params.AddExpand("latest_invoice.payment_intent")

	for _, key := range lookupKeys {
		params.Items = append(params.Items, &stripe.SubscriptionItemsParams{
			Price: stripe.String(priceIDs[key]),
		})
	}

	if p.TaxRateID != "" && p.Quote.TaxCents > 0 {
		params.DefaultTaxRates = stripe.StringSlice([]string{p.TaxRateID})
	}

	if p.Quote.TrialDays > 0 {
		params.TrialPeriodDays = stripe.Int64(int64(p.Quote.TrialDays))
		params.TrialSettings = &stripe.SubscriptionTrialSettingsParams{
			EndBehavior: &stripe.SubscriptionTrialSettingsEndBehaviorParams{
				MissingPaymentMethod: stripe.String("cancel"),
			},
		}
	}

	sub, err := c.api.Subscriptions.New(params)
	if err != nil {
		return nil, errors.Wrap(err, "stripe: create subscription")
	}

	created := &CreatedSubscription{State: SubscriptionState(sub)}
	created.State.SubtotalCents = p.Quote.SubtotalCents
	created.State.TaxCents = p.Quote.TaxCents
	created.State.TotalCents = p.Quote.TotalCents

	if sub.LatestInvoice != nil && sub.LatestInvoice.PaymentIntent != nil {
		created.ClientSecret = sub.LatestInvoice.PaymentIntent.ClientSecret
	}

	return created, nil
}

// ResolvePrices maps lookup keys to active price ids.
func (c *Client) ResolvePrices(ctx context.Context, lookupKeys []string) (map[string]string, error) {
	out := make(map[string]string, len(lookupKeys))
	var missing []string

	c.mu.RLock()
	for _, key := range lookupKeys {
		if id, ok := c.prices[key]; ok {
			out[key] = id
		} else {
			missing = append(missing, key)
		}
	}
	c.mu.RUnlock()

	if len(missing) == 0 {
		return out, nil
	}

	params := &stripe.PriceListParams{
		LookupKeys: stripe.StringSlice(missing),
		Active:     stripe.Bool(true),
	}
	params.Context = ctx

	iter := c.api.Prices.List(params)
	c.mu.Lock()
	for iter.Next() {
		price := iter.Price()
		c.prices[price.LookupKey] = price.ID
		out[price.LookupKey] = price.ID
	}
	c.mu.Unlock()
	if err := iter.Err(); err != nil {
		return nil, errors.Wrap(err, "stripe: list prices")
	}

	for _, key := range missing {
		if _, ok := out[key]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrPriceNotFound, key)
		}
	}

	return out, nil
}

// ConstructEvent verifies the Stripe-Signature header and decodes the event.
// Events from a newer API version than this library are still accepted
// since only stable fields are read.
func (c *Client) ConstructEvent(payload []byte, signature string) (stripe.Event, error) {
	return webhook.ConstructEventWithOptions(payload, signature, c.webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
}

// SubscriptionState maps a Stripe subscription onto the stored shape.
// Plan and add-ons come from the metadata signup wrote, falling back to
// the item price lookup keys for subscriptions created in the dashboard.
func SubscriptionState(sub *stripe.Subscription) model.SubscriptionState {
	state := model.SubscriptionState{
		StripeSubscriptionID: sub.ID,
		Status:               model.SubscriptionStatus(sub.Status),
		CurrentPeriodEnd:     UnixTime(sub.CurrentPeriodEnd),
		TrialEnd:             UnixTime(sub.TrialEnd),
		CancelAtPeriodEnd:    sub.CancelAtPeriodEnd,
	}
	if sub.Customer != nil {
		state.StripeCustomerID = sub.Customer.ID
	}

	if plan := sub.Metadata[metadataPlan]; plan != "" {
		state.Plan = plan
		state.AddOns = splitNonEmpty(sub.Metadata[metadataAddOns])
		return state
	}

	if sub.Items != nil {
		for _, item := range sub.Items.Data {
			if item.Price == nil {
				continue
			}
			p, ok := pricing.LookupByKey(item.Price.LookupKey)
			if !ok {
				continue
			}
			if p.IsCore() {
				state.Plan = p.ID
			} else {
				state.AddOns = append(state.AddOns, p.ID)
			}
		}
	}

	return state
}

// UnixTime converts a Stripe timestamp, treating zero as unset.
func UnixTime(sec int64) *time.Time {
	if sec == 0 {
		return nil
	}
	t := time.Unix(sec, 0).UTC()
	return &t
}

func splitNonEmpty(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
