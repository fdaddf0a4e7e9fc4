package model

import (
	"time"

	"github.com/google/uuid"
)

// SubscriptionStatus mirrors Stripe's subscription statuses plus
// trial_expired, which the trial sweep sets on lapsed free trials.
type SubscriptionStatus string

const (
	SubscriptionTrialing          SubscriptionStatus = "trialing"
	SubscriptionActive            SubscriptionStatus = "active"
	SubscriptionPastDue           SubscriptionStatus = "past_due"
	SubscriptionCanceled          SubscriptionStatus = "canceled"
	SubscriptionIncomplete        SubscriptionStatus = "incomplete"
	SubscriptionIncompleteExpired SubscriptionStatus = "incomplete_expired"
	SubscriptionUnpaid            SubscriptionStatus = "unpaid"
	SubscriptionPaused            SubscriptionStatus = "paused"
	SubscriptionTrialExpired      SubscriptionStatus = "trial_expired"
)

type Customer struct {
	ID               uuid.UUID `json:"id" db:"id"`
	StripeCustomerID string    `json:"stripeCustomerId" db:"stripe_customer_id"`
	Name             string    `json:"name" db:"name"`
	Email            string    `json:"email" db:"email"`
	Phone            *string   `json:"phone" db:"phone"`
	Company          *string   `json:"company" db:"company"`
	Website          *string   `json:"website" db:"website"`
	State            *string   `json:"state" db:"state"`
	IdealClient      *string   `json:"idealClient" db:"ideal_client"`
	CreatedAt        time.Time `json:"createdAt" db:"created_at"`
}

type Subscription struct {
	ID                   uuid.UUID          `json:"id" db:"id"`
	StripeSubscriptionID string             `json:"stripeSubscriptionId" db:"stripe_subscription_id"`
	StripeCustomerID     string             `json:"stripeCustomerId" db:"stripe_customer_id"`
	Plan                 string             `json:"plan" db:"plan"`
	AddOns               []string           `json:"addOns" db:"add_ons"`
	Status               SubscriptionStatus `json:"status" db:"status"`
	SubtotalCents        int64              `json:"subtotalCents" db:"subtotal_cents"`
	TaxCents             int64              `json:"taxCents" db:"tax_cents"`
	TotalCents           int64              `json:"totalCents" db:"total_cents"`
	CurrentPeriodEnd     *time.Time         `json:"currentPeriodEnd" db:"current_period_end"`
	TrialEnd             *time.Time         `json:"trialEnd" db:"trial_end"`
	CancelAtPeriodEnd    bool               `json:"cancelAtPeriodEnd" db:"cancel_at_period_end"`
	LastPaymentAt        *time.Time         `json:"lastPaymentAt" db:"last_payment_at"`
	CreatedAt            time.Time          `json:"createdAt" db:"created_at"`
	UpdatedAt            time.Time          `json:"updatedAt" db:"updated_at"`
}

// SubscriptionState is the part of a subscription Stripe webhooks report.
// Amounts are zero when the writer has no quote; a zero total never
// overwrites stored amounts.
type SubscriptionState struct {
	StripeSubscriptionID string
	StripeCustomerID     string
	Plan                 string
	AddOns               []string
	Status               SubscriptionStatus
	CurrentPeriodEnd     *time.Time
	TrialEnd             *time.Time
	CancelAtPeriodEnd    bool
	SubtotalCents        int64
	TaxCents             int64
	TotalCents           int64
}
