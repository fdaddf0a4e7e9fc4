package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/model"
	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/sqlerr"
)

type CustomerRepository struct {
	pool *pgxpool.Pool
}

func NewCustomerRepository(pool *pgxpool.Pool) *CustomerRepository {
	return &CustomerRepository{pool: pool}
}

// Create stores a customer keyed by its Stripe id; a repeat insert for the
// same Stripe customer updates the contact details instead.
func (r *CustomerRepository) Create(ctx context.Context, c *model.Customer) error {
	stmt := `
		INSERT INTO customers (stripe_customer_id, name, email, phone, company, website, state, ideal_client)
		VALUES (@stripe_customer_id, @name, @email, @phone, @company, @website, @state, @ideal_client)
		ON CONFLICT (stripe_customer_id) DO UPDATE SET
			name = EXCLUDED.name,
			email = EXCLUDED.email,
			phone = EXCLUDED.phone,
			company = EXCLUDED.company,
			website = EXCLUDED.website,
			state = EXCLUDED.state,
			ideal_client = EXCLUDED.ideal_client
		RETURNING id, created_at`

	err := r.pool.QueryRow(ctx, stmt, pgx.NamedArgs{
		"stripe_customer_id": c.StripeCustomerID,
		"name":               c.Name,
		"email":              c.Email,
		"phone":              c.Phone,
		"company":            c.Company,
		"website":            c.Website,
		"state":              c.State,
		"ideal_client":       c.IdealClient,
	}).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert customer %s: %w", c.StripeCustomerID, err)
	}
	return nil
}

func (r *CustomerRepository) GetByStripeID(ctx context.Context, stripeCustomerID string) (*model.Customer, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, stripe_customer_id, name, email, phone, company, website, state, ideal_client, created_at
		FROM customers WHERE stripe_customer_id = $1`, stripeCustomerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query customer %s: %w", stripeCustomerID, err)
	}

	c, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[model.Customer])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, sqlerr.NotFound("customers")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to collect customer %s: %w", stripeCustomerID, err)
	}
	return c, nil
}

const subscriptionColumns = `id, stripe_subscription_id, stripe_customer_id, plan, add_ons, status,
	subtotal_cents, tax_cents, total_cents, current_period_end, trial_end, cancel_at_period_end,
	last_payment_at, created_at, updated_at`

type SubscriptionRepository struct {
	pool *pgxpool.Pool
}

func NewSubscriptionRepository(pool *pgxpool.Pool) *SubscriptionRepository {
	return &SubscriptionRepository{pool: pool}
}

// Upsert writes the Stripe view of a subscription. On conflict the stored
// plan is kept unless the incoming state carries one, and the stored
// amounts are kept unless the incoming state has a non-zero total. Either
// the webhook or the signup flow may write the row first.
func (r *SubscriptionRepository) Upsert(ctx context.Context, s model.SubscriptionState) (*model.Subscription, error) {
	addOns := s.AddOns
	if addOns == nil {
		addOns = []string{}
	}

	stmt := `
		INSERT INTO subscriptions (stripe_subscription_id, stripe_customer_id, plan, add_ons, status,
			subtotal_cents, tax_cents, total_cents, current_period_end, trial_end, cancel_at_period_end)
		VALUES (@sub_id, @customer_id, @plan, @add_ons, @status,
			@subtotal, @tax, @total, @period_end, @trial_end, @cancel_at_period_end)
		ON CONFLICT (stripe_subscription_id) DO UPDATE SET
			status = EXCLUDED.status,
			plan = CASE WHEN EXCLUDED.plan = '' THEN subscriptions.plan ELSE EXCLUDED.plan END,
			add_ons = CASE WHEN EXCLUDED.plan = '' THEN subscriptions.add_ons ELSE EXCLUDED.add_ons END,
			subtotal_cents = CASE WHEN EXCLUDED.total_cents > 0 THEN EXCLUDED.subtotal_cents ELSE subscriptions.subtotal_cents END,
			tax_cents = CASE WHEN EXCLUDED.total_cents > 0 THEN EXCLUDED.tax_cents ELSE subscriptions.tax_cents END,
			total_cents = CASE WHEN EXCLUDED.total_cents > 0 THEN EXCLUDED.total_cents ELSE subscriptions.total_cents END,
			current_period_end = COALESCE(EXCLUDED.current_period_end, subscriptions.current_period_end),
			trial_end = COALESCE(EXCLUDED.trial_end, subscriptions.trial_end),
			cancel_at_period_end = EXCLUDED.cancel_at_period_end
		RETURNING ` + subscriptionColumns

	rows, err := r.pool.Query(ctx, stmt, pgx.NamedArgs{
		"sub_id":               s.StripeSubscriptionID,
		"customer_id":          s.StripeCustomerID,
		"plan":                 s.Plan,
		"add_ons":              addOns,
		"status":               string(s.Status),
		"subtotal":             s.SubtotalCents,
		"tax":                  s.TaxCents,
		"total":                s.TotalCents,
		"period_end":           s.CurrentPeriodEnd,
		"trial_end":            s.TrialEnd,
		"cancel_at_period_end": s.CancelAtPeriodEnd,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upsert subscription %s: %w", s.StripeSubscriptionID, err)
	}

	sub, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[model.Subscription])
	if err != nil {
		return nil, fmt.Errorf("failed to collect subscription %s: %w", s.StripeSubscriptionID, err)
	}
	return sub, nil
}

func (r *SubscriptionRepository) UpdateStatus(ctx context.Context, stripeSubscriptionID string, status model.SubscriptionStatus) (*model.Subscription, error) {
	rows, err := r.pool.Query(ctx,
		`UPDATE subscriptions SET status = $2 WHERE stripe_subscription_id = $1 RETURNING `+subscriptionColumns,
		stripeSubscriptionID, string(status),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update subscription %s: %w", stripeSubscriptionID, err)
	}

	sub, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[model.Subscription])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, sqlerr.NotFound("subscriptions")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to collect subscription %s: %w", stripeSubscriptionID, err)
	}
	return sub, nil
}

// MarkPaid activates the subscription and records when it was last paid.
func (r *SubscriptionRepository) MarkPaid(ctx context.Context, stripeSubscriptionID string, paidAt time.Time, periodEnd *time.Time) (*model.Subscription, error) {
	rows, err := r.pool.Query(ctx, `
		UPDATE subscriptions SET
			status = 'active',
			last_payment_at = $2,
			current_period_end = COALESCE($3, current_period_end)
		WHERE stripe_subscription_id = $1
		RETURNING `+subscriptionColumns,
		stripeSubscriptionID, paidAt, periodEnd,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to mark subscription %s paid: %w", stripeSubscriptionID, err)
	}

	sub, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[model.Subscription])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, sqlerr.NotFound("subscriptions")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to collect subscription %s: %w", stripeSubscriptionID, err)
	}
	return sub, nil
}

// ExpireTrials moves trialing subscriptions whose trial ended before now to
// trial_expired and returns how many changed.
func (r *SubscriptionRepository) ExpireTrials(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE subscriptions SET status = 'trial_expired'
		WHERE status = 'trialing' AND trial_end IS NOT NULL AND trial_end < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to expire trials: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *SubscriptionRepository) List(ctx context.Context, page model.Page) ([]model.Subscription, int, error) {
	page = page.Normalize()

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM subscriptions`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count subscriptions: %w", err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+subscriptionColumns+` FROM subscriptions ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		page.Limit, page.Offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list subscriptions: %w", err)
	}

	subs, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.Subscription])
	if err != nil {
		return nil, 0, fmt.Errorf("failed to collect subscriptions: %w", err)
	}
	return subs, total, nil
}

type StripeEventRepository struct {
	pool *pgxpool.Pool
}

func NewStripeEventRepository(pool *pgxpool.Pool) *StripeEventRepository {
	return &StripeEventRepository{pool: pool}
}

// Record stores the event id and reports whether this is the first delivery.
func (r *StripeEventRepository) Record(ctx context.Context, id, eventType string) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`INSERT INTO stripe_events (id, type) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING`,
		id, eventType,
	)
	if err != nil {
		return false, fmt.Errorf("failed to record stripe event %s: %w", id, err)
	}
	return tag.RowsAffected() == 1, nil
}

// Forget removes an event id so Stripe's retry is processed again.
func (r *StripeEventRepository) Forget(ctx context.Context, id string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM stripe_events WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to forget stripe event %s: %w", id, err)
	}
	return nil
}
