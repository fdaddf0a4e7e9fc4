package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5"

	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/config"
	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/lib/billing"
	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/model"
	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/pricing"
)

func newTestCalculator() *pricing.Calculator {
	return pricing.NewCalculator(config.PricingConfig{
		TaxRate:          0.05,
		HomeState:        "MI",
		HomeStateTaxRate: 0.06,
		TrialDays:        14,
	})
}

type fakeQueue struct {
	mu    sync.Mutex
	tasks []*asynq.Task
	err   error
}

func (q *fakeQueue) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return nil, q.err
	}
	q.tasks = append(q.tasks, task)
	return &asynq.TaskInfo{Type: task.Type()}, nil
}

func (q *fakeQueue) types() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]string, 0, len(q.tasks))
	for _, t := range q.tasks {
		out = append(out, t.Type())
	}
	return out
}

// fakeSubmissions stores submissions in memory keyed by dedup hash.
type fakeSubmissions struct {
	byHash map[string]*model.Submission
	err    error

	latestStatus map[string]model.SubmissionStatus
}

func newFakeSubmissions() *fakeSubmissions {
	return &fakeSubmissions{
		byHash:       map[string]*model.Submission{},
		latestStatus: map[string]model.SubmissionStatus{},
	}
}

func (f *fakeSubmissions) Create(_ context.Context, sub *model.Submission) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	if _, ok := f.byHash[sub.DedupHash]; ok {
		return false, nil
	}
	sub.ID = uuid.New()
	sub.CreatedAt = time.Now()
	f.byHash[sub.DedupHash] = sub
	return true, nil
}

func (f *fakeSubmissions) UpdateLatestStatusByEmail(_ context.Context, email string, status model.SubmissionStatus) (*model.Submission, error) {
	for _, sub := range f.byHash {
		if sub.Email == email {
			sub.Status = status
			f.latestStatus[email] = status
			return sub, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type fakeLeadStore struct {
	leads     map[uuid.UUID]*model.Lead
	downloads map[uuid.UUID]int
}

func newFakeLeadStore() *fakeLeadStore {
	return &fakeLeadStore{leads: map[uuid.UUID]*model.Lead{}, downloads: map[uuid.UUID]int{}}
}

func (f *fakeLeadStore) Upsert(_ context.Context, lead *model.Lead) (*model.Lead, error) {
	for _, existing := range f.leads {
		if existing.Email == lead.Email && existing.Magnet == lead.Magnet {
			existing.Consent = existing.Consent || lead.Consent
			return existing, nil
		}
	}
	lead.ID = uuid.New()
	f.leads[lead.ID] = lead
	return lead, nil
}

func (f *fakeLeadStore) GetByID(_ context.Context, id uuid.UUID) (*model.Lead, error) {
	lead, ok := f.leads[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return lead, nil
}

func (f *fakeLeadStore) IncrementDownloads(_ context.Context, id uuid.UUID) error {
	f.downloads[id]++
	return nil
}

type fakeGateway struct {
	customerErr     error
	subscriptionErr error

	customers     []billing.CustomerParams
	subscriptions []billing.SubscriptionParams
}

func (g *fakeGateway) CreateCustomer(_ context.Context, p billing.CustomerParams) (string, error) {
	if g.customerErr != nil {
		return "", g.customerErr
	}
	g.customers = append(g.customers, p)
	return "cus_test", nil
}

func (g *fakeGateway) CreateSubscription(_ context.Context, p billing.SubscriptionParams) (*billing.CreatedSubscription, error) {
	if g.subscriptionErr != nil {
		return nil, g.subscriptionErr
	}
	g.subscriptions = append(g.subscriptions, p)

	status := model.SubscriptionIncomplete
	if p.Quote.Plan.Kind == pricing.KindTrial {
		status = model.SubscriptionTrialing
	}
	return &billing.CreatedSubscription{
		State: model.SubscriptionState{
			StripeSubscriptionID: "sub_test",
			Plan:                 p.Quote.Plan.ID,
			AddOns:               p.Quote.AddOnIDs(),
			Status:               status,
			TotalCents:           p.Quote.TotalCents,
		},
		ClientSecret: "pi_secret",
	}, nil
}

type fakeCustomers struct {
	created []*model.Customer
}

func (f *fakeCustomers) Create(_ context.Context, c *model.Customer) error {
	c.ID = uuid.New()
	f.created = append(f.created, c)
	return nil
}

// fakeSubscriptions implements both the signup and webhook store views.
type fakeSubscriptions struct {
	upserts  []model.SubscriptionState
	statuses map[string]model.SubscriptionStatus
	paid     map[string]time.Time
	err      error
}

func newFakeSubscriptions() *fakeSubscriptions {
	return &fakeSubscriptions{
		statuses: map[string]model.SubscriptionStatus{},
		paid:     map[string]time.Time{},
	}
}

func (f *fakeSubscriptions) Upsert(_ context.Context, s model.SubscriptionState) (*model.Subscription, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.upserts = append(f.upserts, s)
	f.statuses[s.StripeSubscriptionID] = s.Status
	return &model.Subscription{StripeSubscriptionID: s.StripeSubscriptionID, Status: s.Status}, nil
}

func (f *fakeSubscriptions) UpdateStatus(_ context.Context, id string, status model.SubscriptionStatus) (*model.Subscription, error) {
	if _, ok := f.statuses[id]; !ok {
		return nil, pgx.ErrNoRows
	}
	f.statuses[id] = status
	return &model.Subscription{StripeSubscriptionID: id, Status: status}, nil
}

func (f *fakeSubscriptions) MarkPaid(_ context.Context, id string, paidAt time.Time, _ *time.Time) (*model.Subscription, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.paid[id] = paidAt
	f.statuses[id] = model.SubscriptionActive
	return &model.Subscription{StripeSubscriptionID: id, Status: model.SubscriptionActive}, nil
}

type fakeEventLog struct {
	seen      map[string]bool
	forgotten []string
}

func newFakeEventLog() *fakeEventLog {
	return &fakeEventLog{seen: map[string]bool{}}
}

func (f *fakeEventLog) Record(_ context.Context, id, _ string) (bool, error) {
	if f.seen[id] {
		return false, nil
	}
	f.seen[id] = true
	return true, nil
}

func (f *fakeEventLog) Forget(_ context.Context, id string) error {
	delete(f.seen, id)
	f.forgotten = append(f.forgotten, id)
	return nil
}

var errBoom = errors.New("boom")
