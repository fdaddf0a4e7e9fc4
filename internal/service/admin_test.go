package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/lib/email"
	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/model"
)

type fakeAdminStore struct {
	filter   model.SubmissionFilter
	subs     []model.Submission
	statsAt  time.Time
	updated  map[uuid.UUID]model.SubmissionStatus
	notFound bool
}

func (f *fakeAdminStore) List(_ context.Context, filter model.SubmissionFilter) ([]model.Submission, int, error) {
	f.filter = filter
	return f.subs, len(f.subs), nil
}

func (f *fakeAdminStore) UpdateStatus(_ context.Context, id uuid.UUID, status model.SubmissionStatus) (*model.Submission, error) {
	if f.notFound {
		return nil, pgx.ErrNoRows
	}
	f.updated[id] = status
	return &model.Submission{ID: id, Status: status}, nil
}

type fakeLeadLister struct{ page model.Page }

func (f *fakeLeadLister) List(_ context.Context, page model.Page) ([]model.Lead, int, error) {
	f.page = page
	return nil, 0, nil
}

type fakeSubscriptionLister struct{}

func (fakeSubscriptionLister) List(context.Context, model.Page) ([]model.Subscription, int, error) {
	return []model.Subscription{{StripeSubscriptionID: "sub_1"}}, 1, nil
}

func (f *fakeAdminStore) Collect(_ context.Context, now time.Time) (*model.Stats, error) {
	f.statsAt = now
	return &model.Stats{Leads: 3, GeneratedAt: now}, nil
}

func newAdminFixture() (*fakeAdminStore, *fakeLeadLister, *AdminService) {
	store := &fakeAdminStore{updated: map[uuid.UUID]model.SubmissionStatus{}}
	leads := &fakeLeadLister{}
	svc := NewAdminService(store, leads, fakeSubscriptionLister{}, store)
	return store, leads, svc
}

func TestAdminListSubmissions(t *testing.T) {
	store, _, svc := newAdminFixture()
	store.subs = []model.Submission{{Name: "Jane"}}

	res, err := svc.ListSubmissions(context.Background(), &model.ListSubmissionsRequest{
		ListRequest: model.ListRequest{Limit: 10, Offset: 20},
		Status:      "booked",
	})
	require.NoError(t, err)

	assert.Equal(t, model.SubmissionBooked, store.filter.Status)
	assert.Equal(t, model.Page{Limit: 10, Offset: 20}, store.filter.Page)
	assert.Equal(t, 1, res.Total)
	assert.Equal(t, 10, res.Limit)
	assert.Equal(t, 20, res.Offset)
}

func TestAdminListLeadsDefaultsPageAndEmptyData(t *testing.T) {
	_, leads, svc := newAdminFixture()

	res, err := svc.ListLeads(context.Background(), &model.ListRequest{})
	require.NoError(t, err)

	assert.Equal(t, model.DefaultPageLimit, leads.page.Limit)
	assert.NotNil(t, res.Data)
	assert.Empty(t, res.Data)
}

func TestAdminListSubscriptions(t *testing.T) {
	_, _, svc := newAdminFixture()

	res, err := svc.ListSubscriptions(context.Background(), &model.ListRequest{Limit: 5})
	require.NoError(t, err)
	require.Len(t, res.Data, 1)
	assert.Equal(t, "sub_1", res.Data[0].StripeSubscriptionID)
}

func TestAdminUpdateSubmission(t *testing.T) {
	store, _, svc := newAdminFixture()
	id := uuid.New()

	sub, err := svc.UpdateSubmission(context.Background(), &model.UpdateSubmissionRequest{ID: id.String(), Status: "contacted"})
	require.NoError(t, err)
	assert.Equal(t, model.SubmissionContacted, sub.Status)
	assert.Equal(t, model.SubmissionContacted, store.updated[id])
}

func TestAdminStatsUsesClock(t *testing.T) {
	store, _, svc := newAdminFixture()
	fixed := time.Date(2026, 10, 15, 8, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, fixed, store.statsAt)
	assert.Equal(t, 3, stats.Leads)
}

func TestAdminPreviewEmail(t *testing.T) {
	_, _, svc := newAdminFixture()

	for _, tmpl := range svc.EmailTemplates() {
		t.Run(string(tmpl), func(t *testing.T) {
			html, err := svc.PreviewEmail(string(tmpl))
			require.NoError(t, err)
			assert.Contains(t, html, "<html")
		})
	}

	_, err := svc.PreviewEmail("nope")
	requireHTTPError(t, err, http.StatusNotFound, "NOT_FOUND")
	assert.Contains(t, svc.EmailTemplates(), email.TemplateWelcome)
}
