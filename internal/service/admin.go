package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/errs"
	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/lib/email"
	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/model"
)

type SubmissionAdminStore interface {
	List(ctx context.Context, filter model.SubmissionFilter) ([]model.Submission, int, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.SubmissionStatus) (*model.Submission, error)
}

type LeadLister interface {
	List(ctx context.Context, page model.Page) ([]model.Lead, int, error)
}

type SubscriptionLister interface {
	List(ctx context.Context, page model.Page) ([]model.Subscription, int, error)
}

type StatsCollector interface {
	Collect(ctx context.Context, now time.Time) (*model.Stats, error)
}

// AdminService backs the dashboard. Callers are already authorized.
type AdminService struct {
	submissions   SubmissionAdminStore
	leads         LeadLister
	subscriptions SubscriptionLister
	stats         StatsCollector
	now           func() time.Time
}

func NewAdminService(submissions SubmissionAdminStore, leads LeadLister, subscriptions SubscriptionLister, stats StatsCollector) *AdminService {
	return &AdminService{
		submissions:   submissions,
		leads:         leads,
		subscriptions: subscriptions,
		stats:         stats,
		now:           time.Now,
	}
}

func (s *AdminService) ListSubmissions(ctx context.Context, req *model.ListSubmissionsRequest) (*model.PaginatedResponse[model.Submission], error) {
	page := req.Page()
	subs, total, err := s.submissions.List(ctx, model.SubmissionFilter{
		Status: model.SubmissionStatus(req.Status),
		Page:   page,
	})
	if err != nil {
		return nil, err
	}
	return paginate(subs, total, page), nil
}

func (s *AdminService) UpdateSubmission(ctx context.Context, req *model.UpdateSubmissionRequest) (*model.Submission, error) {
	return s.submissions.UpdateStatus(ctx, req.SubmissionID(), model.SubmissionStatus(req.Status))
}

func (s *AdminService) ListLeads(ctx context.Context, req *model.ListRequest) (*model.PaginatedResponse[model.Lead], error) {
	page := req.Page()
	leads, total, err := s.leads.List(ctx, page)
	if err != nil {
		return nil, err
	}
	return paginate(leads, total, page), nil
}

func (s *AdminService) ListSubscriptions(ctx context.Context, req *model.ListRequest) (*model.PaginatedResponse[model.Subscription], error) {
	page := req.Page()
	subs, total, err := s.subscriptions.List(ctx, page)
	if err != nil {
		return nil, err
	}
	return paginate(subs, total, page), nil
}

func (s *AdminService) Stats(ctx context.Context) (*model.Stats, error) {
	return s.stats.Collect(ctx, s.now().UTC())
}

// PreviewEmail renders a template with its sample data.
func (s *AdminService) PreviewEmail(name string) (string, error) {
	tmpl := email.Template(name)
	data, ok := email.PreviewData[tmpl]
	if !ok {
		return "", errs.NewNotFoundError("Email template not found", true, nil)
	}
	return email.Render(tmpl, data)
}

// EmailTemplates lists the templates that can be previewed.
func (s *AdminService) EmailTemplates() []email.Template {
	return email.Templates
}

func paginate[T any](data []T, total int, page model.Page) *model.PaginatedResponse[T] {
	if data == nil {
		data = []T{}
	}
	return &model.PaginatedResponse[T]{
		Data:   data,
		Total:  total,
		Limit:  page.Limit,
		Offset: page.Offset,
	}
}
