package service

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/errs"
	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/lib/email"
	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/lib/job"
	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/lib/utils"
	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/model"
)

// MaxMessageLinks is how many URLs a contact message may carry before it
// is treated as spam.
const MaxMessageLinks = 3

type SubmissionCreator interface {
	Create(ctx context.Context, sub *model.Submission) (bool, error)
}

// FormResult is the JSON answer to a public form post. Status picks the
// HTTP status; zero means the route default.
type FormResult struct {
	Success     bool       `json:"success"`
	ID          *uuid.UUID `json:"id,omitempty"`
	Duplicate   bool       `json:"duplicate,omitempty"`
	CalendlyURL string     `json:"calendlyUrl,omitempty"`
	DownloadURL string     `json:"downloadUrl,omitempty"`

	Status int `json:"-"`
}

func (r *FormResult) StatusCode() int {
	return r.Status
}

type ContactService struct {
	submissions SubmissionCreator
	queue       job.Enqueuer
	calendlyURL string
	adminURL    string
	now         func() time.Time
}

func NewContactService(submissions SubmissionCreator, queue job.Enqueuer, calendlyURL, publicBaseURL string) *ContactService {
	return &ContactService{
		submissions: submissions,
		queue:       queue,
		calendlyURL: calendlyURL,
		adminURL:    publicBaseURL + "/admin/submissions",
		now:         time.Now,
	}
}

// Submit stores an inquiry and queues the agency notification and the
// auto-reply.
//
// A filled honeypot gets a plain 200 success with nothing stored. A repeat
// of a message stored the same UTC day (same email, same text) also gets a
// 200, flagged as duplicate, and sends no mail.
func (s *ContactService) Submit(ctx context.Context, req *model.ContactRequest, ip string) (*FormResult, error) {
	logger := zerolog.Ctx(ctx)

	if req.IsBot() {
		logger.Warn().Str("ip", ip).Msg("contact honeypot triggered")
		return &FormResult{Success: true, Status: http.StatusOK}, nil
	}

	if utils.CountLinks(req.Message) > MaxMessageLinks {
		return nil, errs.NewBadRequestError("Your message contains too many links", true, errs.Ptr(errs.CodeSpam),
			[]errs.FieldError{{Field: "message", Error: "contains too many links"}}, nil)
	}

	sub := &model.Submission{
		Name:        req.Name,
		Email:       req.Email,
		Phone:       utils.Optional(req.Phone),
		Company:     utils.Optional(req.Company),
		Website:     utils.Optional(req.Website),
		Service:     req.Service,
		Budget:      utils.Optional(req.Budget),
		Message:     req.Message,
		IdealClient: utils.Optional(req.IdealClient),
		Source:      utils.Optional(req.Source),
		IP:          utils.Optional(ip),
		DedupHash:   utils.DedupHash(req.Email, req.Message, s.now()),
		Status:      model.SubmissionNew,
	}

	created, err := s.submissions.Create(ctx, sub)
	if err != nil {
		return nil, err
	}
	if !created {
		logger.Info().Str("email", req.Email).Msg("duplicate contact submission ignored")
		return &FormResult{Success: true, Duplicate: true, CalendlyURL: s.calendlyURL, Status: http.StatusOK}, nil
	}

	task, err := job.NewContactNotificationTask(email.ContactNotificationData{
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		Company:     req.Company,
		Website:     req.Website,
		Service:     req.Service,
		Budget:      req.Budget,
		Message:     req.Message,
		IdealClient: req.IdealClient,
		Source:      req.Source,
		AdminURL:    s.adminURL,
	})
	enqueue(ctx, s.queue, task, err)

	task, err = job.NewContactAutoreplyTask(req.Email, email.ContactAutoreplyData{
		Name:        utils.FirstName(req.Name),
		CalendlyURL: s.calendlyURL,
	})
	enqueue(ctx, s.queue, task, err)

	logger.Info().Str("submission_id", sub.ID.String()).Msg("contact submission stored")

	return &FormResult{Success: true, ID: &sub.ID, CalendlyURL: s.calendlyURL}, nil
}
