package service

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/errs"
	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/lib/email"
	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/lib/job"
	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/lib/storage"
	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/lib/token"
	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/model"
)

// Magnet is a downloadable guide offered for an email address.
type Magnet struct {
	Slug     string `json:"slug"`
	Title    string `json:"title"`
	AssetKey string `json:"-"`
	Filename string `json:"filename"`
}

var magnets = map[string]Magnet{
	"local-seo-checklist": {
		Slug:     "local-seo-checklist",
		Title:    "The Local SEO Checklist",
		AssetKey: "local-seo-checklist.pdf",
		Filename: "Riva-Local-SEO-Checklist.pdf",
	},
	"google-business-profile-guide": {
		Slug:     "google-business-profile-guide",
		Title:    "The Google Business Profile Playbook",
		AssetKey: "google-business-profile-guide.pdf",
		Filename: "Riva-Google-Business-Profile-Playbook.pdf",
	},
	"social-media-calendar": {
		Slug:     "social-media-calendar",
		Title:    "90-Day Social Media Content Calendar",
		AssetKey: "social-media-calendar.pdf",
		Filename: "Riva-Social-Media-Calendar.pdf",
	},
}

// LookupMagnet finds a lead magnet by slug.
func LookupMagnet(slug string) (Magnet, bool) {
	m, ok := magnets[slug]
	return m, ok
}

type LeadStore interface {
	Upsert(ctx context.Context, lead *model.Lead) (*model.Lead, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Lead, error)
	IncrementDownloads(ctx context.Context, id uuid.UUID) error
}

// Download is an open lead magnet file. The caller closes Body.
type Download struct {
	*storage.Object
	Filename string
}

type LeadMagnetService struct {
	leads       LeadStore
	assets      storage.Store
	signer      *token.DownloadSigner
	queue       job.Enqueuer
	downloadURL string
}

func NewLeadMagnetService(leads LeadStore, assets storage.Store, signer *token.DownloadSigner, queue job.Enqueuer, publicBaseURL string) *LeadMagnetService {
	return &LeadMagnetService{
		leads:       leads,
		assets:      assets,
		signer:      signer,
		queue:       queue,
		downloadURL: publicBaseURL + "/api/lead-magnet/download",
	}
}

// Request records the lead, queues the delivery email and, with consent,
// the Brevo list sync. The signed download link is also returned so the
// page can start the download immediately.
func (s *LeadMagnetService) Request(ctx context.Context, req *model.LeadMagnetRequest) (*FormResult, error) {
	logger := zerolog.Ctx(ctx)

	if req.IsBot() {
		logger.Warn().Msg("lead magnet honeypot triggered")
		return &FormResult{Success: true, Status: http.StatusOK}, nil
	}

	magnet, ok := LookupMagnet(req.Magnet)
	if !ok {
		return nil, errs.NewBadRequestError("Unknown download", true, nil,
			[]errs.FieldError{{Field: "magnet", Error: "must be a known download"}}, nil)
	}

	lead := &model.Lead{
		Email:   req.Email,
		Magnet:  magnet.Slug,
		Consent: req.Consent,
	}
	if req.Name != "" {
		lead.Name = &req.Name
	}

	lead, err := s.leads.Upsert(ctx, lead)
	if err != nil {
		return nil, err
	}

	tok, _, err := s.signer.Sign(lead.ID, magnet.Slug)
	if err != nil {
		return nil, err
	}
	link := s.downloadURL + "?token=" + url.QueryEscape(tok)

	task, err := job.NewLeadMagnetTask(lead.Email, email.LeadMagnetData{
		Name:           req.Name,
		Title:          magnet.Title,
		DownloadURL:    link,
		ExpiresInHours: int(s.signer.TTL() / time.Hour),
	})
	enqueue(ctx, s.queue, task, err)

	if lead.Consent && !lead.BrevoSynced {
		task, err = job.NewSyncContactTask(job.SyncContactPayload{
			LeadID: lead.ID,
			Email:  lead.Email,
			Name:   req.Name,
			Magnet: magnet.Slug,
		})
		enqueue(ctx, s.queue, task, err)
	}

	logger.Info().Str("lead_id", lead.ID.String()).Str("magnet", magnet.Slug).Msg("lead magnet requested")

	return &FormResult{Success: true, ID: &lead.ID, DownloadURL: link}, nil
}

// Open verifies a download token and opens the file it grants.
func (s *LeadMagnetService) Open(ctx context.Context, tok string) (*Download, error) {
	leadID, slug, err := s.signer.Verify(tok)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("rejected download token")
		httpErr := errs.NewUnauthorizedError("This download link is invalid or has expired", true)
		httpErr.Code = errs.CodeInvalidToken
		return nil, httpErr.WithAction(&errs.Action{Type: errs.ActionTypeRedirect, Message: "Request a new link", Value: "/resources"})
	}

	magnet, ok := LookupMagnet(slug)
	if !ok {
		return nil, errs.NewNotFoundError("Download not found", true, nil)
	}

	if _, err := s.leads.GetByID(ctx, leadID); err != nil {
		return nil, err
	}

	obj, err := s.assets.Open(ctx, magnet.AssetKey)
	if errors.Is(err, storage.ErrNotFound) {
		zerolog.Ctx(ctx).Error().Str("asset", magnet.AssetKey).Msg("lead magnet asset missing")
		return nil, errs.NewNotFoundError("Download not found", true, nil)
	}
	if err != nil {
		return nil, err
	}

	if err := s.leads.IncrementDownloads(ctx, leadID); err != nil {
		obj.Body.Close()
		return nil, err
	}

	return &Download{Object: obj, Filename: magnet.Filename}, nil
}
