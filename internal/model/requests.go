package model

import (
	"strings"

	"github.com/google/uuid"

	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/pricing"
	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/validation"
)

// Request payloads for the public forms and the admin API. Validate trims
// and normalizes fields before checking them, so services receive
// sanitized values.

// ContactRequest is the contact form. Older form builds post idealclient
// instead of idealClient; both are accepted.
type ContactRequest struct {
	Name              string `json:"name" validate:"required,min=2,max=100"`
	Email             string `json:"email" validate:"required,email,max=254"`
	Phone             string `json:"phone" validate:"omitempty,phone_us"`
	Company           string `json:"company" validate:"max=120"`
	Website           string `json:"website" validate:"omitempty,website"`
	Service           string `json:"service" validate:"required,oneof=seo social-media paid-ads web-design email-marketing other"`
	Budget            string `json:"budget" validate:"omitempty,oneof=under-1k 1k-3k 3k-5k 5k-plus"`
	Message           string `json:"message" validate:"required,min=10,max=5000"`
	IdealClient       string `json:"idealClient" validate:"max=1000"`
	LegacyIdealClient string `json:"idealclient" validate:"-"`
	Source            string `json:"source" validate:"max=100"`
	BotField          string `json:"botField"`
}

// IsBot reports whether the honeypot field was filled in.
func (r *ContactRequest) IsBot() bool {
	return strings.TrimSpace(r.BotField) != ""
}

func (r *ContactRequest) normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Company = strings.TrimSpace(r.Company)
	r.Service = strings.TrimSpace(r.Service)
	r.Budget = strings.TrimSpace(r.Budget)
	r.Message = strings.TrimSpace(r.Message)
	r.Source = strings.TrimSpace(r.Source)
	if strings.TrimSpace(r.IdealClient) == "" {
		r.IdealClient = r.LegacyIdealClient
	}
	r.IdealClient = strings.TrimSpace(r.IdealClient)
	r.Phone = normalizePhone(r.Phone)
	r.Website = normalizeWebsite(r.Website)
}

// Validate skips every rule for bots so the honeypot answer looks like a
// normal success.
func (r *ContactRequest) Validate() error {
	if r.IsBot() {
		return nil
	}
	r.normalize()
	return validation.Struct(r)
}

type LeadMagnetRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Name     string `json:"name" validate:"max=100"`
	Magnet   string `json:"magnet" validate:"required,max=100"`
	Consent  bool   `json:"consent"`
	BotField string `json:"botField"`
}

func (r *LeadMagnetRequest) IsBot() bool {
	return strings.TrimSpace(r.BotField) != ""
}

func (r *LeadMagnetRequest) Validate() error {
	if r.IsBot() {
		return nil
	}
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Name = strings.TrimSpace(r.Name)
	r.Magnet = strings.ToLower(strings.TrimSpace(r.Magnet))
	return validation.Struct(r)
}

type DownloadRequest struct {
	Token string `query:"token" validate:"required"`
}

func (r *DownloadRequest) Validate() error {
	return validation.Struct(r)
}

// SignupRequest is the pricing page checkout. PaymentMethodID comes from
// Stripe.js and may be empty only for the trial plan.
type SignupRequest struct {
	Name              string   `json:"name" validate:"required,min=2,max=100"`
	Email             string   `json:"email" validate:"required,email,max=254"`
	Phone             string   `json:"phone" validate:"required,phone_us"`
	Company           string   `json:"company" validate:"max=120"`
	Website           string   `json:"website" validate:"omitempty,website"`
	State             string   `json:"state" validate:"required,max=50"`
	Plan              string   `json:"plan" validate:"required"`
	AddOns            []string `json:"addOns" validate:"max=10,dive,required"`
	IdealClient       string   `json:"idealClient" validate:"max=1000"`
	LegacyIdealClient string   `json:"idealclient" validate:"-"`
	PaymentMethodID   string   `json:"paymentMethodId" validate:"max=255"`
	BotField          string   `json:"botField"`
}

func (r *SignupRequest) IsBot() bool {
	return strings.TrimSpace(r.BotField) != ""
}

func (r *SignupRequest) Validate() error {
	if r.IsBot() {
		return nil
	}

	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Company = strings.TrimSpace(r.Company)
	r.State = strings.TrimSpace(r.State)
	r.Plan = strings.ToLower(strings.TrimSpace(r.Plan))
	r.PaymentMethodID = strings.TrimSpace(r.PaymentMethodID)
	if strings.TrimSpace(r.IdealClient) == "" {
		r.IdealClient = r.LegacyIdealClient
	}
	r.IdealClient = strings.TrimSpace(r.IdealClient)
	r.Phone = normalizePhone(r.Phone)
	r.Website = normalizeWebsite(r.Website)

	if err := validation.Struct(r); err != nil {
		return err
	}

	var errs validation.CustomValidationErrors
	if p, ok := pricing.Lookup(r.Plan); !ok || !p.IsCore() {
		errs = append(errs, validation.CustomValidationError{Field: "plan", Message: "must be a known plan"})
	}
	for _, id := range r.AddOns {
		if p, ok := pricing.Lookup(id); !ok || p.Kind != pricing.KindAddOn {
			errs = append(errs, validation.CustomValidationError{Field: "addOns", Message: "unknown add-on " + id})
			break
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// QuoteRequest prices a selection without creating anything.
type QuoteRequest struct {
	Plan   string   `json:"plan" validate:"required"`
	AddOns []string `json:"addOns" validate:"max=10"`
	State  string   `json:"state" validate:"max=50"`
}

func (r *QuoteRequest) Validate() error {
	return validation.Struct(r)
}

// EmptyRequest is bound by endpoints that take no input.
type EmptyRequest struct{}

func (r *EmptyRequest) Validate() error {
	return nil
}

type ListRequest struct {
	Limit  int `query:"limit" validate:"gte=0,lte=200"`
	Offset int `query:"offset" validate:"gte=0"`
}

func (r *ListRequest) Validate() error {
	return validation.Struct(r)
}

func (r *ListRequest) Page() Page {
	return Page{Limit: r.Limit, Offset: r.Offset}.Normalize()
}

type ListSubmissionsRequest struct {
	ListRequest
	Status string `query:"status" validate:"omitempty,oneof=new contacted booked archived"`
}

func (r *ListSubmissionsRequest) Validate() error {
	return validation.Struct(r)
}

type UpdateSubmissionRequest struct {
	ID     string `param:"id" validate:"required,uuid"`
	Status string `json:"status" validate:"required,oneof=new contacted booked archived"`
}

func (r *UpdateSubmissionRequest) Validate() error {
	return validation.Struct(r)
}

// SubmissionID is only meaningful after Validate.
func (r *UpdateSubmissionRequest) SubmissionID() uuid.UUID {
	return uuid.MustParse(r.ID)
}

type EmailPreviewRequest struct {
	Template string `param:"template" validate:"required"`
}

func (r *EmailPreviewRequest) Validate() error {
	return validation.Struct(r)
}

func normalizePhone(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if res := validation.ValidatePhone(s); res.Valid {
		return res.Normalized
	}
	return s
}

func normalizeWebsite(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if res := validation.ValidateURL(s); res.Valid {
		return res.Normalized
	}
	return s
}
