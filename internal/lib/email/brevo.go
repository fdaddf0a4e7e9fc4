package email

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

// ErrContactSyncDisabled is returned by SyncContact without a Brevo key.
var ErrContactSyncDisabled = errors.New("brevo contact sync is not configured")

// Brevo allows far more, but bursts from a digest or a replayed queue
// should not trip its abuse limits.
const brevoRequestsPerSecond = 5

// BrevoClient talks to the Brevo v3 REST API for transactional mail and
// marketing contacts.
type BrevoClient struct {
	http    *resty.Client
	limiter *rate.Limiter
	listID  int64
}

// Contact is a marketing list entry. Attributes use Brevo's upper-case
// attribute names, e.g. FIRSTNAME.
type Contact struct {
	Email      string         `json:"email"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

type brevoAddress struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

type brevoEmailRequest struct {
	Sender      brevoAddress   `json:"sender"`
	To          []brevoAddress `json:"to"`
	ReplyTo     *brevoAddress  `json:"replyTo,omitempty"`
	Subject     string         `json:"subject"`
	HTMLContent string         `json:"htmlContent"`
	Tags        []string       `json:"tags,omitempty"`
}

type brevoContactRequest struct {
	Email         string         `json:"email"`
	Attributes    map[string]any `json:"attributes,omitempty"`
	ListIDs       []int64        `json:"listIds,omitempty"`
	UpdateEnabled bool           `json:"updateEnabled"`
}

// BrevoError is the error body Brevo returns on 4xx and 5xx.
type BrevoError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *BrevoError) Error() string {
	return fmt.Sprintf("brevo: %d %s: %s", e.Status, e.Code, e.Message)
}

func NewBrevoClient(baseURL, apiKey string, listID int64) *BrevoClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetHeader("api-key", apiKey).
		SetHeader("Accept", "application/json").
		SetTimeout(10 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= 500
		})

	return &BrevoClient{
		http:    client,
		limiter: rate.NewLimiter(rate.Limit(brevoRequestsPerSecond), brevoRequestsPerSecond),
		listID:  listID,
	}
}

func (b *BrevoClient) Send(ctx context.Context, msg Message) error {
	req := brevoEmailRequest{
		Sender:      brevoAddress{Name: msg.From.Name, Email: msg.From.Email},
		Subject:     msg.Subject,
		HTMLContent: msg.HTML,
		Tags:        msg.Tags,
	}
	for _, to := range msg.To {
		req.To = append(req.To, brevoAddress{Email: to})
	}
	if msg.ReplyTo != "" {
		req.ReplyTo = &brevoAddress{Email: msg.ReplyTo}
	}

	return b.post(ctx, "/smtp/email", req)
}

// UpsertContact creates the contact or updates its attributes, adding it
// to the configured list when there is one.
func (b *BrevoClient) UpsertContact(ctx context.Context, contact Contact) error {
	req := brevoContactRequest{
		Email:         contact.Email,
		Attributes:    contact.Attributes,
		UpdateEnabled: true,
	}
	if b.listID > 0 {
		req.ListIDs = []int64{b.listID}
	}

	return b.post(ctx, "/contacts", req)
}

func (b *BrevoClient) post(ctx context.Context, path string, body any) error {
	if err := b.limiter.Wait(ctx); err != nil {
		return err
	}

	apiErr := &BrevoError{}
	resp, err := b.http.R().
		SetContext(ctx).
		SetBody(body).
		SetError(apiErr).
		Post(path)
	if err != nil {
		return fmt.Errorf("brevo request %s: %w", path, err)
	}

	if resp.IsError() {
		apiErr.Status = resp.StatusCode()
		return apiErr
	}

	return nil
}
