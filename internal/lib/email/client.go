// Package email sends the funnel's transactional mail.
//
// Brevo (REST over resty) and Resend are supported; config picks one. HTML
// bodies come from embedded html/template files with sprig helpers. When no
// provider key is configured the client logs messages instead of sending,
// which keeps local development free of outbound mail.
package email

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/config"
)

const (
	ProviderBrevo  = "brevo"
	ProviderResend = "resend"
)

// Address is a mailbox with an optional display name.
type Address struct {
	Name  string
	Email string
}

func (a Address) String() string {
	if a.Name == "" {
		return a.Email
	}
	return fmt.Sprintf("%s <%s>", a.Name, a.Email)
}

// Message is a rendered email ready for a provider.
type Message struct {
	From    Address
	To      []string
	ReplyTo string
	Subject string
	HTML    string
	Tags    []string
}

// Sender delivers a rendered message through one provider.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Client renders templates and hands messages to the configured Sender.
type Client struct {
	sender   Sender
	contacts *BrevoClient
	from     Address
	notifyTo string
	logger   *zerolog.Logger
}

// NewClient wires the provider selected by cfg.Integration.EmailProvider.
// Brevo contact sync is available whenever a Brevo key is set, regardless
// of which provider sends mail.
func NewClient(cfg *config.Config, logger *zerolog.Logger) *Client {
	integration := cfg.Integration

	var brevo *BrevoClient
	if integration.BrevoAPIKey != "" {
		brevo = NewBrevoClient(integration.BrevoBaseURL, integration.BrevoAPIKey, integration.BrevoListID)
	}

	var sender Sender
	switch {
	case integration.EmailProvider == ProviderResend && integration.ResendAPIKey != "":
		sender = NewResendSender(integration.ResendAPIKey)
	case integration.EmailProvider == ProviderBrevo && brevo != nil:
		sender = brevo
	default:
		logger.Warn().
			Str("provider", integration.EmailProvider).
			Msg("email provider has no API key, messages will only be logged")
		sender = &logSender{logger: logger}
	}

	c := NewClientWithSender(sender, Address{Name: integration.FromName, Email: integration.FromEmail}, integration.NotifyEmail, logger)
	c.contacts = brevo
	return c
}

// NewClientWithSender builds a client around an explicit sender.
func NewClientWithSender(sender Sender, from Address, notifyTo string, logger *zerolog.Logger) *Client {
	return &Client{
		sender:   sender,
		from:     from,
		notifyTo: notifyTo,
		logger:   logger,
	}
}

// SendEmail renders tmpl with data and sends it to the recipients.
func (c *Client) SendEmail(ctx context.Context, to []string, replyTo, subject string, tmpl Template, data any) error {
	html, err := Render(tmpl, data)
	if err != nil {
		return err
	}

	err = c.sender.Send(ctx, Message{
		From:    c.from,
		To:      to,
		ReplyTo: replyTo,
		Subject: subject,
		HTML:    html,
		Tags:    []string{string(tmpl)},
	})
	if err != nil {
		return errors.Wrapf(err, "failed to send %s email", tmpl)
	}

	return nil
}

// ContactSyncEnabled reports whether Brevo contact sync is configured.
func (c *Client) ContactSyncEnabled() bool {
	return c.contacts != nil
}

// SyncContact adds or updates a contact in the Brevo marketing list.
func (c *Client) SyncContact(ctx context.Context, contact Contact) error {
	if c.contacts == nil {
		return ErrContactSyncDisabled
	}
	return c.contacts.UpsertContact(ctx, contact)
}

// logSender stands in for a provider when none is configured.
type logSender struct {
	logger *zerolog.Logger
}

func (s *logSender) Send(_ context.Context, msg Message) error {
	s.logger.Info().
		Strs("to", msg.To).
		Str("subject", msg.Subject).
		Int("html_bytes", len(msg.HTML)).
		Msg("email not sent, no provider configured")
	return nil
}
