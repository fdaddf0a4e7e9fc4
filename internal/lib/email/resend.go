package email

import (
	"context"

	"github.com/resend/resend-go/v2"
)

// ResendSender delivers mail through the Resend API.
type ResendSender struct {
	client *resend.Client
}

func NewResendSender(apiKey string) *ResendSender {
	return &ResendSender{client: resend.NewClient(apiKey)}
}

func (s *ResendSender) Send(ctx context.Context, msg Message) error {
	params := &resend.SendEmailRequest{
		From:    msg.From.String(),
		To:      msg.To,
		Subject: msg.Subject,
		Html:    msg.HTML,
		ReplyTo: msg.ReplyTo,
	}
	for _, tag := range msg.Tags {
		params.Tags = append(params.Tags, resend.Tag{Name: "category", Value: tag})
	}

	_, err := s.client.Emails.SendWithContext(ctx, params)
	return err
}
