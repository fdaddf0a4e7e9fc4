package email

import (
	"context"
	"fmt"
)

// ContactNotificationData fills the agency's new-inquiry email.
type ContactNotificationData struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone,omitempty"`
	Company     string `json:"company,omitempty"`
	Website     string `json:"website,omitempty"`
	Service     string `json:"service"`
	Budget      string `json:"budget,omitempty"`
	Message     string `json:"message"`
	IdealClient string `json:"idealClient,omitempty"`
	Source      string `json:"source,omitempty"`
	AdminURL    string `json:"adminUrl,omitempty"`
}

type ContactAutoreplyData struct {
	Name        string `json:"name"`
	CalendlyURL string `json:"calendlyUrl,omitempty"`
}

type LeadMagnetData struct {
	Name           string `json:"name,omitempty"`
	Title          string `json:"title"`
	DownloadURL    string `json:"downloadUrl"`
	ExpiresInHours int    `json:"expiresInHours"`
}

type LineItem struct {
	Name        string `json:"name"`
	AmountCents int64  `json:"amountCents"`
}

type WelcomeData struct {
	Name        string     `json:"name"`
	PlanName    string     `json:"planName"`
	TrialDays   int        `json:"trialDays"`
	LineItems   []LineItem `json:"lineItems"`
	TaxCents    int64      `json:"taxCents"`
	TotalCents  int64      `json:"totalCents"`
	CalendlyURL string     `json:"calendlyUrl,omitempty"`
}

type PaymentFailedData struct {
	CustomerName   string `json:"customerName,omitempty"`
	CustomerEmail  string `json:"customerEmail"`
	SubscriptionID string `json:"subscriptionId"`
	AmountDueCents int64  `json:"amountDueCents"`
	AttemptCount   int64  `json:"attemptCount"`
	InvoiceURL     string `json:"invoiceUrl,omitempty"`
}

type DigestSubmission struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Company string `json:"company,omitempty"`
	Service string `json:"service"`
	Status  string `json:"status"`
}

type DailyDigestData struct {
	Date                string             `json:"date"`
	Submissions         []DigestSubmission `json:"submissions"`
	Leads               int                `json:"leads"`
	LeadDownloads       int                `json:"leadDownloads"`
	MonthlyRevenueCents int64              `json:"monthlyRevenueCents"`
}

// SendContactNotification tells the agency about a new inquiry. Replies go
// straight to the person who wrote in.
func (c *Client) SendContactNotification(ctx context.Context, data ContactNotificationData) error {
	return c.SendEmail(ctx,
		[]string{c.notifyTo},
		data.Email,
		fmt.Sprintf("New inquiry from %s", data.Name),
		TemplateContactNotification,
		data,
	)
}

func (c *Client) SendContactAutoreply(ctx context.Context, to string, data ContactAutoreplyData) error {
	return c.SendEmail(ctx,
		[]string{to},
		c.notifyTo,
		"Thanks for contacting Riva Digital",
		TemplateContactAutoreply,
		data,
	)
}

func (c *Client) SendLeadMagnet(ctx context.Context, to string, data LeadMagnetData) error {
	return c.SendEmail(ctx,
		[]string{to},
		c.notifyTo,
		fmt.Sprintf("Your copy of %s", data.Title),
		TemplateLeadMagnet,
		data,
	)
}

func (c *Client) SendWelcome(ctx context.Context, to string, data WelcomeData) error {
	return c.SendEmail(ctx,
		[]string{to},
		c.notifyTo,
		"Welcome to Riva Digital!",
		TemplateWelcome,
		data,
	)
}

// SendPaymentFailed alerts the agency, not the customer; Stripe already
// emails the customer about the failed charge.
func (c *Client) SendPaymentFailed(ctx context.Context, data PaymentFailedData) error {
	return c.SendEmail(ctx,
		[]string{c.notifyTo},
		"",
		fmt.Sprintf("Payment failed for %s", data.CustomerEmail),
		TemplatePaymentFailed,
		data,
	)
}

func (c *Client) SendDailyDigest(ctx context.Context, data DailyDigestData) error {
	return c.SendEmail(ctx,
		[]string{c.notifyTo},
		"",
		fmt.Sprintf("Riva daily digest for %s", data.Date),
		TemplateDailyDigest,
		data,
	)
}
