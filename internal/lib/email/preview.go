package email

// PreviewData holds sample data for every template, used by the admin
// preview endpoint and the template tests.
var PreviewData = map[Template]any{
	TemplateContactNotification: ContactNotificationData{
		Name:        "Jane Cooper",
		Email:       "jane@cooperbakery.com",
		Phone:       "(555) 123-4567",
		Company:     "Cooper Bakery",
		Website:     "https://cooperbakery.com",
		Service:     "seo",
		Budget:      "1k-3k",
		Message:     "We opened a second location and want it to show up on Google Maps.",
		IdealClient: "Families within ten miles who order custom cakes.",
		Source:      "pricing-page",
		AdminURL:    "https://rivadigital.co/admin/submissions",
	},
	TemplateContactAutoreply: ContactAutoreplyData{
		Name:        "jane cooper",
		CalendlyURL: "https://calendly.com/riva/strategy",
	},
	TemplateLeadMagnet: LeadMagnetData{
		Name:           "Jane",
		Title:          "The Local SEO Checklist",
		DownloadURL:    "https://rivadigital.co/api/lead-magnet/download?token=preview",
		ExpiresInHours: 24,
	},
	TemplateWelcome: WelcomeData{
		Name:     "Jane Cooper",
		PlanName: "Starter",
		LineItems: []LineItem{
			{Name: "Starter", AmountCents: 9900},
			{Name: "SEO Boost", AmountCents: 4900},
		},
		TaxCents:    888,
		TotalCents:  15688,
		CalendlyURL: "https://calendly.com/riva/kickoff",
	},
	TemplatePaymentFailed: PaymentFailedData{
		CustomerName:   "Jane Cooper",
		CustomerEmail:  "jane@cooperbakery.com",
		SubscriptionID: "sub_1PreviewExample",
		AmountDueCents: 15688,
		AttemptCount:   2,
		InvoiceURL:     "https://invoice.stripe.com/i/preview",
	},
	TemplateDailyDigest: DailyDigestData{
		Date: "2025-07-30",
		Submissions: []DigestSubmission{
			{Name: "Jane Cooper", Email: "jane@cooperbakery.com", Company: "Cooper Bakery", Service: "seo", Status: "new"},
			{Name: "Omar Reyes", Email: "omar@reyesauto.com", Service: "paid-ads", Status: "booked"},
		},
		Leads:               41,
		LeadDownloads:       57,
		MonthlyRevenueCents: 129400,
	},
}
