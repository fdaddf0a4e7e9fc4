// Package model defines the records the funnel stores in Postgres.
package model

import "time"

// Page is the limit/offset window for admin listings.
type Page struct {
	Limit  int
	Offset int
}

const (
	DefaultPageLimit = 50
	MaxPageLimit     = 200
)

// Normalize clamps the page into the accepted range.
func (p Page) Normalize() Page {
	if p.Limit <= 0 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// PaginatedResponse wraps a listing with its total count.
type PaginatedResponse[T any] struct {
	Data   []T `json:"data"`
	Total  int `json:"total"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// Stats is the admin dashboard summary.
type Stats struct {
	SubmissionsByStatus   map[SubmissionStatus]int   `json:"submissionsByStatus"`
	SubmissionsLast7Days  int                        `json:"submissionsLast7Days"`
	Leads                 int                        `json:"leads"`
	LeadDownloads         int                        `json:"leadDownloads"`
	SubscriptionsByStatus map[SubscriptionStatus]int `json:"subscriptionsByStatus"`
	MonthlyRevenueCents   int64                      `json:"monthlyRevenueCents"`
	GeneratedAt           time.Time                  `json:"generatedAt"`
}
