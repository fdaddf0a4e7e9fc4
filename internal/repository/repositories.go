// Package repository holds the SQL for every table the funnel owns.
//
// Each repository wraps the shared pgx pool. Queries return model types and
// wrap pgx.ErrNoRows with the table name so the global error handler can
// turn a miss into a 404 for the right entity.
package repository

import (
	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/server"
)

// Repositories groups every repository so services can be wired in one place.
type Repositories struct {
	Submissions   *SubmissionRepository
	Leads         *LeadRepository
	Customers     *CustomerRepository
	Subscriptions *SubscriptionRepository
	StripeEvents  *StripeEventRepository
	Stats         *StatsRepository
}

func NewRepositories(s *server.Server) *Repositories {
	pool := s.DB.Pool
	return &Repositories{
		Submissions:   NewSubmissionRepository(pool),
		Leads:         NewLeadRepository(pool),
		Customers:     NewCustomerRepository(pool),
		Subscriptions: NewSubscriptionRepository(pool),
		StripeEvents:  NewStripeEventRepository(pool),
		Stats:         NewStatsRepository(pool),
	}
}
