package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/model"
)

type StatsRepository struct {
	pool *pgxpool.Pool
}

func NewStatsRepository(pool *pgxpool.Pool) *StatsRepository {
	return &StatsRepository{pool: pool}
}

// Collect builds the dashboard summary. Monthly revenue counts active and
// past-due subscriptions.
func (r *StatsRepository) Collect(ctx context.Context, now time.Time) (*model.Stats, error) {
	stats := &model.Stats{
		SubmissionsByStatus:   map[model.SubmissionStatus]int{},
		SubscriptionsByStatus: map[model.SubscriptionStatus]int{},
		GeneratedAt:           now,
	}

	rows, err := r.pool.Query(ctx, `SELECT status, count(*) FROM submissions GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count submissions: %w", err)
	}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan submission counts: %w", err)
		}
		stats.SubmissionsByStatus[model.SubmissionStatus(status)] = n
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read submission counts: %w", err)
	}

	rows, err = r.pool.Query(ctx, `SELECT status, count(*) FROM subscriptions GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count subscriptions: %w", err)
	}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan subscription counts: %w", err)
		}
		stats.SubscriptionsByStatus[model.SubscriptionStatus(status)] = n
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read subscription counts: %w", err)
	}

	err = r.pool.QueryRow(ctx, `
		SELECT
			(SELECT count(*) FROM submissions WHERE created_at >= $1),
			(SELECT count(*) FROM leads),
			(SELECT COALESCE(sum(download_count), 0) FROM leads),
			(SELECT COALESCE(sum(total_cents), 0) FROM subscriptions WHERE status IN ('active', 'past_due'))`,
		now.AddDate(0, 0, -7),
	).Scan(&stats.SubmissionsLast7Days, &stats.Leads, &stats.LeadDownloads, &stats.MonthlyRevenueCents)
	if err != nil {
		return nil, fmt.Errorf("failed to collect totals: %w", err)
	}

	return stats, nil
}
