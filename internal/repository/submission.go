package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/model"
	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/sqlerr"
)

const submissionColumns = `id, name, email, phone, company, website, service, budget, message,
	ideal_client, source, ip, dedup_hash, status, created_at, updated_at`

type SubmissionRepository struct {
	pool *pgxpool.Pool
}

func NewSubmissionRepository(pool *pgxpool.Pool) *SubmissionRepository {
	return &SubmissionRepository{pool: pool}
}

// Create inserts sub and fills in its id, status and timestamps.
// It returns false without error when a submission with the same dedup
// hash already exists.
func (r *SubmissionRepository) Create(ctx context.Context, sub *model.Submission) (bool, error) {
	stmt := `
		INSERT INTO submissions (name, email, phone, company, website, service, budget,
			message, ideal_client, source, ip, dedup_hash)
		VALUES (@name, @email, @phone, @company, @website, @service, @budget,
			@message, @ideal_client, @source, @ip, @dedup_hash)
		ON CONFLICT (dedup_hash) DO NOTHING
		RETURNING id, status, created_at, updated_at`

	err := r.pool.QueryRow(ctx, stmt, pgx.NamedArgs{
		"name":         sub.Name,
		"email":        sub.Email,
		"phone":        sub.Phone,
		"company":      sub.Company,
		"website":      sub.Website,
		"service":      sub.Service,
		"budget":       sub.Budget,
		"message":      sub.Message,
		"ideal_client": sub.IdealClient,
		"source":       sub.Source,
		"ip":           sub.IP,
		"dedup_hash":   sub.DedupHash,
	}).Scan(&sub.ID, &sub.Status, &sub.CreatedAt, &sub.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to insert submission: %w", err)
	}

	return true, nil
}

func (r *SubmissionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Submission, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+submissionColumns+` FROM submissions WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query submission %s: %w", id, err)
	}

	sub, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[model.Submission])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, sqlerr.NotFound("submissions")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to collect submission %s: %w", id, err)
	}
	return sub, nil
}

// List returns one page of submissions, newest first, and the total count
// for the filter.
func (r *SubmissionRepository) List(ctx context.Context, filter model.SubmissionFilter) ([]model.Submission, int, error) {
	page := filter.Page.Normalize()
	args := pgx.NamedArgs{
		"status": nil,
		"limit":  page.Limit,
		"offset": page.Offset,
	}
	if filter.Status != "" {
		args["status"] = string(filter.Status)
	}

	stmt := `
		SELECT ` + submissionColumns + `, count(*) OVER() AS total
		FROM submissions
		WHERE (@status::text IS NULL OR status = @status::text)
		ORDER BY created_at DESC
		LIMIT @limit OFFSET @offset`

	rows, err := r.pool.Query(ctx, stmt, args)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list submissions: %w", err)
	}

	type row struct {
		model.Submission
		Total int `db:"total"`
	}
	collected, err := pgx.CollectRows(rows, pgx.RowToStructByName[row])
	if err != nil {
		return nil, 0, fmt.Errorf("failed to collect submissions: %w", err)
	}

	subs := make([]model.Submission, 0, len(collected))
	total := 0
	for _, c := range collected {
		subs = append(subs, c.Submission)
		total = c.Total
	}

	if len(collected) == 0 && page.Offset > 0 {
		if err := r.pool.QueryRow(ctx,
			`SELECT count(*) FROM submissions WHERE (@status::text IS NULL OR status = @status::text)`,
			pgx.NamedArgs{"status": args["status"]},
		).Scan(&total); err != nil {
			return nil, 0, fmt.Errorf("failed to count submissions: %w", err)
		}
	}

	return subs, total, nil
}

func (r *SubmissionRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.SubmissionStatus) (*model.Submission, error) {
	rows, err := r.pool.Query(ctx,
		`UPDATE submissions SET status = $2 WHERE id = $1 RETURNING `+submissionColumns,
		id, string(status),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update submission %s: %w", id, err)
	}

	sub, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[model.Submission])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, sqlerr.NotFound("submissions")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to collect submission %s: %w", id, err)
	}
	return sub, nil
}

// UpdateLatestStatusByEmail moves the newest submission from email to
// status. It returns a not-found error when that address never submitted.
func (r *SubmissionRepository) UpdateLatestStatusByEmail(ctx context.Context, email string, status model.SubmissionStatus) (*model.Submission, error) {
	stmt := `
		UPDATE submissions SET status = $2
		WHERE id = (
			SELECT id FROM submissions
			WHERE lower(email) = lower($1)
			ORDER BY created_at DESC
			LIMIT 1
		)
		RETURNING ` + submissionColumns

	rows, err := r.pool.Query(ctx, stmt, email, string(status))
	if err != nil {
		return nil, fmt.Errorf("failed to update submission for %s: %w", email, err)
	}

	sub, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[model.Submission])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, sqlerr.NotFound("submissions")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to collect submission for %s: %w", email, err)
	}
	return sub, nil
}

// ListSince returns submissions created at or after since, oldest first.
func (r *SubmissionRepository) ListSince(ctx context.Context, since time.Time) ([]model.Submission, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+submissionColumns+` FROM submissions WHERE created_at >= $1 ORDER BY created_at`,
		since,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions since %s: %w", since, err)
	}

	subs, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.Submission])
	if err != nil {
		return nil, fmt.Errorf("failed to collect submissions: %w", err)
	}
	return subs, nil
}
