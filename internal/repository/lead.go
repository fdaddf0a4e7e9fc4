package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/model"
	"github.com/imnotanaiaccount/riva-7-30-25-sub000/internal/sqlerr"
)

const leadColumns = `id, email, name, magnet, consent, brevo_synced, download_count, created_at, updated_at`

type LeadRepository struct {
	pool *pgxpool.Pool
}

func NewLeadRepository(pool *pgxpool.Pool) *LeadRepository {
	return &LeadRepository{pool: pool}
}

// Upsert records a request for magnet. Asking again keeps the row, fills in
// a missing name and never withdraws consent that was already given.
func (r *LeadRepository) Upsert(ctx context.Context, lead *model.Lead) (*model.Lead, error) {
	stmt := `
		INSERT INTO leads (email, name, magnet, consent)
		VALUES (@email, @name, @magnet, @consent)
		ON CONFLICT (email, magnet) DO UPDATE SET
			name = COALESCE(EXCLUDED.name, leads.name),
			consent = leads.consent OR EXCLUDED.consent,
			updated_at = now()
		RETURNING ` + leadColumns

	rows, err := r.pool.Query(ctx, stmt, pgx.NamedArgs{
		"email":   lead.Email,
		"name":    lead.Name,
		"magnet":  lead.Magnet,
		"consent": lead.Consent,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upsert lead %s: %w", lead.Email, err)
	}

	saved, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[model.Lead])
	if err != nil {
		return nil, fmt.Errorf("failed to collect lead %s: %w", lead.Email, err)
	}
	return saved, nil
}

func (r *LeadRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Lead, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query lead %s: %w", id, err)
	}

	lead, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[model.Lead])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, sqlerr.NotFound("leads")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to collect lead %s: %w", id, err)
	}
	return lead, nil
}

func (r *LeadRepository) IncrementDownloads(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `UPDATE leads SET download_count = download_count + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to count download for lead %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return sqlerr.NotFound("leads")
	}
	return nil
}

func (r *LeadRepository) MarkSynced(ctx context.Context, id uuid.UUID) error {
	if _, err := r.pool.Exec(ctx, `UPDATE leads SET brevo_synced = true WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to mark lead %s synced: %w", id, err)
	}
	return nil
}

func (r *LeadRepository) List(ctx context.Context, page model.Page) ([]model.Lead, int, error) {
	page = page.Normalize()

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM leads`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count leads: %w", err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+leadColumns+` FROM leads ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		page.Limit, page.Offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list leads: %w", err)
	}

	leads, err := pgx.CollectRows(rows, pgx.RowToStructByName[model.Lead])
	if err != nil {
		return nil, 0, fmt.Errorf("failed to collect leads: %w", err)
	}
	return leads, total, nil
}
