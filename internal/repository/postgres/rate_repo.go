package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/BenAnderson8181/BusApp/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// money columns are numeric(10,2); they are read back as float8
const rateSelect = `
	SELECT id, company_id, name, transfer::float8, dead_mile::float8, live_mile::float8, hourly::float8,
	       minimum_hours, daily::float8, is_active, created_at, updated_at
	FROM rates`

func scanRate(row pgx.Row) (*domain.Rate, error) {
	rt := &domain.Rate{}
	err := row.Scan(&rt.ID, &rt.CompanyID, &rt.Name, &rt.Transfer, &rt.DeadMile, &rt.LiveMile, &rt.Hourly,
		&rt.MinimumHours, &rt.Daily, &rt.IsActive, &rt.CreatedAt, &rt.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return rt, nil
}

func (r *Repo) CreateRate(ctx context.Context, rt *domain.Rate) error {
	if rt.ID == "" {
		rt.ID = uuid.NewString()
	}
	err := r.db.QueryRow(ctx, `
		INSERT INTO rates (id, company_id, name, transfer, dead_mile, live_mile, hourly, minimum_hours, daily, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, true)
		RETURNING is_active, created_at, updated_at`,
		rt.ID, rt.CompanyID, rt.Name, rt.Transfer, rt.DeadMile, rt.LiveMile, rt.Hourly, rt.MinimumHours, rt.Daily,
	).Scan(&rt.IsActive, &rt.CreatedAt, &rt.UpdatedAt)
	if err != nil {
		return fmt.Errorf("postgres: create rate: %w", err)
	}
	return nil
}

// FindRate returns (nil, nil) for an unknown id.
func (r *Repo) FindRate(ctx context.Context, id string) (*domain.Rate, error) {
	rt, err := scanRate(r.db.QueryRow(ctx, rateSelect+` WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: find rate: %w", err)
	}
	return rt, nil
}

func (r *Repo) UpdateRate(ctx context.Context, rt *domain.Rate) error {
	ct, err := r.db.Exec(ctx, `
		UPDATE rates SET name = $3, transfer = $4, dead_mile = $5, live_mile = $6, hourly = $7,
			minimum_hours = $8, daily = $9, updated_at = NOW()
		WHERE id = $1 AND company_id = $2`,
		rt.ID, rt.CompanyID, rt.Name, rt.Transfer, rt.DeadMile, rt.LiveMile, rt.Hourly, rt.MinimumHours, rt.Daily,
	)
	if err != nil {
		return fmt.Errorf("postgres: update rate: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.NotFound("update rate", "rate "+rt.ID)
	}
	return nil
}

func (r *Repo) InactivateRate(ctx context.Context, companyID, id string) error {
	ct, err := r.db.Exec(ctx,
		`UPDATE rates SET is_active = false, updated_at = NOW() WHERE id = $1 AND company_id = $2`, id, companyID)
	if err != nil {
		return fmt.Errorf("postgres: inactivate rate: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.NotFound("inactivate rate", "rate "+id)
	}
	return nil
}

func (r *Repo) ListRates(ctx context.Context, companyID string, includeInactive bool) ([]domain.Rate, error) {
	rows, err := r.db.Query(ctx, rateSelect+`
		WHERE company_id = $1 AND (is_active OR $2) ORDER BY name`, companyID, includeInactive)
	if err != nil {
		return nil, fmt.Errorf("postgres: list rates: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Rate, 0)
	for rows.Next() {
		rt, err := scanRate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rt)
	}
	return out, rows.Err()
}
