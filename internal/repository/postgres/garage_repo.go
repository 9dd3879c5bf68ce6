package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/BenAnderson8181/BusApp/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const garageSelect = `
	SELECT id, company_id, name, address, city, state, zip, is_active, created_at, updated_at
	FROM garages`

func scanGarage(row pgx.Row) (*domain.Garage, error) {
	g := &domain.Garage{}
	err := row.Scan(&g.ID, &g.CompanyID, &g.Name, &g.Address, &g.City, &g.State, &g.Zip,
		&g.IsActive, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return g, nil
}

func (r *Repo) CreateGarage(ctx context.Context, g *domain.Garage) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	err := r.db.QueryRow(ctx, `
		INSERT INTO garages (id, company_id, name, address, city, state, zip, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, true)
		RETURNING is_active, created_at, updated_at`,
		g.ID, g.CompanyID, g.Name, g.Address, g.City, g.State, g.Zip,
	).Scan(&g.IsActive, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return fmt.Errorf("postgres: create garage: %w", err)
	}
	return nil
}

// FindGarage returns (nil, nil) for an unknown id.
func (r *Repo) FindGarage(ctx context.Context, id string) (*domain.Garage, error) {
	g, err := scanGarage(r.db.QueryRow(ctx, garageSelect+` WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: find garage: %w", err)
	}
	return g, nil
}

func (r *Repo) UpdateGarage(ctx context.Context, g *domain.Garage) error {
	ct, err := r.db.Exec(ctx, `
		UPDATE garages SET name = $3, address = $4, city = $5, state = $6, zip = $7, updated_at = NOW()
		WHERE id = $1 AND company_id = $2`,
		g.ID, g.CompanyID, g.Name, g.Address, g.City, g.State, g.Zip,
	)
	if err != nil {
		return fmt.Errorf("postgres: update garage: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.NotFound("update garage", "garage "+g.ID)
	}
	return nil
}

func (r *Repo) InactivateGarage(ctx context.Context, companyID, id string) error {
	ct, err := r.db.Exec(ctx,
		`UPDATE garages SET is_active = false, updated_at = NOW() WHERE id = $1 AND company_id = $2`, id, companyID)
	if err != nil {
		return fmt.Errorf("postgres: inactivate garage: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.NotFound("inactivate garage", "garage "+id)
	}
	return nil
}

// ListGarages returns a company's active garages, or all of them when includeInactive is set.
func (r *Repo) ListGarages(ctx context.Context, companyID string, includeInactive bool) ([]domain.Garage, error) {
	rows, err := r.db.Query(ctx, garageSelect+`
		WHERE company_id = $1 AND (is_active OR $2) ORDER BY name`, companyID, includeInactive)
	if err != nil {
		return nil, fmt.Errorf("postgres: list garages: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Garage, 0)
	for rows.Next() {
		g, err := scanGarage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *g)
	}
	return out, rows.Err()
}
