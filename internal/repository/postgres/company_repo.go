package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/BenAnderson8181/BusApp/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const companySelect = `
	SELECT id, name, COALESCE(dot, ''), address, city, state, zip, country, email, COALESCE(website, ''),
	       company_phone, COALESCE(dispatch_phone, ''), COALESCE(mobile_phone, ''), COALESCE(eld_id, ''),
	       is_active, created_at, updated_at
	FROM companies`

func scanCompany(row pgx.Row) (*domain.Company, error) {
	c := &domain.Company{}
	err := row.Scan(
		&c.ID, &c.Name, &c.DOT, &c.Address, &c.City, &c.State, &c.Zip, &c.Country, &c.Email, &c.Website,
		&c.CompanyPhone, &c.DispatchPhone, &c.MobilePhone, &c.ELDID,
		&c.IsActive, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func collectCompanies(rows pgx.Rows) ([]domain.Company, error) {
	defer rows.Close()
	out := make([]domain.Company, 0)
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (r *Repo) CreateCompany(ctx context.Context, c *domain.Company) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	query := `
		INSERT INTO companies (id, name, dot, address, city, state, zip, country, email, website,
			company_phone, dispatch_phone, mobile_phone, eld_id, is_active)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, $8, $9, NULLIF($10, ''),
			$11, NULLIF($12, ''), NULLIF($13, ''), NULLIF($14, ''), true)
		RETURNING is_active, created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		c.ID, c.Name, c.DOT, c.Address, c.City, c.State, c.Zip, c.Country, c.Email, c.Website,
		c.CompanyPhone, c.DispatchPhone, c.MobilePhone, c.ELDID,
	).Scan(&c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("postgres: create company: %w", err)
	}
	return nil
}

// CreateCompanyForAccount inserts the company and attaches it to the account
// in one transaction, so a failed attach leaves no company behind.
func (r *Repo) CreateCompanyForAccount(ctx context.Context, c *domain.Company, accountID string) error {
	return r.inTx(ctx, func(tx *Repo) error {
		if err := tx.CreateCompany(ctx, c); err != nil {
			return err
		}
		return tx.SetAccountCompany(ctx, accountID, c.ID)
	})
}

// FindCompanyByID returns (nil, nil) for an unknown id.
func (r *Repo) FindCompanyByID(ctx context.Context, id string) (*domain.Company, error) {
	c, err := scanCompany(r.db.QueryRow(ctx, companySelect+` WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: find company: %w", err)
	}
	return c, nil
}

func (r *Repo) UpdateCompany(ctx context.Context, c *domain.Company) error {
	query := `
		UPDATE companies SET
			name = $2, dot = NULLIF($3, ''), address = $4, city = $5, state = $6, zip = $7, country = $8,
			email = $9, website = NULLIF($10, ''), company_phone = $11, dispatch_phone = NULLIF($12, ''),
			mobile_phone = NULLIF($13, ''), eld_id = NULLIF($14, ''), updated_at = NOW()
		WHERE id = $1`

	ct, err := r.db.Exec(ctx, query,
		c.ID, c.Name, c.DOT, c.Address, c.City, c.State, c.Zip, c.Country, c.Email, c.Website,
		c.CompanyPhone, c.DispatchPhone, c.MobilePhone, c.ELDID,
	)
	if err != nil {
		return fmt.Errorf("postgres: update company: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.NotFound("update company", "company "+c.ID)
	}
	return nil
}

func (r *Repo) InactivateCompany(ctx context.Context, id string) error {
	ct, err := r.db.Exec(ctx, `UPDATE companies SET is_active = false, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("postgres: inactivate company: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.NotFound("inactivate company", "company "+id)
	}
	return nil
}

func (r *Repo) ListCompanies(ctx context.Context, includeInactive bool) ([]domain.Company, error) {
	rows, err := r.db.Query(ctx, companySelect+` WHERE is_active OR $1 ORDER BY name`, includeInactive)
	if err != nil {
		return nil, fmt.Errorf("postgres: list companies: %w", err)
	}
	return collectCompanies(rows)
}

func (r *Repo) SearchCompanies(ctx context.Context, term string, limit int) ([]domain.Company, error) {
	rows, err := r.db.Query(ctx, companySelect+`
		WHERE name ILIKE '%' || $1 || '%'
		ORDER BY name
		LIMIT $2`, term, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: search companies: %w", err)
	}
	return collectCompanies(rows)
}
