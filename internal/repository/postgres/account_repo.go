package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/BenAnderson8181/BusApp/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const accountSelect = `
	SELECT u.id, u.external_id, u.company_id,
	       u.first_name, u.last_name, u.email, COALESCE(u.phone, ''), u.state, u.is_driver, COALESCE(u.notes, ''),
	       COALESCE(u.license_number, ''), COALESCE(u.license_expiration_month, ''), COALESCE(u.license_expiration_year, 0),
	       COALESCE(u.drug_test_number, ''), COALESCE(u.drug_test_expiration_month, ''), COALESCE(u.drug_test_expiration_year, 0),
	       u.is_active, u.created_at, u.updated_at,
	       t.id, t.name
	FROM users u
	JOIN user_types t ON t.id = u.user_type_id`

func scanAccount(row pgx.Row) (*domain.Account, error) {
	a := &domain.Account{}
	err := row.Scan(
		&a.ID, &a.ExternalID, &a.CompanyID,
		&a.FirstName, &a.LastName, &a.Email, &a.Phone, &a.State, &a.IsDriver, &a.Notes,
		&a.LicenseNumber, &a.LicenseExpirationMonth, &a.LicenseExpirationYear,
		&a.DrugTestNumber, &a.DrugTestExpirationMonth, &a.DrugTestExpirationYear,
		&a.IsActive, &a.CreatedAt, &a.UpdatedAt,
		&a.UserType.ID, &a.UserType.Name,
	)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func collectAccounts(rows pgx.Rows) ([]domain.Account, error) {
	defer rows.Close()
	out := make([]domain.Account, 0)
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

// FindAccountByExternalID returns (nil, nil) when no account is bound to the identity.
func (r *Repo) FindAccountByExternalID(ctx context.Context, externalID string) (*domain.Account, error) {
	a, err := scanAccount(r.db.QueryRow(ctx, accountSelect+` WHERE u.external_id = $1`, externalID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: find account by external id: %w", err)
	}
	return a, nil
}

// FindAccountByID returns (nil, nil) for an unknown id.
func (r *Repo) FindAccountByID(ctx context.Context, id string) (*domain.Account, error) {
	a, err := scanAccount(r.db.QueryRow(ctx, accountSelect+` WHERE u.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: find account: %w", err)
	}
	return a, nil
}

func (r *Repo) CreateAccount(ctx context.Context, a *domain.Account) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	query := `
		INSERT INTO users (
			id, external_id, user_type_id, company_id, first_name, last_name, email, phone, state, is_driver, notes,
			license_number, license_expiration_month, license_expiration_year,
			drug_test_number, drug_test_expiration_month, drug_test_expiration_year, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), $9, $10, NULLIF($11, ''),
			NULLIF($12, ''), NULLIF($13, ''), NULLIF($14, 0), NULLIF($15, ''), NULLIF($16, ''), NULLIF($17, 0), true)
		RETURNING is_active, created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		a.ID, a.ExternalID, a.UserType.ID, a.CompanyID, a.FirstName, a.LastName, a.Email, a.Phone, a.State, a.IsDriver, a.Notes,
		a.LicenseNumber, a.LicenseExpirationMonth, a.LicenseExpirationYear,
		a.DrugTestNumber, a.DrugTestExpirationMonth, a.DrugTestExpirationYear,
	).Scan(&a.IsActive, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("postgres: create account: %w", err)
	}
	return nil
}

func (r *Repo) UpdateAccount(ctx context.Context, a *domain.Account) error {
	query := `
		UPDATE users SET
			user_type_id = $2, company_id = $3, first_name = $4, last_name = $5, email = $6, phone = NULLIF($7, ''),
			state = $8, is_driver = $9, notes = NULLIF($10, ''),
			license_number = NULLIF($11, ''), license_expiration_month = NULLIF($12, ''), license_expiration_year = NULLIF($13, 0),
			drug_test_number = NULLIF($14, ''), drug_test_expiration_month = NULLIF($15, ''), drug_test_expiration_year = NULLIF($16, 0),
			updated_at = NOW()
		WHERE id = $1`

	ct, err := r.db.Exec(ctx, query,
		a.ID, a.UserType.ID, a.CompanyID, a.FirstName, a.LastName, a.Email, a.Phone,
		a.State, a.IsDriver, a.Notes,
		a.LicenseNumber, a.LicenseExpirationMonth, a.LicenseExpirationYear,
		a.DrugTestNumber, a.DrugTestExpirationMonth, a.DrugTestExpirationYear,
	)
	if err != nil {
		return fmt.Errorf("postgres: update account: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.NotFound("update account", "account "+a.ID)
	}
	return nil
}

func (r *Repo) SetAccountCompany(ctx context.Context, id, companyID string) error {
	ct, err := r.db.Exec(ctx, `UPDATE users SET company_id = $2, updated_at = NOW() WHERE id = $1`, id, companyID)
	if err != nil {
		return fmt.Errorf("postgres: attach company: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.NotFound("attach company", "account "+id)
	}
	return nil
}

func (r *Repo) InactivateAccount(ctx context.Context, id string) error {
	ct, err := r.db.Exec(ctx, `UPDATE users SET is_active = false, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("postgres: inactivate account: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.NotFound("inactivate account", "account "+id)
	}
	return nil
}

// ListAccounts returns active accounts, or every account when includeInactive is set.
func (r *Repo) ListAccounts(ctx context.Context, includeInactive bool) ([]domain.Account, error) {
	rows, err := r.db.Query(ctx, accountSelect+` WHERE u.is_active OR $1 ORDER BY u.last_name, u.first_name`, includeInactive)
	if err != nil {
		return nil, fmt.Errorf("postgres: list accounts: %w", err)
	}
	return collectAccounts(rows)
}

// SearchAccounts matches first or last name, case-insensitively.
func (r *Repo) SearchAccounts(ctx context.Context, first, last string, limit int) ([]domain.Account, error) {
	rows, err := r.db.Query(ctx, accountSelect+`
		WHERE u.first_name ILIKE '%' || $1 || '%' OR u.last_name ILIKE '%' || $2 || '%'
		ORDER BY u.last_name, u.first_name
		LIMIT $3`, first, last, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: search accounts: %w", err)
	}
	return collectAccounts(rows)
}

func (r *Repo) ListUserTypes(ctx context.Context) ([]domain.UserType, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name FROM user_types ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("postgres: list user types: %w", err)
	}
	defer rows.Close()

	out := make([]domain.UserType, 0)
	for rows.Next() {
		var t domain.UserType
		if err := rows.Scan(&t.ID, &t.Name); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// FindUserType returns (nil, nil) for an unknown id.
func (r *Repo) FindUserType(ctx context.Context, id string) (*domain.UserType, error) {
	var t domain.UserType
	err := r.db.QueryRow(ctx, `SELECT id, name FROM user_types WHERE id = $1`, id).Scan(&t.ID, &t.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: find user type: %w", err)
	}
	return &t, nil
}
