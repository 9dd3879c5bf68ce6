package postgres

/*
policy_repo.go holds the consent catalog and the user-policy ledger.

The catalog is read once at startup (and on refresh) into the in-memory
policy.Catalog; the gate never queries the policies table directly.
Ledger writes are a single upsert keyed on (user_id, policy_id), so repeated
or concurrent submissions converge on one row.
*/

import (
	"context"
	"fmt"

	"github.com/BenAnderson8181/BusApp/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ListPolicies is the cold load of the catalog.
func (r *Repo) ListPolicies(ctx context.Context) ([]domain.Policy, error) {
	rows, err := r.db.Query(ctx, `SELECT id, title, created_at, updated_at FROM policies ORDER BY title`)
	if err != nil {
		return nil, fmt.Errorf("postgres: list policies: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Policy, 0)
	for rows.Next() {
		var p domain.Policy
		if err := rows.Scan(&p.ID, &p.Title, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repo) ListRequiredPolicies(ctx context.Context) ([]domain.RequiredPolicy, error) {
	rows, err := r.db.Query(ctx, `SELECT id, user_type_id, policy_id FROM required_policies ORDER BY user_type_id`)
	if err != nil {
		return nil, fmt.Errorf("postgres: list required policies: %w", err)
	}
	defer rows.Close()

	out := make([]domain.RequiredPolicy, 0)
	for rows.Next() {
		var rp domain.RequiredPolicy
		if err := rows.Scan(&rp.ID, &rp.UserTypeID, &rp.PolicyID); err != nil {
			return nil, err
		}
		out = append(out, rp)
	}
	return out, rows.Err()
}

const upsertUserPolicySQL = `
	INSERT INTO user_policies (id, user_id, policy_id, signed, rejected)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (user_id, policy_id) DO UPDATE
	SET signed = EXCLUDED.signed, rejected = EXCLUDED.rejected, updated_at = NOW()
	RETURNING id, created_at, updated_at`

// UpsertUserPolicy writes the ledger row; on conflict the existing row keeps its id.
func (r *Repo) UpsertUserPolicy(ctx context.Context, up *domain.UserPolicy) error {
	err := r.db.QueryRow(ctx, upsertUserPolicySQL, uuid.NewString(), up.UserID, up.PolicyID, up.Signed, up.Rejected).
		Scan(&up.ID, &up.CreatedAt, &up.UpdatedAt)
	if err != nil {
		return fmt.Errorf("postgres: upsert user policy: %w", err)
	}
	return nil
}

const ledgerSelect = `
	SELECT up.id, up.user_id, up.policy_id, up.signed, up.rejected, up.created_at, up.updated_at,
	       p.id, p.title, p.created_at, p.updated_at
	FROM user_policies up
	JOIN policies p ON p.id = up.policy_id`

func collectLedger(rows pgx.Rows) ([]domain.UserPolicy, error) {
	defer rows.Close()
	out := make([]domain.UserPolicy, 0)
	for rows.Next() {
		var up domain.UserPolicy
		p := &domain.Policy{}
		if err := rows.Scan(
			&up.ID, &up.UserID, &up.PolicyID, &up.Signed, &up.Rejected, &up.CreatedAt, &up.UpdatedAt,
			&p.ID, &p.Title, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if k, ok := domain.KindForTitle(p.Title); ok {
			p.Kind = k
		}
		up.Policy = p
		out = append(out, up)
	}
	return out, rows.Err()
}

func (r *Repo) ListUserPolicies(ctx context.Context, userID string) ([]domain.UserPolicy, error) {
	rows, err := r.db.Query(ctx, ledgerSelect+` WHERE up.user_id = $1 ORDER BY p.title`, userID)
	if err != nil {
		return nil, fmt.Errorf("postgres: list user policies: %w", err)
	}
	return collectLedger(rows)
}

// ListByExternalID reads the ledger through the identity in one query.
// An identity without an account simply has no rows.
func (r *Repo) ListByExternalID(ctx context.Context, externalID string) ([]domain.UserPolicy, error) {
	rows, err := r.db.Query(ctx, ledgerSelect+`
		JOIN users u ON u.id = up.user_id
		WHERE u.external_id = $1
		ORDER BY p.title`, externalID)
	if err != nil {
		return nil, fmt.Errorf("postgres: list user policies by external id: %w", err)
	}
	return collectLedger(rows)
}
