package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/BenAnderson8181/BusApp/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const upsertSignatureSQL = `
	INSERT INTO user_signatures (id, user_id, signature)
	VALUES ($1, $2, $3)
	ON CONFLICT (user_id) DO UPDATE
	SET signature = EXCLUDED.signature, updated_at = NOW()
	RETURNING id, created_at, updated_at`

func (r *Repo) UpsertUserSignature(ctx context.Context, s *domain.UserSignature) error {
	err := r.db.QueryRow(ctx, upsertSignatureSQL, uuid.NewString(), s.UserID, s.Signature).
		Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("postgres: upsert user signature: %w", err)
	}
	return nil
}

// FindUserSignature returns (nil, nil) when the user never signed.
func (r *Repo) FindUserSignature(ctx context.Context, userID string) (*domain.UserSignature, error) {
	s := &domain.UserSignature{}
	err := r.db.QueryRow(ctx,
		`SELECT id, user_id, signature, created_at, updated_at FROM user_signatures WHERE user_id = $1`, userID,
	).Scan(&s.ID, &s.UserID, &s.Signature, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: find user signature: %w", err)
	}
	return s, nil
}
