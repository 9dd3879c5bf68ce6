package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/BenAnderson8181/BusApp/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const documentSelect = `SELECT id, user_id, document_type_id, url, name, key, size, created_at FROM documents`

func scanDocument(row pgx.Row) (*domain.Document, error) {
	d := &domain.Document{}
	if err := row.Scan(&d.ID, &d.UserID, &d.DocumentTypeID, &d.URL, &d.Name, &d.Key, &d.Size, &d.CreatedAt); err != nil {
		return nil, err
	}
	return d, nil
}

func (r *Repo) CreateDocument(ctx context.Context, d *domain.Document) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	err := r.db.QueryRow(ctx, `
		INSERT INTO documents (id, user_id, document_type_id, url, name, key, size)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`,
		d.ID, d.UserID, d.DocumentTypeID, d.URL, d.Name, d.Key, d.Size,
	).Scan(&d.CreatedAt)
	if err != nil {
		return fmt.Errorf("postgres: create document: %w", err)
	}
	return nil
}

// FindDocument returns (nil, nil) for an unknown id.
func (r *Repo) FindDocument(ctx context.Context, id string) (*domain.Document, error) {
	d, err := scanDocument(r.db.QueryRow(ctx, documentSelect+` WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: find document: %w", err)
	}
	return d, nil
}

func (r *Repo) ListDocuments(ctx context.Context, userID string) ([]domain.Document, error) {
	rows, err := r.db.Query(ctx, documentSelect+` WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("postgres: list documents: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Document, 0)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

// DeleteDocument removes the record and returns what was deleted.
func (r *Repo) DeleteDocument(ctx context.Context, id string) (*domain.Document, error) {
	d, err := scanDocument(r.db.QueryRow(ctx, `
		DELETE FROM documents WHERE id = $1
		RETURNING id, user_id, document_type_id, url, name, key, size, created_at`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.NotFound("delete document", "document "+id)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: delete document: %w", err)
	}
	return d, nil
}

func (r *Repo) CreateDocumentLog(ctx context.Context, l *domain.DocumentLog) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	err := r.db.QueryRow(ctx, `
		INSERT INTO document_logs (id, user_id, url, name, key, size, action)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`,
		l.ID, l.UserID, l.URL, l.Name, l.Key, l.Size, l.Action,
	).Scan(&l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return fmt.Errorf("postgres: create document log: %w", err)
	}
	return nil
}

// FindDocumentLog returns (nil, nil) for an unknown id.
func (r *Repo) FindDocumentLog(ctx context.Context, id string) (*domain.DocumentLog, error) {
	l := &domain.DocumentLog{}
	err := r.db.QueryRow(ctx, `
		SELECT id, user_id, url, name, key, size, action, created_at, updated_at
		FROM document_logs WHERE id = $1`, id,
	).Scan(&l.ID, &l.UserID, &l.URL, &l.Name, &l.Key, &l.Size, &l.Action, &l.CreatedAt, &l.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: find document log: %w", err)
	}
	return l, nil
}

func (r *Repo) UpdateDocumentLogAction(ctx context.Context, id string, action domain.DocumentAction) (*domain.DocumentLog, error) {
	l := &domain.DocumentLog{}
	err := r.db.QueryRow(ctx, `
		UPDATE document_logs SET action = $2, updated_at = NOW() WHERE id = $1
		RETURNING id, user_id, url, name, key, size, action, created_at, updated_at`, id, action,
	).Scan(&l.ID, &l.UserID, &l.URL, &l.Name, &l.Key, &l.Size, &l.Action, &l.CreatedAt, &l.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.NotFound("update document log", "document log "+id)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: update document log: %w", err)
	}
	return l, nil
}
