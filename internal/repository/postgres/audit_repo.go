package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/BenAnderson8181/BusApp/internal/audit"
)

const consentEventColumns = 11

// buildConsentInsert renders one multi-row INSERT for the batch.
func buildConsentInsert(events []audit.ConsentEvent) (string, []any) {
	var sb strings.Builder
	vals := make([]any, 0, len(events)*consentEventColumns)

	for i, e := range events {
		if i > 0 {
			sb.WriteString(", ")
		}
		p := i * consentEventColumns
		fmt.Fprintf(&sb, "($%d, $%d, $%d, $%d, $%d, NULLIF($%d, ''), NULLIF($%d, ''), $%d, $%d, NULLIF($%d, ''), $%d)",
			p+1, p+2, p+3, p+4, p+5, p+6, p+7, p+8, p+9, p+10, p+11)

		vals = append(vals,
			e.ID, e.TraceID, e.UserID, e.ActorID, string(e.Record),
			e.PolicyID, e.PolicyKind, e.Signed, e.Rejected, e.Digest, e.Timestamp,
		)
	}

	query := "INSERT INTO consent_events (id, trace_id, user_id, actor_id, record, policy_id, policy_kind, signed, rejected, digest, created_at) VALUES " +
		sb.String() + " ON CONFLICT (id) DO NOTHING"
	return query, vals
}

// WriteBatch persists a batch of consent events in one statement.
func (r *Repo) WriteBatch(ctx context.Context, events []audit.ConsentEvent) error {
	if len(events) == 0 {
		return nil
	}
	query, vals := buildConsentInsert(events)
	if _, err := r.db.Exec(ctx, query, vals...); err != nil {
		return fmt.Errorf("postgres: write consent events: %w", err)
	}
	return nil
}

// ListConsentEvents returns the newest events for a user.
func (r *Repo) ListConsentEvents(ctx context.Context, userID string, limit int) ([]audit.ConsentEvent, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, trace_id, user_id, actor_id, record, COALESCE(policy_id, ''), COALESCE(policy_kind, ''),
		       signed, rejected, COALESCE(digest, ''), created_at
		FROM consent_events
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("postgres: list consent events: %w", err)
	}
	defer rows.Close()

	out := make([]audit.ConsentEvent, 0)
	for rows.Next() {
		var e audit.ConsentEvent
		var record string
		if err := rows.Scan(&e.ID, &e.TraceID, &e.UserID, &e.ActorID, &record, &e.PolicyID, &e.PolicyKind,
			&e.Signed, &e.Rejected, &e.Digest, &e.Timestamp); err != nil {
			return nil, err
		}
		e.Record = audit.Record(record)
		out = append(out, e)
	}
	return out, rows.Err()
}
