package service

import (
	"context"

	"github.com/BenAnderson8181/BusApp/internal/audit"
	"github.com/BenAnderson8181/BusApp/internal/domain"
)

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 500
)

// ConsentTrail reads the consent audit written by audit.ConsentLog.
type ConsentTrail interface {
	ListConsentEvents(ctx context.Context, userID string, limit int) ([]audit.ConsentEvent, error)
}

type AuditService struct {
	repo ConsentTrail
}

func NewAuditService(repo ConsentTrail) *AuditService {
	return &AuditService{repo: repo}
}

// Consents returns the newest consent events of a user.
func (s *AuditService) Consents(ctx context.Context, userID string, limit int) ([]audit.ConsentEvent, error) {
	if userID == "" {
		return nil, domain.Invalid("user_id", "required")
	}
	if limit <= 0 {
		limit = defaultAuditLimit
	}
	limit = min(limit, maxAuditLimit)

	out, err := s.repo.ListConsentEvents(ctx, userID, limit)
	if err != nil {
		return nil, domain.Retrieval("list consent events", err)
	}
	return out, nil
}
