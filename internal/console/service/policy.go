package service

import (
	"context"

	"github.com/BenAnderson8181/BusApp/internal/domain"
	"go.uber.org/zap"
)

// PolicyCatalog is the in-memory catalog shared with the gate.
type PolicyCatalog interface {
	Policies(ctx context.Context) ([]domain.Policy, error)
	Broadcast(ctx context.Context) error
}

type RequiredPolicyRepository interface {
	ListRequiredPolicies(ctx context.Context) ([]domain.RequiredPolicy, error)
}

type PolicyService struct {
	catalog PolicyCatalog
	repo    RequiredPolicyRepository
	logger  *zap.Logger
}

func NewPolicyService(catalog PolicyCatalog, repo RequiredPolicyRepository, logger *zap.Logger) *PolicyService {
	return &PolicyService{
		catalog: catalog,
		repo:    repo,
		logger:  logger.Named("policy-service"),
	}
}

// List serves the catalog snapshot, not the table.
func (s *PolicyService) List(ctx context.Context) ([]domain.Policy, error) {
	return s.catalog.Policies(ctx)
}

func (s *PolicyService) ListRequired(ctx context.Context) ([]domain.RequiredPolicy, error) {
	out, err := s.repo.ListRequiredPolicies(ctx)
	if err != nil {
		return nil, domain.Retrieval("list required policies", err)
	}
	return out, nil
}

// Refresh tells every console instance to reload the catalog.
func (s *PolicyService) Refresh(ctx context.Context) error {
	if err := s.catalog.Broadcast(ctx); err != nil {
		s.logger.Error("catalog refresh broadcast failed", zap.Error(err))
		return err
	}
	return nil
}
