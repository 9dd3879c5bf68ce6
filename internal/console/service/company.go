package service

import (
	"context"
	"strings"

	"github.com/BenAnderson8181/BusApp/internal/domain"
	"go.uber.org/zap"
)

type CompanyRepository interface {
	CreateCompanyForAccount(ctx context.Context, c *domain.Company, accountID string) error
	FindCompanyByID(ctx context.Context, id string) (*domain.Company, error)
	UpdateCompany(ctx context.Context, c *domain.Company) error
	InactivateCompany(ctx context.Context, id string) error
	ListCompanies(ctx context.Context, includeInactive bool) ([]domain.Company, error)
	SearchCompanies(ctx context.Context, term string, limit int) ([]domain.Company, error)
}

type CompanyInput struct {
	Name          string `json:"name" validate:"required,min=2,max=100"`
	DOT           string `json:"dot,omitempty" validate:"max=50"`
	Address       string `json:"address" validate:"required,min=4,max=100"`
	City          string `json:"city" validate:"required,min=2,max=50"`
	State         string `json:"state" validate:"required,len=2"`
	Zip           string `json:"zip" validate:"required,zip"`
	Country       string `json:"country" validate:"required,min=2,max=50"`
	Email         string `json:"email" validate:"required,email"`
	Website       string `json:"website,omitempty" validate:"omitempty,url"`
	CompanyPhone  string `json:"company_phone" validate:"required,phone"`
	DispatchPhone string `json:"dispatch_phone,omitempty" validate:"omitempty,phone"`
	MobilePhone   string `json:"mobile_phone,omitempty" validate:"omitempty,phone"`
	ELDID         string `json:"eld_id,omitempty" validate:"max=50"`
}

// normalize trims free text and upper-cases the state before validation.
func (in CompanyInput) normalize() CompanyInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Address = strings.TrimSpace(in.Address)
	in.City = strings.TrimSpace(in.City)
	in.State = strings.ToUpper(strings.TrimSpace(in.State))
	in.Country = strings.TrimSpace(in.Country)
	in.Email = strings.TrimSpace(in.Email)
	return in
}

func (in CompanyInput) apply(c *domain.Company) {
	c.Name = in.Name
	c.DOT = in.DOT
	c.Address = in.Address
	c.City = in.City
	c.State = in.State
	c.Zip = in.Zip
	c.Country = in.Country
	c.Email = in.Email
	c.Website = in.Website
	c.CompanyPhone = in.CompanyPhone
	c.DispatchPhone = in.DispatchPhone
	c.MobilePhone = in.MobilePhone
	c.ELDID = in.ELDID
}

type CompanyService struct {
	repo    CompanyRepository
	callers CallerResolver
	logger  *zap.Logger
}

func NewCompanyService(repo CompanyRepository, callers CallerResolver, logger *zap.Logger) *CompanyService {
	return &CompanyService{
		repo:    repo,
		callers: callers,
		logger:  logger.Named("company-service"),
	}
}

// CreateForCaller creates a company and attaches it to the caller's account,
// which is what moves company staff past the company-create page. Both writes
// commit together or not at all.
func (s *CompanyService) CreateForCaller(ctx context.Context, externalID string, in CompanyInput) (*domain.Company, error) {
	in = in.normalize()
	if err := check(in); err != nil {
		return nil, err
	}
	a, err := s.callers.MustResolve(ctx, externalID)
	if err != nil {
		return nil, err
	}

	c := &domain.Company{}
	in.apply(c)
	if err := s.repo.CreateCompanyForAccount(ctx, c, a.ID); err != nil {
		s.logger.Error("company onboarding failed", zap.String("user_id", a.ID), zap.Error(err))
		return nil, domain.Persistence("create company", err)
	}
	s.logger.Info("company created", zap.String("company_id", c.ID), zap.String("user_id", a.ID))
	return c, nil
}

func (s *CompanyService) FindByID(ctx context.Context, id string) (*domain.Company, error) {
	c, err := s.repo.FindCompanyByID(ctx, id)
	if err != nil {
		return nil, domain.Retrieval("find company", err)
	}
	if c == nil {
		return nil, domain.NotFound("find company", "company "+id)
	}
	return c, nil
}

// Update changes a company. Staff may only change their own company.
func (s *CompanyService) Update(ctx context.Context, externalID, id string, in CompanyInput) (*domain.Company, error) {
	in = in.normalize()
	if err := check(in); err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, "update company", externalID, id); err != nil {
		return nil, err
	}
	c, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	in.apply(c)
	if err := s.repo.UpdateCompany(ctx, c); err != nil {
		return nil, domain.Persistence("update company", err)
	}
	return c, nil
}

func (s *CompanyService) Inactivate(ctx context.Context, externalID, id string) error {
	if err := s.authorize(ctx, "inactivate company", externalID, id); err != nil {
		return err
	}
	if err := s.repo.InactivateCompany(ctx, id); err != nil {
		return domain.Persistence("inactivate company", err)
	}
	s.logger.Info("company inactivated", zap.String("company_id", id))
	return nil
}

func (s *CompanyService) authorize(ctx context.Context, op, externalID, companyID string) error {
	caller, err := s.callers.MustResolve(ctx, externalID)
	if err != nil {
		return err
	}
	return requireCompany(caller, op, companyID)
}

func (s *CompanyService) List(ctx context.Context, showInactive bool) ([]domain.Company, error) {
	out, err := s.repo.ListCompanies(ctx, showInactive)
	if err != nil {
		return nil, domain.Retrieval("list companies", err)
	}
	return out, nil
}

func (s *CompanyService) Search(ctx context.Context, term string) ([]domain.Company, error) {
	term = strings.TrimSpace(term)
	if len(term) < 2 {
		return nil, domain.Invalid("term", "at least 2 characters")
	}
	out, err := s.repo.SearchCompanies(ctx, term, searchLimit)
	if err != nil {
		return nil, domain.Retrieval("search companies", err)
	}
	return out, nil
}
