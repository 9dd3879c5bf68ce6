package service

import (
	"context"
	"strings"

	"github.com/BenAnderson8181/BusApp/internal/domain"
	"github.com/BenAnderson8181/BusApp/internal/notify"
	"go.uber.org/zap"
)

// searchLimit caps typeahead results for account and company search.
const searchLimit = 5

// AccountRepository is the users table as seen by the console.
type AccountRepository interface {
	FindAccountByExternalID(ctx context.Context, externalID string) (*domain.Account, error)
	FindAccountByID(ctx context.Context, id string) (*domain.Account, error)
	CreateAccount(ctx context.Context, a *domain.Account) error
	UpdateAccount(ctx context.Context, a *domain.Account) error
	SetAccountCompany(ctx context.Context, id, companyID string) error
	InactivateAccount(ctx context.Context, id string) error
	ListAccounts(ctx context.Context, includeInactive bool) ([]domain.Account, error)
	SearchAccounts(ctx context.Context, first, last string, limit int) ([]domain.Account, error)
	ListUserTypes(ctx context.Context) ([]domain.UserType, error)
	FindUserType(ctx context.Context, id string) (*domain.UserType, error)
}

// WelcomeMailer hands welcome mails to the worker.
type WelcomeMailer interface {
	EnqueueWelcome(ctx context.Context, p notify.WelcomePayload) error
}

// AccountInput is the editable part of an account.
type AccountInput struct {
	UserTypeID string  `json:"user_type_id" validate:"required"`
	CompanyID  *string `json:"company_id,omitempty"`
	FirstName  string  `json:"first_name" validate:"required,min=2,max=50"`
	LastName   string  `json:"last_name" validate:"required,min=2,max=50"`
	Email      string  `json:"email" validate:"required,email"`
	Phone      string  `json:"phone,omitempty" validate:"omitempty,max=20,phone"`
	State      string  `json:"state" validate:"required"`
	IsDriver   bool    `json:"is_driver"`
	Notes      string  `json:"notes,omitempty" validate:"max=500"`

	LicenseNumber           string `json:"license_number,omitempty" validate:"max=50"`
	LicenseExpirationMonth  string `json:"license_expiration_month,omitempty"`
	LicenseExpirationYear   int    `json:"license_expiration_year,omitempty"`
	DrugTestNumber          string `json:"drug_test_number,omitempty" validate:"max=50"`
	DrugTestExpirationMonth string `json:"drug_test_expiration_month,omitempty"`
	DrugTestExpirationYear  int    `json:"drug_test_expiration_year,omitempty"`
}

func (in AccountInput) apply(a *domain.Account) {
	a.CompanyID = in.CompanyID
	a.FirstName = strings.TrimSpace(in.FirstName)
	a.LastName = strings.TrimSpace(in.LastName)
	a.Email = strings.TrimSpace(in.Email)
	a.Phone = in.Phone
	a.State = in.State
	a.IsDriver = in.IsDriver
	a.Notes = in.Notes
	a.LicenseNumber = in.LicenseNumber
	a.LicenseExpirationMonth = in.LicenseExpirationMonth
	a.LicenseExpirationYear = in.LicenseExpirationYear
	a.DrugTestNumber = in.DrugTestNumber
	a.DrugTestExpirationMonth = in.DrugTestExpirationMonth
	a.DrugTestExpirationYear = in.DrugTestExpirationYear
}

type AccountService struct {
	repo   AccountRepository
	mail   WelcomeMailer
	logger *zap.Logger
}

func NewAccountService(repo AccountRepository, mail WelcomeMailer, logger *zap.Logger) *AccountService {
	return &AccountService{
		repo:   repo,
		mail:   mail,
		logger: logger.Named("account-service"),
	}
}

// Resolve returns the account bound to externalID, or (nil, nil).
func (s *AccountService) Resolve(ctx context.Context, externalID string) (*domain.Account, error) {
	a, err := s.repo.FindAccountByExternalID(ctx, externalID)
	if err != nil {
		return nil, domain.Retrieval("resolve account", err)
	}
	return a, nil
}

// MustResolve is Resolve for callers that need an account to exist.
func (s *AccountService) MustResolve(ctx context.Context, externalID string) (*domain.Account, error) {
	a, err := s.Resolve(ctx, externalID)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, domain.NotFound("resolve account", "no account for identity")
	}
	return a, nil
}

func (s *AccountService) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	a, err := s.repo.FindAccountByID(ctx, id)
	if err != nil {
		return nil, domain.Retrieval("find account", err)
	}
	if a == nil {
		return nil, domain.NotFound("find account", "account "+id)
	}
	return a, nil
}

// Create binds a new account to the caller's identity and queues the welcome mail.
// A mail that cannot be queued is logged; the account stays created.
func (s *AccountService) Create(ctx context.Context, externalID string, in AccountInput) (*domain.Account, error) {
	if externalID == "" {
		return nil, domain.Invalid("external_id", "required")
	}
	if err := check(in); err != nil {
		return nil, err
	}

	existing, err := s.Resolve(ctx, externalID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.Invalid("external_id", "already has an account")
	}

	ut, err := s.repo.FindUserType(ctx, in.UserTypeID)
	if err != nil {
		return nil, domain.Retrieval("create account", err)
	}
	if ut == nil {
		return nil, domain.Invalid("user_type_id", "unknown user type")
	}

	a := &domain.Account{ExternalID: externalID}
	in.apply(a)
	a.UserType = *ut

	if err := s.repo.CreateAccount(ctx, a); err != nil {
		s.logger.Error("create account failed", zap.String("external_id", externalID), zap.Error(err))
		return nil, domain.Persistence("create account", err)
	}
	s.logger.Info("account created",
		zap.String("user_id", a.ID),
		zap.String("user_type", ut.Name))

	s.queueWelcome(ctx, a)
	return a, nil
}

func (s *AccountService) queueWelcome(ctx context.Context, a *domain.Account) {
	if s.mail == nil {
		return
	}
	p := notify.WelcomePayload{
		Template:  notify.WelcomeCustomer,
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Email:     a.Email,
	}
	if a.Role() == domain.RoleCompanyStaff {
		p.Template = notify.WelcomeCompany
		if a.HasCompany() {
			p.CompanyID = *a.CompanyID
		}
	}
	if err := s.mail.EnqueueWelcome(ctx, p); err != nil {
		s.logger.Warn("welcome mail not queued", zap.String("user_id", a.ID), zap.Error(err))
	}
}

// Update changes an account. Callers edit their own account; only
// administrators edit others or move an account to another type or company.
func (s *AccountService) Update(ctx context.Context, externalID, id string, in AccountInput) (*domain.Account, error) {
	const op = "update account"
	if err := check(in); err != nil {
		return nil, err
	}
	caller, err := s.MustResolve(ctx, externalID)
	if err != nil {
		return nil, err
	}
	if err := requireSelf(caller, op, id); err != nil {
		return nil, err
	}
	a, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	admin := caller.UserType.IsGlobalAdmin()
	if in.UserTypeID != a.UserType.ID {
		if !admin {
			return nil, domain.Invalid("user_type_id", "only administrators change user types")
		}
		ut, err := s.repo.FindUserType(ctx, in.UserTypeID)
		if err != nil {
			return nil, domain.Retrieval(op, err)
		}
		if ut == nil {
			return nil, domain.Invalid("user_type_id", "unknown user type")
		}
		a.UserType = *ut
	}
	if !admin && !sameCompany(in.CompanyID, a.CompanyID) {
		return nil, domain.Invalid("company_id", "only administrators move accounts between companies")
	}
	in.apply(a)

	if err := s.repo.UpdateAccount(ctx, a); err != nil {
		return nil, domain.Persistence(op, err)
	}
	return a, nil
}

// sameCompany treats a nil and an empty company id alike.
func sameCompany(a, b *string) bool {
	id := func(p *string) string {
		if p == nil {
			return ""
		}
		return *p
	}
	return id(a) == id(b)
}

func (s *AccountService) Inactivate(ctx context.Context, externalID, id string) error {
	caller, err := s.MustResolve(ctx, externalID)
	if err != nil {
		return err
	}
	if err := requireSelf(caller, "inactivate account", id); err != nil {
		return err
	}
	if err := s.repo.InactivateAccount(ctx, id); err != nil {
		return domain.Persistence("inactivate account", err)
	}
	s.logger.Info("account inactivated", zap.String("user_id", id))
	return nil
}

// List returns active accounts, plus inactive ones when showInactive is set.
func (s *AccountService) List(ctx context.Context, showInactive bool) ([]domain.Account, error) {
	out, err := s.repo.ListAccounts(ctx, showInactive)
	if err != nil {
		return nil, domain.Retrieval("list accounts", err)
	}
	return out, nil
}

// Search matches "first last" against first and last names; a single word
// is tried against both.
func (s *AccountService) Search(ctx context.Context, term string) ([]domain.Account, error) {
	term = strings.TrimSpace(term)
	if len(term) < 2 {
		return nil, domain.Invalid("term", "at least 2 characters")
	}
	first, last, ok := strings.Cut(term, " ")
	if !ok {
		last = first
	}
	out, err := s.repo.SearchAccounts(ctx, strings.TrimSpace(first), strings.TrimSpace(last), searchLimit)
	if err != nil {
		return nil, domain.Retrieval("search accounts", err)
	}
	return out, nil
}

// AttachCompany sets the company of an account. Callers attach their own
// account; administrators attach anyone's.
func (s *AccountService) AttachCompany(ctx context.Context, externalID, id, companyID string) error {
	const op = "attach company"
	if companyID == "" {
		return domain.Invalid("company_id", "required")
	}
	caller, err := s.MustResolve(ctx, externalID)
	if err != nil {
		return err
	}
	if err := requireSelf(caller, op, id); err != nil {
		return err
	}
	if err := s.repo.SetAccountCompany(ctx, id, companyID); err != nil {
		return domain.Persistence(op, err)
	}
	return nil
}

func (s *AccountService) ListUserTypes(ctx context.Context) ([]domain.UserType, error) {
	out, err := s.repo.ListUserTypes(ctx)
	if err != nil {
		return nil, domain.Retrieval("list user types", err)
	}
	return out, nil
}
