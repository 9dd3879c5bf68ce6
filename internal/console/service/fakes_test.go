package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/BenAnderson8181/BusApp/internal/audit"
	"github.com/BenAnderson8181/BusApp/internal/domain"
	"github.com/BenAnderson8181/BusApp/internal/notify"
	"github.com/BenAnderson8181/BusApp/internal/policy"
	"github.com/google/uuid"
)

var (
	typeCustomer = domain.UserType{ID: "t-customer", Name: domain.UserTypeCustomer}
	typeUser     = domain.UserType{ID: "t-user", Name: domain.UserTypeUser}
	typeAdmin    = domain.UserType{ID: "t-admin", Name: domain.UserTypeAdmin}

	typeAdministrator = domain.UserType{ID: "t-administrator", Name: domain.UserTypeAdministrator}
)

// memStore is an in-memory stand-in for the postgres repository.
type memStore struct {
	mu         sync.Mutex
	accounts   map[string]*domain.Account
	types      map[string]domain.UserType
	companies  map[string]*domain.Company
	ledger     map[string]*domain.UserPolicy
	signatures map[string]*domain.UserSignature
	documents  map[string]*domain.Document
	logs       []domain.DocumentLog
	vehicles   map[string]*domain.Vehicle
	garages    map[string]*domain.Garage
	rates      map[string]*domain.Rate

	failWrites error
	failReads  error
	failAttach error
	lastSearch [2]string
}

func newMemStore() *memStore {
	return &memStore{
		accounts:   map[string]*domain.Account{},
		types: map[string]domain.UserType{
			typeCustomer.ID: typeCustomer, typeUser.ID: typeUser, typeAdmin.ID: typeAdmin, typeAdministrator.ID: typeAdministrator,
		},
		companies:  map[string]*domain.Company{},
		ledger:     map[string]*domain.UserPolicy{},
		signatures: map[string]*domain.UserSignature{},
		documents:  map[string]*domain.Document{},
		vehicles:   map[string]*domain.Vehicle{},
		garages:    map[string]*domain.Garage{},
		rates:      map[string]*domain.Rate{},
	}
}

func (m *memStore) addAccount(a domain.Account) *domain.Account {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := a
	m.accounts[a.ID] = &cp
	return &cp
}

func (m *memStore) FindAccountByExternalID(_ context.Context, externalID string) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failReads != nil {
		return nil, m.failReads
	}
	for _, a := range m.accounts {
		if a.ExternalID == externalID {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memStore) FindAccountByID(_ context.Context, id string) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failReads != nil {
		return nil, m.failReads
	}
	a, ok := m.accounts[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (m *memStore) CreateAccount(_ context.Context, a *domain.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrites != nil {
		return m.failWrites
	}
	a.ID = uuid.NewString()
	a.IsActive = true
	cp := *a
	m.accounts[a.ID] = &cp
	return nil
}

func (m *memStore) UpdateAccount(_ context.Context, a *domain.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrites != nil {
		return m.failWrites
	}
	if _, ok := m.accounts[a.ID]; !ok {
		return domain.NotFound("update account", a.ID)
	}
	cp := *a
	m.accounts[a.ID] = &cp
	return nil
}

func (m *memStore) SetAccountCompany(_ context.Context, id, companyID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrites != nil {
		return m.failWrites
	}
	a, ok := m.accounts[id]
	if !ok {
		return domain.NotFound("attach company", id)
	}
	a.CompanyID = &companyID
	return nil
}

func (m *memStore) InactivateAccount(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.accounts[id]
	if !ok {
		return domain.NotFound("inactivate account", id)
	}
	a.IsActive = false
	return nil
}

func (m *memStore) ListAccounts(_ context.Context, includeInactive bool) ([]domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.Account{}
	for _, a := range m.accounts {
		if a.IsActive || includeInactive {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *memStore) SearchAccounts(_ context.Context, first, last string, _ int) ([]domain.Account, error) {
	m.lastSearch = [2]string{first, last}
	return []domain.Account{}, nil
}

func (m *memStore) ListUserTypes(context.Context) ([]domain.UserType, error) {
	return []domain.UserType{typeAdmin, typeCustomer, typeUser}, nil
}

func (m *memStore) FindUserType(_ context.Context, id string) (*domain.UserType, error) {
	t, ok := m.types[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

// CreateCompanyForAccount applies both writes or neither, like the
// transaction in the postgres repository.
func (m *memStore) CreateCompanyForAccount(_ context.Context, c *domain.Company, accountID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrites != nil {
		return m.failWrites
	}
	if m.failAttach != nil {
		return m.failAttach
	}
	a, ok := m.accounts[accountID]
	if !ok {
		return domain.NotFound("attach company", accountID)
	}
	c.ID = uuid.NewString()
	c.IsActive = true
	cp := *c
	m.companies[c.ID] = &cp
	a.CompanyID = &cp.ID
	return nil
}

func (m *memStore) addCompany(c domain.Company) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := c
	m.companies[c.ID] = &cp
}

func (m *memStore) FindCompanyByID(_ context.Context, id string) (*domain.Company, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.companies[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (m *memStore) UpdateCompany(_ context.Context, c *domain.Company) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *c
	m.companies[c.ID] = &cp
	return nil
}

func (m *memStore) InactivateCompany(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.companies[id]
	if !ok {
		return domain.NotFound("inactivate company", id)
	}
	c.IsActive = false
	return nil
}

func (m *memStore) ListCompanies(_ context.Context, includeInactive bool) ([]domain.Company, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.Company{}
	for _, c := range m.companies {
		if c.IsActive || includeInactive {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// SearchCompanies matches names containing term, ignoring case.
func (m *memStore) SearchCompanies(_ context.Context, term string, limit int) ([]domain.Company, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.Company{}
	for _, c := range m.companies {
		if strings.Contains(strings.ToLower(c.Name), strings.ToLower(term)) {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) UpsertUserPolicy(_ context.Context, up *domain.UserPolicy) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrites != nil {
		return m.failWrites
	}
	key := up.UserID + "|" + up.PolicyID
	if existing, ok := m.ledger[key]; ok {
		up.ID = existing.ID
	} else {
		up.ID = uuid.NewString()
	}
	cp := *up
	m.ledger[key] = &cp
	return nil
}

func (m *memStore) ListUserPolicies(_ context.Context, userID string) ([]domain.UserPolicy, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.UserPolicy{}
	for _, up := range m.ledger {
		if up.UserID == userID {
			out = append(out, *up)
		}
	}
	return out, nil
}

func (m *memStore) UpsertUserSignature(_ context.Context, s *domain.UserSignature) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrites != nil {
		return m.failWrites
	}
	if existing, ok := m.signatures[s.UserID]; ok {
		s.ID = existing.ID
	} else {
		s.ID = uuid.NewString()
	}
	cp := *s
	m.signatures[s.UserID] = &cp
	return nil
}

func (m *memStore) FindUserSignature(_ context.Context, userID string) (*domain.UserSignature, error) {
	s, ok := m.signatures[userID]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (m *memStore) CreateDocument(_ context.Context, d *domain.Document) error {
	if m.failWrites != nil {
		return m.failWrites
	}
	d.ID = uuid.NewString()
	cp := *d
	m.documents[d.ID] = &cp
	return nil
}

func (m *memStore) FindDocument(_ context.Context, id string) (*domain.Document, error) {
	d, ok := m.documents[id]
	if !ok {
		return nil, nil
	}
	cp := *d
	return &cp, nil
}

func (m *memStore) ListDocuments(_ context.Context, userID string) ([]domain.Document, error) {
	out := []domain.Document{}
	for _, d := range m.documents {
		if d.UserID == userID {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (m *memStore) DeleteDocument(_ context.Context, id string) (*domain.Document, error) {
	d, ok := m.documents[id]
	if !ok {
		return nil, domain.NotFound("delete document", id)
	}
	delete(m.documents, id)
	return d, nil
}

func (m *memStore) CreateDocumentLog(_ context.Context, l *domain.DocumentLog) error {
	l.ID = uuid.NewString()
	m.logs = append(m.logs, *l)
	return nil
}

func (m *memStore) FindDocumentLog(_ context.Context, id string) (*domain.DocumentLog, error) {
	for _, l := range m.logs {
		if l.ID == id {
			cp := l
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memStore) UpdateDocumentLogAction(_ context.Context, id string, action domain.DocumentAction) (*domain.DocumentLog, error) {
	for i := range m.logs {
		if m.logs[i].ID == id {
			m.logs[i].Action = action
			cp := m.logs[i]
			return &cp, nil
		}
	}
	return nil, domain.NotFound("update document log", id)
}

func (m *memStore) ListRequiredPolicies(context.Context) ([]domain.RequiredPolicy, error) {
	if m.failReads != nil {
		return nil, m.failReads
	}
	return []domain.RequiredPolicy{{ID: "rp1", UserTypeID: typeCustomer.ID, PolicyID: "p-esig"}}, nil
}

func (m *memStore) ListConsentEvents(_ context.Context, userID string, limit int) ([]audit.ConsentEvent, error) {
	return []audit.ConsentEvent{{ID: "e1", UserID: userID, Record: audit.RecordUserPolicy}}, nil
}

type fakeMailer struct {
	sent []notify.WelcomePayload
	err  error
}

func (f *fakeMailer) EnqueueWelcome(_ context.Context, p notify.WelcomePayload) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, p)
	return nil
}

type fakeTrail struct {
	mu     sync.Mutex
	events []audit.ConsentEvent
}

func (f *fakeTrail) Record(e audit.ConsentEvent) {
	f.mu.Lock()
	f.events = append(f.events, e)
	f.mu.Unlock()
}

type fakeBindings struct{}

func (fakeBindings) Bindings(context.Context) (policy.Bindings, error) {
	return policy.NewBindings(map[domain.PolicyKind]string{
		domain.KindESignature:        "p-esig",
		domain.KindInformedConsent:   "p-informed",
		domain.KindConsumerAgreement: "p-consumer",
		domain.KindPaymentAgreement:  "p-payment",
	}), nil
}

type fakeUploader struct {
	userID string
}

func (f *fakeUploader) PresignUpload(_ context.Context, userID, fileName, _ string, _ int64) (string, string, time.Time, error) {
	f.userID = userID
	key := "users/" + userID + "/k-" + fileName
	return "https://bucket.s3.test/" + key + "?X-Amz-Signature=x", key, time.Now().Add(5 * time.Minute), nil
}

type fakeCatalog struct {
	policies   []domain.Policy
	broadcasts int
	err        error
}

func (f *fakeCatalog) Policies(context.Context) ([]domain.Policy, error) { return f.policies, f.err }

func (f *fakeCatalog) Broadcast(context.Context) error {
	f.broadcasts++
	return f.err
}

func (m *memStore) ListVehicleTypes(context.Context) ([]domain.VehicleType, error) {
	return []domain.VehicleType{{ID: "vt-coach", Name: "Coach"}, {ID: "vt-mini", Name: "Mini Bus"}}, nil
}

func (m *memStore) CreateVehicle(_ context.Context, v *domain.Vehicle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrites != nil {
		return m.failWrites
	}
	v.ID = uuid.NewString()
	v.IsActive = true
	cp := *v
	m.vehicles[v.ID] = &cp
	return nil
}

func (m *memStore) FindVehicle(_ context.Context, id string) (*domain.Vehicle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.vehicles[id]
	if !ok {
		return nil, nil
	}
	cp := *v
	return &cp, nil
}

func (m *memStore) UpdateVehicle(_ context.Context, v *domain.Vehicle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *v
	m.vehicles[v.ID] = &cp
	return nil
}

func (m *memStore) InactivateVehicle(_ context.Context, companyID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.vehicles[id]
	if !ok || v.CompanyID != companyID {
		return domain.NotFound("inactivate vehicle", id)
	}
	v.IsActive = false
	return nil
}

func (m *memStore) ListVehicles(_ context.Context, companyID string, includeInactive bool) ([]domain.Vehicle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.Vehicle{}
	for _, v := range m.vehicles {
		if v.CompanyID == companyID && (v.IsActive || includeInactive) {
			out = append(out, *v)
		}
	}
	return out, nil
}

func (m *memStore) CreateGarage(_ context.Context, g *domain.Garage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrites != nil {
		return m.failWrites
	}
	g.ID = uuid.NewString()
	g.IsActive = true
	cp := *g
	m.garages[g.ID] = &cp
	return nil
}

func (m *memStore) FindGarage(_ context.Context, id string) (*domain.Garage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.garages[id]
	if !ok {
		return nil, nil
	}
	cp := *g
	return &cp, nil
}

func (m *memStore) UpdateGarage(_ context.Context, g *domain.Garage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *g
	m.garages[g.ID] = &cp
	return nil
}

func (m *memStore) InactivateGarage(_ context.Context, companyID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.garages[id]
	if !ok || g.CompanyID != companyID {
		return domain.NotFound("inactivate garage", id)
	}
	g.IsActive = false
	return nil
}

func (m *memStore) ListGarages(_ context.Context, companyID string, includeInactive bool) ([]domain.Garage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.Garage{}
	for _, g := range m.garages {
		if g.CompanyID == companyID && (g.IsActive || includeInactive) {
			out = append(out, *g)
		}
	}
	return out, nil
}

func (m *memStore) CreateRate(_ context.Context, r *domain.Rate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrites != nil {
		return m.failWrites
	}
	r.ID = uuid.NewString()
	r.IsActive = true
	cp := *r
	m.rates[r.ID] = &cp
	return nil
}

func (m *memStore) FindRate(_ context.Context, id string) (*domain.Rate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rates[id]
	if !ok {
		return nil, nil
	}
	cp := *r
	return &cp, nil
}

func (m *memStore) UpdateRate(_ context.Context, r *domain.Rate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *r
	m.rates[r.ID] = &cp
	return nil
}

func (m *memStore) InactivateRate(_ context.Context, companyID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rates[id]
	if !ok || r.CompanyID != companyID {
		return domain.NotFound("inactivate rate", id)
	}
	r.IsActive = false
	return nil
}

func (m *memStore) ListRates(_ context.Context, companyID string, includeInactive bool) ([]domain.Rate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.Rate{}
	for _, r := range m.rates {
		if r.CompanyID == companyID && (r.IsActive || includeInactive) {
			out = append(out, *r)
		}
	}
	return out, nil
}
