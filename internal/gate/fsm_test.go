package gate

import (
	"testing"

	"github.com/BenAnderson8181/BusApp/internal/domain"
	"github.com/BenAnderson8181/BusApp/internal/policy"
)

func strPtr(s string) *string { return &s }

func customer() *domain.Account {
	return &domain.Account{ID: "u1", UserType: domain.UserType{ID: "t-c", Name: domain.UserTypeCustomer}}
}

func staff(typeName string, companyID *string) *domain.Account {
	return &domain.Account{ID: "u2", UserType: domain.UserType{ID: "t-s", Name: typeName}, CompanyID: companyID}
}

func signed(kinds ...domain.PolicyKind) policy.SignedSet {
	s := policy.SignedSet{}
	for _, k := range kinds {
		s[k] = true
	}
	return s
}

var allKinds = []domain.PolicyKind{
	domain.KindESignature, domain.KindInformedConsent,
	domain.KindConsumerAgreement, domain.KindPaymentAgreement,
}

func TestEvaluateNoAccount(t *testing.T) {
	cases := []struct {
		entry Entry
		want  Destination
		path  string
	}{
		{EntryCustomer, DestCustomerCreate, "/customer/create"},
		{EntryCompany, DestCompanyUserCreate, "/company/createUser"},
	}
	for _, c := range cases {
		d := Evaluate(Input{Entry: c.entry, Signed: signed(allKinds...)})
		if d.Destination != c.want || d.Path != c.path {
			t.Errorf("entry %s: got %+v", c.entry, d)
		}
	}
}

func TestEvaluateCompanyRouteWithoutAccountForEveryType(t *testing.T) {
	// the user type is unknown until an account exists; every company entry goes to account creation
	for _, ledger := range []policy.SignedSet{nil, signed(), signed(allKinds...)} {
		d := Evaluate(Input{Entry: EntryCompany, Signed: ledger})
		if d.Destination != DestCompanyUserCreate {
			t.Fatalf("got %s", d.Destination)
		}
	}
}

func TestEvaluateCustomerFlow(t *testing.T) {
	cases := []struct {
		name   string
		signed policy.SignedSet
		want   Destination
	}{
		{"empty ledger", signed(), DestCustomerESignature},
		{"nil ledger", nil, DestCustomerESignature},
		{"e-signature only", signed(domain.KindESignature), DestConsumerAgreement},
		{"e-signature and consumer", signed(domain.KindESignature, domain.KindConsumerAgreement), DestPaymentAgreement},
		{"payment without e-signature", signed(domain.KindConsumerAgreement, domain.KindPaymentAgreement), DestCustomerESignature},
		{"all three", signed(domain.KindESignature, domain.KindConsumerAgreement, domain.KindPaymentAgreement), DestQuoteRequest},
		{"informed consent is irrelevant", signed(domain.KindInformedConsent), DestCustomerESignature},
	}
	for _, c := range cases {
		for _, entry := range []Entry{EntryCustomer, EntryCompany} {
			d := Evaluate(Input{Entry: entry, Account: customer(), Signed: c.signed})
			if d.Destination != c.want {
				t.Errorf("%s via %s: expected %s, got %s", c.name, entry, c.want, d.Destination)
			}
		}
	}
}

func TestEvaluateCustomerHome(t *testing.T) {
	d := Evaluate(Input{
		Entry:   EntryCustomer,
		Account: customer(),
		Signed:  signed(domain.KindESignature, domain.KindConsumerAgreement, domain.KindPaymentAgreement),
	})
	if d.Destination != DestQuoteRequest || d.Path != "/get-quote" || d.CompanyID != "" {
		t.Fatalf("unexpected decision %+v", d)
	}
}

func TestEvaluateCompanyWithoutCompany(t *testing.T) {
	for _, name := range []string{domain.UserTypeUser, domain.UserTypeAdmin, domain.UserTypeAdministrator} {
		for _, ledger := range []policy.SignedSet{signed(), signed(allKinds...)} {
			for _, companyID := range []*string{nil, strPtr("")} {
				d := Evaluate(Input{Entry: EntryCompany, Account: staff(name, companyID), Signed: ledger})
				if d.Destination != DestCompanyCreate {
					t.Fatalf("%s: expected company-create, got %s", name, d.Destination)
				}
			}
		}
	}
}

func TestEvaluateCompanyFlow(t *testing.T) {
	cases := []struct {
		name   string
		signed policy.SignedSet
		want   Destination
	}{
		{"nothing signed", signed(), DestCompanyESignature},
		{"informed consent only", signed(domain.KindInformedConsent), DestCompanyESignature},
		// missing informed consent lands on the e-signature page as well
		{"e-signature only", signed(domain.KindESignature), DestCompanyESignature},
		{"customer policies do not count", signed(domain.KindESignature, domain.KindConsumerAgreement, domain.KindPaymentAgreement), DestCompanyESignature},
	}
	for _, c := range cases {
		d := Evaluate(Input{Entry: EntryCompany, Account: staff(domain.UserTypeUser, strPtr("c-9")), Signed: c.signed})
		if d.Destination != c.want {
			t.Errorf("%s: expected %s, got %s", c.name, c.want, d.Destination)
		}
	}
}

func TestEvaluateCompanyDashboard(t *testing.T) {
	d := Evaluate(Input{
		Entry:   EntryCompany,
		Account: staff(domain.UserTypeAdmin, strPtr("c-9")),
		Signed:  signed(domain.KindESignature, domain.KindInformedConsent),
	})
	if d.Destination != DestCompanyDashboard || d.Path != "/company/c-9" || d.CompanyID != "c-9" {
		t.Fatalf("unexpected decision %+v", d)
	}
}

func TestEvaluateEveryDestinationHasPath(t *testing.T) {
	inputs := []Input{
		{Entry: EntryCustomer},
		{Entry: EntryCompany},
		{Entry: EntryCompany, Account: staff(domain.UserTypeUser, nil)},
		{Entry: EntryCustomer, Account: customer()},
		{Entry: EntryCustomer, Account: customer(), Signed: signed(domain.KindESignature)},
		{Entry: EntryCustomer, Account: customer(), Signed: signed(domain.KindESignature, domain.KindConsumerAgreement)},
		{Entry: EntryCustomer, Account: customer(), Signed: signed(allKinds...)},
		{Entry: EntryCompany, Account: staff(domain.UserTypeUser, strPtr("c")), Signed: signed()},
		{Entry: EntryCompany, Account: staff(domain.UserTypeUser, strPtr("c")), Signed: signed(allKinds...)},
	}
	for _, in := range inputs {
		if d := Evaluate(in); d.Path == "" {
			t.Errorf("no path for %s", d.Destination)
		}
	}
}
