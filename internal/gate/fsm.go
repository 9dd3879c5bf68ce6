// Package gate decides which onboarding page an identity is sent to next.
//
// Evaluate is the whole state machine: no I/O, no clock, no globals. The
// ledger is the only persisted progress; every navigation re-evaluates from
// scratch.
package gate

import (
	"github.com/BenAnderson8181/BusApp/internal/domain"
	"github.com/BenAnderson8181/BusApp/internal/policy"
)

// Entry is the onboarding flow the user came in through.
type Entry string

const (
	EntryCustomer Entry = "customer"
	EntryCompany  Entry = "company"
)

func (e Entry) Valid() bool { return e == EntryCustomer || e == EntryCompany }

type Destination string

const (
	DestCustomerCreate     Destination = "customer-create"
	DestCompanyUserCreate  Destination = "company-user-create"
	DestCompanyCreate      Destination = "company-create"
	DestCustomerESignature Destination = "customer-esignature"
	DestConsumerAgreement  Destination = "customer-consumer-agreement"
	DestPaymentAgreement   Destination = "customer-payment-agreement"
	DestQuoteRequest       Destination = "quote-request"
	DestCompanyESignature  Destination = "company-esignature"
	DestCompanyDashboard   Destination = "company-dashboard"
)

var paths = map[Destination]string{
	DestCustomerCreate:     "/customer/create",
	DestCompanyUserCreate:  "/company/createUser",
	DestCompanyCreate:      "/company/createCompany",
	DestCustomerESignature: "/customer/policies/eSignature",
	DestConsumerAgreement:  "/customer/policies/consumerAgreement",
	DestPaymentAgreement:   "/customer/policies/paymentAgreement",
	DestQuoteRequest:       "/get-quote",
	DestCompanyESignature:  "/company/policies/eSignature",
}

// Decision is the single next page.
type Decision struct {
	Destination Destination `json:"destination"`
	Path        string      `json:"path"`
	CompanyID   string      `json:"company_id,omitempty"`
}

func decide(d Destination) Decision { return Decision{Destination: d, Path: paths[d]} }

func dashboard(companyID string) Decision {
	return Decision{Destination: DestCompanyDashboard, Path: "/company/" + companyID, CompanyID: companyID}
}

// Input is everything the state machine looks at.
type Input struct {
	Entry   Entry
	Account *domain.Account // nil when no account is bound to the identity
	Signed  policy.SignedSet
}

// Page of the first unsigned policy, per flow.
//
// Company staff missing Informed Consent are sent back to the e-signature
// page. That is the observed product behaviour, kept until product decides
// whether a separate informed-consent page should exist.
var policyPages = map[domain.RoleCategory]map[domain.PolicyKind]Destination{
	domain.RoleCustomer: {
		domain.KindESignature:        DestCustomerESignature,
		domain.KindConsumerAgreement: DestConsumerAgreement,
		domain.KindPaymentAgreement:  DestPaymentAgreement,
	},
	domain.RoleCompanyStaff: {
		domain.KindESignature:      DestCompanyESignature,
		domain.KindInformedConsent: DestCompanyESignature,
	},
}

// Evaluate computes the next destination.
func Evaluate(in Input) Decision {
	// 1. No account: onboarding form for the flow the user entered
	if in.Account == nil {
		if in.Entry == EntryCompany {
			return decide(DestCompanyUserCreate)
		}
		return decide(DestCustomerCreate)
	}

	role := in.Account.Role()

	// 2. Company staff must create or join a company before anything else
	if role == domain.RoleCompanyStaff && !in.Account.HasCompany() {
		return decide(DestCompanyCreate)
	}

	// 3. Policies in sequence order
	if kind, pending := policy.FirstUnsigned(role, in.Signed); pending {
		return decide(policyPages[role][kind])
	}

	// 4. Home
	if role == domain.RoleCustomer {
		return decide(DestQuoteRequest)
	}
	return dashboard(*in.Account.CompanyID)
}
