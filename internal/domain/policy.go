package domain

import "time"

// PolicyKind is the stable tag a consent document is known by in code.
// Titles live in the database; kinds are bound to policy ids once at catalog load.
type PolicyKind string

const (
	KindESignature        PolicyKind = "esignature"
	KindInformedConsent   PolicyKind = "informed_consent"
	KindConsumerAgreement PolicyKind = "consumer_agreement"
	KindPaymentAgreement  PolicyKind = "payment_agreement"
)

// Titles as they are seeded in the policies table.
const (
	TitleESignature        = "E-Signature Consent"
	TitleInformedConsent   = "Informed Consent"
	TitleConsumerAgreement = "Consumer Agreement"
	TitlePaymentAgreement  = "Payment Agreement"
)

var kindByTitle = map[string]PolicyKind{
	TitleESignature:        KindESignature,
	TitleInformedConsent:   KindInformedConsent,
	TitleConsumerAgreement: KindConsumerAgreement,
	TitlePaymentAgreement:  KindPaymentAgreement,
}

// AllPolicyKinds lists every kind the gate depends on.
func AllPolicyKinds() []PolicyKind {
	return []PolicyKind{KindESignature, KindInformedConsent, KindConsumerAgreement, KindPaymentAgreement}
}

// KindForTitle maps a catalog title to its kind. Unknown titles report false.
func KindForTitle(title string) (PolicyKind, bool) {
	k, ok := kindByTitle[title]
	return k, ok
}

// Policy is a consent document from the catalog.
type Policy struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Kind      PolicyKind `json:"kind,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// RequiredPolicy is the seeded user type -> policy association.
type RequiredPolicy struct {
	ID         string `json:"id"`
	UserTypeID string `json:"user_type_id"`
	PolicyID   string `json:"policy_id"`
}

// UserPolicy is one ledger row. (UserID, PolicyID) is unique.
type UserPolicy struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	PolicyID  string    `json:"policy_id"`
	Signed    bool      `json:"signed"`
	Rejected  bool      `json:"rejected"`
	Policy    *Policy   `json:"policy,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserSignature holds the captured signature image of an account, one per user.
type UserSignature struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Signature string    `json:"signature"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
