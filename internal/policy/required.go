package policy

import "github.com/BenAnderson8181/BusApp/internal/domain"

// SignedSet holds the kinds an account has signed.
type SignedSet map[domain.PolicyKind]bool

// Order matters: the gate walks each sequence front to back.
var sequences = map[domain.RoleCategory][]domain.PolicyKind{
	domain.RoleCompanyStaff: {domain.KindESignature, domain.KindInformedConsent},
	domain.RoleCustomer:     {domain.KindESignature, domain.KindConsumerAgreement, domain.KindPaymentAgreement},
}

// RequiredSequence returns the ordered kinds a role must sign.
func RequiredSequence(role domain.RoleCategory) []domain.PolicyKind {
	seq := sequences[role]
	out := make([]domain.PolicyKind, len(seq))
	copy(out, seq)
	return out
}

// FirstUnsigned returns the earliest kind in the role's sequence that is not signed.
func FirstUnsigned(role domain.RoleCategory, signed SignedSet) (domain.PolicyKind, bool) {
	for _, k := range sequences[role] {
		if !signed[k] {
			return k, true
		}
	}
	return "", false
}
