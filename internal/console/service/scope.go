package service

import (
	"github.com/BenAnderson8181/BusApp/internal/domain"
	"github.com/BenAnderson8181/BusApp/internal/gate"
)

// requireSelf lets a caller act on their own account only. Administrators
// may act on anyone's. Other accounts are reported as missing.
func requireSelf(caller *domain.Account, op, userID string) error {
	if caller.ID == userID || caller.UserType.IsGlobalAdmin() {
		return nil
	}
	return domain.NotFound(op, "user "+userID)
}

// requireCompany lets company staff act on their own company only, with the
// same rule the company pages use. Callers without a company get nothing.
func requireCompany(caller *domain.Account, op, companyID string) error {
	if caller.UserType.IsGlobalAdmin() {
		return nil
	}
	if !caller.HasCompany() || gate.AuthorizeCompanyRoute(caller, companyID) != "" {
		return domain.NotFound(op, "company "+companyID)
	}
	return nil
}
