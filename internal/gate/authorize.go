package gate

import "github.com/BenAnderson8181/BusApp/internal/domain"

// AuthorizeCompanyRoute checks a visit to /company/{routeCompanyID}/... .
// Global administrators may view any company. Anyone else bound to a company
// is redirected to the same page of their own company; the returned string is
// that company id, empty when the visit may proceed.
func AuthorizeCompanyRoute(account *domain.Account, routeCompanyID string) (redirectTo string) {
	if account == nil || account.UserType.IsGlobalAdmin() || !account.HasCompany() {
		return ""
	}
	if *account.CompanyID != routeCompanyID {
		return *account.CompanyID
	}
	return ""
}

// Home is where a returning account lands after login: /customer/{id} or /company/{id}.
func Home(account *domain.Account) string {
	if account.Role() == domain.RoleCustomer {
		return "/customer/" + account.ID
	}
	return "/company/" + account.ID
}
