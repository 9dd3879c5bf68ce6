package domain

import "time"

// User type names as seeded in user_types.
const (
	UserTypeAdministrator = "Administrator"
	UserTypeAdmin         = "Admin"
	UserTypeCustomer      = "Customer"
	UserTypeUser          = "User"
)

// RoleCategory splits user types into the two onboarding flows.
type RoleCategory string

const (
	RoleCustomer     RoleCategory = "customer"
	RoleCompanyStaff RoleCategory = "company"
)

type UserType struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Category reports which onboarding flow the type belongs to.
// Anything that is not Customer is company staff.
func (t UserType) Category() RoleCategory {
	if t.Name == UserTypeCustomer {
		return RoleCustomer
	}
	return RoleCompanyStaff
}

// IsGlobalAdmin is true for platform administrators, who may visit any company.
func (t UserType) IsGlobalAdmin() bool { return t.Name == UserTypeAdministrator }

// IsStaff is true for internal staff allowed to read other users' documents.
func (t UserType) IsStaff() bool { return t.Name == UserTypeAdmin }

// Account is the internal user record bound to an external identity.
type Account struct {
	ID         string   `json:"id"`
	ExternalID string   `json:"external_id"`
	UserType   UserType `json:"user_type"`
	CompanyID  *string  `json:"company_id,omitempty"`

	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	State     string `json:"state"`
	IsDriver  bool   `json:"is_driver"`
	Notes     string `json:"notes,omitempty"`

	LicenseNumber           string `json:"license_number,omitempty"`
	LicenseExpirationMonth  string `json:"license_expiration_month,omitempty"`
	LicenseExpirationYear   int    `json:"license_expiration_year,omitempty"`
	DrugTestNumber          string `json:"drug_test_number,omitempty"`
	DrugTestExpirationMonth string `json:"drug_test_expiration_month,omitempty"`
	DrugTestExpirationYear  int    `json:"drug_test_expiration_year,omitempty"`

	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasCompany reports whether a company has been attached.
func (a *Account) HasCompany() bool {
	return a.CompanyID != nil && *a.CompanyID != ""
}

// Role is a shortcut for a.UserType.Category().
func (a *Account) Role() RoleCategory { return a.UserType.Category() }
