package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestErrorKindsMatch(t *testing.T) {
	cause := errors.New("connection reset")

	err := Retrieval("load account", cause)
	if !errors.Is(err, ErrRetrieval) {
		t.Fatalf("expected retrieval kind, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatal("expected cause to stay reachable")
	}
	if errors.Is(err, ErrPersistence) {
		t.Fatal("retrieval must not match persistence")
	}
}

func TestWrapKeepsFirstClassification(t *testing.T) {
	nf := NotFound("find user", "user missing")
	err := Retrieval("list user policies", nf)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found to survive rewrap, got %v", err)
	}
	if errors.Is(err, ErrRetrieval) {
		t.Fatal("rewrap must not add a second kind")
	}
}

func TestValidationErrors(t *testing.T) {
	var v ValidationErrors
	if v.Err() != nil {
		t.Fatal("empty set must be nil")
	}
	v.Add("name", "too short")
	v.Add("zip", "bad format")

	err := v.Err()
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation kind, got %v", err)
	}
	if !strings.Contains(err.Error(), "zip: bad format") {
		t.Fatalf("unexpected message: %s", err)
	}

	var got ValidationErrors
	if !errors.As(err, &got) || len(got) != 2 {
		t.Fatalf("expected two field errors, got %v", got)
	}
}

func TestUserTypeCategory(t *testing.T) {
	cases := map[string]RoleCategory{
		UserTypeCustomer:      RoleCustomer,
		UserTypeAdmin:         RoleCompanyStaff,
		UserTypeAdministrator: RoleCompanyStaff,
		UserTypeUser:          RoleCompanyStaff,
		"Dispatcher":          RoleCompanyStaff,
	}
	for name, want := range cases {
		if got := (UserType{Name: name}).Category(); got != want {
			t.Errorf("%s: expected %s, got %s", name, want, got)
		}
	}
}

func TestKindForTitle(t *testing.T) {
	k, ok := KindForTitle("Informed Consent")
	if !ok || k != KindInformedConsent {
		t.Fatalf("unexpected kind %q ok=%v", k, ok)
	}
	if _, ok := KindForTitle("e-signature consent"); ok {
		t.Fatal("titles are matched exactly")
	}
}
