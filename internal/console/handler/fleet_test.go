package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/BenAnderson8181/BusApp/internal/console/service"
	"github.com/BenAnderson8181/BusApp/internal/domain"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// fakeFleet records the scope of the last call. Only company c1 exists.
type fakeFleet struct {
	FleetService
	ext, company, id string
	showInactive     bool
}

func (f *fakeFleet) seen(ext, company, id string) error {
	f.ext, f.company, f.id = ext, company, id
	if company != "c1" {
		return domain.NotFound("fleet", "company "+company)
	}
	return nil
}

func (f *fakeFleet) CreateVehicle(_ context.Context, ext, company string, in service.VehicleInput) (*domain.Vehicle, error) {
	if err := f.seen(ext, company, ""); err != nil {
		return nil, err
	}
	return &domain.Vehicle{ID: "v1", CompanyID: company, Name: in.Name, Amenities: in.Amenities}, nil
}

func (f *fakeFleet) ListGarages(_ context.Context, ext, company string, showInactive bool) ([]domain.Garage, error) {
	f.showInactive = showInactive
	if err := f.seen(ext, company, ""); err != nil {
		return nil, err
	}
	return []domain.Garage{{ID: "g1", CompanyID: company}}, nil
}

func (f *fakeFleet) InactivateRate(_ context.Context, ext, company, id string) error {
	return f.seen(ext, company, id)
}

func fleetRouter(f *fakeFleet) http.Handler {
	h := NewFleetHandler(f, zap.NewNop())
	r := chi.NewRouter()
	r.Route("/v1/companies/{id}", func(r chi.Router) {
		r.Post("/vehicles", h.CreateVehicle)
		r.Get("/garages", h.ListGarages)
		r.Post("/rates/{itemID}/inactivate", h.InactivateRate)
	})
	return r
}

func TestFleetCreateVehicleUsesRouteCompany(t *testing.T) {
	f := &fakeFleet{}
	rec := httptest.NewRecorder()
	body := `{"vehicle_type_id":"vt1","name":"Coach 7","make":"Prevost","model":"H3-45","year":2019,"capacity":56,
		"vin_number":"2PCH3349","license_plate":"UT-123","wifi":true,"bathroom":true}`
	fleetRouter(f).ServeHTTP(rec, withCaller(httptest.NewRequest(http.MethodPost, "/v1/companies/c1/vehicles", strings.NewReader(body)), "ext-1"))

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	got := decode(t, rec)
	if got["company_id"] != "c1" || got["wifi"] != true || got["tv_screens"] != false {
		t.Fatalf("body = %v", got)
	}
	if f.ext != "ext-1" || f.company != "c1" {
		t.Fatalf("scope = %q %q", f.ext, f.company)
	}
}

func TestFleetForeignCompanyIsNotFound(t *testing.T) {
	rec := httptest.NewRecorder()
	fleetRouter(&fakeFleet{}).ServeHTTP(rec, withCaller(httptest.NewRequest(http.MethodGet, "/v1/companies/c2/garages", nil), "ext-1"))
	if rec.Code != http.StatusNotFound || errorCode(t, rec) != CodeNotFound {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
}

func TestFleetListPassesShowInactive(t *testing.T) {
	f := &fakeFleet{}
	rec := httptest.NewRecorder()
	fleetRouter(f).ServeHTTP(rec, withCaller(httptest.NewRequest(http.MethodGet, "/v1/companies/c1/garages?show_inactive=true", nil), "ext-1"))
	if rec.Code != http.StatusOK || !f.showInactive {
		t.Fatalf("status = %d show_inactive = %v", rec.Code, f.showInactive)
	}
}

func TestFleetInactivateRate(t *testing.T) {
	f := &fakeFleet{}
	rec := httptest.NewRecorder()
	fleetRouter(f).ServeHTTP(rec, withCaller(httptest.NewRequest(http.MethodPost, "/v1/companies/c1/rates/r9/inactivate", nil), "ext-1"))
	if rec.Code != http.StatusNoContent || f.id != "r9" {
		t.Fatalf("status = %d id = %q", rec.Code, f.id)
	}
}
