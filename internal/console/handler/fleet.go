package handler

import (
	"context"
	"net/http"

	"github.com/BenAnderson8181/BusApp/internal/console/service"
	"github.com/BenAnderson8181/BusApp/internal/domain"
	"github.com/BenAnderson8181/BusApp/internal/infra/auth"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type FleetService interface {
	VehicleTypes(ctx context.Context) ([]domain.VehicleType, error)

	CreateVehicle(ctx context.Context, externalID, companyID string, in service.VehicleInput) (*domain.Vehicle, error)
	FindVehicle(ctx context.Context, externalID, companyID, id string) (*domain.Vehicle, error)
	UpdateVehicle(ctx context.Context, externalID, companyID, id string, in service.VehicleInput) (*domain.Vehicle, error)
	InactivateVehicle(ctx context.Context, externalID, companyID, id string) error
	ListVehicles(ctx context.Context, externalID, companyID string, showInactive bool) ([]domain.Vehicle, error)

	CreateGarage(ctx context.Context, externalID, companyID string, in service.GarageInput) (*domain.Garage, error)
	FindGarage(ctx context.Context, externalID, companyID, id string) (*domain.Garage, error)
	UpdateGarage(ctx context.Context, externalID, companyID, id string, in service.GarageInput) (*domain.Garage, error)
	InactivateGarage(ctx context.Context, externalID, companyID, id string) error
	ListGarages(ctx context.Context, externalID, companyID string, showInactive bool) ([]domain.Garage, error)

	CreateRate(ctx context.Context, externalID, companyID string, in service.RateInput) (*domain.Rate, error)
	FindRate(ctx context.Context, externalID, companyID, id string) (*domain.Rate, error)
	UpdateRate(ctx context.Context, externalID, companyID, id string, in service.RateInput) (*domain.Rate, error)
	InactivateRate(ctx context.Context, externalID, companyID, id string) error
	ListRates(ctx context.Context, externalID, companyID string, showInactive bool) ([]domain.Rate, error)
}

// FleetHandler serves /v1/companies/{id}/vehicles, /garages and /rates.
type FleetHandler struct {
	service FleetService
	logger  *zap.Logger
}

func NewFleetHandler(s FleetService, logger *zap.Logger) *FleetHandler {
	return &FleetHandler{service: s, logger: logger.Named("fleet-api")}
}

// scope returns the caller, the company in the route and the record id.
func scope(r *http.Request) (externalID, companyID, id string) {
	return auth.ExternalIDFrom(r.Context()), chi.URLParam(r, "id"), chi.URLParam(r, "itemID")
}

// respond writes v, or the mapped service error.
func (h *FleetHandler) respond(w http.ResponseWriter, r *http.Request, status int, v any, err error) {
	if err != nil {
		writeServiceError(w, r, h.logger, err)
		return
	}
	if v == nil {
		w.WriteHeader(status)
		return
	}
	writeJSON(w, status, v)
}

func (h *FleetHandler) VehicleTypes(w http.ResponseWriter, r *http.Request) {
	out, err := h.service.VehicleTypes(r.Context())
	h.respond(w, r, http.StatusOK, out, err)
}

func (h *FleetHandler) ListVehicles(w http.ResponseWriter, r *http.Request) {
	ext, company, _ := scope(r)
	out, err := h.service.ListVehicles(r.Context(), ext, company, boolQuery(r, "show_inactive"))
	h.respond(w, r, http.StatusOK, out, err)
}

func (h *FleetHandler) GetVehicle(w http.ResponseWriter, r *http.Request) {
	ext, company, id := scope(r)
	v, err := h.service.FindVehicle(r.Context(), ext, company, id)
	h.respond(w, r, http.StatusOK, v, err)
}

func (h *FleetHandler) CreateVehicle(w http.ResponseWriter, r *http.Request) {
	var in service.VehicleInput
	if err := readJSON(r, &in); err != nil {
		badBody(w, r, err)
		return
	}
	ext, company, _ := scope(r)
	v, err := h.service.CreateVehicle(r.Context(), ext, company, in)
	h.respond(w, r, http.StatusCreated, v, err)
}

func (h *FleetHandler) UpdateVehicle(w http.ResponseWriter, r *http.Request) {
	var in service.VehicleInput
	if err := readJSON(r, &in); err != nil {
		badBody(w, r, err)
		return
	}
	ext, company, id := scope(r)
	v, err := h.service.UpdateVehicle(r.Context(), ext, company, id, in)
	h.respond(w, r, http.StatusOK, v, err)
}

func (h *FleetHandler) InactivateVehicle(w http.ResponseWriter, r *http.Request) {
	ext, company, id := scope(r)
	h.respond(w, r, http.StatusNoContent, nil, h.service.InactivateVehicle(r.Context(), ext, company, id))
}

func (h *FleetHandler) ListGarages(w http.ResponseWriter, r *http.Request) {
	ext, company, _ := scope(r)
	out, err := h.service.ListGarages(r.Context(), ext, company, boolQuery(r, "show_inactive"))
	h.respond(w, r, http.StatusOK, out, err)
}

func (h *FleetHandler) GetGarage(w http.ResponseWriter, r *http.Request) {
	ext, company, id := scope(r)
	g, err := h.service.FindGarage(r.Context(), ext, company, id)
	h.respond(w, r, http.StatusOK, g, err)
}

func (h *FleetHandler) CreateGarage(w http.ResponseWriter, r *http.Request) {
	var in service.GarageInput
	if err := readJSON(r, &in); err != nil {
		badBody(w, r, err)
		return
	}
	ext, company, _ := scope(r)
	g, err := h.service.CreateGarage(r.Context(), ext, company, in)
	h.respond(w, r, http.StatusCreated, g, err)
}

func (h *FleetHandler) UpdateGarage(w http.ResponseWriter, r *http.Request) {
	var in service.GarageInput
	if err := readJSON(r, &in); err != nil {
		badBody(w, r, err)
		return
	}
	ext, company, id := scope(r)
	g, err := h.service.UpdateGarage(r.Context(), ext, company, id, in)
	h.respond(w, r, http.StatusOK, g, err)
}

func (h *FleetHandler) InactivateGarage(w http.ResponseWriter, r *http.Request) {
	ext, company, id := scope(r)
	h.respond(w, r, http.StatusNoContent, nil, h.service.InactivateGarage(r.Context(), ext, company, id))
}

func (h *FleetHandler) ListRates(w http.ResponseWriter, r *http.Request) {
	ext, company, _ := scope(r)
	out, err := h.service.ListRates(r.Context(), ext, company, boolQuery(r, "show_inactive"))
	h.respond(w, r, http.StatusOK, out, err)
}

func (h *FleetHandler) GetRate(w http.ResponseWriter, r *http.Request) {
	ext, company, id := scope(r)
	rt, err := h.service.FindRate(r.Context(), ext, company, id)
	h.respond(w, r, http.StatusOK, rt, err)
}

func (h *FleetHandler) CreateRate(w http.ResponseWriter, r *http.Request) {
	var in service.RateInput
	if err := readJSON(r, &in); err != nil {
		badBody(w, r, err)
		return
	}
	ext, company, _ := scope(r)
	rt, err := h.service.CreateRate(r.Context(), ext, company, in)
	h.respond(w, r, http.StatusCreated, rt, err)
}

func (h *FleetHandler) UpdateRate(w http.ResponseWriter, r *http.Request) {
	var in service.RateInput
	if err := readJSON(r, &in); err != nil {
		badBody(w, r, err)
		return
	}
	ext, company, id := scope(r)
	rt, err := h.service.UpdateRate(r.Context(), ext, company, id, in)
	h.respond(w, r, http.StatusOK, rt, err)
}

func (h *FleetHandler) InactivateRate(w http.ResponseWriter, r *http.Request) {
	ext, company, id := scope(r)
	h.respond(w, r, http.StatusNoContent, nil, h.service.InactivateRate(r.Context(), ext, company, id))
}
