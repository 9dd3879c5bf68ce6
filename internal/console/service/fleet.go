package service

import (
	"context"
	"strings"

	"github.com/BenAnderson8181/BusApp/internal/domain"
	"go.uber.org/zap"
)

type FleetRepository interface {
	ListVehicleTypes(ctx context.Context) ([]domain.VehicleType, error)

	CreateVehicle(ctx context.Context, v *domain.Vehicle) error
	FindVehicle(ctx context.Context, id string) (*domain.Vehicle, error)
	UpdateVehicle(ctx context.Context, v *domain.Vehicle) error
	InactivateVehicle(ctx context.Context, companyID, id string) error
	ListVehicles(ctx context.Context, companyID string, includeInactive bool) ([]domain.Vehicle, error)

	CreateGarage(ctx context.Context, g *domain.Garage) error
	FindGarage(ctx context.Context, id string) (*domain.Garage, error)
	UpdateGarage(ctx context.Context, g *domain.Garage) error
	InactivateGarage(ctx context.Context, companyID, id string) error
	ListGarages(ctx context.Context, companyID string, includeInactive bool) ([]domain.Garage, error)

	CreateRate(ctx context.Context, r *domain.Rate) error
	FindRate(ctx context.Context, id string) (*domain.Rate, error)
	UpdateRate(ctx context.Context, r *domain.Rate) error
	InactivateRate(ctx context.Context, companyID, id string) error
	ListRates(ctx context.Context, companyID string, includeInactive bool) ([]domain.Rate, error)
}

type VehicleInput struct {
	VehicleTypeID string  `json:"vehicle_type_id" validate:"required"`
	GarageID      *string `json:"garage_id,omitempty" validate:"omitempty,min=1"`
	Name          string  `json:"name" validate:"required,min=2,max=100"`
	Make          string  `json:"make" validate:"required,min=2,max=100"`
	Model         string  `json:"model" validate:"required,min=2,max=100"`
	Year          int     `json:"year" validate:"gte=1950,lte=2100"`
	Capacity      int     `json:"capacity" validate:"gt=0,lte=100"`
	VINNumber     string  `json:"vin_number" validate:"required,min=2,max=50"`
	LicensePlate  string  `json:"license_plate" validate:"required,min=2,max=50"`

	domain.Amenities
}

func (in VehicleInput) apply(v *domain.Vehicle) {
	v.VehicleTypeID = in.VehicleTypeID
	v.GarageID = in.GarageID
	v.Name = strings.TrimSpace(in.Name)
	v.Make = strings.TrimSpace(in.Make)
	v.Model = strings.TrimSpace(in.Model)
	v.Year = in.Year
	v.Capacity = in.Capacity
	v.VINNumber = strings.ToUpper(strings.TrimSpace(in.VINNumber))
	v.LicensePlate = strings.ToUpper(strings.TrimSpace(in.LicensePlate))
	v.Amenities = in.Amenities
}

type GarageInput struct {
	Name    string `json:"name" validate:"required,min=2,max=100"`
	Address string `json:"address" validate:"required,min=2,max=100"`
	City    string `json:"city" validate:"required,min=2,max=50"`
	State   string `json:"state" validate:"required,len=2"`
	Zip     string `json:"zip" validate:"required,zip"`
}

func (in GarageInput) normalize() GarageInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Address = strings.TrimSpace(in.Address)
	in.City = strings.TrimSpace(in.City)
	in.State = strings.ToUpper(strings.TrimSpace(in.State))
	in.Zip = strings.TrimSpace(in.Zip)
	return in
}

func (in GarageInput) apply(g *domain.Garage) {
	g.Name = in.Name
	g.Address = in.Address
	g.City = in.City
	g.State = in.State
	g.Zip = in.Zip
}

type RateInput struct {
	Name         string  `json:"name" validate:"required,min=2,max=100"`
	Transfer     float64 `json:"transfer" validate:"gte=0"`
	DeadMile     float64 `json:"dead_mile" validate:"gte=0"`
	LiveMile     float64 `json:"live_mile" validate:"gte=0"`
	Hourly       float64 `json:"hourly" validate:"gte=0"`
	MinimumHours int     `json:"minimum_hours" validate:"gte=0,lte=24"`
	Daily        float64 `json:"daily" validate:"gte=0"`
}

func (in RateInput) apply(r *domain.Rate) {
	r.Name = strings.TrimSpace(in.Name)
	r.Transfer = in.Transfer
	r.DeadMile = in.DeadMile
	r.LiveMile = in.LiveMile
	r.Hourly = in.Hourly
	r.MinimumHours = in.MinimumHours
	r.Daily = in.Daily
}

// FleetService manages the vehicles, garages and rates a company owns. Every
// operation is scoped to the company in the route; records of another company
// are reported as missing.
type FleetService struct {
	repo    FleetRepository
	callers CallerResolver
	logger  *zap.Logger
}

func NewFleetService(repo FleetRepository, callers CallerResolver, logger *zap.Logger) *FleetService {
	return &FleetService{
		repo:    repo,
		callers: callers,
		logger:  logger.Named("fleet-service"),
	}
}

func (s *FleetService) authorize(ctx context.Context, op, externalID, companyID string) error {
	caller, err := s.callers.MustResolve(ctx, externalID)
	if err != nil {
		return err
	}
	return requireCompany(caller, op, companyID)
}

func (s *FleetService) VehicleTypes(ctx context.Context) ([]domain.VehicleType, error) {
	out, err := s.repo.ListVehicleTypes(ctx)
	if err != nil {
		return nil, domain.Retrieval("list vehicle types", err)
	}
	return out, nil
}

// vehicles

func (s *FleetService) CreateVehicle(ctx context.Context, externalID, companyID string, in VehicleInput) (*domain.Vehicle, error) {
	if err := check(in); err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, "create vehicle", externalID, companyID); err != nil {
		return nil, err
	}
	if err := s.checkGarage(ctx, companyID, in.GarageID); err != nil {
		return nil, err
	}
	v := &domain.Vehicle{CompanyID: companyID}
	in.apply(v)
	if err := s.repo.CreateVehicle(ctx, v); err != nil {
		return nil, domain.Persistence("create vehicle", err)
	}
	s.logger.Info("vehicle created", zap.String("company_id", companyID), zap.String("vehicle_id", v.ID))
	return v, nil
}

func (s *FleetService) FindVehicle(ctx context.Context, externalID, companyID, id string) (*domain.Vehicle, error) {
	if err := s.authorize(ctx, "find vehicle", externalID, companyID); err != nil {
		return nil, err
	}
	return s.vehicle(ctx, companyID, id)
}

func (s *FleetService) vehicle(ctx context.Context, companyID, id string) (*domain.Vehicle, error) {
	v, err := s.repo.FindVehicle(ctx, id)
	if err != nil {
		return nil, domain.Retrieval("find vehicle", err)
	}
	if v == nil || v.CompanyID != companyID {
		return nil, domain.NotFound("find vehicle", "vehicle "+id)
	}
	return v, nil
}

func (s *FleetService) UpdateVehicle(ctx context.Context, externalID, companyID, id string, in VehicleInput) (*domain.Vehicle, error) {
	if err := check(in); err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, "update vehicle", externalID, companyID); err != nil {
		return nil, err
	}
	v, err := s.vehicle(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkGarage(ctx, companyID, in.GarageID); err != nil {
		return nil, err
	}
	in.apply(v)
	if err := s.repo.UpdateVehicle(ctx, v); err != nil {
		return nil, domain.Persistence("update vehicle", err)
	}
	return v, nil
}

func (s *FleetService) InactivateVehicle(ctx context.Context, externalID, companyID, id string) error {
	if err := s.authorize(ctx, "inactivate vehicle", externalID, companyID); err != nil {
		return err
	}
	if _, err := s.vehicle(ctx, companyID, id); err != nil {
		return err
	}
	if err := s.repo.InactivateVehicle(ctx, companyID, id); err != nil {
		return domain.Persistence("inactivate vehicle", err)
	}
	s.logger.Info("vehicle inactivated", zap.String("company_id", companyID), zap.String("vehicle_id", id))
	return nil
}

func (s *FleetService) ListVehicles(ctx context.Context, externalID, companyID string, showInactive bool) ([]domain.Vehicle, error) {
	if err := s.authorize(ctx, "list vehicles", externalID, companyID); err != nil {
		return nil, err
	}
	out, err := s.repo.ListVehicles(ctx, companyID, showInactive)
	if err != nil {
		return nil, domain.Retrieval("list vehicles", err)
	}
	return out, nil
}

// checkGarage rejects a garage that is missing or belongs to another company.
func (s *FleetService) checkGarage(ctx context.Context, companyID string, garageID *string) error {
	if garageID == nil || *garageID == "" {
		return nil
	}
	g, err := s.repo.FindGarage(ctx, *garageID)
	if err != nil {
		return domain.Retrieval("find garage", err)
	}
	if g == nil || g.CompanyID != companyID {
		return domain.Invalid("garage_id", "unknown garage")
	}
	return nil
}

// garages

func (s *FleetService) CreateGarage(ctx context.Context, externalID, companyID string, in GarageInput) (*domain.Garage, error) {
	in = in.normalize()
	if err := check(in); err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, "create garage", externalID, companyID); err != nil {
		return nil, err
	}
	g := &domain.Garage{CompanyID: companyID}
	in.apply(g)
	if err := s.repo.CreateGarage(ctx, g); err != nil {
		return nil, domain.Persistence("create garage", err)
	}
	s.logger.Info("garage created", zap.String("company_id", companyID), zap.String("garage_id", g.ID))
	return g, nil
}

func (s *FleetService) FindGarage(ctx context.Context, externalID, companyID, id string) (*domain.Garage, error) {
	if err := s.authorize(ctx, "find garage", externalID, companyID); err != nil {
		return nil, err
	}
	return s.garage(ctx, companyID, id)
}

func (s *FleetService) garage(ctx context.Context, companyID, id string) (*domain.Garage, error) {
	g, err := s.repo.FindGarage(ctx, id)
	if err != nil {
		return nil, domain.Retrieval("find garage", err)
	}
	if g == nil || g.CompanyID != companyID {
		return nil, domain.NotFound("find garage", "garage "+id)
	}
	return g, nil
}

func (s *FleetService) UpdateGarage(ctx context.Context, externalID, companyID, id string, in GarageInput) (*domain.Garage, error) {
	in = in.normalize()
	if err := check(in); err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, "update garage", externalID, companyID); err != nil {
		return nil, err
	}
	g, err := s.garage(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	in.apply(g)
	if err := s.repo.UpdateGarage(ctx, g); err != nil {
		return nil, domain.Persistence("update garage", err)
	}
	return g, nil
}

func (s *FleetService) InactivateGarage(ctx context.Context, externalID, companyID, id string) error {
	if err := s.authorize(ctx, "inactivate garage", externalID, companyID); err != nil {
		return err
	}
	if _, err := s.garage(ctx, companyID, id); err != nil {
		return err
	}
	if err := s.repo.InactivateGarage(ctx, companyID, id); err != nil {
		return domain.Persistence("inactivate garage", err)
	}
	s.logger.Info("garage inactivated", zap.String("company_id", companyID), zap.String("garage_id", id))
	return nil
}

func (s *FleetService) ListGarages(ctx context.Context, externalID, companyID string, showInactive bool) ([]domain.Garage, error) {
	if err := s.authorize(ctx, "list garages", externalID, companyID); err != nil {
		return nil, err
	}
	out, err := s.repo.ListGarages(ctx, companyID, showInactive)
	if err != nil {
		return nil, domain.Retrieval("list garages", err)
	}
	return out, nil
}

// rates

func (s *FleetService) CreateRate(ctx context.Context, externalID, companyID string, in RateInput) (*domain.Rate, error) {
	if err := check(in); err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, "create rate", externalID, companyID); err != nil {
		return nil, err
	}
	r := &domain.Rate{CompanyID: companyID}
	in.apply(r)
	if err := s.repo.CreateRate(ctx, r); err != nil {
		return nil, domain.Persistence("create rate", err)
	}
	s.logger.Info("rate created", zap.String("company_id", companyID), zap.String("rate_id", r.ID))
	return r, nil
}

func (s *FleetService) FindRate(ctx context.Context, externalID, companyID, id string) (*domain.Rate, error) {
	if err := s.authorize(ctx, "find rate", externalID, companyID); err != nil {
		return nil, err
	}
	return s.rate(ctx, companyID, id)
}

func (s *FleetService) rate(ctx context.Context, companyID, id string) (*domain.Rate, error) {
	r, err := s.repo.FindRate(ctx, id)
	if err != nil {
		return nil, domain.Retrieval("find rate", err)
	}
	if r == nil || r.CompanyID != companyID {
		return nil, domain.NotFound("find rate", "rate "+id)
	}
	return r, nil
}

func (s *FleetService) UpdateRate(ctx context.Context, externalID, companyID, id string, in RateInput) (*domain.Rate, error) {
	if err := check(in); err != nil {
		return nil, err
	}
	if err := s.authorize(ctx, "update rate", externalID, companyID); err != nil {
		return nil, err
	}
	r, err := s.rate(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	in.apply(r)
	if err := s.repo.UpdateRate(ctx, r); err != nil {
		return nil, domain.Persistence("update rate", err)
	}
	return r, nil
}

func (s *FleetService) InactivateRate(ctx context.Context, externalID, companyID, id string) error {
	if err := s.authorize(ctx, "inactivate rate", externalID, companyID); err != nil {
		return err
	}
	if _, err := s.rate(ctx, companyID, id); err != nil {
		return err
	}
	if err := s.repo.InactivateRate(ctx, companyID, id); err != nil {
		return domain.Persistence("inactivate rate", err)
	}
	s.logger.Info("rate inactivated", zap.String("company_id", companyID), zap.String("rate_id", id))
	return nil
}

func (s *FleetService) ListRates(ctx context.Context, externalID, companyID string, showInactive bool) ([]domain.Rate, error) {
	if err := s.authorize(ctx, "list rates", externalID, companyID); err != nil {
		return nil, err
	}
	out, err := s.repo.ListRates(ctx, companyID, showInactive)
	if err != nil {
		return nil, domain.Retrieval("list rates", err)
	}
	return out, nil
}
