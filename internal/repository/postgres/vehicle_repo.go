package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/BenAnderson8181/BusApp/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const vehicleSelect = `
	SELECT id, company_id, vehicle_type_id, garage_id, name, make, model, year, capacity,
	       vin_number, license_plate,
	       wifi, bathroom, ada_compliant, outlets, alcohol_allowed, luggage, seat_belts, tv_screens, leather_seats,
	       is_active, created_at, updated_at
	FROM vehicles`

func scanVehicle(row pgx.Row) (*domain.Vehicle, error) {
	v := &domain.Vehicle{}
	a := &v.Amenities
	err := row.Scan(
		&v.ID, &v.CompanyID, &v.VehicleTypeID, &v.GarageID, &v.Name, &v.Make, &v.Model, &v.Year, &v.Capacity,
		&v.VINNumber, &v.LicensePlate,
		&a.WiFi, &a.Bathroom, &a.ADACompliant, &a.Outlets, &a.AlcoholAllowed, &a.Luggage, &a.SeatBelts, &a.TVScreens, &a.LeatherSeats,
		&v.IsActive, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (r *Repo) ListVehicleTypes(ctx context.Context) ([]domain.VehicleType, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name FROM vehicle_types ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("postgres: list vehicle types: %w", err)
	}
	return pgx.CollectRows(rows, pgx.RowToStructByPos[domain.VehicleType])
}

func (r *Repo) CreateVehicle(ctx context.Context, v *domain.Vehicle) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	a := v.Amenities
	err := r.db.QueryRow(ctx, `
		INSERT INTO vehicles (id, company_id, vehicle_type_id, garage_id, name, make, model, year, capacity,
			vin_number, license_plate,
			wifi, bathroom, ada_compliant, outlets, alcohol_allowed, luggage, seat_belts, tv_screens, leather_seats,
			is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11,
			$12, $13, $14, $15, $16, $17, $18, $19, $20, true)
		RETURNING is_active, created_at, updated_at`,
		v.ID, v.CompanyID, v.VehicleTypeID, v.GarageID, v.Name, v.Make, v.Model, v.Year, v.Capacity,
		v.VINNumber, v.LicensePlate,
		a.WiFi, a.Bathroom, a.ADACompliant, a.Outlets, a.AlcoholAllowed, a.Luggage, a.SeatBelts, a.TVScreens, a.LeatherSeats,
	).Scan(&v.IsActive, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return fmt.Errorf("postgres: create vehicle: %w", err)
	}
	return nil
}

// FindVehicle returns (nil, nil) for an unknown id.
func (r *Repo) FindVehicle(ctx context.Context, id string) (*domain.Vehicle, error) {
	v, err := scanVehicle(r.db.QueryRow(ctx, vehicleSelect+` WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: find vehicle: %w", err)
	}
	return v, nil
}

func (r *Repo) UpdateVehicle(ctx context.Context, v *domain.Vehicle) error {
	a := v.Amenities
	ct, err := r.db.Exec(ctx, `
		UPDATE vehicles SET
			vehicle_type_id = $3, garage_id = $4, name = $5, make = $6, model = $7, year = $8, capacity = $9,
			vin_number = $10, license_plate = $11,
			wifi = $12, bathroom = $13, ada_compliant = $14, outlets = $15, alcohol_allowed = $16,
			luggage = $17, seat_belts = $18, tv_screens = $19, leather_seats = $20, updated_at = NOW()
		WHERE id = $1 AND company_id = $2`,
		v.ID, v.CompanyID, v.VehicleTypeID, v.GarageID, v.Name, v.Make, v.Model, v.Year, v.Capacity,
		v.VINNumber, v.LicensePlate,
		a.WiFi, a.Bathroom, a.ADACompliant, a.Outlets, a.AlcoholAllowed, a.Luggage, a.SeatBelts, a.TVScreens, a.LeatherSeats,
	)
	if err != nil {
		return fmt.Errorf("postgres: update vehicle: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.NotFound("update vehicle", "vehicle "+v.ID)
	}
	return nil
}

func (r *Repo) InactivateVehicle(ctx context.Context, companyID, id string) error {
	ct, err := r.db.Exec(ctx,
		`UPDATE vehicles SET is_active = false, updated_at = NOW() WHERE id = $1 AND company_id = $2`, id, companyID)
	if err != nil {
		return fmt.Errorf("postgres: inactivate vehicle: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return domain.NotFound("inactivate vehicle", "vehicle "+id)
	}
	return nil
}

func (r *Repo) ListVehicles(ctx context.Context, companyID string, includeInactive bool) ([]domain.Vehicle, error) {
	rows, err := r.db.Query(ctx, vehicleSelect+`
		WHERE company_id = $1 AND (is_active OR $2) ORDER BY name`, companyID, includeInactive)
	if err != nil {
		return nil, fmt.Errorf("postgres: list vehicles: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Vehicle, 0)
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, rows.Err()
}
