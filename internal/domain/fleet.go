package domain

import "time"

// VehicleType is a seeded vehicle category (coach, mini bus, ...).
type VehicleType struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Garage is a yard where a company parks its vehicles.
type Garage struct {
	ID        string `json:"id"`
	CompanyID string `json:"company_id"`
	Name      string `json:"name"`
	Address   string `json:"address"`
	City      string `json:"city"`
	State     string `json:"state"`
	Zip       string `json:"zip"`

	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Vehicle is one bus of a company's fleet.
type Vehicle struct {
	ID            string  `json:"id"`
	CompanyID     string  `json:"company_id"`
	VehicleTypeID string  `json:"vehicle_type_id"`
	GarageID      *string `json:"garage_id,omitempty"`
	Name          string  `json:"name"`
	Make          string  `json:"make"`
	Model         string  `json:"model"`
	Year          int     `json:"year"`
	Capacity      int     `json:"capacity"`
	VINNumber     string  `json:"vin_number"`
	LicensePlate  string  `json:"license_plate"`

	Amenities

	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Amenities are the on-board features a customer can filter quotes by.
type Amenities struct {
	WiFi           bool `json:"wifi"`
	Bathroom       bool `json:"bathroom"`
	ADACompliant   bool `json:"ada_compliant"`
	Outlets        bool `json:"outlets"`
	AlcoholAllowed bool `json:"alcohol_allowed"`
	Luggage        bool `json:"luggage"`
	SeatBelts      bool `json:"seat_belts"`
	TVScreens      bool `json:"tv_screens"`
	LeatherSeats   bool `json:"leather_seats"`
}

// Rate is a company's price sheet used when bidding on bookings.
type Rate struct {
	ID           string  `json:"id"`
	CompanyID    string  `json:"company_id"`
	Name         string  `json:"name"`
	Transfer     float64 `json:"transfer"`
	DeadMile     float64 `json:"dead_mile"`
	LiveMile     float64 `json:"live_mile"`
	Hourly       float64 `json:"hourly"`
	MinimumHours int     `json:"minimum_hours"`
	Daily        float64 `json:"daily"`

	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
