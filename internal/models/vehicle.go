package models

import "time"

// DefaultVehicleType is used when a vehicle is created without a type
const DefaultVehicleType = "STANDARD"

// DefaultVehicleCapacity is used when a vehicle is created without a capacity
const DefaultVehicleCapacity = 4

// Vehicle represents a company vehicle
type Vehicle struct {
	ID        int64     `json:"id" db:"id"`
	Plate     string    `json:"plate" db:"plate"`
	Brand     string    `json:"brand" db:"brand"`
	Model     string    `json:"model" db:"model"`
	Year      int       `json:"year" db:"year"`
	Capacity  int       `json:"capacity" db:"capacity"`
	Type      string    `json:"type" db:"type"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// VehicleSummary is the reduced vehicle view embedded in reservation listings
type VehicleSummary struct {
	Plate string `json:"plate"`
	Brand string `json:"brand"`
	Model string `json:"model"`
}

// VehicleWithDrivers is a vehicle plus the drivers assigned to it
type VehicleWithDrivers struct {
	Vehicle
	Drivers     []DriverSummary `json:"drivers"`
	DriverCount int             `json:"driverCount"`
}

// CreateVehicleRequest is the body of POST /vehicles
type CreateVehicleRequest struct {
	Plate    string  `json:"plate" validate:"required,max=20"`
	Brand    string  `json:"brand" validate:"required,max=100"`
	Model    string  `json:"model" validate:"required,max=100"`
	Year     *int    `json:"year,omitempty" validate:"omitempty,min=1950,max=2100"`
	Capacity *int    `json:"capacity,omitempty" validate:"omitempty,min=1,max=100"`
	Type     *string `json:"type,omitempty" validate:"omitempty,max=50"`
}
