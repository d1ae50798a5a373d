package models

import "time"

// Driver is either a company driver (optionally bound to a vehicle) or an
// external driver kept for reference. External drivers never hold a vehicle.
type Driver struct {
	ID         int64     `json:"id" db:"id"`
	Name       string    `json:"name" db:"name"`
	Phone      string    `json:"phone" db:"phone"`
	Email      *string   `json:"email" db:"email"`
	LicenseNo  *string   `json:"licenseNo" db:"license_no"`
	IsExternal bool      `json:"isExternal" db:"is_external"`
	VehicleID  *int64    `json:"vehicleId" db:"vehicle_id"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time `json:"updatedAt" db:"updated_at"`

	Vehicle *Vehicle `json:"vehicle" db:"-"`
}

// DriverSummary is the reduced driver view embedded in other records
type DriverSummary struct {
	ID         int64           `json:"id" db:"id"`
	Name       string          `json:"name" db:"name"`
	Phone      string          `json:"phone" db:"phone"`
	IsExternal bool            `json:"isExternal" db:"is_external"`
	Vehicle    *VehicleSummary `json:"vehicle,omitempty" db:"-"`
}

// DriverReservation is a reservation as listed under its driver
type DriverReservation struct {
	ID       int64             `json:"id" db:"id"`
	DriverID int64             `json:"-" db:"driver_id"`
	Date     string            `json:"date" db:"travel_date"`
	Time     string            `json:"time" db:"travel_time"`
	From     string            `json:"from" db:"from_location"`
	To       string            `json:"to" db:"to_location"`
	Status   ReservationStatus `json:"status" db:"status"`
}

// DriverWithReservations is a driver with its vehicle and assigned reservations
type DriverWithReservations struct {
	Driver
	Reservations []DriverReservation `json:"reservations"`
}

// CreateDriverRequest is the body of POST /drivers
type CreateDriverRequest struct {
	Name       string        `json:"name" validate:"required,max=255"`
	Phone      string        `json:"phone" validate:"required,max=50"`
	Email      *string       `json:"email,omitempty" validate:"omitempty,email,max=255"`
	LicenseNo  *string       `json:"licenseNo,omitempty" validate:"omitempty,max=100"`
	IsExternal bool          `json:"isExternal"`
	VehicleID  OptionalInt64 `json:"vehicleId"`
}
