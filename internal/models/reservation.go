package models

import (
	"encoding/json"
	"strings"
	"time"
)

// ReservationStatus is the lifecycle state of a reservation
type ReservationStatus string

const (
	ReservationStatusPending   ReservationStatus = "PENDING"
	ReservationStatusConfirmed ReservationStatus = "CONFIRMED"
	ReservationStatusCancelled ReservationStatus = "CANCELLED"
	ReservationStatusCompleted ReservationStatus = "COMPLETED"
)

// IsValid reports whether s is one of the four known statuses.
// Any valid status may follow any other.
func (s ReservationStatus) IsValid() bool {
	switch s {
	case ReservationStatusPending, ReservationStatusConfirmed, ReservationStatusCancelled, ReservationStatusCompleted:
		return true
	}
	return false
}

// PaymentStatus is independent of ReservationStatus
type PaymentStatus string

const (
	PaymentStatusUnpaid        PaymentStatus = "UNPAID"
	PaymentStatusPaid          PaymentStatus = "PAID"
	PaymentStatusPartiallyPaid PaymentStatus = "PARTIALLY_PAID"
	PaymentStatusRefunded      PaymentStatus = "REFUNDED"
)

// IsValid reports whether s is a known payment status
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusUnpaid, PaymentStatusPaid, PaymentStatusPartiallyPaid, PaymentStatusRefunded:
		return true
	}
	return false
}

// Reservation is a customer transfer request
type Reservation struct {
	ID                  int64             `json:"id" db:"id"`
	From                string            `json:"from" db:"from_location"`
	To                  string            `json:"to" db:"to_location"`
	Date                string            `json:"date" db:"travel_date"`
	Time                string            `json:"time" db:"travel_time"`
	Phone               string            `json:"phone" db:"phone"`
	FlightCode          *string           `json:"flightCode" db:"flight_code"`
	PassengerCount      int               `json:"passengerCount" db:"passenger_count"`
	LuggageCount        int               `json:"luggageCount" db:"luggage_count"`
	Status              ReservationStatus `json:"status" db:"status"`
	Price               *float64          `json:"price" db:"price"`
	PaymentStatus       PaymentStatus     `json:"paymentStatus" db:"payment_status"`
	DriverID            *int64            `json:"driverId" db:"driver_id"`
	IsExternal          bool              `json:"isExternal" db:"is_external"`
	ExternalDriverName  *string           `json:"externalDriverName" db:"external_driver_name"`
	ExternalDriverPhone *string           `json:"externalDriverPhone" db:"external_driver_phone"`
	CreatedAt           time.Time         `json:"createdAt" db:"created_at"`
	UpdatedAt           time.Time         `json:"updatedAt" db:"updated_at"`

	Passengers []Passenger    `json:"passengers" db:"-"`
	Driver     *DriverSummary `json:"driver" db:"-"`
}

// Passenger is a named traveller of a reservation
type Passenger struct {
	ID            int64  `json:"id" db:"id"`
	ReservationID int64  `json:"reservationId" db:"reservation_id"`
	Name          string `json:"name" db:"name"`
}

// ReservationSummary is the reduced reservation view embedded in ledger entries
type ReservationSummary struct {
	ID     int64             `json:"id"`
	From   string            `json:"from"`
	To     string            `json:"to"`
	Date   string            `json:"date"`
	Time   string            `json:"time"`
	Phone  string            `json:"phone"`
	Status ReservationStatus `json:"status"`
	Driver *DriverSummary    `json:"driver"`
}

// CreateReservationRequest is the public submission form.
// Passengers stays raw so a malformed list degrades to "no names" instead of
// rejecting the whole submission.
type CreateReservationRequest struct {
	From         string          `json:"from" validate:"required,max=255"`
	To           string          `json:"to" validate:"required,max=255"`
	Date         string          `json:"date" validate:"required,max=50"`
	Time         string          `json:"time" validate:"required,max=50"`
	Phone        string          `json:"phone" validate:"required,max=50"`
	FlightCode   *string         `json:"flightCode,omitempty" validate:"omitempty,max=50"`
	Passengers   json.RawMessage `json:"passengers,omitempty"`
	LuggageCount FlexFloat       `json:"luggageCount"`
}

// PassengerNames returns the trimmed, non-blank string entries of Passengers
// in submission order.
func (r *CreateReservationRequest) PassengerNames() []string {
	if len(r.Passengers) == 0 {
		return nil
	}

	var raw []interface{}
	if err := json.Unmarshal(r.Passengers, &raw); err != nil {
		return nil
	}

	names := make([]string, 0, len(raw))
	for _, entry := range raw {
		name, ok := entry.(string)
		if !ok {
			continue
		}
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		names = append(names, name)
	}
	return names
}

// UpdateReservationRequest is a partial update; only keys present in the body
// are applied.
type UpdateReservationRequest struct {
	Status              *string       `json:"status,omitempty"`
	PaymentStatus       *string       `json:"paymentStatus,omitempty"`
	Price               OptionalFloat `json:"price"`
	DriverID            OptionalInt64 `json:"driverId"`
	IsExternal          *bool         `json:"isExternal,omitempty"`
	ExternalDriverName  *string       `json:"externalDriverName,omitempty"`
	ExternalDriverPhone *string       `json:"externalDriverPhone,omitempty"`
}

// ReservationPatch is the normalized, validated form of an update. Nil
// pointers mean "leave unchanged" except inside an assignment.
type ReservationPatch struct {
	Status        *ReservationStatus
	PaymentStatus *PaymentStatus

	SetPrice bool
	Price    *float64

	Assignment *DriverAssignment
}

// DriverAssignment rewrites the driver columns as a unit. When External is
// true DriverID is always nil; otherwise the external fields are always nil.
type DriverAssignment struct {
	DriverID            *int64
	External            bool
	ExternalDriverName  *string
	ExternalDriverPhone *string
}
