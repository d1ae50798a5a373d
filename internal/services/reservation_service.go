package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"github.com/teraturizm/transfer-admin/internal/database"
	"github.com/teraturizm/transfer-admin/internal/models"
)

// ReservationRepository is the persistence the reservation service needs
type ReservationRepository interface {
	Create(ctx context.Context, res *models.Reservation, names []string) error
	List(ctx context.Context) ([]models.Reservation, error)
	GetByID(ctx context.Context, id int64) (*models.Reservation, error)
	Update(ctx context.Context, id int64, patch *models.ReservationPatch) error
	Delete(ctx context.Context, id int64) error
}

// DriverLookup checks driver references
type DriverLookup interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

// ReservationService owns the reservation lifecycle and driver/payment assignment
type ReservationService struct {
	reservations ReservationRepository
	drivers      DriverLookup
	auditor      Auditor
	logger       *logrus.Logger
}

// NewReservationService creates a new reservation service
func NewReservationService(reservations ReservationRepository, drivers DriverLookup, auditor Auditor, logger *logrus.Logger) *ReservationService {
	return &ReservationService{
		reservations: reservations,
		drivers:      drivers,
		auditor:      auditor,
		logger:       logger,
	}
}

// ParseID parses a path id, rejecting anything but a positive integer
func ParseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, &ValidationError{Message: "invalid id"}
	}
	return id, nil
}

// Create stores a public reservation request as PENDING/UNPAID together with
// its passengers
func (s *ReservationService) Create(ctx context.Context, req *models.CreateReservationRequest, actor Actor) (*models.Reservation, error) {
	req.From = strings.TrimSpace(req.From)
	req.To = strings.TrimSpace(req.To)
	req.Date = strings.TrimSpace(req.Date)
	req.Time = strings.TrimSpace(req.Time)
	req.Phone = strings.TrimSpace(req.Phone)
	req.FlightCode = trimOptional(req.FlightCode)

	if err := validateStruct(req); err != nil {
		return nil, err
	}

	names := req.PassengerNames()
	if len(names) > maxPassengers {
		return nil, NewValidationError("at most %d passengers are allowed", maxPassengers)
	}
	for _, name := range names {
		if utf8.RuneCountInString(name) > maxPassengerNameLength {
			return nil, NewValidationError("passenger name must be at most %d characters", maxPassengerNameLength)
		}
	}
	passengerCount := len(names)
	if passengerCount < 1 {
		passengerCount = 1
	}

	res := &models.Reservation{
		From:           req.From,
		To:             req.To,
		Date:           req.Date,
		Time:           req.Time,
		Phone:          req.Phone,
		FlightCode:     req.FlightCode,
		PassengerCount: passengerCount,
		LuggageCount:   luggageCount(req.LuggageCount),
		Status:         models.ReservationStatusPending,
		PaymentStatus:  models.PaymentStatusUnpaid,
	}

	if err := s.reservations.Create(ctx, res, names); err != nil {
		return nil, fmt.Errorf("failed to create reservation: %w", err)
	}

	s.auditor.LogMutation(ctx, actor, ActionReservationCreate, "reservation", res.ID, map[string]interface{}{
		"passengerCount": res.PassengerCount,
		"luggageCount":   res.LuggageCount,
	})

	return res, nil
}

const (
	maxPassengers          = 50
	maxPassengerNameLength = 255
)

// luggageCount coerces the submitted value: missing, non-finite or negative
// becomes 0 and fractions are truncated
func luggageCount(v models.FlexFloat) int {
	if !v.Valid || v.Value <= 0 {
		return 0
	}
	if v.Value >= math.MaxInt32 {
		return math.MaxInt32
	}
	return int(math.Trunc(v.Value))
}

// List returns every reservation newest first
func (s *ReservationService) List(ctx context.Context) ([]models.Reservation, error) {
	reservations, err := s.reservations.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	return reservations, nil
}

// Get returns one reservation
func (s *ReservationService) Get(ctx context.Context, id int64) (*models.Reservation, error) {
	if id <= 0 {
		return nil, &ValidationError{Message: "invalid id"}
	}

	res, err := s.reservations.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, &NotFoundError{Resource: "reservation"}
		}
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}
	return res, nil
}

// Update applies a partial update of status, payment status, price and
// driver assignment in one write and returns the refreshed reservation
func (s *ReservationService) Update(ctx context.Context, id int64, req *models.UpdateReservationRequest, actor Actor) (*models.Reservation, error) {
	if id <= 0 {
		return nil, &ValidationError{Message: "invalid id"}
	}

	patch, err := buildReservationPatch(req)
	if err != nil {
		return nil, err
	}

	if a := patch.Assignment; a != nil && a.DriverID != nil {
		exists, err := s.drivers.Exists(ctx, *a.DriverID)
		if err != nil {
			return nil, fmt.Errorf("failed to check driver: %w", err)
		}
		if !exists {
			return nil, &NotFoundError{Resource: "driver"}
		}
	}

	if err := s.reservations.Update(ctx, id, patch); err != nil {
		switch {
		case errors.Is(err, database.ErrNotFound):
			return nil, &NotFoundError{Resource: "reservation"}
		case errors.Is(err, database.ErrForeignKey):
			return nil, &NotFoundError{Resource: "driver"}
		}
		return nil, fmt.Errorf("failed to update reservation: %w", err)
	}

	s.auditor.LogMutation(ctx, actor, ActionReservationUpdate, "reservation", id, patchDetails(patch))

	return s.Get(ctx, id)
}

func buildReservationPatch(req *models.UpdateReservationRequest) (*models.ReservationPatch, error) {
	patch := &models.ReservationPatch{}

	if req.Status != nil && strings.TrimSpace(*req.Status) != "" {
		status := models.ReservationStatus(strings.TrimSpace(*req.Status))
		if !status.IsValid() {
			return nil, &ValidationError{Message: "invalid status"}
		}
		patch.Status = &status
	}

	if req.PaymentStatus != nil && strings.TrimSpace(*req.PaymentStatus) != "" {
		paymentStatus := models.PaymentStatus(strings.TrimSpace(*req.PaymentStatus))
		if !paymentStatus.IsValid() {
			return nil, &ValidationError{Message: "invalid payment status"}
		}
		patch.PaymentStatus = &paymentStatus
	}

	if req.Price.Set {
		if req.Price.Valid && req.Price.Value < 0 {
			return nil, &ValidationError{Message: "price must not be negative"}
		}
		patch.SetPrice = true
		patch.Price = req.Price.Ptr()
	}

	// isExternal=false alone leaves the current company driver in place.
	if req.DriverID.Set || (req.IsExternal != nil && *req.IsExternal) {
		if req.IsExternal != nil && *req.IsExternal {
			name := trimOptional(req.ExternalDriverName)
			if name == nil {
				return nil, &ValidationError{Message: "external driver name is required"}
			}
			patch.Assignment = &models.DriverAssignment{
				External:            true,
				ExternalDriverName:  name,
				ExternalDriverPhone: trimOptional(req.ExternalDriverPhone),
			}
		} else {
			driverID := req.DriverID.Ptr()
			if driverID != nil && *driverID <= 0 {
				return nil, &ValidationError{Message: "invalid driver id"}
			}
			patch.Assignment = &models.DriverAssignment{DriverID: driverID}
		}
	}

	return patch, nil
}

func patchDetails(patch *models.ReservationPatch) map[string]interface{} {
	details := map[string]interface{}{}
	if patch.Status != nil {
		details["status"] = *patch.Status
	}
	if patch.PaymentStatus != nil {
		details["paymentStatus"] = *patch.PaymentStatus
	}
	if patch.SetPrice {
		details["price"] = patch.Price
	}
	if a := patch.Assignment; a != nil {
		details["driverId"] = a.DriverID
		details["isExternal"] = a.External
		details["externalDriverName"] = a.ExternalDriverName
	}
	return details
}

// Delete removes a reservation and its passengers
func (s *ReservationService) Delete(ctx context.Context, id int64, actor Actor) error {
	if id <= 0 {
		return &ValidationError{Message: "invalid id"}
	}

	if err := s.reservations.Delete(ctx, id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return &NotFoundError{Resource: "reservation"}
		}
		return fmt.Errorf("failed to delete reservation: %w", err)
	}

	s.auditor.LogMutation(ctx, actor, ActionReservationDelete, "reservation", id, nil)
	s.logger.WithFields(logrus.Fields{
		"reservation_id": id,
		"request_id":     actor.RequestID,
	}).Info("Reservation deleted")

	return nil
}
