package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/teraturizm/transfer-admin/internal/database"
	"github.com/teraturizm/transfer-admin/internal/models"
	"github.com/teraturizm/transfer-admin/pkg/validator"
)

// DriverRepository is the driver persistence the fleet service needs
type DriverRepository interface {
	Create(ctx context.Context, d *models.Driver) error
	GetByID(ctx context.Context, id int64) (*models.Driver, error)
	List(ctx context.Context) ([]models.DriverWithReservations, error)
}

// VehicleRepository is the vehicle persistence the fleet service needs
type VehicleRepository interface {
	Create(ctx context.Context, v *models.Vehicle) error
	GetByID(ctx context.Context, id int64) (*models.Vehicle, error)
	List(ctx context.Context) ([]models.VehicleWithDrivers, error)
}

// FleetService manages drivers and vehicles
type FleetService struct {
	drivers  DriverRepository
	vehicles VehicleRepository
	phones   *validator.PhoneValidator
	auditor  Auditor
	logger   *logrus.Logger
	now      func() time.Time
}

// NewFleetService creates a new fleet service
func NewFleetService(drivers DriverRepository, vehicles VehicleRepository, auditor Auditor, logger *logrus.Logger) *FleetService {
	return &FleetService{
		drivers:  drivers,
		vehicles: vehicles,
		phones:   validator.NewPhoneValidator(),
		auditor:  auditor,
		logger:   logger,
		now:      time.Now,
	}
}

// ListDrivers returns drivers by name with their vehicle and reservations
func (s *FleetService) ListDrivers(ctx context.Context) ([]models.DriverWithReservations, error) {
	drivers, err := s.drivers.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list drivers: %w", err)
	}
	return drivers, nil
}

// CreateDriver registers a company or external driver. External drivers
// never keep a vehicle.
func (s *FleetService) CreateDriver(ctx context.Context, req *models.CreateDriverRequest, actor Actor) (*models.Driver, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Phone = strings.TrimSpace(req.Phone)
	req.Email = trimOptional(req.Email)
	req.LicenseNo = trimOptional(req.LicenseNo)

	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if _, err := s.phones.Validate(req.Phone); err != nil {
		return nil, &ValidationError{Message: err.Error(), Fields: map[string]string{"phone": err.Error()}}
	}

	driver := &models.Driver{
		Name:       req.Name,
		Phone:      req.Phone,
		Email:      req.Email,
		LicenseNo:  req.LicenseNo,
		IsExternal: req.IsExternal,
	}

	if !req.IsExternal {
		driver.VehicleID = req.VehicleID.Ptr()
	}
	if driver.VehicleID != nil {
		if *driver.VehicleID <= 0 {
			return nil, &ValidationError{Message: "invalid vehicleId"}
		}
		if _, err := s.vehicles.GetByID(ctx, *driver.VehicleID); err != nil {
			if errors.Is(err, database.ErrNotFound) {
				return nil, &NotFoundError{Resource: "vehicle"}
			}
			return nil, fmt.Errorf("failed to check vehicle: %w", err)
		}
	}

	if err := s.drivers.Create(ctx, driver); err != nil {
		if errors.Is(err, database.ErrForeignKey) {
			return nil, &NotFoundError{Resource: "vehicle"}
		}
		return nil, fmt.Errorf("failed to create driver: %w", err)
	}

	s.auditor.LogMutation(ctx, actor, ActionDriverCreate, "driver", driver.ID, map[string]interface{}{
		"name":       driver.Name,
		"isExternal": driver.IsExternal,
	})

	created, err := s.drivers.GetByID(ctx, driver.ID)
	if err != nil {
		s.logger.WithError(err).WithField("driver_id", driver.ID).Warn("Failed to reload driver")
		return driver, nil
	}
	return created, nil
}

// ListVehicles returns vehicles by plate with their drivers
func (s *FleetService) ListVehicles(ctx context.Context) ([]models.VehicleWithDrivers, error) {
	vehicles, err := s.vehicles.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list vehicles: %w", err)
	}
	return vehicles, nil
}

// CreateVehicle registers a vehicle. Plates are stored trimmed and upper-cased
// and must be unique.
func (s *FleetService) CreateVehicle(ctx context.Context, req *models.CreateVehicleRequest, actor Actor) (*models.Vehicle, error) {
	req.Plate = strings.ToUpper(strings.Join(strings.Fields(req.Plate), ""))
	req.Brand = strings.TrimSpace(req.Brand)
	req.Model = strings.TrimSpace(req.Model)
	req.Type = trimOptional(req.Type)

	if err := validateStruct(req); err != nil {
		return nil, err
	}

	vehicle := &models.Vehicle{
		Plate:    req.Plate,
		Brand:    req.Brand,
		Model:    req.Model,
		Year:     s.now().Year(),
		Capacity: models.DefaultVehicleCapacity,
		Type:     models.DefaultVehicleType,
	}
	if req.Year != nil {
		vehicle.Year = *req.Year
	}
	if req.Capacity != nil {
		vehicle.Capacity = *req.Capacity
	}
	if req.Type != nil {
		vehicle.Type = strings.ToUpper(*req.Type)
	}

	if err := s.vehicles.Create(ctx, vehicle); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, &ConflictError{Message: fmt.Sprintf("vehicle with plate %s already exists", vehicle.Plate)}
		}
		return nil, fmt.Errorf("failed to create vehicle: %w", err)
	}

	s.auditor.LogMutation(ctx, actor, ActionVehicleCreate, "vehicle", vehicle.ID, map[string]interface{}{
		"plate": vehicle.Plate,
	})

	return vehicle, nil
}
