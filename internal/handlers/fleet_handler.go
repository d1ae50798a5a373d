package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/teraturizm/transfer-admin/internal/models"
	"github.com/teraturizm/transfer-admin/internal/services"
)

// FleetService is what the driver and vehicle endpoints need
type FleetService interface {
	ListDrivers(ctx context.Context) ([]models.DriverWithReservations, error)
	CreateDriver(ctx context.Context, req *models.CreateDriverRequest, actor services.Actor) (*models.Driver, error)
	ListVehicles(ctx context.Context) ([]models.VehicleWithDrivers, error)
	CreateVehicle(ctx context.Context, req *models.CreateVehicleRequest, actor services.Actor) (*models.Vehicle, error)
}

// FleetHandler serves drivers and vehicles
type FleetHandler struct {
	fleet  FleetService
	logger *logrus.Logger
}

// NewFleetHandler creates a new fleet handler
func NewFleetHandler(fleet FleetService, logger *logrus.Logger) *FleetHandler {
	return &FleetHandler{fleet: fleet, logger: logger}
}

// ListDrivers handles GET /api/drivers
func (h *FleetHandler) ListDrivers(c *gin.Context) {
	drivers, err := h.fleet.ListDrivers(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, drivers)
}

// CreateDriver handles POST /api/drivers
func (h *FleetHandler) CreateDriver(c *gin.Context) {
	var req models.CreateDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidBody(c)
		return
	}

	driver, err := h.fleet.CreateDriver(c.Request.Context(), &req, actorFromContext(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusCreated, driver)
}

// ListVehicles handles GET /api/vehicles
func (h *FleetHandler) ListVehicles(c *gin.Context) {
	vehicles, err := h.fleet.ListVehicles(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusOK, vehicles)
}

// CreateVehicle handles POST /api/vehicles
func (h *FleetHandler) CreateVehicle(c *gin.Context) {
	var req models.CreateVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidBody(c)
		return
	}

	vehicle, err := h.fleet.CreateVehicle(c.Request.Context(), &req, actorFromContext(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respondOK(c, http.StatusCreated, vehicle)
}
