package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/teraturizm/transfer-admin/internal/models"
	"github.com/teraturizm/transfer-admin/internal/services"
)

// ReservationService is what the reservation endpoints need
type ReservationService interface {
	Create(ctx context.Context, req *models.CreateReservationRequest, actor services.Actor) (*models.Reservation, error)
	List(ctx context.Context) ([]models.Reservation, error)
	Get(ctx context.Context, id int64) (*models.Reservation, error)
	Update(ctx context.Context, id int64, req *models.UpdateReservationRequest, actor services.Actor) (*models.Reservation, error)
	Delete(ctx context.Context, id int64, actor services.Actor) error
}

// ReservationHandler serves the public submission and the admin lifecycle endpoints
type ReservationHandler struct {
	reservations ReservationService
	logger       *logrus.Logger
}

// NewReservationHandler creates a new reservation handler
func NewReservationHandler(reservations ReservationService, logger *logrus.Logger) *ReservationHandler {
	return &ReservationHandler{reservations: reservations, logger: logger}
}

// Create handles POST /api/reservations (public)
func (h *ReservationHandler) Create(c *gin.Context) {
	var req models.CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidBody(c)
		return
	}

	res, err := h.reservations.Create(c.Request.Context(), &req, actorFromContext(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c, http.StatusCreated, res)
}

// List handles GET /api/reservations
func (h *ReservationHandler) List(c *gin.Context) {
	list, err := h.reservations.List(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c, http.StatusOK, list)
}

// Get handles GET /api/reservations/:id
func (h *ReservationHandler) Get(c *gin.Context) {
	id, err := services.ParseID(c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	res, err := h.reservations.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c, http.StatusOK, res)
}

// Update handles PUT /api/reservations/:id
func (h *ReservationHandler) Update(c *gin.Context) {
	id, err := services.ParseID(c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	var req models.UpdateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidBody(c)
		return
	}

	res, err := h.reservations.Update(c.Request.Context(), id, &req, actorFromContext(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c, http.StatusOK, res)
}

// Delete handles DELETE /api/reservations/:id
func (h *ReservationHandler) Delete(c *gin.Context) {
	id, err := services.ParseID(c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	if err := h.reservations.Delete(c.Request.Context(), id, actorFromContext(c)); err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c, http.StatusOK, gin.H{"id": id})
}
