package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/teraturizm/transfer-admin/internal/middleware"
	"github.com/teraturizm/transfer-admin/internal/models"
	"github.com/teraturizm/transfer-admin/internal/services"
)

// AuthService is what the auth endpoints need from the service layer
type AuthService interface {
	Login(ctx context.Context, req *models.LoginRequest, actor services.Actor) (*models.AuthResponse, error)
	Register(ctx context.Context, req *models.RegisterRequest, actor services.Actor) (*models.AuthResponse, error)
	Me(ctx context.Context, userID int64) (*models.User, error)
	RecentActivity(ctx context.Context, userID int64, limit int) ([]models.AuditLog, error)
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	auth   AuthService
	logger *logrus.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(auth AuthService, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger}
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidBody(c)
		return
	}

	resp, err := h.auth.Login(c.Request.Context(), &req, actorFromContext(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c, http.StatusOK, resp)
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidBody(c)
		return
	}

	resp, err := h.auth.Register(c.Request.Context(), &req, actorFromContext(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c, http.StatusCreated, resp)
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := middleware.GetUserContext(c)
	if !ok {
		respondFailure(c, http.StatusUnauthorized, services.CodeUnauthorized, "not authenticated")
		return
	}

	record, err := h.auth.Me(c.Request.Context(), user.UserID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c, http.StatusOK, record)
}

// Activity handles GET /api/auth/me/activity?limit=N
func (h *AuthHandler) Activity(c *gin.Context) {
	user, ok := middleware.GetUserContext(c)
	if !ok {
		respondFailure(c, http.StatusUnauthorized, services.CodeUnauthorized, "not authenticated")
		return
	}

	limit, _ := strconv.Atoi(c.Query("limit"))
	events, err := h.auth.RecentActivity(c.Request.Context(), user.UserID, limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	respondOK(c, http.StatusOK, events)
}
