package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/teraturizm/transfer-admin/internal/database"
	"github.com/teraturizm/transfer-admin/internal/models"
	"github.com/teraturizm/transfer-admin/pkg/jwt"
	"golang.org/x/crypto/bcrypt"
)

// UserRepository is the persistence the auth service needs
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

// AuditReader lists past audit events of a user
type AuditReader interface {
	GetRecentEvents(ctx context.Context, userID int64, limit int) ([]models.AuditLog, error)
}

// AuthConfig holds the auth service settings
type AuthConfig struct {
	BcryptCost        int
	AllowRegistration bool
}

// AuthService handles staff authentication business logic
type AuthService struct {
	users      UserRepository
	limiter    LoginLimiter
	jwtService *jwt.Service
	auditor    Auditor
	activity   AuditReader
	logger     *logrus.Logger
	config     AuthConfig

	// compared against for unknown emails so both failure paths cost one bcrypt run
	dummyHash []byte
}

// NewAuthService creates a new auth service
func NewAuthService(
	users UserRepository,
	limiter LoginLimiter,
	jwtService *jwt.Service,
	auditor Auditor,
	activity AuditReader,
	logger *logrus.Logger,
	config AuthConfig,
) *AuthService {
	dummyHash, _ := bcrypt.GenerateFromPassword([]byte("transfer-admin-placeholder"), config.BcryptCost)

	return &AuthService{
		users:      users,
		limiter:    limiter,
		jwtService: jwtService,
		auditor:    auditor,
		activity:   activity,
		logger:     logger,
		config:     config,
		dummyHash:  dummyHash,
	}
}

// ErrInvalidCredentials is returned for unknown emails and wrong passwords alike
var ErrInvalidCredentials = &AuthError{Message: "invalid credentials"}

// Login authenticates a staff member and returns a signed token
func (s *AuthService) Login(ctx context.Context, req *models.LoginRequest, actor Actor) (*models.AuthResponse, error) {
	req.Email = normalizeEmail(req.Email)
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	if err := s.limiter.CheckLoginAllowed(ctx, req.Email, actor.IPAddress); err != nil {
		var rateLimitErr *RateLimitError
		if errors.As(err, &rateLimitErr) {
			s.auditor.LogLogin(ctx, actor, nil, req.Email, false, "rate_limited")
		}
		return nil, err
	}

	user, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		if !errors.Is(err, database.ErrNotFound) {
			return nil, fmt.Errorf("failed to load user: %w", err)
		}
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(req.Password))
		s.loginFailed(ctx, actor, nil, req.Email, "unknown_email")
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.loginFailed(ctx, actor, &user.ID, req.Email, "wrong_password")
		return nil, ErrInvalidCredentials
	}

	if err := s.limiter.ClearFailedLogins(ctx, req.Email); err != nil {
		s.logger.WithError(err).WithField("user_id", user.ID).Warn("Failed to clear login attempts")
	}

	resp, err := s.issue(user)
	if err != nil {
		return nil, err
	}

	s.auditor.LogLogin(ctx, actor, &user.ID, user.Email, true, "")
	s.logger.WithFields(logrus.Fields{
		"user_id":    user.ID,
		"role":       user.Role,
		"request_id": actor.RequestID,
	}).Info("User logged in")

	return resp, nil
}

func (s *AuthService) loginFailed(ctx context.Context, actor Actor, userID *int64, email, reason string) {
	if err := s.limiter.RecordFailedLogin(ctx, email, actor.IPAddress); err != nil {
		s.logger.WithError(err).Warn("Failed to record login attempt")
	}
	s.auditor.LogLogin(ctx, actor, userID, email, false, reason)
}

// Register creates an ADMIN account and signs it in
func (s *AuthService) Register(ctx context.Context, req *models.RegisterRequest, actor Actor) (*models.AuthResponse, error) {
	if !s.config.AllowRegistration {
		return nil, &ForbiddenError{Message: "registration is disabled"}
	}

	req.Email = normalizeEmail(req.Email)
	if err := validateStruct(req); err != nil {
		return nil, err
	}

	if _, err := s.users.GetByEmail(ctx, req.Email); err == nil {
		return nil, &ConflictError{Message: "email already registered"}
	} else if !errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.config.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         models.UserRoleAdmin,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return nil, &ConflictError{Message: "email already registered"}
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	resp, err := s.issue(user)
	if err != nil {
		return nil, err
	}

	actor.UserID = &user.ID
	s.auditor.LogMutation(ctx, actor, ActionRegister, "user", user.ID, map[string]interface{}{"email": user.Email})

	return resp, nil
}

// Me returns the user record of an authenticated principal
func (s *AuthService) Me(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, &NotFoundError{Resource: "user"}
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return user, nil
}

// RecentActivity returns the latest audit events of a user, newest first
func (s *AuthService) RecentActivity(ctx context.Context, userID int64, limit int) ([]models.AuditLog, error) {
	switch {
	case limit <= 0:
		limit = 20
	case limit > 100:
		limit = 100
	}
	return s.activity.GetRecentEvents(ctx, userID, limit)
}

func (s *AuthService) issue(user *models.User) (*models.AuthResponse, error) {
	token, expiresAt, err := s.jwtService.GenerateToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &models.AuthResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user,
	}, nil
}
