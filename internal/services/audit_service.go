package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/teraturizm/transfer-admin/internal/database"
	"github.com/teraturizm/transfer-admin/internal/models"
	"github.com/teraturizm/transfer-admin/internal/utils"
)

// Audit actions
const (
	ActionLoginSuccess      = "login_success"
	ActionLoginFailed       = "login_failed"
	ActionRegister          = "register"
	ActionReservationCreate = "reservation_create"
	ActionReservationUpdate = "reservation_update"
	ActionReservationDelete = "reservation_delete"
	ActionAccountingCreate  = "accounting_create"
	ActionDriverCreate      = "driver_create"
	ActionVehicleCreate     = "vehicle_create"
)

// Auditor records security and data events. Implementations must not fail
// the calling operation.
type Auditor interface {
	LogLogin(ctx context.Context, actor Actor, userID *int64, email string, success bool, reason string)
	LogMutation(ctx context.Context, actor Actor, action, entityType string, entityID int64, details map[string]interface{})
}

// AuditService handles audit logging for security events
type AuditService struct {
	db      database.DB
	logger  *logrus.Logger
	enabled bool
}

// NewAuditService creates a new audit service. A disabled service only logs.
func NewAuditService(db database.DB, logger *logrus.Logger, enabled bool) *AuditService {
	return &AuditService{
		db:      db,
		logger:  logger,
		enabled: enabled,
	}
}

// AuditEvent represents an event to be logged
type AuditEvent struct {
	UserID     *int64 // nil for pre-authentication events
	Action     string
	EntityType string
	EntityID   *int64
	IPAddress  string
	UserAgent  string
	RequestID  string
	Details    map[string]interface{}
}

// LogLogin logs a login attempt
func (s *AuditService) LogLogin(ctx context.Context, actor Actor, userID *int64, email string, success bool, reason string) {
	details := map[string]interface{}{
		"email":       email,
		"success":     success,
		"device_info": utils.ParseUserAgent(actor.UserAgent),
	}
	if reason != "" {
		details["reason"] = reason
	}

	action := ActionLoginFailed
	if success {
		action = ActionLoginSuccess
	}

	s.record(ctx, AuditEvent{
		UserID:     userID,
		Action:     action,
		EntityType: "user",
		EntityID:   userID,
		IPAddress:  actor.IPAddress,
		UserAgent:  actor.UserAgent,
		RequestID:  actor.RequestID,
		Details:    details,
	})
}

// LogMutation logs a create, update or delete performed by actor
func (s *AuditService) LogMutation(ctx context.Context, actor Actor, action, entityType string, entityID int64, details map[string]interface{}) {
	if details == nil {
		details = make(map[string]interface{})
	}
	details["device_info"] = utils.ParseUserAgent(actor.UserAgent)
	if actor.Role != "" {
		details["role"] = actor.Role
	}

	s.record(ctx, AuditEvent{
		UserID:     actor.UserID,
		Action:     action,
		EntityType: entityType,
		EntityID:   &entityID,
		IPAddress:  actor.IPAddress,
		UserAgent:  actor.UserAgent,
		RequestID:  actor.RequestID,
		Details:    details,
	})
}

func (s *AuditService) record(ctx context.Context, event AuditEvent) {
	if !s.enabled {
		s.logger.WithFields(logrus.Fields{
			"action":      event.Action,
			"entity_type": event.EntityType,
			"request_id":  event.RequestID,
		}).Debug("Audit logging disabled, event not persisted")
		return
	}

	if err := s.logEvent(ctx, event); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"action":     event.Action,
			"request_id": event.RequestID,
		}).Warn("Failed to write audit log")
	}
}

// logEvent writes to the audit_logs table
func (s *AuditService) logEvent(ctx context.Context, event AuditEvent) error {
	query := `
		INSERT INTO audit_logs (user_id, action, entity_type, entity_id, ip_address, user_agent, request_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
	`

	_, err := s.db.ExecContext(ctx, query,
		event.UserID,
		event.Action,
		event.EntityType,
		event.EntityID,
		event.IPAddress,
		event.UserAgent,
		event.RequestID,
		models.JSONMap(event.Details),
	)
	if err != nil {
		return fmt.Errorf("failed to log audit event: %w", err)
	}

	return nil
}

// GetRecentEvents retrieves recent audit events for a user
func (s *AuditService) GetRecentEvents(ctx context.Context, userID int64, limit int) ([]models.AuditLog, error) {
	query := `
		SELECT id, user_id, action, entity_type, entity_id,
		       COALESCE(ip_address, '') AS ip_address,
		       COALESCE(user_agent, '') AS user_agent,
		       COALESCE(request_id, '') AS request_id,
		       details, created_at
		FROM audit_logs
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	events := []models.AuditLog{}
	if err := s.db.SelectContext(ctx, &events, query, userID, limit); err != nil {
		return nil, fmt.Errorf("failed to get recent events: %w", err)
	}

	return events, nil
}

// CleanupOldAuditLogs removes audit logs older than the specified duration
func (s *AuditService) CleanupOldAuditLogs(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoffTime := time.Now().Add(-olderThan)

	result, err := s.db.ExecContext(ctx, `DELETE FROM audit_logs WHERE created_at < $1`, cutoffTime)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup old audit logs: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected, nil
}
