package models

import "time"

// AuditLog is a row of audit_logs
type AuditLog struct {
	ID         int64     `json:"id" db:"id"`
	UserID     *int64    `json:"userId" db:"user_id"`
	Action     string    `json:"action" db:"action"`
	EntityType string    `json:"entityType" db:"entity_type"`
	EntityID   *int64    `json:"entityId" db:"entity_id"`
	IPAddress  string    `json:"ipAddress" db:"ip_address"`
	UserAgent  string    `json:"userAgent" db:"user_agent"`
	RequestID  string    `json:"requestId" db:"request_id"`
	Details    JSONMap   `json:"details" db:"details"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
}
