package services

import "github.com/teraturizm/transfer-admin/internal/models"

// Actor describes who performs an operation and from where. UserID is nil
// for anonymous callers such as public reservation submissions.
type Actor struct {
	UserID    *int64
	Email     string
	Role      models.UserRole
	IPAddress string
	UserAgent string
	RequestID string
}
