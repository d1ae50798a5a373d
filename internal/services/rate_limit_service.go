package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/teraturizm/transfer-admin/internal/database"
)

// LoginLimiter throttles repeated failed logins
type LoginLimiter interface {
	CheckLoginAllowed(ctx context.Context, email, ip string) error
	RecordFailedLogin(ctx context.Context, email, ip string) error
	ClearFailedLogins(ctx context.Context, email string) error
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	MaxAttempts int           // failed logins allowed per identifier
	Window      time.Duration // sliding window the attempts are counted in
}

// RateLimitService counts failed logins per email and per client IP in the
// login_attempts table
type RateLimitService struct {
	db     database.DB
	config RateLimitConfig
}

// NewRateLimitService creates a new rate limit service
func NewRateLimitService(db database.DB, config RateLimitConfig) *RateLimitService {
	return &RateLimitService{
		db:     db,
		config: config,
	}
}

// CheckLoginAllowed returns a *RateLimitError when the email or the IP has
// reached the failed attempt limit within the window
func (s *RateLimitService) CheckLoginAllowed(ctx context.Context, email, ip string) error {
	email = normalizeEmail(email)

	if email != "" {
		count, lastAttempt, err := s.getAttemptCount(ctx, email, "email")
		if err != nil {
			return fmt.Errorf("failed to check email rate limit: %w", err)
		}

		if count >= s.config.MaxAttempts {
			retryAfter := lastAttempt.Add(s.config.Window)
			return &RateLimitError{
				Message:    fmt.Sprintf("Too many failed login attempts for this account. Please try again after %s", retryAfter.Format("15:04:05")),
				RetryAfter: retryAfter,
				Type:       "email",
			}
		}
	}

	if ip != "" {
		count, lastAttempt, err := s.getAttemptCount(ctx, ip, "ip")
		if err != nil {
			return fmt.Errorf("failed to check IP rate limit: %w", err)
		}

		if count >= s.config.MaxAttempts {
			retryAfter := lastAttempt.Add(s.config.Window)
			return &RateLimitError{
				Message:    fmt.Sprintf("Too many failed login attempts from this IP address. Please try again after %s", retryAfter.Format("15:04:05")),
				RetryAfter: retryAfter,
				Type:       "ip",
			}
		}
	}

	return nil
}

// getAttemptCount gets the number of failed attempts within the window
func (s *RateLimitService) getAttemptCount(ctx context.Context, identifier, identifierType string) (int, time.Time, error) {
	windowStart := time.Now().Add(-s.config.Window)

	query := `
		SELECT COUNT(*), COALESCE(MAX(created_at), NOW())
		FROM login_attempts
		WHERE identifier = $1
		  AND identifier_type = $2
		  AND created_at > $3
	`

	var count int
	var lastAttempt time.Time

	err := s.db.QueryRowxContext(ctx, query, identifier, identifierType, windowStart).Scan(&count, &lastAttempt)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return 0, time.Time{}, err
	}

	return count, lastAttempt, nil
}

// RecordFailedLogin records a failed attempt for the email and the IP
func (s *RateLimitService) RecordFailedLogin(ctx context.Context, email, ip string) error {
	if email = normalizeEmail(email); email != "" {
		if err := s.recordAttempt(ctx, email, "email"); err != nil {
			return fmt.Errorf("failed to record email attempt: %w", err)
		}
	}

	if ip != "" {
		if err := s.recordAttempt(ctx, ip, "ip"); err != nil {
			return fmt.Errorf("failed to record IP attempt: %w", err)
		}
	}

	return nil
}

// ClearFailedLogins forgets the failed attempts of an email after a successful login
func (s *RateLimitService) ClearFailedLogins(ctx context.Context, email string) error {
	query := `DELETE FROM login_attempts WHERE identifier = $1 AND identifier_type = 'email'`

	if _, err := s.db.ExecContext(ctx, query, normalizeEmail(email)); err != nil {
		return fmt.Errorf("failed to clear login attempts: %w", err)
	}

	return nil
}

// recordAttempt inserts a login attempt record
func (s *RateLimitService) recordAttempt(ctx context.Context, identifier, identifierType string) error {
	query := `
		INSERT INTO login_attempts (identifier, identifier_type, created_at)
		VALUES ($1, $2, NOW())
	`

	_, err := s.db.ExecContext(ctx, query, identifier, identifierType)
	return err
}

// CleanupExpiredAttempts removes attempts older than the window
func (s *RateLimitService) CleanupExpiredAttempts(ctx context.Context) (int64, error) {
	cutoffTime := time.Now().Add(-s.config.Window)

	result, err := s.db.ExecContext(ctx, `DELETE FROM login_attempts WHERE created_at < $1`, cutoffTime)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup login attempts: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
