package database

import (
	"context"
	"fmt"
)

// schema is applied in order inside one transaction. Every statement is
// idempotent so RunMigrations is safe on every start.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            BIGSERIAL PRIMARY KEY,
		email         VARCHAR(255) NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		role          VARCHAR(20) NOT NULL DEFAULT 'ADMIN' CHECK (role IN ('ADMIN', 'ACCOUNTANT')),
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS vehicles (
		id         BIGSERIAL PRIMARY KEY,
		plate      VARCHAR(20) NOT NULL,
		brand      VARCHAR(100) NOT NULL,
		model      VARCHAR(100) NOT NULL,
		year       INTEGER NOT NULL,
		capacity   INTEGER NOT NULL DEFAULT 4,
		type       VARCHAR(50) NOT NULL DEFAULT 'STANDARD',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT vehicles_plate_key UNIQUE (plate)
	)`,
	`CREATE TABLE IF NOT EXISTS drivers (
		id          BIGSERIAL PRIMARY KEY,
		name        VARCHAR(255) NOT NULL,
		phone       VARCHAR(50) NOT NULL,
		email       VARCHAR(255),
		license_no  VARCHAR(100),
		is_external BOOLEAN NOT NULL DEFAULT FALSE,
		vehicle_id  BIGINT REFERENCES vehicles(id) ON DELETE SET NULL,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT drivers_external_without_vehicle CHECK (NOT is_external OR vehicle_id IS NULL)
	)`,
	`CREATE TABLE IF NOT EXISTS reservations (
		id                    BIGSERIAL PRIMARY KEY,
		from_location         VARCHAR(255) NOT NULL,
		to_location           VARCHAR(255) NOT NULL,
		travel_date           VARCHAR(50) NOT NULL,
		travel_time           VARCHAR(50) NOT NULL,
		phone                 VARCHAR(50) NOT NULL,
		flight_code           VARCHAR(50),
		passenger_count       INTEGER NOT NULL DEFAULT 1 CHECK (passenger_count >= 1),
		luggage_count         INTEGER NOT NULL DEFAULT 0 CHECK (luggage_count >= 0),
		status                VARCHAR(20) NOT NULL DEFAULT 'PENDING'
		                      CHECK (status IN ('PENDING', 'CONFIRMED', 'CANCELLED', 'COMPLETED')),
		price                 NUMERIC(12, 2),
		payment_status        VARCHAR(20) NOT NULL DEFAULT 'UNPAID'
		                      CHECK (payment_status IN ('UNPAID', 'PAID', 'PARTIALLY_PAID', 'REFUNDED')),
		driver_id             BIGINT REFERENCES drivers(id) ON DELETE SET NULL,
		is_external           BOOLEAN NOT NULL DEFAULT FALSE,
		external_driver_name  VARCHAR(255),
		external_driver_phone VARCHAR(50),
		created_at            TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at            TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT reservations_driver_exclusive CHECK (
			(is_external AND driver_id IS NULL)
			OR (NOT is_external AND external_driver_name IS NULL AND external_driver_phone IS NULL)
		)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_reservations_created_at ON reservations (created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_reservations_driver_id ON reservations (driver_id)`,
	`CREATE TABLE IF NOT EXISTS passengers (
		id             BIGSERIAL PRIMARY KEY,
		reservation_id BIGINT NOT NULL REFERENCES reservations(id) ON DELETE CASCADE,
		name           VARCHAR(255) NOT NULL,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_passengers_reservation_id ON passengers (reservation_id)`,
	`CREATE TABLE IF NOT EXISTS accounting_records (
		id             BIGSERIAL PRIMARY KEY,
		reservation_id BIGINT REFERENCES reservations(id) ON DELETE SET NULL,
		amount         NUMERIC(12, 2) NOT NULL CHECK (amount > 0),
		description    TEXT,
		type           VARCHAR(10) NOT NULL CHECK (type IN ('INCOME', 'EXPENSE')),
		payment_method VARCHAR(50),
		payment_date   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_accounting_records_payment_date ON accounting_records (payment_date DESC)`,
	`CREATE TABLE IF NOT EXISTS audit_logs (
		id          BIGSERIAL PRIMARY KEY,
		user_id     BIGINT,
		action      VARCHAR(100) NOT NULL,
		entity_type VARCHAR(50) NOT NULL,
		entity_id   BIGINT,
		ip_address  VARCHAR(64),
		user_agent  TEXT,
		request_id  VARCHAR(64),
		details     JSONB NOT NULL DEFAULT '{}'::jsonb,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_audit_logs_user_created ON audit_logs (user_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS login_attempts (
		id              BIGSERIAL PRIMARY KEY,
		identifier      VARCHAR(255) NOT NULL,
		identifier_type VARCHAR(10) NOT NULL,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_login_attempts_lookup ON login_attempts (identifier, identifier_type, created_at)`,
}

// Tables lists every application table, children first
var Tables = []string{
	"login_attempts",
	"audit_logs",
	"accounting_records",
	"passengers",
	"reservations",
	"drivers",
	"vehicles",
	"users",
}

// RunMigrations ensures all required tables and indexes exist
func RunMigrations(ctx context.Context, db DB) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin migration transaction: %w", err)
	}
	defer tx.Rollback()

	for i, stmt := range schema {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration step %d failed: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migrations: %w", err)
	}

	return nil
}
