package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/teraturizm/transfer-admin/internal/config"
	"github.com/teraturizm/transfer-admin/internal/database"
	"github.com/teraturizm/transfer-admin/internal/models"
	"golang.org/x/crypto/bcrypt"
)

const defaultPassword = "teraturizm123"

func main() {
	var dbURLFlag, passwordFlag string
	flag.StringVar(&dbURLFlag, "database-url", "", "PostgreSQL connection string (overrides DATABASE_URL)")
	flag.StringVar(&passwordFlag, "password", "", "password of the seeded accounts (overrides SEED_PASSWORD)")
	flag.Parse()

	_ = godotenv.Load()

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	dbURL := firstNonEmpty(dbURLFlag, os.Getenv("DATABASE_URL"))
	if dbURL == "" {
		logger.Fatal("DATABASE_URL is not set and -database-url was not provided")
	}
	password := firstNonEmpty(passwordFlag, os.Getenv("SEED_PASSWORD"), defaultPassword)
	if password == defaultPassword {
		logger.Warn("Seeding with the default password, change it before going live")
	}

	db, err := database.NewConnection(config.DatabaseConfig{
		URL:                dbURL,
		MaxConnections:     2,
		MaxIdleConnections: 1,
	})
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := database.RunMigrations(ctx, db); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}

	if err := seed(ctx, db, password, logger); err != nil {
		logger.Fatalf("Seeding failed: %v", err)
	}
	logger.Info("Seed completed")
}

func seed(ctx context.Context, db database.DB, password string, logger *logrus.Logger) error {
	users := database.NewUserRepository(db)
	vehicles := database.NewVehicleRepository(db)
	drivers := database.NewDriverRepository(db)

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	for _, u := range []models.User{
		{Email: "teraturizm", Role: models.UserRoleAdmin},
		{Email: "muhasebe", Role: models.UserRoleAccountant},
	} {
		u.PasswordHash = string(hash)
		if err := users.Upsert(ctx, &u); err != nil {
			return err
		}
		logger.WithFields(logrus.Fields{"user_id": u.ID, "email": u.Email, "role": u.Role}).Info("User ready")
	}

	vito := &models.Vehicle{Plate: "34ABC123", Brand: "Mercedes", Model: "Vito", Year: 2022, Capacity: 7, Type: "VIP"}
	sprinter := &models.Vehicle{Plate: "34XYZ789", Brand: "Mercedes", Model: "Sprinter", Year: 2021, Capacity: 12, Type: "MINIBUS"}
	for _, v := range []*models.Vehicle{vito, sprinter} {
		if err := vehicles.UpsertByPlate(ctx, v); err != nil {
			return err
		}
		logger.WithFields(logrus.Fields{"vehicle_id": v.ID, "plate": v.Plate}).Info("Vehicle ready")
	}

	for _, d := range []*models.Driver{
		{Name: "Ahmet Yılmaz", Phone: "05321234567", Email: strPtr("ahmet@example.com"), LicenseNo: strPtr("A123456"), VehicleID: &vito.ID},
		{Name: "Mehmet Kaya", Phone: "05337654321", Email: strPtr("mehmet@example.com"), LicenseNo: strPtr("B654321"), VehicleID: &sprinter.ID},
		{Name: "Ali Demir", Phone: "05349876543", IsExternal: true},
	} {
		existing, err := drivers.GetByPhone(ctx, d.Phone)
		if err == nil {
			logger.WithFields(logrus.Fields{"driver_id": existing.ID, "name": existing.Name}).Info("Driver already present")
			continue
		}
		if !errors.Is(err, database.ErrNotFound) {
			return err
		}
		if err := drivers.Create(ctx, d); err != nil {
			return err
		}
		logger.WithFields(logrus.Fields{"driver_id": d.ID, "name": d.Name}).Info("Driver created")
	}

	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func strPtr(s string) *string { return &s }
