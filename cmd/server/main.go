package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/teraturizm/transfer-admin/internal/config"
	"github.com/teraturizm/transfer-admin/internal/database"
	"github.com/teraturizm/transfer-admin/internal/handlers"
	"github.com/teraturizm/transfer-admin/internal/services"
	"github.com/teraturizm/transfer-admin/pkg/jwt"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	logger.Info("Starting transfer admin backend")
	logger.Infof("Version: %s, Build Time: %s", version, buildTime)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	logLevel, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.Warn("Invalid log level, using INFO")
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	logger.Info("Connecting to database...")
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Info("Database connection established")

	if cfg.Database.AutoMigrate {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		err := database.RunMigrations(ctx, db)
		cancel()
		if err != nil {
			logger.Fatalf("Failed to run migrations: %v", err)
		}
		logger.Info("Database schema is up to date")
	}

	location, err := time.LoadLocation(cfg.Server.Timezone)
	if err != nil {
		logger.WithError(err).Warnf("Unknown timezone %q, using local time", cfg.Server.Timezone)
		location = time.Local
	}

	// Repositories
	userRepository := database.NewUserRepository(db)
	vehicleRepository := database.NewVehicleRepository(db)
	driverRepository := database.NewDriverRepository(db)
	reservationRepository := database.NewReservationRepository(db)
	accountingRepository := database.NewAccountingRepository(db)

	// Services
	jwtService := jwt.NewService(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Expiry)
	auditService := services.NewAuditService(db, logger, cfg.Security.EnableAuditLog)
	rateLimitService := services.NewRateLimitService(db, services.RateLimitConfig{
		MaxAttempts: cfg.Auth.LoginMaxAttempts,
		Window:      time.Duration(cfg.Auth.LoginWindowMinutes) * time.Minute,
	})
	authService := services.NewAuthService(
		userRepository,
		rateLimitService,
		jwtService,
		auditService,
		auditService,
		logger,
		services.AuthConfig{
			BcryptCost:        cfg.Security.BcryptCost,
			AllowRegistration: cfg.Auth.AllowRegistration,
		},
	)
	reservationService := services.NewReservationService(reservationRepository, driverRepository, auditService, logger)
	accountingService := services.NewAccountingService(accountingRepository, reservationRepository, auditService, logger, location)
	fleetService := services.NewFleetService(driverRepository, vehicleRepository, auditService, logger)
	logger.Info("Services initialized")

	router, err := handlers.NewRouter(handlers.RouterDeps{
		Config:       cfg,
		Logger:       logger,
		JWT:          jwtService,
		DB:           db,
		Version:      version,
		Auth:         authService,
		Reservations: reservationService,
		Accounting:   accountingService,
		Fleet:        fleetService,
	})
	if err != nil {
		logger.Fatalf("Failed to build router: %v", err)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Infof("Server listening on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited")
}
