package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/teraturizm/transfer-admin/internal/config"
	"github.com/teraturizm/transfer-admin/internal/database"
	"github.com/teraturizm/transfer-admin/internal/services"
)

func main() {
	var (
		dbURLFlag      string
		confirm        bool
		pruneAuditDays int
		pruneAttempts  bool
		loginWindow    int
	)
	flag.StringVar(&dbURLFlag, "database-url", "", "PostgreSQL connection string (overrides DATABASE_URL)")
	flag.BoolVar(&confirm, "yes", false, "really truncate every application table")
	flag.IntVar(&pruneAuditDays, "prune-audit-days", 0, "only delete audit logs older than this many days")
	flag.BoolVar(&pruneAttempts, "prune-login-attempts", false, "only delete login attempts outside the throttle window")
	flag.IntVar(&loginWindow, "login-window-minutes", 15, "throttle window used by -prune-login-attempts")
	flag.Parse()

	_ = godotenv.Load()

	dbURL := dbURLFlag
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL")
	}
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set and -database-url was not provided")
	}

	pruning := pruneAuditDays > 0 || pruneAttempts
	if !pruning && !confirm {
		log.Fatal("refusing to truncate without -yes")
	}

	db, err := database.NewConnection(config.DatabaseConfig{
		URL:                dbURL,
		MaxConnections:     2,
		MaxIdleConnections: 1,
	})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if pruning {
		if err := prune(ctx, db, pruneAuditDays, pruneAttempts, loginWindow); err != nil {
			log.Fatalf("prune failed: %v", err)
		}
		return
	}

	fmt.Println("Connected to database. Truncating tables...")
	if err := truncateAll(ctx, db); err != nil {
		log.Fatalf("failed to truncate tables: %v", err)
	}
	fmt.Println("All data cleared successfully (tables truncated, identities reset).")

	fmt.Println("Post-clear row counts:")
	for _, t := range database.Tables {
		var count int
		if err := db.GetContext(ctx, &count, fmt.Sprintf("SELECT COUNT(*) FROM %s", t)); err != nil {
			fmt.Printf("  %s: error: %v\n", t, err)
			continue
		}
		fmt.Printf("  %s: %d\n", t, count)
	}
}

func truncateAll(ctx context.Context, db database.DB) error {
	query := fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", strings.Join(database.Tables, ", "))
	_, err := db.ExecContext(ctx, query)
	return err
}

func prune(ctx context.Context, db database.DB, auditDays int, attempts bool, windowMinutes int) error {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	if auditDays > 0 {
		audit := services.NewAuditService(db, logger, true)
		removed, err := audit.CleanupOldAuditLogs(ctx, time.Duration(auditDays)*24*time.Hour)
		if err != nil {
			return err
		}
		fmt.Printf("Removed %d audit log rows older than %d days\n", removed, auditDays)
	}

	if attempts {
		limiter := services.NewRateLimitService(db, services.RateLimitConfig{
			MaxAttempts: 1,
			Window:      time.Duration(windowMinutes) * time.Minute,
		})
		removed, err := limiter.CleanupExpiredAttempts(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Removed %d expired login attempts\n", removed)
	}

	return nil
}
