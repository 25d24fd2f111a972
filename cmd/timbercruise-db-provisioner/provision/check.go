package provision

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/chrissnell/timbercruise/internal/database"
	"go.uber.org/zap"
)

// PreflightChecks runs all pre-flight validation checks
func PreflightChecks(cfg *Config) error {
	fmt.Println("🔍 Pre-flight Checks")

	version, err := checkPostgreSQLConnection(cfg)
	if err != nil {
		return fmt.Errorf("❌ PostgreSQL connection failed: %w", err)
	}
	fmt.Printf("✅ PostgreSQL connection successful (%s)\n", version)

	if _, err := os.Stat(cfg.ConfigDBPath); err != nil {
		return fmt.Errorf("❌ Config database check failed: %w", err)
	}
	fmt.Printf("✅ Config database found: %s\n", cfg.ConfigDBPath)

	conflicts, err := checkExistingResources(cfg)
	if err != nil {
		return fmt.Errorf("❌ Failed to check existing resources: %w", err)
	}
	if conflicts {
		return fmt.Errorf("❌ Database or user already exists (use -reprovision to replace them)")
	}
	fmt.Println("✅ No existing database/user conflicts")

	fmt.Println()
	return nil
}

func checkPostgreSQLConnection(cfg *Config) (string, error) {
	db, err := open(cfg.BuildConnString("postgres"))
	if err != nil {
		return "", err
	}
	defer db.Close()

	var version string
	if err := db.QueryRow("SHOW server_version").Scan(&version); err != nil {
		return "", err
	}
	return version, nil
}

func checkExistingResources(cfg *Config) (bool, error) {
	db, err := open(cfg.BuildConnString("postgres"))
	if err != nil {
		return false, err
	}
	defer db.Close()

	var dbExists, userExists bool
	if err := db.QueryRow("SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)", cfg.DBName).Scan(&dbExists); err != nil {
		return false, fmt.Errorf("failed to check database: %w", err)
	}
	if err := db.QueryRow("SELECT EXISTS(SELECT 1 FROM pg_roles WHERE rolname = $1)", cfg.DBUser).Scan(&userExists); err != nil {
		return false, fmt.Errorf("failed to check user: %w", err)
	}

	if dbExists {
		fmt.Printf("⚠️  Database '%s' already exists\n", cfg.DBName)
	}
	if userExists {
		fmt.Printf("⚠️  User '%s' already exists\n", cfg.DBUser)
	}
	return dbExists || userExists, nil
}

// TestConnection connects the way timbercruise does, creating the profile
// tables, and runs a health ping
func TestConnection(connStr string) error {
	client := database.NewClient(connStr, zap.NewNop().Sugar())
	if err := client.Connect(); err != nil {
		return err
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return client.Ping(ctx)
}
