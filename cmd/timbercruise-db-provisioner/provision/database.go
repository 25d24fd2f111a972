package provision

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	_ "github.com/jackc/pgx/v5/stdlib"
)

func ident(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

func literal(v string) string {
	return "'" + strings.ReplaceAll(v, "'", "''") + "'"
}

func open(connStr string) (*sql.DB, error) {
	db, err := sql.Open("pgx", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	return db, nil
}

// CreateDatabase creates the PostgreSQL database with UTF8 encoding
func CreateDatabase(cfg *Config) error {
	fmt.Println("🗄️  Creating Database")

	db, err := open(cfg.BuildConnString("postgres"))
	if err != nil {
		return err
	}
	defer db.Close()

	createDBSQL := fmt.Sprintf(`CREATE DATABASE %s ENCODING 'UTF8' TEMPLATE template0`, ident(cfg.DBName))
	if _, err := db.Exec(createDBSQL); err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}

	fmt.Printf("✅ Database '%s' created with UTF8 encoding\n", cfg.DBName)
	fmt.Println()
	return nil
}

// CreateUser creates the service user and grants it the database and the
// public schema
func CreateUser(cfg *Config) error {
	fmt.Println("👤 Creating User")

	db, err := open(cfg.BuildConnString("postgres"))
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := db.Exec(fmt.Sprintf("CREATE USER %s WITH PASSWORD %s", ident(cfg.DBUser), literal(cfg.DBPassword))); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	fmt.Printf("✅ User '%s' created\n", cfg.DBUser)

	if _, err := db.Exec(fmt.Sprintf("GRANT ALL PRIVILEGES ON DATABASE %s TO %s", ident(cfg.DBName), ident(cfg.DBUser))); err != nil {
		return fmt.Errorf("failed to grant database privileges: %w", err)
	}
	fmt.Printf("✅ Database privileges granted\n")

	targetDB, err := open(cfg.BuildConnString(cfg.DBName))
	if err != nil {
		return err
	}
	defer targetDB.Close()

	for _, stmt := range []string{
		"GRANT ALL ON SCHEMA public TO %s",
		"ALTER DEFAULT PRIVILEGES IN SCHEMA public GRANT ALL ON TABLES TO %s",
		"ALTER DEFAULT PRIVILEGES IN SCHEMA public GRANT ALL ON SEQUENCES TO %s",
	} {
		if _, err := targetDB.Exec(fmt.Sprintf(stmt, ident(cfg.DBUser))); err != nil {
			return fmt.Errorf("failed to grant schema privileges: %w", err)
		}
	}
	fmt.Printf("✅ Schema and default privileges granted\n")
	fmt.Println()
	return nil
}

// DropExistingResources drops the database and user if they exist
func DropExistingResources(cfg *Config) error {
	fmt.Println("🗑️  Dropping Existing Resources")

	db, err := open(cfg.BuildConnString("postgres"))
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := db.Exec(fmt.Sprintf("DROP DATABASE IF EXISTS %s WITH (FORCE)", ident(cfg.DBName))); err != nil {
		return fmt.Errorf("failed to drop database: %w", err)
	}
	fmt.Printf("✅ Database '%s' dropped\n", cfg.DBName)

	if _, err := db.Exec(fmt.Sprintf("DROP USER IF EXISTS %s", ident(cfg.DBUser))); err != nil {
		return fmt.Errorf("failed to drop user: %w", err)
	}
	fmt.Printf("✅ User '%s' dropped\n", cfg.DBUser)
	return nil
}
