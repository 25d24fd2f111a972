package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/chrissnell/timbercruise/cmd/timbercruise-db-provisioner/provision"
	"golang.org/x/term"
)

// Color constants
const (
	colorReset        = "\033[0m"
	colorBrightCyan   = "\033[96m"
	colorBrightYellow = "\033[93m"
	colorBold         = "\033[1m"
)

const (
	DefaultDBName    = "timbercruise"
	DefaultDBUser    = "timbercruise"
	DefaultHost      = "localhost"
	DefaultPort      = 5432
	DefaultSSLMode   = "prefer"
	DefaultConfigDB  = "config.db"
	DefaultAdminUser = "postgres"
)

func main() {
	initCmd := flag.NewFlagSet("init", flag.ExitOnError)
	statusCmd := flag.NewFlagSet("status", flag.ExitOnError)
	testCmd := flag.NewFlagSet("test", flag.ExitOnError)

	// Init command flags
	dbName := initCmd.String("db-name", DefaultDBName, "Database name to create")
	dbUser := initCmd.String("db-user", DefaultDBUser, "Database user to create")
	postgresHost := initCmd.String("postgres-host", DefaultHost, "PostgreSQL host")
	postgresPort := initCmd.Int("postgres-port", DefaultPort, "PostgreSQL port")
	postgresAdmin := initCmd.String("postgres-admin", DefaultAdminUser, "PostgreSQL admin user")
	postgresAdminPassword := initCmd.String("postgres-admin-password", "", "PostgreSQL admin password (or use POSTGRES_ADMIN_PASSWORD env var)")
	sslMode := initCmd.String("ssl-mode", DefaultSSLMode, "SSL mode (disable, require, prefer)")
	configDB := initCmd.String("config-db", DefaultConfigDB, "Path to timbercruise config.db")
	reprovision := initCmd.Bool("reprovision", false, "Drop existing database and user before provisioning (DESTRUCTIVE)")

	statusConfigDB := statusCmd.String("config-db", DefaultConfigDB, "Path to timbercruise config.db")
	testConfigDB := testCmd.String("config-db", DefaultConfigDB, "Path to timbercruise config.db")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "init":
		initCmd.Parse(os.Args[2:])
		cfg := &provision.Config{
			PostgresHost:     *postgresHost,
			PostgresPort:     *postgresPort,
			PostgresAdmin:    *postgresAdmin,
			PostgresPassword: *postgresAdminPassword,
			DBName:           *dbName,
			DBUser:           *dbUser,
			SSLMode:          *sslMode,
			ConfigDBPath:     *configDB,
		}
		runInit(cfg, *reprovision)

	case "status":
		statusCmd.Parse(os.Args[2:])
		runStatus(*statusConfigDB)

	case "test":
		testCmd.Parse(os.Args[2:])
		runTest(*testConfigDB)

	default:
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("timbercruise profile database provisioner")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  timbercruise-db-provisioner init [flags]")
	fmt.Println("  timbercruise-db-provisioner status [flags]")
	fmt.Println("  timbercruise-db-provisioner test [flags]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  init     Create the profile database and user, and record them in config.db")
	fmt.Println("  status   Show the profile database configured in config.db")
	fmt.Println("  test     Connect to the configured profile database and create its tables")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Printf("  %sexport POSTGRES_ADMIN_PASSWORD='yourpassword'%s\n", colorBrightCyan, colorReset)
	fmt.Printf("  %stimbercruise-db-provisioner init -config-db /etc/timbercruise/config.db%s\n", colorBrightCyan, colorReset)
	fmt.Println()
	fmt.Println("  # Re-provision (drop and recreate)")
	fmt.Println("  timbercruise-db-provisioner init -reprovision")
}

func runInit(cfg *provision.Config, reprovision bool) {
	fmt.Println("🚀 timbercruise Profile Database Provisioner")
	fmt.Println("===========================================")
	fmt.Println()

	if cfg.PostgresPassword == "" {
		cfg.PostgresPassword = os.Getenv("POSTGRES_ADMIN_PASSWORD")
	}
	if cfg.PostgresPassword == "" && term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Printf("PostgreSQL password for %s: ", cfg.PostgresAdmin)
		pw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			fmt.Fprintf(os.Stderr, "❌ Failed to read password: %v\n", err)
			os.Exit(1)
		}
		cfg.PostgresPassword = string(pw)
	}

	fmt.Println("Configuration:")
	fmt.Printf("  PostgreSQL Host: %s:%d\n", cfg.PostgresHost, cfg.PostgresPort)
	fmt.Printf("  Database Name: %s\n", cfg.DBName)
	fmt.Printf("  Database User: %s\n", cfg.DBUser)
	fmt.Printf("  SSL Mode: %s\n", cfg.SSLMode)
	fmt.Printf("  Config DB: %s\n", cfg.ConfigDBPath)
	fmt.Println()

	dbPassword, err := provision.GeneratePassword(provision.PasswordLength)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Failed to generate password: %v\n", err)
		os.Exit(1)
	}
	cfg.DBPassword = dbPassword

	if reprovision {
		fmt.Println("⚠️  DESTRUCTIVE OPERATION WARNING")
		fmt.Println()
		fmt.Printf("This will DROP the following resources if they exist:\n")
		fmt.Printf("  • Database: %s\n", cfg.DBName)
		fmt.Printf("  • User: %s\n", cfg.DBUser)
		fmt.Println()
		fmt.Println("⚠️  ALL STORED PROFILE RUNS WILL BE PERMANENTLY DELETED")
		fmt.Println()

		reader := bufio.NewReader(os.Stdin)
		fmt.Print("Type 'yes' to confirm you understand and want to proceed: ")
		confirmation, _ := reader.ReadString('\n')
		if strings.TrimSpace(confirmation) != "yes" {
			fmt.Println("❌ Operation cancelled")
			os.Exit(0)
		}
		fmt.Println()

		if err := provision.DropExistingResources(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "❌ Failed to drop existing resources: %v\n", err)
			os.Exit(1)
		}
		fmt.Println()
	}

	if err := provision.PreflightChecks(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	if err := provision.CreateDatabase(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "❌ Failed to create database: %v\n", err)
		os.Exit(1)
	}

	if err := provision.CreateUser(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "❌ Failed to create user: %v\n", err)
		os.Exit(1)
	}

	provision.DisplayPasswordWarning(dbPassword)

	if err := provision.UpdateConfigDB(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "❌ Failed to update config database: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("🔍 Verifying Connection")
	if err := provision.TestConnection(cfg.ServiceConnString()); err != nil {
		fmt.Fprintf(os.Stderr, "❌ Connection test failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("✅ Connection verified and profile tables created")
	fmt.Println()

	fmt.Println("✅ Provisioning Complete!")
	fmt.Println()
	fmt.Printf("%s%sNext Steps:%s\n", colorBold, colorBrightYellow, colorReset)
	fmt.Println("  Start timbercruise:")
	fmt.Printf("     %s%s./timbercruise -config-backend sqlite -config %s%s\n", colorBold, colorBrightCyan, cfg.ConfigDBPath, colorReset)
	fmt.Println()
}

func runStatus(configDB string) {
	fmt.Println("📊 Current Profile Database Configuration")
	fmt.Println("=========================================")
	fmt.Println()

	connStr, err := provision.GetStorageConfig(configDB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Failed to read configuration: %v\n", err)
		os.Exit(1)
	}

	// Never echo the password
	var shown []string
	for _, field := range strings.Fields(connStr) {
		if strings.HasPrefix(field, "password=") {
			field = "password=********"
		}
		shown = append(shown, field)
	}
	fmt.Println(strings.Join(shown, "\n"))
	fmt.Println()
}

func runTest(configDB string) {
	fmt.Println("🔍 Testing Profile Database Connection")
	fmt.Println("======================================")
	fmt.Println()

	connStr, err := provision.GetStorageConfig(configDB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Failed to read configuration: %v\n", err)
		os.Exit(1)
	}

	if err := provision.TestConnection(connStr); err != nil {
		fmt.Fprintf(os.Stderr, "❌ Connection test failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("✅ Connection successful")
	fmt.Println("✅ Profile tables present")
	fmt.Println()
}
