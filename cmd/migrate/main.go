package main

import (
	"database/sql"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/chrissnell/timbercruise/internal/log"
	"github.com/chrissnell/timbercruise/pkg/config"
	"github.com/chrissnell/timbercruise/pkg/migrate"
	_ "modernc.org/sqlite"
)

func main() {
	configDB := flag.String("config", "", "Path to the timbercruise SQLite config database")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Usage = usage
	flag.Parse()

	if err := log.Init(*debug); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if *configDB == "" {
		fmt.Fprintln(os.Stderr, "Error: -config is required")
		usage()
		os.Exit(1)
	}

	db, err := sql.Open("sqlite", *configDB)
	if err != nil {
		log.Errorf("failed to open %s: %v", *configDB, err)
		os.Exit(1)
	}
	defer db.Close()

	migrator := config.NewMigrator(db)
	migrator.Logf = log.Infof

	if err := run(migrator, flag.Args(), os.Stdout); err != nil {
		log.Errorf("migrate: %v", err)
		os.Exit(1)
	}
}

// run executes one migration command against the config schema. With no
// arguments it applies every pending migration.
func run(migrator *migrate.Migrator, args []string, out io.Writer) error {
	command := "up"
	if len(args) > 0 {
		command = args[0]
	}

	switch command {
	case "up":
		return migrator.MigrateUp()
	case "down", "to":
		if len(args) != 2 {
			return fmt.Errorf("%s needs a target version", command)
		}
		target, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid target version %q: %w", args[1], err)
		}
		if command == "down" {
			return migrator.MigrateDown(target)
		}
		return migrator.MigrateTo(target)
	case "version":
		version, err := migrator.GetCurrentVersion()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Current version: %d\n", version)
		return nil
	case "status":
		return showStatus(migrator, out)
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

func showStatus(migrator *migrate.Migrator, out io.Writer) error {
	currentVersion, err := migrator.GetCurrentVersion()
	if err != nil {
		return fmt.Errorf("failed to get current version: %w", err)
	}

	pending, err := migrator.GetPendingMigrations()
	if err != nil {
		return fmt.Errorf("failed to get pending migrations: %w", err)
	}

	fmt.Fprintf(out, "Current version: %d\n", currentVersion)
	fmt.Fprintf(out, "Pending migrations: %d\n", len(pending))
	for _, migration := range pending {
		fmt.Fprintf(out, "  %d: %s\n", migration.Version, migration.Name)
	}
	return nil
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: migrate -config timbercruise.db [command]")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  up           Apply pending config schema migrations (default)")
	fmt.Fprintln(os.Stderr, "  down N       Roll the config schema back to version N")
	fmt.Fprintln(os.Stderr, "  to N         Move the config schema to version N")
	fmt.Fprintln(os.Stderr, "  version      Print the applied schema version")
	fmt.Fprintln(os.Stderr, "  status       Print the applied version and pending migrations")
	fmt.Fprintln(os.Stderr)
	flag.PrintDefaults()
}
