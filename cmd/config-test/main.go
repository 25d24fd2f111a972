package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/chrissnell/timbercruise/pkg/config"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func main() {
	var (
		yamlFile   = flag.String("yaml", "", "Path to YAML configuration file")
		sqliteFile = flag.String("sqlite", "", "Path to SQLite configuration file")
	)
	flag.Parse()

	if *yamlFile == "" || *sqliteFile == "" {
		fmt.Fprintf(os.Stderr, "Usage: %s -yaml <config.yaml> -sqlite <config.db>\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}

	fmt.Println("Configuration Comparison Test")
	fmt.Println("===========================")

	fmt.Printf("Loading YAML configuration: %s\n", *yamlFile)
	yamlConfig, err := config.NewYAMLProvider(*yamlFile).LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading YAML config: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Loading SQLite configuration: %s\n", *sqliteFile)
	sqliteProvider, err := config.NewSQLiteProvider(*sqliteFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating SQLite provider: %v\n", err)
		os.Exit(1)
	}
	defer sqliteProvider.Close()

	sqliteConfig, err := sqliteProvider.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading SQLite config: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("\nComparison Results:")
	fmt.Println("==================")

	opts := []cmp.Option{
		cmpopts.EquateEmpty(),
		cmpopts.SortSlices(func(a, b config.SpeciesData) bool { return a.Code < b.Code }),
	}

	failed := false
	sections := []struct {
		name       string
		yaml, sqlt any
	}{
		{"Species", yamlConfig.Species, sqliteConfig.Species},
		{"Server", yamlConfig.Server, sqliteConfig.Server},
		{"Storage", yamlConfig.Storage, sqliteConfig.Storage},
		{"Logging", yamlConfig.Logging, sqliteConfig.Logging},
	}
	for _, s := range sections {
		if diff := cmp.Diff(s.yaml, s.sqlt, opts...); diff != "" {
			failed = true
			fmt.Printf("✗ %s differs (-yaml +sqlite):\n%s\n", s.name, diff)
		} else {
			fmt.Printf("✓ %s matches\n", s.name)
		}
	}

	if failed {
		os.Exit(1)
	}
	fmt.Println("\nConfigurations are equivalent")
}
