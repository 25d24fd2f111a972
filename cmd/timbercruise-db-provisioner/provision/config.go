package provision

import (
	"fmt"
	"strings"

	"github.com/chrissnell/timbercruise/pkg/config"
)

// Config holds the provisioning configuration
type Config struct {
	PostgresHost     string
	PostgresPort     int
	PostgresAdmin    string
	PostgresPassword string
	DBName           string
	DBUser           string
	DBPassword       string
	SSLMode          string
	ConfigDBPath     string
}

// quoteDSN quotes a value for a libpq key/value connection string
func quoteDSN(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

// BuildConnString returns an admin connection string for the given database
func (c *Config) BuildConnString(dbName string) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgresHost, c.PostgresPort, quoteDSN(c.PostgresAdmin), quoteDSN(c.PostgresPassword), quoteDSN(dbName), c.SSLMode)
}

// ServiceConnString returns the connection string timbercruise uses for
// the profile database
func (c *Config) ServiceConnString() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgresHost, c.PostgresPort, quoteDSN(c.DBUser), quoteDSN(c.DBPassword), quoteDSN(c.DBName), c.SSLMode)
}

// UpdateConfigDB stores the profile database connection string in the
// timbercruise SQLite config, keeping every other setting
func UpdateConfigDB(cfg *Config) error {
	fmt.Println("⚙️  Updating Configuration")

	provider, err := config.NewSQLiteProvider(cfg.ConfigDBPath)
	if err != nil {
		return fmt.Errorf("failed to open config database: %w", err)
	}
	defer provider.Close()

	data, err := provider.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config database: %w", err)
	}

	data.Storage.TimescaleDB = &config.TimescaleDBData{ConnectionString: cfg.ServiceConnString()}
	if err := provider.SaveConfig(data); err != nil {
		return fmt.Errorf("failed to update storage config: %w", err)
	}

	fmt.Println("✅ Config database updated with connection details")
	fmt.Println()
	return nil
}

// GetStorageConfig retrieves the configured profile database connection string
func GetStorageConfig(configDBPath string) (string, error) {
	provider, err := config.NewSQLiteProvider(configDBPath)
	if err != nil {
		return "", fmt.Errorf("failed to open config database: %w", err)
	}
	defer provider.Close()

	storage, err := provider.GetStorage()
	if err != nil {
		return "", err
	}
	if storage.TimescaleDB == nil || storage.TimescaleDB.ConnectionString == "" {
		return "", fmt.Errorf("no profile database configuration found")
	}
	return storage.TimescaleDB.ConnectionString, nil
}
