package config

import (
	"fmt"
	"strings"

	"github.com/chrissnell/timbercruise/pkg/species"
	"github.com/chrissnell/timbercruise/pkg/taper"
)

// ConfigProvider defines the interface for configuration data sources
type ConfigProvider interface {
	// Load complete configuration
	LoadConfig() (*ConfigData, error)

	// Get specific configuration sections
	GetSpecies() ([]SpeciesData, error)
	GetServer() (*ServerData, error)
	GetStorage() (*StorageData, error)

	IsReadOnly() bool
	Close() error
}

// ConfigData represents the complete configuration structure
type ConfigData struct {
	Species []SpeciesData `json:"species,omitempty" yaml:"species,omitempty"`
	Server  ServerData    `json:"server,omitempty" yaml:"server,omitempty"`
	Storage StorageData   `json:"storage,omitempty" yaml:"storage,omitempty"`
	Logging LoggingData   `json:"logging,omitempty" yaml:"logging,omitempty"`
}

// SpeciesData overrides or adds a species in the built-in catalog
type SpeciesData struct {
	Code         string    `json:"code" yaml:"code"`
	Name         string    `json:"name,omitempty" yaml:"name,omitempty"`
	Model        string    `json:"model" yaml:"model"`
	Coefficients []float64 `json:"coefficients" yaml:"coefficients"`
	SortOrder    int       `json:"sort_order,omitempty" yaml:"sort_order,omitempty"`
}

// ServerData holds the REST server settings
type ServerData struct {
	ListenAddr  string `json:"listen_addr,omitempty" yaml:"listen_addr,omitempty"`
	HTTPPort    int    `json:"http_port,omitempty" yaml:"http_port,omitempty"`
	TLSCertPath string `json:"tls_cert_path,omitempty" yaml:"tls_cert_path,omitempty"`
	TLSKeyPath  string `json:"tls_key_path,omitempty" yaml:"tls_key_path,omitempty"`
}

// StorageData holds the configuration for the profile store
type StorageData struct {
	TimescaleDB *TimescaleDBData `json:"timescaledb,omitempty" yaml:"timescaledb,omitempty"`
	Redis       *RedisData       `json:"redis,omitempty" yaml:"redis,omitempty"`
}

type TimescaleDBData struct {
	ConnectionString string `json:"connection_string" yaml:"connection_string"`
}

// RedisData configures the profile cache
type RedisData struct {
	Addr       string `json:"addr" yaml:"addr"`
	Password   string `json:"password,omitempty" yaml:"password,omitempty"`
	DB         int    `json:"db,omitempty" yaml:"db,omitempty"`
	TTLSeconds int    `json:"ttl_seconds,omitempty" yaml:"ttl_seconds,omitempty"`
}

// LoggingData configures log output
type LoggingData struct {
	File  string `json:"file,omitempty" yaml:"file,omitempty"`
	Debug bool   `json:"debug,omitempty" yaml:"debug,omitempty"`
}

// ToSpecies converts a configured species into a catalog entry
func (s SpeciesData) ToSpecies() (species.Species, error) {
	model, err := taper.ParseModel(s.Model)
	if err != nil {
		return species.Species{}, fmt.Errorf("species %s: %w", s.Code, err)
	}

	sp := species.Species{
		Code:         strings.ToUpper(s.Code),
		Name:         strings.ToUpper(s.Name),
		Model:        model,
		Coefficients: s.Coefficients,
		SortOrder:    s.SortOrder,
	}
	if err := sp.Validate(); err != nil {
		return species.Species{}, err
	}
	return sp, nil
}

// BuildCatalog applies the configured species on top of the built-in catalog
func (c *ConfigData) BuildCatalog() (*species.Catalog, error) {
	overrides := make([]species.Species, 0, len(c.Species))
	for _, sd := range c.Species {
		sp, err := sd.ToSpecies()
		if err != nil {
			return nil, err
		}
		overrides = append(overrides, sp)
	}
	return species.Default().With(overrides...)
}
