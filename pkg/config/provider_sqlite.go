package config

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/chrissnell/timbercruise/pkg/migrate"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// NewMigrator returns a migrator for the embedded configuration schema
func NewMigrator(db *sql.DB) *migrate.Migrator {
	return migrate.NewMigrator(db, migrate.NewFSProvider(migrationFS, "migrations", "schema_migrations"))
}

// SQLiteProvider implements ConfigProvider for SQLite database configuration
type SQLiteProvider struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteProvider opens (creating if needed) a SQLite configuration
// database and brings its schema up to date
func NewSQLiteProvider(dbPath string) (*SQLiteProvider, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := NewMigrator(db).MigrateUp(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate SQLite config schema: %w", err)
	}

	return &SQLiteProvider{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// LoadConfig loads the complete configuration from SQLite database
func (s *SQLiteProvider) LoadConfig() (*ConfigData, error) {
	config := &ConfigData{}

	speciesList, err := s.GetSpecies()
	if err != nil {
		return nil, fmt.Errorf("failed to load species: %w", err)
	}
	config.Species = speciesList

	server, err := s.GetServer()
	if err != nil {
		return nil, fmt.Errorf("failed to load server config: %w", err)
	}
	config.Server = *server

	storage, err := s.GetStorage()
	if err != nil {
		return nil, fmt.Errorf("failed to load storage config: %w", err)
	}
	config.Storage = *storage

	logging, err := s.getLogging()
	if err != nil {
		return nil, fmt.Errorf("failed to load logging config: %w", err)
	}
	config.Logging = *logging

	return config, nil
}

// GetSpecies returns species overrides from the database, with their
// coefficients in positional order
func (s *SQLiteProvider) GetSpecies() ([]SpeciesData, error) {
	query := `
		SELECT s.id, s.code, s.name, s.model, s.sort_order
		FROM species s
		WHERE s.config_id = (SELECT id FROM configs WHERE name = 'default')
		ORDER BY s.sort_order, s.code
	`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query species: %w", err)
	}
	defer rows.Close()

	var ids []int64
	var list []SpeciesData
	for rows.Next() {
		var id int64
		var sd SpeciesData
		var name sql.NullString
		if err := rows.Scan(&id, &sd.Code, &name, &sd.Model, &sd.SortOrder); err != nil {
			return nil, fmt.Errorf("failed to scan species row: %w", err)
		}
		if name.Valid {
			sd.Name = name.String
		}
		ids = append(ids, id)
		list = append(list, sd)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, id := range ids {
		coefficients, err := s.getCoefficients(id)
		if err != nil {
			return nil, err
		}
		list[i].Coefficients = coefficients
	}

	return list, nil
}

func (s *SQLiteProvider) getCoefficients(speciesID int64) ([]float64, error) {
	rows, err := s.db.Query(`SELECT value FROM species_coefficients WHERE species_id = ? ORDER BY position`, speciesID)
	if err != nil {
		return nil, fmt.Errorf("failed to query coefficients: %w", err)
	}
	defer rows.Close()

	var coefficients []float64
	for rows.Next() {
		var v float64
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("failed to scan coefficient: %w", err)
		}
		coefficients = append(coefficients, v)
	}
	return coefficients, rows.Err()
}

// GetServer returns the REST server settings
func (s *SQLiteProvider) GetServer() (*ServerData, error) {
	query := `
		SELECT listen_addr, http_port, tls_cert_path, tls_key_path
		FROM server_configs
		WHERE config_id = (SELECT id FROM configs WHERE name = 'default')
	`

	var listenAddr, certPath, keyPath sql.NullString
	var port sql.NullInt64
	err := s.db.QueryRow(query).Scan(&listenAddr, &port, &certPath, &keyPath)
	if err == sql.ErrNoRows {
		return &ServerData{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query server config: %w", err)
	}

	return &ServerData{
		ListenAddr:  listenAddr.String,
		HTTPPort:    int(port.Int64),
		TLSCertPath: certPath.String,
		TLSKeyPath:  keyPath.String,
	}, nil
}

// GetStorage returns the profile store and cache settings
func (s *SQLiteProvider) GetStorage() (*StorageData, error) {
	storage := &StorageData{}

	query := `
		SELECT connection_string
		FROM storage_configs
		WHERE config_id = (SELECT id FROM configs WHERE name = 'default')
		  AND backend_type = 'timescaledb'
	`

	var conn sql.NullString
	err := s.db.QueryRow(query).Scan(&conn)
	switch {
	case err == sql.ErrNoRows:
	case err != nil:
		return nil, fmt.Errorf("failed to query storage config: %w", err)
	default:
		storage.TimescaleDB = &TimescaleDBData{ConnectionString: conn.String}
	}

	query = `
		SELECT addr, password, db, ttl_seconds
		FROM cache_configs
		WHERE config_id = (SELECT id FROM configs WHERE name = 'default')
	`

	var addr, password sql.NullString
	var db, ttl sql.NullInt64
	err = s.db.QueryRow(query).Scan(&addr, &password, &db, &ttl)
	switch {
	case err == sql.ErrNoRows:
	case err != nil:
		return nil, fmt.Errorf("failed to query cache config: %w", err)
	default:
		storage.Redis = &RedisData{
			Addr:       addr.String,
			Password:   password.String,
			DB:         int(db.Int64),
			TTLSeconds: int(ttl.Int64),
		}
	}

	return storage, nil
}

func (s *SQLiteProvider) getLogging() (*LoggingData, error) {
	query := `
		SELECT file, debug
		FROM logging_configs
		WHERE config_id = (SELECT id FROM configs WHERE name = 'default')
	`

	var file sql.NullString
	var debug bool
	err := s.db.QueryRow(query).Scan(&file, &debug)
	if err == sql.ErrNoRows {
		return &LoggingData{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query logging config: %w", err)
	}
	return &LoggingData{File: file.String, Debug: debug}, nil
}

// SaveConfig replaces the stored configuration with cfg
func (s *SQLiteProvider) SaveConfig(cfg *ConfigData) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var configID int64
	if err := tx.QueryRow(`SELECT id FROM configs WHERE name = 'default'`).Scan(&configID); err != nil {
		return fmt.Errorf("failed to find default config: %w", err)
	}

	for _, stmt := range []string{
		`DELETE FROM species_coefficients WHERE species_id IN (SELECT id FROM species WHERE config_id = ?)`,
		`DELETE FROM species WHERE config_id = ?`,
		`DELETE FROM server_configs WHERE config_id = ?`,
		`DELETE FROM storage_configs WHERE config_id = ?`,
		`DELETE FROM cache_configs WHERE config_id = ?`,
		`DELETE FROM logging_configs WHERE config_id = ?`,
	} {
		if _, err := tx.Exec(stmt, configID); err != nil {
			return fmt.Errorf("failed to clear existing config: %w", err)
		}
	}

	for _, sd := range cfg.Species {
		res, err := tx.Exec(`INSERT INTO species (config_id, code, name, model, sort_order) VALUES (?, ?, ?, ?, ?)`,
			configID, sd.Code, sd.Name, sd.Model, sd.SortOrder)
		if err != nil {
			return fmt.Errorf("failed to insert species %s: %w", sd.Code, err)
		}
		speciesID, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get species id: %w", err)
		}
		for i, v := range sd.Coefficients {
			if _, err := tx.Exec(`INSERT INTO species_coefficients (species_id, position, value) VALUES (?, ?, ?)`,
				speciesID, i, v); err != nil {
				return fmt.Errorf("failed to insert coefficient %d of %s: %w", i, sd.Code, err)
			}
		}
	}

	if _, err := tx.Exec(`INSERT INTO server_configs (config_id, listen_addr, http_port, tls_cert_path, tls_key_path) VALUES (?, ?, ?, ?, ?)`,
		configID, cfg.Server.ListenAddr, cfg.Server.HTTPPort, cfg.Server.TLSCertPath, cfg.Server.TLSKeyPath); err != nil {
		return fmt.Errorf("failed to insert server config: %w", err)
	}

	if cfg.Storage.TimescaleDB != nil {
		if _, err := tx.Exec(`INSERT INTO storage_configs (config_id, backend_type, connection_string) VALUES (?, 'timescaledb', ?)`,
			configID, cfg.Storage.TimescaleDB.ConnectionString); err != nil {
			return fmt.Errorf("failed to insert storage config: %w", err)
		}
	}

	if r := cfg.Storage.Redis; r != nil {
		if _, err := tx.Exec(`INSERT INTO cache_configs (config_id, addr, password, db, ttl_seconds) VALUES (?, ?, ?, ?, ?)`,
			configID, r.Addr, r.Password, r.DB, r.TTLSeconds); err != nil {
			return fmt.Errorf("failed to insert cache config: %w", err)
		}
	}

	if _, err := tx.Exec(`INSERT INTO logging_configs (config_id, file, debug) VALUES (?, ?, ?)`,
		configID, cfg.Logging.File, cfg.Logging.Debug); err != nil {
		return fmt.Errorf("failed to insert logging config: %w", err)
	}

	return tx.Commit()
}

// IsReadOnly returns false since the SQLite backend can be written with SaveConfig
func (s *SQLiteProvider) IsReadOnly() bool {
	return false
}

// Close closes the database connection
func (s *SQLiteProvider) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
