// Package database stores evaluated taper profiles in PostgreSQL/TimescaleDB
// through GORM.
package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chrissnell/timbercruise/internal/log"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrRunNotFound is returned when no profile run has the requested ID
var ErrRunNotFound = errors.New("profile run not found")

// Client holds the connection to the profile database
type Client struct {
	connectionString string
	DB               *gorm.DB // Exported so it can be accessed from other packages
	logger           *zap.SugaredLogger
}

// NewClient creates a new database client
func NewClient(connectionString string, logger *zap.SugaredLogger) *Client {
	return &Client{
		connectionString: connectionString,
		logger:           logger,
	}
}

// Connect opens the database and creates the profile tables if needed
func (c *Client) Connect() error {
	db, err := CreateConnection(c.connectionString)
	if err != nil {
		return err
	}
	c.DB = db

	if err := c.DB.AutoMigrate(&ProfileRun{}, &ProfilePoint{}); err != nil {
		return fmt.Errorf("error migrating profile tables: %w", err)
	}
	c.logger.Info("profile database ready")
	return nil
}

// SaveProfile stores a run and all of its points in one transaction
func (c *Client) SaveProfile(ctx context.Context, run *ProfileRun) error {
	err := c.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Points").Create(run).Error; err != nil {
			return err
		}
		if len(run.Points) == 0 {
			return nil
		}
		return tx.CreateInBatches(run.Points, 500).Error
	})
	if err != nil {
		return fmt.Errorf("error saving profile run %s: %w", run.ID, err)
	}
	return nil
}

// GetProfile loads a run and its points, ordered by stem height
func (c *Client) GetProfile(ctx context.Context, id uuid.UUID) (*ProfileRun, error) {
	var run ProfileRun
	err := c.DB.WithContext(ctx).
		Preload("Points", func(db *gorm.DB) *gorm.DB { return db.Order("height") }).
		First(&run, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("error querying profile run %s: %w", id, err)
	}
	return &run, nil
}

// ListRuns returns the most recent runs, without their points
func (c *Client) ListRuns(ctx context.Context, limit int) ([]ProfileRun, error) {
	if limit <= 0 {
		limit = 50
	}
	var runs []ProfileRun
	if err := c.DB.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("error listing profile runs: %w", err)
	}
	return runs, nil
}

// Name identifies the profile database in storage health reports
func (c *Client) Name() string {
	return "timescaledb"
}

// Ping verifies the database connection with a trivial query
func (c *Client) Ping(ctx context.Context) error {
	if c.DB == nil {
		return fmt.Errorf("database connection is not open")
	}
	var result int
	return c.DB.WithContext(ctx).Raw("SELECT 1").Scan(&result).Error
}

// Close releases the underlying connection pool
func (c *Client) Close() error {
	if c.DB == nil {
		return nil
	}
	sqlDB, err := c.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// gormConfig returns the GORM settings shared by every connection, logging through zap
func gormConfig() *gorm.Config {
	dbLogger := logger.New(
		zap.NewStdLog(log.GetZapLogger()),
		logger.Config{
			SlowThreshold:             time.Second, // Slow SQL threshold
			LogLevel:                  logger.Warn, // Log level
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	return &gorm.Config{Logger: dbLogger}
}

// CreateConnection is a helper function to create a database connection with standard GORM configuration
func CreateConnection(connectionString string) (*gorm.DB, error) {
	log.Info("connecting to profile database...")
	db, err := gorm.Open(postgres.Open(connectionString), gormConfig())
	if err != nil {
		log.Warn("warning: unable to create a profile database connection:", err)
		return nil, err
	}
	log.Info("profile database connection successful")
	return db, nil
}
