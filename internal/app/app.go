package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/chrissnell/timbercruise/internal/controllers/restserver"
	"github.com/chrissnell/timbercruise/internal/database"
	"github.com/chrissnell/timbercruise/internal/log"
	"github.com/chrissnell/timbercruise/internal/storage"
	"github.com/chrissnell/timbercruise/internal/storage/redis"
	"github.com/chrissnell/timbercruise/pkg/config"
	"go.uber.org/zap"
)

const healthInterval = 60 * time.Second

// App represents the main application
type App struct {
	cfg    *config.ConfigData
	logger *zap.SugaredLogger
}

// New creates a new application instance
func New(cfg *config.ConfigData, logger *zap.SugaredLogger) *App {
	return &App{
		cfg:    cfg,
		logger: logger,
	}
}

// Run starts the application and blocks until shutdown
func (a *App) Run(ctx context.Context) error {
	var wg sync.WaitGroup

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	catalog, err := a.cfg.BuildCatalog()
	if err != nil {
		return fmt.Errorf("error building species catalog: %w", err)
	}
	log.Infof("loaded species catalog with %d species (%d overrides)", catalog.Len(), len(a.cfg.Species))

	health := storage.NewHealthManager()
	var checkers []storage.HealthChecker
	opts := []restserver.Option{restserver.WithHealth(health)}

	var store restserver.ProfileStore
	if ts := a.cfg.Storage.TimescaleDB; ts != nil && ts.ConnectionString != "" {
		client := database.NewClient(ts.ConnectionString, a.logger)
		if err := client.Connect(); err != nil {
			return fmt.Errorf("error connecting to profile database: %w", err)
		}
		defer client.Close()
		store = client
		checkers = append(checkers, client)
		log.Info("profile storage enabled")
	} else {
		log.Info("no storage configured; profiles will not be persisted")
	}

	if rc := a.cfg.Storage.Redis; rc != nil && rc.Addr != "" {
		cache := redis.New(rc.Addr, rc.Password, rc.DB, redis.WithTTL(time.Duration(rc.TTLSeconds)*time.Second))
		defer cache.Close()
		opts = append(opts, restserver.WithCache(cache))
		checkers = append(checkers, cache)
		log.Infof("profile cache enabled at %s", rc.Addr)
	}

	rest, err := restserver.NewController(ctx, &wg, catalog, a.cfg.Server, store, a.logger, opts...)
	if err != nil {
		return err
	}

	health.StartHealthMonitor(ctx, &wg, healthInterval, checkers...)
	if err := rest.StartController(); err != nil {
		return err
	}

	log.Info("Application started successfully")

	// Set up signal handling
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigs)

	// Wait for shutdown signal
	select {
	case <-sigs:
		log.Info("shutdown signal received, initiating graceful shutdown...")
	case <-ctx.Done():
		log.Info("context cancelled, shutting down...")
	}

	// Cancel context to signal all goroutines to stop
	cancel()

	log.Info("waiting for all workers to terminate...")
	wg.Wait()
	log.Info("shutdown complete")

	return nil
}
