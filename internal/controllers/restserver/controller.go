// Package restserver exposes taper profiles, species and stem metrics over HTTP.
package restserver

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/chrissnell/timbercruise/internal/database"
	"github.com/chrissnell/timbercruise/internal/log"
	"github.com/chrissnell/timbercruise/internal/storage"
	"github.com/chrissnell/timbercruise/pkg/config"
	"github.com/chrissnell/timbercruise/pkg/species"
	"github.com/chrissnell/timbercruise/pkg/taper"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// ProfileStore persists evaluated profiles. *database.Client implements it.
type ProfileStore interface {
	SaveProfile(ctx context.Context, run *database.ProfileRun) error
	GetProfile(ctx context.Context, id uuid.UUID) (*database.ProfileRun, error)
	ListRuns(ctx context.Context, limit int) ([]database.ProfileRun, error)
}

// ProfileCache holds previously evaluated profiles. *redis.Cache implements it.
type ProfileCache interface {
	Get(ctx context.Context, model taper.Model, coefficients []float64, dbh, totalHeight float64) (taper.Profile, bool, error)
	Set(ctx context.Context, model taper.Model, coefficients []float64, dbh, totalHeight float64, profile taper.Profile) error
}

// Controller represents the REST server controller
type Controller struct {
	ctx        context.Context
	wg         *sync.WaitGroup
	restConfig config.ServerData
	Server     http.Server
	Catalog    *species.Catalog
	Store      ProfileStore
	Cache      ProfileCache
	Health     *storage.HealthManager
	Metrics    *Metrics
	logger     *zap.SugaredLogger
	handlers   *Handlers
}

// Option configures optional controller dependencies
type Option func(*Controller)

// WithCache serves repeated evaluations from cache
func WithCache(cache ProfileCache) Option {
	return func(c *Controller) {
		c.Cache = cache
	}
}

// WithHealth reports backend health on /health
func WithHealth(hm *storage.HealthManager) Option {
	return func(c *Controller) {
		c.Health = hm
	}
}

// NewController creates a new REST server controller. store may be nil, in
// which case profiles are computed but not persisted.
func NewController(ctx context.Context, wg *sync.WaitGroup, catalog *species.Catalog, rc config.ServerData, store ProfileStore, logger *zap.SugaredLogger, opts ...Option) (*Controller, error) {
	if catalog == nil {
		return nil, fmt.Errorf("a species catalog is required")
	}

	ctrl := &Controller{
		ctx:        ctx,
		wg:         wg,
		restConfig: rc,
		Catalog:    catalog,
		Store:      store,
		Metrics:    NewMetrics(),
		logger:     logger,
	}
	for _, opt := range opts {
		opt(ctrl)
	}

	// If a ListenAddr was not provided, listen on all interfaces
	if ctrl.restConfig.ListenAddr == "" {
		logger.Info("server.listen_addr not provided; defaulting to 0.0.0.0 (all interfaces)")
		ctrl.restConfig.ListenAddr = "0.0.0.0"
	}

	if ctrl.restConfig.HTTPPort == 0 {
		logger.Info("server.http_port not provided; defaulting to 8080")
		ctrl.restConfig.HTTPPort = 8080
	}

	ctrl.handlers = NewHandlers(ctrl)

	ctrl.Server.Addr = fmt.Sprintf("%v:%v", ctrl.restConfig.ListenAddr, ctrl.restConfig.HTTPPort)
	ctrl.Server.Handler = ctrl.setupRouter()
	ctrl.Server.ReadHeaderTimeout = 10 * time.Second

	return ctrl, nil
}

// StartController starts the REST server and stops it when the context is cancelled
func (c *Controller) StartController() error {
	log.Infof("starting REST server on %s", c.Server.Addr)
	c.wg.Add(1)

	go func() {
		defer c.wg.Done()

		var err error
		if c.restConfig.TLSCertPath != "" && c.restConfig.TLSKeyPath != "" {
			err = c.Server.ListenAndServeTLS(c.restConfig.TLSCertPath, c.restConfig.TLSKeyPath)
		} else {
			err = c.Server.ListenAndServe()
		}
		if err != http.ErrServerClosed {
			log.Errorf("REST server error: %v", err)
		}
	}()

	go func() {
		<-c.ctx.Done()
		log.Info("shutting down the REST server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		c.Server.Shutdown(shutdownCtx)
	}()

	return nil
}

// setupRouter configures the HTTP router with all endpoints
func (c *Controller) setupRouter() *mux.Router {
	router := mux.NewRouter()
	router.Use(log.HTTPMiddleware)
	router.Use(c.Metrics.Middleware)

	router.HandleFunc("/species", c.handlers.ListSpecies).Methods(http.MethodGet)
	router.HandleFunc("/species/{code}", c.handlers.GetSpecies).Methods(http.MethodGet)
	router.HandleFunc("/profile", c.handlers.PostProfile).Methods(http.MethodPost)
	router.HandleFunc("/profile/{code}", c.handlers.GetProfile).Methods(http.MethodGet)
	router.HandleFunc("/stem/{code}", c.handlers.GetStem).Methods(http.MethodGet)
	router.HandleFunc("/stand", c.handlers.PostStand).Methods(http.MethodPost)
	router.HandleFunc("/runs", c.handlers.ListRuns).Methods(http.MethodGet)
	router.HandleFunc("/runs/{id}", c.handlers.GetRun).Methods(http.MethodGet)
	router.HandleFunc("/health", c.handlers.GetHealth).Methods(http.MethodGet)
	router.Handle("/metrics", c.Metrics.Handler()).Methods(http.MethodGet)

	return router
}
