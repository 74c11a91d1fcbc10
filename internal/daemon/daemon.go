package daemon

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/sirupsen/logrus"

	"github.com/nearlink-net/nearlink/internal/api"
	"github.com/nearlink-net/nearlink/internal/discovery"
	"github.com/nearlink-net/nearlink/internal/registry"
)

// Daemon is the nearlink runtime. It wires the store, the discovery
// service, the eviction sweeper, and the HTTP server together.
type Daemon struct {
	Config    Config
	Log       *logrus.Logger
	Store     *registry.Store
	Discovery *discovery.Service
	Sweeper   *registry.Sweeper
	Server    *api.Server
	cancel    context.CancelFunc
}

// New creates and initializes a Daemon with configuration from disk.
func New() (*Daemon, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return NewWithConfig(cfg)
}

// NewWithConfig creates a Daemon with the given configuration.
func NewWithConfig(cfg Config) (*Daemon, error) {
	log := logrus.New()
	if level, err := logrus.ParseLevel(cfg.Logging.Level); err == nil {
		log.SetLevel(level)
	}

	clk := clock.New()
	store := registry.NewStore()

	opts := discovery.DefaultOptions()
	opts.StaleTimeout = parseDuration(cfg.Registry.StaleTimeout, opts.StaleTimeout)
	if cfg.Registry.DefaultRangeMeters > 0 {
		opts.DefaultRangeMeters = cfg.Registry.DefaultRangeMeters
	}
	if cfg.Registry.MaxRangeMeters > 0 {
		opts.MaxRangeMeters = cfg.Registry.MaxRangeMeters
	}
	if cfg.Registry.MaxResults > 0 {
		opts.MaxResults = cfg.Registry.MaxResults
	}
	if cfg.Registry.UsernameRadiusMeters > 0 {
		opts.UsernameRadiusMeters = cfg.Registry.UsernameRadiusMeters
	}

	svc := discovery.New(store, clk, log, opts)

	sweepInterval := parseDuration(cfg.Registry.SweepInterval, 3*time.Minute)
	sweeper := registry.NewSweeper(store, clk, sweepInterval, opts.StaleTimeout, log)

	srv := api.NewServer(svc, log)
	if cfg.Telemetry.Prometheus {
		srv.EnableMetrics()
	}

	return &Daemon{
		Config:    cfg,
		Log:       log,
		Store:     store,
		Discovery: svc,
		Sweeper:   sweeper,
		Server:    srv,
	}, nil
}

// Serve starts the HTTP server and blocks until shutdown.
func (d *Daemon) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	d.cancel = cancel

	// Background eviction sweep
	go d.Sweeper.Run(ctx)

	addr := fmt.Sprintf("%s:%d", d.Config.API.Host, d.Config.API.Port)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      d.Server.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	// Graceful shutdown on signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-sigCh:
		case <-ctx.Done():
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer shutdownCancel()

		cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	d.Log.WithFields(logrus.Fields{
		"component": "daemon",
		"addr":      addr,
		"metrics":   d.Config.Telemetry.Prometheus,
	}).Info("nearlink registry serving")

	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Close shuts down the daemon's background work.
func (d *Daemon) Close() {
	if d.cancel != nil {
		d.cancel()
	}
}
