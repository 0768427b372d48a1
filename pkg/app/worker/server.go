// Package worker implements app.Runner for the migration worker process.
package worker

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/uptrace/bun"

	apphttp "github.com/carbonable/juno-starknet-bridge/pkg/app/http"
	"github.com/carbonable/juno-starknet-bridge/pkg/config"
	"github.com/carbonable/juno-starknet-bridge/pkg/juno"
	"github.com/carbonable/juno-starknet-bridge/pkg/pgutil"
	"github.com/carbonable/juno-starknet-bridge/pkg/queue"
	"github.com/carbonable/juno-starknet-bridge/pkg/starknet"
	workerengine "github.com/carbonable/juno-starknet-bridge/pkg/worker"
)

// Server holds cfg to init the worker process.
type Server struct {
	cfg *config.Config
}

// NewServer initializes new worker server.
func NewServer(cfg *config.Config) *Server {
	return &Server{cfg: cfg}
}

func (s *Server) Run() error {
	if s.cfg == nil {
		return fmt.Errorf("worker config is nil")
	}
	cfg := s.cfg

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := config.NewLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("setup logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting migration worker")

	db, err := pgutil.ConnectDB(&cfg.Database)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	queueStore := queue.NewStore(db)
	junoClient := juno.NewClient(cfg.Juno, logger)
	starknetClient := starknet.NewClient(cfg.Starknet, starknet.NoopSigner{}, logger)

	engine := workerengine.NewEngine(cfg, queueStore, starknetClient, junoClient, logger)
	if err := engine.Start(ctx); err != nil {
		return fmt.Errorf("start worker engine: %w", err)
	}
	defer engine.Stop()

	router := s.setupRouter(db)

	return apphttp.ServeAndWait(ctx, router, logger, &cfg.Server)
}

func (s *Server) setupRouter(db *bun.DB) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("NOT_READY"))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("READY"))
	})

	if s.cfg.Monitoring.Enabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}
