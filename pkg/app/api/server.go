// Package api implements app.Runner for the API server process.
package api

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/uptrace/bun"
	"go.uber.org/zap"

	apphttp "github.com/carbonable/juno-starknet-bridge/pkg/app/http"
	"github.com/carbonable/juno-starknet-bridge/pkg/bridge"
	bridgeservice "github.com/carbonable/juno-starknet-bridge/pkg/bridge/service"
	"github.com/carbonable/juno-starknet-bridge/pkg/config"
	"github.com/carbonable/juno-starknet-bridge/pkg/customer"
	customerservice "github.com/carbonable/juno-starknet-bridge/pkg/customer/service"
	"github.com/carbonable/juno-starknet-bridge/pkg/juno"
	"github.com/carbonable/juno-starknet-bridge/pkg/pgutil"
	"github.com/carbonable/juno-starknet-bridge/pkg/queue"
)

const defaultRequestTimeout = 60

// Server holds cfg to init the api server.
type Server struct {
	cfg *config.Config
}

// NewServer initializes new api server.
func NewServer(cfg *config.Config) *Server {
	return &Server{cfg: cfg}
}

func (s *Server) Run() error {
	if s.cfg == nil {
		return fmt.Errorf("api server config is nil")
	}
	cfg := s.cfg

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := config.NewLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("setup logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting API server",
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
	)

	db, err := pgutil.ConnectDB(&cfg.Database)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	logger.Info("Connected to database",
		zap.String("host", cfg.Database.Host),
		zap.String("database", cfg.Database.Database),
	)

	queueStore := queue.NewStore(db)
	customerStore := customer.NewStore(db)
	junoClient := juno.NewClient(cfg.Juno, logger)

	pipeline := bridge.NewPipeline(
		junoClient,
		junoClient,
		queueStore,
		customerStore,
		cfg.Juno.AdminAddress,
		logger,
	)

	router := s.setupRouter(pipeline, queueStore, customerStore, db, logger)

	return apphttp.ServeAndWait(ctx, router, logger, &cfg.Server)
}

func (s *Server) setupRouter(
	pipeline *bridge.Pipeline,
	queueStore queue.Store,
	customerStore customer.Store,
	db *bun.DB,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(defaultRequestTimeout * time.Second))

	if s.cfg.Server.FrontendOrigin != "" {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{s.cfg.Server.FrontendOrigin},
			AllowedMethods: []string{http.MethodGet, http.MethodPost},
			AllowedHeaders: []string{"Content-Type"},
		}))
	}

	// Health check endpoint (liveness)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Readiness endpoint - returns 503 while the database is unreachable
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
		logger.Info("Metrics enabled")
	}

	bridgeservice.RegisterRoutes(r, pipeline, queueStore, logger)
	customerservice.RegisterRoutes(r, customerStore, logger)

	return r
}
