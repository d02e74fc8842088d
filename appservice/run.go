// Package appservice wires configuration, persistence, the assistant and
// the HTTP surface into a running service.
package appservice

import (
	"context"
	"net"
	"net/http"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/studiflow/studiflow/internal/api"
	"github.com/studiflow/studiflow/internal/assistant"
	"github.com/studiflow/studiflow/internal/config"
	"github.com/studiflow/studiflow/internal/health"
	"github.com/studiflow/studiflow/internal/platform/logger"
	"github.com/studiflow/studiflow/internal/store"
	"github.com/studiflow/studiflow/internal/store/diskv"
	"github.com/studiflow/studiflow/internal/store/postgres"
	"github.com/studiflow/studiflow/internal/store/sqlite"
	syncctl "github.com/studiflow/studiflow/internal/sync"
)

// Run starts the HTTP server and blocks until shutdown or error.
func Run() error {
	log := logger.New("studiflow")

	cfg, err := config.New()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load configuration")
		return err
	}

	ctx, stop := newServerContext()
	defer stop()

	local, remote, err := initStores(ctx, cfg, log)
	if err != nil {
		return err
	}

	provider := assistant.NewGeminiProvider(cfg.GeminiBaseURL, cfg.GeminiAPIKey, cfg.GeminiModel)
	interp := assistant.New(provider, log)
	ctrl := syncctl.New(ctx, local, remote, log)

	// Health degradation never blocks startup: a guest session with local
	// persistence works with every remote dependency down.
	svcHealth := startHealthCheckers(ctx, cfg, log, local, remote, provider)

	handler := api.NewHandler(ctrl, interp, svcHealth.IsHealthy, log)
	router := api.NewRouter(handler)

	server := newHTTPServer(ctx, cfg, router)
	errCh := serveHTTP(server, log, cfg)

	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down server")
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctxShutdown); err != nil {
			log.Error().Err(err).Msg("Server forced to shutdown")
			return err
		}
		log.Info().Msg("Server exited")
		return nil
	case err := <-errCh:
		log.Error().Err(err).Msg("HTTP server failed")
		return err
	}
}

// initStores builds the configured local driver and, when a DSN is
// present, the remote document store.
func initStores(ctx context.Context, cfg *config.Config, log zerolog.Logger) (store.LocalStore, store.RemoteStore, error) {
	var local store.LocalStore
	switch cfg.LocalDriver {
	case "sqlite":
		s, err := sqlite.Open(filepath.Join(cfg.DataDir, "studiflow.db"))
		if err != nil {
			log.Error().Err(err).Msg("sqlite store unavailable")
			return nil, nil, err
		}
		local = s
	default:
		local = diskv.New(filepath.Join(cfg.DataDir, "state"))
	}

	if cfg.PostgresDSN == "" {
		log.Info().Msg("No Postgres DSN configured; running local-only")
		return local, nil, nil
	}

	db, err := postgres.Open(cfg.PostgresDSN)
	if err != nil {
		log.Error().Err(err).Msg("postgres unavailable")
		return nil, nil, err
	}
	if err := postgres.Bootstrap(ctx, db); err != nil {
		log.Error().Err(err).Msg("postgres bootstrap failed")
		return nil, nil, err
	}
	return local, postgres.New(db, cfg.PostgresDSN, log), nil
}

// startHealthCheckers probes the optional remote dependencies and
// aggregates them for the health endpoint.
func startHealthCheckers(ctx context.Context, cfg *config.Config, log zerolog.Logger, local store.LocalStore, remote store.RemoteStore, provider *assistant.GeminiProvider) *health.ServiceHealthChecker {
	probeTimeout := time.Duration(cfg.HealthProbeTimeoutSeconds) * time.Second
	interval := time.Duration(cfg.HealthIntervalSeconds) * time.Second

	var checkers []health.Checker
	if pinger, ok := local.(health.HealthPinger); ok {
		c := health.NewComponentChecker("local-store", pinger, log, probeTimeout)
		go c.Start(ctx, interval)
		checkers = append(checkers, c)
	}
	if pinger, ok := remote.(health.HealthPinger); ok {
		c := health.NewComponentChecker("postgres", pinger, log, probeTimeout)
		go c.Start(ctx, interval)
		checkers = append(checkers, c)
	}
	if cfg.GeminiAPIKey != "" {
		c := health.NewComponentChecker("gemini", provider, log, probeTimeout)
		go c.Start(ctx, interval)
		checkers = append(checkers, c)
	}

	svcHealth := health.NewServiceHealthChecker(log, checkers...)
	go svcHealth.Start(ctx, interval)
	return svcHealth
}

func newHTTPServer(ctx context.Context, cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.GetHTTPAddr(),
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}
}

func serveHTTP(server *http.Server, log zerolog.Logger, cfg *config.Config) <-chan error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	return errCh
}

// newServerContext returns a cancellable context that is cancelled on SIGINT/SIGTERM.
func newServerContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
