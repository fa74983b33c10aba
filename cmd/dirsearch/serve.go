package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/dirsearch/internal/config"
	logpkg "github.com/kailas-cloud/dirsearch/internal/logger"
	"github.com/kailas-cloud/dirsearch/internal/metrics"
	"github.com/kailas-cloud/dirsearch/internal/transport/backend"
	chiTransport "github.com/kailas-cloud/dirsearch/internal/transport/chi"
	healthuc "github.com/kailas-cloud/dirsearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/dirsearch/internal/usecase/search"
	suggestuc "github.com/kailas-cloud/dirsearch/internal/usecase/suggest"
	"github.com/kailas-cloud/dirsearch/internal/version"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve one search session as a JSON API for a web front-end",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Usage:   "Listen port; overrides http.port",
				EnvVars: []string{"PORT"},
			},
		},
		Action: runServe,
	}
}

func runServe(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	if p := c.Int("port"); p != 0 {
		cfg.HTTP.Port = p
	}
	if err := cfg.ValidateGateway(); err != nil {
		return err
	}

	logger, err := newLogger(c, cfg, logpkg.Options{})
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting dirsearch gateway",
		zap.String("build", version.String()),
		zap.String("env", c.String("env")),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("backend", cfg.Backend.BaseURL),
	)

	if err := metrics.Register(nil); err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	server, closeFn, err := buildGateway(cfg, logger)
	if err != nil {
		return err
	}
	defer closeFn()

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      server.Router(cfg.Auth.APIKeys),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
		logger.Info("Received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}
	logger.Info("Server stopped gracefully")
	return nil
}

// buildGateway is the composition root of the gateway.
func buildGateway(cfg config.Config, logger *zap.Logger) (*chiTransport.Server, func(), error) {
	bc, err := backend.NewClient(backend.Config{
		BaseURL:         cfg.Backend.BaseURL,
		SearchPath:      cfg.Backend.SearchPath,
		AutosuggestPath: cfg.Backend.AutosuggestPath,
		HealthPath:      cfg.Backend.HealthPath,
		HTTPClient:      &http.Client{Timeout: cfg.Backend.RequestTimeout()},
		Logger:          logger.Named("backend"),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create backend client: %w", err)
	}

	healthSvc := healthuc.New(bc, cfg.Backend.HealthTimeout(), logger)
	searchSvc := searchuc.New(bc, healthSvc, logger.Named("search"))
	session := searchuc.NewSession(searchSvc, cfg.Search.PageSize, logger.Named("session"))
	suggest := suggestuc.New(bc, session, suggestuc.Config{
		Debounce:       cfg.Suggest.Debounce(),
		BlurDelay:      cfg.Suggest.BlurDelay(),
		MinQueryLength: cfg.Suggest.MinQueryLength,
		Limit:          cfg.Suggest.Limit,
		AcceptStale:    !cfg.Suggest.StaleDiscarded(),
		Logger:         logger.Named("suggest"),
	})

	server := chiTransport.NewServer(session, suggest, healthSvc, nil, logger)
	return server, suggest.Close, nil
}
