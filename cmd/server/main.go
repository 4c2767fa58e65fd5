package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/JonMunkholm/orderimport/internal/config"
	"github.com/JonMunkholm/orderimport/internal/core"
	"github.com/JonMunkholm/orderimport/internal/inventory"
	"github.com/JonMunkholm/orderimport/internal/logging"
	"github.com/JonMunkholm/orderimport/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging based on config
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"inventory_source", cfg.Inventory.Source,
		"upload_max_concurrent", cfg.Upload.MaxConcurrent,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)
	slog.Debug("effective configuration", "config", cfg.String())

	ctx := context.Background()
	gateway, closeGateway, err := newGateway(ctx, cfg)
	if err != nil {
		slog.Error("failed to set up inventory source", "source", cfg.Inventory.Source, "error", err)
		os.Exit(1)
	}
	defer closeGateway()

	metrics := core.NewMetrics()
	service := core.NewService(gateway, core.ServiceConfig{
		MaxConcurrent: cfg.Upload.MaxConcurrent,
		MaxWait:       cfg.Upload.MaxWaitTime,
		Timeout:       cfg.Upload.Timeout,
	}, metrics)

	server := web.NewServer(service, metrics, cfg)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		// Wait for active imports to complete (with timeout)
		status := service.LimiterStatus()
		if status.Active > 0 {
			slog.Info("waiting for imports to complete", "active", status.Active)
			if err := service.WaitForImports(shutdownCtx); err != nil {
				slog.Warn("imports did not complete in time", "error", err)
			} else {
				slog.Info("all imports completed")
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// newGateway builds the catalog source selected by INVENTORY_SOURCE. The
// returned func releases its resources.
func newGateway(ctx context.Context, cfg *config.Config) (core.InventoryGateway, func(), error) {
	noop := func() {}

	switch cfg.Inventory.Source {
	case config.SourceHTTP:
		gw, err := inventory.NewHTTPGateway(inventory.HTTPConfig{
			BaseURL:         cfg.Inventory.BaseURL,
			APIToken:        cfg.Inventory.APIToken,
			Timeout:         cfg.Inventory.Timeout,
			MaxRetries:      uint64(cfg.Inventory.MaxRetries),
			RetryBackoff:    cfg.Inventory.RetryBackoff,
			BreakerFailures: uint32(cfg.Inventory.BreakerFailures),
			BreakerCooldown: cfg.Inventory.BreakerCooldown,
		}, nil)
		if err != nil {
			return nil, noop, err
		}
		slog.Info("using inventory service", "base_url", cfg.Inventory.BaseURL)
		return gw, noop, nil

	case config.SourcePostgres:
		pool, err := connectPool(ctx, &cfg.Database)
		if err != nil {
			return nil, noop, err
		}
		return inventory.NewPostgresGateway(pool), pool.Close, nil

	case config.SourceFile:
		slog.Info("using catalog file", "path", cfg.Inventory.CatalogFile)
		return inventory.NewFileGateway(cfg.Inventory.CatalogFile), noop, nil

	default:
		return nil, noop, fmt.Errorf("unknown inventory source %q", cfg.Inventory.Source)
	}
}

// connectPool opens and pings a pgx pool configured from cfg.
func connectPool(ctx context.Context, cfg *config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Log which database we connected to
	if u, err := url.Parse(cfg.URL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	} else {
		slog.Info("connected to database")
	}
	return pool, nil
}
